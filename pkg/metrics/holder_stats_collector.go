package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	holderSubSystem string = "holder_stats"
)

var (
	holderStatLabels = []string{"device"}
	holderCountDesc  = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, holderSubSystem, "holders_total"),
		"The number of devices stacked directly on the device.",
		holderStatLabels,
		constLabels,
	)
	layerCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, holderSubSystem, "layers_total"),
		"The number of layer types detected on the device.",
		holderStatLabels,
		constLabels,
	)
	mountCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, holderSubSystem, "mounts_total"),
		"The number of active mounts backed by the device.",
		holderStatLabels,
		constLabels,
	)
	protectedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, holderSubSystem, "protected"),
		"Whether configuration forbids clearing the device.",
		holderStatLabels,
		constLabels,
	)
)

type holderStatsCollector struct {
	descs []typedFactorDesc
	src   StatusSource
}

func newHolderStatsCollector(src StatusSource) (Collector, error) {
	return &holderStatsCollector{
		descs: []typedFactorDesc{
			{desc: holderCountDesc, valueType: prometheus.GaugeValue},
			{desc: layerCountDesc, valueType: prometheus.GaugeValue},
			{desc: mountCountDesc, valueType: prometheus.GaugeValue},
			{desc: protectedDesc, valueType: prometheus.GaugeValue},
		},
		src: src,
	}, nil
}

func (h *holderStatsCollector) Name() string {
	return "holder_stats"
}

func (h *holderStatsCollector) Update(ch chan<- prometheus.Metric) error {
	statuses, err := h.src.DeviceStatus()
	if err != nil {
		return errors.New("couldn't get device status:" + err.Error())
	}
	if len(statuses) == 0 {
		return ErrNoData
	}
	for _, st := range statuses {
		var protected float64
		if st.Protected {
			protected = 1
		}
		// need keep order with desc
		for i, val := range []float64{
			float64(len(st.Holders)),
			float64(len(st.Layers)),
			float64(len(st.Mountpoints)),
			protected,
		} {
			if i >= len(h.descs) {
				break
			}
			ch <- h.descs[i].mustNewConstMetric(val, st.Device)
		}
	}
	return nil
}
