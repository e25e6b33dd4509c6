/*
   Copyright @ 2022 puppis <storage@puppis.io>.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package metrics

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/utils/log"
)

const (
	namespace       string = "puppis"
	scrapeSubSystem string = "scrape"
)

var (
	// ErrNoData indicates the collector found no data to collect, but had no other error.
	ErrNoData   = errors.New("collector returned no data")
	nodeName    = hostLabel()
	constLabels = prometheus.Labels{"nodename": nodeName}

	scrapeDurationDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, scrapeSubSystem, "collector_duration_seconds"),
		"puppis_exporter: Duration of a collector scrape.",
		[]string{"collector"},
		nil,
	)
	scrapeSuccessDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, scrapeSubSystem, "collector_success"),
		"puppis_exporter: Whether a collector succeeded.",
		[]string{"collector"},
		nil,
	)
)

func hostLabel() string {
	if n := os.Getenv("NODE_NAME"); n != "" {
		return n
	}
	h, _ := os.Hostname()
	return h
}

// StatusSource yields the holder stack currently layered on every known
// block device.
type StatusSource interface {
	DeviceStatus() ([]types.DeviceStatus, error)
}

type typedFactorDesc struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

func (d *typedFactorDesc) mustNewConstMetric(value float64, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(d.desc, d.valueType, value, labels...)
}

// Collector is the interface a collector has to implement.
type Collector interface {
	Update(ch chan<- prometheus.Metric) error
	Name() string
}

// PuppisCollector implements the prometheus.Collector interface.
type PuppisCollector struct {
	collectors map[string]Collector
}

func NewPuppisCollector(src StatusSource) (*PuppisCollector, error) {
	collectors := make(map[string]Collector)

	holderStatsCollector, err := newHolderStatsCollector(src)
	if err != nil {
		return nil, err
	}
	collectors[holderStatsCollector.Name()] = holderStatsCollector

	return &PuppisCollector{collectors: collectors}, nil
}

// Describe implements the prometheus.Collector interface.
func (c PuppisCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- scrapeDurationDesc
	ch <- scrapeSuccessDesc
}

// Collect implements the prometheus.Collector interface.
func (c PuppisCollector) Collect(ch chan<- prometheus.Metric) {
	wg := sync.WaitGroup{}
	wg.Add(len(c.collectors))
	for name, c := range c.collectors {
		go func(name string, c Collector) {
			execute(name, c, ch)
			wg.Done()
		}(name, c)
	}
	wg.Wait()
}

func execute(name string, c Collector, ch chan<- prometheus.Metric) {
	begin := time.Now()
	err := c.Update(ch)
	duration := time.Since(begin)
	var success float64

	if err != nil {
		if IsNoDataError(err) {
			log.Debug("msg ", "collector returned no data ", "name ", name, "duration_seconds ", duration.Seconds(), "err ", err)
		} else {
			log.Debug("msg ", "collector failed ", "name ", name, "duration_seconds ", duration.Seconds(), "err ", err)
		}
		success = 0
	} else {
		log.Debug("msg ", "collector succeeded ", "name ", name, "duration_seconds ", duration.Seconds())
		success = 1
	}
	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, duration.Seconds(), name)
	ch <- prometheus.MustNewConstMetric(scrapeSuccessDesc, prometheus.GaugeValue, success, name)
}

func IsNoDataError(err error) bool {
	return err == ErrNoData
}
