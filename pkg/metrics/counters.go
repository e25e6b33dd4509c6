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
	"github.com/prometheus/client_golang/prometheus"
)

// Registry carries every puppis metric, the counters below plus the
// pull collectors the http server registers at startup.
var Registry = prometheus.NewRegistry()

var (
	ClearTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "clear_total",
		Help:        "Clear holders runs by result.",
		ConstLabels: constLabels,
	}, []string{"result"})

	LayerShutdownTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "layer_shutdown_total",
		Help:        "Layer shutdowns executed during clear holders runs, by layer type.",
		ConstLabels: constLabels,
	}, []string{"layer"})

	WalkFaultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "walk_faults_total",
		Help:        "Recoverable faults recorded while walking holder trees.",
		ConstLabels: constLabels,
	})

	WipeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "wipe_total",
		Help:        "Wipe actions executed after layer shutdown, by mode.",
		ConstLabels: constLabels,
	}, []string{"mode"})
)

func init() {
	Registry.MustRegister(ClearTotal, LayerShutdownTotal, WalkFaultsTotal, WipeTotal)
}
