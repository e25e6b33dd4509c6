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

package clearholders

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/pkg/devicemanager/lvmd"
	"github.com/puppis-io/puppis/pkg/devicemanager/sysfs"
	"github.com/puppis-io/puppis/pkg/devicemanager/wipe"
	"github.com/puppis-io/puppis/pkg/metrics"
	"github.com/puppis-io/puppis/utils/log"
)

// Teardown dismantles the storage stack layered on a block device. The
// sysfs holders tree is walked depth first, every dependent layer comes
// down before the device it sits on. Other system activity may mutate the
// tree between any two reads, so reads that fail mid walk are recorded
// and tolerated rather than escalated.
type Teardown struct {
	Resolver *sysfs.Resolver
	Lvm      lvmd.Lvm2
	Wiper    wipe.LocalWipe

	handlers []layerHandler
}

func NewTeardown(resolver *sysfs.Resolver, lvm lvmd.Lvm2, wiper wipe.LocalWipe) *Teardown {
	t := &Teardown{
		Resolver: resolver,
		Lvm:      lvm,
		Wiper:    wiper,
	}
	t.handlers = []layerHandler{
		{marker: puppis.BcacheMarker, name: "bcache", shutdown: t.shutdownBcache},
		{marker: puppis.RaidMarker, name: "md", shutdown: t.shutdownRaid},
		{marker: puppis.DmMarker, name: "dm", shutdown: t.shutdownLVM},
	}
	return t
}

// GetHolders lists the kernel names of the devices stacked directly on
// device. Faults come back alongside an empty list, never as a panic, and
// an absent holders directory simply means the device has no holders.
func (t *Teardown) GetHolders(device string) ([]string, []error) {
	sysPath, err := t.Resolver.SysBlockPath(device)
	if err != nil {
		return nil, []error{err}
	}
	return t.enumerate(sysPath)
}

func (t *Teardown) enumerate(sysPath string) ([]string, []error) {
	holders, err := t.Resolver.Holders(sysPath)
	if err != nil {
		return nil, []error{err}
	}
	return holders, nil
}

// ClearHolders dismantles everything stacked on device, bottom up. It
// reports whether the device ended up free of holders, together with every
// recoverable fault recorded along the way. The fault list can be non-empty
// on success and empty on failure, holders remaining is what decides.
func (t *Teardown) ClearHolders(device string) (bool, []error) {
	catcher := &Collector{}
	visited := sets.NewString()

	ok := t.clearNode(device, visited, catcher)

	metrics.WalkFaultsTotal.Add(float64(catcher.Len()))
	result := "failure"
	if ok {
		result = "success"
	}
	metrics.ClearTotal.WithLabelValues(result).Inc()
	return ok, catcher.Errors()
}

// CheckClear clears device and turns leftover holders into a hard failure,
// logging every fault tolerated along the way.
func (t *Teardown) CheckClear(device string) error {
	ok, errs := t.ClearHolders(device)
	if ok {
		return nil
	}
	for _, e := range errs {
		log.Errorf("clear holders of %s: %v", device, e)
	}
	return fmt.Errorf("could not clear holders for device: %s", device)
}

// clearNode clears one node of the holders tree. A false return aborts
// the walk all the way up, nothing above an uncleared node can be shut
// down safely.
func (t *Teardown) clearNode(device string, visited sets.String, catcher *Collector) bool {
	sysPath, err := t.Resolver.SysBlockPath(device)
	if err != nil {
		// nothing sits on a device that is already gone
		catcher.Catch(err)
		return true
	}
	visited.Insert(sysPath)

	holders, errs := t.enumerate(sysPath)
	catcher.Extend(errs)
	log.Infof("clear holders running on %s, holders %v", sysPath, holders)

	for _, holder := range holders {
		realPath, err := t.Resolver.RealHolderPath(sysPath, holder)
		if err != nil {
			// vanished, most likely a side effect of a sibling shutdown
			log.Debugf("holder %s of %s cannot be resolved: %v", holder, sysPath, err)
			continue
		}
		if visited.Has(realPath) {
			catcher.Catchf("holder cycle at %s, %s was already visited", sysPath, realPath)
			continue
		}
		if !t.clearNode(realPath, visited, catcher) {
			return false
		}
	}

	var actions []wipe.Action
	for _, h := range t.handlers {
		if !t.Resolver.HasLayerMarker(sysPath, h.marker) {
			continue
		}
		log.Infof("shutting down %s layer on %s", h.name, sysPath)
		metrics.LayerShutdownTotal.WithLabelValues(h.name).Inc()
		acts, err := h.shutdown(sysPath, catcher)
		if err != nil {
			log.Errorf("%s shutdown on %s failed: %v", h.name, sysPath, err)
			return false
		}
		actions = append(actions, acts...)
	}

	for _, action := range actions {
		if err := t.Wiper.Run(action); err != nil {
			catcher.Catchf("wipe %s: %v", action, err)
			continue
		}
		metrics.WipeTotal.WithLabelValues(string(action.Mode)).Inc()
	}

	holders, errs = t.enumerate(sysPath)
	catcher.Extend(errs)
	return len(holders) == 0 && len(errs) == 0
}
