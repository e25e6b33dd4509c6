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
	"path/filepath"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/pkg/devicemanager/wipe"
	"github.com/puppis-io/puppis/utils/exec"
	"github.com/puppis-io/puppis/utils/log"
)

// layerHandler ties a sysfs marker directory to the routine that shuts
// the corresponding layer down on one node.
type layerHandler struct {
	marker string
	name   string
	// shutdown deactivates the layer on one node. Recoverable faults go
	// to the catcher, a non-nil error aborts the whole walk. Returned
	// actions run once every layer on the node is down.
	shutdown func(sysPath string, catcher *Collector) ([]wipe.Action, error)
}

// shutdownBcache is detection only. Stopping a cache set safely needs its
// writeback state flushed first, until that lands the handler succeeds
// without touching the device.
func (t *Teardown) shutdownBcache(sysPath string, catcher *Collector) ([]wipe.Action, error) {
	log.Infof("bcache on %s: shutdown not implemented, leaving device as is", sysPath)
	return nil, nil
}

// shutdownRaid is detection only, same standing as bcache.
func (t *Teardown) shutdownRaid(sysPath string, catcher *Collector) ([]wipe.Action, error) {
	log.Infof("md raid on %s: shutdown not implemented, leaving device as is", sysPath)
	return nil, nil
}

// shutdownLVM deactivates the logical volume behind a dm node with
// lvremove. The volume group stays, other volumes in it may be preserved
// on purpose. Exit status 5 means something else already destroyed the
// volume, for example a forced removal of another physical volume, the
// walk records it and keeps going.
func (t *Teardown) shutdownLVM(sysPath string, catcher *Collector) ([]wipe.Action, error) {
	name, err := t.Resolver.DMName(sysPath)
	if err != nil {
		catcher.Catchf("dm name of %s missing or unreadable: %v", sysPath, err)
		return nil, nil
	}
	vg, lv, err := SplitVGLVName(name)
	if err != nil {
		catcher.Catch(err)
		return nil, nil
	}

	// the backing extents become unobservable once the volume is removed
	slaves, err := t.Resolver.Slaves(sysPath)
	if err != nil {
		catcher.Catchf("list slaves of %s: %v", sysPath, err)
	}

	log.Infof("lvremove %s/%s for %s", vg, lv, sysPath)
	if err := t.Lvm.LVRemove(lv, vg); err != nil {
		catcher.Catch(err)
		code, ok := exec.ExitStatus(err)
		if !ok || code != puppis.LVRemoveAlreadyGone {
			return nil, err
		}
		// a sibling teardown beat us to the volume, the extents it
		// freed are that teardown's to wipe
		log.Warnf("lvremove %s/%s: volume already removed (exit %d)", vg, lv, code)
		return nil, nil
	}

	actions := make([]wipe.Action, 0, len(slaves))
	for _, slave := range slaves {
		actions = append(actions, wipe.Action{
			Target: filepath.Join(t.Resolver.Dev, slave),
			Mode:   wipe.ModePVMetadata,
		})
	}
	return actions, nil
}
