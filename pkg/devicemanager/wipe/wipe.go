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

package wipe

import (
	"errors"
	"fmt"
	"time"

	"github.com/anuvu/disko/linux"

	"github.com/puppis-io/puppis/pkg/configuration"
	"github.com/puppis-io/puppis/pkg/devicemanager/lvmd"
	"github.com/puppis-io/puppis/utils"
	"github.com/puppis-io/puppis/utils/exec"
	"github.com/puppis-io/puppis/utils/log"
	"github.com/puppis-io/puppis/utils/mutx"
)

var mysys = linux.System()

const DISKMUTEX = "DiskMutex"

// Mode selects how much of a backing extent gets cleared once the layers
// above it are shut down.
type Mode string

const (
	// ModePVMetadata clears the lvm2 label with pvremove.
	ModePVMetadata Mode = "pvremove"
	// ModeSuperblock clears partition table and filesystem signatures.
	ModeSuperblock Mode = "superblock"
)

// Action is a deferred wipe. A layer handler binds it while the stack is
// still observable, the walker runs it only after every layer on the node
// has been shut down.
type Action struct {
	Target string `json:"target"`
	Mode   Mode   `json:"mode"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Mode, a.Target)
}

type LocalWipe interface {
	Run(action Action) error
	UdevSettle() error
}

type LocalWipeImplement struct {
	Mutex    *mutx.GlobalLocks
	Executor exec.Executor
	Lvm      lvmd.Lvm2
}

func NewLocalWipeImplement(mutex *mutx.GlobalLocks, executor exec.Executor, lvm lvmd.Lvm2) *LocalWipeImplement {
	return &LocalWipeImplement{
		Mutex:    mutex,
		Executor: executor,
		Lvm:      lvm,
	}
}

func (w *LocalWipeImplement) Run(action Action) error {
	log.Infof("wipe %s", action)
	switch action.Mode {
	case ModePVMetadata:
		return w.Lvm.PVRemove(action.Target)
	case ModeSuperblock:
		return w.wipeSuperblock(action.Target)
	default:
		return fmt.Errorf("unknown wipe mode %q", action.Mode)
	}
}

func (w *LocalWipeImplement) wipeSuperblock(target string) error {
	if !w.Mutex.TryAcquire(DISKMUTEX) {
		log.Info("wait other task release mutex, please retry...")
		return errors.New("get global mutex failed")
	}
	defer w.Mutex.Release(DISKMUTEX)

	// the scan can race the udev events fired by the teardown just before
	return utils.UntilMaxRetry(func() error {
		disk, err := mysys.ScanDisk(target)
		if err != nil {
			return err
		}
		if err := mysys.Wipe(disk); err != nil {
			return err
		}
		return w.UdevSettle()
	}, 2, 500*time.Millisecond)
}

func (w *LocalWipeImplement) UdevSettle() error {
	_, err := w.Executor.ExecuteCommandWithTimeout(configuration.CommandTimeout(), "udevadm", "settle")
	if err != nil {
		return err
	}
	return err
}
