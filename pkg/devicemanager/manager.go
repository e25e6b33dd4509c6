package deviceManager

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/pkg/configuration"
	"github.com/puppis-io/puppis/pkg/devicemanager/bcache"
	"github.com/puppis-io/puppis/pkg/devicemanager/clearholders"
	"github.com/puppis-io/puppis/pkg/devicemanager/device"
	"github.com/puppis-io/puppis/pkg/devicemanager/lvmd"
	"github.com/puppis-io/puppis/pkg/devicemanager/mounts"
	"github.com/puppis-io/puppis/pkg/devicemanager/sysfs"
	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/pkg/devicemanager/wipe"
	"github.com/puppis-io/puppis/utils/exec"
	"github.com/puppis-io/puppis/utils/log"
	"github.com/puppis-io/puppis/utils/mutx"
)

// teardowns on one host serialize on this lock
const teardownLock = "TeardownLock"

type DeviceManager struct {

	// The implementation of executing a console command
	Executor exec.Executor
	// every teardown takes the global lock first
	Mutex *mutx.GlobalLocks
	// sysfs reads
	Resolver *sysfs.Resolver
	// disk listing
	DiskManager device.LocalDevice
	// LVM operations
	LvmManager lvmd.Lvm2
	// bcache superblock inspection
	BcacheManager bcache.Bcache
	// mount inspection and unmounting
	MountManager mounts.Mounts
	// holder tree teardown
	Teardown *clearholders.Teardown
	// stop
	StopChan <-chan struct{}
	nodeName string
}

func NewDeviceManager(nodeName string, stopChan <-chan struct{}) *DeviceManager {
	executor := &exec.CommandExecutor{}
	mutex := mutx.NewGlobalLocks()
	resolver := sysfs.NewResolver()
	lvm := &lvmd.Lvm2Implement{Executor: executor}
	dm := DeviceManager{
		Executor:      executor,
		Mutex:         mutex,
		Resolver:      resolver,
		DiskManager:   &device.LocalDeviceImplement{Executor: executor},
		LvmManager:    lvm,
		BcacheManager: &bcache.BcacheImplement{Executor: executor},
		MountManager:  mounts.NewMountsImplement(),
		StopChan:      stopChan,
		nodeName:      nodeName,
	}
	dm.Teardown = clearholders.NewTeardown(resolver, lvm, configuredWipe{
		real: wipe.NewLocalWipeImplement(mutex, executor, lvm),
	})
	return &dm
}

// configuredWipe honors the wipeAfterShutdown switch at call time, a
// config reload takes effect without rebuilding the manager.
type configuredWipe struct {
	real wipe.LocalWipe
}

func (w configuredWipe) Run(action wipe.Action) error {
	if !configuration.WipeAfterShutdown() {
		log.Infof("wipe disabled by configuration, skipping %s", action)
		return nil
	}
	return w.real.Run(action)
}

func (w configuredWipe) UdevSettle() error { return w.real.UdevSettle() }

var protectedDevice = configuration.Protected

// ClearDevice dismantles everything stacked on device. Protected devices
// are refused before anything is touched.
func (dm *DeviceManager) ClearDevice(devicePath string) (bool, []error) {
	if protectedDevice(devicePath) {
		return false, []error{fmt.Errorf("device %s is protected by configuration", devicePath)}
	}

	if !dm.Mutex.TryAcquire(teardownLock) {
		log.Info("wait other task release mutex, please retry...")
		return false, []error{errors.New("get global mutex failed")}
	}
	defer dm.Mutex.Release(teardownLock)

	if disks, err := dm.DiskManager.ListDevicesDetail(devicePath); err != nil {
		log.Debugf("lsblk %s: %v", devicePath, err)
	} else {
		for _, d := range disks {
			log.Infof("clear preflight %s kname %s type %s fstype %s mountpoint %s",
				d.Name, d.KName, d.Type, d.Filesystem, d.MountPoint)
		}
	}

	if configuration.UmountBeforeClear() {
		if err := dm.unmountStack(devicePath); err != nil {
			return false, []error{err}
		}
	}

	return dm.Teardown.ClearHolders(devicePath)
}

// CheckClear is ClearDevice with leftover holders promoted to a hard
// failure. Every fault tolerated along the way ends up in the log.
func (dm *DeviceManager) CheckClear(devicePath string) error {
	ok, errs := dm.ClearDevice(devicePath)
	if ok {
		return nil
	}
	for _, e := range errs {
		log.Errorf("clear holders of %s: %v", devicePath, e)
	}
	return fmt.Errorf("could not clear holders for device: %s", devicePath)
}

// DeviceStatus reports the holder stack of every block device lsblk knows
// about. Devices that cannot be inspected are skipped with a warning.
func (dm *DeviceManager) DeviceStatus() ([]types.DeviceStatus, error) {
	names, err := dm.DiskManager.ListDevices()
	if err != nil {
		return nil, err
	}
	statuses := make([]types.DeviceStatus, 0, len(names))
	for _, name := range names {
		st, err := dm.StatusFor(name)
		if err != nil {
			log.Warnf("status of %s: %v", name, err)
			continue
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// StackReport bundles the holder stacks with the lsblk listing and the
// lvm2 report tables.
type StackReport struct {
	Devices []types.DeviceStatus `json:"devices"`
	Disks   []*types.LocalDisk   `json:"disks,omitempty"`
	VGs     []types.VgGroup      `json:"vgs,omitempty"`
	LVs     []types.LvInfo       `json:"lvs,omitempty"`
	PVs     []types.PVInfo       `json:"pvs,omitempty"`
}

// StackReport inspects the whole node. The lvm2 tables are best effort,
// a host without lvm2 still gets the sysfs view.
func (dm *DeviceManager) StackReport() (*StackReport, error) {
	statuses, err := dm.DeviceStatus()
	if err != nil {
		return nil, err
	}
	report := &StackReport{Devices: statuses}

	if disks, err := dm.DiskManager.ListDevicesDetail(""); err != nil {
		log.Warnf("lsblk: %v", err)
	} else {
		report.Disks = disks
	}
	if vgs, err := dm.LvmManager.VGS(); err != nil {
		log.Warnf("vgs: %v", err)
	} else {
		report.VGs = vgs
	}
	if lvs, err := dm.LvmManager.LVS(""); err != nil {
		log.Warnf("lvs: %v", err)
	} else {
		report.LVs = lvs
	}
	if pvs, err := dm.LvmManager.PVS(); err != nil {
		log.Warnf("pvs: %v", err)
	} else {
		report.PVs = pvs
	}
	return report, nil
}

// StatusFor inspects one device.
func (dm *DeviceManager) StatusFor(devicePath string) (types.DeviceStatus, error) {
	st := types.DeviceStatus{
		Device:    devicePath,
		Protected: protectedDevice(devicePath),
	}
	sysPath, err := dm.Resolver.SysBlockPath(devicePath)
	if err != nil {
		return st, err
	}
	st.KName = dm.Resolver.DevName(sysPath)

	holders, err := dm.Resolver.Holders(sysPath)
	if err != nil {
		return st, err
	}
	st.Holders = holders

	for _, marker := range []string{puppis.BcacheMarker, puppis.RaidMarker, puppis.DmMarker} {
		if dm.Resolver.HasLayerMarker(sysPath, marker) {
			st.Layers = append(st.Layers, marker)
		}
	}

	if dm.Resolver.HasLayerMarker(sysPath, puppis.BcacheMarker) {
		if node, err := dm.Resolver.DevPath(sysPath); err == nil {
			info, err := dm.BcacheManager.ShowDevice(node)
			if err != nil {
				log.Warnf("bcache superblock of %s: %v", node, err)
			} else {
				st.Bcache = info
			}
		}
	}

	points, err := dm.MountManager.ListForDevices(dm.stackDevPaths(devicePath))
	if err != nil {
		log.Warnf("list mounts of %s: %v", devicePath, err)
	}
	for _, p := range points {
		st.Mountpoints = append(st.Mountpoints, p.MountPoint)
	}
	return st, nil
}

// unmountStack unmounts every filesystem backed by device or by anything
// stacked on it, deepest mount first.
func (dm *DeviceManager) unmountStack(devicePath string) error {
	points, err := dm.MountManager.ListForDevices(dm.stackDevPaths(devicePath))
	if err != nil {
		return err
	}
	return dm.MountManager.UnmountAll(points)
}

// stackDevPaths collects the /dev nodes of device and of every device
// transitively stacked on it. Device mapper nodes get their /dev/mapper
// alias as well, mount tables usually name that one.
func (dm *DeviceManager) stackDevPaths(devicePath string) []string {
	var paths []string
	seen := map[string]bool{}
	var walk func(node string)
	walk = func(node string) {
		sysPath, err := dm.Resolver.SysBlockPath(node)
		if err != nil || seen[sysPath] {
			return
		}
		seen[sysPath] = true
		paths = append(paths, filepath.Join(dm.Resolver.Dev, dm.Resolver.DevName(sysPath)))
		if dm.Resolver.HasLayerMarker(sysPath, puppis.DmMarker) {
			if name, err := dm.Resolver.DMName(sysPath); err == nil {
				paths = append(paths, filepath.Join(dm.Resolver.Dev, "mapper", name))
			}
		}
		holders, err := dm.Resolver.Holders(sysPath)
		if err != nil {
			return
		}
		for _, h := range holders {
			real, err := dm.Resolver.RealHolderPath(sysPath, h)
			if err != nil {
				continue
			}
			walk(real)
		}
	}
	walk(devicePath)
	return paths
}

// DeviceScanTask periodically logs the devices that still carry layered
// stacks, serve mode runs this until stopped.
func (dm *DeviceManager) DeviceScanTask() {
	log.Infof("init device scan on node %s", dm.nodeName)

	ticker := time.NewTicker(60 * time.Second)
	go func(t *time.Ticker) {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				statuses, err := dm.DeviceStatus()
				if err != nil {
					log.Error("device scan failed: " + err.Error())
					continue
				}
				for _, st := range statuses {
					if len(st.Holders) > 0 || len(st.Layers) > 0 {
						log.Infof("device %s holders %v layers %v", st.Device, st.Holders, st.Layers)
					}
				}
			case <-dm.StopChan:
				log.Info("stop device scan task")
				return
			}
		}
	}(ticker)
}
