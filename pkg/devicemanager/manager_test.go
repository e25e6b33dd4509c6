package deviceManager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/puppis-io/puppis/pkg/devicemanager/clearholders"
	"github.com/puppis-io/puppis/pkg/devicemanager/mounts"
	"github.com/puppis-io/puppis/pkg/devicemanager/sysfs"
	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/pkg/devicemanager/wipe"
	"github.com/puppis-io/puppis/utils/mutx"
)

type fixture struct {
	root string
	r    *sysfs.Resolver
}

func newFixture(t *testing.T) *fixture {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{"sys/block", "sys/class/block", "sys/dev/block", "sys/devices/virtual/block", "dev"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{
		root: root,
		r: &sysfs.Resolver{
			SysBlock:      filepath.Join(root, "sys/block"),
			SysClassBlock: filepath.Join(root, "sys/class/block"),
			SysDevBlock:   filepath.Join(root, "sys/dev/block"),
			Dev:           filepath.Join(root, "dev"),
		},
	}
}

func (f *fixture) addDevice(t *testing.T, name string, markers ...string) string {
	real := filepath.Join(f.root, "sys/devices/virtual/block", name)
	if err := os.MkdirAll(filepath.Join(real, "holders"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, m := range markers {
		if err := os.MkdirAll(filepath.Join(real, m), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(real, filepath.Join(f.root, "sys/class/block", name)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.root, "dev", name), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	return real
}

func (f *fixture) stack(t *testing.T, lowerPath, holder string) {
	target := filepath.Join(f.root, "sys/devices/virtual/block", holder)
	if err := os.Symlink(target, filepath.Join(lowerPath, "holders", holder)); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) setDMName(t *testing.T, sysPath, name string) {
	if err := os.WriteFile(filepath.Join(sysPath, "dm", "name"), []byte(name+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) dropDevice(t *testing.T, name string, lowers ...string) {
	if err := os.RemoveAll(filepath.Join(f.root, "sys/devices/virtual/block", name)); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(f.root, "sys/class/block", name)); err != nil {
		t.Fatal(err)
	}
	for _, lower := range lowers {
		link := filepath.Join(f.root, "sys/devices/virtual/block", lower, "holders", name)
		if err := os.Remove(link); err != nil {
			t.Fatal(err)
		}
	}
}

type fakeLvm struct {
	events   *[]string
	onRemove map[string]func()
	vgs      []types.VgGroup
	lvs      []types.LvInfo
	pvs      []types.PVInfo
}

func (f *fakeLvm) LVRemove(lv, vg string) error {
	key := vg + "/" + lv
	*f.events = append(*f.events, "lvremove "+key)
	if fn := f.onRemove[key]; fn != nil {
		fn()
	}
	return nil
}

func (f *fakeLvm) PVRemove(dev string) error                 { return nil }
func (f *fakeLvm) LVS(lvName string) ([]types.LvInfo, error) { return f.lvs, nil }
func (f *fakeLvm) VGS() ([]types.VgGroup, error)             { return f.vgs, nil }
func (f *fakeLvm) PVS() ([]types.PVInfo, error)              { return f.pvs, nil }
func (f *fakeLvm) Version() (string, error)                  { return "fake", nil }

type fakeWiper struct{ events *[]string }

func (f *fakeWiper) Run(action wipe.Action) error {
	*f.events = append(*f.events, "wipe "+action.String())
	return nil
}
func (f *fakeWiper) UdevSettle() error { return nil }

type fakeMounts struct {
	events *[]string
	points []mounts.Point
}

func (f *fakeMounts) ListForDevices(devPaths []string) ([]mounts.Point, error) {
	return f.points, nil
}

func (f *fakeMounts) UnmountAll(points []mounts.Point) error {
	for _, p := range points {
		*f.events = append(*f.events, "umount "+p.MountPoint)
	}
	return nil
}

type fakeDisks struct {
	names []string
	disks []*types.LocalDisk
}

func (f *fakeDisks) ListDevices() ([]string, error) { return f.names, nil }
func (f *fakeDisks) ListDevicesDetail(device string) ([]*types.LocalDisk, error) {
	return f.disks, nil
}

type fakeBcache struct{ info *types.BcacheDeviceInfo }

func (f *fakeBcache) ShowDevice(dev string) (*types.BcacheDeviceInfo, error) {
	return f.info, nil
}

func newTestManager(f *fixture, events *[]string, points []mounts.Point) (*DeviceManager, *fakeLvm) {
	lvm := &fakeLvm{events: events, onRemove: map[string]func(){}}
	dm := &DeviceManager{
		Mutex:         mutx.NewGlobalLocks(),
		Resolver:      f.r,
		DiskManager:   &fakeDisks{},
		LvmManager:    lvm,
		BcacheManager: &fakeBcache{info: &types.BcacheDeviceInfo{Uuid: "cafe"}},
		MountManager:  &fakeMounts{events: events, points: points},
	}
	dm.Teardown = clearholders.NewTeardown(f.r, lvm, &fakeWiper{events: events})
	return dm, lvm
}

func TestClearDeviceUnmountsFirst(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	disk := f.addDevice(t, "vdb")
	dm0 := f.addDevice(t, "dm-0", "dm")
	f.stack(t, disk, "dm-0")
	f.setDMName(t, dm0, "vg0-data")

	var events []string
	mgr, lvm := newTestManager(f, &events, []mounts.Point{
		{Source: "/dev/mapper/vg0-data", MountPoint: "/mnt/data", FSType: "ext4"},
	})
	lvm.onRemove["vg0/data"] = func() { f.dropDevice(t, "dm-0", "vdb") }

	ok, errs := mgr.ClearDevice("vdb")
	a.True(ok)
	a.Empty(errs)
	a.Equal([]string{"umount /mnt/data", "lvremove vg0/data"}, events)
}

func TestClearDeviceProtected(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "vdb")

	orig := protectedDevice
	protectedDevice = func(device string) bool { return device == "vdb" }
	defer func() { protectedDevice = orig }()

	var events []string
	mgr, _ := newTestManager(f, &events, []mounts.Point{
		{Source: "/dev/vdb", MountPoint: "/mnt/keep", FSType: "ext4"},
	})

	ok, errs := mgr.ClearDevice("vdb")
	a.False(ok)
	a.Len(errs, 1)
	a.Contains(errs[0].Error(), "protected")
	a.Empty(events)

	st, err := mgr.StatusFor("vdb")
	a.NoError(err)
	a.True(st.Protected)
}

func TestClearDeviceMutexBusy(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "vdb")

	var events []string
	mgr, _ := newTestManager(f, &events, nil)
	a.True(mgr.Mutex.TryAcquire(teardownLock))
	defer mgr.Mutex.Release(teardownLock)

	ok, errs := mgr.ClearDevice("vdb")
	a.False(ok)
	a.Len(errs, 1)
	a.Contains(errs[0].Error(), "mutex")
	a.Empty(events)
}

func TestCheckClearManager(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "vdb")

	var events []string
	mgr, _ := newTestManager(f, &events, nil)
	a.NoError(mgr.CheckClear("vdb"))

	// a holder entry that can never be resolved leaves the device uncleared
	disk := f.addDevice(t, "vdc")
	if err := os.Symlink(filepath.Join(f.root, "sys/devices/virtual/block", "gone"),
		filepath.Join(disk, "holders", "gone")); err != nil {
		t.Fatal(err)
	}

	err := mgr.CheckClear("vdc")
	a.Error(err)
	a.Contains(err.Error(), "could not clear holders for device")
	a.Contains(err.Error(), "vdc")
}

func TestStatusFor(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	disk := f.addDevice(t, "vdb")
	f.addDevice(t, "dm-0", "dm")
	f.stack(t, disk, "dm-0")

	var events []string
	mgr, _ := newTestManager(f, &events, []mounts.Point{
		{Source: "/dev/dm-0", MountPoint: "/mnt/data", FSType: "xfs"},
	})

	st, err := mgr.StatusFor("vdb")
	a.NoError(err)
	a.Equal("vdb", st.KName)
	a.Equal([]string{"dm-0"}, st.Holders)
	a.Empty(st.Layers)
	a.Equal([]string{"/mnt/data"}, st.Mountpoints)
	a.Nil(st.Bcache)
	a.False(st.Protected)
}

func TestStatusForBcacheMember(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "sdb", "bcache")

	var events []string
	mgr, _ := newTestManager(f, &events, nil)

	st, err := mgr.StatusFor("sdb")
	a.NoError(err)
	a.Equal([]string{"bcache"}, st.Layers)
	if a.NotNil(st.Bcache) {
		a.Equal("cafe", st.Bcache.Uuid)
	}
}

func TestDeviceStatusSkipsBroken(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "vdb")

	var events []string
	mgr, _ := newTestManager(f, &events, nil)
	mgr.DiskManager = &fakeDisks{names: []string{"vdb", "ghost"}}

	statuses, err := mgr.DeviceStatus()
	a.NoError(err)
	a.Len(statuses, 1)
	a.Equal("vdb", statuses[0].KName)
}

func TestStackReport(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	f.addDevice(t, "vdb")

	var events []string
	mgr, lvm := newTestManager(f, &events, nil)
	mgr.DiskManager = &fakeDisks{
		names: []string{"vdb"},
		disks: []*types.LocalDisk{{Name: "/dev/vdb", KName: "vdb", Type: types.DiskType}},
	}
	lvm.vgs = []types.VgGroup{{VGName: "vg0", PVCount: 1, LVCount: 2}}
	lvm.lvs = []types.LvInfo{{LVName: "data", VGName: "vg0"}}
	lvm.pvs = []types.PVInfo{{PVName: "/dev/vdb", VGName: "vg0"}}

	report, err := mgr.StackReport()
	a.NoError(err)
	if a.Len(report.Devices, 1) {
		a.Equal("vdb", report.Devices[0].KName)
	}
	if a.Len(report.Disks, 1) {
		a.Equal("/dev/vdb", report.Disks[0].Name)
	}
	a.Equal("vg0", report.VGs[0].VGName)
	a.Equal("data", report.LVs[0].LVName)
	a.Equal("/dev/vdb", report.PVs[0].PVName)
}

func TestStackDevPaths(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	disk := f.addDevice(t, "vdb")
	dm0 := f.addDevice(t, "dm-0", "dm")
	f.stack(t, disk, "dm-0")
	f.setDMName(t, dm0, "vg0-data")

	var events []string
	mgr, _ := newTestManager(f, &events, nil)

	paths := mgr.stackDevPaths("vdb")
	a.Equal([]string{
		filepath.Join(f.r.Dev, "vdb"),
		filepath.Join(f.r.Dev, "dm-0"),
		filepath.Join(f.r.Dev, "mapper", "vg0-data"),
	}, paths)
}
