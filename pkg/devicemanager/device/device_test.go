package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeExecutor struct {
	calls  [][]string
	output string
	err    error
}

func (f *fakeExecutor) record(command string, arg ...string) {
	f.calls = append(f.calls, append([]string{command}, arg...))
}

func (f *fakeExecutor) ExecuteCommandWithOutput(command string, arg ...string) (string, error) {
	f.record(command, arg...)
	return f.output, f.err
}

func (f *fakeExecutor) ExecuteCommandWithTimeout(timeout time.Duration, command string, arg ...string) (string, error) {
	f.record(command, arg...)
	return f.output, f.err
}

func TestParseDiskString(t *testing.T) {
	a := assert.New(t)

	out := `NAME="/dev/vdb" KNAME="vdb" FSTYPE="LVM2_member" MOUNTPOINT="" SIZE="17179869184" STATE="" TYPE="disk" ROTA="1" RO="0" PKNAME=""
NAME="/dev/mapper/v1-data" KNAME="dm-0" FSTYPE="ext4" MOUNTPOINT="/data" SIZE="1073741824" STATE="running" TYPE="lvm" ROTA="1" RO="0" PKNAME="vdb"`

	disks := parseDiskString(out)
	a.Len(disks, 2)

	a.Equal("/dev/vdb", disks[0].Name)
	a.Equal("vdb", disks[0].KName)
	a.Equal("LVM2_member", disks[0].Filesystem)
	a.Equal(uint64(17179869184), disks[0].Size)
	a.Equal("disk", disks[0].Type)
	a.False(disks[0].Readonly)
	a.Empty(disks[0].ParentName)

	a.Equal("dm-0", disks[1].KName)
	a.Equal("lvm", disks[1].Type)
	a.Equal("/data", disks[1].MountPoint)
	a.Equal("vdb", disks[1].ParentName)

	a.Empty(parseDiskString(""))
}

func TestParseDiskStringReadonly(t *testing.T) {
	a := assert.New(t)

	out := `NAME="/dev/loop0" KNAME="loop0" FSTYPE="squashfs" MOUNTPOINT="/snap/core/10583" SIZE="102637568" STATE="" TYPE="loop" ROTA="1" RO="1" PKNAME=""`

	disks := parseDiskString(out)
	a.Len(disks, 1)
	a.True(disks[0].Readonly)
}

func TestListDevicesDetailArgs(t *testing.T) {
	a := assert.New(t)

	f := &fakeExecutor{}
	ld := &LocalDeviceImplement{Executor: f}

	_, err := ld.ListDevicesDetail("/dev/vdb")
	a.NoError(err)
	a.Len(f.calls, 1)
	a.Equal("lsblk", f.calls[0][0])
	a.Equal("/dev/vdb", f.calls[0][len(f.calls[0])-1])

	_, err = ld.ListDevicesDetail("")
	a.NoError(err)
	a.NotContains(f.calls[1], "/dev/vdb")
}
