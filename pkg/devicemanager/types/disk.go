package types

const (
	// DiskType is a disk type
	DiskType = "disk"
	// PartType is a partition type
	PartType = "part"
	// CryptType is an encrypted type
	CryptType = "crypt"
	// LVMType is an LVM type
	LVMType = "lvm"
	// MultiPath is for multipath devices
	MultiPath = "mpath"
	// RaidPrefix matches raid0, raid1, raid5...
	RaidPrefix = "raid"
	// DeviceMapperPrefix is the kernel name prefix of device mapper nodes
	DeviceMapperPrefix = "dm-"
	// BcachePrefix is the kernel name prefix of bcache nodes
	BcachePrefix = "bcache"
)

type LocalDisk struct {
	// Name is the device path, e.g. /dev/vdb1
	Name string `json:"name"`
	// KName is the kernel device name, e.g. vdb1
	KName string `json:"kname"`
	// mount point
	MountPoint string `json:"mountPoint"`
	// Size is the device capacity in byte
	Size uint64 `json:"size"`
	// status
	State string `json:"state"`
	// Type is disk type
	Type string `json:"type"`
	// 1 for hdd, 0 for ssd and nvme
	Rotational string `json:"rotational"`
	// ReadOnly is the boolean whether the device is readonly
	Readonly bool `json:"readOnly"`
	// Filesystem is the filesystem currently on the device
	Filesystem string `json:"filesystem"`
	// parent kernel name
	ParentName string `json:"parentName"`
}
