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

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
	"k8s.io/utils/io"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/utils"
	"github.com/puppis-io/puppis/utils/log"
)

// Kernel virtual files can change between the two reads of a plain
// read-then-stat loop, ConsistentRead retries until two reads agree.
const maxReadRetries = 3

type temporaryer interface {
	Temporary() bool
}

// Resolver locates the sysfs entry of a block device and reads per-device
// attributes. The roots are variables so tests can point a Resolver at a
// fixture tree.
type Resolver struct {
	SysBlock      string
	SysClassBlock string
	SysDevBlock   string
	Dev           string
}

func NewResolver() *Resolver {
	return &Resolver{
		SysBlock:      puppis.SysBlockPath,
		SysClassBlock: puppis.SysClassBlockPath,
		SysDevBlock:   puppis.SysDevBlockPath,
		Dev:           puppis.DevPath,
	}
}

// SysBlockPath returns the canonical sysfs entry of device. The device may
// be given as a kernel name (vdb, dm-0), as a node under /dev, or as an
// existing sysfs path.
func (r *Resolver) SysBlockPath(device string) (string, error) {
	if device == "" {
		return "", fmt.Errorf("block device not found: empty name")
	}

	var candidate string
	switch {
	case strings.HasPrefix(device, r.Dev+"/"):
		major, minor, err := r.devNumbers(device)
		if err != nil {
			return "", fmt.Errorf("block device %s not found: %v", device, err)
		}
		candidate = filepath.Join(r.SysDevBlock, fmt.Sprintf("%d:%d", major, minor))
	case strings.Contains(device, "/"):
		// an existing sysfs entry, e.g. /sys/block/vdb or a resolved
		// /sys/devices/... path
		candidate = device
	default:
		candidate = filepath.Join(r.SysClassBlock, device)
	}

	path, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		log.Debugf("resolve %s via %s: %v", device, candidate, err)
		return "", fmt.Errorf("block device %s not found: %v", device, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("block device %s not found: %v", device, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("block device %s not found: %s is not a sysfs entry", device, path)
	}
	return path, nil
}

// Holders lists the devices stacked on top of the node at sysPath. An
// absent holders directory means no holders, not an error.
func (r *Resolver) Holders(sysPath string) ([]string, error) {
	return readDirNames(filepath.Join(sysPath, puppis.HoldersDir))
}

// Slaves lists the devices the node at sysPath is built from.
func (r *Resolver) Slaves(sysPath string) ([]string, error) {
	return readDirNames(filepath.Join(sysPath, puppis.SlavesDir))
}

// RealHolderPath resolves one holders entry to the holder's own sysfs
// entry. The entry is a symlink into /sys/devices and may vanish while the
// stack is being torn down.
func (r *Resolver) RealHolderPath(sysPath, holder string) (string, error) {
	return filepath.EvalSymlinks(filepath.Join(sysPath, puppis.HoldersDir, holder))
}

// HasLayerMarker reports whether the node at sysPath carries the given
// virtual layer marker directory (bcache, md, dm).
func (r *Resolver) HasLayerMarker(sysPath, marker string) bool {
	return utils.FileExists(filepath.Join(sysPath, marker))
}

// DMName reads the device mapper name of the node at sysPath.
func (r *Resolver) DMName(sysPath string) (string, error) {
	data, err := io.ConsistentRead(filepath.Join(sysPath, puppis.DmMarker, "name"), maxReadRetries)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// DevName returns the kernel name of the node at sysPath.
func (r *Resolver) DevName(sysPath string) string {
	return filepath.Base(sysPath)
}

// DevPath returns the device node of the node at sysPath.
func (r *Resolver) DevPath(sysPath string) (string, error) {
	node := filepath.Join(r.Dev, filepath.Base(sysPath))
	if !utils.FileExists(node) {
		return "", fmt.Errorf("device node %s not found", node)
	}
	return node, nil
}

func (r *Resolver) devNumbers(node string) (uint32, uint32, error) {
	var st unix.Stat_t
	if err := stat(node, &st); err != nil {
		return 0, 0, err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0, 0, fmt.Errorf("%s is not a block device", node)
	}
	rdev := uint64(st.Rdev)
	return unix.Major(rdev), unix.Minor(rdev), nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// stat wraps golang.org/x/sys/unix.Stat to retry on EINTR for Go 1.14+
func stat(path string, st *unix.Stat_t) error {
	for {
		err := unix.Stat(path, st)
		if err == nil {
			return nil
		}
		if e, ok := err.(temporaryer); ok && e.Temporary() {
			continue
		}
		return err
	}
}
