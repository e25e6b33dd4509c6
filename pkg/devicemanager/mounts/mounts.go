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

package mounts

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/procfs"
	"k8s.io/mount-utils"

	"github.com/puppis-io/puppis/utils/log"
)

// Point is one live mount of a device somewhere in the tree.
type Point struct {
	Source     string `json:"source"`
	MountPoint string `json:"mountPoint"`
	FSType     string `json:"fsType"`
}

type Mounts interface {
	// ListForDevices returns the mounts whose source is one of the given
	// device nodes, deepest mount point first.
	ListForDevices(devPaths []string) ([]Point, error)
	// UnmountAll unmounts the given points in order.
	UnmountAll(points []Point) error
}

type MountsImplement struct {
	Mounter mount.Interface
}

func NewMountsImplement() *MountsImplement {
	return &MountsImplement{Mounter: mount.New("")}
}

func (m *MountsImplement) ListForDevices(devPaths []string) ([]Point, error) {
	self, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("open procfs: %v", err)
	}
	infos, err := self.MountInfo()
	if err != nil {
		return nil, fmt.Errorf("read mountinfo: %v", err)
	}
	return filterAndOrder(infos, devPaths), nil
}

func (m *MountsImplement) UnmountAll(points []Point) error {
	for _, p := range points {
		log.Infof("umount %s from %s", p.Source, p.MountPoint)
		if err := m.Mounter.Unmount(p.MountPoint); err != nil {
			return fmt.Errorf("umount %s: %v", p.MountPoint, err)
		}
	}
	return nil
}

// filterAndOrder keeps the mountinfo entries sourced from one of devPaths
// and orders them so children unmount before their parents. Mount sources
// are often symlinks (/dev/mapper/v1-data -> /dev/dm-0), both spellings
// match.
func filterAndOrder(infos []*procfs.MountInfo, devPaths []string) []Point {
	wanted := map[string]bool{}
	for _, p := range devPaths {
		wanted[p] = true
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			wanted[resolved] = true
		}
	}

	points := []Point{}
	for _, info := range infos {
		source := info.Source
		if !wanted[source] {
			resolved, err := filepath.EvalSymlinks(source)
			if err != nil || !wanted[resolved] {
				continue
			}
		}
		points = append(points, Point{
			Source:     source,
			MountPoint: info.MountPoint,
			FSType:     info.FSType,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		di := strings.Count(points[i].MountPoint, "/")
		dj := strings.Count(points[j].MountPoint, "/")
		if di != dj {
			return di > dj
		}
		return len(points[i].MountPoint) > len(points[j].MountPoint)
	})
	return points
}
