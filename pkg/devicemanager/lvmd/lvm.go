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

package lvmd

import (
	"fmt"
	"strings"

	"github.com/puppis-io/puppis/pkg/configuration"
	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/utils/exec"
)

type Lvm2Implement struct {
	Executor exec.Executor
}

// LVRemove deactivates and deletes one logical volume. The volume group is
// left alone, other volumes may still live in it. The wrapped error keeps
// the process exit information so callers can tell "already gone" from a
// real failure. lvremove hangs forever on a suspended dm device, hence the
// configured timeout.
func (lv2 *Lvm2Implement) LVRemove(lv, vg string) error {
	output, err := lv2.Executor.ExecuteCommandWithTimeout(configuration.CommandTimeout(),
		"lvremove", "--force", "--force", fmt.Sprintf("%s/%s", vg, lv))
	if err != nil {
		return fmt.Errorf("lvremove %s/%s: %w, output: %s", vg, lv, err, output)
	}
	return nil
}

// PVRemove wipes the lvm2 label from a physical volume.
func (lv2 *Lvm2Implement) PVRemove(dev string) error {
	output, err := lv2.Executor.ExecuteCommandWithTimeout(configuration.CommandTimeout(),
		"pvremove", "--force", "--force", "--yes", dev)
	if err != nil {
		return fmt.Errorf("pvremove %s: %w, output: %s", dev, err, output)
	}
	return nil
}

// PVS 示例输出
// pvs --noheadings --separator=, --units=b --nosuffix --unbuffered --nameprefixes
// LVM2_PV_NAME='/dev/loop2',LVM2_VG_NAME='lvmvg',LVM2_PV_FMT='lvm2',LVM2_PV_ATTR='a--',LVM2_PV_SIZE='16101933056',LVM2_PV_FREE='16101933056'
func (lv2 *Lvm2Implement) PVS() ([]types.PVInfo, error) {
	args := []string{"--noheadings", "--separator=,", "--units=b", "--nosuffix", "--unbuffered", "--nameprefixes"}

	pvsInfo, err := lv2.Executor.ExecuteCommandWithOutput("pvs", args...)
	if err != nil {
		return nil, err
	}
	return parsePvs(pvsInfo), nil
}

// VGS 示例
// vgs --noheadings --separator=, --units=b --nosuffix --unbuffered --nameprefixes
// LVM2_VG_NAME='lvmvg',LVM2_PV_COUNT='1',LVM2_LV_COUNT='0',LVM2_VG_ATTR='wz--n-',LVM2_VG_SIZE='16101933056',LVM2_VG_FREE='16101933056'
func (lv2 *Lvm2Implement) VGS() ([]types.VgGroup, error) {
	fields := []string{"-o", "VG_NAME,PV_COUNT,LV_COUNT,VG_ATTR,VG_SIZE,VG_FREE"}
	args := []string{"--noheadings", "--separator=,", "--units=b", "--nosuffix", "--unbuffered", "--nameprefixes"}

	vgsInfo, err := lv2.Executor.ExecuteCommandWithOutput("vgs", append(fields, args...)...)
	if err != nil {
		return nil, err
	}

	return parseVgs(vgsInfo), nil
}

// LVS lists logical volumes, all of them when lvName is empty.
/*
# lvs -o lv_name,vg_name,lv_path,lv_size,lv_attr,lv_kernel_major,lv_kernel_minor --noheadings --separator=, --units=b --nosuffix --unbuffered --nameprefixes
  LVM2_LV_NAME='data',LVM2_VG_NAME='v1',LVM2_LV_PATH='/dev/v1/data',LVM2_LV_SIZE='1073741824',LVM2_LV_ATTR='-wi-a-----',LVM2_LV_KERNEL_MAJOR='252',LVM2_LV_KERNEL_MINOR='0'
*/
func (lv2 *Lvm2Implement) LVS(lvName string) ([]types.LvInfo, error) {
	fields := []string{"-o", "lv_name,vg_name,lv_path,lv_size,lv_attr,lv_kernel_major,lv_kernel_minor"}
	args := []string{"--noheadings", "--separator=,", "--units=b", "--nosuffix", "--unbuffered", "--nameprefixes"}

	if lvName != "" {
		args = append(args, lvName)
	}

	lvsInfo, err := lv2.Executor.ExecuteCommandWithOutput("lvs", append(fields, args...)...)
	if err != nil && strings.Contains(lvsInfo, "Failed to find logical volume") {
		return []types.LvInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lvs: %w, output: %s", err, lvsInfo)
	}
	return parseLvs(lvsInfo), nil
}

// Version reports the installed lvm2 version string.
func (lv2 *Lvm2Implement) Version() (string, error) {
	out, err := lv2.Executor.ExecuteCommandWithOutput("lvm", "version")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "LVM version") {
			return strings.TrimSpace(line), nil
		}
	}
	return strings.TrimSpace(out), nil
}
