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
	"strconv"
	"strings"

	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/utils/log"
)

func parseVgs(vgsString string) []types.VgGroup {
	// LVM2_VG_NAME='lvmvg',LVM2_PV_COUNT='1',LVM2_LV_COUNT='0',LVM2_VG_ATTR='wz--n-',LVM2_VG_SIZE='16101933056',LVM2_VG_FREE='16101933056'
	// LVM2_VG_NAME='v1',LVM2_PV_COUNT='2',LVM2_LV_COUNT='0',LVM2_VG_ATTR='wz--n-',LVM2_VG_SIZE='32203866112',LVM2_VG_FREE='32203866112'
	resp := []types.VgGroup{}

	if vgsString == "" {
		return resp
	}

	vgsString = strings.ReplaceAll(vgsString, "'", "")
	vgsString = strings.ReplaceAll(vgsString, " ", "")

	vgsList := strings.Split(vgsString, "\n")
	for _, vgs := range vgsList {
		if vgs == "" {
			continue
		}
		tmp := types.VgGroup{}
		vg := strings.Split(vgs, ",")
		for _, v := range vg {
			k := strings.SplitN(v, "=", 2)
			if len(k) != 2 {
				continue
			}

			switch k[0] {
			case "LVM2_VG_NAME":
				tmp.VGName = k[1]
			case "LVM2_PV_COUNT":
				tmp.PVCount, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_LV_COUNT":
				tmp.LVCount, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_VG_ATTR":
				tmp.VGAttr = k[1]
			case "LVM2_VG_SIZE":
				tmp.VGSize, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_VG_FREE":
				tmp.VGFree, _ = strconv.ParseUint(k[1], 10, 64)
			default:
				log.Warnf("undefined field %s=%s", k[0], k[1])
			}
		}
		tmp.PVS = []*types.PVInfo{}
		resp = append(resp, tmp)
	}
	return resp
}

func parseLvs(lvsString string) []types.LvInfo {
	// LVM2_LV_NAME='data',LVM2_VG_NAME='v1',LVM2_LV_PATH='/dev/v1/data',LVM2_LV_SIZE='1073741824',LVM2_LV_ATTR='-wi-a-----',LVM2_LV_KERNEL_MAJOR='252',LVM2_LV_KERNEL_MINOR='0'
	resp := []types.LvInfo{}
	if lvsString == "" {
		return resp
	}

	lvsString = strings.ReplaceAll(lvsString, "'", "")
	lvsString = strings.ReplaceAll(lvsString, " ", "")

	lvsList := strings.Split(lvsString, "\n")
	for _, lvs := range lvsList {
		if lvs == "" {
			continue
		}
		tmp := types.LvInfo{}
		lv := strings.Split(lvs, ",")
		for _, v := range lv {
			k := strings.SplitN(v, "=", 2)
			if len(k) != 2 {
				continue
			}

			switch k[0] {
			case "LVM2_LV_NAME":
				tmp.LVName = k[1]
			case "LVM2_VG_NAME":
				tmp.VGName = k[1]
			case "LVM2_LV_PATH":
				tmp.LVPath = k[1]
			case "LVM2_LV_SIZE":
				tmp.LVSize, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_LV_ATTR":
				tmp.LVAttr = k[1]
			case "LVM2_LV_KERNEL_MAJOR":
				tmp.LVKernelMajor, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_LV_KERNEL_MINOR":
				tmp.LVKernelMinor, _ = strconv.ParseUint(k[1], 10, 64)
			default:
				log.Warnf("undefined field %s=%s", k[0], k[1])
			}
		}
		resp = append(resp, tmp)
	}
	return resp
}

func parsePvs(pvsString string) []types.PVInfo {
	// LVM2_PV_NAME='/dev/loop2',LVM2_VG_NAME='lvmvg',LVM2_PV_FMT='lvm2',LVM2_PV_ATTR='a--',LVM2_PV_SIZE='16101933056',LVM2_PV_FREE='16101933056'
	resp := []types.PVInfo{}

	if pvsString == "" {
		return resp
	}

	pvsString = strings.ReplaceAll(pvsString, "'", "")
	pvsString = strings.ReplaceAll(pvsString, " ", "")

	pvsList := strings.Split(pvsString, "\n")
	for _, pvs := range pvsList {
		if pvs == "" {
			continue
		}
		tmp := types.PVInfo{}
		pv := strings.Split(pvs, ",")
		for _, v := range pv {
			k := strings.SplitN(v, "=", 2)
			if len(k) != 2 {
				continue
			}

			switch k[0] {
			case "LVM2_PV_NAME":
				tmp.PVName = k[1]
			case "LVM2_VG_NAME":
				tmp.VGName = k[1]
			case "LVM2_PV_FMT":
				tmp.PVFmt = k[1]
			case "LVM2_PV_ATTR":
				tmp.PVAttr = k[1]
			case "LVM2_PV_SIZE":
				tmp.PVSize, _ = strconv.ParseUint(k[1], 10, 64)
			case "LVM2_PV_FREE":
				tmp.PVFree, _ = strconv.ParseUint(k[1], 10, 64)
			default:
				log.Warnf("undefined field %s=%s", k[0], k[1])
			}
		}
		resp = append(resp, tmp)
	}
	return resp
}
