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

package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/puppis-io/puppis/pkg/devicemanager/types"
	"github.com/puppis-io/puppis/utils/exec"
	"github.com/puppis-io/puppis/utils/log"
)

type LocalDevice interface {
	// ListDevices list all devices available on a machine
	ListDevices() ([]string, error)
	// ListDevicesDetail lists the whole stack below and above device,
	// or every block device when device is empty
	ListDevicesDetail(device string) ([]*types.LocalDisk, error)
}

type LocalDeviceImplement struct {
	Executor exec.Executor
}

func (ld *LocalDeviceImplement) ListDevices() ([]string, error) {
	devices, err := ld.Executor.ExecuteCommandWithOutput("lsblk", "--all", "--noheadings", "--list", "--output", "KNAME")
	if err != nil {
		return nil, fmt.Errorf("failed to list all devices: %+v", err)
	}

	return strings.Split(devices, "\n"), nil
}

/*
# lsblk --pairs --paths --bytes --output NAME,KNAME,FSTYPE,MOUNTPOINT,SIZE,STATE,TYPE,ROTA,RO,PKNAME /dev/vdb
NAME="/dev/vdb" KNAME="vdb" FSTYPE="LVM2_member" MOUNTPOINT="" SIZE="17179869184" STATE="" TYPE="disk" ROTA="1" RO="0" PKNAME=""
NAME="/dev/mapper/v1-data" KNAME="dm-0" FSTYPE="ext4" MOUNTPOINT="" SIZE="1073741824" STATE="running" TYPE="lvm" ROTA="1" RO="0" PKNAME="vdb"
*/
func (ld *LocalDeviceImplement) ListDevicesDetail(device string) ([]*types.LocalDisk, error) {
	args := []string{"--pairs", "--paths", "--bytes", "--output", "NAME,KNAME,FSTYPE,MOUNTPOINT,SIZE,STATE,TYPE,ROTA,RO,PKNAME"}
	if device != "" {
		args = append(args, device)
	}
	devices, err := ld.Executor.ExecuteCommandWithOutput("lsblk", args...)
	if err != nil {
		log.Error("exec lsblk failed" + err.Error())
		return nil, err
	}

	return parseDiskString(devices), nil
}

func parseDiskString(diskString string) []*types.LocalDisk {
	resp := []*types.LocalDisk{}

	if diskString == "" {
		return resp
	}

	diskString = strings.ReplaceAll(diskString, "\"", "")

	diskList := strings.Split(diskString, "\n")
	for _, disk := range diskList {
		if strings.TrimSpace(disk) == "" {
			continue
		}
		tmp := types.LocalDisk{}
		fields := strings.Split(disk, " ")
		for _, v := range fields {
			k := strings.SplitN(v, "=", 2)
			if len(k) != 2 {
				continue
			}

			switch k[0] {
			case "NAME":
				tmp.Name = k[1]
			case "KNAME":
				tmp.KName = k[1]
			case "MOUNTPOINT":
				tmp.MountPoint = k[1]
			case "SIZE":
				tmp.Size, _ = strconv.ParseUint(k[1], 10, 64)
			case "STATE":
				tmp.State = k[1]
			case "TYPE":
				tmp.Type = k[1]
			case "ROTA":
				tmp.Rotational = k[1]
			case "RO":
				tmp.Readonly = k[1] == "1"
			case "FSTYPE":
				tmp.Filesystem = k[1]
			case "PKNAME":
				tmp.ParentName = k[1]
			default:
				log.Warnf("undefined field %s=%s", k[0], k[1])
			}
		}

		resp = append(resp, &tmp)
	}
	return resp
}
