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

package types

// DeviceStatus describes one block device and the storage stack
// currently layered on top of it.
type DeviceStatus struct {
	// Device is the path under /dev the caller asked about.
	Device string `json:"device"`
	// KName is the kernel name backing the device path.
	KName string `json:"kname"`
	// Holders are the kernel names of devices stacked directly on this one.
	Holders []string `json:"holders"`
	// Layers names the layer types detected on the device itself,
	// any of bcache, md and dm.
	Layers []string `json:"layers"`
	// Mountpoints are the active mounts backed by this device.
	Mountpoints []string `json:"mountpoints"`
	// Protected reports whether configuration forbids clearing this device.
	Protected bool `json:"protected"`
	// Bcache carries superblock details when the device is a bcache member.
	Bcache *BcacheDeviceInfo `json:"bcache,omitempty"`
}
