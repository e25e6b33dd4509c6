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

package puppis

const (
	// Version project
	Version = "beta"

	// SysBlockPath is where the kernel exposes one entry per block device.
	SysBlockPath = "/sys/block"
	// SysClassBlockPath resolves kernel names for partitions as well as disks.
	SysClassBlockPath = "/sys/class/block"
	// SysDevBlockPath resolves MAJ:MIN pairs to device entries.
	SysDevBlockPath = "/sys/dev/block"
	// DevPath device nodes
	DevPath = "/dev"

	// HoldersDir lists devices layered on top of a node.
	HoldersDir = "holders"
	// SlavesDir lists devices a node is built from.
	SlavesDir = "slaves"

	// Layer markers. A sysfs block entry containing one of these
	// directories belongs to the corresponding virtual layer.
	BcacheMarker = "bcache"
	RaidMarker   = "md"
	DmMarker     = "dm"

	// LVRemoveAlreadyGone lvremove exit status when the volume vanished
	// between discovery and removal.
	LVRemoveAlreadyGone = 5

	// DefaultCommandTimeout bounds external utility invocations.
	DefaultCommandTimeout = 60

	// HTTP serve mode defaults
	DefaultListenAddr = ":8089"
)
