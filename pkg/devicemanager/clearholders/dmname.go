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

package clearholders

import (
	"fmt"
	"strings"
)

// SplitVGLVName breaks a device mapper name into volume group and logical
// volume. The kernel exposes lvm volumes as '{vg}-{lv}' and doubles every
// literal hyphen inside either component, so "my--vg-data" is the volume
// "data" in group "my-vg". Anything with no separator, more than one, or
// an empty side does not name an lvm volume.
func SplitVGLVName(name string) (string, string, error) {
	parts := []string{}
	var cur strings.Builder

	for i := 0; i < len(name); i++ {
		if name[i] != '-' {
			cur.WriteByte(name[i])
			continue
		}
		if i+1 < len(name) && name[i+1] == '-' {
			// escaped literal hyphen
			cur.WriteByte('-')
			i++
			continue
		}
		parts = append(parts, cur.String())
		cur.Reset()
	}
	parts = append(parts, cur.String())

	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot split device mapper name %q into vg/lv", name)
	}
	return parts[0], parts[1], nil
}
