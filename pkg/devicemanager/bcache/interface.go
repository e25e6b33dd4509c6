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
package bcache

import (
	"github.com/puppis-io/puppis/pkg/devicemanager/types"
)

// Bcache inspects bcache metadata on block devices. puppis never creates
// cache sets, it only reports what a device carries.
type Bcache interface {
	ShowDevice(dev string) (*types.BcacheDeviceInfo, error)
}
