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

import "fmt"

// Collector accumulates the recoverable faults of one teardown walk.
// Shutting down one layer can make a sibling vanish before the walk gets
// to it, so reads that fail mid walk are recorded here and the walk keeps
// going. Whether the recorded faults matter is for the caller to decide,
// the collector never promotes them to failures on its own.
type Collector struct {
	errs []error
}

// Catch records err when it is non-nil.
func (c *Collector) Catch(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Catchf records a new fault built from the format string.
func (c *Collector) Catchf(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

// Extend merges faults collected elsewhere, oldest first.
func (c *Collector) Extend(errs []error) {
	c.errs = append(c.errs, errs...)
}

// Errors returns everything recorded, in arrival order.
func (c *Collector) Errors() []error {
	return c.errs
}

// Empty reports whether nothing has been recorded.
func (c *Collector) Empty() bool {
	return len(c.errs) == 0
}

// Len returns the number of recorded faults.
func (c *Collector) Len() int {
	return len(c.errs)
}
