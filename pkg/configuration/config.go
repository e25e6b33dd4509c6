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

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/utils"
	"github.com/puppis-io/puppis/utils/log"
)

const configPath = "/etc/puppis/"

var configModifyNotice []chan<- struct{}
var GlobalConfig *viper.Viper
var clearConfig Clear
var protectedRe []*regexp.Regexp
var opt = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
))

// Clear holds everything an operator can tune about teardown behavior.
type Clear struct {
	// ProtectedDevices are regular expressions, a device matching any of
	// them is refused outright.
	ProtectedDevices []string `json:"protectedDevices"`
	// CommandTimeoutSeconds bounds every external utility invocation.
	CommandTimeoutSeconds int64 `json:"commandTimeoutSeconds"`
	// WipeAfterShutdown wipes lvm metadata from freed extents once the
	// volume on top is gone.
	WipeAfterShutdown bool `json:"wipeAfterShutdown"`
	// UmountBeforeClear unmounts filesystems backed by a device before
	// its holders are cleared.
	UmountBeforeClear bool `json:"umountBeforeClear"`
}

func init() {
	log.Info("Loading global configuration ...")
	GlobalConfig = initConfig(configPath)
	go dynamicConfig()
}

func initConfig(path string) *viper.Viper {
	config := viper.New()
	config.AddConfigPath(path)
	config.SetConfigName("config")
	config.SetConfigType("json")
	config.SetDefault("commandTimeoutSeconds", puppis.DefaultCommandTimeout)
	config.SetDefault("wipeAfterShutdown", true)
	config.SetDefault("umountBeforeClear", true)

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warnf("No configuration found in %s, using defaults", path)
			return config
		}
		log.Errorf("Failed to get the configuration: %s", err)
		os.Exit(-1)
	}

	if err := config.Unmarshal(&clearConfig, opt); err != nil {
		log.Errorf("Failed to unmarshal the configuration: %s", err)
		os.Exit(-1)
	}

	if err := validate(clearConfig); err != nil {
		log.Errorf("Failed to validate the configuration: %s", err)
		os.Exit(-1)
	}

	return config
}

func dynamicConfig() {
	GlobalConfig.WatchConfig()
	GlobalConfig.OnConfigChange(func(event fsnotify.Event) {
		log.Infof("Detect config change: %s", event.String())
		if err := GlobalConfig.Unmarshal(&clearConfig, opt); err != nil {
			log.Errorf("Failed to unmarshal the configuration: %s, ignore this change", err)
			return
		}
		if err := validate(clearConfig); err != nil {
			log.Errorf("Failed to validate the configuration: %s, ignore this change", err)
			return
		}
		for _, c := range configModifyNotice {
			log.Info("Generates the configuration change event")
			c <- struct{}{}
		}
	})
}

func RegisterListenerChan(c chan<- struct{}) {
	configModifyNotice = append(configModifyNotice, c)
}

// ProtectedDevices returns the configured protection patterns, empty
// entries dropped.
func ProtectedDevices() []string {
	return utils.SliceRemoveString(clearConfig.ProtectedDevices, "")
}

// Protected reports whether configuration forbids clearing device. The
// patterns match the path as given, the bare kernel name and the /dev
// node, so "^vd[a-b]$" and "^/dev/vda$" both protect vda however the
// caller spells it.
func Protected(device string) bool {
	base := filepath.Base(device)
	candidates := []string{device, base, filepath.Join(puppis.DevPath, base)}
	for _, re := range protectedRe {
		for _, c := range candidates {
			if re.MatchString(c) {
				return true
			}
		}
	}
	return false
}

// CommandTimeout bounds a single external utility invocation, 60s unless
// configured otherwise.
func CommandTimeout() time.Duration {
	seconds := GlobalConfig.GetInt64("commandTimeoutSeconds")
	if seconds <= 0 {
		seconds = puppis.DefaultCommandTimeout
	}
	return time.Duration(seconds) * time.Second
}

// WipeAfterShutdown reports whether freed extents get their lvm metadata
// wiped once the volume on top is gone.
func WipeAfterShutdown() bool {
	return GlobalConfig.GetBool("wipeAfterShutdown")
}

// UmountBeforeClear reports whether filesystems backed by a device are
// unmounted before clearing its holders.
func UmountBeforeClear() bool {
	return GlobalConfig.GetBool("umountBeforeClear")
}

func validate(clear Clear) error {
	if clear.CommandTimeoutSeconds < 0 {
		return fmt.Errorf("commandTimeoutSeconds must not be negative: %d", clear.CommandTimeoutSeconds)
	}
	compiled := make([]*regexp.Regexp, 0, len(clear.ProtectedDevices))
	for _, pattern := range clear.ProtectedDevices {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("protected device pattern %q does not compile: %v", pattern, err)
		}
		compiled = append(compiled, re)
	}
	protectedRe = compiled
	return nil
}
