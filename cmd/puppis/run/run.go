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

package run

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	deviceManager "github.com/puppis-io/puppis/pkg/devicemanager"
	"github.com/puppis-io/puppis/utils"
	"github.com/puppis-io/puppis/utils/log"
)

func nodeName() string {
	if n := os.Getenv("NODE_NAME"); n != "" {
		return n
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func runClear(devices []string) error {
	dm := deviceManager.NewDeviceManager(nodeName(), make(chan struct{}))
	done := make([]string, 0, len(devices))
	for _, device := range devices {
		if utils.ContainsString(done, device) {
			continue
		}
		if err := dm.CheckClear(device); err != nil {
			return err
		}
		fmt.Printf("%s cleared\n", device)
		done = append(done, device)
	}
	return nil
}

func runStatus(args []string) error {
	dm := deviceManager.NewDeviceManager(nodeName(), make(chan struct{}))

	var report interface{}
	if len(args) == 1 {
		st, err := dm.StatusFor(args[0])
		if err != nil {
			return err
		}
		report = st
	} else {
		full, err := dm.StackReport()
		if err != nil {
			return err
		}
		report = full
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func subMain() error {
	stopChan := make(chan struct{})
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %s, shutting down", sig)
		close(stopChan)
	}()

	dm := deviceManager.NewDeviceManager(nodeName(), stopChan)
	if v, err := dm.LvmManager.Version(); err != nil {
		log.Warnf("lvm2 version: %v", err)
	} else {
		log.Infof("%s", v)
	}
	dm.DeviceScanTask()

	server, err := newHttpServer(dm, stopChan)
	if err != nil {
		return err
	}
	server.start()
	return nil
}
