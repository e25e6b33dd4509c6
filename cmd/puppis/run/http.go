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
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	deviceManager "github.com/puppis-io/puppis/pkg/devicemanager"
	"github.com/puppis-io/puppis/pkg/metrics"
)

var (
	manager *deviceManager.DeviceManager
)

type eHttpServer struct {
	e        *echo.Echo
	stopChan <-chan struct{}
}

func newHttpServer(dm *deviceManager.DeviceManager, stopChan <-chan struct{}) (*eHttpServer, error) {
	manager = dm

	collector, err := metrics.NewPuppisCollector(dm)
	if err != nil {
		return nil, err
	}
	if err := metrics.Registry.Register(collector); err != nil {
		return nil, err
	}
	metrics.Registry.MustRegister(collectors.NewGoCollector())

	e := echo.New()
	e.HideBanner = true
	e.GET("/devices", deviceList)
	e.GET("/status/:device", deviceStatus)
	e.PUT("/clear/:device", clearDevice)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return &eHttpServer{
		e:        e,
		stopChan: stopChan,
	}, nil
}

func (h *eHttpServer) start() {
	go func() {
		<-h.stopChan
		_ = h.e.Close()
	}()
	if err := h.e.Start(config.httpAddr); err != nil && err != http.ErrServerClosed {
		h.e.Logger.Fatal(err)
	}
}

type clearResponse struct {
	Device  string   `json:"device"`
	Cleared bool     `json:"cleared"`
	Errors  []string `json:"errors,omitempty"`
}

// deviceParam decodes the :device path segment, /dev paths arrive
// url-encoded.
func deviceParam(c echo.Context) (string, error) {
	return url.PathUnescape(c.Param("device"))
}

func deviceList(c echo.Context) error {
	statuses, err := manager.DeviceStatus()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, statuses)
}

func deviceStatus(c echo.Context) error {
	device, err := deviceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	st, err := manager.StatusFor(device)
	if err != nil {
		return c.JSON(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func clearDevice(c echo.Context) error {
	device, err := deviceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	cleared, errs := manager.ClearDevice(device)
	resp := clearResponse{Device: device, Cleared: cleared}
	for _, e := range errs {
		resp.Errors = append(resp.Errors, e.Error())
	}
	if !cleared {
		return c.JSON(http.StatusConflict, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
