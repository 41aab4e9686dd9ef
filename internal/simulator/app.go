// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package simulator is the OAM/process layer around the RRC engine: it
// owns one UE instance's lifecycle (CONFIGURED/STARTED/STOPPED/ERROR),
// exposes it over an HTTP API, and starts the Prometheus metrics server.
package simulator

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"
)

// InstanceStatus mirrors the core simulator's CONFIGURED/STARTED/STOPPED
// lifecycle, applied here to a single RRC engine instance.
type InstanceStatus string

const (
	CONFIGURED InstanceStatus = "CONFIGURED"
	STARTED    InstanceStatus = "STARTED"
	STOPPED    InstanceStatus = "STOPPED"
	ERROR      InstanceStatus = "ERROR"
)

// InstanceStatusResponse is the OAM API's status payload.
type InstanceStatusResponse struct {
	Status InstanceStatus
	Imsi   string
	State  string
}

// App is the OAM process: it owns at most one running Instance at a
// time, restartable the way CoreSimulatorApp's currentInstance is.
type App struct {
	current       *Instance
	status        InstanceStatus
	instanceMutex sync.RWMutex
	server        *http.Server
	wg            sync.WaitGroup
	ctx           context.Context
	config        *AppConfig
}

// NewApp loads configPath and returns a fresh App.
func NewApp(configPath string) *App {
	return &App{
		status: STOPPED,
		config: InitConfig(configPath),
	}
}

// Configure builds a fresh Instance from profile, replacing any prior
// stopped instance.
func (app *App) Configure(profile *UeProfile) error {
	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.current != nil && app.status == STARTED {
		return fmt.Errorf("could not configure: an instance is already started, stop it first")
	}

	inst, err := NewInstance(profile)
	if err != nil {
		app.status = ERROR
		return fmt.Errorf("could not initialize the rrc engine instance: %w", err)
	}
	app.current = inst
	app.status = CONFIGURED
	return nil
}

// StartInstance starts the configured instance's task loop.
func (app *App) StartInstance() error {
	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.current == nil {
		return fmt.Errorf("please configure the instance via /configure")
	}
	if app.status == STARTED {
		app.current.Stop()
	}
	app.current.Start(app.ctx)
	app.status = STARTED
	return nil
}

// Status reports the current instance status.
func (app *App) Status() InstanceStatusResponse {
	app.instanceMutex.RLock()
	defer app.instanceMutex.RUnlock()

	resp := InstanceStatusResponse{Status: app.status}
	if app.current != nil {
		resp.Imsi = app.current.Imsi
		resp.State = app.current.Engine.State.String()
	}
	return resp
}

// StopInstance stops the running instance without discarding it.
func (app *App) StopInstance() error {
	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.status != STARTED || app.current == nil {
		return fmt.Errorf("no running instance")
	}
	app.current.Stop()
	app.status = STOPPED
	return nil
}

// Run blocks serving the OAM API and metrics endpoint until SIGINT/SIGTERM.
func (app *App) Run() {
	var cancel context.CancelFunc
	app.ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	go app.listenShutdown()
	log.Printf("running config:\n%s", app.config.Dumps())

	if app.config.InitOnStartup {
		log.Printf("bootstrapping rrc engine instance")
		if err := app.Configure(app.config.UeProfile); err != nil {
			log.Fatalf("could not initialize on startup: %v", err)
		}
		if err := app.StartInstance(); err != nil {
			log.Fatalf("could not start on startup: %v", err)
		}
	}

	app.startHTTPServer()
	monitoring.StartMetricsServer(app.config.MetricsPort)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Printf("terminating...")
	cancel()
	app.wg.Wait()
}

func (app *App) listenShutdown() {
	defer func() {
		_ = recover()
		app.wg.Done()
	}()
	<-app.ctx.Done()
	if app.current != nil {
		app.current.Stop()
	}
	app.stopHTTPServer()
}
