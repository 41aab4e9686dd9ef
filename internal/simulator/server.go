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

package simulator

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
)

func (app *App) handleConfigure(w http.ResponseWriter, r *http.Request) {
	profile := app.config.UeProfile

	if profile == nil {
		profile = &UeProfile{}
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(profile); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}
	}

	if err := app.Configure(profile); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, app.Status())
}

func (app *App) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := app.StartInstance(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, app.Status())
}

func (app *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, app.Status())
}

func (app *App) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := app.StopInstance(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, app.Status())
}

// handlePaging injects a simulated PCCH Paging message against the
// running instance, targeting the UE's own S-TMSI (a real deployment
// would deliver this from the eNB; here it exists so the OAM surface can
// exercise the paging procedure end to end).
func (app *App) handlePaging(w http.ResponseWriter, r *http.Request) {
	app.instanceMutex.RLock()
	inst := app.current
	app.instanceMutex.RUnlock()

	if inst == nil || app.status != STARTED {
		http.Error(w, "no running instance", http.StatusConflict)
		return
	}

	var body struct {
		SysInfoModified bool `json:"sysInfoModified"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	inst.InjectPaging(collab.PagingMessageEvent{
		Records:           []collab.PagingRecord{{STmsi: inst.Engine.UeIdentity}},
		SysInfoModPresent: body.SysInfoModified,
	})
	w.WriteHeader(http.StatusAccepted)
}

// handleNasAttach toggles the simulated NAS layer's attach state,
// letting the OAM surface exercise cell_reselection/go_idle's
// attached-gated rescheduling without a real NAS stack.
func (app *App) handleNasAttach(w http.ResponseWriter, r *http.Request) {
	app.instanceMutex.RLock()
	inst := app.current
	app.instanceMutex.RUnlock()

	if inst == nil || app.status != STARTED {
		http.Error(w, "no running instance", http.StatusConflict)
		return
	}

	var body struct {
		Attached bool `json:"attached"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	inst.SetNasAttached(body.Attached)
	w.WriteHeader(http.StatusAccepted)
}

func writeStatus(w http.ResponseWriter, resp InstanceStatusResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

// startHTTPServer serves the OAM API over h2c, matching the core
// simulator's SBI transport (network.go) even though the OAM plane here
// is JSON rather than a 3GPP service-based interface.
func (app *App) startHTTPServer() {
	app.wg.Add(1)

	router := mux.NewRouter()
	router.HandleFunc("/rrc-engine/v1/configure", app.handleConfigure)
	router.HandleFunc("/rrc-engine/v1/start", app.handleStart)
	router.HandleFunc("/rrc-engine/v1/status", app.handleStatus)
	router.HandleFunc("/rrc-engine/v1/stop", app.handleStop)
	router.HandleFunc("/rrc-engine/v1/paging", app.handlePaging)
	router.HandleFunc("/rrc-engine/v1/nas-attach", app.handleNasAttach)

	h2s := &http2.Server{}
	handler := h2c.NewHandler(router, h2s)
	app.server = &http.Server{Addr: fmt.Sprintf(":%d", app.config.OamPort), Handler: handler}

	go func() {
		defer func() {
			_ = recover()
			app.wg.Done()
		}()
		log.Printf("serving rrc engine oam api on :%d", app.config.OamPort)
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
}

func (app *App) stopHTTPServer() {
	if app.server != nil {
		if err := app.server.Close(); err != nil {
			log.Printf("could not stop oam server: %v", err)
		}
	}
}
