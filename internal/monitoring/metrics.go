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

// Package monitoring exposes the RRC engine's operational counters as
// Prometheus metrics, scoped to the procedures and timers this engine
// actually drives.
package monitoring

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RrcStateGauge tracks each UE's current top-level RRC state as a
	// 0/1 gauge per (imsi, state) pair, matching UEsTotal's per-state
	// occupancy pattern.
	RrcStateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rrc_state",
			Help: "Current RRC state per UE (1 for the active state, 0 otherwise)",
		},
		[]string{"imsi", "state"},
	)

	// ProcedureLaunches counts every procedure Launch attempt, whether or
	// not it was accepted (mutual exclusion may reject it).
	ProcedureLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_procedure_launches_total",
			Help: "Total procedure launch attempts",
		},
		[]string{"imsi", "procedure", "accepted"},
	)

	// ProcedureOutcomes counts terminal outcomes (success/error) per
	// procedure.
	ProcedureOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_procedure_outcomes_total",
			Help: "Total procedure terminal outcomes",
		},
		[]string{"imsi", "procedure", "outcome"},
	)

	// TimerExpiries counts every RRC timer expiry, per timer name.
	TimerExpiries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_timer_expiries_total",
			Help: "Total timer expiries",
		},
		[]string{"imsi", "timer"},
	)

	// MessagesSent counts uplink RRC messages sent via collab.RrcTx.
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_messages_sent_total",
			Help: "Total uplink RRC messages sent",
		},
		[]string{"imsi", "message"},
	)

	// SiAcquireAttempts counts SI-acquire (re)attempts per SIB index.
	SiAcquireAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_si_acquire_attempts_total",
			Help: "Total SI-acquire attempts per SIB index",
		},
		[]string{"imsi", "sib_index"},
	)
)

func init() {
	prometheus.MustRegister(RrcStateGauge, ProcedureLaunches, ProcedureOutcomes, TimerExpiries, MessagesSent, SiAcquireAttempts)
}

// StartMetricsServer serves /metrics on the given port in its own
// goroutine, mirroring the core simulator's dedicated metrics endpoint.
func StartMetricsServer(port uint16) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if port == 0 {
		port = 9090
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("starting prometheus metrics server on %s", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not start metrics server: %s", err.Error())
		}
	}()
}
