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

// Package models holds the RRC layer's plain data types: identifiers,
// UE-level state, security context and the SIBs the engine reasons
// about. Nothing in this package touches procedure control flow.
package models

// PlmnId identifies a Public Land Mobile Network by MCC/MNC.
type PlmnId struct {
	Mcc string `yaml:"mcc" json:"mcc"`
	Mnc string `yaml:"mnc" json:"mnc"`
}

// RrcState is the top-level UE RRC state machine (spec §3).
type RrcState int

const (
	RrcIdle RrcState = iota
	RrcConnected
)

func (s RrcState) String() string {
	if s == RrcConnected {
		return "RRC_CONNECTED"
	}
	return "RRC_IDLE"
}

// STmsi is the SAE Temporary Mobile Subscriber Identity used to match
// paging records against this UE.
type STmsi struct {
	Mmec  uint8
	MTmsi uint32
	Valid bool
}

// SecurityConfig holds the AS security context activated after a
// successful RRCConnectionSetup or handover.
type SecurityConfig struct {
	CipherAlgo string
	IntegAlgo  string
	KRrcEnc    []byte
	KRrcInt    []byte
	KUpEnc     []byte
	Ncc        uint8
}

// CellReselectionConfig carries the criterion-S parameters broadcast in
// SIB3 (or defaulted before SIB3 is known).
type CellReselectionConfig struct {
	QRxLevMin       float64 // dBm
	QRxLevMinOffset float64 // dB
}

// BarringKind mirrors the NAS access-barring categories the engine can
// request (spec §4.K precondition failure path).
type BarringKind string

const (
	BarringMoData      BarringKind = "mo-data"
	BarringMoSignaling BarringKind = "mo-signaling"
)

// RachMode distinguishes contention-based from non-contention random
// access during handover (spec §4.O).
type RachMode int

const (
	RachContention RachMode = iota
	RachNonContention
)
