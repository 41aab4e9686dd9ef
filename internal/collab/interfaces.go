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

// Package collab declares the narrow interfaces the RRC procedure engine
// consumes from its external collaborators (PHY, MAC, RLC, PDCP, NAS,
// USIM) and the event types those collaborators use to report
// asynchronous completions back onto the procedure engine. Per spec §1
// these collaborators — their ASN.1 encoding, their PHY/MAC scheduling
// internals, NAS/USIM/GW logic — are out of scope; only the operations
// the core RRC engine invokes on them are specified here.
package collab

import "gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"

// PhyCellRef is what the RRC layer hands PHY to search for or select.
type PhyCellRef struct {
	Pci    uint16
	Earfcn uint32
}

// Phy is the narrow PHY interface the RRC engine drives. Both
// StartCellSearch and StartCellSelect are asynchronous: completion
// arrives later as a CellSearchResultEvent or a CellSelectResultEvent
// triggered on the engine.
type Phy interface {
	StartCellSearch(subscriber string) bool
	StartCellSelect(cell PhyCellRef, subscriber string) bool
	CellIsCamping() bool
	IsInSync() bool
	Reset()
}

// Mac is the narrow MAC interface the RRC engine drives for BCCH/PCCH
// scheduling and random access during handover.
type Mac interface {
	BcchStartRx(winStartTTI uint32, winLenSubframes uint32)
	PcchStartRx()
	Reset()
	WaitUplink()
	ClearRntis()
	GetRntis() (ueRnti uint16)
	StartContHo()
	StartNonContHo(preambleIdx uint32, maskIdx uint32)
	SetHoRnti(newRnti uint16, targetPci uint16)
}

// Rlc is the narrow RLC interface: SRB flush status for go-idle, and
// reestablishment of all radio bearers except SRB0 for connection
// reestablishment and handover.
type Rlc interface {
	SrbsFlushed() bool
	SuspendAllExceptSrb0()
	ReestablishAll()
}

// Pdcp is the narrow PDCP interface: security (re)configuration.
type Pdcp interface {
	ReestablishForHandover()
	ReconfigureSecurity(cfg models.SecurityConfig)
}

// Nas is the narrow NAS interface: PLMN search results, paging delivery,
// connection-request completion, access barring, attach status.
type Nas interface {
	PlmnSearchCompleted(found []PlmnTac, success bool)
	Paging(sTmsi models.STmsi) bool
	ConnectionRequestCompleted(ok bool)
	SetBarring(kind models.BarringKind)
	IsAttached() bool
}

// PlmnTac is one PLMN identity plus the tracking area code it was found
// broadcasting, as collected by the PLMN-search procedure.
type PlmnTac struct {
	Plmn models.PlmnId
	Tac  string
}

// Usim is the narrow USIM interface: AS key derivation across handover.
type Usim interface {
	DeriveKeysHandover(ncc uint8) models.SecurityConfig
}

// RrcTx is the narrow uplink-message interface: it hands an already
// composed RRC message down to lower layers. ASN.1 encoding is out of
// scope; these calls exist so the procedures that send exactly one
// message per attempt (connection-request, reestablishment, handover)
// have an observable, countable side effect.
type RrcTx interface {
	SendConnectionRequest()
	SendReestablishmentRequest()
	SendReconfigurationComplete()
}
