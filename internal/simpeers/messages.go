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

// Package simpeers provides simulated implementations of the collab
// interfaces (PHY, MAC, RLC, PDCP, NAS, USIM, RrcTx) that the RRC engine
// consumes. Each UE gets its own pair of gitc tasks — one modelling the
// lower-layer/radio side, one receiving results back onto the RRC engine
// — so command/result traffic between the RRC engine and its simulated
// peers travels the same named-task message-bus idiom the rest of this
// codebase uses for UE-to-core signalling.
package simpeers

import (
	"github.com/giuliocarot0/gitc"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
)

const (
	// CellSearchCmdType carries a cellSearchCmd from a Phy adapter to its
	// lower-layer task.
	CellSearchCmdType gitc.MessageType = iota
	// CellSelectCmdType carries a cellSelectCmd.
	CellSelectCmdType
	// RaCmdType carries a raCmd (contention or non-contention RA start).
	RaCmdType
	// BcchStartRxCmdType carries a bcchStartRxCmd.
	BcchStartRxCmdType
	// PcchStartRxCmdType carries no payload. MacSim.PcchStartRx does not
	// send it and the lower-layer task does not handle it.
	PcchStartRxCmdType

	// CellSearchResultType carries a collab.CellSearchResultEvent back to
	// the RRC-side task.
	CellSearchResultType
	// CellSelectResultType carries a collab.CellSelectResultEvent.
	CellSelectResultType
	// SibReceivedType carries a collab.SibReceivedEvent.
	SibReceivedType
	// RaCompletedType carries a collab.RaCompletedEvent.
	RaCompletedType
	// PagingMessageType carries a collab.PagingMessageEvent.
	PagingMessageType
)

type cellSearchCmd struct {
	subscriber string
}

type cellSelectCmd struct {
	target     collab.PhyCellRef
	subscriber string
}

type raCmd struct {
	nonContention bool
	preambleIdx   uint32
	maskIdx       uint32
}

type bcchStartRxCmd struct {
	winStartTTI     uint32
	winLenSubframes uint32
}

func rrcTaskName(imsi string) string   { return "rrc-" + imsi }
func lowerTaskName(imsi string) string { return "lower-" + imsi }
