package collab

import "gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"

// CsRet enumerates PHY's cell-search result codes.
type CsRet int

const (
	CellFound CsRet = iota
	CellNotFound
	CellSearchError
)

// LastFreq signals whether PHY has exhausted its frequency list.
type LastFreq int

const (
	MoreFreqs LastFreq = iota
	NoMoreFreqs
)

// CellSearchResultEvent is triggered against the cell-search procedure
// when an asynchronous PHY cell search completes.
type CellSearchResultEvent struct {
	Result    CsRet
	FoundCell PhyCellRef
	LastFreq  LastFreq
}

// CellSelectResultEvent is triggered when an asynchronous PHY cell
// select completes.
type CellSelectResultEvent struct {
	Ok bool
}

// SibReceivedEvent is triggered whenever MAC delivers a decoded SIB
// (spec: "sib_received_ev(sib_index)").
type SibReceivedEvent struct {
	SibIndex uint32
}

// TimerExpiredEvent is triggered when any timer owned by the RRC layer
// expires; procedures resolve the carried ID against timers they still
// care about (design note "timer-owned callbacks").
type TimerExpiredEvent struct {
	TimerID uint32
}

// PagingRecord is one entry of a received Paging message's
// pagingRecordList.
type PagingRecord struct {
	STmsi models.STmsi
}

// PagingMessageEvent is triggered when a Paging message arrives on PCCH.
type PagingMessageEvent struct {
	Records           []PagingRecord
	SysInfoModPresent bool
}

// RrcConnectionSetupEvent is triggered when an RRCConnectionSetup message
// arrives while T300 is running.
type RrcConnectionSetupEvent struct{}

// RrcConnectionRejectEvent is triggered when an RRCConnectionReject
// message arrives while T300 is running.
type RrcConnectionRejectEvent struct{}

// RrcConnectionReconfigurationEvent is triggered when an
// RRCConnectionReconfiguration message arrives; MobilityInfo is nil
// unless it carries a mobilityControlInfo (handover trigger).
type RrcConnectionReconfigurationEvent struct {
	MobilityInfo *models.MobilityControlInfo
	MeasCfg      models.MeasurementConfig
}

// RaOutcome enumerates random-access completion results during handover.
type RaOutcome int

const (
	RaSuccess RaOutcome = iota
	RaFailure
)

// RaCompletedEvent is triggered by MAC once a contention or
// non-contention random access attempt resolves.
type RaCompletedEvent struct {
	Outcome RaOutcome
}

// CellSelectionCompleteEvent is triggered against the connection-request
// procedure when the cell-selection subordinate it launched (or reused)
// completes, since that subordinate's own future is polled from a
// different procedure instance than the one which launched it.
type CellSelectionCompleteEvent struct{}

// NasPagingCompleteEvent is triggered when NAS finishes handling a
// dispatched paging indication.
type NasPagingCompleteEvent struct{}
