package models

import "gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/sched"

// Sib1 is the subset of System Information Block Type 1 the engine reads:
// PLMN identities (used by PLMN search and cell selection), the tracking
// area code, and the schedInfoList/si-WindowLength scheduling arithmetic
// consumed by package sched.
type Sib1 struct {
	PlmnList       []PlmnId
	Tac            string
	SchedInfoList  []sched.SchedInfo
	SIWindowLength uint32
}

// ToSchedSib1 adapts the RRC-facing Sib1 into the pure arithmetic
// package's view of it.
func (s *Sib1) ToSchedSib1() *sched.Sib1 {
	if s == nil {
		return nil
	}
	return &sched.Sib1{SchedInfoList: s.SchedInfoList, SIWindowLength: s.SIWindowLength}
}

// Sib2 carries the radio resource config and access barring parameters
// the engine needs: T300/T301/T310/T311 durations and N310/N311 counts
// come from here in a full stack; this engine only needs the timer
// durations, modeled as plain fields.
type Sib2 struct {
	T300Ms uint32
	T301Ms uint32
	T310Ms uint32
	T311Ms uint32
}

// Sib3 carries cell reselection criteria.
type Sib3 struct {
	ReselCfg CellReselectionConfig
}

// Sib13 signals MBMS control channel configuration presence.
type Sib13 struct {
	HasMcch bool
}

// MobilityControlInfo is the handover command payload carried inside an
// RRCConnectionReconfiguration (spec §4.O).
type MobilityControlInfo struct {
	TargetPci         uint16
	TargetEarfcn      uint32
	NewCRnti          uint16
	T304Ms            uint32
	RachCfgDedPresent bool
	PreambleIndex     uint32
	MaskIndex         uint32
	RrDedicatedCfg    *RrConfigDedicated
	RrCommonCfg       RrConfigCommon
	SecurityCfgHo     SecurityCfgHandover
}

// SecurityCfgHandover carries the NCC and (unsupported) inter-RAT key
// change indicator used to derive AS keys across a handover.
type SecurityCfgHandover struct {
	Ncc          uint8
	KeyChangeInd bool // true only for inter-RAT key change; unsupported (Non-goal)
}

// RrConfigCommon / RrConfigDedicated stand in for the PUCCH/SRS/MAC-main
// config blobs the real stack would parse from ASN.1; the engine only
// needs to know whether a dedicated config was present.
type RrConfigCommon struct{}
type RrConfigDedicated struct{}

// MeasurementConfig is the (possibly absent) measurement configuration
// carried by an RRCConnectionReconfigurationComplete's originating
// message; parsed but not interpreted further by this engine.
type MeasurementConfig struct {
	Present bool
}
