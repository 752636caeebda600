// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package spnode implements the Sparkplug node tick state machine:
// scan scheduling, bdSeq lifecycle, rebirth handling, the sequence
// counter and NCMD dispatch (spec.md §4.4-4.5). It depends only on
// pkg/sptag's registry contract, pkg/sppayload's codec and
// pkg/sptopic's topic builder, and never touches an MQTT client or
// wall clock directly: both are supplied by the caller.
package spnode

// State is the discriminated outcome of every Node operation. No
// operation panics or returns a Go error across this boundary; a
// failure is always one of the *Failed states.
type State int

const (
	ErrorNodeNull State = iota
	ScanNotDue
	ScanFailed
	MakeNBIRTHFailed
	NBIRTHReady
	ValuesUnchanged
	MakeNDATAFailed
	NDATAReady
	MakeNDEATHFailed
	NDEATHReady
	ProcessNCMDFailed
	ProcessNCMDSuccess
	HistoricalNBIRTHReady
	HistoricalNDATAReady
)

func (s State) String() string {
	switch s {
	case ErrorNodeNull:
		return "ERROR_NODE_NULL"
	case ScanNotDue:
		return "SCAN_NOT_DUE"
	case ScanFailed:
		return "SCAN_FAILED"
	case MakeNBIRTHFailed:
		return "MAKE_NBIRTH_FAILED"
	case NBIRTHReady:
		return "NBIRTH_READY"
	case ValuesUnchanged:
		return "VALUES_UNCHANGED"
	case MakeNDATAFailed:
		return "MAKE_NDATA_FAILED"
	case NDATAReady:
		return "NDATA_READY"
	case MakeNDEATHFailed:
		return "MAKE_NDEATH_FAILED"
	case NDEATHReady:
		return "NDEATH_READY"
	case ProcessNCMDFailed:
		return "PROCESS_NCMD_FAILED"
	case ProcessNCMDSuccess:
		return "PROCESS_NCMD_SUCCESS"
	case HistoricalNBIRTHReady:
		return "HISTORICAL_NBIRTH_READY"
	case HistoricalNDATAReady:
		return "HISTORICAL_NDATA_READY"
	default:
		return "UNKNOWN_STATE"
	}
}

// Ready reports whether s carries a payload at Node.PendingMessage.
func (s State) Ready() bool {
	switch s {
	case NBIRTHReady, NDATAReady, NDEATHReady, HistoricalNBIRTHReady, HistoricalNDATAReady:
		return true
	default:
		return false
	}
}
