// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spnode

import (
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sppayload"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

func falseAt(ts uint64) spvalue.BasicValue    { return spvalue.NewBool(false, ts) }
func trueAt(ts uint64) spvalue.BasicValue     { return spvalue.NewBool(true, ts) }
func int64At(v int64, ts uint64) spvalue.BasicValue { return spvalue.NewInt64(v, ts) }

// RequestScan sets force_scan, so the next Tick call performs a scan
// and publish attempt regardless of the scan-rate interval. Exposed
// directly (spec.md's SUPPLEMENTED FEATURES) rather than only being an
// implicit side effect of ProcessNCMD, so a caller's
// own I/O event (an interrupt, a threshold crossing) can force an
// out-of-cycle publish.
func (n *Node) RequestScan() {
	n.forceScan = true
}

// Tick drives one pass of the node's session state machine (spec.md
// §4.5). It is idempotent with respect to time: calling it again
// before the scan interval elapses and with force_scan unset returns
// ScanNotDue, with no side effect other than clearing PendingMessage.
func (n *Node) Tick() State {
	if n == nil {
		return ErrorNodeNull
	}

	now := n.timeFn()

	if !n.forceScan {
		scanRateMs, _ := n.controls.ScanRate.CurrentValue.Int64()
		if int64(now-n.lastScanMs) < scanRateMs {
			n.clearPending()
			return ScanNotDue
		}
	}
	n.forceScan = false

	if _, err := n.registry.ReadAll(); err != nil {
		n.clearPending()
		return ScanFailed
	}
	n.lastScanMs = now

	rebirthWanted, _ := n.controls.Rebirth.CurrentValue.Bool()
	if rebirthWanted || !n.initialBirthMade {
		return n.buildBirth(now)
	}

	if !n.anyValueChanged() {
		n.clearPending()
		return ValuesUnchanged
	}

	return n.buildData(now, !n.mqttConnected)
}

// anyValueChanged reports whether any registered tag currently carries
// a pending change, whether set by the scan just performed or by an
// NCMD write applied since the last tick. Tags hidden from data still
// count here; their own ValueChanged flag is reset directly where it
// is produced (buildBirth, MakeNDEATH) rather than left to accumulate.
func (n *Node) anyValueChanged() bool {
	for i, c := 0, n.registry.Count(); i < c; i++ {
		tag, ok := n.registry.GetByIndex(i)
		if ok && tag.ValueChanged {
			return true
		}
	}
	return false
}

func (n *Node) buildBirth(now uint64) State {
	if !n.registry.Write(n.controls.Rebirth, falseAt(now)) {
		n.clearPending()
		return MakeNBIRTHFailed
	}

	if !n.sp3 {
		n.sequence = 0
	}

	payload := sppayload.EncodeBirth(n.registry, now, !n.mqttConnected, n.props)
	n.setPending(n.topicBirth, payload)
	n.initialBirthMade = true

	if n.mqttConnected {
		return NBIRTHReady
	}
	return HistoricalNBIRTHReady
}

func (n *Node) buildData(now uint64, historical bool) State {
	payload, ok := sppayload.EncodeData(n.registry, now, n.sequence, historical)
	if !ok {
		n.clearPending()
		return ValuesUnchanged
	}
	n.setPending(n.topicData, payload)
	if historical {
		return HistoricalNDATAReady
	}
	return NDATAReady
}

// MakeNDEATH builds the NDEATH payload the outer driver registers as
// the MQTT Last Will at connect time. It increments bdSeq (mod 256)
// before building the payload, except on the very first birth, so
// NBIRTH and its paired NDEATH/LWT share a bdSeq value (spec.md §4.4).
func (n *Node) MakeNDEATH() State {
	if n == nil {
		return ErrorNodeNull
	}

	now := n.timeFn()

	if n.initialBirthMade {
		cur, _ := n.controls.BdSeq.CurrentValue.Int64()
		next := (cur + 1) % 256
		if !n.registry.Write(n.controls.BdSeq, int64At(next, now)) {
			n.clearPending()
			return MakeNDEATHFailed
		}
		// bdSeq is hidden from data and never reaches EncodeData's own
		// ClearChanged call, so clear it here once the increment lands.
		n.registry.ClearChanged(n.controls.BdSeq)
	}

	payload, err := sppayload.EncodeDeath(n.registry, BdSeqTagName, now)
	if err != nil {
		n.clearPending()
		return MakeNDEATHFailed
	}
	n.setPending(n.topicDeath, payload)
	return NDEATHReady
}

// ProcessNCMD decodes an inbound NCMD payload, applying writes to the
// registry, and sets force_scan so the next Tick publishes an NDATA
// reflecting any command-induced changes immediately. A payload larger
// than the node's configured MaxPayloadBytes is rejected before the
// codec ever sees it.
func (n *Node) ProcessNCMD(payload []byte) State {
	if n == nil {
		return ErrorNodeNull
	}
	if n.maxPayloadBytes != 0 && len(payload) > n.maxPayloadBytes {
		n.forceScan = true
		return ProcessNCMDFailed
	}

	err := sppayload.DecodeCommand(n.registry, payload)
	n.forceScan = true
	if err != nil {
		return ProcessNCMDFailed
	}
	return ProcessNCMDSuccess
}

// OnConnected marks the node's MQTT session live. If a birth had
// already been made in a previous session, it requests a fresh NBIRTH
// on the next Tick, since a reconnect invalidates any alias table a
// new broker session's subscribers may be missing.
func (n *Node) OnConnected() {
	n.mqttConnected = true
	if n.initialBirthMade {
		now := n.timeFn()
		n.registry.Write(n.controls.Rebirth, trueAt(now))
	}
}

// OnDisconnected marks the node's MQTT session down. Subsequent
// payloads built by Tick are flagged historical until the next
// successful connect.
func (n *Node) OnDisconnected() {
	n.mqttConnected = false
}

// OnPublishNBIRTH acknowledges a confirmed NBIRTH publish. The
// sequence counter only advances on confirmed publish, so a retried
// send of the same payload does not desynchronize it from a
// subscriber's last-seen value.
func (n *Node) OnPublishNBIRTH() {
	n.sequence++ // uint8: wraps 255 -> 0
}

// OnPublishNDATA acknowledges a confirmed NDATA publish.
func (n *Node) OnPublishNDATA() {
	n.sequence++ // uint8: wraps 255 -> 0
}
