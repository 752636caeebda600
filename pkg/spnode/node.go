// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spnode

import (
	"fmt"

	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sppayload"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptopic"
)

// PendingMessage is the payload Tick/MakeNDEATH produced on a *Ready
// state, waiting for the outer driver to publish it.
type PendingMessage struct {
	Topic   string
	Payload []byte
}

// Config configures a Node at construction time. TimeFn supplies the
// wall clock (spec.md §6); the core never calls a real clock directly.
type Config struct {
	GroupID  string
	NodeID   string
	Registry sptag.Registry
	Controls *ControlTags
	TimeFn   func() uint64

	// Sparkplug3Compliant, when true, leaves the sequence counter
	// untouched across NBIRTH instead of resetting it to 0 (spec.md §9
	// "Sparkplug 3 mode"). Defaults to legacy behavior (reset on birth).
	Sparkplug3Compliant bool

	// Properties overrides the per-tag property set published on birth.
	// Nil falls back to sppayload.DefaultProperties.
	Properties sppayload.PropertiesFunc

	// MaxPayloadBytes bounds an inbound NCMD payload ProcessNCMD will
	// attempt to decode; a larger payload is rejected outright as
	// ProcessNCMDFailed without ever reaching the codec. Zero disables
	// the check. SparkplugNode_Init in original_source rejects
	// construction outright when this buffer capacity is configured
	// below a minimum viable payload size; New does the same.
	MaxPayloadBytes int
}

// minPayloadBytes is small enough to hold a single-metric NCMD
// (tag+datatype+one scalar value) but rejects a MaxPayloadBytes
// clearly too small to ever decode anything.
const minPayloadBytes = 32

// Node is a single Sparkplug EoN node identity: group/node id, the
// tag registry it drives, and the session-lifecycle state (§3)
// Tick/MakeNDEATH/ProcessNCMD progress through.
type Node struct {
	groupID         string
	nodeID          string
	registry        sptag.Registry
	controls        *ControlTags
	timeFn          func() uint64
	sp3             bool
	props           sppayload.PropertiesFunc
	maxPayloadBytes int

	topicBirth string
	topicData  string
	topicDeath string

	lastScanMs       uint64
	forceScan        bool
	initialBirthMade bool
	mqttConnected    bool
	sequence         uint8

	PendingMessage *PendingMessage
}

// New constructs a Node. The registry must already contain the tags
// bootstrapped by BootstrapControlTags plus any data tags the caller
// wants published. It rejects an empty group or node id, mirroring
// SparkplugNode_Init's construction-time validation in original_source
// (a malformed identity never gets a chance to tick).
func New(cfg Config) (*Node, error) {
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("spnode: group id must not be empty")
	}
	if cfg.NodeID == "" {
		return nil, fmt.Errorf("spnode: node id must not be empty")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("spnode: registry must not be nil")
	}
	if cfg.Controls == nil {
		return nil, fmt.Errorf("spnode: controls must not be nil")
	}
	if cfg.TimeFn == nil {
		return nil, fmt.Errorf("spnode: time function must not be nil")
	}
	if cfg.MaxPayloadBytes != 0 && cfg.MaxPayloadBytes < minPayloadBytes {
		return nil, fmt.Errorf("spnode: max payload size %d below minimum %d", cfg.MaxPayloadBytes, minPayloadBytes)
	}

	return &Node{
		groupID:         cfg.GroupID,
		nodeID:          cfg.NodeID,
		registry:        cfg.Registry,
		controls:        cfg.Controls,
		timeFn:          cfg.TimeFn,
		sp3:             cfg.Sparkplug3Compliant,
		props:           cfg.Properties,
		maxPayloadBytes: cfg.MaxPayloadBytes,
		topicBirth:      sptopic.Build(cfg.GroupID, cfg.NodeID, sptopic.NBIRTH),
		topicData:       sptopic.Build(cfg.GroupID, cfg.NodeID, sptopic.NDATA),
		topicDeath:      sptopic.Build(cfg.GroupID, cfg.NodeID, sptopic.NDEATH),
	}, nil
}

// Connected reports whether the node currently believes it has a live
// MQTT session (set by OnConnected/OnDisconnected).
func (n *Node) Connected() bool { return n.mqttConnected }

// Sequence returns the current 8-bit Sparkplug sequence counter.
func (n *Node) Sequence() uint8 { return n.sequence }

func (n *Node) clearPending() {
	n.PendingMessage = nil
}

func (n *Node) setPending(topic string, payload []byte) {
	n.PendingMessage = &PendingMessage{Topic: topic, Payload: payload}
}
