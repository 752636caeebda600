// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spnode

import (
	"testing"

	"github.com/ClusterCockpit/cc-sparkplug-node/internal/registry"
)

func TestNewRejectsEmptyGroupID(t *testing.T) {
	reg := registry.New()
	controls := &ControlTags{}
	_, err := New(Config{NodeID: "edge01", Registry: reg, Controls: controls, TimeFn: func() uint64 { return 0 }})
	if err == nil {
		t.Fatal("New should reject an empty group id")
	}
}

func TestNewRejectsEmptyNodeID(t *testing.T) {
	reg := registry.New()
	controls := &ControlTags{}
	_, err := New(Config{GroupID: "factory1", Registry: reg, Controls: controls, TimeFn: func() uint64 { return 0 }})
	if err == nil {
		t.Fatal("New should reject an empty node id")
	}
}

func TestNewRejectsNilCollaborators(t *testing.T) {
	reg := registry.New()
	cases := []Config{
		{GroupID: "factory1", NodeID: "edge01", Controls: &ControlTags{}, TimeFn: func() uint64 { return 0 }},
		{GroupID: "factory1", NodeID: "edge01", Registry: reg, TimeFn: func() uint64 { return 0 }},
		{GroupID: "factory1", NodeID: "edge01", Registry: reg, Controls: &ControlTags{}},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Errorf("case %d: New should reject a missing collaborator", i)
		}
	}
}

func TestNewRejectsUndersizedMaxPayloadBytes(t *testing.T) {
	reg := registry.New()
	controls := &ControlTags{}
	_, err := New(Config{
		GroupID: "factory1", NodeID: "edge01", Registry: reg, Controls: controls,
		TimeFn: func() uint64 { return 0 }, MaxPayloadBytes: 8,
	})
	if err == nil {
		t.Fatal("New should reject a MaxPayloadBytes below the minimum viable payload size")
	}
}

func TestNewAcceptsZeroMaxPayloadBytes(t *testing.T) {
	reg := registry.New()
	controls := &ControlTags{}
	n, err := New(Config{
		GroupID: "factory1", NodeID: "edge01", Registry: reg, Controls: controls,
		TimeFn: func() uint64 { return 0 },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.maxPayloadBytes != 0 {
		t.Errorf("maxPayloadBytes = %d, want 0 (disabled)", n.maxPayloadBytes)
	}
}
