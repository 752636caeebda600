// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	return path
}

func TestInitOverridesDefaults(t *testing.T) {
	Keys = NodeConfig{GroupID: "factory1", NodeID: "edge01", ScanRateMs: 1000}
	fp := writeConfig(t, `{
		"groupId": "plant7",
		"nodeId": "press03",
		"scanRateMs": 2000,
		"sparkplug3Compliant": true,
		"transport": {"kind": "nats", "url": "nats://broker:4222", "subjectPrefix": "sp"}
	}`)

	Init(fp)

	if Keys.GroupID != "plant7" {
		t.Errorf("GroupID = %q, want plant7", Keys.GroupID)
	}
	if Keys.NodeID != "press03" {
		t.Errorf("NodeID = %q, want press03", Keys.NodeID)
	}
	if Keys.ScanRateMs != 2000 {
		t.Errorf("ScanRateMs = %d, want 2000", Keys.ScanRateMs)
	}
	if !Keys.Sparkplug3Compliant {
		t.Error("Sparkplug3Compliant should be true")
	}
	if Keys.Transport.URL != "nats://broker:4222" {
		t.Errorf("Transport.URL = %q, want nats://broker:4222", Keys.Transport.URL)
	}
}

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	Keys = NodeConfig{GroupID: "factory1", NodeID: "edge01", ScanRateMs: 1000}
	Init(filepath.Join(t.TempDir(), "does-not-exist.json"))

	if Keys.GroupID != "factory1" || Keys.NodeID != "edge01" {
		t.Error("Init should leave Keys untouched when the file does not exist")
	}
}

func TestInitRejectsOutOfRangeScanRate(t *testing.T) {
	// schema validation failures call cclog.Fatal, which this test
	// cannot safely trigger; instead exercise Validate directly.
	if err := Validate(nodeConfigSchema, []byte(`{"scanRateMs": 10}`)); err == nil {
		t.Error("Validate should reject a scanRateMs below the schema minimum")
	}
}

func TestResolveNodeIDsExpandsNodes(t *testing.T) {
	Keys = NodeConfig{GroupID: "factory1", Nodes: "edge[01-03]"}
	ids, err := ResolveNodeIDs()
	if err != nil {
		t.Fatalf("ResolveNodeIDs: %v", err)
	}
	want := []string{"edge01", "edge02", "edge03"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestResolveNodeIDsSingleNode(t *testing.T) {
	Keys = NodeConfig{GroupID: "factory1", NodeID: "edge01"}
	ids, err := ResolveNodeIDs()
	if err != nil {
		t.Fatalf("ResolveNodeIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "edge01" {
		t.Errorf("ids = %v, want [edge01]", ids)
	}
}
