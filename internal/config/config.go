// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the node configuration file: group
// and node identity, the initial scan rate, the Sparkplug 3 compatibility
// flag, and the outbound transport a cmd/cc-sparkplug-node process
// wires against.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// TransportConfig configures the Publisher a cmd/cc-sparkplug-node
// process constructs.
type TransportConfig struct {
	Kind          string `json:"kind"`
	URL           string `json:"url"`
	SubjectPrefix string `json:"subjectPrefix"`
}

// NodeConfig is the full configuration surface for one Sparkplug EoN
// node identity.
type NodeConfig struct {
	GroupID             string          `json:"groupId"`
	NodeID              string          `json:"nodeId"`
	Nodes               string          `json:"nodes"`
	ScanRateMs          int64           `json:"scanRateMs"`
	Sparkplug3Compliant bool            `json:"sparkplug3Compliant"`
	MaxPayloadBytes     int             `json:"maxPayloadBytes"`
	Transport           TransportConfig `json:"transport"`
}

// Keys holds the currently active configuration, populated by Init.
// Defaults mirror a single-node local-NATS demo deployment.
var Keys NodeConfig = NodeConfig{
	GroupID:             "factory1",
	NodeID:              "edge01",
	ScanRateMs:          1000,
	Sparkplug3Compliant: false,
	MaxPayloadBytes:     1024,
	Transport: TransportConfig{
		Kind:          "nats",
		URL:           "nats://127.0.0.1:4222",
		SubjectPrefix: "",
	},
}

// Init reads and validates the configuration file at path, replacing
// Keys with its contents merged onto the defaults above. A missing file
// is not an error: the defaults stand as-is, matching
// internal/config/config.go's "no config file, run on defaults" policy
// in the teacher.
func Init(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			cclog.Fatalf("config: reading %q: %v", path, err)
		}
		return
	}

	if err := Validate(nodeConfigSchema, raw); err != nil {
		cclog.Fatalf("config: validating %q: %v", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		cclog.Fatalf("config: decoding %q: %v", path, err)
	}

	if Keys.GroupID == "" {
		cclog.Fatal("config: groupId must not be empty")
	}
	if Keys.NodeID == "" && Keys.Nodes == "" {
		cclog.Fatal("config: either nodeId or nodes must be set")
	}
}

// ResolveNodeIDs expands Keys.Nodes (a compact range expression such as
// "edge[01-12]") into the concrete list of node identities a single
// process should drive, falling back to the single NodeID when Nodes is
// unset.
func ResolveNodeIDs() ([]string, error) {
	if Keys.Nodes == "" {
		if Keys.NodeID == "" {
			return nil, fmt.Errorf("config: no node identity configured")
		}
		return []string{Keys.NodeID}, nil
	}

	nl, err := ParseNodeIDExpr(Keys.Nodes)
	if err != nil {
		return nil, err
	}
	return nl.Expand()
}
