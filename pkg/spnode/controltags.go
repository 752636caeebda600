// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spnode

import (
	"fmt"

	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

// Control tag identities, fixed by the Sparkplug node contract
// (spec.md §4.4). Note Scan Rate's alias of -901 is not below -999, the
// threshold under which sptag.Tag.HiddenFromData hides a tag from NDATA,
// so it remains eligible for report-by-exception filtering in non-birth
// payloads.
// This is preserved exactly as documented, not "fixed" — see
// DESIGN.md's Open Question resolutions.
const (
	BdSeqTagName    = "bdSeq"
	RebirthTagName  = "Node Control/Rebirth"
	ScanRateTagName = "Node Control/Scan Rate"

	BdSeqAlias    int32 = -1000
	RebirthAlias  int32 = -1001
	ScanRateAlias int32 = -901

	ScanRateMinMs int64 = 500
	ScanRateMaxMs int64 = 600000
)

// ControlTags holds direct references to the three tags every node
// bootstraps exactly once, so Tick can read and write them without a
// name lookup on every call.
type ControlTags struct {
	BdSeq    *sptag.Tag
	Rebirth  *sptag.Tag
	ScanRate *sptag.Tag
}

// BootstrapControlTags registers bdSeq, Node Control/Rebirth and Node
// Control/Scan Rate against reg. initialScanRateMs seeds the Scan Rate
// tag's starting value (spec.md's SUPPLEMENTED FEATURES: an explicit
// parameter rather than a hardcoded literal) and
// must itself fall within [ScanRateMinMs, ScanRateMaxMs].
func BootstrapControlTags(reg sptag.Adder, initialScanRateMs int64, now uint64) (*ControlTags, error) {
	if initialScanRateMs < ScanRateMinMs || initialScanRateMs > ScanRateMaxMs {
		return nil, fmt.Errorf("spnode: initial scan rate %dms outside [%d, %d]", initialScanRateMs, ScanRateMinMs, ScanRateMaxMs)
	}

	bdSeq, err := reg.Add(sptag.Tag{
		Name:           BdSeqTagName,
		Alias:          BdSeqAlias,
		Datatype:       spvalue.Int64,
		RemoteWritable: false,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("spnode: bootstrapping bdSeq: %w", err)
	}
	bdSeq.CurrentValue = spvalue.NewInt64(0, now)

	rebirth, err := reg.Add(sptag.Tag{
		Name:           RebirthTagName,
		Alias:          RebirthAlias,
		Datatype:       spvalue.Boolean,
		RemoteWritable: true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("spnode: bootstrapping rebirth: %w", err)
	}
	rebirth.CurrentValue = spvalue.NewBool(false, now)

	scanRate, err := reg.Add(sptag.Tag{
		Name:           ScanRateTagName,
		Alias:          ScanRateAlias,
		Datatype:       spvalue.Int64,
		RemoteWritable: true,
		ValidateWrite:  validateScanRate,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("spnode: bootstrapping scan rate: %w", err)
	}
	scanRate.CurrentValue = spvalue.NewInt64(initialScanRateMs, now)

	return &ControlTags{BdSeq: bdSeq, Rebirth: rebirth, ScanRate: scanRate}, nil
}

func validateScanRate(v spvalue.BasicValue) bool {
	n, ok := v.Int64()
	return ok && n >= ScanRateMinMs && n <= ScanRateMaxMs
}
