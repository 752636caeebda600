// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sppayload

import (
	"testing"

	"github.com/ClusterCockpit/cc-sparkplug-node/internal/registry"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.SetTimestampFunc(func() uint64 { return 1000 })
	return r
}

// ─── Round trips ────────────────────────────────────────────────────────────

func TestBirthRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	temp, _ := r.Add(sptag.Tag{Name: "temperature", Alias: 1, Datatype: spvalue.Double}, nil)
	temp.CurrentValue = spvalue.NewDouble(21.5, 1000)
	flag, _ := r.Add(sptag.Tag{Name: "running", Alias: 2, Datatype: spvalue.Boolean, RemoteWritable: true}, nil)
	flag.CurrentValue = spvalue.NewBool(true, 1000)

	raw := EncodeBirth(r, 1000, false, nil)
	p, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if p.Seq != 0 || !p.HasSeq {
		t.Errorf("birth payload seq = %d, want 0", p.Seq)
	}
	if len(p.Metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(p.Metrics))
	}
	m := p.Metrics[0]
	if m.Name != "temperature" || !m.HasName {
		t.Errorf("metric 0 name = %q, want temperature", m.Name)
	}
	if !m.HasAlias || m.Alias != 1 {
		t.Errorf("metric 0 alias = %d, want 1", m.Alias)
	}
	if m.Kind != ValueDouble || m.DoubleValue != 21.5 {
		t.Errorf("metric 0 value = %v/%v, want Double/21.5", m.Kind, m.DoubleValue)
	}
	if m.Properties == nil || len(m.Properties.Keys) != 1 || m.Properties.Keys[0] != "readOnly" {
		t.Error("metric 0 should carry a readOnly property")
	}
	if !m.Properties.Values[0].BooleanValue {
		t.Error("non-remote-writable tag should publish readOnly=true")
	}

	m2 := p.Metrics[1]
	if m2.Properties.Values[0].BooleanValue {
		t.Error("remote-writable tag should publish readOnly=false")
	}
}

func TestBirthHistoricalFlagsEveryMetric(t *testing.T) {
	r := newTestRegistry(t)
	temp, _ := r.Add(sptag.Tag{Name: "temperature", Alias: 1, Datatype: spvalue.Double}, nil)
	temp.CurrentValue = spvalue.NewDouble(21.5, 1000)
	flag, _ := r.Add(sptag.Tag{Name: "running", Alias: 2, Datatype: spvalue.Boolean}, nil)
	flag.CurrentValue = spvalue.NewBool(true, 1000)

	raw := EncodeBirth(r, 1000, true, nil)
	p, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if len(p.Metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(p.Metrics))
	}
	for _, m := range p.Metrics {
		if !m.IsHistorical {
			t.Errorf("metric %q: IsHistorical = false, want true for a historical birth", m.Name)
		}
	}
}

func TestDataRoundTripUsesAliasNotName(t *testing.T) {
	r := newTestRegistry(t)
	tag, _ := r.Add(sptag.Tag{Name: "temperature", Alias: 1, Datatype: spvalue.Double}, nil)
	tag.CurrentValue = spvalue.NewDouble(22.0, 1000)
	tag.ValueChanged = true

	raw, ok := EncodeData(r, 2000, 1, false)
	if !ok {
		t.Fatal("EncodeData should report a change")
	}
	if tag.ValueChanged {
		t.Error("EncodeData should clear ValueChanged on included tags")
	}

	p, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if len(p.Metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(p.Metrics))
	}
	m := p.Metrics[0]
	if m.HasName {
		t.Error("an aliased tag's NDATA metric should omit the name")
	}
	if !m.HasAlias || m.Alias != 1 {
		t.Errorf("metric alias = %d, want 1", m.Alias)
	}
	if p.Seq != 1 {
		t.Errorf("seq = %d, want 1", p.Seq)
	}
}

func TestDataSkipsUnchangedAndHiddenTags(t *testing.T) {
	r := newTestRegistry(t)
	changed, _ := r.Add(sptag.Tag{Name: "a", Alias: 1, Datatype: spvalue.Int32}, nil)
	changed.CurrentValue = spvalue.NewInt32(1, 1000)
	changed.ValueChanged = true

	unchanged, _ := r.Add(sptag.Tag{Name: "b", Alias: 2, Datatype: spvalue.Int32}, nil)
	unchanged.CurrentValue = spvalue.NewInt32(2, 1000)

	hidden, _ := r.Add(sptag.Tag{Name: "bdSeq", Alias: -1000, Datatype: spvalue.Int64}, nil)
	hidden.CurrentValue = spvalue.NewInt64(3, 1000)
	hidden.ValueChanged = true

	raw, ok := EncodeData(r, 2000, 1, false)
	if !ok {
		t.Fatal("EncodeData should report a change")
	}
	p, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if len(p.Metrics) != 1 {
		t.Fatalf("got %d metrics, want 1 (reserved-alias tag must never appear in NDATA)", len(p.Metrics))
	}
}

func TestDataReturnsFalseWhenNothingChanged(t *testing.T) {
	r := newTestRegistry(t)
	tag, _ := r.Add(sptag.Tag{Name: "a", Alias: 1, Datatype: spvalue.Int32}, nil)
	tag.CurrentValue = spvalue.NewInt32(1, 1000)

	if _, ok := EncodeData(r, 2000, 1, false); ok {
		t.Error("EncodeData should report no change when nothing is dirty")
	}
}

func TestDeathRereadsBdSeq(t *testing.T) {
	r := newTestRegistry(t)
	bdSeq, _ := r.Add(sptag.Tag{Name: "bdSeq", Alias: -1000, Datatype: spvalue.Int64}, nil)
	bdSeq.CurrentValue = spvalue.NewInt64(7, 1000)

	raw, err := EncodeDeath(r, "bdSeq", 1000)
	if err != nil {
		t.Fatalf("EncodeDeath: %v", err)
	}
	p, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if len(p.Metrics) != 1 || p.Metrics[0].Name != "bdSeq" {
		t.Fatalf("death payload should carry exactly one bdSeq metric, got %+v", p.Metrics)
	}
	if p.Metrics[0].LongValue != 7 {
		t.Errorf("bdSeq value = %d, want 7", p.Metrics[0].LongValue)
	}
}

func TestDeathFailsWithoutBdSeqTag(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := EncodeDeath(r, "bdSeq", 1000); err == nil {
		t.Error("EncodeDeath should fail when bdSeq is not registered")
	}
}

// ─── NCMD decode ────────────────────────────────────────────────────────────

func TestDecodeCommandAppliesWrite(t *testing.T) {
	r := newTestRegistry(t)
	rebirth, _ := r.Add(sptag.Tag{Name: "Node Control/Rebirth", Alias: -1001, Datatype: spvalue.Boolean, RemoteWritable: true}, nil)
	rebirth.CurrentValue = spvalue.NewBool(false, 0)

	cmd := Payload{Metrics: []Metric{{
		HasAlias: true, Alias: uint64(uint32(int32(-1001))),
		HasDatatype: true, Datatype: uint32(spvalue.Boolean),
		Kind: ValueBoolean, BooleanValue: true,
	}}}

	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if b, _ := rebirth.CurrentValue.Bool(); !b {
		t.Error("rebirth tag should have been written true")
	}
}

func TestDecodeCommandRejectsNonWritableTag(t *testing.T) {
	r := newTestRegistry(t)
	tag, _ := r.Add(sptag.Tag{Name: "readOnly", Alias: 1, Datatype: spvalue.Int32}, nil)
	tag.CurrentValue = spvalue.NewInt32(5, 0)

	cmd := Payload{Metrics: []Metric{{
		HasAlias: true, Alias: 1, HasDatatype: true, Datatype: uint32(spvalue.Int32),
		Kind: ValueInt, IntValue: 9,
	}}}
	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Fatalf("DecodeCommand should silently drop a write to a non-remote-writable tag, not fail: %v", err)
	}
	if got, _ := tag.CurrentValue.Int64(); got != 5 {
		t.Error("a dropped command must not change the tag's value")
	}
}

func TestDecodeCommandAllowsInt64ForUInt64Tag(t *testing.T) {
	r := newTestRegistry(t)
	tag, _ := r.Add(sptag.Tag{Name: "counter", Alias: 3, Datatype: spvalue.UInt64, RemoteWritable: true}, nil)

	cmd := Payload{Metrics: []Metric{{
		HasAlias: true, Alias: 3, HasDatatype: true, Datatype: uint32(spvalue.Int64),
		Kind: ValueLong, LongValue: 42,
	}}}
	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Fatalf("DecodeCommand should tolerate Int64 for a UInt64 tag: %v", err)
	}
	if got, _ := tag.CurrentValue.Uint64(); got != 42 {
		t.Errorf("counter = %d, want 42", got)
	}
}

func TestDecodeCommandDropsDatatypeMismatch(t *testing.T) {
	r := newTestRegistry(t)
	flag, _ := r.Add(sptag.Tag{Name: "flag", Alias: 4, Datatype: spvalue.Boolean, RemoteWritable: true}, nil)
	flag.CurrentValue = spvalue.NewBool(false, 0)

	cmd := Payload{Metrics: []Metric{{
		HasAlias: true, Alias: 4, HasDatatype: true, Datatype: uint32(spvalue.Int32),
		Kind: ValueInt, IntValue: 1,
	}}}
	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Fatalf("DecodeCommand should silently drop an incompatible datatype, not fail: %v", err)
	}
	if b, _ := flag.CurrentValue.Bool(); b {
		t.Error("a datatype-mismatched command must not change the tag's value")
	}
}

func TestDecodeCommandUnknownTagIsDroppedSilently(t *testing.T) {
	r := newTestRegistry(t)
	cmd := Payload{Metrics: []Metric{{HasName: true, Name: "ghost", HasDatatype: true, Datatype: uint32(spvalue.Int32), Kind: ValueInt, IntValue: 1}}}
	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Errorf("DecodeCommand should report success even with an unresolvable tag reference: %v", err)
	}
}

func TestDecodeCommandNullWrite(t *testing.T) {
	r := newTestRegistry(t)
	tag, _ := r.Add(sptag.Tag{Name: "sensor", Alias: 5, Datatype: spvalue.Double, RemoteWritable: true}, nil)
	tag.CurrentValue = spvalue.NewDouble(1.0, 0)

	cmd := Payload{Metrics: []Metric{{HasAlias: true, Alias: 5, HasDatatype: true, Datatype: uint32(spvalue.Double), IsNull: true}}}
	if err := DecodeCommand(r, marshalPayload(cmd)); err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if !tag.CurrentValue.Null {
		t.Error("a null command metric should write a null value")
	}
}

// ─── Size guard ─────────────────────────────────────────────────────────────

func TestDecodeRejectsOversizedString(t *testing.T) {
	big := make([]byte, maxDecodeSize+1)
	for i := range big {
		big[i] = 'x'
	}
	m := Metric{HasName: true, Name: string(big)}
	raw := marshalMetric(m)
	if _, err := unmarshalMetric(raw); err == nil {
		t.Error("unmarshalMetric should reject a name exceeding the decode size cap")
	}
}
