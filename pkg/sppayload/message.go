// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sppayload implements the Sparkplug B Payload wire codec
// (spec.md §4.2-4.3, §6): encoding birth/data/death payloads from a
// pkg/sptag.Registry and decoding inbound NCMD payloads back into tag
// writes.
//
// The message shapes below mirror the Sparkplug B protobuf schema's
// field numbers exactly, but Encode/Decode do not go through
// protoc-generated, reflection-based marshaling. They read and write
// the wire format directly with
// google.golang.org/protobuf/encoding/protowire's low-level varint,
// fixed-width and length-delimited primitives. That keeps the codec
// allocation-light and dependency-free of the full descriptor/reflection
// machinery a generated .pb.go would pull in — a tradeoff that matters
// for the embedded target this module is built for, the same way
// nanopb favors hand-rolled wire code over descriptor-driven marshaling
// in C (see original_source's EmbeddedSparkplugPayloads.c, which this
// package's field layout is grounded on).
package sppayload

// Sparkplug B field numbers, fixed by the public protobuf schema.
const (
	fieldPayloadTimestamp = 1
	fieldPayloadMetrics   = 2
	fieldPayloadSeq       = 3
	fieldPayloadUUID      = 4
	fieldPayloadBody      = 5

	fieldMetricName         = 1
	fieldMetricAlias        = 2
	fieldMetricTimestamp    = 3
	fieldMetricDatatype     = 4
	fieldMetricIsHistorical = 5
	fieldMetricIsTransient  = 6
	fieldMetricIsNull       = 7
	fieldMetricMetadata     = 8
	fieldMetricProperties   = 9
	fieldMetricIntValue     = 10
	fieldMetricLongValue    = 11
	fieldMetricFloatValue   = 12
	fieldMetricDoubleValue  = 13
	fieldMetricBooleanValue = 14
	fieldMetricStringValue  = 15
	fieldMetricBytesValue   = 16

	fieldPropertySetKeys   = 1
	fieldPropertySetValues = 2

	fieldPropertyValueType         = 1
	fieldPropertyValueIsNull       = 2
	fieldPropertyValueIntValue     = 3
	fieldPropertyValueLongValue    = 4
	fieldPropertyValueFloatValue   = 5
	fieldPropertyValueDoubleValue  = 6
	fieldPropertyValueBooleanValue = 7
	fieldPropertyValueStringValue  = 8
)

// ValueKind discriminates the oneof carried by a Metric or PropertyValue.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueBoolean
	ValueString
	ValueBytes
)

// Payload is the top-level Sparkplug B message (spec.md §6). uuid and
// body are carried for wire completeness but are unused by this module.
type Payload struct {
	Timestamp    uint64
	HasTimestamp bool
	Metrics      []Metric
	Seq          uint64
	HasSeq       bool
	UUID         string
	HasUUID      bool
	Body         []byte
}

// Metric is one Sparkplug metric, name/alias/value per spec.md §4.2-4.3.
type Metric struct {
	Name            string
	HasName         bool
	Alias           uint64
	HasAlias        bool
	Timestamp       uint64
	HasTimestamp    bool
	Datatype        uint32
	HasDatatype     bool
	IsHistorical    bool
	IsTransient     bool
	IsNull          bool
	Properties      *PropertySet
	Kind            ValueKind
	IntValue        uint32
	LongValue       uint64
	FloatValue      float32
	DoubleValue     float64
	BooleanValue    bool
	StringValue     string
	BytesValue      []byte
}

// PropertySet is a parallel array of property names and values.
type PropertySet struct {
	Keys   []string
	Values []PropertyValue
}

// PropertyValue is one entry of a PropertySet.
type PropertyValue struct {
	Type         uint32
	HasType      bool
	IsNull       bool
	Kind         ValueKind
	IntValue     uint32
	LongValue    uint64
	FloatValue   float32
	DoubleValue  float64
	BooleanValue bool
	StringValue  string
}
