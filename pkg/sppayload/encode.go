// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sppayload

import (
	"fmt"
	"math"

	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

// maxEncodeSize bounds a single string/bytes metric value on encode,
// matching the decode-side cap so a birth payload built from a
// misbehaving tag source can't silently grow past what a peer using
// the same fixed decode buffer could accept.
const maxEncodeSize = 1024

// PropertiesFunc computes the property set published alongside a tag's
// metric in a birth payload. Supplying nil to EncodeBirth falls back to
// DefaultProperties.
type PropertiesFunc func(tag *sptag.Tag) *PropertySet

// DefaultProperties publishes a single boolean "readOnly" property
// derived from the tag's RemoteWritable flag, matching
// initializeSparkplugTags' property assignment in original_source.
func DefaultProperties(tag *sptag.Tag) *PropertySet {
	return &PropertySet{
		Keys: []string{"readOnly"},
		Values: []PropertyValue{{
			Type:         uint32(spvalue.Boolean),
			HasType:      true,
			Kind:         ValueBoolean,
			BooleanValue: !tag.RemoteWritable,
		}},
	}
}

// EncodeBirth builds an NBIRTH payload containing every registered tag
// with its name, alias (if any), current value and properties. A birth
// payload always carries the full tag list; report-by-exception only
// applies to EncodeData. The sequence number in a birth payload is
// always 0 per the Sparkplug session contract. historical marks every
// included metric historical, the same as EncodeData, for a birth built
// while disconnected from the broker (original_source's
// makeHistoricalNBIRTH). Every included tag's ValueChanged flag is
// cleared as it is committed to the payload, the same as EncodeData, so
// a birth also counts as delivering a tag's pending change.
func EncodeBirth(reg sptag.Registry, timestamp uint64, historical bool, props PropertiesFunc) []byte {
	if props == nil {
		props = DefaultProperties
	}
	p := Payload{HasTimestamp: true, Timestamp: timestamp, HasSeq: true, Seq: 0}
	for i, n := 0, reg.Count(); i < n; i++ {
		tag, ok := reg.GetByIndex(i)
		if !ok {
			continue
		}
		m := valueToMetric(tag, true, true, props)
		m.IsHistorical = historical
		p.Metrics = append(p.Metrics, m)
		reg.ClearChanged(tag)
	}
	return marshalPayload(p)
}

// EncodeData builds an NDATA payload from every tag whose ValueChanged
// flag is set, excluding tags hidden from data (HiddenFromData). Each
// included metric carries its alias instead of its name when the tag
// has one, to keep the payload small, and EncodeData clears the tag's
// changed flag through the registry once it is committed to the
// payload. historical marks every included metric historical, for
// post-reconnect replay of values that changed while disconnected. It
// reports ok=false if no tag had changed, in which case seq is not
// consumed by the caller.
func EncodeData(reg sptag.Registry, timestamp uint64, seq uint8, historical bool) (payload []byte, ok bool) {
	var metrics []Metric
	for i, n := 0, reg.Count(); i < n; i++ {
		tag, has := reg.GetByIndex(i)
		if !has || !tag.ValueChanged || tag.HiddenFromData() {
			continue
		}
		m := valueToMetric(tag, !tag.HasAlias(), true, nil)
		m.IsHistorical = historical
		metrics = append(metrics, m)
		reg.ClearChanged(tag)
	}
	if len(metrics) == 0 {
		return nil, false
	}
	p := Payload{HasTimestamp: true, Timestamp: timestamp, HasSeq: true, Seq: uint64(seq), Metrics: metrics}
	return marshalPayload(p), true
}

// EncodeDeath builds an NDEATH payload carrying only the bdSeq metric
// and no seq field. It reads bdSeq's current value from the registry
// rather than trusting a value the caller may have cached earlier in
// the tick, the same order original_source's _make_ndeath_payload uses.
func EncodeDeath(reg sptag.Registry, bdSeqTagName string, timestamp uint64) ([]byte, error) {
	tag, found := reg.GetByName(bdSeqTagName)
	if !found {
		return nil, fmt.Errorf("sppayload: bdSeq tag %q is not registered", bdSeqTagName)
	}
	p := Payload{HasTimestamp: true, Timestamp: timestamp, Metrics: []Metric{valueToMetric(tag, true, false, nil)}}
	return marshalPayload(p), nil
}

func valueToMetric(tag *sptag.Tag, includeName, includeAlias bool, props PropertiesFunc) Metric {
	v := tag.CurrentValue
	m := Metric{
		HasTimestamp: true,
		Timestamp:    v.Timestamp,
		HasDatatype:  true,
		Datatype:     uint32(v.Datatype),
		IsNull:       v.Null,
	}
	if includeName {
		m.HasName, m.Name = true, tag.Name
	}
	if includeAlias && tag.HasAlias() {
		m.HasAlias, m.Alias = true, uint64(uint32(tag.Alias))
	}
	if props != nil {
		m.Properties = props(tag)
	}
	if !v.Null {
		setMetricValue(&m, v)
	}
	return m
}

func setMetricValue(m *Metric, v spvalue.BasicValue) {
	switch v.Datatype {
	case spvalue.Int8, spvalue.Int16, spvalue.Int32, spvalue.UInt8, spvalue.UInt16, spvalue.UInt32:
		n, _ := v.Int64()
		m.Kind, m.IntValue = ValueInt, uint32(n)
	case spvalue.Int64:
		n, _ := v.Int64()
		m.Kind, m.LongValue = ValueLong, uint64(n)
	case spvalue.UInt64, spvalue.DateTime:
		n, _ := v.Uint64()
		m.Kind, m.LongValue = ValueLong, n
	case spvalue.Float:
		f, _ := v.Float32()
		m.Kind, m.FloatValue = ValueFloat, f
	case spvalue.Double:
		f, _ := v.Float64()
		m.Kind, m.DoubleValue = ValueDouble, f
	case spvalue.Boolean:
		b, _ := v.Bool()
		m.Kind, m.BooleanValue = ValueBoolean, b
	case spvalue.String, spvalue.Text, spvalue.UUID:
		s, _ := v.Str()
		if len(s) > maxEncodeSize {
			s = s[:maxEncodeSize]
		}
		m.Kind, m.StringValue = ValueString, s
	case spvalue.Bytes:
		bs, _ := v.Bytes()
		if len(bs) > maxEncodeSize {
			bs = bs[:maxEncodeSize]
		}
		m.Kind, m.BytesValue = ValueBytes, bs
	}
}

// Encode serializes a Payload built directly from its message fields,
// bypassing the registry-driven Encode* helpers. It exists for callers
// that already hold a fully-formed Payload (tests, diagnostics).
func Encode(p Payload) []byte {
	return marshalPayload(p)
}

func marshalPayload(p Payload) []byte {
	var b []byte
	if p.HasTimestamp {
		b = appendTagVarint(b, fieldPayloadTimestamp, p.Timestamp)
	}
	for _, m := range p.Metrics {
		b = appendTagBytes(b, fieldPayloadMetrics, marshalMetric(m))
	}
	if p.HasSeq {
		b = appendTagVarint(b, fieldPayloadSeq, p.Seq)
	}
	if p.HasUUID {
		b = appendTagString(b, fieldPayloadUUID, p.UUID)
	}
	if len(p.Body) > 0 {
		b = appendTagBytes(b, fieldPayloadBody, p.Body)
	}
	return b
}

func marshalMetric(m Metric) []byte {
	var b []byte
	if m.HasName {
		b = appendTagString(b, fieldMetricName, m.Name)
	}
	if m.HasAlias {
		b = appendTagVarint(b, fieldMetricAlias, m.Alias)
	}
	if m.HasTimestamp {
		b = appendTagVarint(b, fieldMetricTimestamp, m.Timestamp)
	}
	if m.HasDatatype {
		b = appendTagVarint(b, fieldMetricDatatype, uint64(m.Datatype))
	}
	if m.IsHistorical {
		b = appendTagBool(b, fieldMetricIsHistorical, true)
	}
	if m.IsTransient {
		b = appendTagBool(b, fieldMetricIsTransient, true)
	}
	if m.IsNull {
		b = appendTagBool(b, fieldMetricIsNull, true)
	}
	if m.Properties != nil {
		b = appendTagBytes(b, fieldMetricProperties, marshalPropertySet(*m.Properties))
	}
	if m.IsNull {
		return b
	}
	switch m.Kind {
	case ValueInt:
		b = appendTagVarint(b, fieldMetricIntValue, uint64(m.IntValue))
	case ValueLong:
		b = appendTagVarint(b, fieldMetricLongValue, m.LongValue)
	case ValueFloat:
		b = appendTagFixed32(b, fieldMetricFloatValue, math.Float32bits(m.FloatValue))
	case ValueDouble:
		b = appendTagFixed64(b, fieldMetricDoubleValue, math.Float64bits(m.DoubleValue))
	case ValueBoolean:
		b = appendTagBool(b, fieldMetricBooleanValue, m.BooleanValue)
	case ValueString:
		b = appendTagString(b, fieldMetricStringValue, m.StringValue)
	case ValueBytes:
		b = appendTagBytes(b, fieldMetricBytesValue, m.BytesValue)
	}
	return b
}

func marshalPropertySet(ps PropertySet) []byte {
	var b []byte
	for _, k := range ps.Keys {
		b = appendTagString(b, fieldPropertySetKeys, k)
	}
	for _, v := range ps.Values {
		b = appendTagBytes(b, fieldPropertySetValues, marshalPropertyValue(v))
	}
	return b
}

func marshalPropertyValue(v PropertyValue) []byte {
	var b []byte
	if v.HasType {
		b = appendTagVarint(b, fieldPropertyValueType, uint64(v.Type))
	}
	if v.IsNull {
		return appendTagBool(b, fieldPropertyValueIsNull, true)
	}
	switch v.Kind {
	case ValueInt:
		b = appendTagVarint(b, fieldPropertyValueIntValue, uint64(v.IntValue))
	case ValueLong:
		b = appendTagVarint(b, fieldPropertyValueLongValue, v.LongValue)
	case ValueFloat:
		b = appendTagFixed32(b, fieldPropertyValueFloatValue, math.Float32bits(v.FloatValue))
	case ValueDouble:
		b = appendTagFixed64(b, fieldPropertyValueDoubleValue, math.Float64bits(v.DoubleValue))
	case ValueBoolean:
		b = appendTagBool(b, fieldPropertyValueBooleanValue, v.BooleanValue)
	case ValueString:
		b = appendTagString(b, fieldPropertyValueStringValue, v.StringValue)
	}
	return b
}
