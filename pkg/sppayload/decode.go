// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sppayload

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

// DecodeCommand parses an inbound NCMD payload and applies each metric
// as a write against reg. A metric is resolved by alias when it
// carries one, falling back to name.
//
// An unknown tag, a non-remote-writable tag, an incompatible datatype
// or a value the tag's validator rejects is dropped silently — per
// spec.md §7 these are the Sparkplug "lenient consumer" policy, not
// errors, and decoding the rest of the payload continues. DecodeCommand
// only returns an error when the payload itself is malformed (a
// truncated or oversized wire value): that is the one case where the
// whole command is rejected.
func DecodeCommand(reg sptag.Registry, payload []byte) error {
	p, err := unmarshalPayload(payload)
	if err != nil {
		return fmt.Errorf("sppayload: decoding command: %w", err)
	}

	for _, m := range p.Metrics {
		tag, found := resolveTag(reg, m)
		if !found || !tag.RemoteWritable {
			continue
		}
		if !datatypeCompatible(tag.Datatype, spvalue.Datatype(m.Datatype), m.HasDatatype) {
			continue
		}
		val, err := metricToValue(m, tag.Datatype)
		if err != nil {
			continue
		}
		reg.Write(tag, val)
	}
	return nil
}

func resolveTag(reg sptag.Registry, m Metric) (*sptag.Tag, bool) {
	if m.HasAlias {
		if tag, ok := reg.GetByAlias(int32(uint32(m.Alias))); ok {
			return tag, true
		}
	}
	if m.HasName {
		return reg.GetByName(m.Name)
	}
	return nil, false
}

// datatypeCompatible allows a command's declared datatype to differ
// from the tag's own in exactly one case: a UInt64 tag accepts an
// incoming Int64, the same tolerance original_source's decode path
// grants a controller that encodes a large unsigned value through a
// signed 64-bit field.
func datatypeCompatible(tagType, cmdType spvalue.Datatype, hasCmdType bool) bool {
	if !hasCmdType {
		return true
	}
	if tagType == cmdType {
		return true
	}
	return tagType == spvalue.UInt64 && cmdType == spvalue.Int64
}

func metricToValue(m Metric, dt spvalue.Datatype) (spvalue.BasicValue, error) {
	if m.IsNull {
		return spvalue.Null(dt, m.Timestamp), nil
	}
	switch dt {
	case spvalue.Int8:
		return spvalue.NewInt8(int8(int32(m.IntValue)), m.Timestamp), nil
	case spvalue.Int16:
		return spvalue.NewInt16(int16(int32(m.IntValue)), m.Timestamp), nil
	case spvalue.Int32:
		return spvalue.NewInt32(int32(m.IntValue), m.Timestamp), nil
	case spvalue.Int64:
		return spvalue.NewInt64(int64(m.LongValue), m.Timestamp), nil
	case spvalue.UInt8:
		return spvalue.NewUInt8(uint8(m.IntValue), m.Timestamp), nil
	case spvalue.UInt16:
		return spvalue.NewUInt16(uint16(m.IntValue), m.Timestamp), nil
	case spvalue.UInt32:
		return spvalue.NewUInt32(m.IntValue, m.Timestamp), nil
	case spvalue.UInt64:
		return spvalue.NewUInt64(m.LongValue, m.Timestamp), nil
	case spvalue.DateTime:
		return spvalue.NewDateTime(m.LongValue, m.Timestamp), nil
	case spvalue.Float:
		return spvalue.NewFloat(m.FloatValue, m.Timestamp), nil
	case spvalue.Double:
		return spvalue.NewDouble(m.DoubleValue, m.Timestamp), nil
	case spvalue.Boolean:
		return spvalue.NewBool(m.BooleanValue, m.Timestamp), nil
	case spvalue.String:
		return spvalue.NewString(m.StringValue, m.Timestamp), nil
	case spvalue.Text:
		return spvalue.NewText(m.StringValue, m.Timestamp), nil
	case spvalue.UUID:
		return spvalue.NewUUID(m.StringValue, m.Timestamp), nil
	case spvalue.Bytes:
		return spvalue.NewBytes(m.BytesValue, m.Timestamp), nil
	default:
		return spvalue.BasicValue{}, fmt.Errorf("sppayload: unsupported command datatype %d", dt)
	}
}

// Decode parses raw bytes into a Payload without applying it against a
// registry. DecodeCommand is built on this; callers that need the raw
// message shape (tests, diagnostics, a future DBIRTH/DCMD extension)
// can call it directly.
func Decode(raw []byte) (Payload, error) {
	return unmarshalPayload(raw)
}

func unmarshalPayload(b []byte) (Payload, error) {
	var p Payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldPayloadTimestamp:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.Timestamp, p.HasTimestamp = v, true
			b = b[n:]
		case fieldPayloadMetrics:
			data, n := consumeBytes(b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			m, err := unmarshalMetric(data)
			if err != nil {
				return p, err
			}
			p.Metrics = append(p.Metrics, m)
			b = b[n:]
		case fieldPayloadSeq:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.Seq, p.HasSeq = v, true
			b = b[n:]
		case fieldPayloadUUID:
			data, n := consumeBytes(b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.UUID, p.HasUUID = string(data), true
			b = b[n:]
		case fieldPayloadBody:
			data, n := consumeBytes(b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.Body = append([]byte(nil), data...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return p, nil
}

func unmarshalMetric(b []byte) (Metric, error) {
	var m Metric
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldMetricName:
			data, n := consumeBytes(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			if len(data) > maxDecodeSize {
				return m, fmt.Errorf("sppayload: metric name exceeds %d bytes", maxDecodeSize)
			}
			m.Name, m.HasName = string(data), true
			b = b[n:]
		case fieldMetricAlias:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Alias, m.HasAlias = v, true
			b = b[n:]
		case fieldMetricTimestamp:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Timestamp, m.HasTimestamp = v, true
			b = b[n:]
		case fieldMetricDatatype:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Datatype, m.HasDatatype = uint32(v), true
			b = b[n:]
		case fieldMetricIsHistorical:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.IsHistorical = v != 0
			b = b[n:]
		case fieldMetricIsTransient:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.IsTransient = v != 0
			b = b[n:]
		case fieldMetricIsNull:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.IsNull = v != 0
			b = b[n:]
		case fieldMetricProperties:
			data, n := consumeBytes(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			ps, err := unmarshalPropertySet(data)
			if err != nil {
				return m, err
			}
			m.Properties = &ps
			b = b[n:]
		case fieldMetricIntValue:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Kind, m.IntValue = ValueInt, uint32(v)
			b = b[n:]
		case fieldMetricLongValue:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Kind, m.LongValue = ValueLong, v
			b = b[n:]
		case fieldMetricFloatValue:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Kind, m.FloatValue = ValueFloat, math.Float32frombits(v)
			b = b[n:]
		case fieldMetricDoubleValue:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Kind, m.DoubleValue = ValueDouble, math.Float64frombits(v)
			b = b[n:]
		case fieldMetricBooleanValue:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			m.Kind, m.BooleanValue = ValueBoolean, v != 0
			b = b[n:]
		case fieldMetricStringValue:
			data, n := consumeBytes(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			if len(data) > maxDecodeSize {
				return m, fmt.Errorf("sppayload: metric string_value exceeds %d bytes", maxDecodeSize)
			}
			m.Kind, m.StringValue = ValueString, string(data)
			b = b[n:]
		case fieldMetricBytesValue:
			data, n := consumeBytes(b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			if len(data) > maxDecodeSize {
				return m, fmt.Errorf("sppayload: metric bytes_value exceeds %d bytes", maxDecodeSize)
			}
			m.Kind, m.BytesValue = ValueBytes, append([]byte(nil), data...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return m, nil
}

func unmarshalPropertySet(b []byte) (PropertySet, error) {
	var ps PropertySet
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ps, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldPropertySetKeys:
			data, n := consumeBytes(b)
			if n < 0 {
				return ps, protowire.ParseError(n)
			}
			ps.Keys = append(ps.Keys, string(data))
			b = b[n:]
		case fieldPropertySetValues:
			data, n := consumeBytes(b)
			if n < 0 {
				return ps, protowire.ParseError(n)
			}
			pv, err := unmarshalPropertyValue(data)
			if err != nil {
				return ps, err
			}
			ps.Values = append(ps.Values, pv)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ps, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return ps, nil
}

func unmarshalPropertyValue(b []byte) (PropertyValue, error) {
	var v PropertyValue
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return v, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldPropertyValueType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Type, v.HasType = uint32(x), true
			b = b[n:]
		case fieldPropertyValueIsNull:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.IsNull = x != 0
			b = b[n:]
		case fieldPropertyValueIntValue:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.IntValue = ValueInt, uint32(x)
			b = b[n:]
		case fieldPropertyValueLongValue:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.LongValue = ValueLong, x
			b = b[n:]
		case fieldPropertyValueFloatValue:
			x, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.FloatValue = ValueFloat, math.Float32frombits(x)
			b = b[n:]
		case fieldPropertyValueDoubleValue:
			x, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.DoubleValue = ValueDouble, math.Float64frombits(x)
			b = b[n:]
		case fieldPropertyValueBooleanValue:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.BooleanValue = ValueBoolean, x != 0
			b = b[n:]
		case fieldPropertyValueStringValue:
			data, n := consumeBytes(b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			v.Kind, v.StringValue = ValueString, string(data)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return v, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return v, nil
}
