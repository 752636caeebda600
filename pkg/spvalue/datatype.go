// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package spvalue provides the Sparkplug B primitive value model: the
// Datatype enumeration and the BasicValue tagged union the payload
// codec and tag registry exchange.
package spvalue

// Datatype is a Sparkplug B metric datatype code, as carried on the wire
// in Metric.datatype and PropertyValue.type.
type Datatype uint32

const (
	Int8     Datatype = 1
	Int16    Datatype = 2
	Int32    Datatype = 3
	Int64    Datatype = 4
	UInt8    Datatype = 5
	UInt16   Datatype = 6
	UInt32   Datatype = 7
	UInt64   Datatype = 8
	Float    Datatype = 9
	Double   Datatype = 10
	Boolean  Datatype = 11
	String   Datatype = 12
	DateTime Datatype = 13
	Text     Datatype = 14
	UUID     Datatype = 15
	// File, DataSet, Template and array datatypes are recognized on
	// decode and ignored; this module never produces them on encode.
	File     Datatype = 16
	Bytes    Datatype = 17
	DataSet  Datatype = 19
	Template Datatype = 20
)

// String returns a human-readable name for d, for logging and test
// failure messages. Unknown codes render as "Unknown".
func (d Datatype) String() string {
	switch d {
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case DateTime:
		return "DateTime"
	case Text:
		return "Text"
	case UUID:
		return "UUID"
	case File:
		return "File"
	case Bytes:
		return "Bytes"
	case DataSet:
		return "DataSet"
	case Template:
		return "Template"
	default:
		return "Unknown"
	}
}

// Uses32BitCarrier reports whether d is encoded through the wire's
// 32-bit int_value carrier (as opposed to the 64-bit long_value carrier).
func (d Datatype) Uses32BitCarrier() bool {
	switch d {
	case Int8, Int16, Int32, UInt8, UInt16, UInt32:
		return true
	default:
		return false
	}
}

// Uses64BitCarrier reports whether d is encoded through the wire's
// 64-bit long_value carrier.
func (d Datatype) Uses64BitCarrier() bool {
	switch d {
	case Int64, UInt64, DateTime:
		return true
	default:
		return false
	}
}

// IsString reports whether d's value lives in the wire's string_value field.
func (d Datatype) IsString() bool {
	switch d {
	case String, Text, UUID:
		return true
	default:
		return false
	}
}
