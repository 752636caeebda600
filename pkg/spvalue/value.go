package spvalue

import "bytes"

// BasicValue is a tagged union over the Sparkplug primitive datatypes,
// carrying a timestamp alongside either a null flag or exactly one typed
// payload. It is the in-memory value type shared by the tag registry
// contract and the payload codec.
//
// Bytes values reserve one extra trailing zero byte in their backing
// buffer beyond the logical length, so the buffer may be reinterpreted
// as a C-style string without reallocation. Bytes() always strips that
// trailing byte back off.
type BasicValue struct {
	Datatype  Datatype
	Timestamp uint64
	Null      bool

	i64  int64   // Int8/Int16/Int32/Int64/UInt8/UInt16/UInt32 carrier
	u64  uint64  // UInt64/DateTime carrier (full unsigned 64-bit range)
	f32  float32 // Float
	f64  float64 // Double
	b    bool    // Boolean
	str  string  // String/Text/UUID
	buf  []byte  // Bytes: logical data plus one trailing zero byte
}

// Null constructs a null value of the given datatype and timestamp.
func Null(dt Datatype, timestamp uint64) BasicValue {
	return BasicValue{Datatype: dt, Timestamp: timestamp, Null: true}
}

func NewInt8(v int8, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Int8, Timestamp: timestamp, i64: int64(v)}
}

func NewInt16(v int16, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Int16, Timestamp: timestamp, i64: int64(v)}
}

func NewInt32(v int32, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Int32, Timestamp: timestamp, i64: int64(v)}
}

func NewInt64(v int64, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Int64, Timestamp: timestamp, i64: v}
}

func NewUInt8(v uint8, timestamp uint64) BasicValue {
	return BasicValue{Datatype: UInt8, Timestamp: timestamp, i64: int64(v)}
}

func NewUInt16(v uint16, timestamp uint64) BasicValue {
	return BasicValue{Datatype: UInt16, Timestamp: timestamp, i64: int64(v)}
}

func NewUInt32(v uint32, timestamp uint64) BasicValue {
	return BasicValue{Datatype: UInt32, Timestamp: timestamp, i64: int64(v)}
}

func NewUInt64(v uint64, timestamp uint64) BasicValue {
	return BasicValue{Datatype: UInt64, Timestamp: timestamp, u64: v}
}

// NewDateTime builds a DateTime value; per spec.md §3 it is carried as
// an unsigned 64-bit epoch-millisecond count.
func NewDateTime(epochMs uint64, timestamp uint64) BasicValue {
	return BasicValue{Datatype: DateTime, Timestamp: timestamp, u64: epochMs}
}

func NewFloat(v float32, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Float, Timestamp: timestamp, f32: v}
}

func NewDouble(v float64, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Double, Timestamp: timestamp, f64: v}
}

func NewBool(v bool, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Boolean, Timestamp: timestamp, b: v}
}

func NewString(v string, timestamp uint64) BasicValue {
	return BasicValue{Datatype: String, Timestamp: timestamp, str: v}
}

func NewText(v string, timestamp uint64) BasicValue {
	return BasicValue{Datatype: Text, Timestamp: timestamp, str: v}
}

func NewUUID(v string, timestamp uint64) BasicValue {
	return BasicValue{Datatype: UUID, Timestamp: timestamp, str: v}
}

// NewBytes copies data into a buffer one byte longer than len(data),
// with the trailing byte reserved as a zero terminator (spec.md §3).
func NewBytes(data []byte, timestamp uint64) BasicValue {
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	return BasicValue{Datatype: Bytes, Timestamp: timestamp, buf: buf}
}

// Int64 returns the value as an int64 if it was built from a signed or
// narrow-unsigned integer datatype.
func (v BasicValue) Int64() (int64, bool) {
	switch v.Datatype {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32:
		return v.i64, !v.Null
	default:
		return 0, false
	}
}

// Uint64 returns the value as a uint64 if it was built from UInt64 or
// DateTime.
func (v BasicValue) Uint64() (uint64, bool) {
	switch v.Datatype {
	case UInt64, DateTime:
		return v.u64, !v.Null
	default:
		return 0, false
	}
}

func (v BasicValue) Float32() (float32, bool) {
	return v.f32, v.Datatype == Float && !v.Null
}

func (v BasicValue) Float64() (float64, bool) {
	return v.f64, v.Datatype == Double && !v.Null
}

func (v BasicValue) Bool() (bool, bool) {
	return v.b, v.Datatype == Boolean && !v.Null
}

func (v BasicValue) Str() (string, bool) {
	if v.Null {
		return "", false
	}
	switch v.Datatype {
	case String, Text, UUID:
		return v.str, true
	default:
		return "", false
	}
}

// Bytes returns the logical byte slice, with the trailing zero
// terminator reserved by NewBytes stripped off.
func (v BasicValue) Bytes() ([]byte, bool) {
	if v.Null || v.Datatype != Bytes || len(v.buf) == 0 {
		return nil, false
	}
	return v.buf[:len(v.buf)-1], true
}

// Equal reports whether a and b carry the same datatype, null state,
// timestamp and payload. It exists because BasicValue embeds a byte
// slice and so is not comparable with ==.
func Equal(a, b BasicValue) bool {
	return a.Timestamp == b.Timestamp && SamePayload(a, b)
}

// SamePayload reports whether a and b carry the same datatype, null
// state and typed payload, ignoring their timestamps. The tag registry
// uses this to detect report-by-exception changes on every read: a new
// timestamp alone must never count as a change.
func SamePayload(a, b BasicValue) bool {
	if a.Datatype != b.Datatype || a.Null != b.Null {
		return false
	}
	if a.Null {
		return true
	}
	switch a.Datatype {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32:
		return a.i64 == b.i64
	case UInt64, DateTime:
		return a.u64 == b.u64
	case Float:
		return a.f32 == b.f32
	case Double:
		return a.f64 == b.f64
	case Boolean:
		return a.b == b.b
	case String, Text, UUID:
		return a.str == b.str
	case Bytes:
		return bytes.Equal(a.buf, b.buf)
	default:
		return false
	}
}
