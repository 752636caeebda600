package spvalue

import "testing"

// ─── Integer carriers ──────────────────────────────────────────────────────

func TestInt64RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    BasicValue
		want int64
	}{
		{"Int8", NewInt8(-12, 1), -12},
		{"Int16", NewInt16(-1234, 1), -1234},
		{"Int32", NewInt32(-123456, 1), -123456},
		{"Int64", NewInt64(-123456789, 1), -123456789},
		{"UInt8", NewUInt8(200, 1), 200},
		{"UInt16", NewUInt16(60000, 1), 60000},
		{"UInt32", NewUInt32(4000000000, 1), 4000000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Int64()
			if !ok {
				t.Fatalf("Int64() ok = false, want true")
			}
			if got != tt.want {
				t.Errorf("Int64() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUint64RoundTrip(t *testing.T) {
	v := NewUInt64(18446744073709551615, 5)
	got, ok := v.Uint64()
	if !ok || got != 18446744073709551615 {
		t.Errorf("Uint64() = (%d, %v), want (18446744073709551615, true)", got, ok)
	}

	dt := NewDateTime(1700000000000, 5)
	got, ok = dt.Uint64()
	if !ok || got != 1700000000000 {
		t.Errorf("DateTime Uint64() = (%d, %v)", got, ok)
	}
}

func TestWrongAccessorReturnsFalse(t *testing.T) {
	v := NewInt32(5, 1)
	if _, ok := v.Uint64(); ok {
		t.Error("Uint64() ok = true for an Int32 value, want false")
	}
	if _, ok := v.Bool(); ok {
		t.Error("Bool() ok = true for an Int32 value, want false")
	}
}

// ─── Null values ───────────────────────────────────────────────────────────

func TestNullValueAccessorsFail(t *testing.T) {
	v := Null(Int32, 1)
	if !v.Null {
		t.Fatal("Null = false, want true")
	}
	if _, ok := v.Int64(); ok {
		t.Error("Int64() ok = true for a null value, want false")
	}
}

// ─── Bytes interop invariant ───────────────────────────────────────────────

func TestBytesReservesTrailingZero(t *testing.T) {
	v := NewBytes([]byte("hello"), 1)
	got, ok := v.Bytes()
	if !ok {
		t.Fatal("Bytes() ok = false")
	}
	if string(got) != "hello" {
		t.Errorf("Bytes() = %q, want %q", got, "hello")
	}
	if len(v.buf) != len(got)+1 {
		t.Fatalf("backing buffer len = %d, want %d (logical + 1 trailing zero)", len(v.buf), len(got)+1)
	}
	if v.buf[len(v.buf)-1] != 0 {
		t.Error("backing buffer does not end in a zero byte")
	}
}

func TestBytesEmpty(t *testing.T) {
	v := NewBytes(nil, 1)
	got, ok := v.Bytes()
	if !ok || len(got) != 0 {
		t.Errorf("Bytes() = (%v, %v), want (empty slice, true)", got, ok)
	}
}

// ─── Strings ───────────────────────────────────────────────────────────────

func TestStringVariants(t *testing.T) {
	tests := []struct {
		name string
		v    BasicValue
	}{
		{"String", NewString("abc", 1)},
		{"Text", NewText("abc", 1)},
		{"UUID", NewUUID("abc", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Str()
			if !ok || got != "abc" {
				t.Errorf("Str() = (%q, %v), want (%q, true)", got, ok, "abc")
			}
		})
	}
}

// ─── Datatype string rendering ──────────────────────────────────────────────

func TestDatatypeString(t *testing.T) {
	if Int32.String() != "Int32" {
		t.Errorf("Int32.String() = %q, want %q", Int32.String(), "Int32")
	}
	if Datatype(255).String() != "Unknown" {
		t.Errorf("unknown datatype String() = %q, want %q", Datatype(255).String(), "Unknown")
	}
}

// ─── Equality ────────────────────────────────────────────────────────────

func TestSamePayloadIgnoresTimestamp(t *testing.T) {
	a := NewInt32(5, 100)
	b := NewInt32(5, 200)
	if !SamePayload(a, b) {
		t.Error("SamePayload should ignore differing timestamps")
	}
	if Equal(a, b) {
		t.Error("Equal should treat differing timestamps as not equal")
	}
}

func TestSamePayloadDetectsChange(t *testing.T) {
	a := NewInt32(5, 100)
	b := NewInt32(6, 100)
	if SamePayload(a, b) {
		t.Error("SamePayload should detect differing values")
	}
}

func TestSamePayloadBytes(t *testing.T) {
	a := NewBytes([]byte("abc"), 1)
	b := NewBytes([]byte("abc"), 2)
	c := NewBytes([]byte("abd"), 1)
	if !SamePayload(a, b) {
		t.Error("identical byte payloads with different timestamps should be SamePayload")
	}
	if SamePayload(a, c) {
		t.Error("differing byte payloads should not be SamePayload")
	}
}

func TestDatatypeCarrierClassification(t *testing.T) {
	if !Int32.Uses32BitCarrier() {
		t.Error("Int32 should use the 32-bit carrier")
	}
	if !UInt64.Uses64BitCarrier() {
		t.Error("UInt64 should use the 64-bit carrier")
	}
	if Float.Uses32BitCarrier() || Float.Uses64BitCarrier() {
		t.Error("Float should use neither integer carrier")
	}
	if !UUID.IsString() {
		t.Error("UUID should be classified as a string datatype")
	}
}
