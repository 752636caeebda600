// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sppayload

import "google.golang.org/protobuf/encoding/protowire"

// maxDecodeSize bounds a single string/bytes field on decode.
// original_source's EmbeddedSparkplugPayloads.c enforces the same cap
// to keep decoding inside a fixed embedded buffer.
const maxDecodeSize = 1024

// appendLengthDelimited writes a varint length prefix followed by data,
// the shape every bytes-typed wire field shares.
func appendLengthDelimited(b []byte, data []byte) []byte {
	b = protowire.AppendVarint(b, uint64(len(data)))
	return append(b, data...)
}

func appendTagVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendTagFixed32(b []byte, num protowire.Number, v uint32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func appendTagFixed64(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func appendTagBytes(b []byte, num protowire.Number, data []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return appendLengthDelimited(b, data)
}

func appendTagString(b []byte, num protowire.Number, s string) []byte {
	return appendTagBytes(b, num, []byte(s))
}

func appendTagBool(b []byte, num protowire.Number, v bool) []byte {
	var x uint64
	if v {
		x = 1
	}
	return appendTagVarint(b, num, x)
}

// consumeBytes parses a varint length prefix followed by that many
// bytes, returning the payload and the number of bytes consumed
// (prefix included). It returns a negative protowire error code on
// truncation, mirroring protowire's own Consume* convention so callers
// can feed the result straight to protowire.ParseError.
func consumeBytes(b []byte) ([]byte, int) {
	length, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, n
	}
	if uint64(len(b)-n) < length {
		return nil, -1
	}
	end := n + int(length)
	return b[n:end], end
}
