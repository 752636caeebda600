// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeIDExpr is a parsed "nodes" expression: a comma-separated list
// of terms, each a sequence of literal and zero-padded-integer-range
// segments (e.g. "edge[01-12]" or "edge[01-06],spare[1-2]"). Unlike a
// general job-node-list grammar, a node-id expression only ever needs
// to be expanded into the concrete names a multi-node process should
// each construct a Node for; it is never matched incrementally against
// an arbitrary candidate string, so terms carry no separate consume
// step of their own.
type NodeIDExpr [][]nodeIDSegment

// nodeIDSegment is one piece of a term: either a literal run of
// letters/digits, or a bracketed set of zero-padded integer ranges.
// Exactly one of literal or ranges is populated.
type nodeIDSegment struct {
	literal string
	ranges  []nodeIDRange
}

type nodeIDRange struct {
	start, end int64
	digits     int
}

// Expand enumerates every concrete node id the expression denotes,
// walking each term's segments left to right and taking the cross
// product of literal and range pieces. A multi-node cc-sparkplug-node
// process uses this to turn "edge[01-12]" into the twelve node
// identities it should each construct a Node for.
func (nl NodeIDExpr) Expand() ([]string, error) {
	var names []string
	for _, term := range nl {
		prefixes := []string{""}
		for _, seg := range term {
			var next []string
			switch {
			case seg.ranges != nil:
				for _, p := range prefixes {
					for _, r := range seg.ranges {
						for x := r.start; x <= r.end; x++ {
							next = append(next, p+fmt.Sprintf("%0*d", r.digits, x))
						}
					}
				}
			default:
				for _, p := range prefixes {
					next = append(next, p+seg.literal)
				}
			}
			prefixes = next
		}
		names = append(names, prefixes...)
	}
	return names, nil
}

// ParseNodeIDExpr parses a "nodes" expression (the configuration
// file's nodes value) into a NodeIDExpr.
// Each comma-separated term is a run of literal letters/digits and
// bracketed integer ranges; a bracket holds one or more comma-separated
// "<start>-<end>" pairs whose operands share a zero-padded digit width
// (e.g. "[01-06,20-24]").
func ParseNodeIDExpr(raw string) (NodeIDExpr, error) {
	isLetter := func(r byte) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
	isDigit := func(r byte) bool { return '0' <= r && r <= '9' }

	rawterms := []string{}
	prevterm := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '[' {
			for i < len(raw) && raw[i] != ']' {
				i++
			}
			if i == len(raw) {
				return nil, fmt.Errorf("node list: unclosed '['")
			}
		} else if raw[i] == ',' {
			rawterms = append(rawterms, raw[prevterm:i])
			prevterm = i + 1
		}
	}
	if prevterm != len(raw) {
		rawterms = append(rawterms, raw[prevterm:])
	}

	nl := NodeIDExpr{}
	for _, rawterm := range rawterms {
		var segs []nodeIDSegment
		for i := 0; i < len(rawterm); i++ {
			c := rawterm[i]
			switch {
			case isLetter(c) || isDigit(c):
				j := i
				for j < len(rawterm) && (isLetter(rawterm[j]) || isDigit(rawterm[j])) {
					j++
				}
				segs = append(segs, nodeIDSegment{literal: rawterm[i:j]})
				i = j - 1
			case c == '[':
				end := strings.Index(rawterm[i:], "]")
				if end == -1 {
					return nil, fmt.Errorf("node list: unclosed '['")
				}

				ranges, err := parseNodeIDRanges(rawterm[i+1 : i+end])
				if err != nil {
					return nil, err
				}
				segs = append(segs, nodeIDSegment{ranges: ranges})
				i += end
			default:
				return nil, fmt.Errorf("node list: invalid character: %#v", rune(c))
			}
		}
		nl = append(nl, segs)
	}

	return nl, nil
}

func parseNodeIDRanges(raw string) ([]nodeIDRange, error) {
	var ranges []nodeIDRange
	for _, part := range strings.Split(raw, ",") {
		minus := strings.Index(part, "-")
		if minus == -1 {
			return nil, fmt.Errorf("node list: no '-' found inside '[...]'")
		}

		s1, s2 := part[0:minus], part[minus+1:]
		if len(s1) != len(s2) || len(s1) == 0 {
			return nil, fmt.Errorf("node list: %#v and %#v are not of equal length or of length zero", s1, s2)
		}

		x1, err := strconv.ParseInt(s1, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("node list: %w", err)
		}
		x2, err := strconv.ParseInt(s2, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("node list: %w", err)
		}

		ranges = append(ranges, nodeIDRange{start: x1, end: x2, digits: len(s1)})
	}
	return ranges, nil
}
