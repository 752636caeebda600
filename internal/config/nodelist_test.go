// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import "testing"

func TestParseNodeIDExprExpandsLiteralsAndRanges(t *testing.T) {
	nl, err := ParseNodeIDExpr("hallo,wel123t,emmy[01-03]")
	if err != nil {
		t.Fatal(err)
	}

	names, err := nl.Expand()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"hallo", "wel123t", "emmy01", "emmy02", "emmy03"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseNodeIDExprExpandsMultipleRangesInOneBracket(t *testing.T) {
	nl, err := ParseNodeIDExpr("edge[005-007,010-010]")
	if err != nil {
		t.Fatal(err)
	}

	names, err := nl.Expand()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"edge005", "edge006", "edge007", "edge010"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseNodeIDExprRejectsUnclosedBracket(t *testing.T) {
	if _, err := ParseNodeIDExpr("edge[01-12"); err == nil {
		t.Error("ParseNodeIDExpr should reject an unclosed '['")
	}
}

func TestParseNodeIDExprRejectsMismatchedRangeWidth(t *testing.T) {
	if _, err := ParseNodeIDExpr("edge[1-001]"); err == nil {
		t.Error("ParseNodeIDExpr should reject range operands of unequal digit width")
	}
}

func TestParseNodeIDExprRejectsInvalidCharacter(t *testing.T) {
	if _, err := ParseNodeIDExpr("edge!01"); err == nil {
		t.Error("ParseNodeIDExpr should reject a character outside letters/digits/brackets/commas")
	}
}
