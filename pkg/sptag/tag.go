// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sptag defines the tag registry contract that the payload
// codec and node state machine consume: lookup by name/alias/index,
// iteration, change detection, and inbound-write validation. The
// concrete storage backing this contract is external to the package
// (see internal/registry for one implementation); sptag only fixes the
// shape callers may rely on.
package sptag

import "github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"

// ValidateWriteFunc is consulted before an inbound NCMD write is
// applied. Returning false silently drops the write; spec.md §7 treats
// this as a deliberate policy, not an error.
type ValidateWriteFunc func(spvalue.BasicValue) bool

// ReadFunc produces a tag's live value from its external source (a
// hardware I/O point, a sensor driver). It returns an error if the
// read failed.
type ReadFunc func() (spvalue.BasicValue, error)

// Adder is implemented by registries that support tag registration.
// It is orthogonal to Registry: registration happens once at node
// construction, while Registry is the contract the tick state machine
// and payload codec depend on at runtime.
type Adder interface {
	Add(tag Tag, read ReadFunc) (*Tag, error)
}

// Tag mirrors FunctionalBasicTag (spec.md §3): a named, aliased,
// typed value with change tracking and a remote-write gate.
//
// HiddenFromData reports whether the tag's alias falls in the reserved
// range that suppresses it from non-birth payloads entirely
// (spec.md §4.2 rule 1): alias < -999. It is derived from Alias, not
// stored separately, so a Tag's own invariants stay in one place.
type Tag struct {
	Name           string
	Alias          int32
	Datatype       spvalue.Datatype
	CurrentValue   spvalue.BasicValue
	ValueChanged   bool
	RemoteWritable bool
	ValidateWrite  ValidateWriteFunc
}

// HasAlias reports whether the tag carries an alias the codec should
// ever emit. Negative aliases are reserved for internal/system tags
// and are never placed on the wire as an alias field (spec.md §3).
func (t Tag) HasAlias() bool {
	return t.Alias >= 0
}

// HiddenFromData reports whether t must never appear in a non-birth
// payload regardless of its change flag (spec.md §3, §4.2).
func (t Tag) HiddenFromData() bool {
	return t.Alias < -999
}

// Registry is the contract the codec and node state machine depend on
// (spec.md §6). Implementations are not required to be safe for
// concurrent use; §5 places that burden on the caller.
type Registry interface {
	// GetByName returns the tag with the given name, or false if none exists.
	GetByName(name string) (*Tag, bool)
	// GetByAlias returns the tag with the given alias, or false if none exists.
	GetByAlias(alias int32) (*Tag, bool)
	// GetByIndex returns the tag at position i in a stable iteration
	// order, or false if i is out of range.
	GetByIndex(i int) (*Tag, bool)
	// Count returns the number of tags in the registry.
	Count() int
	// ReadAll refreshes every tag's CurrentValue and ValueChanged flag
	// from its underlying source, returning true if any tag changed.
	ReadAll() (anyChanged bool, err error)
	// ReadOne refreshes a single tag's CurrentValue and ValueChanged at
	// the given timestamp.
	ReadOne(tag *Tag, timestamp uint64) error
	// Write applies an inbound value to tag, consulting ValidateWrite
	// if present. It returns false if the write was rejected; rejection
	// is not an error (spec.md §7).
	Write(tag *Tag, value spvalue.BasicValue) bool
	// ClearChanged clears a tag's ValueChanged flag after the codec has
	// committed it to a birth or data payload (spec.md §3, §5).
	ClearChanged(tag *Tag)
	// SetTimestampFunc installs the wall-clock source ReadAll stamps
	// new values with; ReadOne takes its timestamp from the caller.
	SetTimestampFunc(func() uint64)
}
