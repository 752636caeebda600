// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry provides one concrete implementation of
// pkg/sptag.Registry: a small, fixed-size in-memory tag table with
// change-flag tracking, suitable for an embedded node with a bounded
// number of data points. It is not the only legal implementation —
// spec.md §6 leaves the concrete tag store external to the core — but
// it is the one pkg/spnode's tests and cmd/cc-sparkplug-node's default
// wiring use.
//
// Each tag is optionally bound to a ReadFunc, the callback that
// produces its live value (typically backed by a hardware I/O point).
// Tags with no ReadFunc — the node control tags bdSeq, Node
// Control/Rebirth and Node Control/Scan Rate — are updated only through
// Write and are left untouched by ReadAll/ReadOne.
//
// Registry is safe for concurrent use; spec.md §5 only requires that a
// concrete registry not be mutated *during* a Tick or ProcessNCMD call
// from the same node, which a mutex trivially provides.
package registry

import (
	"fmt"
	"sync"

	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptag"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spvalue"
)

type entry struct {
	tag  *sptag.Tag
	read sptag.ReadFunc
}

// Registry is an in-memory, mutex-guarded tag table.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry
	byAlias map[int32]*entry
	nowFunc func() uint64
}

// New returns an empty Registry. Callers must call SetTimestampFunc
// before the first ReadAll; until then ReadAll stamps values with 0.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]*entry),
		byAlias: make(map[int32]*entry),
		nowFunc: func() uint64 { return 0 },
	}
}

// Add registers a new tag. read may be nil for tags with no external
// source (control tags updated only through Write). It returns the
// stored *sptag.Tag so the caller can retain a direct reference (the
// node does this for bdSeq, Rebirth and Scan Rate).
//
// Add fails if name or alias collides with an existing tag — spec.md §3
// requires both to be unique across the registry.
func (r *Registry) Add(tag sptag.Tag, read sptag.ReadFunc) (*sptag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[tag.Name]; exists {
		return nil, fmt.Errorf("registry: tag name %q already registered", tag.Name)
	}
	if _, exists := r.byAlias[tag.Alias]; exists {
		return nil, fmt.Errorf("registry: tag alias %d already registered", tag.Alias)
	}

	stored := tag
	e := &entry{tag: &stored, read: read}
	r.entries = append(r.entries, e)
	r.byName[stored.Name] = e
	r.byAlias[stored.Alias] = e
	return e.tag, nil
}

func (r *Registry) GetByName(name string) (*sptag.Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.tag, true
}

func (r *Registry) GetByAlias(alias int32) (*sptag.Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byAlias[alias]
	if !ok {
		return nil, false
	}
	return e.tag, true
}

func (r *Registry) GetByIndex(i int) (*sptag.Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.entries) {
		return nil, false
	}
	return r.entries[i].tag, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ReadAll refreshes every sourced tag and reports whether any of them
// changed. A read error from any tag aborts the scan and is returned to
// the caller, who per spec.md §4.5 must report SCAN_FAILED.
func (r *Registry) ReadAll() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.nowFunc()
	anyChanged := false
	for _, e := range r.entries {
		changed, err := r.readLocked(e, ts)
		if err != nil {
			return false, fmt.Errorf("registry: reading tag %q: %w", e.tag.Name, err)
		}
		anyChanged = anyChanged || changed
	}
	return anyChanged, nil
}

// ReadOne refreshes a single tag. Unlike ReadAll, the caller supplies
// the timestamp directly (spec.md §6's read_one signature).
func (r *Registry) ReadOne(tag *sptag.Tag, timestamp uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byName[tag.Name]
	if !ok {
		return fmt.Errorf("registry: tag %q is not registered", tag.Name)
	}
	_, err := r.readLocked(e, timestamp)
	return err
}

func (r *Registry) readLocked(e *entry, ts uint64) (changed bool, err error) {
	if e.read == nil {
		return false, nil
	}
	newVal, err := e.read()
	if err != nil {
		return false, err
	}
	newVal.Timestamp = ts
	if !spvalue.SamePayload(e.tag.CurrentValue, newVal) {
		e.tag.ValueChanged = true
		changed = true
	}
	e.tag.CurrentValue = newVal
	return changed, nil
}

// Write applies an inbound value, consulting ValidateWrite if present.
// A rejected write returns false without error (spec.md §7).
func (r *Registry) Write(tag *sptag.Tag, value spvalue.BasicValue) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tag.ValidateWrite != nil && !tag.ValidateWrite(value) {
		return false
	}
	tag.CurrentValue = value
	tag.ValueChanged = true
	return true
}

// ClearChanged clears a tag's change flag. The codec calls this after
// committing the tag to a birth or data payload.
func (r *Registry) ClearChanged(tag *sptag.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag.ValueChanged = false
}

// SetTimestampFunc installs the wall-clock source ReadAll stamps new
// values with.
func (r *Registry) SetTimestampFunc(fn func() uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFunc = fn
}

var (
	_ sptag.Registry = (*Registry)(nil)
	_ sptag.Adder    = (*Registry)(nil)
)
