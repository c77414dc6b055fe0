// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/deduper.go
// Summary: Content-addressed, reference-counted paragraph store.
// Usage: Shared by the primary and alternate buffers of one terminal.
// All operations are issued from the terminal's single execution
// context; the store itself takes no locks.

package vt

import "hash/fnv"

// Tag is a stable handle for a stored paragraph. Equal paragraphs
// share one tag.
type Tag uint32

const invalidTag Tag = 0

type paragraph struct {
	cells    []Cell
	hash     uint64
	refCount uint32
}

// Deduper maps paragraph content to tags. Paragraphs are stored once
// and reference counted, which keeps large scroll-backs cheap and lets
// them survive resizes.
type Deduper struct {
	entries map[Tag]*paragraph
	byHash  map[uint64][]Tag
	nextTag Tag
}

// NewDeduper returns an empty store.
func NewDeduper() *Deduper {
	return &Deduper{
		entries: make(map[Tag]*paragraph),
		byHash:  make(map[uint64][]Tag),
		nextTag: 1,
	}
}

// Store registers a paragraph and returns its tag. On a content match
// the existing tag's refcount is incremented; otherwise the cells are
// copied in under a fresh tag. Hash collisions are resolved by full
// content comparison.
func (d *Deduper) Store(cells []Cell) Tag {
	h := hashCells(cells)
	for _, tag := range d.byHash[h] {
		p := d.entries[tag]
		if cellsEqual(p.cells, cells) {
			p.refCount++
			return tag
		}
	}

	tag := d.nextTag
	d.nextTag++
	copied := make([]Cell, len(cells))
	copy(copied, cells)
	d.entries[tag] = &paragraph{cells: copied, hash: h, refCount: 1}
	d.byHash[h] = append(d.byHash[h], tag)
	return tag
}

// Lookup returns a read-only view of the stored paragraph. The slice
// must not be mutated.
func (d *Deduper) Lookup(tag Tag) []Cell {
	p := d.entries[tag]
	if p == nil {
		return nil
	}
	return p.cells
}

// Release decrements the tag's refcount, removing the entry at zero.
func (d *Deduper) Release(tag Tag) {
	p := d.entries[tag]
	if p == nil {
		return
	}
	p.refCount--
	if p.refCount != 0 {
		return
	}
	delete(d.entries, tag)
	tags := d.byHash[p.hash]
	for i, t := range tags {
		if t == tag {
			d.byHash[p.hash] = append(tags[:i], tags[i+1:]...)
			break
		}
	}
	if len(d.byHash[p.hash]) == 0 {
		delete(d.byHash, p.hash)
	}
}

// Count returns the number of distinct stored paragraphs.
func (d *Deduper) Count() int { return len(d.entries) }

// RefCount returns the live reference count for a tag, zero if absent.
func (d *Deduper) RefCount(tag Tag) int {
	p := d.entries[tag]
	if p == nil {
		return 0
	}
	return int(p.refCount)
}

func hashCells(cells []Cell) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, c := range cells {
		buf[0] = c.Seq.Length
		copy(buf[1:5], c.Seq.Bytes[:])
		buf[5] = byte(c.Style.Attrs)
		h.Write(buf[:6])
		buf[0] = byte(c.Style.FG.Mode)
		buf[1] = c.Style.FG.Index
		buf[2] = c.Style.FG.R
		buf[3] = c.Style.FG.G
		buf[4] = c.Style.FG.B
		buf[5] = byte(c.Style.BG.Mode)
		buf[6] = c.Style.BG.Index
		buf[7] = c.Style.BG.R
		h.Write(buf[:8])
		h.Write([]byte{c.Style.BG.G, c.Style.BG.B})
	}
	return h.Sum64()
}

func cellsEqual(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
