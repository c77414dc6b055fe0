// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/buffer_snapshot.go
// Summary: Export/import of the committed scroll-back, for hosts that
// persist sessions between runs.

package vt

// HistoryParagraphs returns copies of the committed scroll-back
// paragraphs, oldest first. The in-flight pending paragraph is not
// included.
func (b *Buffer) HistoryParagraphs() [][]Cell {
	paras := make([][]Cell, 0, len(b.tags))
	for _, tag := range b.tags {
		paras = append(paras, append([]Cell(nil), b.deduper.Lookup(tag)...))
	}
	return paras
}

// RestoreHistory replaces the scroll-back with the given paragraphs,
// leaving the active region alone. Intended for session restore
// before any output has scrolled.
func (b *Buffer) RestoreHistory(paras [][]Cell) {
	b.ClearSelection()
	b.EndSearch()
	for _, tag := range b.tags {
		b.deduper.Release(tag)
	}
	b.lostTags += uint32(len(b.tags))
	b.tags = b.tags[:0]
	b.pending = b.pending[:0]
	b.history = b.history[:0]
	for _, para := range paras {
		b.tags = append(b.tags, b.deduper.Store(para))
	}
	b.rebuildHistory()
	b.enforceHistoryLimit()
	b.scrollOffset = 0
	b.damageViewport(true)
}
