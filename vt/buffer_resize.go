// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/buffer_resize.go
// Summary: Reflowing and clipping resize.
// Notes: Reflow funnels every active paragraph through the deduper,
// rebuilds the historical row index at the new width, then pulls the
// most recent paragraphs back into the active region. The paragraph
// store itself is never invalidated.

package vt

// ResizeReflow changes the geometry while preserving content, merging
// paragraphs across the active/history boundary and re-wrapping the
// whole history at the new width.
func (b *Buffer) ResizeReflow(newRows, newCols int) {
	if newRows <= 0 || newCols <= 0 {
		return
	}
	b.ClearSelection()
	b.EndSearch()

	// Finalise the active region into the tag sequence, as if it all
	// scrolled out. Trailing blank rows are not part of any paragraph.
	lastUsed := -1
	for r := len(b.active) - 1; r >= 0; r-- {
		a := &b.active[r]
		if a.Wrap > 0 || a.Cont || !a.isBlank() {
			lastUsed = r
			break
		}
	}

	cursorRow := b.cursor.Pos.Row
	cursorCol := b.cursor.Pos.Col
	cursorBelow := 0
	if cursorRow > lastUsed {
		cursorBelow = cursorRow - lastUsed
		cursorRow = lastUsed
	}

	cursorParaOrd := -1
	cursorOffset := 0
	cur := append([]Cell(nil), b.pending...)
	b.pending = b.pending[:0]
	for r := 0; r <= lastUsed; r++ {
		a := &b.active[r]
		if r == cursorRow {
			cursorParaOrd = len(b.tags)
			cursorOffset = len(cur) + cursorCol
		}
		cur = append(cur, a.Cells[:a.Wrap]...)
		if !a.Cont {
			b.tags = append(b.tags, b.deduper.Store(cur))
			cur = cur[:0]
		}
	}
	if lastUsed >= 0 && b.active[lastUsed].Cont {
		// The bottom paragraph claimed to continue but nothing
		// followed; commit what we have.
		b.tags = append(b.tags, b.deduper.Store(cur))
	}

	b.cols = newCols

	// Decide how many of the trailing rows return to the active
	// region; whole paragraphs move, the earliest may split.
	cursorBelow = clampInt(cursorBelow, 0, newRows-1)
	avail := newRows - cursorBelow
	take := 0
	firstBack := len(b.tags)
	for j := len(b.tags) - 1; j >= 0 && take < avail; j-- {
		take += segsForPara(len(b.deduper.Lookup(b.tags[j])), newCols)
		firstBack = j
	}
	excess := max(0, take-avail)

	var tail []Cell
	activeFrom := firstBack
	if excess > 0 {
		para := b.deduper.Lookup(b.tags[firstBack])
		head := append([]Cell(nil), para[:excess*newCols]...)
		tail = append([]Cell(nil), para[excess*newCols:]...)
		old := b.tags[firstBack]
		b.tags[firstBack] = b.deduper.Store(head)
		b.deduper.Release(old)
		activeFrom = firstBack + 1
	}

	// Rebuild the historical row index for what stays behind.
	moved := append([]Tag(nil), b.tags[activeFrom:]...)
	b.tags = b.tags[:activeFrom]
	b.history = b.history[:0]
	b.rebuildHistory()

	// Repopulate the active region bottom-up from the moved content.
	b.active = make([]ALine, newRows)
	for i := range b.active {
		b.active[i] = newALine(newCols, DefaultStyle())
	}
	rowIdx := 0
	paraStart := make(map[int]int, len(moved)+1)
	appendPara := func(ord int, cells []Cell) {
		paraStart[ord] = rowIdx
		segs := segsForPara(len(cells), newCols)
		for s := 0; s != segs && rowIdx < newRows; s++ {
			begin := s * newCols
			end := min(begin+newCols, len(cells))
			line := &b.active[rowIdx]
			copy(line.Cells, cells[begin:end])
			line.Wrap = end - begin
			line.Cont = end < len(cells)
			rowIdx++
		}
	}
	if excess > 0 {
		appendPara(firstBack, tail)
	}
	for i, tag := range moved {
		cells := append([]Cell(nil), b.deduper.Lookup(tag)...)
		appendPara(activeFrom+i, cells)
		b.deduper.Release(tag)
	}

	// Restore the cursor near the content it was on.
	pos := Pos{}
	switch {
	case cursorBelow > 0 || cursorParaOrd < 0:
		pos.Row = rowIdx - 1 + cursorBelow
		pos.Col = cursorCol
	case cursorParaOrd >= firstBack:
		off := cursorOffset
		if excess > 0 && cursorParaOrd == firstBack {
			off -= excess * newCols
		}
		if off < 0 {
			off = 0
		}
		start := paraStart[cursorParaOrd]
		pos.Row = start + off/newCols
		pos.Col = off % newCols
	default:
		// The cursor's paragraph stayed in history entirely.
		pos = Pos{}
	}
	b.cursor.Pos.Row = clampInt(pos.Row, 0, newRows-1)
	b.cursor.Pos.Col = clampInt(pos.Col, 0, newCols-1)
	b.cursor.WrapNext = false
	b.savedCursor.Pos.Row = clampInt(b.savedCursor.Pos.Row, 0, newRows-1)
	b.savedCursor.Pos.Col = clampInt(b.savedCursor.Pos.Col, 0, newCols-1)

	b.finishResize(newRows, newCols)
	b.enforceHistoryLimit()
}

// ResizeClip changes the geometry without reflow: active rows are
// truncated or padded with blanks. Paragraph content is untouched;
// only the derived historical row index is re-cut at the new width.
func (b *Buffer) ResizeClip(newRows, newCols int) {
	if newRows <= 0 || newCols <= 0 {
		return
	}
	b.ClearSelection()
	b.EndSearch()

	for i := range b.active {
		b.active[i].resize(newCols)
	}
	if newRows < len(b.active) {
		if b.cursor.Pos.Row >= newRows {
			drop := b.cursor.Pos.Row - newRows + 1
			b.active = b.active[drop:]
			b.cursor.Pos.Row -= drop
			b.savedCursor.Pos.Row -= drop
		}
		b.active = b.active[:newRows]
	}
	for len(b.active) < newRows {
		b.active = append(b.active, newALine(newCols, DefaultStyle()))
	}

	b.cols = newCols
	b.history = b.history[:0]
	b.rebuildHistory()

	b.cursor.Pos.Row = clampInt(b.cursor.Pos.Row, 0, newRows-1)
	b.cursor.Pos.Col = clampInt(b.cursor.Pos.Col, 0, newCols-1)
	b.cursor.WrapNext = false
	b.savedCursor.Pos.Row = clampInt(b.savedCursor.Pos.Row, 0, newRows-1)
	b.savedCursor.Pos.Col = clampInt(b.savedCursor.Pos.Col, 0, newCols-1)

	b.finishResize(newRows, newCols)
	b.enforceHistoryLimit()
}

// rebuildHistory re-derives the HLine index from the tag sequence at
// the current width.
func (b *Buffer) rebuildHistory() {
	for i, tag := range b.tags {
		segs := segsForPara(len(b.deduper.Lookup(tag)), b.cols)
		index := uint32(i) + b.lostTags
		for s := 0; s != segs; s++ {
			b.history = append(b.history, HLine{Index: index, Seqnum: uint32(s)})
		}
	}
}

func (b *Buffer) finishResize(newRows, newCols int) {
	b.marginBegin = 0
	b.marginEnd = newRows
	b.tabs = make([]bool, newCols)
	b.ResetTabs()
	b.damage = make([]Damage, newRows)
	b.scrollOffset = min(b.scrollOffset, len(b.history))
	b.damageViewport(true)
}
