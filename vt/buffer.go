// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/buffer.go
// Summary: The grid model: a mutable active region plus a historical
// region stored as deduplicated paragraphs with a derived row index.
// Notes: The history row table is a cache rebuilt from the tag
// sequence; it is never mutated in place across a resize.

package vt

import "math"

// HistoryUnlimited disables the history bound.
const HistoryUnlimited = math.MaxInt

// Cursor is the state associated with a VT cursor.
type Cursor struct {
	Pos      Pos
	Style    Style
	WrapNext bool    // the next printable character wraps first
	CharSet  CharSet // which of G0/G1 is active
}

// Buffer owns the active grid, the scroll-back history, per-row
// damage, tab stops, margins, cursor, selection and search state.
type Buffer struct {
	deduper *Deduper

	tags     []Tag   // the paragraph history
	lostTags uint32  // incremented for each front tag dropped
	pending  []Cell  // paragraph in flight from active to history
	history  []HLine // historical paragraph segments, indexable
	active   []ALine // the on-screen rows

	damage    []Damage
	tabs      []bool
	barDamage bool

	scrollOffset int // 0 means the viewport is at the live bottom
	historyLimit int

	cols        int
	marginBegin int
	marginEnd   int

	cursor      Cursor
	savedCursor Cursor
	charSubs    [2]CharSub

	selection selection
	search    *search
}

// NewBuffer creates a buffer of rows x cols. A historyLimit of zero
// disables scroll-back; HistoryUnlimited removes the bound.
func NewBuffer(deduper *Deduper, rows, cols, historyLimit int) *Buffer {
	if rows <= 0 || cols <= 0 {
		panic("vt: non-positive buffer geometry")
	}
	b := &Buffer{
		deduper:      deduper,
		historyLimit: historyLimit,
		cols:         cols,
		marginEnd:    rows,
		charSubs:     [2]CharSub{CharSubUS, CharSubUS},
	}
	b.active = make([]ALine, rows)
	for i := range b.active {
		b.active[i] = newALine(cols, DefaultStyle())
	}
	b.damage = make([]Damage, rows)
	b.tabs = make([]bool, cols)
	b.ResetTabs()
	return b
}

// Rows returns the height of the active region.
func (b *Buffer) Rows() int { return len(b.active) }

// Cols returns the width of the buffer.
func (b *Buffer) Cols() int { return b.cols }

// HistoryRows returns how many wrapped lines the scroll-back holds.
func (b *Buffer) HistoryRows() int { return len(b.history) }

// TotalRows returns the historical plus active line count.
func (b *Buffer) TotalRows() int { return len(b.history) + len(b.active) }

// ScrollOffset reports how far the viewport is above the live bottom.
func (b *Buffer) ScrollOffset() int { return b.scrollOffset }

// BarDamage reports whether the scrollbar needs redrawing.
func (b *Buffer) BarDamage() bool { return b.barDamage }

// CursorPos returns the cursor position in active coordinates.
func (b *Buffer) CursorPos() Pos { return b.cursor.Pos }

// WrapNext reports whether the next printable character wraps first.
func (b *Buffer) WrapNext() bool { return b.cursor.WrapNext }

// Style returns the current pen.
func (b *Buffer) Style() Style { return b.cursor.Style }

// MarginBegin returns the first margin row, inclusive.
func (b *Buffer) MarginBegin() int { return b.marginBegin }

// MarginEnd returns the last margin row, exclusive.
func (b *Buffer) MarginEnd() int { return b.marginEnd }

func (b *Buffer) tagAt(index uint32) Tag {
	return b.tags[index-b.lostTags]
}

// paraForHLine fetches the stored paragraph an HLine points into.
func (b *Buffer) paraForHLine(h HLine) []Cell {
	return b.deduper.Lookup(b.tagAt(h.Index))
}

// Line returns the content of a viewport row, harmonising access
// across the history/active boundary. The returned cells may be
// shorter than cols; missing cells are blank.
func (b *Buffer) Line(r int) (cells []Cell, cont bool, wrap int) {
	abs := len(b.history) - b.scrollOffset + r
	if abs < len(b.history) {
		h := b.history[abs]
		para := b.paraForHLine(h)
		begin := int(h.Seqnum) * b.cols
		end := min(begin+b.cols, len(para))
		if begin > end {
			begin = end
		}
		return para[begin:end], end < len(para), end - begin
	}
	a := &b.active[abs-len(b.history)]
	return a.Cells, a.Cont, a.Wrap
}

// Cell returns the cell at a viewport position, blank if it lies in
// the padding of a short historical row.
func (b *Buffer) Cell(pos Pos) Cell {
	cells, _, _ := b.Line(pos.Row)
	if pos.Col < len(cells) {
		return cells[pos.Col]
	}
	return BlankCell(DefaultStyle())
}

// cellAt resolves an absolute position.
func (b *Buffer) cellAt(pos APos) Cell {
	if pos.Row >= 0 {
		cells := b.active[pos.Row].Cells
		if pos.Col < len(cells) {
			return cells[pos.Col]
		}
		return BlankCell(DefaultStyle())
	}
	h := b.history[len(b.history)+pos.Row]
	para := b.paraForHLine(h)
	i := int(h.Seqnum)*b.cols + pos.Col
	if i < len(para) {
		return para[i]
	}
	return BlankCell(DefaultStyle())
}

// lineAt resolves a whole absolute row, like Line but independent of
// the scroll offset.
func (b *Buffer) lineAt(row int) (cells []Cell, cont bool, wrap int) {
	if row >= 0 {
		a := &b.active[row]
		return a.Cells, a.Cont, a.Wrap
	}
	h := b.history[len(b.history)+row]
	para := b.paraForHLine(h)
	begin := int(h.Seqnum) * b.cols
	end := min(begin+b.cols, len(para))
	if begin > end {
		begin = end
	}
	return para[begin:end], end < len(para), end - begin
}

//
// Damage
//

// RowDamage returns the damaged column interval of a viewport row.
func (b *Buffer) RowDamage(r int) Damage { return b.damage[r] }

// ResetDamage is called once the renderer has consumed all damage.
func (b *Buffer) ResetDamage() {
	for i := range b.damage {
		b.damage[i].Reset()
	}
	b.barDamage = false
}

// DamageAll marks the entire viewport and the scrollbar stale.
func (b *Buffer) DamageAll() { b.damageViewport(true) }

func (b *Buffer) damageViewport(bar bool) {
	for i := range b.damage {
		b.damage[i].Add(0, b.cols)
	}
	if bar {
		b.barDamage = true
	}
}

// damageCell marks one active cell stale, if visible.
func (b *Buffer) damageCell(pos Pos) {
	r := pos.Row + b.scrollOffset
	if r < len(b.damage) {
		b.damage[r].Add(pos.Col, pos.Col+1)
	}
}

// damageColumns widens the cursor row's damage, if visible.
func (b *Buffer) damageColumns(begin, end int) {
	r := b.cursor.Pos.Row + b.scrollOffset
	if r < len(b.damage) {
		b.damage[r].Add(begin, end)
	}
}

// damageRows marks whole active rows [begin, end) stale.
func (b *Buffer) damageRows(begin, end int) {
	for r := begin; r != end; r++ {
		v := r + b.scrollOffset
		if v < len(b.damage) {
			b.damage[v].Add(0, b.cols)
		}
	}
}

//
// History scrolling
//

// ScrollUpHistory moves the viewport up to older content. It reports
// whether the offset moved.
func (b *Buffer) ScrollUpHistory(rows int) bool {
	offset := min(b.scrollOffset+rows, len(b.history))
	if offset == b.scrollOffset {
		return false
	}
	b.scrollOffset = offset
	b.damageViewport(true)
	return true
}

// ScrollDownHistory moves the viewport toward the live bottom.
func (b *Buffer) ScrollDownHistory(rows int) bool {
	offset := max(b.scrollOffset-rows, 0)
	if offset == b.scrollOffset {
		return false
	}
	b.scrollOffset = offset
	b.damageViewport(true)
	return true
}

// ScrollTopHistory jumps to the oldest row.
func (b *Buffer) ScrollTopHistory() bool {
	return b.ScrollUpHistory(len(b.history))
}

// ScrollBottomHistory jumps back to the live bottom.
func (b *Buffer) ScrollBottomHistory() bool {
	return b.ScrollDownHistory(b.scrollOffset)
}

// ClearHistory drops all scroll-back, releasing every tag.
func (b *Buffer) ClearHistory() {
	for _, tag := range b.tags {
		b.deduper.Release(tag)
	}
	b.lostTags += uint32(len(b.tags))
	b.tags = b.tags[:0]
	b.history = b.history[:0]
	b.pending = b.pending[:0]
	if b.scrollOffset != 0 {
		b.scrollOffset = 0
		b.damageViewport(true)
	}
	b.barDamage = true
}

//
// Scrolling a line off the top
//

func (b *Buffer) marginsSet() bool {
	return b.marginBegin != 0 || b.marginEnd != len(b.active)
}

// addLine makes room for a new row below a full margin area. Rows
// leaving the top of a full-screen margin area scroll into history;
// rows leaving a partial margin area are discarded.
func (b *Buffer) addLine() {
	if !b.marginsSet() && b.historyLimit > 0 {
		b.bump()
		b.shiftSelection()
		b.damageViewport(true)
		return
	}
	b.eraseLinesAt(b.marginBegin, 1)
}

// bump migrates the top active row toward history and appends a blank
// row at the bottom. When the row completes a paragraph, the paragraph
// is stored in the deduper and its wrapped segments are indexed.
func (b *Buffer) bump() {
	top := b.active[0]
	b.pending = append(b.pending, top.Cells[:top.Wrap]...)

	copy(b.active, b.active[1:])
	b.active[len(b.active)-1] = newALine(b.cols, DefaultStyle())

	if !top.Cont {
		b.commitPending()
		b.enforceHistoryLimit()
	}
}

// commitPending stores the in-flight paragraph and derives its HLines.
func (b *Buffer) commitPending() {
	tag := b.deduper.Store(b.pending)
	b.tags = append(b.tags, tag)
	index := uint32(len(b.tags)-1) + b.lostTags
	segs := segsForPara(len(b.pending), b.cols)
	for s := 0; s != segs; s++ {
		b.history = append(b.history, HLine{Index: index, Seqnum: uint32(s)})
	}
	b.pending = b.pending[:0]
}

// enforceHistoryLimit pops front rows past the limit, releasing tags
// whose last segment drops out.
func (b *Buffer) enforceHistoryLimit() {
	for len(b.history) > b.historyLimit {
		h := b.history[0]
		b.history = b.history[1:]
		if len(b.history) == 0 || b.history[0].Index != h.Index {
			b.deduper.Release(b.tagAt(h.Index))
			b.tags = b.tags[1:]
			b.lostTags++
		}
	}
	if b.scrollOffset > len(b.history) {
		b.scrollOffset = len(b.history)
		b.barDamage = true
	}
}

// shiftSelection keeps selection anchored to content as rows migrate
// from active into history.
func (b *Buffer) shiftSelection() {
	if !b.selection.present {
		return
	}
	b.selection.mark.Row--
	b.selection.delim.Row--
	if b.selection.mark.Row < -len(b.history) ||
		b.selection.delim.Row < -len(b.history) {
		b.ClearSelection()
	}
}
