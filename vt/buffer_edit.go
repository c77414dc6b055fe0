// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/buffer_edit.go
// Summary: Cell and line mutations, cursor movement, tabs, margins.

package vt

import "github.com/mattn/go-runewidth"

// blankStyle is the pen used for cleared cells: current colors, no
// attributes.
func (b *Buffer) blankStyle() Style {
	return Style{FG: b.cursor.Style.FG, BG: b.cursor.Style.BG}
}

// Write places one printable character at the cursor, honouring the
// deferred wrap, insert mode and the active charset.
func (b *Buffer) Write(seq Seq, autoWrap, insert bool) {
	if seq.Length == 1 {
		if rep, ok := b.charSubs[b.cursor.CharSet].Translate(seq.Bytes[0]); ok {
			seq = rep
		}
	}

	if b.cursor.WrapNext {
		b.cursor.WrapNext = false
		if autoWrap {
			line := &b.active[b.cursor.Pos.Row]
			line.Cont = true
			line.Wrap = b.cols
			b.cursor.Pos.Col = 0
			if b.cursor.Pos.Row == b.marginEnd-1 {
				b.addLine()
			} else if b.cursor.Pos.Row < len(b.active)-1 {
				b.cursor.Pos.Row++
			}
		}
	}

	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	line := &b.active[row]

	if insert {
		copy(line.Cells[col+1:], line.Cells[col:])
	}

	wide := seq.Length > 1 && runewidth.RuneWidth(decodeRune(seq)) == 2
	line.Cells[col] = Cell{Seq: seq, Style: b.cursor.Style, Wide: wide}
	width := 1
	if wide && col+1 < b.cols {
		line.Cells[col+1] = BlankCell(b.cursor.Style)
		width = 2
	}
	if line.Wrap < col+width {
		line.Wrap = col + width
	}
	if insert {
		b.mutated(row, col, b.cols)
		b.damageColumns(col, b.cols)
	} else {
		b.mutated(row, col, col+width)
		b.damageColumns(col, col+width)
	}

	if col+width >= b.cols {
		b.cursor.Pos.Col = b.cols - 1
		b.cursor.WrapNext = true
	} else {
		b.cursor.Pos.Col = col + width
	}
}

// Backspace moves the cursor left, reverse-wrapping across rows when
// auto-wrap is on.
func (b *Buffer) Backspace(autoWrap bool) {
	if b.cursor.WrapNext {
		b.cursor.WrapNext = false
		return
	}
	pos := b.cursor.Pos
	if pos.Col == 0 {
		if autoWrap && pos.Row > b.marginBegin {
			b.MoveCursor(pos.Up(1).AtCol(b.cols-1), false)
		}
	} else {
		b.MoveCursor(pos.Left(1), false)
	}
}

// ForwardIndex is a line feed; resetCol additionally returns to
// column 0 (NEL).
func (b *Buffer) ForwardIndex(resetCol bool) {
	pos := b.cursor.Pos
	if resetCol {
		pos.Col = 0
	}
	if pos.Row == b.marginEnd-1 {
		b.MoveCursor(pos, false)
		b.addLine()
	} else {
		b.MoveCursor(pos.Down(1), false)
	}
}

// ReverseIndex moves the cursor up, scrolling down inside the margins
// at the top.
func (b *Buffer) ReverseIndex() {
	if b.cursor.Pos.Row == b.marginBegin {
		b.ScrollDownMargins(1)
	} else {
		b.MoveCursor(b.cursor.Pos.Up(1), false)
	}
}

//
// Cursor
//

// MoveCursor clamps and sets the cursor. With originRelative the row
// is interpreted and clamped relative to the margin area.
func (b *Buffer) MoveCursor(pos Pos, originRelative bool) {
	if originRelative {
		pos.Row += b.marginBegin
		pos.Row = clampInt(pos.Row, b.marginBegin, b.marginEnd-1)
	} else {
		pos.Row = clampInt(pos.Row, 0, len(b.active)-1)
	}
	pos.Col = clampInt(pos.Col, 0, b.cols-1)
	b.cursor.Pos = pos
	b.cursor.WrapNext = false
}

// SaveCursor records cursor position, pen and charset.
func (b *Buffer) SaveCursor() { b.savedCursor = b.cursor }

// RestoreCursor reinstates the saved cursor, clamped to the grid.
func (b *Buffer) RestoreCursor() {
	b.cursor = b.savedCursor
	b.cursor.Pos.Row = clampInt(b.cursor.Pos.Row, 0, len(b.active)-1)
	b.cursor.Pos.Col = clampInt(b.cursor.Pos.Col, 0, b.cols-1)
}

// ResetCursor homes the cursor and resets the pen.
func (b *Buffer) ResetCursor() {
	b.cursor.Pos = Pos{}
	b.cursor.WrapNext = false
	b.ResetStyle()
}

// ResetStyle resets the pen to the default style.
func (b *Buffer) ResetStyle() { b.cursor.Style = DefaultStyle() }

// SetAttr turns a display attribute on.
func (b *Buffer) SetAttr(a Attr) { b.cursor.Style.Attrs.Set(a) }

// UnsetAttr turns a display attribute off.
func (b *Buffer) UnsetAttr(a Attr) { b.cursor.Style.Attrs.Unset(a) }

// SetFG sets the pen foreground.
func (b *Buffer) SetFG(c Color) { b.cursor.Style.FG = c }

// SetBG sets the pen background.
func (b *Buffer) SetBG(c Color) { b.cursor.Style.BG = c }

// UseCharSet selects which designation the cursor draws through.
func (b *Buffer) UseCharSet(cs CharSet) { b.cursor.CharSet = cs }

// SetCharSub binds a substitution table to a designation.
func (b *Buffer) SetCharSub(cs CharSet, sub CharSub) { b.charSubs[cs] = sub }

//
// Tabs
//

// SetTab sets a tab stop at the cursor column.
func (b *Buffer) SetTab() { b.tabs[b.cursor.Pos.Col] = true }

// UnsetTab clears the tab stop at the cursor column.
func (b *Buffer) UnsetTab() { b.tabs[b.cursor.Pos.Col] = false }

// ClearTabs removes every tab stop.
func (b *Buffer) ClearTabs() {
	for i := range b.tabs {
		b.tabs[i] = false
	}
}

// ResetTabs restores a stop at every 8th column.
func (b *Buffer) ResetTabs() {
	for i := range b.tabs {
		b.tabs[i] = i%8 == 0
	}
}

// TabForward advances the cursor count tab stops, stopping at the
// last column.
func (b *Buffer) TabForward(count int) {
	col := b.cursor.Pos.Col
	for count != 0 {
		col++
		if col == b.cols {
			col--
			break
		}
		if b.tabs[col] {
			count--
		}
	}
	b.MoveCursor(b.cursor.Pos.AtCol(col), false)
}

// TabBackward moves the cursor back count tab stops, stopping at
// column 0.
func (b *Buffer) TabBackward(count int) {
	col := b.cursor.Pos.Col
	for count != 0 {
		if col == 0 {
			break
		}
		col--
		if b.tabs[col] {
			count--
		}
	}
	b.MoveCursor(b.cursor.Pos.AtCol(col), false)
}

//
// Margins
//

// SetMargins bounds the vertical scroll area; invalid input resets it.
func (b *Buffer) SetMargins(begin, end int) {
	begin = clampInt(begin, 0, len(b.active)-1)
	end = clampInt(end, 0, len(b.active))
	if end > begin {
		b.marginBegin = begin
		b.marginEnd = end
	} else {
		b.ResetMargins()
	}
}

// ResetMargins opens the margins to the full screen.
func (b *Buffer) ResetMargins() {
	b.marginBegin = 0
	b.marginEnd = len(b.active)
}

//
// Cell mutations on the cursor row
//

// InsertCells shifts cells right at the cursor, dropping off the end.
func (b *Buffer) InsertCells(n int) {
	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	n = clampInt(n, 0, b.cols-col)
	line := &b.active[row]
	copy(line.Cells[col+n:], line.Cells[col:])
	blank := BlankCell(b.blankStyle())
	for i := col; i != col+n; i++ {
		line.Cells[i] = blank
	}
	line.Wrap = min(b.cols, line.Wrap+n)
	b.mutated(row, col, b.cols)
	b.damageColumns(col, b.cols)
}

// EraseCells deletes cells at the cursor, shifting the remainder left.
func (b *Buffer) EraseCells(n int) {
	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	n = clampInt(n, 0, b.cols-col)
	line := &b.active[row]
	copy(line.Cells[col:], line.Cells[col+n:])
	blank := BlankCell(b.blankStyle())
	for i := b.cols - n; i != b.cols; i++ {
		line.Cells[i] = blank
	}
	if line.Wrap > col {
		line.Wrap = max(col, line.Wrap-n)
	}
	b.mutated(row, col, b.cols)
	b.damageColumns(col, b.cols)
}

// BlankCells erases cells in place without shifting.
func (b *Buffer) BlankCells(n int) {
	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	n = clampInt(n, 0, b.cols-col)
	line := &b.active[row]
	blank := BlankCell(b.blankStyle())
	for i := col; i != col+n; i++ {
		line.Cells[i] = blank
	}
	b.mutated(row, col, col+n)
	b.damageColumns(col, col+n)
}

//
// Clearing
//

// ClearLine blanks the cursor row.
func (b *Buffer) ClearLine() {
	row := b.cursor.Pos.Row
	b.active[row].clear(b.blankStyle())
	b.mutated(row, 0, b.cols)
	b.damageColumns(0, b.cols)
}

// ClearLineLeft blanks the cursor row up to and including the cursor.
func (b *Buffer) ClearLineLeft() {
	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	line := &b.active[row]
	blank := BlankCell(b.blankStyle())
	for i := 0; i != col+1; i++ {
		line.Cells[i] = blank
	}
	b.mutated(row, 0, col+1)
	b.damageColumns(0, col+1)
}

// ClearLineRight blanks the cursor row from the cursor on, ending the
// paragraph there.
func (b *Buffer) ClearLineRight() {
	row, col := b.cursor.Pos.Row, b.cursor.Pos.Col
	line := &b.active[row]
	blank := BlankCell(b.blankStyle())
	for i := col; i != b.cols; i++ {
		line.Cells[i] = blank
	}
	line.Cont = false
	if line.Wrap > col {
		line.Wrap = col
	}
	b.mutated(row, col, b.cols)
	b.damageColumns(col, b.cols)
}

// ClearAbove blanks every row above the cursor.
func (b *Buffer) ClearAbove() {
	style := b.blankStyle()
	for r := 0; r != b.cursor.Pos.Row; r++ {
		b.active[r].clear(style)
	}
	b.damageRows(0, b.cursor.Pos.Row)
	b.clearSelectionIfActiveRows(0, b.cursor.Pos.Row)
}

// ClearBelow blanks every row below the cursor.
func (b *Buffer) ClearBelow() {
	style := b.blankStyle()
	for r := b.cursor.Pos.Row + 1; r < len(b.active); r++ {
		b.active[r].clear(style)
	}
	b.damageRows(b.cursor.Pos.Row+1, len(b.active))
	b.clearSelectionIfActiveRows(b.cursor.Pos.Row+1, len(b.active))
}

// Clear blanks the whole active region. History is deliberately not
// involved; screen apps are expected to use the alternate buffer.
func (b *Buffer) Clear() {
	style := b.blankStyle()
	for r := range b.active {
		b.active[r].clear(style)
	}
	b.damageRows(0, len(b.active))
	b.clearSelectionIfActiveRows(0, len(b.active))
}

//
// Line mutations
//

// InsertLines opens n blank rows at the cursor, pushing rows toward
// the bottom margin. A no-op outside the margin area.
func (b *Buffer) InsertLines(n int) {
	row := b.cursor.Pos.Row
	if row < b.marginBegin || row >= b.marginEnd {
		return
	}
	n = clampInt(n, 0, b.marginEnd-row)
	b.insertLinesAt(row, n)
	b.cursor.WrapNext = false
}

// EraseLines deletes n rows at the cursor, pulling rows up from the
// bottom margin. A no-op outside the margin area.
func (b *Buffer) EraseLines(n int) {
	row := b.cursor.Pos.Row
	if row < b.marginBegin || row >= b.marginEnd {
		return
	}
	n = clampInt(n, 0, b.marginEnd-row)
	b.eraseLinesAt(row, n)
	b.cursor.WrapNext = false
}

// ScrollUpMargins scrolls the margin area up. At full-screen margins
// the departing rows migrate into history.
func (b *Buffer) ScrollUpMargins(n int) {
	n = clampInt(n, 0, b.marginEnd-b.marginBegin)
	if !b.marginsSet() && b.historyLimit > 0 {
		for i := 0; i != n; i++ {
			b.bump()
			b.shiftSelection()
		}
		b.damageViewport(true)
		return
	}
	b.eraseLinesAt(b.marginBegin, n)
}

// ScrollDownMargins scrolls the margin area down, discarding rows at
// the bottom.
func (b *Buffer) ScrollDownMargins(n int) {
	n = clampInt(n, 0, b.marginEnd-b.marginBegin)
	b.insertLinesAt(b.marginBegin, n)
}

func (b *Buffer) insertLinesAt(row, n int) {
	if n == 0 {
		return
	}
	copy(b.active[row+n:b.marginEnd], b.active[row:b.marginEnd-n])
	for r := row; r != row+n; r++ {
		b.active[r] = newALine(b.cols, DefaultStyle())
	}
	if row > 0 {
		b.active[row-1].Cont = false
	}
	b.damageRows(row, b.marginEnd)
	b.clearSelectionIfActiveRows(row, b.marginEnd)
}

func (b *Buffer) eraseLinesAt(row, n int) {
	if n == 0 {
		return
	}
	copy(b.active[row:], b.active[row+n:b.marginEnd])
	for r := b.marginEnd - n; r != b.marginEnd; r++ {
		b.active[r] = newALine(b.cols, DefaultStyle())
	}
	if row > 0 {
		b.active[row-1].Cont = false
	}
	b.damageRows(row, b.marginEnd)
	b.clearSelectionIfActiveRows(row, b.marginEnd)
}

// AlignmentPattern fills the screen with 'E' (DECALN), resets the
// margins and homes the cursor.
func (b *Buffer) AlignmentPattern() {
	cell := Cell{Seq: ASCIISeq('E'), Style: DefaultStyle()}
	for r := range b.active {
		line := &b.active[r]
		for c := range line.Cells {
			line.Cells[c] = cell
		}
		line.Cont = false
		line.Wrap = b.cols
	}
	b.ClearSelection()
	b.ResetMargins()
	b.MoveCursor(Pos{}, false)
	b.damageRows(0, len(b.active))
}

// Reset restores the buffer to its initial on-screen state. History
// is kept.
func (b *Buffer) Reset() {
	b.ClearSelection()
	b.EndSearch()
	b.Clear()
	b.ResetMargins()
	b.ResetTabs()
	b.ResetCursor()
	b.savedCursor = Cursor{}
	b.charSubs = [2]CharSub{CharSubUS, CharSubUS}
	b.scrollOffset = 0
	b.damageViewport(true)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
