// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelvt/renderer.go
// Summary: tcell implementation of the core's Renderer interface.

package texelvt

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelvt/vt"
)

// TcellRenderer paints core draw calls onto a tcell screen.
type TcellRenderer struct {
	screen  tcell.Screen
	palette [258]tcell.Color
}

// NewTcellRenderer wraps an initialised screen.
func NewTcellRenderer(screen tcell.Screen) *TcellRenderer {
	return &TcellRenderer{
		screen:  screen,
		palette: newDefaultPalette(),
	}
}

func (r *TcellRenderer) mapColor(c vt.Color, slot int) tcell.Color {
	switch c.Mode {
	case vt.ColorModeIndexed:
		return r.palette[c.Index]
	case vt.ColorModeRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return r.palette[slot]
	}
}

func (r *TcellRenderer) mapStyle(style vt.Style) tcell.Style {
	fg := r.mapColor(style.FG, paletteDefaultFG)
	bg := r.mapColor(style.BG, paletteDefaultBG)
	if style.Attrs.Has(vt.AttrBold) && style.FG.Mode == vt.ColorModeIndexed &&
		style.FG.Index < 8 {
		// Classic bold brightening for the system colors.
		fg = r.palette[style.FG.Index+8]
	}
	st := tcell.StyleDefault.Foreground(fg).Background(bg)
	st = st.Bold(style.Attrs.Has(vt.AttrBold))
	st = st.Dim(style.Attrs.Has(vt.AttrFaint))
	st = st.Italic(style.Attrs.Has(vt.AttrItalic))
	st = st.Underline(style.Attrs.Has(vt.AttrUnderline))
	st = st.Blink(style.Attrs.Has(vt.AttrBlink))
	st = st.Reverse(style.Attrs.Has(vt.AttrInverse))
	if style.Attrs.Has(vt.AttrConceal) {
		fg = bg
		st = st.Foreground(fg)
	}
	return st
}

// BeginFrame always accepts the frame.
func (r *TcellRenderer) BeginFrame(internal bool) bool { return true }

// DrawRun paints one same-style run, one cell per rune.
func (r *TcellRenderer) DrawRun(pos vt.Pos, count int, style vt.Style, utf8Bytes []byte) {
	st := r.mapStyle(style)
	col := pos.Col
	for _, ru := range string(utf8Bytes) {
		if col >= pos.Col+count {
			break
		}
		r.screen.SetContent(col, pos.Row, ru, nil, st)
		col++
	}
}

// DrawCursor paints the cursor as a reversed cell when focused and as
// an underlined cell otherwise.
func (r *TcellRenderer) DrawCursor(pos vt.Pos, style vt.Style, utf8Bytes []byte, wrapNext, focused bool) {
	st := r.mapStyle(style)
	if focused {
		st = st.Reverse(true)
	} else {
		st = st.Underline(true)
	}
	ru := ' '
	for _, first := range string(utf8Bytes) {
		ru = first
		break
	}
	r.screen.SetContent(pos.Col, pos.Row, ru, nil, st)
}

// DrawSelection overlays reverse video on the selected area.
func (r *TcellRenderer) DrawSelection(begin, end vt.Pos, topless, bottomless bool) {
	width, _ := r.screen.Size()
	for row := begin.Row; row <= end.Row; row++ {
		colBegin := 0
		colEnd := width
		if row == begin.Row && !topless {
			colBegin = begin.Col
		}
		if row == end.Row && !bottomless {
			colEnd = end.Col
		}
		for col := colBegin; col < colEnd; col++ {
			ru, comb, st, _ := r.screen.GetContent(col, row)
			r.screen.SetContent(col, row, ru, comb, st.Reverse(true))
		}
	}
}

// DrawScrollbar paints a thumb in the rightmost column.
func (r *TcellRenderer) DrawScrollbar(total, offset, visible int) {
	width, height := r.screen.Size()
	if total <= visible || width == 0 {
		return
	}
	col := width - 1
	thumbLen := max(1, visible*height/total)
	thumbTop := offset * height / total
	st := tcell.StyleDefault.Reverse(true)
	for row := 0; row < height; row++ {
		if row >= thumbTop && row < thumbTop+thumbLen {
			r.screen.SetContent(col, row, ' ', nil, st)
		}
	}
}

// EndFrame pushes the frame to the terminal.
func (r *TcellRenderer) EndFrame(damage vt.Region, scrollbarDirty bool) {
	r.screen.Show()
}
