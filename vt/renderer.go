// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/renderer.go
// Summary: Observer interfaces at the rendering and lifecycle
// boundary. The host provides colours and fonts; the core provides
// viewport positions and raw cell bytes.

package vt

// Renderer is the abstract sink for draw calls. The terminal batches
// consecutive cells of equal style into a single DrawRun.
type Renderer interface {
	// BeginFrame opens a frame. internal is false for exposure
	// redraws requested by the host itself. Returning false skips
	// the frame.
	BeginFrame(internal bool) bool

	// DrawRun paints count cells of one style starting at pos;
	// utf8Bytes is the concatenated cell content.
	DrawRun(pos Pos, count int, style Style, utf8Bytes []byte)

	// DrawCursor paints the cursor glyph.
	DrawCursor(pos Pos, style Style, utf8Bytes []byte, wrapNext, focused bool)

	// DrawSelection overlays the selected area. topless/bottomless
	// mark endpoints beyond the viewport.
	DrawSelection(begin, end Pos, topless, bottomless bool)

	// DrawScrollbar reports total rows, rows above the viewport and
	// the viewport height.
	DrawScrollbar(total, offset, visible int)

	// EndFrame closes the frame with the accumulated damage rect.
	EndFrame(damage Region, scrollbarDirty bool)
}

// TerminalObserver receives lifecycle events that are not drawing.
type TerminalObserver interface {
	TerminalBell()
	TerminalSetTitle(title string)
	TerminalResetTitle()
	// TerminalResizeBuffer asks the host to resize the window; the
	// host calls Terminal.Resize in response (DECCOLM).
	TerminalResizeBuffer(rows, cols int)
	TerminalCopy(text string, clipboard bool)
	TerminalPaste(clipboard bool)
	TerminalChildExited(status int)
}
