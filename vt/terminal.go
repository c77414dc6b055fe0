// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/terminal.go
// Summary: The terminal controller: interprets VT events, owns the
// primary and alternate buffers, modes and charsets, pumps the pty
// and drives the renderer.

package vt

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// Config carries the tunables of a terminal.
type Config struct {
	HistoryLimit     int
	ReadChunk        int
	FrameBudget      time.Duration
	ScrollOnOutput   bool
	ScrollOnKeyPress bool
}

func defaultConfig() Config {
	return Config{
		HistoryLimit:     10000,
		ReadChunk:        8192,
		FrameBudget:      20 * time.Millisecond,
		ScrollOnOutput:   false,
		ScrollOnKeyPress: true,
	}
}

// Option adjusts terminal construction.
type Option func(*Config)

// WithHistoryLimit bounds the scroll-back; HistoryUnlimited removes
// the bound.
func WithHistoryLimit(n int) Option { return func(c *Config) { c.HistoryLimit = n } }

// WithFrameBudget bounds how long one read pump may run before the
// renderer gets a chance.
func WithFrameBudget(d time.Duration) Option { return func(c *Config) { c.FrameBudget = d } }

// WithScrollOnOutput snaps the viewport to the bottom on child output.
func WithScrollOnOutput(on bool) Option { return func(c *Config) { c.ScrollOnOutput = on } }

// WithScrollOnKeyPress snaps the viewport to the bottom on input.
func WithScrollOnKeyPress(on bool) Option { return func(c *Config) { c.ScrollOnKeyPress = on } }

type damager int

const (
	damagerTTY damager = iota
	damagerExposure
	damagerScroll
)

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// ScrollDir is a wheel direction.
type ScrollDir int

const (
	ScrollUp ScrollDir = iota
	ScrollDown
)

// Modifiers is the keyboard modifier state accompanying host events.
type Modifiers struct {
	Shift   bool
	Alt     bool
	Control bool
}

// Terminal is the single-threaded controller. All methods must be
// called from one execution context; Read rejects re-entry, with
// Resize the one permitted re-entrant operation.
type Terminal struct {
	observer TerminalObserver
	renderer Renderer

	config  Config
	deduper *Deduper

	pri    *Buffer
	alt    *Buffer
	buffer *Buffer

	modes       ModeSet
	savedOrigin bool

	tty        Tty
	closed     bool
	dumpWrites bool
	writeBuf   []byte
	readBuf    []byte

	decoder Decoder
	machine *Machine

	dispatching bool
	focused     bool
	damage      Region

	pressed    bool
	button     MouseButton
	pointerPos Pos
}

// NewTerminal builds a terminal of rows x cols over the given tty.
func NewTerminal(observer TerminalObserver, renderer Renderer,
	rows, cols int, tty Tty, opts ...Option) *Terminal {

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	t := &Terminal{
		observer: observer,
		renderer: renderer,
		config:   config,
		deduper:  NewDeduper(),
		tty:      tty,
		focused:  true,
	}
	t.pri = NewBuffer(t.deduper, rows, cols, config.HistoryLimit)
	t.alt = NewBuffer(t.deduper, rows, cols, 0)
	t.buffer = t.pri
	t.machine = NewMachine(t)

	t.modes.Set(ModeAutoWrap)
	t.modes.Set(ModeShowCursor)
	t.modes.Set(ModeAutoRepeat)
	t.modes.Set(ModeAltSendsEsc)
	return t
}

// Rows returns the current height.
func (t *Terminal) Rows() int { return t.buffer.Rows() }

// Cols returns the current width.
func (t *Terminal) Cols() int { return t.buffer.Cols() }

// Mode reports a mode flag, for host-side key encoding.
func (t *Terminal) Mode(m Mode) bool { return t.modes.Has(m) }

// Buffer exposes the active buffer for inspection (selection, search).
func (t *Terminal) Buffer() *Buffer { return t.buffer }

// SetFocused records keyboard focus for cursor rendering.
func (t *Terminal) SetFocused(focused bool) {
	if t.focused != focused {
		t.focused = focused
		t.buffer.damageCell(t.buffer.CursorPos())
		t.fixDamage(damagerScroll)
	}
}

//
// Host events
//

// Resize changes the geometry: the primary buffer reflows, the
// alternate clips. This is the one operation permitted while a read
// dispatch is on the stack.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.pri.ResizeReflow(rows, cols)
	t.alt.ResizeClip(rows, cols)
	if !t.dispatching {
		t.fixDamage(damagerScroll)
	}
}

// Redraw repaints the full viewport after an exposure.
func (t *Terminal) Redraw() { t.fixDamage(damagerExposure) }

// SendInput forwards encoded key bytes to the child, optionally
// snapping the viewport back to the bottom first.
func (t *Terminal) SendInput(data []byte) {
	if t.modes.Has(ModeKbdLock) {
		return
	}
	if t.config.ScrollOnKeyPress && t.buffer.ScrollBottomHistory() {
		t.fixDamage(damagerScroll)
	}
	t.write(data)
}

// Paste delivers pasted text, framed when bracketed paste is on.
func (t *Terminal) Paste(data []byte) {
	if t.buffer.ScrollBottomHistory() {
		t.fixDamage(damagerScroll)
	}
	if t.modes.Has(ModeBracketedPaste) {
		t.write([]byte("\x1b[200~"))
	}
	t.write(data)
	if t.modes.Has(ModeBracketedPaste) {
		t.write([]byte("\x1b[201~"))
	}
}

// ScrollWheel scrolls the viewport through history.
func (t *Terminal) ScrollWheel(dir ScrollDir) {
	step := max(1, t.buffer.Rows()/4)
	var moved bool
	switch dir {
	case ScrollUp:
		moved = t.buffer.ScrollUpHistory(step)
	case ScrollDown:
		moved = t.buffer.ScrollDownHistory(step)
	}
	if moved {
		t.fixDamage(damagerScroll)
	}
}

//
// Mouse
//

func (t *Terminal) mouseReport(num int, pos Pos, release bool) {
	final := byte('M')
	if t.modes.Has(ModeMouseSGR) {
		if release {
			final = 'm'
		}
		t.write([]byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", num, pos.Col+1, pos.Row+1, final)))
		return
	}
	if release {
		num = 3
	}
	// The legacy encoding cannot express large coordinates.
	if pos.Row >= 223 || pos.Col >= 223 {
		return
	}
	t.write([]byte{0x1b, '[', 'M',
		byte(32 + num), byte(32 + pos.Col + 1), byte(32 + pos.Row + 1)})
}

func modifierNum(mods Modifiers) int {
	num := 0
	if mods.Shift {
		num += 4
	}
	if mods.Alt {
		num += 8
	}
	if mods.Control {
		num += 16
	}
	return num
}

// MousePress handles a button press: a report when the child asked
// for one, a selection gesture otherwise. count is the click count.
func (t *Terminal) MousePress(button MouseButton, count int, mods Modifiers, pos Pos) {
	if t.modes.Has(ModeMouseButton) || t.modes.Has(ModeMouseMotion) {
		t.mouseReport(int(button)+modifierNum(mods), pos, false)
	} else {
		switch button {
		case MouseLeft:
			switch {
			case count <= 1:
				t.buffer.MarkSelection(pos, SelectChar)
			case count == 2:
				t.buffer.MarkSelection(pos, SelectWord)
			default:
				t.buffer.MarkSelection(pos, SelectLine)
			}
			t.fixDamage(damagerScroll)
		case MouseMiddle:
			t.observer.TerminalPaste(false)
		case MouseRight:
			t.buffer.DelimitSelection(pos)
			t.fixDamage(damagerScroll)
		}
	}
	t.pressed = true
	t.button = button
	t.pointerPos = pos
}

// MouseMotion handles drag motion.
func (t *Terminal) MouseMotion(mods Modifiers, pos Pos) {
	if !t.pressed || pos == t.pointerPos {
		return
	}
	if t.modes.Has(ModeMouseMotion) {
		t.mouseReport(int(t.button)+32+modifierNum(mods), pos, false)
	} else if !t.modes.Has(ModeMouseButton) && t.button == MouseLeft {
		t.buffer.DelimitSelection(pos)
		t.fixDamage(damagerScroll)
	}
	t.pointerPos = pos
}

// MouseRelease finishes a gesture, copying any selection to the
// primary selection.
func (t *Terminal) MouseRelease(mods Modifiers) {
	if !t.pressed {
		return
	}
	t.pressed = false
	if t.modes.Has(ModeMouseButton) || t.modes.Has(ModeMouseMotion) {
		num := 3
		if t.modes.Has(ModeMouseSGR) {
			num = int(t.button)
		}
		t.mouseReport(num+modifierNum(mods), t.pointerPos, true)
		return
	}
	if text, ok := t.buffer.SelectedText(); ok && text != "" {
		t.observer.TerminalCopy(text, false)
	}
}

//
// I/O
//

// Read pumps bytes from the pty through the decoders until the source
// runs dry or the frame budget is exhausted, then flushes damage.
func (t *Terminal) Read() {
	if t.dispatching {
		log.Printf("vt: re-entrant read rejected")
		return
	}
	if t.closed {
		return
	}
	t.dispatching = true
	if t.readBuf == nil {
		t.readBuf = make([]byte, t.config.ReadChunk)
	}
	deadline := time.Now().Add(t.config.FrameBudget)
	for {
		n, err := t.tty.Read(t.readBuf)
		if n > 0 {
			t.processRead(t.readBuf[:n])
		}
		if err != nil {
			var exited ChildExited
			if errors.As(err, &exited) {
				t.closed = true
				t.dispatching = false
				t.observer.TerminalChildExited(exited.Status)
				t.fixDamage(damagerTTY)
				return
			}
			if err != io.EOF {
				log.Printf("vt: pty read: %v", err)
			}
			break
		}
		if n == 0 || time.Now().After(deadline) {
			break
		}
	}
	t.dispatching = false
	t.fixDamage(damagerTTY)
}

func (t *Terminal) processRead(data []byte) {
	for _, by := range data {
		switch t.decoder.Consume(by) {
		case DecodeAccept:
			t.machine.Consume(t.decoder.Seq())
		case DecodeReject:
			log.Printf("vt: rejecting ill-formed UTF-8")
		}
	}
}

// NeedsFlush reports whether pty writes are queued.
func (t *Terminal) NeedsFlush() bool { return len(t.writeBuf) != 0 }

// Flush retries queued pty writes in FIFO order.
func (t *Terminal) Flush() {
	if t.dumpWrites {
		t.writeBuf = t.writeBuf[:0]
		return
	}
	for len(t.writeBuf) != 0 {
		n, err := t.tty.Write(t.writeBuf)
		if err != nil {
			t.enterDumpWrites(err)
			return
		}
		if n == 0 {
			return
		}
		t.writeBuf = t.writeBuf[n:]
	}
}

func (t *Terminal) enterDumpWrites(err error) {
	log.Printf("vt: pty write: %v; dropping further writes", err)
	t.dumpWrites = true
	t.writeBuf = t.writeBuf[:0]
}

// write sends bytes to the child, queueing whatever would block.
func (t *Terminal) write(data []byte) {
	if t.dumpWrites {
		return
	}
	if len(t.writeBuf) != 0 {
		t.writeBuf = append(t.writeBuf, data...)
		return
	}
	for len(data) != 0 {
		n, err := t.tty.Write(data)
		if err != nil {
			t.enterDumpWrites(err)
			return
		}
		if n == 0 {
			break
		}
		data = data[n:]
	}
	t.writeBuf = append(t.writeBuf, data...)
}

//
// Rendering
//

func (t *Terminal) fixDamage(d damager) {
	if d == damagerTTY && t.config.ScrollOnOutput && t.buffer.ScrollBottomHistory() {
		d = damagerScroll
	}
	if !t.renderer.BeginFrame(d != damagerExposure) {
		return
	}
	t.draw(d)
	scrollbar := d != damagerTTY || t.buffer.BarDamage()
	t.renderer.EndFrame(t.damage, scrollbar)
	if d != damagerExposure {
		t.buffer.ResetDamage()
		// The cell under the cursor must repaint once the cursor
		// moves on.
		t.buffer.damageCell(t.buffer.CursorPos())
	}
}

func (t *Terminal) draw(d damager) {
	t.damage = Region{}
	b := t.buffer
	rows, cols := b.Rows(), b.Cols()

	run := make([]byte, 0, cols*4)
	for r := 0; r != rows; r++ {
		var colBegin, colEnd int
		if d == damagerTTY {
			dmg := b.RowDamage(r)
			colBegin, colEnd = dmg.Begin, dmg.End
		} else {
			colBegin, colEnd = 0, cols
		}
		t.damage.Accumulate(r, r+1, colBegin, colEnd)

		run = run[:0]
		runStart := colBegin
		runCount := 0
		var style Style
		for c := colBegin; c != colEnd; c++ {
			cell := b.Cell(Pos{Row: r, Col: c})
			st := cell.Style
			if t.modes.Has(ModeReverse) {
				st.FG, st.BG = st.BG, st.FG
			}
			if runCount != 0 && st != style {
				t.renderer.DrawRun(Pos{Row: r, Col: runStart}, runCount, style, run)
				run = run[:0]
				runCount = 0
			}
			if runCount == 0 {
				runStart = c
				style = st
			}
			run = append(run, cell.Seq.Slice()...)
			runCount++
		}
		if runCount != 0 {
			t.renderer.DrawRun(Pos{Row: r, Col: runStart}, runCount, style, run)
		}
	}

	if t.modes.Has(ModeShowCursor) && b.ScrollOffset()+b.CursorPos().Row < rows {
		pos := Pos{Row: b.CursorPos().Row + b.ScrollOffset(), Col: b.CursorPos().Col}
		cell := b.Cell(pos)
		st := cell.Style
		if t.modes.Has(ModeReverse) {
			st.FG, st.BG = st.BG, st.FG
		}
		t.damage.Accumulate(pos.Row, pos.Row+1, pos.Col, pos.Col+1)
		t.renderer.DrawCursor(pos, st, cell.Seq.Slice(), b.WrapNext(), t.focused)
	}

	if begin, end, topless, bottomless, ok := b.SelectedArea(); ok {
		t.renderer.DrawSelection(begin, end, topless, bottomless)
	}

	// Search hits are highlighted through the selection callback.
	for _, m := range b.SearchMatches() {
		begin, end := b.toViewport(m.Begin), b.toViewport(m.End)
		if end.Row < 0 || begin.Row >= rows {
			continue
		}
		topless, bottomless := begin.Row < 0, end.Row >= rows
		if topless {
			begin = Pos{0, 0}
		}
		if bottomless {
			end = Pos{rows - 1, cols}
		}
		t.renderer.DrawSelection(begin, end, topless, bottomless)
	}

	if d != damagerTTY || b.BarDamage() {
		t.renderer.DrawScrollbar(b.TotalRows(), b.HistoryRows()-b.ScrollOffset(), rows)
	}
}
