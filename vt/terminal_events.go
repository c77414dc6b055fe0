// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/terminal_events.go
// Summary: VT machine event handlers: the control, escape, CSI, OSC
// and special dispatch tables, SGR and mode processing.

package vt

import (
	"fmt"
	"log"
	"strconv"
)

func nthArg(args []int, n, fallback int) int {
	if n < len(args) {
		return args[n]
	}
	return fallback
}

// nthArgNonZero is like nthArg but also falls back when the argument
// is present as zero, for parameters with a "non-zero" contract.
func nthArgNonZero(args []int, n, fallback int) int {
	if arg := nthArg(args, n, fallback); arg != 0 {
		return arg
	}
	return fallback
}

// MachineNormal places one printable grapheme.
func (t *Terminal) MachineNormal(seq Seq) {
	t.buffer.Write(seq, t.modes.Has(ModeAutoWrap), t.modes.Has(ModeInsert))
}

// MachineControl executes a C0 control byte.
func (t *Terminal) MachineControl(c byte) {
	b := t.buffer
	switch c {
	case 0x07: // BEL
		t.observer.TerminalBell()
	case 0x09: // HT
		b.TabForward(1)
	case 0x08: // BS
		b.Backspace(t.modes.Has(ModeAutoWrap))
	case 0x0D: // CR
		b.MoveCursor(b.CursorPos().AtCol(0), false)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		b.ForwardIndex(t.modes.Has(ModeCROnLF))
	case 0x0E: // SO
		b.UseCharSet(CharSetG1)
	case 0x0F: // SI
		b.UseCharSet(CharSetG0)
	case 0x18, 0x1A: // CAN, SUB: the machine already aborted
	case 0x05, 0x00, 0x11, 0x13: // ENQ, NUL, DC1/XON, DC3/XOFF
	default:
		log.Printf("vt: ignored control byte %#x", c)
	}
}

// MachineEscape executes a single-byte ESC command.
func (t *Terminal) MachineEscape(c byte) {
	b := t.buffer
	switch c {
	case 'D': // IND
		b.ForwardIndex(false)
	case 'E': // NEL
		b.ForwardIndex(true)
	case 'H': // HTS
		b.SetTab()
	case 'M': // RI
		b.ReverseIndex()
	case 'N', 'O': // SS2, SS3
		log.Printf("vt: single shift ESC %c ignored", c)
	case 'Z': // DECID
		t.write([]byte("\x1b[?6c"))
	case 'c': // RIS
		t.resetAll()
	case '=': // DECKPAM
		t.modes.Set(ModeAppKeypad)
	case '>': // DECKPNM
		t.modes.Unset(ModeAppKeypad)
	case '7': // DECSC
		b.SaveCursor()
		t.savedOrigin = t.modes.Has(ModeOrigin)
	case '8': // DECRC
		b.RestoreCursor()
		t.modes.SetTo(ModeOrigin, t.savedOrigin)
	default:
		log.Printf("vt: unknown escape sequence ESC %c", c)
	}
}

// MachineCSI dispatches a control sequence.
func (t *Terminal) MachineCSI(private bool, args []int, final byte) {
	b := t.buffer
	origin := t.modes.Has(ModeOrigin)
	switch final {
	case '@': // ICH
		b.InsertCells(nthArgNonZero(args, 0, 1))
	case 'A': // CUU
		b.MoveCursor(b.CursorPos().Up(nthArgNonZero(args, 0, 1)), false)
	case 'B': // CUD
		b.MoveCursor(b.CursorPos().Down(nthArgNonZero(args, 0, 1)), false)
	case 'C': // CUF
		b.MoveCursor(b.CursorPos().Right(nthArgNonZero(args, 0, 1)), false)
	case 'D': // CUB
		b.MoveCursor(b.CursorPos().Left(nthArgNonZero(args, 0, 1)), false)
	case 'E': // CNL
		b.MoveCursor(Pos{Row: b.CursorPos().Row + nthArgNonZero(args, 0, 1)}, false)
	case 'F': // CPL
		b.MoveCursor(Pos{Row: b.CursorPos().Row - nthArgNonZero(args, 0, 1)}, false)
	case 'G': // CHA
		b.MoveCursor(b.CursorPos().AtCol(nthArgNonZero(args, 0, 1)-1), false)
	case 'H', 'f': // CUP, HVP
		b.MoveCursor(Pos{
			Row: nthArgNonZero(args, 0, 1) - 1,
			Col: nthArgNonZero(args, 1, 1) - 1,
		}, origin)
	case 'I': // CHT
		b.TabForward(nthArgNonZero(args, 0, 1))
	case 'J': // ED
		switch nthArg(args, 0, 0) {
		case 1:
			b.ClearAbove()
			b.ClearLineLeft()
		case 2:
			b.Clear()
			b.MoveCursor(Pos{}, false)
		default:
			b.ClearLineRight()
			b.ClearBelow()
		}
	case 'K': // EL
		switch nthArg(args, 0, 0) {
		case 1:
			b.ClearLineLeft()
		case 2:
			b.ClearLine()
		default:
			b.ClearLineRight()
		}
	case 'L': // IL
		b.InsertLines(nthArgNonZero(args, 0, 1))
	case 'M': // DL
		b.EraseLines(nthArgNonZero(args, 0, 1))
	case 'P': // DCH
		b.EraseCells(nthArgNonZero(args, 0, 1))
	case 'S': // SU
		b.ScrollUpMargins(nthArgNonZero(args, 0, 1))
	case 'T': // SD
		b.ScrollDownMargins(nthArgNonZero(args, 0, 1))
	case 'X': // ECH
		b.BlankCells(nthArgNonZero(args, 0, 1))
	case 'Z': // CBT
		b.TabBackward(nthArgNonZero(args, 0, 1))
	case '`': // HPA
		b.MoveCursor(b.CursorPos().AtCol(nthArgNonZero(args, 0, 1)-1), false)
	case 'b': // REP
		log.Printf("vt: REP ignored")
	case 'c': // DA
		t.write([]byte("\x1b[?6c"))
	case 'd': // VPA
		b.MoveCursor(b.CursorPos().AtRow(nthArgNonZero(args, 0, 1)-1), origin)
	case 'g': // TBC
		switch nthArg(args, 0, 0) {
		case 0:
			b.UnsetTab()
		case 3:
			b.ClearTabs()
		default:
			log.Printf("vt: TBC %d ignored", nthArg(args, 0, 0))
		}
	case 'h': // SM
		t.processModes(private, true, args)
	case 'l': // RM
		t.processModes(private, false, args)
	case 'm': // SGR
		if len(args) == 0 {
			t.processAttributes([]int{0})
		} else {
			t.processAttributes(args)
		}
	case 'n': // DSR
		switch nthArg(args, 0, 0) {
		case 5:
			t.write([]byte("\x1b[0n"))
		case 6:
			row := b.CursorPos().Row
			if origin {
				row -= b.MarginBegin()
			}
			t.write([]byte(fmt.Sprintf("\x1b[%d;%dR", row+1, b.CursorPos().Col+1)))
		default:
			log.Printf("vt: DSR %d ignored", nthArg(args, 0, 0))
		}
	case 'r': // DECSTBM
		if private {
			log.Printf("vt: private CSI r ignored")
			return
		}
		if len(args) == 0 {
			b.ResetMargins()
		} else {
			top := nthArgNonZero(args, 0, 1) - 1
			bottom := nthArgNonZero(args, 1, b.Rows()) - 1
			top = clampInt(top, 0, b.Rows()-1)
			bottom = clampInt(bottom, 0, b.Rows()-1)
			if bottom > top {
				b.SetMargins(top, bottom+1)
			} else {
				b.ResetMargins()
			}
		}
		b.MoveCursor(Pos{}, origin)
	case 's': // save cursor position
		b.SaveCursor()
	case 'u': // restore cursor position
		b.RestoreCursor()
	case 'q', 't', 'y':
		log.Printf("vt: CSI %c ignored", final)
	default:
		log.Printf("vt: unknown CSI final %q", final)
	}
}

// MachineOSC handles operating-system commands.
func (t *Terminal) MachineOSC(args []string) {
	if len(args) == 0 {
		return
	}
	command, err := strconv.Atoi(args[0])
	if err != nil {
		log.Printf("vt: malformed OSC command %q", args[0])
		return
	}
	switch command {
	case 0, 1, 2: // icon name and window title
		if len(args) > 1 {
			t.observer.TerminalSetTitle(args[1])
		}
	default:
		log.Printf("vt: unhandled OSC %d", command)
	}
}

// MachineDCS logs and drops device control strings.
func (t *Terminal) MachineDCS(data []byte) {
	log.Printf("vt: DCS payload ignored (%d bytes)", len(data))
}

// MachineSpecial handles intermediate-byte escapes: DECALN and the
// G0/G1 charset designations.
func (t *Terminal) MachineSpecial(intermediate, final byte) {
	b := t.buffer
	switch intermediate {
	case '#':
		switch final {
		case '8': // DECALN
			b.AlignmentPattern()
		case '5': // DECSWL, the single-width default
		default:
			log.Printf("vt: ESC # %c ignored", final)
		}
	case '(', ')':
		cs := CharSetG0
		if intermediate == ')' {
			cs = CharSetG1
		}
		switch final {
		case '0':
			b.SetCharSub(cs, CharSubSpecial)
		case 'A':
			b.SetCharSub(cs, CharSubUK)
		case 'B':
			b.SetCharSub(cs, CharSubUS)
		default:
			log.Printf("vt: unknown character set %c%c", intermediate, final)
		}
	default:
		log.Printf("vt: ESC %c %c ignored", intermediate, final)
	}
}

// resetAll implements RIS.
func (t *Terminal) resetAll() {
	t.buffer.Reset()
	t.modes.Clear()
	t.modes.Set(ModeAutoWrap)
	t.modes.Set(ModeShowCursor)
	t.modes.Set(ModeAutoRepeat)
	t.modes.Set(ModeAltSendsEsc)
	t.savedOrigin = false
	t.observer.TerminalResetTitle()
}

// processAttributes applies SGR parameters to the pen.
func (t *Terminal) processAttributes(args []int) {
	b := t.buffer
	for i := 0; i < len(args); i++ {
		v := args[i]
		switch v {
		case 0:
			b.ResetStyle()
		case 1:
			b.SetAttr(AttrBold)
		case 2:
			b.SetAttr(AttrFaint)
		case 3:
			b.SetAttr(AttrItalic)
		case 4:
			b.SetAttr(AttrUnderline)
		case 5, 6:
			b.SetAttr(AttrBlink)
		case 7:
			b.SetAttr(AttrInverse)
		case 8:
			b.SetAttr(AttrConceal)
		case 21, 22:
			b.UnsetAttr(AttrBold)
			b.UnsetAttr(AttrFaint)
		case 23:
			b.UnsetAttr(AttrItalic)
		case 24:
			b.UnsetAttr(AttrUnderline)
		case 25:
			b.UnsetAttr(AttrBlink)
		case 27:
			b.UnsetAttr(AttrInverse)
		case 28:
			b.UnsetAttr(AttrConceal)
		case 38, 48:
			color, used, ok := parseExtendedColor(args[i+1:])
			i += used
			if !ok {
				log.Printf("vt: malformed SGR %d", v)
				continue
			}
			if v == 38 {
				b.SetFG(color)
			} else {
				b.SetBG(color)
			}
		case 39:
			b.SetFG(DefaultFG)
		case 49:
			b.SetBG(DefaultBG)
		default:
			switch {
			case v >= 30 && v < 38:
				b.SetFG(IndexedColor(uint8(v - 30)))
			case v >= 40 && v < 48:
				b.SetBG(IndexedColor(uint8(v - 40)))
			case v >= 90 && v < 98:
				b.SetFG(IndexedColor(uint8(v - 90 + 8)))
			case v >= 100 && v < 108:
				b.SetBG(IndexedColor(uint8(v - 100 + 8)))
			default:
				log.Printf("vt: unhandled SGR attribute %d", v)
			}
		}
	}
}

// parseExtendedColor reads the tail of a 38/48 parameter: ;5;idx or
// ;2;r;g;b. It returns how many arguments it consumed.
func parseExtendedColor(args []int) (color Color, used int, ok bool) {
	if len(args) == 0 {
		return Color{}, 0, false
	}
	switch args[0] {
	case 5:
		if len(args) < 2 {
			return Color{}, len(args), false
		}
		v := args[1]
		if v < 0 || v > 255 {
			return Color{}, 2, false
		}
		return IndexedColor(uint8(v)), 2, true
	case 2:
		if len(args) < 4 {
			return Color{}, len(args), false
		}
		return RGBColor(clampChannel(args[1]), clampChannel(args[2]),
			clampChannel(args[3])), 4, true
	default:
		return Color{}, 1, false
	}
}

func clampChannel(v int) uint8 {
	return uint8(clampInt(v, 0, 255))
}

// processModes implements SM/RM and the DEC private set/reset table.
func (t *Terminal) processModes(private, set bool, args []int) {
	for _, a := range args {
		if !private {
			switch a {
			case 0: // error, ignored
			case 2: // KAM
				t.modes.SetTo(ModeKbdLock, set)
			case 4: // IRM
				t.modes.SetTo(ModeInsert, set)
			case 12: // SRM
				t.modes.SetTo(ModeEcho, set)
			case 20: // LNM
				t.modes.SetTo(ModeCROnLF, set)
			default:
				log.Printf("vt: unknown set/reset mode %d", a)
			}
			continue
		}
		switch a {
		case 1: // DECCKM
			t.modes.SetTo(ModeAppCursor, set)
		case 3: // DECCOLM
			if set {
				t.observer.TerminalResizeBuffer(24, 132)
			} else {
				t.observer.TerminalResizeBuffer(24, 80)
			}
		case 5: // DECSCNM
			if t.modes.Has(ModeReverse) != set {
				t.modes.SetTo(ModeReverse, set)
				t.buffer.DamageAll()
			}
		case 6: // DECOM
			t.modes.SetTo(ModeOrigin, set)
			t.buffer.MoveCursor(Pos{}, set)
		case 7: // DECAWM
			t.modes.SetTo(ModeAutoWrap, set)
		case 8: // DECARM
			t.modes.SetTo(ModeAutoRepeat, set)
		case 12: // att610 cursor blink, ignored
		case 25: // DECTCEM
			t.modes.SetTo(ModeShowCursor, set)
			t.buffer.damageCell(t.buffer.CursorPos())
		case 1000:
			t.modes.SetTo(ModeMouseButton, set)
			t.modes.Unset(ModeMouseMotion)
		case 1002:
			t.modes.SetTo(ModeMouseMotion, set)
			t.modes.Unset(ModeMouseButton)
		case 1004, 1005, 1015: // focus reports, urxvt mouse: ignored
		case 1006:
			t.modes.SetTo(ModeMouseSGR, set)
		case 1037:
			t.modes.SetTo(ModeDeleteSendsDel, set)
		case 1039:
			t.modes.SetTo(ModeAltSendsEsc, set)
		case 47, 1047:
			t.switchBuffer(set, false)
		case 1049:
			t.switchBuffer(set, true)
		case 1048:
			if set {
				t.buffer.SaveCursor()
				t.savedOrigin = t.modes.Has(ModeOrigin)
			} else {
				t.buffer.RestoreCursor()
				t.modes.SetTo(ModeOrigin, t.savedOrigin)
			}
		case 2004:
			t.modes.SetTo(ModeBracketedPaste, set)
		default:
			log.Printf("vt: unknown private set/reset mode %d", a)
		}
	}
}

// switchBuffer toggles the alternate screen. saveCursor carries the
// 1049 save/restore semantics.
func (t *Terminal) switchBuffer(toAlt, saveCursor bool) {
	if toAlt {
		if t.buffer == t.alt {
			return
		}
		if saveCursor {
			t.pri.SaveCursor()
			t.savedOrigin = t.modes.Has(ModeOrigin)
		}
		t.buffer = t.alt
		t.alt.Clear()
		t.alt.ResetCursor()
	} else {
		if t.buffer == t.pri {
			return
		}
		t.alt.Clear()
		t.buffer = t.pri
		if saveCursor {
			t.pri.RestoreCursor()
			t.modes.SetTo(ModeOrigin, t.savedOrigin)
		}
	}
	t.buffer.DamageAll()
}
