// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelvt/keys.go
// Summary: tcell key events to pty byte sequences, honouring the
// application cursor and related modes. The application keypad mode
// is carried in KeyModes but no encoding depends on it.

package texelvt

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelvt/vt"
)

// KeyModes is the subset of terminal modes that affect key encoding.
type KeyModes struct {
	AppCursor      bool
	AppKeypad      bool
	CROnLF         bool
	DeleteSendsDel bool
	AltSendsEsc    bool
}

// keyModesOf snapshots the relevant modes from a terminal.
func keyModesOf(term *vt.Terminal) KeyModes {
	return KeyModes{
		AppCursor:      term.Mode(vt.ModeAppCursor),
		AppKeypad:      term.Mode(vt.ModeAppKeypad),
		CROnLF:         term.Mode(vt.ModeCROnLF),
		DeleteSendsDel: term.Mode(vt.ModeDeleteSendsDel),
		AltSendsEsc:    term.Mode(vt.ModeAltSendsEsc),
	}
}

func cursorKey(app bool, final byte) []byte {
	if app {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// EncodeKey translates one key event. A nil result means the key does
// not reach the child.
func EncodeKey(ev *tcell.EventKey, modes KeyModes) []byte {
	switch ev.Key() {
	case tcell.KeyUp:
		return cursorKey(modes.AppCursor, 'A')
	case tcell.KeyDown:
		return cursorKey(modes.AppCursor, 'B')
	case tcell.KeyRight:
		return cursorKey(modes.AppCursor, 'C')
	case tcell.KeyLeft:
		return cursorKey(modes.AppCursor, 'D')
	case tcell.KeyHome:
		return cursorKey(modes.AppCursor, 'H')
	case tcell.KeyEnd:
		return cursorKey(modes.AppCursor, 'F')
	case tcell.KeyInsert:
		return []byte("\x1b[2~")
	case tcell.KeyDelete:
		if modes.DeleteSendsDel {
			return []byte{0x7f}
		}
		return []byte("\x1b[3~")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyF1:
		return []byte("\x1bOP")
	case tcell.KeyF2:
		return []byte("\x1bOQ")
	case tcell.KeyF3:
		return []byte("\x1bOR")
	case tcell.KeyF4:
		return []byte("\x1bOS")
	case tcell.KeyF5:
		return []byte("\x1b[15~")
	case tcell.KeyF6:
		return []byte("\x1b[17~")
	case tcell.KeyF7:
		return []byte("\x1b[18~")
	case tcell.KeyF8:
		return []byte("\x1b[19~")
	case tcell.KeyF9:
		return []byte("\x1b[20~")
	case tcell.KeyF10:
		return []byte("\x1b[21~")
	case tcell.KeyF11:
		return []byte("\x1b[23~")
	case tcell.KeyF12:
		return []byte("\x1b[24~")
	case tcell.KeyEnter:
		if modes.CROnLF {
			return []byte("\r\n")
		}
		return []byte("\r")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyTab:
		return []byte("\t")
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyEsc:
		return []byte{0x1b}
	}

	ru := ev.Rune()
	if ru == 0 {
		// Ctrl-letter combos arrive as control keys below 0x20.
		if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return []byte{byte(k)}
		}
		return nil
	}
	encoded := []byte(string(ru))
	if ev.Modifiers()&tcell.ModAlt != 0 && modes.AltSendsEsc {
		return append([]byte{0x1b}, encoded...)
	}
	return encoded
}
