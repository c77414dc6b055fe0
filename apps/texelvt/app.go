// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelvt/app.go
// Summary: The tcell host: owns the screen, the pty child and the
// terminal core, and runs the single-threaded event loop.

package texelvt

import (
	"log"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelvt/histstore"
	"github.com/framegrace/texelvt/vt"
)

// Options configures an App.
type Options struct {
	Command      string
	Args         []string
	HistoryLimit int
	// StorePath enables scroll-back persistence when non-empty.
	StorePath string
	// Session names the persisted snapshot.
	Session string
}

// App wires a terminal core to a tcell screen and a pty child.
type App struct {
	opts     Options
	screen   tcell.Screen
	term     *vt.Terminal
	tty      *PtyTty
	store    *histstore.Store
	title    string
	exited   bool
	exitCode int

	lastButtons tcell.ButtonMask
}

// NewApp prepares an app; Run does the work.
func NewApp(opts Options) *App {
	if opts.Command == "" {
		opts.Command = "/bin/sh"
	}
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = 10000
	}
	if opts.Session == "" {
		opts.Session = "default"
	}
	return &App{opts: opts}
}

// Run drives the emulator until the child exits.
func (a *App) Run() (int, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return -1, err
	}
	if err := screen.Init(); err != nil {
		return -1, err
	}
	defer screen.Fini()
	screen.EnableMouse()
	a.screen = screen

	cols, rows := screen.Size()
	tty, err := StartPty(a.opts.Command, a.opts.Args, rows, cols)
	if err != nil {
		return -1, err
	}
	defer tty.Close()
	a.tty = tty

	a.term = vt.NewTerminal(a, NewTcellRenderer(screen), rows, cols, tty,
		vt.WithHistoryLimit(a.opts.HistoryLimit))

	if a.opts.StorePath != "" {
		store, err := histstore.Open(a.opts.StorePath)
		if err != nil {
			log.Printf("texelvt: history store disabled: %v", err)
		} else {
			a.store = store
			defer store.Close()
			if paras, err := store.Load(a.opts.Session); err != nil {
				log.Printf("texelvt: history restore: %v", err)
			} else if len(paras) != 0 {
				a.term.Buffer().RestoreHistory(paras)
			}
		}
	}

	events := make(chan tcell.Event, 16)
	eventQuit := make(chan struct{})
	go screen.ChannelEvents(events, eventQuit)
	defer close(eventQuit)

	a.term.Redraw()
	for !a.exited {
		select {
		case <-tty.Notify():
			a.term.Read()
			if a.term.NeedsFlush() {
				a.term.Flush()
			}
		case ev := <-events:
			a.handleEvent(ev)
		}
	}

	if a.store != nil {
		if err := a.store.Save(a.opts.Session,
			a.term.Buffer().HistoryParagraphs()); err != nil {
			log.Printf("texelvt: history save: %v", err)
		}
	}
	return a.exitCode, nil
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		a.tty.Resize(rows, cols)
		a.term.Resize(rows, cols)
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventFocus:
		a.term.SetFocused(ev.Focused)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	mods := ev.Modifiers()

	// Host bindings take priority over the child.
	if mods&tcell.ModShift != 0 && mods&tcell.ModCtrl != 0 {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			if text, ok := a.term.Buffer().SelectedText(); ok {
				a.TerminalCopy(text, true)
			}
			return
		case tcell.KeyCtrlV:
			a.TerminalPaste(true)
			return
		}
	}
	if mods&tcell.ModShift != 0 && a.scrollBinding(ev.Key()) {
		return
	}

	if data := EncodeKey(ev, keyModesOf(a.term)); data != nil {
		a.term.SendInput(data)
	}
}

// scrollBinding handles the shifted history-navigation keys.
func (a *App) scrollBinding(key tcell.Key) bool {
	b := a.term.Buffer()
	moved := false
	switch key {
	case tcell.KeyUp:
		moved = b.ScrollUpHistory(1)
	case tcell.KeyDown:
		moved = b.ScrollDownHistory(1)
	case tcell.KeyPgUp:
		moved = b.ScrollUpHistory(b.Rows())
	case tcell.KeyPgDn:
		moved = b.ScrollDownHistory(b.Rows())
	case tcell.KeyHome:
		moved = b.ScrollTopHistory()
	case tcell.KeyEnd:
		moved = b.ScrollBottomHistory()
	default:
		return false
	}
	if moved {
		a.term.Redraw()
	}
	return true
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	pos := vt.Pos{Row: row, Col: col}
	mods := vt.Modifiers{
		Shift:   ev.Modifiers()&tcell.ModShift != 0,
		Alt:     ev.Modifiers()&tcell.ModAlt != 0,
		Control: ev.Modifiers()&tcell.ModCtrl != 0,
	}

	buttons := ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		a.term.ScrollWheel(vt.ScrollUp)
	case ev.Buttons()&tcell.WheelDown != 0:
		a.term.ScrollWheel(vt.ScrollDown)
	case buttons != a.lastButtons:
		pressed := buttons &^ a.lastButtons
		switch {
		case pressed&tcell.Button1 != 0:
			a.term.MousePress(vt.MouseLeft, 1, mods, pos)
		case pressed&tcell.Button2 != 0:
			a.term.MousePress(vt.MouseMiddle, 1, mods, pos)
		case pressed&tcell.Button3 != 0:
			a.term.MousePress(vt.MouseRight, 1, mods, pos)
		default:
			a.term.MouseRelease(mods)
		}
		a.lastButtons = buttons
	case buttons != 0:
		a.term.MouseMotion(mods, pos)
	}
}

//
// vt.TerminalObserver
//

func (a *App) TerminalBell() { a.screen.Beep() }

func (a *App) TerminalSetTitle(title string) { a.title = title }

func (a *App) TerminalResetTitle() { a.title = "" }

// Title returns the last OSC-set window title.
func (a *App) Title() string { return a.title }

func (a *App) TerminalResizeBuffer(rows, cols int) {
	// A tcell host cannot resize its own window; DECCOLM becomes a
	// buffer-only resize.
	a.tty.Resize(rows, cols)
	a.term.Resize(rows, cols)
}

func (a *App) TerminalCopy(text string, clip bool) {
	if err := clipboard.WriteAll(text); err != nil {
		log.Printf("texelvt: clipboard write: %v", err)
	}
}

func (a *App) TerminalPaste(clip bool) {
	text, err := clipboard.ReadAll()
	if err != nil {
		log.Printf("texelvt: clipboard read: %v", err)
		return
	}
	a.term.Paste([]byte(text))
}

func (a *App) TerminalChildExited(status int) {
	a.exited = true
	a.exitCode = status
}
