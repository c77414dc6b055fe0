package vt

import (
	"errors"
	"strings"
	"testing"
)

// scriptTty delivers scripted bytes and records terminal responses.
type scriptTty struct {
	in   []byte
	out  []byte
	err  error
	fail bool
}

func (f *scriptTty) Read(p []byte) (int, error) {
	if len(f.in) == 0 {
		if f.err != nil {
			return 0, f.err
		}
		return 0, nil
	}
	n := copy(p, f.in)
	f.in = f.in[n:]
	return n, nil
}

func (f *scriptTty) Write(p []byte) (int, error) {
	if f.fail {
		return 0, errors.New("broken pipe")
	}
	f.out = append(f.out, p...)
	return len(p), nil
}

type drawRun struct {
	pos   Pos
	count int
	style Style
	text  string
}

// recordingRenderer captures draw calls per frame.
type recordingRenderer struct {
	runs      []drawRun
	cursorPos Pos
	frames    int
}

func (r *recordingRenderer) BeginFrame(internal bool) bool { return true }
func (r *recordingRenderer) DrawRun(pos Pos, count int, style Style, utf8Bytes []byte) {
	r.runs = append(r.runs, drawRun{pos, count, style, string(utf8Bytes)})
}
func (r *recordingRenderer) DrawCursor(pos Pos, style Style, utf8Bytes []byte, wrapNext, focused bool) {
	r.cursorPos = pos
}
func (r *recordingRenderer) DrawSelection(begin, end Pos, topless, bottomless bool) {}
func (r *recordingRenderer) DrawScrollbar(total, offset, visible int)              {}
func (r *recordingRenderer) EndFrame(damage Region, scrollbarDirty bool)           { r.frames++ }

// nullObserver records lifecycle callbacks.
type nullObserver struct {
	title  string
	bells  int
	exited bool
	status int
}

func (o *nullObserver) TerminalBell()                      { o.bells++ }
func (o *nullObserver) TerminalSetTitle(title string)      { o.title = title }
func (o *nullObserver) TerminalResetTitle()                { o.title = "" }
func (o *nullObserver) TerminalResizeBuffer(rows, cols int) {}
func (o *nullObserver) TerminalCopy(text string, clipboard bool) {}
func (o *nullObserver) TerminalPaste(clipboard bool)       {}
func (o *nullObserver) TerminalChildExited(status int) {
	o.exited = true
	o.status = status
}

func newTestTerminal(t *testing.T) (*Terminal, *scriptTty, *recordingRenderer, *nullObserver) {
	t.Helper()
	tty := &scriptTty{}
	renderer := &recordingRenderer{}
	observer := &nullObserver{}
	term := NewTerminal(observer, renderer, 24, 80, tty)
	return term, tty, renderer, observer
}

func feed(term *Terminal, tty *scriptTty, input string) {
	tty.in = append(tty.in, input...)
	term.Read()
}

func cellText(term *Terminal, r, c int) string {
	return term.Buffer().Cell(Pos{r, c}).Seq.String()
}

func TestTerminal_PlainWrite(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "hello\r\n")
	for i, want := range []string{"h", "e", "l", "l", "o"} {
		if got := cellText(term, 0, i); got != want {
			t.Errorf("cell (0,%d): expected %q, got %q", i, want, got)
		}
	}
	if got := term.Buffer().CursorPos(); got != (Pos{1, 0}) {
		t.Errorf("expected cursor at (1,0), got %v", got)
	}
}

func TestTerminal_AutoWrap(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, strings.Repeat("A", 80)+"B")
	for c := 0; c < 80; c++ {
		if got := cellText(term, 0, c); got != "A" {
			t.Fatalf("cell (0,%d): expected A, got %q", c, got)
		}
	}
	_, cont, _ := term.Buffer().Line(0)
	if !cont {
		t.Errorf("expected row 0 to continue")
	}
	if got := cellText(term, 1, 0); got != "B" {
		t.Errorf("expected B at (1,0), got %q", got)
	}
	if got := term.Buffer().CursorPos(); got != (Pos{1, 1}) {
		t.Errorf("expected cursor at (1,1), got %v", got)
	}
}

func TestTerminal_SGRAndECH(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[31mABC\x1b[2X")
	red := IndexedColor(1)
	for i, want := range []string{"A", "B", "C"} {
		cell := term.Buffer().Cell(Pos{0, i})
		if cell.Seq.String() != want {
			t.Errorf("cell (0,%d): expected %q, got %q", i, want, cell.Seq.String())
		}
		if cell.Style.FG != red {
			t.Errorf("cell (0,%d): expected red fg, got %+v", i, cell.Style.FG)
		}
	}
	for c := 3; c <= 4; c++ {
		if got := cellText(term, 0, c); got != " " {
			t.Errorf("cell (0,%d): expected blank after ECH, got %q", c, got)
		}
	}
	if got := term.Buffer().CursorPos(); got != (Pos{0, 3}) {
		t.Errorf("expected cursor at (0,3), got %v", got)
	}
}

func TestTerminal_ScrollIntoHistory(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "content line " + string(rune('A'+i))
	}
	feed(term, tty, strings.Join(lines, "\r\n"))

	b := term.Buffer()
	if got := b.HistoryRows(); got != 6 {
		t.Fatalf("expected 6 history rows, got %d", got)
	}
	b.ScrollUpHistory(6)
	cells, _, wrap := b.Line(0)
	got := ""
	for c := 0; c < wrap && c < len(cells); c++ {
		got += cells[c].Seq.String()
	}
	if got != lines[0] {
		t.Errorf("expected %q at viewport row 0, got %q", lines[0], got)
	}
}

func TestTerminal_CUP(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[10;20H")
	if got := term.Buffer().CursorPos(); got != (Pos{9, 19}) {
		t.Errorf("expected cursor at (9,19), got %v", got)
	}
}

func TestTerminal_DECALN(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b#8")
	for r := 0; r < 24; r++ {
		for c := 0; c < 80; c++ {
			if got := cellText(term, r, c); got != "E" {
				t.Fatalf("cell (%d,%d): expected E, got %q", r, c, got)
			}
		}
	}
}

func TestTerminal_DeviceAttributes(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[c")
	if got := string(tty.out); got != "\x1b[?6c" {
		t.Errorf("expected DA reply, got %q", got)
	}
}

func TestTerminal_DSR(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[4;7H\x1b[6n")
	if got := string(tty.out); got != "\x1b[4;7R" {
		t.Errorf("expected cursor report, got %q", got)
	}
	tty.out = nil
	feed(term, tty, "\x1b[5n")
	if got := string(tty.out); got != "\x1b[0n" {
		t.Errorf("expected status report, got %q", got)
	}
}

func TestTerminal_OSCTitle(t *testing.T) {
	term, tty, _, obs := newTestTerminal(t)
	feed(term, tty, "\x1b]2;my session\x07")
	if obs.title != "my session" {
		t.Errorf("expected title set, got %q", obs.title)
	}
}

func TestTerminal_Bell(t *testing.T) {
	term, tty, _, obs := newTestTerminal(t)
	feed(term, tty, "ding\x07dong")
	if obs.bells != 1 {
		t.Errorf("expected 1 bell, got %d", obs.bells)
	}
}

func TestTerminal_AltBuffer(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "primary\x1b[?1049h")
	if got := cellText(term, 0, 0); got != " " {
		t.Errorf("expected clean alternate screen, got %q", got)
	}
	feed(term, tty, "alt text")
	feed(term, tty, "\x1b[?1049l")
	got := ""
	for c := 0; c < 7; c++ {
		got += cellText(term, 0, c)
	}
	if got != "primary" {
		t.Errorf("expected primary content restored, got %q", got)
	}
	if term.Buffer().CursorPos() != (Pos{0, 7}) {
		t.Errorf("expected cursor restored to (0,7), got %v", term.Buffer().CursorPos())
	}
}

func TestTerminal_AltBufferHasNoHistory(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[?1047h")
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "alt"
	}
	feed(term, tty, strings.Join(lines, "\r\n"))
	if got := term.Buffer().HistoryRows(); got != 0 {
		t.Errorf("alternate buffer must not accumulate history, got %d rows", got)
	}
}

func TestTerminal_InsertMode(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "ac\x1b[4h\x1b[1;2Hb")
	got := cellText(term, 0, 0) + cellText(term, 0, 1) + cellText(term, 0, 2)
	if got != "abc" {
		t.Errorf("expected insert mode to shift, got %q", got)
	}
}

func TestTerminal_Margins(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[5;10r")
	b := term.Buffer()
	if b.MarginBegin() != 4 || b.MarginEnd() != 10 {
		t.Errorf("expected margins [4,10), got [%d,%d)", b.MarginBegin(), b.MarginEnd())
	}
	if b.CursorPos() != (Pos{0, 0}) {
		t.Errorf("expected cursor homed after DECSTBM, got %v", b.CursorPos())
	}
}

func TestTerminal_OriginMode(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[5;10r\x1b[?6h\x1b[1;1H")
	if got := term.Buffer().CursorPos(); got != (Pos{4, 0}) {
		t.Errorf("expected origin-relative home at margin top, got %v", got)
	}
	tty.out = nil
	feed(term, tty, "\x1b[6n")
	if got := string(tty.out); got != "\x1b[1;1R" {
		t.Errorf("expected origin-relative report, got %q", got)
	}
}

func TestTerminal_CharsetSpecialGraphics(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b(0qx\x1b(Bq")
	if got := cellText(term, 0, 0); got != "─" {
		t.Errorf("expected box-drawing q, got %q", got)
	}
	if got := cellText(term, 0, 1); got != "│" {
		t.Errorf("expected box-drawing x, got %q", got)
	}
	if got := cellText(term, 0, 2); got != "q" {
		t.Errorf("expected plain q after switching back, got %q", got)
	}
}

func TestTerminal_ShiftInOut(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b)0q\x0eq\x0fq")
	if got := cellText(term, 0, 0); got != "q" {
		t.Errorf("expected plain q via G0, got %q", got)
	}
	if got := cellText(term, 0, 1); got != "─" {
		t.Errorf("expected graphics q via G1, got %q", got)
	}
	if got := cellText(term, 0, 2); got != "q" {
		t.Errorf("expected plain q after SI, got %q", got)
	}
}

func TestTerminal_SaveRestoreCursor(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[3;5H\x1b7\x1b[10;10H\x1b8")
	if got := term.Buffer().CursorPos(); got != (Pos{2, 4}) {
		t.Errorf("expected restored cursor (2,4), got %v", got)
	}
}

func TestTerminal_BracketedPaste(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[?2004h")
	term.Paste([]byte("pasted"))
	if got := string(tty.out); got != "\x1b[200~pasted\x1b[201~" {
		t.Errorf("expected framed paste, got %q", got)
	}
}

func TestTerminal_MouseReportSGR(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[?1000h\x1b[?1006h")
	term.MousePress(MouseLeft, 1, Modifiers{}, Pos{Row: 4, Col: 9})
	term.MouseRelease(Modifiers{})
	if got := string(tty.out); got != "\x1b[<0;10;5M\x1b[<0;10;5m" {
		t.Errorf("unexpected SGR mouse reports %q", got)
	}
}

func TestTerminal_MouseReportLegacy(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[?1000h")
	term.MousePress(MouseLeft, 1, Modifiers{}, Pos{Row: 2, Col: 3})
	want := string([]byte{0x1b, '[', 'M', 32, 32 + 4, 32 + 3})
	if got := string(tty.out); got != want {
		t.Errorf("expected legacy report % x, got % x", want, got)
	}
	tty.out = nil
	// Legacy reports are suppressed for coordinates past 223.
	term.Resize(24, 300)
	term.MousePress(MouseLeft, 1, Modifiers{}, Pos{Row: 2, Col: 250})
	term.MouseRelease(Modifiers{})
	if len(tty.out) != 0 {
		t.Errorf("expected out-of-range legacy reports dropped, got % x", tty.out)
	}
}

func TestTerminal_DropWrites(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	tty.fail = true
	term.SendInput([]byte("lost"))
	tty.fail = false
	term.SendInput([]byte("also lost"))
	if len(tty.out) != 0 {
		t.Errorf("expected drop-writes after a pty error, got %q", tty.out)
	}
}

func TestTerminal_DECCOLMRequestsResize(t *testing.T) {
	tty := &scriptTty{}
	var resized [2]int
	observer := &resizeObserver{nullObserver: &nullObserver{}, got: &resized}
	term := NewTerminal(observer, &recordingRenderer{}, 24, 80, tty)
	feed(term, tty, "\x1b[?3h")
	if resized != [2]int{24, 132} {
		t.Errorf("expected 24x132 resize request, got %v", resized)
	}
}

type resizeObserver struct {
	*nullObserver
	got *[2]int
}

func (o *resizeObserver) TerminalResizeBuffer(rows, cols int) {
	*o.got = [2]int{rows, cols}
}

func TestTerminal_ChildExit(t *testing.T) {
	term, tty, _, obs := newTestTerminal(t)
	tty.in = []byte("bye")
	tty.err = ChildExited{Status: 3}
	term.Read()
	if !obs.exited || obs.status != 3 {
		t.Errorf("expected exit status 3, got %+v", obs)
	}
	// Further reads are no-ops.
	tty.in = []byte("ignored")
	term.Read()
	if got := cellText(term, 0, 3); got != " " {
		t.Errorf("expected no processing after exit, got %q", got)
	}
}

func TestTerminal_RejectsIllFormedUTF8(t *testing.T) {
	term, tty, _, _ := newTestTerminal(t)
	feed(term, tty, "a\x80b")
	if got := cellText(term, 0, 0); got != "a" {
		t.Errorf("expected a, got %q", got)
	}
	if got := cellText(term, 0, 1); got != "b" {
		t.Errorf("expected the bad byte dropped, got %q", got)
	}
}

func TestTerminal_RunBatching(t *testing.T) {
	term, tty, renderer, _ := newTestTerminal(t)
	feed(term, tty, "aa\x1b[1mbb")
	var rowRuns []drawRun
	for _, run := range renderer.runs {
		if run.pos.Row == 0 && run.count > 0 {
			rowRuns = append(rowRuns, run)
		}
	}
	if len(rowRuns) < 2 {
		t.Fatalf("expected at least two runs, got %+v", rowRuns)
	}
	if rowRuns[0].text != "aa" {
		t.Errorf("expected first run %q, got %q", "aa", rowRuns[0].text)
	}
	if rowRuns[1].text != "bb" || !rowRuns[1].style.Attrs.Has(AttrBold) {
		t.Errorf("expected bold second run, got %+v", rowRuns[1])
	}
}

func TestTerminal_ReverseScreenMode(t *testing.T) {
	term, tty, renderer, _ := newTestTerminal(t)
	feed(term, tty, "\x1b[31mx")
	renderer.runs = nil
	feed(term, tty, "\x1b[?5h")
	found := false
	for _, run := range renderer.runs {
		if run.pos == (Pos{0, 0}) && run.count >= 1 {
			if run.style.BG == IndexedColor(1) {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("expected fg/bg swapped under DECSCNM")
	}
}
