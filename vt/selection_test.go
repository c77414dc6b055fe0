package vt

import (
	"fmt"
	"testing"
)

func TestSelection_CharacterRange(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	writeText(b, "hello world")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 5})
	text, ok := b.SelectedText()
	if !ok {
		t.Fatalf("expected a selection")
	}
	if text != "hello" {
		t.Errorf("expected %q, got %q", "hello", text)
	}
}

func TestSelection_ReversedEndpointsNormalise(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	writeText(b, "hello world")
	b.MarkSelection(Pos{0, 11}, SelectChar)
	b.DelimitSelection(Pos{0, 6})
	text, ok := b.SelectedText()
	if !ok || text != "world" {
		t.Errorf("expected %q, got %q (ok=%v)", "world", text, ok)
	}
}

func TestSelection_WordExpansion(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	writeText(b, "alpha beta gamma")
	b.MarkSelection(Pos{0, 8}, SelectWord)
	text, ok := b.SelectedText()
	if !ok || text != "beta" {
		t.Errorf("expected %q, got %q (ok=%v)", "beta", text, ok)
	}
}

func TestSelection_LineLevelTakesParagraph(t *testing.T) {
	b, _ := testBuffer(6, 10, 0)
	// A paragraph wrapped over two rows.
	writeText(b, "0123456789abcde")
	b.MarkSelection(Pos{0, 4}, SelectLine)
	text, ok := b.SelectedText()
	if !ok {
		t.Fatalf("expected a selection")
	}
	if text != "0123456789abcde" {
		t.Errorf("expected the whole paragraph, got %q", text)
	}
}

func TestSelection_MultiRowJoinsWithNewlines(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	feedLine(b, "first line")
	feedLine(b, "second")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{1, 6})
	text, ok := b.SelectedText()
	if !ok {
		t.Fatalf("expected a selection")
	}
	if text != "first line\nsecond" {
		t.Errorf("expected joined lines, got %q", text)
	}
}

func TestSelection_WrappedParagraphJoinsWithoutNewline(t *testing.T) {
	b, _ := testBuffer(6, 10, 0)
	writeText(b, "0123456789abc")
	b.MarkSelection(Pos{0, 5}, SelectChar)
	b.DelimitSelection(Pos{1, 3})
	text, ok := b.SelectedText()
	if !ok || text != "56789abc" {
		t.Errorf("expected seamless join inside a paragraph, got %q", text)
	}
}

func TestSelection_ClearedByOverlappingMutation(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	writeText(b, "stable text")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 6})
	if !b.HasSelection() {
		t.Fatalf("expected selection present")
	}
	b.MoveCursor(Pos{0, 2}, false)
	b.Write(ASCIISeq('X'), true, false)
	if b.HasSelection() {
		t.Errorf("expected overlapping write to clear the selection")
	}
}

func TestSelection_SurvivesDisjointMutation(t *testing.T) {
	b, _ := testBuffer(6, 20, 0)
	writeText(b, "keep me")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 4})
	b.MoveCursor(Pos{3, 0}, false)
	b.Write(ASCIISeq('X'), true, false)
	if !b.HasSelection() {
		t.Errorf("expected selection to survive a disjoint write")
	}
}

func TestSelection_TracksContentIntoHistory(t *testing.T) {
	b, _ := testBuffer(4, 20, 100)
	writeText(b, "chosen")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 6})
	// Scroll the selected row off the top.
	b.MoveCursor(Pos{3, 0}, false)
	for i := 0; i < 3; i++ {
		feedLine(b, fmt.Sprintf("push %d", i))
	}
	if !b.HasSelection() {
		t.Fatalf("expected selection to survive scrolling into history")
	}
	text, ok := b.SelectedText()
	if !ok || text != "chosen" {
		t.Errorf("expected %q after migration, got %q", "chosen", text)
	}
}

func TestSelection_SelectedAreaViewportClipping(t *testing.T) {
	b, _ := testBuffer(4, 10, 100)
	writeText(b, "top")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 3})
	b.MoveCursor(Pos{3, 0}, false)
	for i := 0; i < 6; i++ {
		feedLine(b, fmt.Sprintf("fill %d", i))
	}
	// At the live bottom the selected row is above the viewport.
	if _, _, _, _, ok := b.SelectedArea(); ok {
		t.Errorf("expected selection outside the viewport to be dropped")
	}
	b.ScrollTopHistory()
	begin, _, topless, _, ok := b.SelectedArea()
	if !ok {
		t.Fatalf("expected visible selection after scrolling up")
	}
	if topless {
		t.Errorf("expected full selection visible, got topless")
	}
	if begin.Row != 0 {
		t.Errorf("expected selection at viewport row 0, got %d", begin.Row)
	}
}

func TestSelection_TrimsTrailingBlanks(t *testing.T) {
	b, _ := testBuffer(4, 20, 0)
	writeText(b, "short")
	b.MarkSelection(Pos{0, 0}, SelectChar)
	b.DelimitSelection(Pos{0, 20})
	text, ok := b.SelectedText()
	if !ok || text != "short" {
		t.Errorf("expected trailing blanks trimmed, got %q", text)
	}
}
