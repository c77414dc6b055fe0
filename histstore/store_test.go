package histstore

import (
	"path/filepath"
	"testing"

	"github.com/framegrace/texelvt/vt"
)

func cellsOf(s string) []vt.Cell {
	cells := make([]vt.Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, vt.Cell{Seq: vt.RuneSeq(r), Style: vt.DefaultStyle()})
	}
	return cells
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hist.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	styled := cellsOf("styled")
	styled[0].Style.Attrs.Set(vt.AttrBold)
	styled[1].Style.FG = vt.IndexedColor(3)
	styled[2].Style.BG = vt.RGBColor(1, 2, 3)
	paras := [][]vt.Cell{
		cellsOf("first paragraph"),
		{},
		styled,
	}

	if err := s.Save("session-a", paras); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load("session-a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(paras) {
		t.Fatalf("expected %d paragraphs, got %d", len(paras), len(got))
	}
	for i := range paras {
		if len(got[i]) != len(paras[i]) {
			t.Fatalf("paragraph %d: expected %d cells, got %d",
				i, len(paras[i]), len(got[i]))
		}
		for j := range paras[i] {
			if got[i][j] != paras[i][j] {
				t.Errorf("paragraph %d cell %d mismatch: %+v vs %+v",
					i, j, got[i][j], paras[i][j])
			}
		}
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save("s", [][]vt.Cell{cellsOf("old")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("s", [][]vt.Cell{cellsOf("new one"), cellsOf("new two")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load("s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected replacement snapshot, got %d paragraphs", len(got))
	}
	if got[0][0].Seq.String() != "n" {
		t.Errorf("expected new content, got %q", got[0][0].Seq.String())
	}
}

func TestStore_MissingSessionIsEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load("nope")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d paragraphs", len(got))
	}
}

func TestStore_SessionsAndDelete(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save("one", [][]vt.Cell{cellsOf("x")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("two", [][]vt.Cell{cellsOf("x")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	names, err := s.Sessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 sessions, got %v", names)
	}
	if err := s.Delete("one"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// The shared blob must survive for the remaining session.
	got, err := s.Load("two")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected shared blob kept, got %v (%v)", got, err)
	}
}

func TestCodec_RejectsCorruptBlob(t *testing.T) {
	if _, err := decodeParagraph([]byte{codecVersion, 1, 2, 3}); err == nil {
		t.Errorf("expected truncated blob to fail")
	}
	if _, err := decodeParagraph([]byte{99}); err == nil {
		t.Errorf("expected unknown version to fail")
	}
}
