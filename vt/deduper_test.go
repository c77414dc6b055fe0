package vt

import "testing"

func cellsOf(s string) []Cell {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, Cell{Seq: RuneSeq(r), Style: DefaultStyle()})
	}
	return cells
}

func TestDeduper_StoreAndLookup(t *testing.T) {
	d := NewDeduper()
	tag := d.Store(cellsOf("hello world"))
	got := d.Lookup(tag)
	if len(got) != 11 {
		t.Fatalf("expected 11 cells, got %d", len(got))
	}
	if got[0].Seq.String() != "h" {
		t.Errorf("expected 'h', got %q", got[0].Seq.String())
	}
}

func TestDeduper_EqualContentSharesTag(t *testing.T) {
	d := NewDeduper()
	t1 := d.Store(cellsOf("same line"))
	t2 := d.Store(cellsOf("same line"))
	if t1 != t2 {
		t.Errorf("expected shared tag, got %d and %d", t1, t2)
	}
	if d.Count() != 1 {
		t.Errorf("expected 1 stored paragraph, got %d", d.Count())
	}
	if d.RefCount(t1) != 2 {
		t.Errorf("expected refcount 2, got %d", d.RefCount(t1))
	}
}

func TestDeduper_DistinctContentDistinctTags(t *testing.T) {
	d := NewDeduper()
	t1 := d.Store(cellsOf("one"))
	t2 := d.Store(cellsOf("two"))
	if t1 == t2 {
		t.Errorf("expected distinct tags")
	}
	if d.Count() != 2 {
		t.Errorf("expected 2 stored paragraphs, got %d", d.Count())
	}
}

func TestDeduper_StyleAffectsIdentity(t *testing.T) {
	d := NewDeduper()
	styled := cellsOf("text")
	styled[0].Style.Attrs.Set(AttrBold)
	t1 := d.Store(cellsOf("text"))
	t2 := d.Store(styled)
	if t1 == t2 {
		t.Errorf("expected styled content to get its own tag")
	}
}

func TestDeduper_ReleaseRemovesAtZero(t *testing.T) {
	d := NewDeduper()
	tag := d.Store(cellsOf("refcounted"))
	d.Store(cellsOf("refcounted"))
	d.Release(tag)
	if d.Count() != 1 {
		t.Fatalf("expected entry to survive first release")
	}
	d.Release(tag)
	if d.Count() != 0 {
		t.Errorf("expected empty store, got %d entries", d.Count())
	}
	if d.Lookup(tag) != nil {
		t.Errorf("expected nil lookup after removal")
	}
}

func TestDeduper_StoreCopiesInput(t *testing.T) {
	d := NewDeduper()
	cells := cellsOf("mutate me")
	tag := d.Store(cells)
	cells[0] = Cell{Seq: ASCIISeq('X'), Style: DefaultStyle()}
	if d.Lookup(tag)[0].Seq.String() != "m" {
		t.Errorf("store must copy its input")
	}
}
