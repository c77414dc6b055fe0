// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/search.go
// Summary: In-buffer regex search over the unified history/active
// paragraph stream.
// Notes: Matching runs against the full pre-wrap text of each
// paragraph, so hits spanning a soft line break are found.

package vt

import "regexp"

// Match is one search hit, as an absolute half-open position pair.
type Match struct {
	Begin APos
	End   APos
}

type search struct {
	re      *regexp.Regexp
	pattern string
	row     int // paragraph head of the current iteration position
	matches []Match
}

// Searching reports whether a search is in progress.
func (b *Buffer) Searching() bool { return b.search != nil }

// SearchPattern returns the active pattern, empty when not searching.
func (b *Buffer) SearchPattern() string {
	if b.search == nil {
		return ""
	}
	return b.search.pattern
}

// SearchMatches returns the hits in the current paragraph.
func (b *Buffer) SearchMatches() []Match {
	if b.search == nil {
		return nil
	}
	return b.search.matches
}

// BeginSearch compiles the pattern and seeds a reverse iterator on
// the last active row. It fails only on a bad pattern.
func (b *Buffer) BeginSearch(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	// The iterator starts on the bottom row, so the first NextSearch
	// examines the row above it.
	b.search = &search{
		re:      re,
		pattern: pattern,
		row:     len(b.active) - 1,
	}
	return nil
}

// SetSearchPattern recompiles the pattern in place, keeping the
// iteration position.
func (b *Buffer) SetSearchPattern(pattern string) error {
	if b.search == nil {
		return b.BeginSearch(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	b.search.re = re
	b.search.pattern = pattern
	b.search.matches = nil
	return nil
}

// EndSearch drops the compiled pattern and any hits.
func (b *Buffer) EndSearch() {
	if b.search == nil {
		return
	}
	b.search = nil
	b.damageViewport(false)
}

// NextSearch walks backward (toward older content) to the next
// paragraph with a hit. It reports whether one was found.
func (b *Buffer) NextSearch() bool { return b.stepSearch(-1) }

// PrevSearch walks forward (toward newer content).
func (b *Buffer) PrevSearch() bool { return b.stepSearch(+1) }

func (b *Buffer) stepSearch(dir int) bool {
	s := b.search
	if s == nil {
		return false
	}
	row := s.row
	for {
		row += dir
		if row < -len(b.history) || row >= len(b.active) {
			return false
		}
		head := b.paraBegin(APos{Row: row, Col: 0})
		// Only visit each paragraph once, at its head.
		if head.Row != row {
			continue
		}
		matches := b.matchPara(s.re, row)
		if len(matches) == 0 {
			continue
		}
		s.row = row
		s.matches = matches
		b.revealRow(matches[0].Begin.Row)
		b.damageViewport(false)
		return true
	}
}

// matchPara runs the regex over one paragraph's text and maps byte
// offsets back to absolute positions.
func (b *Buffer) matchPara(re *regexp.Regexp, headRow int) []Match {
	text, cellAtByte := b.paraText(headRow)
	if len(text) == 0 {
		return nil
	}
	idx := re.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(idx))
	for _, pair := range idx {
		begin := cellAtByte[pair[0]]
		var end int
		if pair[1] < len(cellAtByte) {
			end = cellAtByte[pair[1]]
		} else {
			end = cellAtByte[len(cellAtByte)-1] + 1
		}
		matches = append(matches, Match{
			Begin: b.cellIndexToAPos(headRow, begin),
			End:   b.cellIndexToAPos(headRow, end),
		})
	}
	return matches
}

// paraText concatenates a paragraph into a string plus a byte-offset
// to cell-index table.
func (b *Buffer) paraText(headRow int) (string, []int) {
	var text []byte
	var cellAtByte []int
	cell := 0
	row := headRow
	for {
		cells, cont, wrap := b.lineAt(row)
		limit := min(wrap, len(cells))
		for c := 0; c < limit; c++ {
			for range cells[c].Seq.Slice() {
				cellAtByte = append(cellAtByte, cell)
			}
			text = append(text, cells[c].Seq.Slice()...)
			cell++
		}
		if !cont || row >= len(b.active)-1 {
			break
		}
		row++
	}
	return string(text), cellAtByte
}

// cellIndexToAPos maps a flat cell index within a paragraph to an
// absolute position.
func (b *Buffer) cellIndexToAPos(headRow, index int) APos {
	return APos{Row: headRow + index/b.cols, Col: index % b.cols}
}

// revealRow scrolls history so the given absolute row is visible.
func (b *Buffer) revealRow(row int) {
	if row >= 0 {
		// Active rows are visible at the live bottom.
		if b.scrollOffset != 0 {
			b.scrollOffset = 0
			b.barDamage = true
		}
		return
	}
	// Place the historical row at the top of the viewport.
	want := -row
	if want > len(b.history) {
		want = len(b.history)
	}
	if b.scrollOffset != want {
		b.scrollOffset = want
		b.barDamage = true
	}
}
