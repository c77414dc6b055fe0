// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/cell.go
// Summary: Cell and style model for the terminal grid.
// Usage: Shared by the buffer, the VT machine and renderers.
// Notes: A Cell stores the raw UTF-8 bytes rather than a rune so the
// renderer never re-encodes.

package vt

import "strings"

// Attr is a single display attribute.
type Attr uint8

const (
	AttrBold Attr = iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrConceal
)

// AttrSet is a bitset of display attributes.
type AttrSet uint8

// Set turns the attribute on.
func (s *AttrSet) Set(a Attr) { *s |= 1 << a }

// Unset turns the attribute off.
func (s *AttrSet) Unset(a Attr) { *s &^= 1 << a }

// Has reports whether the attribute is on.
func (s AttrSet) Has(a Attr) bool { return s&(1<<a) != 0 }

// String returns a human-readable representation of the attribute flags.
func (s AttrSet) String() string {
	if s == 0 {
		return "none"
	}
	names := []struct {
		attr Attr
		name string
	}{
		{AttrBold, "bold"}, {AttrFaint, "faint"}, {AttrItalic, "italic"},
		{AttrUnderline, "underline"}, {AttrBlink, "blink"},
		{AttrInverse, "inverse"}, {AttrConceal, "conceal"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.attr) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ColorMode defines the type of color stored.
type ColorMode uint8

const (
	ColorModeDefault ColorMode = iota // Default terminal fg or bg
	ColorModeIndexed                  // 256-color palette, first 16 are the system palette
	ColorModeRGB                      // 24-bit "true" color
)

// Color represents a color in potentially different modes.
type Color struct {
	Mode    ColorMode
	Index   uint8 // palette index for ColorModeIndexed
	R, G, B uint8 // channel values for ColorModeRGB
}

// IndexedColor returns a palette color.
func IndexedColor(index uint8) Color { return Color{Mode: ColorModeIndexed, Index: index} }

// RGBColor returns a direct 24-bit color.
func RGBColor(r, g, b uint8) Color { return Color{Mode: ColorModeRGB, R: r, G: g, B: b} }

// Predefined default colors for convenience.
var (
	DefaultFG = Color{Mode: ColorModeDefault}
	DefaultBG = Color{Mode: ColorModeDefault}
)

// Style is the rendering state applied to a cell.
type Style struct {
	Attrs AttrSet
	FG    Color
	BG    Color
}

// DefaultStyle returns the style of an untouched cell.
func DefaultStyle() Style { return Style{FG: DefaultFG, BG: DefaultBG} }

// Seq is a complete UTF-8 sequence of 1-4 bytes, one user-perceived
// character.
type Seq struct {
	Bytes  [4]byte
	Length uint8
}

// ASCIISeq wraps a single byte.
func ASCIISeq(b byte) Seq { return Seq{Bytes: [4]byte{b}, Length: 1} }

// RuneSeq encodes a rune. Invalid runes become U+FFFD.
func RuneSeq(r rune) Seq {
	var s Seq
	s.Length = uint8(encodeRune(&s.Bytes, r))
	return s
}

// Slice returns the valid bytes of the sequence.
func (s Seq) Slice() []byte { return s.Bytes[:s.Length] }

// Lead returns the first byte of the sequence.
func (s Seq) Lead() byte { return s.Bytes[0] }

func (s Seq) String() string { return string(s.Slice()) }

var blankSeq = ASCIISeq(' ')

// Cell is a single grid element: a UTF-8 sequence plus its style.
type Cell struct {
	Seq   Seq
	Style Style
	Wide  bool // occupies two columns; the following cell is a filler
}

// BlankCell produces a space with the given style.
func BlankCell(style Style) Cell {
	return Cell{Seq: blankSeq, Style: style}
}

// IsBlank reports whether the cell is a plain space with default-blank
// content (any style).
func (c Cell) IsBlank() bool {
	return c.Seq == blankSeq
}
