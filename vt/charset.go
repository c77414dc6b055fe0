// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/charset.go
// Summary: G0/G1 character-set substitution tables.
// Notes: Substitutions follow the DEC special graphics repertoire;
// unmatched bytes pass through untranslated.

package vt

// CharSet designates which substitution slot the cursor draws through.
type CharSet int

const (
	CharSetG0 CharSet = iota
	CharSetG1
)

// CharSub is a substitution table applied to single-byte characters.
type CharSub map[byte]Seq

// Translate returns the replacement for b, or ok=false to pass it
// through.
func (cs CharSub) Translate(b byte) (Seq, bool) {
	if cs == nil {
		return Seq{}, false
	}
	seq, ok := cs[b]
	return seq, ok
}

func seq2(a, b byte) Seq       { return Seq{Bytes: [4]byte{a, b}, Length: 2} }
func seq3(a, b, c byte) Seq    { return Seq{Bytes: [4]byte{a, b, c}, Length: 3} }

// CharSubUS is the identity table.
var CharSubUS = CharSub(nil)

// CharSubUK replaces '#' with the pound sign.
var CharSubUK = CharSub{
	'#': seq2(0xC2, 0xA3), // £
}

// CharSubSpecial is the DEC special graphics (line drawing) set.
var CharSubSpecial = CharSub{
	'`': seq3(0xE2, 0x99, 0xA6), // ♦
	'a': seq3(0xE2, 0x96, 0x92), // ▒
	'b': seq3(0xE2, 0x90, 0x89), // ␉
	'c': seq3(0xE2, 0x90, 0x8C), // ␌
	'd': seq3(0xE2, 0x90, 0x8D), // ␍
	'e': seq3(0xE2, 0x90, 0x8A), // ␊
	'f': seq2(0xC2, 0xB0),       // °
	'g': seq2(0xC2, 0xB1),       // ±
	'h': seq3(0xE2, 0x90, 0xA4), // ␤
	'i': seq3(0xE2, 0x90, 0x8B), // ␋
	'j': seq3(0xE2, 0x94, 0x98), // ┘
	'k': seq3(0xE2, 0x94, 0x90), // ┐
	'l': seq3(0xE2, 0x94, 0x8C), // ┌
	'm': seq3(0xE2, 0x94, 0x94), // └
	'n': seq3(0xE2, 0x94, 0xBC), // ┼
	'o': seq3(0xE2, 0x8E, 0xBA), // ⎺
	'p': seq3(0xE2, 0x8E, 0xBB), // ⎻
	'q': seq3(0xE2, 0x94, 0x80), // ─
	'r': seq3(0xE2, 0x8E, 0xBC), // ⎼
	's': seq3(0xE2, 0x8E, 0xBD), // ⎽
	't': seq3(0xE2, 0x94, 0x9C), // ├
	'u': seq3(0xE2, 0x94, 0xA4), // ┤
	'v': seq3(0xE2, 0x94, 0xB4), // ┴
	'w': seq3(0xE2, 0x94, 0xAC), // ┬
	'x': seq3(0xE2, 0x94, 0x82), // │
	'y': seq3(0xE2, 0x89, 0xA4), // ≤
	'z': seq3(0xE2, 0x89, 0xA5), // ≥
	'{': seq2(0xCF, 0x80),       // π
	'|': seq3(0xE2, 0x89, 0xA0), // ≠
	'}': seq2(0xC2, 0xA3),       // £
	'~': seq3(0xE2, 0x8B, 0x85), // ⋅
}
