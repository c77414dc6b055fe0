// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: histstore/codec.go
// Summary: Binary paragraph codec for snapshot blobs.

package histstore

import (
	"fmt"

	"github.com/framegrace/texelvt/vt"
)

// codecVersion guards the blob layout.
const codecVersion = 1

// cellSize is the fixed on-disk footprint of one cell.
const cellSize = 1 + 4 + 1 + 5 + 5 + 1

// encodeParagraph serialises cells into a versioned blob.
func encodeParagraph(cells []vt.Cell) []byte {
	out := make([]byte, 1, 1+len(cells)*cellSize)
	out[0] = codecVersion
	for _, c := range cells {
		out = append(out, c.Seq.Length)
		out = append(out, c.Seq.Bytes[:]...)
		out = append(out, byte(c.Style.Attrs))
		out = appendColor(out, c.Style.FG)
		out = appendColor(out, c.Style.BG)
		if c.Wide {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func appendColor(out []byte, c vt.Color) []byte {
	return append(out, byte(c.Mode), c.Index, c.R, c.G, c.B)
}

// decodeParagraph reverses encodeParagraph.
func decodeParagraph(data []byte) ([]vt.Cell, error) {
	if len(data) == 0 || data[0] != codecVersion {
		return nil, fmt.Errorf("bad blob version")
	}
	body := data[1:]
	if len(body)%cellSize != 0 {
		return nil, fmt.Errorf("truncated blob (%d bytes)", len(body))
	}
	cells := make([]vt.Cell, 0, len(body)/cellSize)
	for i := 0; i < len(body); i += cellSize {
		rec := body[i : i+cellSize]
		var cell vt.Cell
		cell.Seq.Length = rec[0]
		if cell.Seq.Length > 4 {
			return nil, fmt.Errorf("bad sequence length %d", rec[0])
		}
		copy(cell.Seq.Bytes[:], rec[1:5])
		cell.Style.Attrs = vt.AttrSet(rec[5])
		cell.Style.FG = readColor(rec[6:11])
		cell.Style.BG = readColor(rec[11:16])
		cell.Wide = rec[16] != 0
		cells = append(cells, cell)
	}
	return cells, nil
}

func readColor(rec []byte) vt.Color {
	return vt.Color{
		Mode:  vt.ColorMode(rec[0]),
		Index: rec[1],
		R:     rec[2],
		G:     rec[3],
		B:     rec[4],
	}
}
