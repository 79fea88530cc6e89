// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph holds fixed size bitmap font tables.
//
// A glyph is stored the same way as the display memory: one byte per column,
// bit 0 is the top pixel.
package glyph

// Table is an immutable fixed width font covering the character range
// [First, Last].
type Table struct {
	// Width is the number of columns (bytes) per glyph, spacing included.
	Width int
	// Height is the number of pixel rows per glyph. It is at most 8.
	Height int
	// First and Last bound the characters present in Data.
	First, Last byte
	// Fallback is rendered for characters outside [First, Last].
	Fallback byte
	// Data is the concatenation of all glyphs, Width bytes each.
	Data []byte
}

// Glyph returns the columns of character c.
//
// A blank glyph is returned when neither c nor the fallback is in the table.
// The returned slice aliases the table and must not be modified.
func (t *Table) Glyph(c byte) []byte {
	if c < t.First || c > t.Last {
		c = t.Fallback
	}
	if t.Width <= 0 {
		return nil
	}
	i := (int(c) - int(t.First)) * t.Width
	if c < t.First || c > t.Last || i+t.Width > len(t.Data) {
		return make([]byte, t.Width)
	}
	return t.Data[i : i+t.Width : i+t.Width]
}

// Len returns the number of glyphs in the table.
func (t *Table) Len() int {
	return int(t.Last) - int(t.First) + 1
}
