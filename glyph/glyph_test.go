// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"bytes"
	"testing"
)

func TestFont6x8Layout(t *testing.T) {
	f := Font6x8
	if got, want := len(f.Data), f.Len()*f.Width; got != want {
		t.Fatalf("len(Data) = %d, want %d", got, want)
	}
	if f.Len() != 96 {
		t.Errorf("Len() = %d, want 96", f.Len())
	}
	for c := int(f.First); c <= int(f.Last); c++ {
		g := f.Glyph(byte(c))
		if len(g) != 6 {
			t.Fatalf("Glyph(%#x) has %d columns", c, len(g))
		}
		if g[0] != 0 {
			t.Errorf("Glyph(%q) spacing column is %#02x", rune(c), g[0])
		}
		for _, col := range g {
			if col&0x80 != 0 {
				t.Errorf("Glyph(%q) uses the bottom row: %#02x", rune(c), col)
			}
		}
	}
}

func TestGlyph(t *testing.T) {
	if got, want := Font6x8.Glyph('A'), []byte{0x00, 0x7E, 0x11, 0x11, 0x11, 0x7E}; !bytes.Equal(got, want) {
		t.Errorf("Glyph('A') = %#v, want %#v", got, want)
	}
	if got := Font6x8.Glyph(' '); !bytes.Equal(got, make([]byte, 6)) {
		t.Errorf("Glyph(' ') = %#v, want blank", got)
	}
	del := Font6x8.Glyph(0x7F)
	for _, c := range []byte{0x00, '\n', 0x1F, 0x80, 0xFF} {
		if got := Font6x8.Glyph(c); !bytes.Equal(got, del) {
			t.Errorf("Glyph(%#x) = %#v, want fallback %#v", c, got, del)
		}
	}
}

func TestGlyphFallbackOutsideTable(t *testing.T) {
	digits := &Table{Width: 6, Height: 8, First: '0', Last: '9', Fallback: ' ', Data: Font6x8.Data[('0'-0x20)*6 : ('9'-0x20+1)*6]}
	if got := digits.Glyph('1'); !bytes.Equal(got, Font6x8.Glyph('1')) {
		t.Errorf("Glyph('1') = %#v", got)
	}
	for _, c := range []byte{'A', ' ', 0x00, 0xFF} {
		if got := digits.Glyph(c); !bytes.Equal(got, make([]byte, 6)) {
			t.Errorf("Glyph(%#x) = %#v, want blank", c, got)
		}
	}
	short := &Table{Width: 6, Height: 8, First: 'a', Last: 'z', Fallback: 'a', Data: make([]byte, 12)}
	if got := short.Glyph('z'); !bytes.Equal(got, make([]byte, 6)) {
		t.Errorf("Glyph('z') of a truncated table = %#v, want blank", got)
	}
}
