// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sizes are the supported panel geometries plus an odd one.
var sizes = []image.Point{
	image.Pt(128, 32),
	image.Pt(128, 64),
	image.Pt(96, 16),
	image.Pt(13, 11),
}

func TestNew(t *testing.T) {
	for _, s := range sizes {
		t.Run(s.String(), func(t *testing.T) {
			b := New(s.X, s.Y, nil)
			pages := (s.Y + 7) / 8
			if b.Pages() != pages {
				t.Errorf("Pages() = %d, want %d", b.Pages(), pages)
			}
			if got, want := len(b.Bytes()), pages*s.X; got != want {
				t.Errorf("len(Bytes()) = %d, want %d", got, want)
			}
			if got := b.Bounds().Size(); got != s {
				t.Errorf("Bounds().Size() = %s, want %s", got, s)
			}
			if b.ColorModel() != Model {
				t.Error("unexpected color model")
			}
		})
	}
}

func TestClear(t *testing.T) {
	b := New(128, 32, nil)
	for _, tc := range []struct {
		c    Color
		want byte
	}{
		{White, 0xFF},
		{Black, 0x00},
	} {
		b.Clear(tc.c)
		for i, v := range b.Bytes() {
			if v != tc.want {
				t.Fatalf("Clear(%s): byte %d is %#02x, want %#02x", tc.c, i, v, tc.want)
			}
		}
	}
}

func TestDrawPixel(t *testing.T) {
	for _, s := range sizes {
		t.Run(s.String(), func(t *testing.T) {
			b := New(s.X, s.Y, nil)
			for y := 0; y < s.Y; y++ {
				for x := 0; x < s.X; x++ {
					b.DrawPixel(x, y, White)
					if v := b.Bytes()[y/8*s.X+x] & (1 << uint(y%8)); v == 0 {
						t.Fatalf("(%d,%d) not set", x, y)
					}
					if !b.Pixel(x, y) || b.At(x, y) != White {
						t.Fatalf("(%d,%d) not reported as set", x, y)
					}
					b.DrawPixel(x, y, Black)
					if v := b.Bytes()[y/8*s.X+x] & (1 << uint(y%8)); v != 0 {
						t.Fatalf("(%d,%d) not cleared", x, y)
					}
				}
			}
		})
	}
}

func TestDrawPixelOutOfBounds(t *testing.T) {
	for _, fill := range []Color{Black, White} {
		b := New(128, 32, nil)
		b.Clear(fill)
		want := append([]byte(nil), b.Bytes()...)
		inverse := White
		if fill == White {
			inverse = Black
		}
		for _, p := range []image.Point{{-1, 0}, {0, -1}, {128, 0}, {0, 32}, {200, 200}, {-50, 10}} {
			b.DrawPixel(p.X, p.Y, inverse)
			b.Set(p.X, p.Y, color.White)
		}
		if diff := cmp.Diff(want, b.Bytes()); diff != "" {
			t.Errorf("buffer changed (-want +got):\n%s", diff)
		}
	}
}

func TestDrawByte(t *testing.T) {
	for _, tc := range []struct {
		name string
		y    int
		v    byte
		c    Color
		want map[int]byte // offset -> value
	}{
		{"aligned", 8, 0xA5, White, map[int]byte{1*4 + 0: 0xA5}},
		{"split", 3, 0xFF, White, map[int]byte{0: 0xF8, 4: 0x07}},
		{"split high", 13, 0x81, White, map[int]byte{4: 0x20, 8: 0x10}},
		{"clipped top", -2, 0xFF, White, map[int]byte{0: 0x3F}},
		{"clipped bottom", 29, 0xFF, White, map[int]byte{12: 0xE0}},
		{"outside", 32, 0xFF, White, map[int]byte{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := New(4, 32, nil)
			b.DrawByte(0, tc.y, tc.v, tc.c)
			want := make([]byte, 16)
			for i, v := range tc.want {
				want[i] = v
			}
			if diff := cmp.Diff(want, b.Bytes()); diff != "" {
				t.Errorf("DrawByte(0, %d, %#02x) (-want +got):\n%s", tc.y, tc.v, diff)
			}
		})
	}
}

func TestDrawByteBlack(t *testing.T) {
	b := New(2, 16, nil)
	b.Clear(White)
	b.DrawByte(1, 4, 0x0F, Black)
	want := []byte{0xFF, 0x0F, 0xFF, 0xFF}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDrawBytePartialPage(t *testing.T) {
	// 11 rows: the second page only has rows 8..10.
	b := New(1, 11, nil)
	b.DrawByte(0, 8, 0xFF, White)
	if got := b.Bytes()[1]; got != 0x07 {
		t.Errorf("got %#02x, want 0x07", got)
	}
	b.Clear(Black)
	b.DrawByte(0, 6, 0xFF, White)
	if diff := cmp.Diff([]byte{0xC0, 0x07}, b.Bytes()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDrawBytesDoubleSize(t *testing.T) {
	b := New(4, 16, nil)
	b.DrawBytes(0, 0, []byte{0x81, 0x0F}, DoubleSize, White)
	want := []byte{
		0x03, 0x03, 0xFF, 0xFF, // page 0: low nibbles
		0xC0, 0xC0, 0x00, 0x00, // page 1: high nibbles
	}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStretch(t *testing.T) {
	for n, want := range map[byte]byte{0x0: 0x00, 0x1: 0x03, 0x2: 0x0C, 0x5: 0x33, 0xA: 0xCC, 0xF: 0xFF} {
		if got := stretch(n); got != want {
			t.Errorf("stretch(%#x) = %#02x, want %#02x", n, got, want)
		}
	}
}

func TestShiftUp(t *testing.T) {
	b := New(2, 24, nil)
	copy(b.Bytes(), []byte{0x01, 0x80, 0x02, 0x40, 0x04, 0x20})
	b.ShiftUp(1)
	if diff := cmp.Diff([]byte{0x00, 0x40, 0x01, 0x20, 0x02, 0x10}, b.Bytes()); diff != "" {
		t.Errorf("ShiftUp(1) (-want +got):\n%s", diff)
	}
	b.ShiftUp(9)
	if diff := cmp.Diff([]byte{0x00, 0x10, 0x01, 0x08, 0x00, 0x00}, b.Bytes()); diff != "" {
		t.Errorf("ShiftUp(9) (-want +got):\n%s", diff)
	}
	b.Clear(White)
	b.ShiftUp(24)
	if diff := cmp.Diff(make([]byte, 6), b.Bytes()); diff != "" {
		t.Errorf("ShiftUp(24) (-want +got):\n%s", diff)
	}
}

func TestShiftUpPartialPage(t *testing.T) {
	// 12 rows: rows 12..15 of the last page are not on the panel.
	b := New(8, 12, nil)
	b.Clear(White)
	for i, v := range b.Bytes()[8:] {
		if v != 0x0F {
			t.Fatalf("Clear(White): byte %d of the last page is %#02x, want 0x0f", i, v)
		}
	}
	b.ShiftUp(4)
	for y := 0; y < 12; y++ {
		if got, want := b.Pixel(3, y), y < 8; got != want {
			t.Errorf("after ShiftUp(4) row %d lit = %t, want %t", y, got, want)
		}
	}
	// Hidden bits written directly into the memory are not shifted in.
	b.Bytes()[8] = 0xF0
	b.ShiftUp(1)
	if b.Pixel(0, 11) {
		t.Error("hidden row shifted into the panel")
	}
}

func TestDrawImage(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		src.SetGray(i, i, color.Gray{Y: 0xF0})
		src.SetGray(7-i, i, color.Gray{Y: 0x10})
	}
	b := New(16, 8, nil)
	b.DrawImage(image.Rect(4, 0, 12, 8), src, image.Point{})
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			want := x-4 == y
			if got := b.Pixel(x, y); got != want {
				t.Errorf("(%d,%d) = %t, want %t", x, y, got, want)
			}
		}
	}
}

func TestModel(t *testing.T) {
	for _, tc := range []struct {
		in   color.Color
		want Color
	}{
		{color.White, White},
		{color.Black, Black},
		{color.Gray{Y: 0x7F}, Black},
		{color.Gray{Y: 0x80}, White},
		{color.RGBA{R: 0xFF, A: 0xFF}, Black},
		{color.RGBA{G: 0xFF, A: 0xFF}, White},
		{White, White},
	} {
		if got := Model.Convert(tc.in); got != tc.want {
			t.Errorf("Convert(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
