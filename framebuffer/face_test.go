// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

func countSet(b *Buffer) int {
	n := 0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Pixel(x, y) {
				n++
			}
		}
	}
	return n
}

func TestDrawTextBasicFont(t *testing.T) {
	b := New(128, 32, nil)
	end := b.DrawText(2, 11, basicfont.Face7x13, "Hi", White)
	if end != 2+2*7 {
		t.Errorf("DrawText() = %d, want %d", end, 2+2*7)
	}
	if got := MeasureText(basicfont.Face7x13, "Hi"); got != 14 {
		t.Errorf("MeasureText() = %d, want 14", got)
	}
	if countSet(b) == 0 {
		t.Fatal("nothing drawn")
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 128; x++ {
			if b.Pixel(x, y) && (x < 2 || x >= end || y > 13) {
				t.Errorf("(%d,%d) set outside of the text box", x, y)
			}
		}
	}

	// Drawing the same text in Black erases it.
	b.DrawText(2, 11, basicfont.Face7x13, "Hi", Black)
	if n := countSet(b); n != 0 {
		t.Errorf("%d pixels left", n)
	}
}

func TestParseTrueType(t *testing.T) {
	face, err := ParseTrueType(goregular.TTF, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	b := New(128, 32, nil)
	end := b.DrawText(0, 20, face, "OLED", White)
	if end <= 0 || end != MeasureText(face, "OLED") {
		t.Errorf("DrawText() = %d, MeasureText() = %d", end, MeasureText(face, "OLED"))
	}
	if countSet(b) == 0 {
		t.Fatal("nothing drawn")
	}
}

func TestParseTrueTypeInvalid(t *testing.T) {
	if _, err := ParseTrueType([]byte("not a font"), 12); err == nil {
		t.Fatal("expected an error")
	}
}
