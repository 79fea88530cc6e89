// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"image"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawText draws s with face, the baseline of the first glyph starting at
// (x, y). It returns the x coordinate following the last glyph.
//
// Anti-aliased faces are thresholded to 1 bit.
func (b *Buffer) DrawText(x, y int, face font.Face, s string, c Color) int {
	d := font.Drawer{
		Dst:  b,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return d.Dot.X.Round()
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(face font.Face, s string) int {
	return font.MeasureString(face, s).Round()
}

// ParseTrueType loads a TrueType font and returns a face of size points at
// 72 DPI, so size is also the pixel height of the em square.
func ParseTrueType(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
