// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/oled/glyph"
)

// Color is a 1 bit pixel value.
//
// It implements color.Color so a Buffer can be used with image/draw.
type Color uint8

// Possible colors. White turns pixels on, Black turns them off.
const (
	Black Color = iota
	White
)

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	if c == White {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

// Model converts any color to Black or White by thresholding its luminance.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	// Same coefficients as color.GrayModel; 19595 + 38470 + 7471 = 65536 so the
	// sum fits in 32 bits and bit 31 is set at half luminance or above.
	if (19595*r+38470*g+7471*b+1<<15)>>31 != 0 {
		return White
	}
	return Black
}

// FillMode selects between outlined and filled shapes.
type FillMode uint8

// Possible fill modes.
const (
	Hollow FillMode = iota
	Solid
)

// Size is the text scaling.
type Size uint8

// Possible text sizes. DoubleSize replicates each font pixel 2x2.
const (
	NormalSize Size = iota
	DoubleSize
)

// Buffer is a page packed monochrome framebuffer.
type Buffer struct {
	w, h  int
	pages int
	// pix holds pages*w bytes; byte page*w+x covers rows page*8 to page*8+7
	// of column x.
	pix  []byte
	font *glyph.Table

	// Text stream state.
	x, y int
	tty  bool
}

// New returns a cleared w x h buffer that renders text with font.
//
// If font is nil, glyph.Font6x8 is used.
func New(w, h int, font *glyph.Table) *Buffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if font == nil {
		font = glyph.Font6x8
	}
	pages := (h + 7) / 8
	return &Buffer{
		w:     w,
		h:     h,
		pages: pages,
		pix:   make([]byte, pages*w),
		font:  font,
	}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("framebuffer.Buffer{%dx%d, %d pages}", b.w, b.h, b.pages)
}

// Width returns the width in pixels.
func (b *Buffer) Width() int {
	return b.w
}

// Height returns the height in pixels.
func (b *Buffer) Height() int {
	return b.h
}

// Pages returns the number of 8 pixel high pages.
func (b *Buffer) Pages() int {
	return b.pages
}

// Font returns the glyph table used for text.
func (b *Buffer) Font() *glyph.Table {
	return b.font
}

// Bytes returns the raw page packed memory.
//
// The slice aliases the buffer; it is valid for the lifetime of b.
func (b *Buffer) Bytes() []byte {
	return b.pix
}

// Page returns the bytes of one page, or nil if page is out of range.
func (b *Buffer) Page(page int) []byte {
	if page < 0 || page >= b.pages {
		return nil
	}
	return b.pix[page*b.w : (page+1)*b.w]
}

// Clear fills the whole buffer with c.
func (b *Buffer) Clear(c Color) {
	v := byte(0x00)
	if c == White {
		v = 0xFF
	}
	for i := range b.pix {
		b.pix[i] = v
	}
	b.maskTail()
}

// maskTail clears the bits of the last page that lie below the panel when
// the height is not a multiple of 8.
func (b *Buffer) maskTail() {
	rows := b.h - (b.pages-1)*8
	if b.pages == 0 || rows == 8 {
		return
	}
	m := byte(1)<<uint(rows) - 1
	last := b.pix[(b.pages-1)*b.w:]
	for i := range last {
		last[i] &= m
	}
}

// DrawPixel sets the pixel at (x, y) to c.
func (b *Buffer) DrawPixel(x, y int, c Color) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	i := y/8*b.w + x
	bit := byte(1) << uint(y&7)
	if c == White {
		b.pix[i] |= bit
	} else {
		b.pix[i] &^= bit
	}
}

// Pixel reports whether the pixel at (x, y) is on. Out of range pixels are
// off.
func (b *Buffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return false
	}
	return b.pix[y/8*b.w+x]&(1<<uint(y&7)) != 0
}

// DrawByte draws 8 vertical pixels at column x starting at row y. Bit 0 of v
// lands on row y.
//
// Set bits are drawn with c, clear bits leave the buffer untouched. When y is
// a multiple of 8 this is a single byte update, otherwise v is split across
// two pages.
func (b *Buffer) DrawByte(x, y int, v byte, c Color) {
	if x < 0 || x >= b.w {
		return
	}
	// Arithmetic shift and mask floor correctly for negative y.
	page, shift := y>>3, uint(y&7)
	if shift == 0 {
		b.put(x, page, v, c)
		return
	}
	b.put(x, page, v<<shift, c)
	b.put(x, page+1, v>>(8-shift), c)
}

// put applies the bits of v to one byte of memory.
func (b *Buffer) put(x, page int, v byte, c Color) {
	if page < 0 || page >= b.pages || v == 0 {
		return
	}
	if rows := b.h - page*8; rows < 8 {
		// Partial last page.
		v &= byte(1)<<uint(rows) - 1
	}
	i := page*b.w + x
	if c == White {
		b.pix[i] |= v
	} else {
		b.pix[i] &^= v
	}
}

// DrawBytes draws consecutive columns starting at (x, y), one byte per column
// as DrawByte does.
//
// With DoubleSize every bit covers 2x2 pixels: each byte becomes two columns
// 16 pixels high.
func (b *Buffer) DrawBytes(x, y int, data []byte, scaling Size, c Color) {
	if scaling != DoubleSize {
		for i, v := range data {
			b.DrawByte(x+i, y, v, c)
		}
		return
	}
	for i, v := range data {
		top, bottom := stretch(v&0x0F), stretch(v>>4)
		for dx := 0; dx < 2; dx++ {
			b.DrawByte(x+2*i+dx, y, top, c)
			b.DrawByte(x+2*i+dx, y+8, bottom, c)
		}
	}
}

// stretch doubles each of the 4 low bits of n.
func stretch(n byte) byte {
	var out byte
	for i := uint(0); i < 4; i++ {
		if n&(1<<i) != 0 {
			out |= 3 << (2 * i)
		}
	}
	return out
}

// ShiftUp moves the content up by lines pixel rows. The rows uncovered at the
// bottom are cleared.
func (b *Buffer) ShiftUp(lines int) {
	if lines <= 0 {
		return
	}
	if lines >= b.pages*8 {
		b.Clear(Black)
		return
	}
	// Rows below the panel must not move into view.
	b.maskTail()
	// Whole pages first.
	if n := lines / 8; n > 0 {
		copy(b.pix, b.pix[n*b.w:])
		tail := b.pix[(b.pages-n)*b.w:]
		for i := range tail {
			tail[i] = 0
		}
	}
	shift := uint(lines & 7)
	if shift == 0 {
		return
	}
	for page := 0; page < b.pages; page++ {
		for x := 0; x < b.w; x++ {
			i := page*b.w + x
			v := b.pix[i] >> shift
			if page+1 < b.pages {
				v |= b.pix[i+b.w] << (8 - shift)
			}
			b.pix[i] = v
		}
	}
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image. Min is always {0, 0}.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.w, b.h)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	if b.Pixel(x, y) {
		return White
	}
	return Black
}

// Set implements draw.Image.
func (b *Buffer) Set(x, y int, c color.Color) {
	b.DrawPixel(x, y, convert(c).(Color))
}

// DrawImage composes src into the rectangle r, thresholding its colors to
// Black and White.
func (b *Buffer) DrawImage(r image.Rectangle, src image.Image, sp image.Point) {
	draw.Draw(b, r, src, sp, draw.Src)
}

var _ draw.Image = &Buffer{}
