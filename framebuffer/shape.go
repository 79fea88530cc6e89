// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

// DrawLine draws a line from (x0, y0) to (x1, y1), both ends included.
func (b *Buffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	switch {
	case y0 == y1:
		b.hline(x0, x1, y0, c)
		return
	case x0 == x1:
		b.vline(x0, y0, y1, c)
		return
	}

	// Integer Bresenham valid for all octants.
	dx, sx := x1-x0, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y0-y1, 1
	if dy > 0 {
		dy, sy = -dy, -1
	}
	e := dx + dy
	for {
		b.DrawPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// hline draws the horizontal span [x0, x1] on row y.
func (b *Buffer) hline(x0, x1, y int, c Color) {
	if y < 0 || y >= b.h {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= b.w {
		x1 = b.w - 1
	}
	row := b.pix[y/8*b.w:]
	bit := byte(1) << uint(y&7)
	for x := x0; x <= x1; x++ {
		if c == White {
			row[x] |= bit
		} else {
			row[x] &^= bit
		}
	}
}

// vline draws the vertical span [y0, y1] on column x, a whole byte at a time
// where the span covers complete pages.
func (b *Buffer) vline(x, y0, y1 int, c Color) {
	if x < 0 || x >= b.w {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= b.h {
		y1 = b.h - 1
	}
	for y := y0; y <= y1; {
		if y&7 == 0 && y+7 <= y1 {
			b.DrawByte(x, y, 0xFF, c)
			y += 8
			continue
		}
		b.DrawPixel(x, y, c)
		y++
	}
}

// DrawRectangle draws the rectangle with corners (x0, y0) and (x1, y1), both
// included. The corners may be given in any order.
func (b *Buffer) DrawRectangle(x0, y0, x1, y1 int, mode FillMode, c Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if mode == Solid {
		for x := x0; x <= x1; x++ {
			b.vline(x, y0, y1, c)
		}
		return
	}
	b.hline(x0, x1, y0, c)
	b.hline(x0, x1, y1, c)
	b.vline(x0, y0, y1, c)
	b.vline(x1, y0, y1, c)
}

// DrawCircle draws a circle centered on (x0, y0).
//
// A Hollow circle is a 1 pixel wide outline; a Solid one is filled with
// horizontal spans. Parts outside of the buffer are clipped.
func (b *Buffer) DrawCircle(x0, y0, radius int, mode FillMode, c Color) {
	if radius < 0 {
		return
	}
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	if mode == Solid {
		b.hline(x0-radius, x0+radius, y0, c)
		b.vline(x0, y0-radius, y0+radius, c)
	} else {
		b.DrawPixel(x0, y0+radius, c)
		b.DrawPixel(x0, y0-radius, c)
		b.DrawPixel(x0+radius, y0, c)
		b.DrawPixel(x0-radius, y0, c)
	}
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}
		x++
		ddFx += 2
		f += ddFx

		if mode == Solid {
			b.hline(x0-x, x0+x, y0+y, c)
			b.hline(x0-x, x0+x, y0-y, c)
			b.hline(x0-y, x0+y, y0+x, c)
			b.hline(x0-y, x0+y, y0-x, c)
			continue
		}
		b.DrawPixel(x0+x, y0+y, c)
		b.DrawPixel(x0-x, y0+y, c)
		b.DrawPixel(x0+x, y0-y, c)
		b.DrawPixel(x0-x, y0-y, c)
		b.DrawPixel(x0+y, y0+x, c)
		b.DrawPixel(x0-y, y0+x, c)
		b.DrawPixel(x0+y, y0-x, c)
		b.DrawPixel(x0-y, y0-x, c)
	}
}
