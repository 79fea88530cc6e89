// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"errors"
	"io"
)

// DrawBitmap draws a w x h bitmap with its top left corner at (x, y).
//
// data uses the buffer layout: h/8 pages of w bytes, bit 0 is the top pixel.
// h is rounded up to a multiple of 8. Set bits are drawn with c, clear bits
// are transparent.
//
// Short data is not an error: the bytes present are drawn and the missing
// trailing bytes are treated as clear. Use DrawBitmapFrom with a
// bytes.Reader to have a truncated bitmap reported.
func (b *Buffer) DrawBitmap(x, y, w, h int, data []byte, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	for page := 0; page < (h+7)/8; page++ {
		start := page * w
		if start >= len(data) {
			return
		}
		end := start + w
		if end > len(data) {
			end = len(data)
		}
		b.DrawBytes(x, y+page*8, data[start:end], NormalSize, c)
	}
}

// DrawBitmapFrom is DrawBitmap with the bitmap read from src, for bitmaps
// that live outside of regular memory (flash, a file, a memory mapped ROM).
//
// Unlike DrawBitmap, short input is an error: when src ends before
// (h+7)/8*w bytes it returns io.ErrUnexpectedEOF. Other read errors are
// returned as is. In both cases everything read before the error is drawn.
func (b *Buffer) DrawBitmapFrom(x, y, w, h int, src io.ReaderAt, c Color) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	row := make([]byte, w)
	for page := 0; page < (h+7)/8; page++ {
		n, err := src.ReadAt(row, int64(page*w))
		b.DrawBytes(x, y+page*8, row[:n], NormalSize, c)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if n == w {
					continue
				}
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}
