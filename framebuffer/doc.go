// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuffer implements an in-memory 1 bit framebuffer laid out the
// way SSD1306 and SH1106 OLED controllers store their display RAM.
//
// The memory is organized into pages, each a horizontal band of 8 pixel rows.
// Each byte represents 8 vertical pixels of one column; bit 0 is the top
// pixel, bit 7 the bottom one. A 128x32 buffer is 4 pages of 128 bytes.
//
// Bitmaps use the same format, with any width and a height that is a multiple
// of 8. Text and bitmaps can be drawn at any position but vertical positions
// on page boundaries (y = 0, 8, 16, ...) are faster as whole bytes are
// written at once.
//
// Coordinate (0, 0) is the top left corner. Anything drawn outside of the
// buffer is silently clipped; drawing never fails.
//
// Buffer is not safe for concurrent use.
package framebuffer
