// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"errors"
	"fmt"
	"io"
)

// DrawCharacter draws ch with its top left corner at (x, y) and returns the
// number of columns used: the font width, doubled for DoubleSize.
//
// Only the glyph pixels are drawn; the background is left as is.
func (b *Buffer) DrawCharacter(x, y int, ch byte, scaling Size, c Color) int {
	b.DrawBytes(x, y, b.font.Glyph(ch), scaling, c)
	if scaling == DoubleSize {
		return 2 * b.font.Width
	}
	return b.font.Width
}

// DrawString draws s from left to right starting at (x, y). It does not wrap.
func (b *Buffer) DrawString(x, y int, s string, scaling Size, c Color) {
	for i := 0; i < len(s); i++ {
		x += b.DrawCharacter(x, y, s[i], scaling, c)
	}
}

// DrawStringFrom is DrawString with the characters read from src up to
// io.EOF or a NUL byte, for strings that live outside of regular memory.
func (b *Buffer) DrawStringFrom(x, y int, src io.ByteReader, scaling Size, c Color) error {
	for {
		ch, err := src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ch == 0 {
			return nil
		}
		x += b.DrawCharacter(x, y, ch, scaling, c)
	}
}

// SetCursor moves the text stream cursor used by Write.
func (b *Buffer) SetCursor(x, y int) {
	b.x, b.y = x, y
}

// Cursor returns the text stream cursor.
func (b *Buffer) Cursor() (x, y int) {
	return b.x, b.y
}

// SetTTYMode enables or disables TTY mode. In TTY mode the text stream
// handles '\n' as a line feed and '\r' as a carriage return instead of
// drawing them.
func (b *Buffer) SetTTYMode(enabled bool) {
	b.tty = enabled
}

// TTYMode reports whether TTY mode is enabled.
func (b *Buffer) TTYMode() bool {
	return b.tty
}

// WriteByte draws ch at the cursor with NormalSize in White and advances the
// cursor. When the next character would not fit on the line, the cursor
// moves to the start of the next line; past the last line it wraps back to
// the top. It never fails.
func (b *Buffer) WriteByte(ch byte) error {
	if b.tty {
		switch ch {
		case '\n':
			b.newline()
			return nil
		case '\r':
			b.x = 0
			return nil
		}
	}
	b.x += b.DrawCharacter(b.x, b.y, ch, NormalSize, White)
	if b.x+b.font.Width > b.w {
		b.newline()
	}
	return nil
}

func (b *Buffer) newline() {
	b.x = 0
	b.y += b.font.Height
	if b.y+b.font.Height > b.h {
		b.y = 0
	}
}

// Write implements io.Writer on top of WriteByte. It always consumes all of p.
func (b *Buffer) Write(p []byte) (int, error) {
	for _, ch := range p {
		_ = b.WriteByte(ch)
	}
	return len(p), nil
}

// WriteString implements io.StringWriter on top of WriteByte.
func (b *Buffer) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		_ = b.WriteByte(s[i])
	}
	return len(s), nil
}

// Printf formats according to format and writes the result at the cursor.
func (b *Buffer) Printf(format string, args ...interface{}) (int, error) {
	return fmt.Fprintf(b, format, args...)
}

// PrintfAt moves the cursor to (x, y) then calls Printf.
func (b *Buffer) PrintfAt(x, y int, format string, args ...interface{}) (int, error) {
	b.SetCursor(x, y)
	return b.Printf(format, args...)
}

var (
	_ io.Writer       = &Buffer{}
	_ io.ByteWriter   = &Buffer{}
	_ io.StringWriter = &Buffer{}
)
