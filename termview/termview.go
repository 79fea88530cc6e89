// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that shows a monochrome panel
// in the terminal (stdout) using ANSI color codes.
//
// Useful to work on a screen layout before the display is wired, usually
// together with the emulator package.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// On and Off are the colors of lit and dark pixels. They default to white
	// and black.
	On, Off color.Color
	Palette *ansi256.Palette
	// Out defaults to stdout.
	Out io.Writer

	_ struct{}
}

// DefaultOpts is a 128x64 white panel.
var DefaultOpts = Opts{W: 128, H: 64}

// Dev is a monochrome panel drawn on the console. Each pixel is one
// character cell; every frame overwrites the previous one.
type Dev struct {
	w       io.Writer
	rect    image.Rectangle
	on, off string

	pixels []bool
	drawn  bool
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	on, off := opts.On, opts.Off
	if on == nil {
		on = color.White
	}
	if off == nil {
		off = color.Black
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:      w,
		rect:   image.Rect(0, 0, opts.W, opts.H),
		on:     p.Block(color.NRGBAModel.Convert(on).(color.NRGBA)),
		off:    p.Block(color.NRGBAModel.Convert(off).(color.NRGBA)),
		pixels: make([]bool, opts.W*opts.H),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("termview{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := io.WriteString(d.w, "\033[0m\n")
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// Pixels at half luminance or above are lit.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.rect)
	delta := sp.Sub(r.Min)
	sb := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x, y).Add(delta)
			if !p.In(sb) {
				continue
			}
			g := color.GrayModel.Convert(src.At(p.X, p.Y)).(color.Gray)
			d.pixels[y*d.rect.Dx()+x] = g.Y >= 0x80
		}
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.drawn {
		// Move back to the top of the previous frame.
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", d.rect.Dy())
	}
	w := d.rect.Dx()
	for y := 0; y < d.rect.Dy(); y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for _, lit := range d.pixels[y*w : (y+1)*w] {
			if lit {
				_, _ = d.buf.WriteString(d.on)
			} else {
				_, _ = d.buf.WriteString(d.off)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
