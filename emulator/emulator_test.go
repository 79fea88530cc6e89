// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

func newController(t *testing.T, opts Opts) *Controller {
	c, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func tx(t *testing.T, c *Controller, w ...byte) {
	if err := c.Tx(0x3C, w, nil); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	for _, opts := range []Opts{{W: 0, H: 32}, {W: 128, H: 65}, {W: 129, H: 32}, {W: 133, H: 64, SH1106: true}} {
		if _, err := New(opts); err == nil {
			t.Errorf("New(%+v) succeeded", opts)
		}
	}
	c := newController(t, Opts{W: 128, H: 64, SH1106: true})
	if s := c.String(); s != "emulator.SH1106{128x64@0x3c}" {
		t.Errorf("String() = %q", s)
	}
	if st := c.State(); st.On || st.Mode != PageAddressing {
		t.Errorf("unexpected reset state %+v", st)
	}
	if err := c.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if c.Speed() != 400*physic.KiloHertz {
		t.Errorf("Speed() = %s", c.Speed())
	}
}

func TestWrongAddress(t *testing.T) {
	c := newController(t, DefaultOpts)
	d := i2c.Dev{Bus: c, Addr: 0x3D}
	if err := d.Tx([]byte{0x00, 0xAF}, nil); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("got %v, want %v", err, ErrNoDevice)
	}
	if c.State().On {
		t.Error("command from another address was executed")
	}
}

func TestInvalidControlByte(t *testing.T) {
	c := newController(t, DefaultOpts)
	if err := c.Tx(0x3C, []byte{0x01, 0xAF}, nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPageAddressing(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x00, 0xB1, 0x05, 0x10)
	tx(t, c, 0x40, 1, 2, 3)
	got := c.Bytes()
	want := make([]byte, 4*128)
	copy(want[128+5:], []byte{1, 2, 3})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if st := c.State(); st.Page != 1 || st.Column != 8 {
		t.Errorf("pointer at page %d column %d, want 1, 8", st.Page, st.Column)
	}

	// The column wraps within the page.
	tx(t, c, 0x00, 0xB2, 0x0F, 0x17)
	tx(t, c, 0x40, 0xAA, 0xBB)
	if st := c.State(); st.Page != 2 || st.Column != 1 {
		t.Errorf("pointer at page %d column %d, want 2, 1", st.Page, st.Column)
	}
	got = c.Bytes()
	if got[2*128+127] != 0xAA || got[2*128] != 0xBB {
		t.Errorf("wrap failed: %#02x %#02x", got[2*128+127], got[2*128])
	}
}

func TestHorizontalAddressing(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x00, 0x20, HorizontalAddressing, 0x21, 4, 5, 0x22, 0, 1)
	tx(t, c, 0x40, 1, 2, 3, 4, 5)
	got := c.Bytes()
	if diff := cmp.Diff([]byte{5, 2}, got[4:6]); diff != "" {
		t.Errorf("page 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{3, 4}, got[128+4:128+6]); diff != "" {
		t.Errorf("page 1 (-want +got):\n%s", diff)
	}
}

func TestVerticalAddressing(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x00, 0x20, VerticalAddressing, 0x21, 0, 1, 0x22, 2, 3)
	tx(t, c, 0x40, 1, 2, 3)
	got := c.Bytes()
	if got[2*128] != 1 || got[3*128] != 2 || got[2*128+1] != 3 {
		t.Errorf("unexpected RAM %v %v", got[2*128:2*128+2], got[3*128:3*128+2])
	}
}

func TestContinuationBit(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x80, 0xAF, 0xC0, 0x55, 0x00, 0xA7, 0xC8)
	st := c.State()
	if !st.On || !st.Inverted || !st.ComScanDec {
		t.Errorf("unexpected state %+v", st)
	}
	if got := c.Bytes()[0]; got != 0x55 {
		t.Errorf("data byte = %#02x, want 0x55", got)
	}
}

func TestCommandAcrossTransactions(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x00, 0x81)
	if got := c.State().Contrast; got != 0x7F {
		t.Fatalf("contrast changed early to %#02x", got)
	}
	tx(t, c, 0x00, 0x10)
	if got := c.State().Contrast; got != 0x10 {
		t.Errorf("Contrast = %#02x, want 0x10", got)
	}
}

func TestScrollState(t *testing.T) {
	c := newController(t, DefaultOpts)
	tx(t, c, 0x00, 0x2E, 0x27, 0x00, 1, 0x00, 3, 0x00, 0xFF, 0x2F)
	want := State{
		Contrast:      0x7F,
		Mode:          PageAddressing,
		Multiplex:     64,
		ChargePump:    0x10,
		Scrolling:     true,
		ScrollCommand: 0x27,
		FirstPage:     1,
		LastPage:      3,
	}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	tx(t, c, 0x00, 0x2E, 0xA3, 0x00, 32, 0x29, 0x00, 0, 0x00, 2, 0x01, 0x2F)
	if st := c.State(); !st.Scrolling || st.ScrollCommand != 0x29 || st.LastPage != 2 {
		t.Errorf("unexpected state %+v", st)
	}
	tx(t, c, 0x00, 0x2E)
	if c.State().Scrolling {
		t.Error("still scrolling")
	}
	if c.Unknown() != 0 {
		t.Errorf("%d unknown commands", c.Unknown())
	}
}

func TestImage(t *testing.T) {
	c := newController(t, Opts{W: 16, H: 16})
	// Pixel (1, 2) in RAM.
	tx(t, c, 0x00, 0xB0, 0x01, 0x10)
	tx(t, c, 0x40, 0x04)

	lit := func(img *image.Gray) []image.Point {
		var out []image.Point
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if img.GrayAt(x, y).Y != 0 {
					out = append(out, image.Pt(x, y))
				}
			}
		}
		return out
	}

	if got := lit(c.Image()); len(got) != 0 {
		t.Errorf("display off shows %v", got)
	}
	tx(t, c, 0x00, 0xA1, 0xC8, 0xAF)
	if diff := cmp.Diff([]image.Point{{1, 2}}, lit(c.Image())); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	// Rotated by 180°.
	tx(t, c, 0x00, 0xA0, 0xC0)
	if diff := cmp.Diff([]image.Point{{14, 13}}, lit(c.Image())); diff != "" {
		t.Errorf("rotated (-want +got):\n%s", diff)
	}
	// Start line 2 moves RAM row 2 to the top.
	tx(t, c, 0x00, 0xA1, 0xC8, 0x42)
	if diff := cmp.Diff([]image.Point{{1, 0}}, lit(c.Image())); diff != "" {
		t.Errorf("start line (-want +got):\n%s", diff)
	}
	tx(t, c, 0x00, 0x40, 0xA7)
	if got := lit(c.Image()); len(got) != 16*16-1 {
		t.Errorf("inverted: %d pixels lit", len(got))
	}
	tx(t, c, 0x00, 0xA6, 0xA5)
	if got := lit(c.Image()); len(got) != 16*16 {
		t.Errorf("all on: %d pixels lit", len(got))
	}
}

func TestSH1106Offset(t *testing.T) {
	c := newController(t, Opts{W: 128, H: 64, SH1106: true})
	tx(t, c, 0x00, 0xB3, 0x02, 0x10)
	tx(t, c, 0x40, 0xFF)
	got := c.Bytes()
	if len(got) != 8*128 || got[3*128] != 0xFF {
		t.Errorf("column 2 of RAM is not column 0 of the panel")
	}
	tx(t, c, 0x00, 0xB3, 0x03, 0x18)
	tx(t, c, 0x40, 1)
	if st := c.State(); st.Column != 0 {
		t.Errorf("Column = %d, want 0 after wrapping at 132", st.Column)
	}
}

func TestStatus(t *testing.T) {
	c := newController(t, DefaultOpts)
	r := []byte{0}
	if err := c.Tx(0x3C, nil, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0x40 {
		t.Errorf("status = %#02x, want 0x40", r[0])
	}
	if err := c.Tx(0x3C, []byte{0x00, 0xAF}, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0 {
		t.Errorf("status = %#02x, want 0", r[0])
	}
}
