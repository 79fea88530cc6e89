// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package emulator implements a SSD1306 / SH1106 controller in software.
//
// A Controller is an i2c.Bus with a single device on it. It decodes the
// command and data streams the way the chip does and keeps the display RAM,
// so the output of a driver can be inspected or shown without hardware.
package emulator

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNoDevice is returned when a transaction targets another address.
var ErrNoDevice = errors.New("emulator: no device at address")

// Opts defines the emulated panel.
type Opts struct {
	W, H int
	// SH1106 emulates the SH1106 and its 132 columns of RAM.
	SH1106 bool
	// Addr is the I²C address the controller answers to.
	Addr uint16
}

// DefaultOpts is a 128x32 SSD1306 at the usual address.
var DefaultOpts = Opts{W: 128, H: 32, Addr: 0x3C}

// Addressing modes, as set with command 0x20.
const (
	HorizontalAddressing byte = 0
	VerticalAddressing   byte = 1
	PageAddressing       byte = 2
)

const (
	ramPages = 8
	ramRows  = ramPages * 8
)

// State is a snapshot of the controller registers.
type State struct {
	On       bool
	Inverted bool
	// AllOn is set by command 0xA5: every pixel lit regardless of RAM.
	AllOn     bool
	Contrast  byte
	StartLine int
	Offset    int
	// Scrolling is true between commands 0x2F and 0x2E.
	Scrolling bool
	// ScrollCommand, FirstPage and LastPage are from the last scroll setup.
	ScrollCommand byte
	FirstPage     int
	LastPage      int
	Mode          byte
	Page, Column  int
	// SegRemap and ComScanDec are the orientation bits (0xA1 and 0xC8).
	SegRemap   bool
	ComScanDec bool
	Multiplex  int
	ChargePump byte
	DCDC       byte
}

// Controller emulates one controller on an I²C bus.
type Controller struct {
	mu    sync.Mutex
	opts  Opts
	speed physic.Frequency

	ramWidth int
	ram      [ramPages][]byte
	st       State
	// window of the horizontal and vertical addressing modes.
	colStart, colEnd   int
	pageStart, pageEnd int
	// pending holds a command waiting for its arguments.
	pending []byte
	// unknown counts the command bytes that were ignored.
	unknown int
}

// New returns a controller in its power on reset state.
func New(opts Opts) (*Controller, error) {
	if opts.W <= 0 || opts.H <= 0 || opts.H > ramRows {
		return nil, fmt.Errorf("emulator: invalid size %dx%d", opts.W, opts.H)
	}
	if opts.Addr == 0 {
		opts.Addr = DefaultOpts.Addr
	}
	c := &Controller{opts: opts, ramWidth: 128}
	if opts.SH1106 {
		c.ramWidth = 132
	}
	if opts.W > c.ramWidth {
		return nil, fmt.Errorf("emulator: width %d larger than the RAM", opts.W)
	}
	for i := range c.ram {
		c.ram[i] = make([]byte, c.ramWidth)
	}
	c.st = State{
		Contrast:  0x7F,
		Mode:      PageAddressing,
		Multiplex: ramRows,
	}
	if !opts.SH1106 {
		c.st.ChargePump = 0x10
	}
	c.colEnd = c.ramWidth - 1
	c.pageEnd = ramPages - 1
	return c, nil
}

func (c *Controller) String() string {
	v := "SSD1306"
	if c.opts.SH1106 {
		v = "SH1106"
	}
	return fmt.Sprintf("emulator.%s{%dx%d@%#x}", v, c.opts.W, c.opts.H, c.opts.Addr)
}

// SetSpeed implements i2c.Bus. The speed is recorded and otherwise ignored.
func (c *Controller) SetSpeed(f physic.Frequency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = f
	return nil
}

// Speed returns the last speed set with SetSpeed.
func (c *Controller) Speed() physic.Frequency {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Close implements i2c.BusCloser.
func (c *Controller) Close() error {
	return nil
}

// Tx implements i2c.Bus.
//
// w starts with a control byte. Bit 6 (D/C#) selects data over commands;
// with bit 7 (Co) set only the next byte is covered and another control byte
// follows. Reading returns the status byte; bit 6 is set while the display is
// off.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	if addr != c.opts.Addr {
		return fmt.Errorf("%w %#x", ErrNoDevice, addr)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(w) > 0 {
		ctrl := w[0]
		w = w[1:]
		if ctrl&0x3F != 0 {
			return fmt.Errorf("emulator: invalid control byte %#02x", ctrl)
		}
		if ctrl&0x80 == 0 {
			if ctrl&0x40 != 0 {
				c.data(w)
			} else {
				c.commands(w)
			}
			break
		}
		if len(w) == 0 {
			break
		}
		if ctrl&0x40 != 0 {
			c.data(w[:1])
		} else {
			c.commands(w[:1])
		}
		w = w[1:]
	}
	if len(r) != 0 {
		var status byte
		if !c.st.On {
			status |= 0x40
		}
		for i := range r {
			r[i] = status
		}
	}
	return nil
}

// State returns a snapshot of the registers.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Unknown returns the number of command bytes that were not understood.
func (c *Controller) Unknown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unknown
}

// Bytes returns a copy of the RAM under the panel, in the page packed layout
// of the host buffer: H/8 pages of W bytes. The SH1106 column offset is
// removed. The orientation and start line are not applied.
func (c *Controller) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	off := c.columnOffset()
	pages := (c.opts.H + 7) / 8
	out := make([]byte, 0, pages*c.opts.W)
	for p := 0; p < pages; p++ {
		out = append(out, c.ram[p][off:off+c.opts.W]...)
	}
	return out
}

// Image returns what the panel shows: the RAM seen through the start line,
// the orientation, the inversion and the power state.
func (c *Controller) Image() *image.Gray {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := image.NewGray(image.Rect(0, 0, c.opts.W, c.opts.H))
	if !c.st.On {
		return img
	}
	off := c.columnOffset()
	for y := 0; y < c.opts.H; y++ {
		row := y
		if !c.st.ComScanDec {
			row = c.opts.H - 1 - y
		}
		row = (row + c.st.StartLine + c.st.Offset) % ramRows
		for x := 0; x < c.opts.W; x++ {
			col := off + x
			if !c.st.SegRemap {
				col = off + c.opts.W - 1 - x
			}
			lit := c.st.AllOn || c.ram[row/8][col]&(1<<uint(row&7)) != 0
			if c.st.Inverted {
				lit = !lit
			}
			if lit {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}

// columnOffset is the first RAM column wired to the panel.
func (c *Controller) columnOffset() int {
	if c.opts.SH1106 {
		return 2
	}
	return 0
}

// argCount returns the number of argument bytes following cmd.
func argCount(cmd byte) int {
	switch cmd {
	case 0x20, 0x81, 0x8D, 0xA8, 0xAD, 0xD3, 0xD5, 0xD9, 0xDA, 0xDB:
		return 1
	case 0x21, 0x22, 0xA3:
		return 2
	case 0x29, 0x2A:
		return 5
	case 0x26, 0x27:
		return 6
	}
	return 0
}

// commands feeds command bytes. A command may span transactions.
func (c *Controller) commands(b []byte) {
	for _, v := range b {
		c.pending = append(c.pending, v)
		if len(c.pending) > argCount(c.pending[0]) {
			c.exec(c.pending[0], c.pending[1:])
			c.pending = c.pending[:0]
		}
	}
}

func (c *Controller) exec(cmd byte, args []byte) {
	st := &c.st
	switch {
	case cmd <= 0x0F:
		st.Column = st.Column&0xF0 | int(cmd)
	case cmd <= 0x1F:
		st.Column = int(cmd&0x0F)<<4 | st.Column&0x0F
	case cmd == 0x20:
		st.Mode = args[0] & 3
	case cmd == 0x21:
		c.colStart, c.colEnd = int(args[0])%c.ramWidth, int(args[1])%c.ramWidth
		st.Column = c.colStart
	case cmd == 0x22:
		c.pageStart, c.pageEnd = int(args[0]&7), int(args[1]&7)
		st.Page = c.pageStart
	case cmd == 0x26 || cmd == 0x27:
		st.ScrollCommand = cmd
		st.FirstPage, st.LastPage = int(args[1]&7), int(args[3]&7)
	case cmd == 0x29 || cmd == 0x2A:
		st.ScrollCommand = cmd
		st.FirstPage, st.LastPage = int(args[1]&7), int(args[3]&7)
	case cmd == 0x2E:
		st.Scrolling = false
	case cmd == 0x2F:
		st.Scrolling = true
	case cmd >= 0x40 && cmd <= 0x7F:
		st.StartLine = int(cmd & 0x3F)
	case cmd == 0x81:
		st.Contrast = args[0]
	case cmd == 0x8D:
		st.ChargePump = args[0]
	case cmd == 0xA0 || cmd == 0xA1:
		st.SegRemap = cmd == 0xA1
	case cmd == 0xA3:
		// Vertical scroll area; only used by the real scrolling engine.
	case cmd == 0xA4 || cmd == 0xA5:
		st.AllOn = cmd == 0xA5
	case cmd == 0xA6 || cmd == 0xA7:
		st.Inverted = cmd == 0xA7
	case cmd == 0xA8:
		st.Multiplex = int(args[0]&0x3F) + 1
	case cmd == 0xAD:
		st.DCDC = args[0]
	case cmd == 0xAE || cmd == 0xAF:
		st.On = cmd == 0xAF
	case cmd >= 0xB0 && cmd <= 0xB7:
		st.Page = int(cmd & 7)
	case cmd == 0xC0 || cmd == 0xC8:
		st.ComScanDec = cmd == 0xC8
	case cmd == 0xD3:
		st.Offset = int(args[0] & 0x3F)
	case cmd == 0xD5, cmd == 0xD9, cmd == 0xDA, cmd == 0xDB:
		// Timing and analog settings.
	default:
		c.unknown++
	}
}

// data writes display data at the RAM pointer and advances it according to
// the addressing mode.
func (c *Controller) data(b []byte) {
	st := &c.st
	for _, v := range b {
		if st.Column >= c.ramWidth {
			st.Column %= c.ramWidth
		}
		c.ram[st.Page][st.Column] = v
		switch st.Mode {
		case HorizontalAddressing:
			if st.Column++; st.Column > c.colEnd {
				st.Column = c.colStart
				if st.Page++; st.Page > c.pageEnd {
					st.Page = c.pageStart
				}
			}
		case VerticalAddressing:
			if st.Page++; st.Page > c.pageEnd {
				st.Page = c.pageStart
				if st.Column++; st.Column > c.colEnd {
					st.Column = c.colStart
				}
			}
		default:
			// The page does not change; the column wraps within the RAM.
			st.Column = (st.Column + 1) % c.ramWidth
		}
	}
}

var _ i2c.BusCloser = &Controller{}
