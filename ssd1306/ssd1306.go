// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/GermanBionicSystems/oled/framebuffer"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type variant string

const (
	_CHARGEPUMP          = 0x8D
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DC_DC_SETTING       = 0xAD
	_DEACTIVATE_SCROLL   = 0x2E
	_ACTIVATE_SCROLL     = 0x2F
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
	_SETVSCROLLAREA      = 0xA3
)

const (
	_SSD1306 variant = "SSD1306"
	_SH1106  variant = "SH1106"
)

// ErrUnsupportedSize is returned by the constructors when the panel geometry
// is not one of 128x32, 128x64 or 96x16.
var ErrUnsupportedSize = errors.New("unsupported panel size")

// geometry holds the size dependent initialization values.
type geometry struct {
	clockDiv byte
	comPins  byte
}

// Only these panels are known to work; the COM pins layout is wired on the
// glass and cannot be deduced from the size alone.
var geometries = map[image.Point]geometry{
	{X: 128, Y: 64}: {clockDiv: 0x80, comPins: 0x12},
	{X: 128, Y: 32}: {clockDiv: 0x80, comPins: 0x02},
	{X: 96, Y: 16}:  {clockDiv: 0x60, comPins: 0x02},
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:    128,
	H:    32,
	Addr: 0x3C,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// SH1106 selects the SH1106 controller instead of the SSD1306.
	SH1106 bool
	// The I²C address of the display.
	Addr uint16
	// Reset is the optional RES pin. It is pulsed low before initialization.
	Reset gpio.PinOut
	// Contrast is the initial contrast. 0 selects the controller's
	// recommended value.
	Contrast byte
	// Rotated determines if the display is rotated by 180°.
	Rotated bool
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 or
// SH1106 display controller.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultOpts.Addr
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	return New(&i2c.Dev{Bus: b, Addr: addr}, opts)
}

// New returns a Dev object that talks to the controller through c using the
// I²C framing: a control byte selects between a stream of commands and a
// stream of display data.
func New(c conn.Conn, opts *Opts) (*Dev, error) {
	return newDev(c, opts, false, nil)
}

// NewSPI returns a Dev object that communicates over 4-wire SPI to a SSD1306
// or SH1106 display controller.
//
// The controllers can operate at up to 3.3MHz, which is much higher than I²C.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCK to SPI_CLK, CS to SPI_CS and D/C to dc.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("ssd1306: a dc pin is required, 3-wire SPI is not supported")
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	c, err := p.Connect(3300*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return newDev(c, opts, true, dc)
}

// Dev is an open handle to the display controller.
//
// The embedded Buffer is the display memory as seen by the host. Drawing
// into it is free; Display() makes it visible.
type Dev struct {
	*framebuffer.Buffer

	// Communication
	c   conn.Conn
	dc  gpio.PinOut
	spi bool

	variant variant
	// The SH1106 is a little funny. It's got 132 bytes wide of RAM, but 4 bytes
	// are unused, so you have to offset writes by two to account for it.
	startOffset byte
	// startLine is the current hardware start line, moved by ScrollUp.
	startLine int
	halted    bool
}

func (d *Dev) String() string {
	if d.spi {
		return fmt.Sprintf("%s.Dev{%s, %s, %s}", d.variant, d.c, d.dc, d.Bounds().Max)
	}
	return fmt.Sprintf("%s.Dev{%s, %s}", d.variant, d.c, d.Bounds().Max)
}

// Draw implements display.Drawer.
//
// src is thresholded into the buffer, then the whole buffer is sent. It draws
// synchronously: once this function returns, the display is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.DrawImage(r, src, sp)
	return d.Display()
}

// Display sends the buffer to the controller.
//
// Each page is preceded by its page and column address. On a slow bus
// (I²C at 100kHz) a 128x64 panel takes about 100ms.
func (d *Dev) Display() error {
	col := d.startOffset
	for page := 0; page < d.Pages(); page++ {
		err := d.sendCommand([]byte{
			_PAGESTARTADDRESS | byte(page),
			_SETLOWCOLUMN | (col & 0x0F),
			_SETHIGHCOLUMN | (col >> 4),
		})
		if err != nil {
			return err
		}
		if err := d.sendData(d.Page(page)); err != nil {
			return err
		}
	}
	return nil
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	err := d.sendCommand([]byte{_DISPLAYOFF})
	if err == nil {
		d.halted = true
	}
	return err
}

// newDev is the common initialization code that is independent of the
// communication protocol (I²C or SPI) being used.
func newDev(c conn.Conn, opts *Opts, usingSPI bool, dc gpio.PinOut) (*Dev, error) {
	d := &Dev{
		c:       c,
		spi:     usingSPI,
		dc:      dc,
		variant: _SSD1306,
	}
	if opts.SH1106 {
		d.variant = _SH1106
		d.startOffset = 2
	}
	g, ok := geometries[image.Pt(opts.W, opts.H)]
	if !ok {
		return nil, fmt.Errorf("%s: %w %dx%d", d.variant, ErrUnsupportedSize, opts.W, opts.H)
	}
	d.Buffer = framebuffer.New(opts.W, opts.H, nil)

	if opts.Reset != nil {
		if err := reset(opts.Reset); err != nil {
			return nil, fmt.Errorf("%s: reset: %w", d.variant, err)
		}
	}
	if err := d.sendCommand(getInitCmd(opts, d.variant, g)); err != nil {
		return nil, err
	}
	return d, nil
}

// reset pulses the RES pin.
func reset(p gpio.PinOut) error {
	if err := p.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	if err := p.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return p.Out(gpio.High)
}

func getInitCmd(opts *Opts, v variant, g geometry) []byte {
	// Set COM output scan direction; C0 means normal; C8 means reversed
	comScan := byte(_COMSCANDEC)
	// See page 40.
	columnAddr := byte(_SETSEGMENTREMAP)
	if opts.Rotated {
		// Change order both horizontally and vertically.
		comScan = _COMSCANINC
		columnAddr = _SEGREMAP
	}
	if v == _SH1106 {
		return getInitCmd1106(opts, g, columnAddr, comScan)
	}
	return getInitCmd1306(opts, g, columnAddr, comScan)
}

func getInitCmd1306(opts *Opts, g geometry, columnAddr, comScan byte) []byte {
	contrast := opts.Contrast
	if contrast == 0 {
		contrast = 0xCF
	}
	// Page 64 has the full recommended flow.
	return []byte{
		_DISPLAYOFF,                     // Display off
		_SETDISPLAYCLOCKDIV, g.clockDiv, // Set osc frequency and divide ratio
		_SETMULTIPLEX, byte(opts.H - 1), // Set multiplex ratio (number of lines to display)
		_SETDISPLAYOFFSET, 0x00, // Set display offset; 0
		_SETSTARTLINE,     // Start display start line; 0
		_CHARGEPUMP, 0x14, // Enable charge pump regulator; page 62
		_MEMORYMODE, 0x02, // Page addressing mode
		columnAddr,                // Set segment remap
		comScan,                   //
		_SETCOMPINS, g.comPins,    // Set COM pins hardware configuration; see page 40
		_SETCONTRAST, contrast,    //
		_SETPRECHARGE, 0xF1,       // Set pre-charge period; from adafruit driver
		_SETVCOMDETECT, 0x40,      // Set Vcomh deselect level; page 32
		_DISPLAYALLON_RESUME,      // Set display to use GDDRAM content
		_NORMALDISPLAY,            //
		_DEACTIVATE_SCROLL,        //
		_DISPLAYON,                // Display on
	}
}

func getInitCmd1106(opts *Opts, g geometry, columnAddr, comScan byte) []byte {
	contrast := opts.Contrast
	if contrast == 0 {
		contrast = 0x7F
	}
	// The SH1106 only has page addressing and uses a DC-DC converter instead
	// of a charge pump.
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYCLOCKDIV, g.clockDiv,
		_SETMULTIPLEX, byte(opts.H - 1),
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE,
		_DC_DC_SETTING, 0x8B, // DC-DC on
		columnAddr,
		comScan,
		_SETCOMPINS, g.comPins,
		_SETCONTRAST, contrast,
		_SETPRECHARGE, 0x22,
		_SETVCOMDETECT, 0x35,
		_DISPLAYALLON_RESUME,
		_NORMALDISPLAY,
		_DISPLAYON,
	}
}

func (d *Dev) sendData(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.sendCommand(nil); err != nil {
			return err
		}
	}
	if d.spi {
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

func (d *Dev) sendCommand(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		c = append([]byte{_DISPLAYON}, c...)
		d.halted = false
	}
	if d.spi {
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

var _ display.Drawer = &Dev{}
