// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"fmt"
	"time"
)

// ScrollEffect selects the continuous scrolling mode of the controller.
type ScrollEffect byte

// Possible scroll effects. The values are the controller's command bytes.
const (
	NoScrolling     ScrollEffect = 0
	HorizontalRight ScrollEffect = 0x26
	HorizontalLeft  ScrollEffect = 0x27
	DiagonalRight   ScrollEffect = 0x29
	DiagonalLeft    ScrollEffect = 0x2A
)

func (s ScrollEffect) String() string {
	switch s {
	case NoScrolling:
		return "NoScrolling"
	case HorizontalRight:
		return "HorizontalRight"
	case HorizontalLeft:
		return "HorizontalLeft"
	case DiagonalRight:
		return "DiagonalRight"
	case DiagonalLeft:
		return "DiagonalLeft"
	default:
		return fmt.Sprintf("ScrollEffect(%#02x)", byte(s))
	}
}

// SetPower turns the display and its voltage converter on or off.
//
// The display memory is retained while off.
func (d *Dev) SetPower(on bool) error {
	if d.variant == _SH1106 {
		if on {
			return d.sendCommand([]byte{_DC_DC_SETTING, 0x8B, _DISPLAYON})
		}
		return d.sendCommand([]byte{_DISPLAYOFF, _DC_DC_SETTING, 0x8A})
	}
	if on {
		return d.sendCommand([]byte{_CHARGEPUMP, 0x14, _DISPLAYON})
	}
	return d.sendCommand([]byte{_DISPLAYOFF, _CHARGEPUMP, 0x10})
}

// SetInvert inverts the display (black on white vs white on black).
func (d *Dev) SetInvert(blackOnWhite bool) error {
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return d.sendCommand(b)
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// SetScrolling starts or stops the controller's continuous scrolling of the
// pages firstPage to lastPage, both included.
//
// Pages are clamped to the panel and may be given in any order. The scrolling
// runs on the controller without further traffic; NoScrolling stops it.
// Display() does not stop it.
func (d *Dev) SetScrolling(effect ScrollEffect, firstPage, lastPage int) error {
	switch effect {
	case NoScrolling:
		return d.sendCommand([]byte{_DEACTIVATE_SCROLL})
	case HorizontalRight, HorizontalLeft, DiagonalRight, DiagonalLeft:
	default:
		return fmt.Errorf("%s: invalid scroll effect %s", d.variant, effect)
	}
	first, last := d.clampPage(firstPage), d.clampPage(lastPage)
	if first > last {
		first, last = last, first
	}
	if effect == HorizontalRight || effect == HorizontalLeft {
		// page 28
		// <op>, dummy, <start page>, <rate>, <end page>, dummy, dummy, <ENABLE>
		return d.sendCommand([]byte{
			_DEACTIVATE_SCROLL,
			byte(effect), 0x00, first, 0x00, last, 0x00, 0xFF,
			_ACTIVATE_SCROLL,
		})
	}
	// page 29
	// page 30: 0xA3 permits to set rows for scroll area.
	// <op>, dummy, <start page>, <rate>, <end page>, <offset>, <ENABLE>
	return d.sendCommand([]byte{
		_DEACTIVATE_SCROLL,
		_SETVSCROLLAREA, 0x00, byte(d.Height()),
		byte(effect), 0x00, first, 0x00, last, 0x01,
		_ACTIVATE_SCROLL,
	})
}

func (d *Dev) clampPage(p int) byte {
	if p < 0 {
		return 0
	}
	if p >= d.Pages() {
		return byte(d.Pages() - 1)
	}
	return byte(p)
}

// SetStartLine sets the RAM row shown at the top of the panel, effectively
// scrolling the screen to that position.
//
// startLine must be between 0 and 63.
func (d *Dev) SetStartLine(startLine int) error {
	if startLine < 0 || startLine > 63 {
		return fmt.Errorf("%s: invalid startLine %d", d.variant, startLine)
	}
	if err := d.sendCommand([]byte{_SETSTARTLINE | byte(startLine)}); err != nil {
		return err
	}
	d.startLine = startLine
	return nil
}

// StartLine returns the RAM row currently shown at the top of the panel.
func (d *Dev) StartLine() int {
	return d.startLine
}

// ScrollUp moves the panel content up by lines pixel rows, one row at a time,
// by stepping the hardware start line. It sleeps delay after each step and
// blocks until done. lines of 0 means one text line (8 rows).
//
// The buffer is not touched: rows scrolled in at the bottom show whatever the
// RAM holds there. Use SetStartLine(0) to go back, or Buffer.ShiftUp followed
// by Display to make the scroll permanent.
func (d *Dev) ScrollUp(lines int, delay time.Duration) error {
	if lines < 0 {
		return fmt.Errorf("%s: invalid lines %d", d.variant, lines)
	}
	if lines == 0 {
		lines = d.Font().Height
	}
	for i := 0; i < lines; i++ {
		if err := d.SetStartLine((d.startLine + 1) & 63); err != nil {
			return err
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}
