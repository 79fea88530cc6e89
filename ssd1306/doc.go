// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 controls a monochrome OLED display via a SSD1306 or SH1106
// controller.
//
// A Dev owns a framebuffer.Buffer: every drawing primitive of the buffer is
// available on the device and only touches memory. Display() sends the whole
// buffer to the controller, one page at a time. Nothing is visible until it is
// called.
//
// The device is usually connected over I²C, either a hardware bus or the
// bit-banged one of package bitbang. Boards wired for 4-wire SPI are supported
// too.
//
// The SH1106 has 132 columns of RAM for a 128 pixel wide panel. The visible
// area starts at column 2, so every page transfer is offset by two columns.
//
// Some boards expose a RES / Reset pin. It must be normally High. When
// Opts.Reset is set, the driver pulses it before sending the initialization
// sequence.
//
// # Datasheets
//
// SSD1306
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// SH1106
//
// https://cdn.velleman.eu/downloads/29/infosheets/sh1106_datasheet.pdf
package ssd1306
