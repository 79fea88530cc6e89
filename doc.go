// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled is a container for a small monochrome OLED display driver.
//
// The framebuffer package rasterizes pixels, shapes, bitmaps and text into
// the page packed memory layout used by SSD1306 and SH1106 controllers, with
// no hardware dependency. The ssd1306 package transfers that buffer to a
// controller over I²C or SPI, and bitbang provides an I²C bus on two plain
// GPIO pins. emulator, termview and preview let the whole stack run on a
// host machine without a panel attached.
package oled
