// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements an I²C bus on two GPIO pins.
//
// It is meant for boards where the display is wired to pins that are not
// connected to a hardware I²C controller.
//
// The lines are open drain: a line is released by switching the pin to input
// with its pull-up, and pulled low by driving the pin Low. A line is never
// driven High. External pull-ups are still recommended above 100kHz.
//
// Only 7 bit addresses and a single master are supported. The slave may
// stretch the clock.
package bitbang

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNoAck is returned when no device acknowledged its address.
var ErrNoAck = errors.New("bitbang: no ACK from device")

// ErrTimeout is returned when a device stretched the clock for too long.
var ErrTimeout = errors.New("bitbang: clock stretching timeout")

const (
	// DefaultSpeed is the I²C standard mode.
	DefaultSpeed = 100 * physic.KiloHertz
	maxSpeed     = physic.MegaHertz
	// stretchTimeout is the SMBus clock low timeout.
	stretchTimeout = 25 * time.Millisecond
)

// I2C is a bit-banged I²C bus.
type I2C struct {
	mu         sync.Mutex
	sda        gpio.PinIO
	scl        gpio.PinIO
	halfPeriod time.Duration
	// err is the first pin error of the current transaction.
	err error
}

// New returns a bus on the sda and scl pins, clocked at f. A zero f selects
// DefaultSpeed.
//
// Both lines are released.
func New(sda, scl gpio.PinIO, f physic.Frequency) (*I2C, error) {
	if sda == nil || scl == nil || sda == gpio.INVALID || scl == gpio.INVALID {
		return nil, errors.New("bitbang: both pins are required")
	}
	if f == 0 {
		f = DefaultSpeed
	}
	i := &I2C{sda: sda, scl: scl}
	if err := i.SetSpeed(f); err != nil {
		return nil, err
	}
	i.release(sda)
	i.release(scl)
	if i.err != nil {
		return nil, i.err
	}
	return i, nil
}

// Open is New with the pins looked up by name in the gpioreg registry, for
// example "GPIO22" and "GPIO21".
func Open(sdaName, sclName string, f physic.Frequency) (*I2C, error) {
	sda := gpioreg.ByName(sdaName)
	if sda == nil {
		return nil, fmt.Errorf("bitbang: unknown pin %q", sdaName)
	}
	scl := gpioreg.ByName(sclName)
	if scl == nil {
		return nil, fmt.Errorf("bitbang: unknown pin %q", sclName)
	}
	return New(sda, scl, f)
}

func (i *I2C) String() string {
	return fmt.Sprintf("bitbang.I2C{%s, %s}", i.sda, i.scl)
}

// SetSpeed implements i2c.Bus.
func (i *I2C) SetSpeed(f physic.Frequency) error {
	if f <= 0 || f > maxSpeed {
		return fmt.Errorf("bitbang: invalid speed %s", f)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.halfPeriod = f.Period() / 2
	return nil
}

// Close implements i2c.BusCloser. It releases both lines.
func (i *I2C) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = nil
	i.release(i.sda)
	i.release(i.scl)
	return i.err
}

// SCL implements i2c.Pins.
func (i *I2C) SCL() gpio.PinIO {
	return i.scl
}

// SDA implements i2c.Pins.
func (i *I2C) SDA() gpio.PinIO {
	return i.sda
}

// Tx implements i2c.Bus.
//
// w is written first, then r is read after a repeated start. A NACK of the
// address aborts the transaction with ErrNoAck. Data bytes that are not
// acknowledged are not reported.
func (i *I2C) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("bitbang: invalid address %#x, 10 bit addressing is not supported", addr)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = nil

	i.start()
	nack := false
	if len(w) != 0 || len(r) == 0 {
		if nack = !i.writeByte(byte(addr << 1)); !nack {
			for _, b := range w {
				i.writeByte(b)
			}
		}
	}
	if !nack && len(r) != 0 {
		if len(w) != 0 {
			i.start()
		}
		if nack = !i.writeByte(byte(addr<<1) | 1); !nack {
			for j := range r {
				r[j] = i.readByte(j == len(r)-1)
			}
		}
	}
	i.stop()

	if i.err != nil {
		return i.err
	}
	if nack {
		return fmt.Errorf("%w %#x", ErrNoAck, addr)
	}
	return nil
}

// start sends a START condition, or a repeated START: SDA falls while SCL is
// high. SCL is left low.
func (i *I2C) start() {
	i.release(i.sda)
	i.sclHigh()
	i.pull(i.sda)
	i.delay()
	i.pull(i.scl)
	i.delay()
}

// stop sends a STOP condition: SDA rises while SCL is high. Both lines are
// left released.
func (i *I2C) stop() {
	i.pull(i.sda)
	i.delay()
	i.sclHigh()
	i.release(i.sda)
	i.delay()
}

// writeByte sends b MSB first and returns true if the device acknowledged it.
func (i *I2C) writeByte(b byte) bool {
	for bit := 7; bit >= 0; bit-- {
		if b&(1<<uint(bit)) != 0 {
			i.release(i.sda)
		} else {
			i.pull(i.sda)
		}
		i.delay()
		i.sclHigh()
		i.pull(i.scl)
	}
	i.release(i.sda)
	i.delay()
	i.sclHigh()
	ack := i.sda.Read() == gpio.Low
	i.pull(i.scl)
	return ack
}

// readByte reads a byte MSB first. The last byte of a read is not
// acknowledged so the device releases SDA for the STOP.
func (i *I2C) readByte(last bool) byte {
	var b byte
	i.release(i.sda)
	for bit := 0; bit < 8; bit++ {
		i.delay()
		i.sclHigh()
		b <<= 1
		if i.sda.Read() == gpio.High {
			b |= 1
		}
		i.pull(i.scl)
	}
	if last {
		i.release(i.sda)
	} else {
		i.pull(i.sda)
	}
	i.delay()
	i.sclHigh()
	i.pull(i.scl)
	i.release(i.sda)
	return b
}

// sclHigh releases SCL, waits for devices stretching the clock, then waits
// half a period.
func (i *I2C) sclHigh() {
	i.release(i.scl)
	deadline := time.Now().Add(stretchTimeout)
	for i.err == nil && i.scl.Read() == gpio.Low {
		if time.Now().After(deadline) {
			i.fail(ErrTimeout)
			break
		}
		i.delay()
	}
	i.delay()
}

func (i *I2C) release(p gpio.PinIO) {
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		i.fail(fmt.Errorf("bitbang: %s: %w", p, err))
	}
}

func (i *I2C) pull(p gpio.PinIO) {
	if err := p.Out(gpio.Low); err != nil {
		i.fail(fmt.Errorf("bitbang: %s: %w", p, err))
	}
}

// fail records the first error of the transaction.
func (i *I2C) fail(err error) {
	if err != nil && i.err == nil {
		i.err = err
	}
}

// delay busy waits for half a clock period; time.Sleep is far too coarse for
// a few microseconds.
func (i *I2C) delay() {
	for start := time.Now(); time.Since(start) < i.halfPeriod; {
	}
}

var _ i2c.BusCloser = &I2C{}
var _ i2c.Pins = &I2C{}
