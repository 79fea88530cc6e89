// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oled-demo draws a few screens on a SSD1306 or SH1106 display.
//
// The display is reached over a hardware I²C bus, a bit-banged I²C bus on two
// GPIOs, or emulated and shown in the terminal or in a browser:
//
//	oled-demo -target i2c -i2c-bus 1 -height 64
//	oled-demo -target bitbang -sda GPIO22 -scl GPIO21 -sh1106
//	oled-demo -target term -height 32
//	oled-demo -target http -http :8080
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/oled/bitbang"
	"github.com/GermanBionicSystems/oled/emulator"
	"github.com/GermanBionicSystems/oled/framebuffer"
	"github.com/GermanBionicSystems/oled/preview"
	"github.com/GermanBionicSystems/oled/ssd1306"
	"github.com/GermanBionicSystems/oled/termview"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// panel is the display and, when emulated, where its image is mirrored.
type panel struct {
	dev  *ssd1306.Dev
	emu  *emulator.Controller
	view display.Drawer
}

// show sends the buffer to the controller and refreshes the view.
func (p *panel) show() error {
	if err := p.dev.Display(); err != nil {
		return err
	}
	if p.emu == nil {
		return nil
	}
	return p.view.Draw(p.view.Bounds(), p.emu.Image(), image.Point{})
}

func splash(w, h int, face font.Face) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(1, 1, float64(w-2), float64(h-2), 6)
	dc.Stroke()
	dc.SetFontFace(face)
	dc.DrawStringAnchored("periph oled", float64(w)/2, float64(h)/2, 0.5, 0.5)
	return dc.Image()
}

func shapes(b *framebuffer.Buffer) {
	w, h := b.Width(), b.Height()
	b.Clear(framebuffer.Black)
	b.DrawRectangle(0, 0, w-1, h-1, framebuffer.Hollow, framebuffer.White)
	b.DrawLine(0, 0, w-1, h-1, framebuffer.White)
	b.DrawLine(0, h-1, w-1, 0, framebuffer.White)
	b.DrawCircle(w/2, h/2, h/3, framebuffer.Solid, framebuffer.White)
	b.DrawCircle(w/2, h/2, h/6, framebuffer.Solid, framebuffer.Black)
}

func text(b *framebuffer.Buffer, face font.Face) {
	b.Clear(framebuffer.Black)
	b.DrawString(0, 0, "OLED", framebuffer.DoubleSize, framebuffer.White)
	b.DrawText(0, b.Height()-2, face, "x/image/font", framebuffer.White)
	if b.Height() > 32 {
		b.PrintfAt(0, 24, "%dx%d", b.Width(), b.Height())
	}
}

func terminal(p *panel, lines int, delay time.Duration) error {
	p.dev.Clear(framebuffer.Black)
	p.dev.SetCursor(0, 0)
	p.dev.SetTTYMode(true)
	defer p.dev.SetTTYMode(false)
	for i := 0; i < lines; i++ {
		if _, err := p.dev.Printf("%s %d\n", time.Now().Format("15:04:05"), i); err != nil {
			return err
		}
		if err := p.show(); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

func openFace(name string) (font.Face, error) {
	switch name {
	case "":
		return basicfont.Face7x13, nil
	case "goregular":
		return framebuffer.ParseTrueType(goregular.TTF, 12)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return framebuffer.ParseTrueType(b, 12)
}

func mainImpl() error {
	target := flag.String("target", "i2c", "output: i2c, bitbang, term or http")
	busName := flag.String("i2c-bus", "", "I²C bus to use")
	addr := flag.Uint("addr", 0x3C, "I²C address of the display")
	sda := flag.String("sda", "GPIO22", "SDA pin of the bit-banged bus")
	scl := flag.String("scl", "GPIO21", "SCL pin of the bit-banged bus")
	var speed physic.Frequency
	flag.Var(&speed, "speed", "I²C bus speed")
	width := flag.Int("width", 128, "display width")
	height := flag.Int("height", 64, "display height")
	sh1106 := flag.Bool("sh1106", false, "the controller is a SH1106")
	rotated := flag.Bool("rotated", false, "rotate the display by 180°")
	httpAddr := flag.String("http", ":8080", "listening address of the http target")
	ttf := flag.String("ttf", "", "TrueType font file, or goregular; defaults to a 7x13 bitmap font")
	loop := flag.Int("loop", 1, "number of times to run the demo, 0 to loop forever")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *addr > 0x7F {
		return fmt.Errorf("invalid address %#x", *addr)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	face, err := openFace(*ttf)
	if err != nil {
		return err
	}

	p := &panel{}
	var bus i2c.BusCloser
	switch *target {
	case "i2c":
		if bus, err = i2creg.Open(*busName); err != nil {
			return err
		}
		if speed != 0 {
			if err := bus.SetSpeed(speed); err != nil {
				return err
			}
		}
	case "bitbang":
		if bus, err = bitbang.Open(*sda, *scl, speed); err != nil {
			return err
		}
	case "term", "http":
		if p.emu, err = emulator.New(emulator.Opts{W: *width, H: *height, SH1106: *sh1106, Addr: uint16(*addr)}); err != nil {
			return err
		}
		bus = p.emu
		if *target == "term" {
			p.view = termview.New(&termview.Opts{W: *width, H: *height})
		} else {
			s := preview.New(&preview.Opts{W: *width, H: *height, Scale: 4})
			p.view = s
			go func() {
				log.Printf("serving on %s", *httpAddr)
				if err := http.ListenAndServe(*httpAddr, s); err != nil {
					log.Printf("http: %v", err)
				}
			}()
		}
		defer p.view.Halt()
	default:
		return fmt.Errorf("unknown target %q", *target)
	}
	defer bus.Close()
	log.Printf("using %s", bus)

	p.dev, err = ssd1306.NewI2C(bus, &ssd1306.Opts{
		W:       *width,
		H:       *height,
		SH1106:  *sh1106,
		Addr:    uint16(*addr),
		Rotated: *rotated,
	})
	if err != nil {
		return err
	}
	log.Printf("display %s", p.dev)
	defer p.dev.Halt()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	pause := func(d time.Duration) bool {
		select {
		case <-stop:
			return false
		case <-time.After(d):
			return true
		}
	}

	for i := 0; *loop == 0 || i < *loop; i++ {
		p.dev.Clear(framebuffer.Black)
		p.dev.DrawImage(p.dev.Bounds(), splash(*width, *height, face), image.Point{})
		if err := p.show(); err != nil {
			return err
		}
		if !pause(2 * time.Second) {
			return nil
		}

		shapes(p.dev.Buffer)
		if err := p.show(); err != nil {
			return err
		}
		if !pause(2 * time.Second) {
			return nil
		}

		text(p.dev.Buffer, face)
		if err := p.show(); err != nil {
			return err
		}
		if err := p.dev.SetScrolling(ssd1306.HorizontalRight, 0, p.dev.Pages()-1); err != nil {
			return err
		}
		if !pause(2 * time.Second) {
			return nil
		}
		if err := p.dev.SetScrolling(ssd1306.NoScrolling, 0, 0); err != nil {
			return err
		}

		if err := terminal(p, 12, 250*time.Millisecond); err != nil {
			return err
		}
		if err := p.dev.ScrollUp(0, 20*time.Millisecond); err != nil {
			return err
		}
		if err := p.show(); err != nil {
			return err
		}
		if !pause(time.Second) {
			return nil
		}
		if err := p.dev.SetStartLine(0); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "oled-demo: %s.\n", err)
		os.Exit(1)
	}
}
