// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview serves a monochrome panel over HTTP.
//
// A Server is a display.Drawer and an http.Handler. Every GET request gets the
// current frame, then a new frame each time Draw is called, as a
// "multipart/x-mixed-replace" stream (MJPEG) that browsers show in an <img>
// tag. The pixels are enlarged by an integer factor so a 128x64 panel is
// readable on a desktop screen.
//
// URL parameters:
//
//	format=png|jpeg  image format, defaults to Opts.Format
//	scale=N          zoom factor from 1 to 16, defaults to Opts.Scale
//	snapshot         send a single image instead of a stream
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"periph.io/x/conn/v3/display"
)

const maxScale = 16

// Format is the image encoding of the served frames.
type Format int

// Supported formats. PNG is lossless and compresses a 1 bit panel very well.
const (
	PNG Format = iota
	JPEG
)

var formats = map[string]Format{"png": PNG, "jpg": JPEG, "jpeg": JPEG}

// ParseFormat returns the Format named by the "format" URL parameter.
func ParseFormat(name string) (Format, error) {
	if f, ok := formats[name]; ok {
		return f, nil
	}
	return PNG, fmt.Errorf("preview: unrecognized image format %q", name)
}

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	}
	return strconv.Itoa(int(f))
}

// contentType is the MIME type of a frame.
func (f Format) contentType() string {
	return "image/" + strings.ToLower(f.String())
}

func (f Format) encode(w io.Writer, img image.Image) error {
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
	return fmt.Errorf("preview: unhandled image format %s", f)
}

// Opts for a preview Server.
type Opts struct {
	W, H int
	// Scale is the zoom factor; 0 selects 4.
	Scale  int
	Format Format
	// On and Off are the colors of lit and dark pixels. They default to white
	// and black.
	On, Off color.Color
}

// DefaultOpts is a 128x64 panel shown as PNG at 4x.
var DefaultOpts = Opts{W: 128, H: 64, Scale: 4}

// Server streams the last drawn frame to HTTP clients.
type Server struct {
	format  Format
	scale   int
	palette color.Palette

	mu      sync.Mutex
	pix     *image.Paletted
	clients map[*client]struct{}
	cache   map[frameConfig][]byte
}

type frameConfig struct {
	format Format
	scale  int
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// New returns a Server with all pixels off.
func New(opts *Opts) *Server {
	on, off := opts.On, opts.Off
	if on == nil {
		on = color.White
	}
	if off == nil {
		off = color.Black
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultOpts.Scale
	}
	if scale > maxScale {
		scale = maxScale
	}
	p := color.Palette{off, on}
	return &Server{
		format:  opts.Format,
		scale:   scale,
		palette: p,
		pix:     image.NewPaletted(image.Rect(0, 0, opts.W, opts.H), p),
		clients: map[*client]struct{}{},
		cache:   map[frameConfig][]byte{},
	}
}

func (s *Server) String() string {
	return fmt.Sprintf("preview{%dx%d}", s.pix.Rect.Dx(), s.pix.Rect.Dy())
}

// Halt implements conn.Resource. It ends all the running streams.
func (s *Server) Halt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
	return nil
}

// ColorModel implements display.Drawer.
func (s *Server) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (s *Server) Bounds() image.Rectangle {
	return s.pix.Rect
}

// Draw implements display.Drawer.
//
// Pixels at half luminance or above are lit.
func (s *Server) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = r.Intersect(s.pix.Rect)
	delta := sp.Sub(r.Min)
	sb := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x, y).Add(delta)
			if !p.In(sb) {
				continue
			}
			var idx uint8
			if color.GrayModel.Convert(src.At(p.X, p.Y)).(color.Gray).Y >= 0x80 {
				idx = 1
			}
			s.pix.SetColorIndex(x, y, idx)
		}
	}
	s.cache = map[frameConfig][]byte{}
	for c := range s.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	return nil
}

// frame returns the encoded current frame. The returned slice must not be
// modified.
func (s *Server) frame(cfg frameConfig) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.cache[cfg]; ok {
		return b, nil
	}
	src := s.pix.Rect
	img := image.NewPaletted(image.Rect(0, 0, src.Dx()*cfg.scale, src.Dy()*cfg.scale), s.palette)
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			img.SetColorIndex(x, y, s.pix.ColorIndexAt(x/cfg.scale, y/cfg.scale))
		}
	}
	var buf bytes.Buffer
	if err := cfg.format.encode(&buf, img); err != nil {
		return nil, err
	}
	s.cache[cfg] = buf.Bytes()
	return buf.Bytes(), nil
}

func (s *Server) configFromQuery(values url.Values) (frameConfig, error) {
	cfg := frameConfig{format: s.format, scale: s.scale}
	if v := values.Get("format"); v != "" {
		f, err := ParseFormat(v)
		if err != nil {
			return cfg, err
		}
		cfg.format = f
	}
	if v := values.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxScale {
			return cfg, fmt.Errorf("preview: scale must be between 1 and %d", maxScale)
		}
		cfg.scale = n
	}
	return cfg, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	cfg, err := s.configFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := q["snapshot"]; ok {
		b, err := s.frame(cfg)
		if err != nil {
			log.Printf("preview: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", cfg.format.contentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		if _, err := w.Write(b); err != nil {
			log.Printf("preview: %v", err)
		}
		return
	}

	fw := newFrameWriter(w)
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": fw.boundary}))
	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", cfg.format.contentType())
	for {
		b, err := s.frame(cfg)
		if err != nil {
			log.Printf("preview: %v", err)
			return
		}
		// A write error means the client went away; there is no way to report
		// it inside the stream.
		if err := fw.writeFrame(header, b); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

var _ display.Drawer = &Server{}
var _ http.Handler = &Server{}
