// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// randomBoundary returns a MIME multipart boundary (RFC 2046, 5.1.1).
func randomBoundary() string {
	var buf [30]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", buf[:])
}

// frameWriter writes an endless multipart stream. Every part is followed by
// the next boundary line so the client shows the frame immediately.
//
// mime/multipart.Writer only writes a boundary when the next part starts.
type frameWriter struct {
	w        io.Writer
	boundary string
	started  bool
	buf      bytes.Buffer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: w, boundary: randomBoundary()}
}

// writeFrame sends one part. header is modified to carry the Content-Length.
func (f *frameWriter) writeFrame(header textproto.MIMEHeader, body []byte) error {
	header.Set("Content-Length", strconv.Itoa(len(body)))
	f.buf.Reset()
	if !f.started {
		fmt.Fprintf(&f.buf, "--%s\r\n", f.boundary)
		f.started = true
	}
	for name, values := range header {
		for _, v := range values {
			fmt.Fprintf(&f.buf, "%s: %s\r\n", name, v)
		}
	}
	f.buf.WriteString("\r\n")
	f.buf.Write(body)
	fmt.Fprintf(&f.buf, "\r\n--%s\r\n", f.boundary)
	_, err := f.buf.WriteTo(f.w)
	return err
}
