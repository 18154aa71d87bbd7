// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"io"
	"net"
	"time"
)

// Channel is the byte-oriented duplex collaborator the core assumes, per
// spec §1: "a byte-oriented duplex channel with read_exactly(n) and
// write_all(data) operations". Any io.ReadWriter works; in practice this is
// a net.Conn, but the core never dials one itself.
type Channel interface {
	io.Reader
	io.Writer
}

const defaultBufSize = 4096

// setReadDeadline and setWriteDeadline apply Config.ReadTimeout/WriteTimeout
// to ch when it's a net.Conn; a zero duration leaves any prior deadline in
// place (mirroring net.Conn.SetDeadline's own zero-value semantics). A
// Channel that isn't a net.Conn (a test double, a pipe) is left alone.
func setReadDeadline(ch Channel, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	conn, ok := ch.(net.Conn)
	if !ok {
		return nil
	}
	return conn.SetReadDeadline(time.Now().Add(d))
}

func setWriteDeadline(ch Channel, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	conn, ok := ch.(net.Conn)
	if !ok {
		return nil
	}
	return conn.SetWriteDeadline(time.Now().Add(d))
}

// readBuf is a small read-ahead buffer over a Channel, giving exact-n reads
// without forcing every caller through io.ReadFull's own allocation.
type readBuf struct {
	buf    []byte
	rd     io.Reader
	idx    int
	length int
}

func newReadBuf(rd io.Reader) *readBuf {
	return &readBuf{buf: make([]byte, defaultBufSize), rd: rd}
}

// next returns the next n bytes. The returned slice aliases the internal
// buffer and is only valid until the next call to next.
func (b *readBuf) next(n int) ([]byte, error) {
	if b.length < n {
		if err := b.fill(n); err != nil {
			return nil, err
		}
	}
	p := b.buf[b.idx : b.idx+n]
	b.idx += n
	b.length -= n
	return p, nil
}

func (b *readBuf) fill(need int) error {
	if b.length > 0 && b.idx > 0 {
		copy(b.buf[0:b.length], b.buf[b.idx:b.idx+b.length])
	}
	if need > len(b.buf) {
		newBuf := make([]byte, need)
		copy(newBuf, b.buf[:b.length])
		b.buf = newBuf
	}
	b.idx = 0

	for b.length < need {
		n, err := b.rd.Read(b.buf[b.length:])
		b.length += n
		if err != nil {
			if n > 0 && b.length >= need {
				return nil
			}
			return err
		}
	}
	return nil
}
