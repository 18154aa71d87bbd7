// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"bytes"
	"io"
)

// reader is a cursor-based reader over a byte slice. It never copies the
// underlying slice; every returned []byte aliases it.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// uint reads a little-endian unsigned integer of n bytes (1, 2, 3, 4 or 8).
func (r *reader) uint(n int) (uint64, error) {
	b, err := r.bytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// lenencInt reads a length-encoded integer. isNull reports a leading 0xfb
// marker (used on row values; in other positions 0xfb is a protocol error,
// which callers reject by checking isNull where it cannot occur).
func (r *reader) lenencInt() (v uint64, isNull bool, err error) {
	tag, err := r.bytes(1)
	if err != nil {
		return 0, false, err
	}
	switch tag[0] {
	case 0xfb:
		return 0, true, nil
	case 0xfc:
		n, err := r.uint(2)
		return n, false, err
	case 0xfd:
		n, err := r.uint(3)
		return n, false, err
	case 0xfe:
		n, err := r.uint(8)
		return n, false, err
	case 0xff:
		return 0, false, ErrProtocolFraming
	default:
		return uint64(tag[0]), false, nil
	}
}

// lenencUint reads a lenenc integer that is never expected to be the NULL
// marker (header fields such as affected_rows are lenenc-encoded but are
// never nullable).
func (r *reader) lenencUint() (uint64, error) {
	v, isNull, err := r.lenencInt()
	if err != nil {
		return 0, err
	}
	if isNull {
		return 0, ErrProtocolFraming
	}
	return v, nil
}

// lenencBytes reads a length-encoded byte string (lenenc length then that
// many bytes). A leading 0xfb is a protocol error here; use nullSafeBytes
// for row values, where 0xfb means NULL.
func (r *reader) lenencBytes() ([]byte, error) {
	n, isNull, err := r.lenencInt()
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, ErrProtocolFraming
	}
	return r.bytes(int(n))
}

// nullSafeBytes is the null-safe variant used for text-protocol row values:
// a leading 0xfb is an explicit NULL, reported via ok == false.
func (r *reader) nullSafeBytes() (b []byte, ok bool, err error) {
	n, isNull, err := r.lenencInt()
	if err != nil {
		return nil, false, err
	}
	if isNull {
		return nil, false, nil
	}
	b, err = r.bytes(int(n))
	return b, true, err
}

// nullTerminated reads bytes up to and including the first 0x00, returning
// everything before it. It is a protocol error for no terminator to appear.
func (r *reader) nullTerminated() ([]byte, error) {
	idx := bytes.IndexByte(r.data[r.pos:], 0x00)
	if idx < 0 {
		return nil, ErrProtocolFraming
	}
	b := r.data[r.pos : r.pos+idx]
	r.pos += idx + 1
	return b, nil
}

// eofBytes returns every remaining byte.
func (r *reader) eofBytes() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

// writer is a growable little-endian byte builder, symmetric with reader.
type writer struct {
	buf bytes.Buffer
}

func newWriter() *writer {
	return new(writer)
}

func (w *writer) Bytes() []byte { return w.buf.Bytes() }

func (w *writer) bytes(b []byte) {
	w.buf.Write(b)
}

func (w *writer) uint(n int, v uint64) {
	var b [8]byte
	for i := 0; i < n; i++ {
		b[i] = byte(v >> (8 * i))
	}
	w.buf.Write(b[:n])
}

func (w *writer) uint8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) uint16(v uint16) { w.uint(2, uint64(v)) }
func (w *writer) uint24(v uint32) { w.uint(3, uint64(v)) }
func (w *writer) uint32(v uint32) { w.uint(4, uint64(v)) }
func (w *writer) uint64(v uint64) { w.uint(8, v) }

// lenencInt writes n choosing the smallest tag width that fits, per §4.A.
func (w *writer) lenencInt(n uint64) {
	switch {
	case n < 0xfb:
		w.buf.WriteByte(byte(n))
	case n <= 0xffff:
		w.buf.WriteByte(0xfc)
		w.uint(2, n)
	case n <= 0xffffff:
		w.buf.WriteByte(0xfd)
		w.uint(3, n)
	default:
		w.buf.WriteByte(0xfe)
		w.uint(8, n)
	}
}

func (w *writer) lenencBytes(b []byte) {
	w.lenencInt(uint64(len(b)))
	w.buf.Write(b)
}

func (w *writer) nullTerminated(b []byte) {
	w.buf.Write(b)
	w.buf.WriteByte(0x00)
}

