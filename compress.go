// Copyright 2024 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"bytes"
	"compress/zlib"
	"io"
	"sync"
)

var (
	zrPool sync.Pool // holds io.ReadCloser; see zDecompress
	zwPool sync.Pool // holds *zlib.Writer; see zCompress
)

func zDecompress(src []byte, dst []byte) (int, error) {
	br := bytes.NewReader(src)
	var zr io.ReadCloser
	var err error
	if a := zrPool.Get(); a == nil {
		if zr, err = zlib.NewReader(br); err != nil {
			return 0, err
		}
	} else {
		zr = a.(io.ReadCloser)
		if err = zr.(zlib.Resetter).Reset(br, nil); err != nil {
			return 0, err
		}
	}
	defer func() {
		zr.Close()
		zrPool.Put(zr)
	}()

	read := 0
	for read < len(dst) {
		n, err := zr.Read(dst[read:])
		read += n
		if err == io.EOF {
			if read < len(dst) {
				return read, io.ErrUnexpectedEOF
			}
			break
		} else if err != nil {
			return read, err
		}
	}
	return read, nil
}

func zCompress(level int, src []byte, dst io.Writer) error {
	var zw *zlib.Writer
	if a := zwPool.Get(); a != nil {
		zw = a.(*zlib.Writer)
		zw.Reset(dst)
	} else {
		var err error
		if zw, err = zlib.NewWriterLevel(dst, level); err != nil {
			return err
		}
	}
	if _, err := zw.Write(src); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	zwPool.Put(zw)
	return nil
}

// compressedChannel implements Channel, presenting a plain byte stream to
// an inner plainFramer while actually speaking the compressed envelope of
// §4.C on the wire underneath. This is the composition §9 calls for: rather
// than the compressed framer inheriting from the plain framer and rebinding
// its I/O, the plain framer is handed a buffered adapter that does the
// enveloping, and the two sequence counters (inner on the plainFramer,
// outer here) stay textually adjacent in compressedFramer below.
type compressedChannel struct {
	ch        Channel
	rd        *readBuf
	threshold int
	level     int

	outSeq uint8
	inSeq  uint8

	outBuf bytes.Buffer
	inBuf  []byte
}

func newCompressedChannel(ch Channel, threshold, level int) *compressedChannel {
	return &compressedChannel{
		ch:        ch,
		rd:        newReadBuf(ch),
		threshold: threshold,
		level:     level,
	}
}

// Write buffers plain-packet bytes emitted by the inner plainFramer. If the
// buffer grows to a full outer fragment's worth, one maximal fragment is
// flushed eagerly to bound memory; the rest is flushed by flush() once the
// plainFramer's send() has finished appending.
func (c *compressedChannel) Write(p []byte) (int, error) {
	c.outBuf.Write(p)
	for c.outBuf.Len() >= maxFragBody {
		if err := c.writeFragment(c.outBuf.Next(maxFragBody)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// flush drains whatever remains in the out-buffer as outer fragments after
// one complete inner send().
func (c *compressedChannel) flush() error {
	for c.outBuf.Len() > 0 {
		n := c.outBuf.Len()
		if n > maxFragBody {
			n = maxFragBody
		}
		if err := c.writeFragment(c.outBuf.Next(n)); err != nil {
			return err
		}
	}
	return nil
}

func (c *compressedChannel) writeFragment(chunk []byte) error {
	var payload []byte
	uncompressedLen := 0
	if len(chunk) > c.threshold {
		var buf bytes.Buffer
		if err := zCompress(c.level, chunk, &buf); err != nil {
			return newIOError("compress outer fragment", err)
		}
		payload = buf.Bytes()
		uncompressedLen = len(chunk)
	} else {
		payload = chunk
	}

	var hdr [7]byte
	hdr[0] = byte(len(payload))
	hdr[1] = byte(len(payload) >> 8)
	hdr[2] = byte(len(payload) >> 16)
	hdr[3] = c.outSeq
	hdr[4] = byte(uncompressedLen)
	hdr[5] = byte(uncompressedLen >> 8)
	hdr[6] = byte(uncompressedLen >> 16)
	c.outSeq++

	if _, err := c.ch.Write(hdr[:]); err != nil {
		return newIOError("write compressed envelope header", err)
	}
	if len(payload) > 0 {
		if _, err := c.ch.Write(payload); err != nil {
			return newIOError("write compressed envelope payload", err)
		}
	}
	return nil
}

// Read satisfies io.Reader for the inner plainFramer's readBuf: it serves
// bytes out of the decompressed in-buffer, pulling one more outer message
// off the wire whenever the buffer runs dry.
func (c *compressedChannel) Read(p []byte) (int, error) {
	if len(c.inBuf) == 0 {
		if err := c.readOuterMessage(); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.inBuf)
	c.inBuf = c.inBuf[n:]
	return n, nil
}

// readOuterMessage reads outer fragments until a short one, decompressing
// each as needed, per §4.C's read path.
func (c *compressedChannel) readOuterMessage() error {
	for {
		hdr, err := c.rd.next(7)
		if err != nil {
			return newIOError("read compressed envelope header", err)
		}
		comprLen := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		seq := hdr[3]
		uncompressedLen := int(hdr[4]) | int(hdr[5])<<8 | int(hdr[6])<<16

		if seq != c.inSeq {
			return ErrProtocolSequence
		}
		c.inSeq++

		payload, err := c.rd.next(comprLen)
		if err != nil {
			return newIOError("read compressed envelope payload", err)
		}

		if uncompressedLen == 0 {
			c.inBuf = append(c.inBuf, payload...)
		} else {
			offset := len(c.inBuf)
			grown := make([]byte, offset+uncompressedLen)
			copy(grown, c.inBuf)
			c.inBuf = grown
			n, err := zDecompress(payload, c.inBuf[offset:offset+uncompressedLen])
			if err != nil {
				return ErrProtocolFraming
			}
			if n != uncompressedLen {
				return ErrProtocolFraming
			}
		}

		if comprLen < maxFragBody {
			return nil
		}
	}
}

// compressedFramer is component C: the layered transparent compression
// transport. It owns a plainFramer whose byte sink/source is a
// compressedChannel, so the inner (plain-packet) sequence and the outer
// (envelope) sequence are independent counters that both reset together.
type compressedFramer struct {
	inner *plainFramer
	cc    *compressedChannel
}

// defaultCompressionThreshold and defaultCompressionLevel are §4.C's
// documented defaults.
const (
	defaultCompressionThreshold = 50
	defaultCompressionLevel     = 1
)

func newCompressedFramer(ch Channel, threshold, level int) *compressedFramer {
	if threshold <= 0 {
		threshold = defaultCompressionThreshold
	}
	if level <= 0 {
		level = defaultCompressionLevel
	}
	cc := newCompressedChannel(ch, threshold, level)
	return &compressedFramer{inner: newPlainFramer(cc), cc: cc}
}

func (f *compressedFramer) reset() {
	f.inner.reset()
	f.cc.outSeq = 0
	f.cc.inSeq = 0
}

func (f *compressedFramer) send(body []byte) error {
	if err := f.inner.send(body); err != nil {
		return err
	}
	return f.cc.flush()
}

func (f *compressedFramer) recv() ([]byte, error) {
	return f.inner.recv()
}
