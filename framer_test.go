// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"bytes"
	"testing"
)

// pipeChannel is a Channel backed by two independent byte buffers, one per
// direction, so a test can write into "in" and read back from "out" (or
// vice versa) without a real socket.
type pipeChannel struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func newLoopbackChannel() *pipeChannel {
	return &pipeChannel{in: new(bytes.Buffer), out: new(bytes.Buffer)}
}

func (c *pipeChannel) Write(p []byte) (int, error) { return c.out.Write(p) }
func (c *pipeChannel) Read(p []byte) (int, error)  { return c.in.Read(p) }

// TestFragmentationRoundTripEmpty is scenario S1: an empty message at seq 0
// emits exactly one empty fragment, and reading it back yields b"", with
// the next expected sequence being 1.
func TestFragmentationRoundTripEmpty(t *testing.T) {
	ch := newLoopbackChannel()
	f := newPlainFramer(ch)
	if err := f.send(nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(ch.out.Bytes(), want) {
		t.Fatalf("wire bytes = % x, want % x", ch.out.Bytes(), want)
	}

	ch.in.Write(ch.out.Bytes())
	f2 := newPlainFramer(ch)
	msg, err := f2.recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if len(msg) != 0 {
		t.Fatalf("got %d bytes, want 0", len(msg))
	}
	if f2.seq != 1 {
		t.Fatalf("next expected seq = %d, want 1", f2.seq)
	}
}

// TestFragmentationRoundTripExactMultiple is scenario S2: a message whose
// length is an exact multiple of the fragment size gets a trailing empty
// fragment, starting at seq 5.
func TestFragmentationRoundTripExactMultiple(t *testing.T) {
	ch := newLoopbackChannel()
	f := newPlainFramer(ch)
	f.seq = 5

	payload := bytes.Repeat([]byte{'a'}, maxFragBody)
	if err := f.send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	wire := ch.out.Bytes()
	wantFirstHdr := []byte{0xff, 0xff, 0xff, 0x05}
	if !bytes.Equal(wire[:4], wantFirstHdr) {
		t.Fatalf("first header = % x, want % x", wire[:4], wantFirstHdr)
	}
	trailer := wire[4+maxFragBody:]
	wantTrailer := []byte{0x00, 0x00, 0x00, 0x06}
	if !bytes.Equal(trailer, wantTrailer) {
		t.Fatalf("trailing header = % x, want % x", trailer, wantTrailer)
	}

	ch.in.Write(wire)
	f2 := newPlainFramer(ch)
	f2.seq = 5
	msg, err := f2.recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if !bytes.Equal(msg, payload) {
		t.Fatalf("reconstructed payload mismatch: got %d bytes, want %d", len(msg), len(payload))
	}
}

// TestSequenceContinuity is property 2: for a single send, the sequences
// written are s, s+1, ..., s+k-1 (mod 256), one per fragment.
func TestSequenceContinuity(t *testing.T) {
	ch := newLoopbackChannel()
	f := newPlainFramer(ch)
	f.seq = 254 // exercise the mod-256 wraparound

	payload := bytes.Repeat([]byte{'z'}, maxFragBody*2+10)
	if err := f.send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	wire := ch.out.Bytes()
	var gotSeqs []byte
	for off := 0; off < len(wire); {
		length := int(wire[off]) | int(wire[off+1])<<8 | int(wire[off+2])<<16
		gotSeqs = append(gotSeqs, wire[off+3])
		off += 4 + length
	}
	want := []byte{254, 255, 0}
	if !bytes.Equal(gotSeqs, want) {
		t.Fatalf("sequences = %v, want %v", gotSeqs, want)
	}
}

func TestSequenceMismatchIsProtocolSequenceError(t *testing.T) {
	ch := newLoopbackChannel()
	ch.in.Write([]byte{0x00, 0x00, 0x00, 0x07}) // seq 7, but reader expects 0
	f := newPlainFramer(ch)
	if _, err := f.recv(); err != ErrProtocolSequence {
		t.Fatalf("got %v, want ErrProtocolSequence", err)
	}
}

func TestResetZeroesSequence(t *testing.T) {
	f := newPlainFramer(newLoopbackChannel())
	f.seq = 42
	f.reset()
	if f.seq != 0 {
		t.Fatalf("seq after reset = %d, want 0", f.seq)
	}
}

// TestHandshakeFramerAdoptsServerSequence covers component D: the first
// receive adopts the server's own starting sequence instead of checking it.
func TestHandshakeFramerAdoptsServerSequence(t *testing.T) {
	ch := newLoopbackChannel()
	ch.in.Write([]byte{0x03, 0x00, 0x00, 0x09, 'a', 'b', 'c'}) // seq 9, arbitrary
	hf := newHandshakeFramer(ch)
	msg, err := hf.recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(msg) != "abc" {
		t.Fatalf("got %q", msg)
	}
	if hf.seq != 10 {
		t.Fatalf("adopted seq = %d, want 10", hf.seq)
	}

	// Subsequent reads use the normal continuity check.
	ch.in.Write([]byte{0x01, 0x00, 0x00, 0x0a, 'z'})
	msg2, err := hf.recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(msg2) != "z" {
		t.Fatalf("got %q", msg2)
	}
}
