// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "testing"

// TestLenencRoundTrip is testable property 5: for every representative n,
// read(write(n)) == n and the writer picks the minimal tag width.
func TestLenencRoundTrip(t *testing.T) {
	cases := []struct {
		n        uint64
		wantLead byte
		wantLen  int // total encoded length
	}{
		{0, 0, 1},
		{250, 250, 1},
		{251, 0xfc, 3},
		{0xffff, 0xfc, 3},
		{0x10000, 0xfd, 4},
		{0xffffff, 0xfd, 4},
		{0x1000000, 0xfe, 9},
		{1<<64 - 1, 0xfe, 9},
	}
	for _, c := range cases {
		w := newWriter()
		w.lenencInt(c.n)
		enc := w.Bytes()
		if len(enc) != c.wantLen {
			t.Errorf("lenencInt(%d): got length %d, want %d", c.n, len(enc), c.wantLen)
		}
		if enc[0] != c.wantLead {
			t.Errorf("lenencInt(%d): got lead byte %#x, want %#x", c.n, enc[0], c.wantLead)
		}
		r := newReader(enc)
		got, isNull, err := r.lenencInt()
		if err != nil {
			t.Fatalf("lenencInt(%d): decode error: %v", c.n, err)
		}
		if isNull {
			t.Fatalf("lenencInt(%d): unexpected NULL", c.n)
		}
		if got != c.n {
			t.Errorf("lenencInt(%d): round trip got %d", c.n, got)
		}
	}
}

func TestLenencIntNullMarker(t *testing.T) {
	r := newReader([]byte{0xfb})
	_, isNull, err := r.lenencInt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isNull {
		t.Fatal("expected NULL marker")
	}
}

func TestNullSafeBytes(t *testing.T) {
	r := newReader([]byte{0xfb})
	_, ok, err := r.nullSafeBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected NULL")
	}

	r2 := newReader(append([]byte{0x03}, []byte("abc")...))
	b, ok, err := r2.nullSafeBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || string(b) != "abc" {
		t.Fatalf("got %q, ok=%v", b, ok)
	}
}

func TestNullTerminated(t *testing.T) {
	r := newReader([]byte("hello\x00world"))
	b, err := r.nullTerminated()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}
	if string(r.eofBytes()) != "world" {
		t.Fatalf("remaining bytes wrong: %q", r.eofBytes())
	}
}

func TestNullTerminatedMissingTerminator(t *testing.T) {
	r := newReader([]byte("no terminator here"))
	if _, err := r.nullTerminated(); err != ErrProtocolFraming {
		t.Fatalf("got %v, want ErrProtocolFraming", err)
	}
}

func TestUintRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 8} {
		w := newWriter()
		var v uint64 = 0x0102030405060708 & ((1 << (8 * n)) - 1)
		if n == 8 {
			v = 0x0102030405060708
		}
		w.uint(n, v)
		r := newReader(w.Bytes())
		got, err := r.uint(n)
		if err != nil {
			t.Fatalf("uint(%d): %v", n, err)
		}
		if got != v {
			t.Errorf("uint(%d): got %#x, want %#x", n, got, v)
		}
	}
}
