// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

const maxFragBody = 1<<24 - 1

// framer is the send/recv/reset contract §9 calls out: both the plain
// framer and the compressed framer (compress.go) satisfy it, and the
// session controller (session.go) is written against the interface rather
// than either concrete type.
type framer interface {
	send(body []byte) error
	recv() ([]byte, error)
	reset()
}

// plainFramer is component B: it fragments a message into <=2^24-1-byte
// bodies, each with a 3-byte length + 1-byte sequence header, and
// reassembles on read while enforcing sequence continuity.
type plainFramer struct {
	ch  Channel
	rd  *readBuf
	seq uint8
}

func newPlainFramer(ch Channel) *plainFramer {
	return &plainFramer{ch: ch, rd: newReadBuf(ch)}
}

// reset zeroes the sequence counter; the session calls this at the start
// of every client-initiated command.
func (f *plainFramer) reset() {
	f.seq = 0
}

func (f *plainFramer) writeFragment(frag []byte) error {
	var hdr [4]byte
	hdr[0] = byte(len(frag))
	hdr[1] = byte(len(frag) >> 8)
	hdr[2] = byte(len(frag) >> 16)
	hdr[3] = f.seq
	if _, err := f.ch.Write(hdr[:]); err != nil {
		return newIOError("write packet header", err)
	}
	if len(frag) > 0 {
		if _, err := f.ch.Write(frag); err != nil {
			return newIOError("write packet body", err)
		}
	}
	f.seq++
	return nil
}

// send fragments body into <=2^24-1-byte fragments. A zero-length message
// is one empty fragment; an exact nonzero multiple of the fragment size
// gets a trailing empty fragment so the reader can detect end-of-message.
func (f *plainFramer) send(body []byte) error {
	if len(body) == 0 {
		return f.writeFragment(nil)
	}
	for len(body) > 0 {
		n := len(body)
		if n > maxFragBody {
			n = maxFragBody
		}
		if err := f.writeFragment(body[:n]); err != nil {
			return err
		}
		body = body[n:]
		if n == maxFragBody && len(body) == 0 {
			return f.writeFragment(nil)
		}
	}
	return nil
}

// recv reads fragments until one shorter than the max fragment size,
// concatenating bodies and checking that each arriving sequence matches
// the expected next value.
func (f *plainFramer) recv() ([]byte, error) {
	var msg []byte
	for {
		hdr, err := f.rd.next(4)
		if err != nil {
			return nil, newIOError("read packet header", err)
		}
		length := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		seq := hdr[3]
		if seq != f.seq {
			return nil, ErrProtocolSequence
		}
		f.seq++
		if length > 0 {
			body, err := f.rd.next(length)
			if err != nil {
				return nil, newIOError("read packet body", err)
			}
			msg = append(msg, body...)
		}
		if length < maxFragBody {
			return msg, nil
		}
	}
}

// handshakeFramer is component D: identical to plainFramer, except that the
// very first receive adopts the server's own initial sequence rather than
// checking it against an expected value. Per §9's design note this is
// expressed as a one-shot flag, not retained beyond the handshake — once
// S3/Authenticated is reached, the session switches to a plain (or
// compressed) framer for the rest of its life.
type handshakeFramer struct {
	plainFramer
	adopted bool
}

func newHandshakeFramer(ch Channel) *handshakeFramer {
	return &handshakeFramer{plainFramer: *newPlainFramer(ch)}
}

func (f *handshakeFramer) recv() ([]byte, error) {
	if !f.adopted {
		hdr, err := f.rd.next(4)
		if err != nil {
			return nil, newIOError("read packet header", err)
		}
		length := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		f.seq = hdr[3] + 1
		f.adopted = true
		var msg []byte
		if length > 0 {
			body, err := f.rd.next(length)
			if err != nil {
				return nil, newIOError("read packet body", err)
			}
			msg = append(msg, body...)
		}
		if length < maxFragBody {
			return msg, nil
		}
		// Exact-multiple first fragment: fall through to normal
		// continuation reads for the remainder of this same message.
		return f.plainFramer.recvContinuation(msg)
	}
	return f.plainFramer.recv()
}

// recvContinuation continues reassembling a message whose first fragment
// was already consumed (by the handshake framer's one-shot adoption path),
// enforcing normal sequence continuity for every subsequent fragment.
func (f *plainFramer) recvContinuation(msg []byte) ([]byte, error) {
	for {
		hdr, err := f.rd.next(4)
		if err != nil {
			return nil, newIOError("read packet header", err)
		}
		length := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		seq := hdr[3]
		if seq != f.seq {
			return nil, ErrProtocolSequence
		}
		f.seq++
		if length > 0 {
			body, err := f.rd.next(length)
			if err != nil {
				return nil, newIOError("read packet body", err)
			}
			msg = append(msg, body...)
		}
		if length < maxFragBody {
			return msg, nil
		}
	}
}
