// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"net"

	iatomic "github.com/mysqlwire/mysqlwire/internal/atomic"
)

type sessionState int

const (
	stateHandshaking sessionState = iota
	stateIdle
	stateExecuting
	stateClosed
)

// Session is component H: it owns the current framer, the negotiated
// capabilities, and the text charset, and exposes the command surface of
// §4.H plus Query (§4.I). It advances through the lifecycle of §3:
// Handshaking -> Authenticated -> Idle -> Executing -> Idle (...) -> Closed.
//
// A Session is not safe for concurrent use, per §5.
type Session struct {
	fr       framer
	ch       Channel
	caps     capFlag
	charset  uint16
	cfg      *Config
	state    sessionState
	poisoned iatomic.Bool
	lastOK   *OKPacket
}

func newSession(fr framer, ch Channel, caps capFlag, cfg *Config, charset uint16, authOK *OKPacket) *Session {
	return &Session{
		fr:      fr,
		ch:      ch,
		caps:    caps,
		charset: charset,
		cfg:     cfg,
		state:   stateIdle,
		lastOK:  authOK,
	}
}

// Connect performs the handshake over ch (per §4.G) and returns a Session
// ready to issue commands. ch is normally a freshly dialed net.Conn; the
// core never dials one itself outside of the Dial convenience in dial.go.
func Connect(ch Channel, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = newConfigWithDefaults()
	}
	s, err := performHandshake(ch, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Capabilities returns the capabilities negotiated at handshake time. Once
// frozen after the auth ACK they never change for the life of the session,
// per §3's invariant.
func (s *Session) Capabilities() capFlag { return s.caps }

// Poisoned reports whether a prior timeout or I/O error has poisoned this
// session; a poisoned session must be closed, never reused.
func (s *Session) Poisoned() bool { return s.poisoned.IsSet() }

// poison marks the session poisoned and logs err once, at the point it was
// detected, per §4.L — the core never retries, so this is the only chance
// to surface a connection-fatal error to the host's logs.
func (s *Session) poison(err error) error {
	s.poisoned.Set(true)
	s.cfg.logger().Print("mysqlwire: session poisoned: ", err)
	return err
}

// command implements §4.H's per-command discipline: reset the framer,
// send the body, and (if a reply is expected) read and classify one reply.
func (s *Session) command(body []byte, expectReply bool) (interface{}, error) {
	if s.poisoned.IsSet() {
		return nil, ErrSessionPoisoned
	}

	if conn, ok := s.ch.(net.Conn); ok && s.state == stateIdle {
		if err := connCheck(conn); err != nil {
			return nil, s.poison(newIOError("liveness probe", err))
		}
	}

	s.state = stateExecuting
	s.fr.reset()

	if err := setWriteDeadline(s.ch, s.cfg.WriteTimeout); err != nil {
		return nil, s.poison(newIOError("set write deadline", err))
	}
	if err := s.fr.send(body); err != nil {
		return nil, s.poison(err)
	}
	if !expectReply {
		s.state = stateIdle
		return nil, nil
	}

	if err := setReadDeadline(s.ch, s.cfg.ReadTimeout); err != nil {
		return nil, s.poison(newIOError("set read deadline", err))
	}
	reply, err := s.fr.recv()
	if err != nil {
		return nil, s.poison(err)
	}
	parsed, err := classify(reply, s.caps, false)
	if err != nil {
		return nil, s.poison(err)
	}
	s.state = stateIdle
	return parsed, nil
}

func ackOrErr(parsed interface{}) error {
	if isACK(parsed) {
		return nil
	}
	if se, ok := parsed.(*ServerError); ok {
		return se
	}
	return ErrProtocolUnexpected
}

// Ping sends COM_PING and expects an ACK.
func (s *Session) Ping() error {
	parsed, err := s.command([]byte{0x0e}, true)
	if err != nil {
		return err
	}
	return ackOrErr(parsed)
}

// ResetConnection sends COM_RESET_CONNECTION and expects an ACK.
func (s *Session) ResetConnection() error {
	parsed, err := s.command([]byte{0x1f}, true)
	if err != nil {
		return err
	}
	return ackOrErr(parsed)
}

// ChangeDatabase sends COM_INIT_DB and expects an ACK.
func (s *Session) ChangeDatabase(db string) error {
	body := append([]byte{0x02}, []byte(db)...)
	parsed, err := s.command(body, true)
	if err != nil {
		return err
	}
	return ackOrErr(parsed)
}

// Quit sends COM_QUIT; no reply is awaited, matching the protocol. The
// session transitions to Closed regardless of the send's outcome.
func (s *Session) Quit() error {
	defer func() { s.state = stateClosed }()
	if s.poisoned.IsSet() {
		return ErrSessionPoisoned
	}
	s.fr.reset()
	if err := setWriteDeadline(s.ch, s.cfg.WriteTimeout); err != nil {
		return newIOError("set write deadline", err)
	}
	return s.fr.send([]byte{0x01})
}

// Close releases the underlying channel without sending COM_QUIT; prefer
// Quit for a clean shutdown the server acknowledges.
func (s *Session) Close() error {
	s.state = stateClosed
	if closer, ok := s.ch.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
