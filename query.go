// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

// QueryResult is what Query returns: at most one of ResultSet, OK, or
// Infile is non-nil, per §4.I's dispatch on the first reply packet.
type QueryResult struct {
	ResultSet *ResultSet
	OK        *OKPacket
	Infile    *InfilePacket
}

// Query implements component I: send COM_QUERY, dispatch on the first
// reply to OK/ERR/INFILE/result-set, and (for a result set) stream column
// definitions and rows through to the ACK terminator.
func (s *Session) Query(stmt string) (*QueryResult, error) {
	if s.poisoned.IsSet() {
		return nil, ErrSessionPoisoned
	}

	s.state = stateExecuting
	s.fr.reset()

	body := append([]byte{0x03}, encodeStatement(stmt, s.charset)...)
	if err := setWriteDeadline(s.ch, s.cfg.WriteTimeout); err != nil {
		return nil, s.poison(newIOError("set write deadline", err))
	}
	if err := s.fr.send(body); err != nil {
		return nil, s.poison(err)
	}

	if err := setReadDeadline(s.ch, s.cfg.ReadTimeout); err != nil {
		return nil, s.poison(newIOError("set read deadline", err))
	}
	first, err := s.fr.recv()
	if err != nil {
		return nil, s.poison(err)
	}
	parsed, err := classify(first, s.caps, s.caps.has(clientLocalFiles))
	if err != nil {
		return nil, s.poison(err)
	}

	switch v := parsed.(type) {
	case *OKPacket:
		s.state = stateIdle
		return &QueryResult{OK: v}, nil
	case *ServerError:
		s.state = stateIdle
		return nil, v
	case *InfilePacket:
		s.state = stateIdle
		return &QueryResult{Infile: v}, nil
	case *EOFPacket:
		// A legacy EOF as the very first reply is not a valid reply to
		// COM_QUERY under this core's supported dialect.
		return nil, s.poison(ErrProtocolUnexpected)
	case *OpaqueBody:
		rs, err := s.streamResultSet(v.Data)
		if err != nil {
			return nil, s.poison(err)
		}
		s.state = stateIdle
		return &QueryResult{ResultSet: rs}, nil
	default:
		return nil, s.poison(ErrProtocolUnexpected)
	}
}

// streamResultSet reads the column-count header's lenenc N, N
// column-definition packets, rows until the ACK terminator, per §4.I.
func (s *Session) streamResultSet(header []byte) (*ResultSet, error) {
	r := newReader(header)
	n, err := r.lenencUint()
	if err != nil {
		return nil, err
	}

	columns := make([]*Column, 0, n)
	for i := uint64(0); i < n; i++ {
		if err := setReadDeadline(s.ch, s.cfg.ReadTimeout); err != nil {
			return nil, newIOError("set read deadline", err)
		}
		body, err := s.fr.recv()
		if err != nil {
			return nil, err
		}
		col, err := parseColumn(body)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	rs := newResultSet(columns)

	for {
		if err := setReadDeadline(s.ch, s.cfg.ReadTimeout); err != nil {
			return nil, newIOError("set read deadline", err)
		}
		body, err := s.fr.recv()
		if err != nil {
			return nil, err
		}
		parsed, err := classify(body, s.caps, false)
		if err != nil {
			return nil, err
		}
		if isACK(parsed) {
			return rs, nil
		}
		if se, ok := parsed.(*ServerError); ok {
			return nil, se
		}
		opaque, ok := parsed.(*OpaqueBody)
		if !ok {
			return nil, ErrProtocolUnexpected
		}
		row, err := parseRow(opaque.Data, rs)
		if err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, row)
	}
}

// encodeStatement encodes stmt using the negotiated text charset; unknown
// charsets pass the statement through as raw UTF-8 bytes, matching the
// "best-effort mapping" of §4.J.
func encodeStatement(stmt string, charsetCode uint16) []byte {
	name := charsetNameForCode(charsetCode)
	enc, isUTF8, supported := textCodec(name)
	if !supported || isUTF8 {
		return []byte(stmt)
	}
	b, err := enc.NewEncoder().Bytes([]byte(stmt))
	if err != nil {
		return []byte(stmt)
	}
	return b
}
