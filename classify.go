// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

// Server status flags referenced while parsing OK/EOF packets.
const (
	statusMoreResultsExists   uint16 = 0x0008
	statusSessionStateChanged uint16 = 0x4000
)

// OKPacket is the typed OK reply of §3. Header is carried for diagnostics
// only — per §9's preserved open question it may be 0x00 or, under
// DEPRECATE_EOF, 0xFE, and must never be used as a discriminator.
type OKPacket struct {
	Header           byte
	AffectedRows     uint64
	LastInsertID     uint64
	Status           uint16
	Warnings         uint16
	Info             string
	SessionStateInfo []byte
}

// EOFPacket is the typed legacy EOF reply of §3. Header is diagnostic only.
type EOFPacket struct {
	Header   byte
	Warnings uint16
	Status   uint16
}

// InfilePacket is the typed LOCAL INFILE request of §3: the query engine
// returns it to the caller untouched, per spec. Uploading is out of scope
// for the core; see infile.go for the optional host-side helper.
type InfilePacket struct {
	Filename string
}

// OpaqueBody is returned when a reply body doesn't match any recognized
// classification — e.g. the column-count header or a text row in the
// result-set streamer, which classify bodies on their own terms.
type OpaqueBody struct {
	Data []byte
}

// classify implements component E: identify OK / ERR / EOF / INFILE /
// opaque by header byte and length, then parse the chosen shape under the
// negotiated capabilities. allowInfile gates the INFILE case, since it's
// only valid as a reply to a command that asked for it.
func classify(body []byte, caps capFlag, allowInfile bool) (interface{}, error) {
	if len(body) == 0 {
		return nil, ErrProtocolFraming
	}

	switch {
	case body[0] == 0xfe && len(body) < 9:
		if caps.has(clientDeprecateEOF) {
			return parseOK(body, caps)
		}
		return parseEOF(body, caps)
	case body[0] == 0x00:
		return parseOK(body, caps)
	case body[0] == 0xff:
		return parseErr(body, caps)
	case allowInfile && body[0] == 0xfb:
		return parseInfile(body)
	default:
		return &OpaqueBody{Data: body}, nil
	}
}

func parseOK(body []byte, caps capFlag) (*OKPacket, error) {
	r := newReader(body)
	header, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	pkt := &OKPacket{Header: header[0]}

	pkt.AffectedRows, err = r.lenencUint()
	if err != nil {
		return nil, err
	}
	pkt.LastInsertID, err = r.lenencUint()
	if err != nil {
		return nil, err
	}

	if caps.has(clientProtocol41) || caps.has(clientTransactions) {
		status, err := r.uint(2)
		if err != nil {
			return nil, err
		}
		pkt.Status = uint16(status)
	}
	if caps.has(clientProtocol41) {
		warnings, err := r.uint(2)
		if err != nil {
			return nil, err
		}
		pkt.Warnings = uint16(warnings)
	}

	if r.remaining() == 0 {
		return pkt, nil
	}

	if caps.has(clientSessionTrack) {
		info, err := r.lenencBytes()
		if err != nil {
			return nil, err
		}
		pkt.Info = string(info)
		if pkt.Status&statusSessionStateChanged != 0 && r.remaining() > 0 {
			pkt.SessionStateInfo, err = r.lenencBytes()
			if err != nil {
				return nil, err
			}
		}
	} else {
		pkt.Info = string(r.eofBytes())
	}
	return pkt, nil
}

func parseErr(body []byte, caps capFlag) (*ServerError, error) {
	r := newReader(body)
	if _, err := r.bytes(1); err != nil {
		return nil, err
	}
	code, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	se := &ServerError{Code: uint16(code)}

	if caps.has(clientProtocol41) {
		marker, err := r.bytes(1)
		if err != nil {
			return nil, err
		}
		if marker[0] == '#' {
			sqlstate, err := r.bytes(5)
			if err != nil {
				return nil, err
			}
			se.SQLState = string(sqlstate)
		}
	}
	se.Message = string(r.eofBytes())
	return se, nil
}

func parseEOF(body []byte, caps capFlag) (*EOFPacket, error) {
	r := newReader(body)
	header, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	pkt := &EOFPacket{Header: header[0]}
	if caps.has(clientProtocol41) {
		warnings, err := r.uint(2)
		if err != nil {
			return nil, err
		}
		pkt.Warnings = uint16(warnings)
		status, err := r.uint(2)
		if err != nil {
			return nil, err
		}
		pkt.Status = uint16(status)
	}
	return pkt, nil
}

func parseInfile(body []byte) (*InfilePacket, error) {
	r := newReader(body)
	if _, err := r.bytes(1); err != nil {
		return nil, err
	}
	return &InfilePacket{Filename: string(r.eofBytes())}, nil
}

// isACK reports whether a classified reply counts as "ACK": OK, or (when
// DEPRECATE_EOF isn't negotiated) legacy EOF.
func isACK(v interface{}) bool {
	switch v.(type) {
	case *OKPacket, *EOFPacket:
		return true
	default:
		return false
	}
}
