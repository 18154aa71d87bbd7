// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

// clientDesiredCapabilities is what this core always asks for; §4.G
// computes negotiated = clientDesired & serverOffered from this against
// whatever the server's handshake advertised.
const clientDesiredCapabilities = clientProtocol41 | clientSecureConn |
	clientTransactions | clientMultiResults | clientPluginAuth |
	clientPluginAuthLenencClientData | clientSessionTrack | clientDeprecateEOF |
	clientLongPassword | clientLongFlag | clientLocalFiles | clientCompress

// serverHandshake is the parsed HandshakeV10 packet of §3/§6.
type serverHandshake struct {
	ServerVersion  string
	ThreadID       uint32
	AuthData       []byte
	Capabilities   capFlag
	Charset        uint16
	Status         uint16
	AuthPluginName string
}

func parseServerHandshake(body []byte) (*serverHandshake, error) {
	r := newReader(body)

	ver, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	if ver[0] != 10 {
		return nil, ErrProtocolVersion
	}

	serverVersion, err := r.nullTerminated()
	if err != nil {
		return nil, err
	}
	threadID, err := r.uint(4)
	if err != nil {
		return nil, err
	}
	authData1, err := r.bytes(8)
	if err != nil {
		return nil, err
	}
	if _, err := r.bytes(1); err != nil { // filler
		return nil, err
	}
	capLo, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	charset, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	status, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	capHi, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	authDataLenB, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	authDataLen := int(authDataLenB[0])
	if _, err := r.bytes(6); err != nil { // reserved
		return nil, err
	}
	capXtd, err := r.uint(4) // MariaDB extended caps, or reserved-for-MySQL
	if err != nil {
		return nil, err
	}

	caps := capFlag(capLo) | capFlag(capHi)<<16 | capFlag(capXtd)<<32

	n2 := authDataLen - 8
	if n2 < 13 {
		n2 = 13
	}
	authData2, err := r.bytes(n2)
	if err != nil {
		return nil, err
	}

	sh := &serverHandshake{
		ServerVersion: string(serverVersion),
		ThreadID:      uint32(threadID),
		AuthData:      append(append([]byte{}, authData1...), authData2...),
		Capabilities:  caps,
		Charset:       uint16(charset[0]),
		Status:        uint16(status),
	}

	if caps.has(clientPluginAuth) && r.remaining() > 0 {
		pluginName, err := r.nullTerminated()
		if err != nil {
			return nil, err
		}
		sh.AuthPluginName = string(pluginName)
	}
	if r.remaining() > 0 {
		return nil, ErrProtocolFraming
	}

	return sh, nil
}

// buildHandshakeResponse encodes HandshakeResponse41 per §6: client_flag,
// max_packet, charset, 23 zero bytes, username, (lenenc|u8)-prefixed
// auth_response, optional database, optional plugin name. Connection
// attributes and the ZSTD compression-level field are left unpopulated, as
// §9 directs.
func buildHandshakeResponse(caps capFlag, cfg *Config, authResponse []byte, pluginName string) []byte {
	w := newWriter()
	w.uint32(uint32(caps))
	w.uint32(1 << 24) // max_packet: accept fragmentation rather than declare a cap
	w.uint8(handshakeCollation(cfg))
	var zero [23]byte
	w.bytes(zero[:])
	w.nullTerminated([]byte(cfg.User))

	if caps.has(clientPluginAuthLenencClientData) {
		w.lenencBytes(authResponse)
	} else {
		w.uint8(uint8(len(authResponse)))
		w.bytes(authResponse)
	}

	if caps.has(clientConnectWithDB) {
		w.nullTerminated([]byte(cfg.DBName))
	}
	if caps.has(clientPluginAuth) {
		w.nullTerminated([]byte(pluginName))
	}

	return w.Bytes()
}

// sslRequestBytes returns just the first 32 bytes of HandshakeResponse41
// (flags, max_packet, charset, 23 zero bytes), per §6's SSLRequest layout.
func sslRequestBytes(caps capFlag, cfg *Config) []byte {
	w := newWriter()
	w.uint32(uint32(caps))
	w.uint32(1 << 24)
	w.uint8(handshakeCollation(cfg))
	var zero [23]byte
	w.bytes(zero[:])
	return w.Bytes()
}

// handshakeCollation is the character_set byte sent to the server:
// Config.Collation, or defaultCollation when it is 0.
func handshakeCollation(cfg *Config) uint8 {
	if cfg.Collation == 0 {
		return defaultCollation
	}
	return cfg.Collation
}

// performHandshake drives component G's state machine S0..S3 over ch and
// returns a ready-to-use Session. Failure here is fatal; the caller should
// not reuse ch.
func performHandshake(ch Channel, cfg *Config) (*Session, error) {
	hf := newHandshakeFramer(ch)

	// S0: Expect-Handshake. ConnectTimeout bounds the whole handshake, not
	// just the dial; a server that stalls mid-handshake is as unreachable
	// as one that never accepts the TCP connection.
	if err := setReadDeadline(ch, cfg.ConnectTimeout); err != nil {
		return nil, newIOError("set read deadline", err)
	}
	body, err := hf.recv()
	if err != nil {
		return nil, err
	}
	sh, err := parseServerHandshake(body)
	if err != nil {
		return nil, err
	}

	desired := clientDesiredCapabilities
	if cfg.DBName != "" {
		desired |= clientConnectWithDB
	}
	wantsTLS := cfg.TLSUpgrade != nil || cfg.TLSConfig != nil
	if wantsTLS {
		desired |= clientSSL
	}
	negotiatedCaps := negotiated(desired, sh.Capabilities)

	if cfg.DBName != "" && !negotiatedCaps.has(clientConnectWithDB) {
		return nil, ErrUnsupported
	}
	if wantsTLS && !negotiatedCaps.has(clientSSL) {
		return nil, ErrUnsupported
	}

	currentCh := ch

	// S0 -> S1: Maybe-TLS.
	if negotiatedCaps.has(clientSSL) {
		if err := setWriteDeadline(currentCh, cfg.ConnectTimeout); err != nil {
			return nil, newIOError("set write deadline", err)
		}
		if err := hf.send(sslRequestBytes(negotiatedCaps, cfg)); err != nil {
			return nil, err
		}
		upgrade := cfg.TLSUpgrade
		if upgrade == nil {
			upgrade = defaultTLSUpgrade(cfg.TLSConfig)
		}
		newCh, err := upgrade(currentCh)
		if err != nil {
			return nil, err
		}
		currentCh = newCh
		hf.rebind(currentCh)
	}

	pluginName := sh.AuthPluginName
	if pluginName == "" {
		pluginName = nativePasswordPluginName
	}
	plugin, ok := globalPluginRegistry.get(pluginName)
	if !ok {
		return nil, ErrUnsupported
	}
	authResponse, err := plugin.InitAuth(sh.AuthData, cfg)
	if err != nil {
		return nil, err
	}

	// S1 -> S2: send HandshakeResponse41.
	if err := setWriteDeadline(currentCh, cfg.ConnectTimeout); err != nil {
		return nil, newIOError("set write deadline", err)
	}
	if err := hf.send(buildHandshakeResponse(negotiatedCaps, cfg, authResponse, pluginName)); err != nil {
		return nil, err
	}

	// S2: Expect-Auth-Ack.
	if err := setReadDeadline(currentCh, cfg.ConnectTimeout); err != nil {
		return nil, newIOError("set read deadline", err)
	}
	reply, err := hf.recv()
	if err != nil {
		return nil, err
	}
	parsed, err := classify(reply, negotiatedCaps, false)
	if err != nil {
		return nil, err
	}

	var ok1 *OKPacket
	switch v := parsed.(type) {
	case *OKPacket:
		ok1 = v
	case *ServerError:
		return nil, v
	default:
		return nil, ErrProtocolUnexpected
	}

	// S3: Authenticated. Switch to the normal (plain or compressed) framer
	// for the rest of the session's life; the handshake framer's one-shot
	// sequence adoption is never retained beyond this point, per §9.
	var fr framer
	if negotiatedCaps.has(clientCompress) {
		fr = newCompressedFramer(currentCh, cfg.CompressionThreshold, cfg.CompressionLevel)
	} else {
		fr = newPlainFramer(currentCh)
	}

	return newSession(fr, currentCh, negotiatedCaps, cfg, sh.Charset, ok1), nil
}

// rebind points the handshake framer's byte source/sink at a new channel
// (used once, after the TLS upgrade callback runs) without resetting its
// adopted sequence state.
func (f *handshakeFramer) rebind(ch Channel) {
	f.ch = ch
	f.rd = newReadBuf(ch)
}
