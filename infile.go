// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	infileRegistryMu sync.RWMutex
	fileRegister     = make(map[string]bool)
	readerRegister   = make(map[string]func() io.Reader)
)

// RegisterLocalFile adds filepath to the whitelist so SendLocalInfile may
// read it in response to an InfilePacket naming it. Alternatively, set the
// "allowAllFiles=true" Config param to allow any path.
func RegisterLocalFile(filepath string) {
	infileRegistryMu.Lock()
	defer infileRegistryMu.Unlock()
	fileRegister[filepath] = true
}

// RegisterReaderHandler registers cb under name so SendLocalInfile can
// stream it in response to an InfilePacket naming "Reader::"+name. cb is
// called once per upload; the returned io.Reader is not safe for
// concurrent use across uploads.
func RegisterReaderHandler(name string, cb func() io.Reader) {
	infileRegistryMu.Lock()
	defer infileRegistryMu.Unlock()
	readerRegister[name] = cb
}

const infileChunkSize = 1 << 16

// SendLocalInfile is component O's host-side helper: given the filename
// from an InfilePacket the query engine returned, it looks the name up in
// the registries above and streams its bytes back over fr as a sequence of
// plain packets terminated by one empty packet, then reads the server's
// final ACK. It is never invoked automatically — the core only ever hands
// the caller the InfilePacket record, per spec.
func SendLocalInfile(fr framer, caps capFlag, cfg *Config, filename string) (*OKPacket, error) {
	rdr, err := resolveLocalInfile(cfg, filename)
	if err != nil {
		// The server still expects a terminating empty packet even when
		// the host declines to upload.
		if sendErr := fr.send(nil); sendErr != nil {
			return nil, sendErr
		}
		return nil, err
	}

	buf := make([]byte, infileChunkSize)
	for {
		n, readErr := rdr.Read(buf)
		if n > 0 {
			if sendErr := fr.send(buf[:n]); sendErr != nil {
				return nil, sendErr
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fr.send(nil)
			return nil, newIOError("read local infile source", readErr)
		}
	}

	if err := fr.send(nil); err != nil {
		return nil, err
	}

	body, err := fr.recv()
	if err != nil {
		return nil, err
	}
	reply, err := classify(body, caps, false)
	if err != nil {
		return nil, err
	}
	switch v := reply.(type) {
	case *OKPacket:
		return v, nil
	case *ServerError:
		return nil, v
	default:
		return nil, ErrProtocolUnexpected
	}
}

func resolveLocalInfile(cfg *Config, name string) (io.Reader, error) {
	infileRegistryMu.RLock()
	defer infileRegistryMu.RUnlock()

	if strings.HasPrefix(name, "Reader::") {
		readerName := name[len("Reader::"):]
		cb, ok := readerRegister[readerName]
		if !ok {
			return nil, fmt.Errorf("mysqlwire: reader %q is not registered", readerName)
		}
		rdr := cb()
		if rdr == nil {
			return nil, fmt.Errorf("mysqlwire: reader %q returned nil", readerName)
		}
		return rdr, nil
	}

	if fileRegister[name] || cfg.Params["allowAllFiles"] == "true" {
		return os.Open(name)
	}
	return nil, fmt.Errorf("mysqlwire: local file %q is not registered; set Config.Params[\"allowAllFiles\"]=\"true\" to allow all files", name)
}
