// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"crypto/tls"
	"net"
)

// defaultTLSUpgrade builds the TLSUpgrade callback used when a host set
// Config.TLSConfig instead of supplying its own TLSUpgrade. TLS dialing
// itself is out of scope for the core (spec §1); this is just the smallest
// possible adapter from the one upgrade point §4.G needs onto the stdlib.
func defaultTLSUpgrade(cfg *tls.Config) func(Channel) (Channel, error) {
	return func(ch Channel) (Channel, error) {
		conn, ok := ch.(net.Conn)
		if !ok {
			return nil, ErrUnsupported
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.Handshake(); err != nil {
			return nil, newIOError("tls handshake", err)
		}
		return tlsConn, nil
	}
}
