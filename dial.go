// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"context"
	"net"
)

// Dial is a thin, swappable convenience wrapper around net.Dialer; it is
// the only place net.Dial appears in this module. Hosts that want to own
// socket setup themselves (custom dialers, connection pools, proxies) skip
// this and call Connect directly on whatever Channel they produce.
func Dial(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = newConfigWithDefaults()
	}
	var d net.Dialer
	if cfg.ConnectTimeout > 0 {
		d.Timeout = cfg.ConnectTimeout
	}
	conn, err := d.DialContext(ctx, cfg.Net, cfg.Addr)
	if err != nil {
		return nil, newIOError("dial", err)
	}
	sess, err := Connect(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return sess, nil
}
