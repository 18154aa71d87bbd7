// Copyright 2016 The gmysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"crypto/tls"
	"time"
)

// Config is component K: every parsed connection parameter the session
// (component H) and handshake state machine (component G) need, whether it
// came from ParseDSN or was built up directly by the host.
type Config struct {
	User   string            // Username
	Passwd string            // Password
	Net    string            // Network type, e.g. "tcp"
	Addr   string            // Network address, e.g. "127.0.0.1:3306"
	DBName string            // Database to select after authentication
	Params map[string]string // Unrecognized DSN params, retained for the host

	Collation uint8 // Connection collation code; 0 means "use the default"

	AllowNativePasswords bool // mysql_native_password is usable (default true)
	AllowOldPasswords    bool // mysql_old_password extension plugin is usable

	// CompressionThreshold and CompressionLevel configure the compressed
	// transport (component C) when COMPRESS is negotiated.
	CompressionThreshold int
	CompressionLevel     int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// TLSUpgrade is invoked once, after an SSLRequest is written, to turn
	// the plain Channel into a TLS one. Dialing and certificate
	// configuration are entirely up to the host; the core just calls this
	// at the one point §4.G's S1 state requires it.
	TLSUpgrade func(Channel) (Channel, error)

	// TLSConfig is a convenience the host may set instead of supplying
	// TLSUpgrade directly; Connect wraps it into a TLSUpgrade
	// callback using crypto/tls if TLSUpgrade is nil and TLSConfig isn't.
	TLSConfig *tls.Config

	Logger Logger
}

func newConfigWithDefaults() *Config {
	return &Config{
		Net:                  "tcp",
		Addr:                 "127.0.0.1:3306",
		CompressionThreshold: defaultCompressionThreshold,
		CompressionLevel:     defaultCompressionLevel,
		AllowNativePasswords: true,
		Collation:            defaultCollation,
	}
}

func (cfg *Config) logger() Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return pkgLogger
}
