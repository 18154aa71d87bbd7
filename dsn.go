// Copyright 2016 The gmysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var (
	errInvalidDSNUnescaped = errors.New("mysqlwire: invalid DSN: did you forget to escape a param value?")
	errInvalidDSNAddr      = errors.New("mysqlwire: invalid DSN: network address not terminated (missing closing brace)")
	errInvalidDSNNoSlash   = errors.New("mysqlwire: invalid DSN: missing the slash separating the database name")
)

// ParseDSN parses a DSN of the form
// "user[:pass]@net(addr)/dbname[?param1=value1&paramN=valueN]" into a
// Config, per §4.K. Defaults are applied for any field the DSN leaves
// unspecified. Unrecognized params are kept in Config.Params verbatim for
// the host to interpret.
func ParseDSN(dsn string) (*Config, error) {
	cfg := newConfigWithDefaults()

	// Find the last '/' since the password or net address may contain one.
	foundSlash := false
	for i := len(dsn) - 1; i >= 0; i-- {
		if dsn[i] != '/' {
			continue
		}
		foundSlash = true

		var j, k int
		if i > 0 {
			// [user[:password]@][net[(addr)]]
			for j = i; j >= 0; j-- {
				if dsn[j] != '@' {
					continue
				}
				for k = 0; k < j; k++ {
					if dsn[k] == ':' {
						cfg.Passwd = dsn[k+1 : j]
						break
					}
				}
				cfg.User = dsn[:k]
				break
			}

			for k = j + 1; k < i; k++ {
				if dsn[k] != '(' {
					continue
				}
				if dsn[i-1] != ')' {
					if strings.ContainsRune(dsn[k+1:i], ')') {
						return nil, errInvalidDSNUnescaped
					}
					return nil, errInvalidDSNAddr
				}
				cfg.Addr = dsn[k+1 : i-1]
				break
			}
			cfg.Net = dsn[j+1 : k]
		}

		// dbname[?params]
		for j = i + 1; j < len(dsn); j++ {
			if dsn[j] == '?' {
				if err := parseDSNParams(cfg, dsn[j+1:]); err != nil {
					return nil, err
				}
				break
			}
		}
		cfg.DBName = dsn[i+1 : j]
		break
	}

	if !foundSlash && len(dsn) > 0 {
		return nil, errInvalidDSNNoSlash
	}

	if cfg.Net == "" {
		cfg.Net = "tcp"
	}
	if cfg.Addr == "" {
		switch cfg.Net {
		case "tcp":
			cfg.Addr = "127.0.0.1:3306"
		case "unix":
			cfg.Addr = "/tmp/mysql.sock"
		default:
			return nil, errors.New("mysqlwire: default addr for network '" + cfg.Net + "' unknown")
		}
	}

	return cfg, nil
}

func parseDSNParams(cfg *Config, params string) error {
	for _, v := range strings.Split(params, "&") {
		if v == "" {
			continue
		}
		param := strings.SplitN(v, "=", 2)
		if len(param) != 2 {
			continue
		}
		key, value := param[0], param[1]

		switch key {
		case "allowNativePasswords":
			b, ok := parseBool(value)
			if !ok {
				return errors.New("mysqlwire: invalid bool value for allowNativePasswords: " + value)
			}
			cfg.AllowNativePasswords = b

		case "allowOldPasswords":
			b, ok := parseBool(value)
			if !ok {
				return errors.New("mysqlwire: invalid bool value for allowOldPasswords: " + value)
			}
			cfg.AllowOldPasswords = b

		case "collation":
			n, err := strconv.Atoi(value)
			if err != nil {
				return errors.New("mysqlwire: invalid collation code: " + value)
			}
			cfg.Collation = uint8(n)

		case "compressionThreshold":
			n, err := strconv.Atoi(value)
			if err != nil {
				return errors.New("mysqlwire: invalid compressionThreshold: " + value)
			}
			cfg.CompressionThreshold = n

		case "compressionLevel":
			n, err := strconv.Atoi(value)
			if err != nil {
				return errors.New("mysqlwire: invalid compressionLevel: " + value)
			}
			cfg.CompressionLevel = n

		default:
			if cfg.Params == nil {
				cfg.Params = make(map[string]string)
			}
			unescaped, err := url.QueryUnescape(value)
			if err != nil {
				return err
			}
			cfg.Params[key] = unescaped
		}
	}
	return nil
}

func parseBool(value string) (b, valid bool) {
	switch value {
	case "1", "true", "TRUE", "True":
		return true, true
	case "0", "false", "FALSE", "False":
		return false, true
	}
	return false, false
}
