// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "errors"

// ErrOldPassword is returned when a server demands mysql_old_password
// authentication and the caller's Config hasn't opted into it.
var ErrOldPassword = errors.New("mysqlwire: server requires mysql_old_password authentication; set Config.AllowOldPasswords")

// oldPasswordPlugin implements the legacy pre-4.1 mysql_old_password
// plugin, registered as one of the two extension-point demonstrations
// alongside client_ed25519 (auth_ed25519.go). Production servers haven't
// required this in a long time; it exists to show the registry works for
// more than just the one mandatory plugin.
type oldPasswordPlugin struct{}

func init() {
	RegisterAuthPlugin(oldPasswordPlugin{})
}

func (oldPasswordPlugin) PluginName() string { return "mysql_old_password" }

func (oldPasswordPlugin) InitAuth(authData []byte, cfg *Config) ([]byte, error) {
	if !cfg.AllowOldPasswords {
		return nil, ErrOldPassword
	}
	if cfg.Passwd == "" {
		return nil, nil
	}
	// There are edge cases with passwords containing certain byte
	// sequences where this diverges from the server; long-standing,
	// known wontfix in the driver this is derived from.
	return append(scrambleOldPassword(authData, []byte(cfg.Passwd)), 0), nil
}
