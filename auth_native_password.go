// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"crypto/sha1"
	"errors"
)

// nativePasswordPluginName is the one auth plugin §4.G requires to succeed.
const nativePasswordPluginName = "mysql_native_password"

// ErrNativePassword is returned when a server demands mysql_native_password
// authentication and the caller's Config hasn't opted into it.
var ErrNativePassword = errors.New("mysqlwire: server requires mysql_native_password authentication; set Config.AllowNativePasswords")

// scrambleNativePassword implements component F:
//
//	auth_response = SHA1(password) XOR SHA1(challenge[0:20] ++ SHA1(SHA1(password)))
//
// challenge is the concatenation of auth_data_1 (8 bytes) and the leading
// bytes of auth_data_2 from the server handshake; only the first 20 bytes
// are used, per §4.F.
func scrambleNativePassword(challenge, password []byte) []byte {
	if len(password) == 0 {
		return nil
	}
	if len(challenge) > 20 {
		challenge = challenge[:20]
	}

	crypt := sha1.New()
	crypt.Write(password)
	stage1 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(stage1)
	stage2 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(challenge)
	crypt.Write(stage2)
	scramble := crypt.Sum(nil)

	result := make([]byte, 20)
	for i := range result {
		result[i] = scramble[i] ^ stage1[i]
	}
	return result
}

// nativePasswordPlugin is the registry-facing AuthPlugin (§4.M) wrapping
// scrambleNativePassword.
type nativePasswordPlugin struct{}

func (nativePasswordPlugin) PluginName() string { return nativePasswordPluginName }

func (nativePasswordPlugin) InitAuth(authData []byte, cfg *Config) ([]byte, error) {
	if !cfg.AllowNativePasswords {
		return nil, ErrNativePassword
	}
	return scrambleNativePassword(authData, []byte(cfg.Passwd)), nil
}

func init() {
	RegisterAuthPlugin(nativePasswordPlugin{})
}
