// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "sync"

// AuthPlugin is the extension point §4.M reserves: a pluggable
// authentication responder keyed by server-advertised plugin name.
// mysql_native_password (auth_native_password.go) is the only plugin the
// handshake state machine requires; mysql_old_password
// (auth_old_password.go) and client_ed25519 (auth_ed25519.go) are
// registered as extension-point demonstrations.
type AuthPlugin interface {
	// PluginName returns the name the server advertises for this plugin.
	PluginName() string

	// InitAuth computes the initial auth response from the server's
	// challenge data and the session's configured credentials.
	InitAuth(authData []byte, cfg *Config) ([]byte, error)
}

type pluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]AuthPlugin
}

var globalPluginRegistry = &pluginRegistry{plugins: make(map[string]AuthPlugin)}

func (r *pluginRegistry) register(p AuthPlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.PluginName()] = p
}

func (r *pluginRegistry) get(name string) (AuthPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// RegisterAuthPlugin registers plugin in the global plugin registry the
// handshake state machine consults when the server names an auth plugin.
func RegisterAuthPlugin(plugin AuthPlugin) {
	globalPluginRegistry.register(plugin)
}
