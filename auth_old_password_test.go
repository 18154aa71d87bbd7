// Copyright 2018 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"fmt"
	"testing"
)

func TestScrambleOldPassword(t *testing.T) {
	challenge := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	vectors := []struct {
		pass string
		out  string
	}{
		{" pass", "47575c5a435b4251"},
		{"pass ", "47575c5a435b4251"},
		{"123\t456", "575c47505b5b5559"},
		{"C0mpl!ca ted#PASS123", "5d5d554849584a45"},
	}
	for _, v := range vectors {
		got := scrambleOldPassword(challenge, []byte(v.pass))
		if fmt.Sprintf("%x", got) != v.out {
			t.Errorf("scrambleOldPassword(%q): got %x, want %s", v.pass, got, v.out)
		}
	}
}

func TestScrambleOldPasswordEmptyPassword(t *testing.T) {
	if got := scrambleOldPassword([]byte{1, 2, 3, 4, 5, 6, 7, 8}, nil); got != nil {
		t.Fatalf("expected nil for empty password, got %x", got)
	}
}

func TestOldPasswordPluginName(t *testing.T) {
	if (oldPasswordPlugin{}).PluginName() != "mysql_old_password" {
		t.Fatalf("unexpected plugin name: %s", (oldPasswordPlugin{}).PluginName())
	}
}
