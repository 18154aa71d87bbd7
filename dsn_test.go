// Copyright 2016 The gmysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "testing"

func TestParseDSNBasic(t *testing.T) {
	cfg, err := ParseDSN("user:pass@tcp(localhost:3306)/dbname")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if cfg.User != "user" || cfg.Passwd != "pass" || cfg.Net != "tcp" ||
		cfg.Addr != "localhost:3306" || cfg.DBName != "dbname" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseDSNDefaults(t *testing.T) {
	cfg, err := ParseDSN("/dbname")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if cfg.Net != "tcp" || cfg.Addr != "127.0.0.1:3306" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseDSNUnixSocket(t *testing.T) {
	cfg, err := ParseDSN("user@unix(/var/run/mysqld/mysqld.sock)/dbname")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if cfg.Net != "unix" || cfg.Addr != "/var/run/mysqld/mysqld.sock" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseDSNParams(t *testing.T) {
	cfg, err := ParseDSN("user:pass@tcp(host:3306)/db?allowOldPasswords=true&collation=8&compressionLevel=5&custom=val")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if !cfg.AllowOldPasswords {
		t.Fatal("expected AllowOldPasswords = true")
	}
	if cfg.Collation != 8 {
		t.Fatalf("collation = %d, want 8", cfg.Collation)
	}
	if cfg.CompressionLevel != 5 {
		t.Fatalf("compressionLevel = %d, want 5", cfg.CompressionLevel)
	}
	if cfg.Params["custom"] != "val" {
		t.Fatalf("custom param not retained: %+v", cfg.Params)
	}
}

func TestParseDSNMissingSlash(t *testing.T) {
	if _, err := ParseDSN("user:pass@tcp(host:3306)"); err != errInvalidDSNNoSlash {
		t.Fatalf("got %v, want errInvalidDSNNoSlash", err)
	}
}

func TestParseDSNUnterminatedAddr(t *testing.T) {
	if _, err := ParseDSN("user:pass@tcp(host:3306/dbname"); err != errInvalidDSNAddr {
		t.Fatalf("got %v, want errInvalidDSNAddr", err)
	}
}

func TestParseDSNInvalidBoolParam(t *testing.T) {
	if _, err := ParseDSN("/db?allowNativePasswords=maybe"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "TRUE": true, "True": true,
		"0": false, "false": false, "FALSE": false, "False": false}
	for s, want := range cases {
		got, valid := parseBool(s)
		if !valid || got != want {
			t.Errorf("parseBool(%q) = %v, %v; want %v, true", s, got, valid, want)
		}
	}
	if _, valid := parseBool("yes"); valid {
		t.Fatal("expected invalid for unrecognized bool string")
	}
}
