// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "testing"

func TestNegotiatedIsIntersection(t *testing.T) {
	client := clientProtocol41 | clientSecureConn | clientCompress
	server := clientProtocol41 | clientSecureConn | clientSSL
	got := negotiated(client, server)
	want := clientProtocol41 | clientSecureConn
	if got != want {
		t.Fatalf("negotiated = %#x, want %#x", got, want)
	}
}

func TestCapFlagHas(t *testing.T) {
	c := clientProtocol41 | clientCompress
	if !c.has(clientProtocol41) {
		t.Fatal("expected clientProtocol41 to be set")
	}
	if c.has(clientSSL) {
		t.Fatal("did not expect clientSSL to be set")
	}
}

// TestCapabilityBitPositions pins the 25 capability flags to their
// well-known wire positions; a regression here would silently desync the
// handshake with any real MySQL/MariaDB server.
func TestCapabilityBitPositions(t *testing.T) {
	want := map[capFlag]uint{
		clientLongPassword:               0,
		clientFoundRows:                  1,
		clientLongFlag:                   2,
		clientConnectWithDB:              3,
		clientNoSchema:                   4,
		clientCompress:                   5,
		clientODBC:                       6,
		clientLocalFiles:                 7,
		clientIgnoreSpace:                8,
		clientProtocol41:                 9,
		clientInteractive:                10,
		clientSSL:                        11,
		clientIgnoreSIGPIPE:              12,
		clientTransactions:               13,
		clientReserved:                   14,
		clientSecureConn:                 15,
		clientMultiStatements:            16,
		clientMultiResults:               17,
		clientPSMultiResults:             18,
		clientPluginAuth:                 19,
		clientConnectAttrs:               20,
		clientPluginAuthLenencClientData: 21,
		clientCanHandleExpiredPasswords:  22,
		clientSessionTrack:               23,
		clientDeprecateEOF:               24,
	}
	for flag, bit := range want {
		if flag != 1<<bit {
			t.Errorf("flag with value %#x is not at bit %d", flag, bit)
		}
	}
}
