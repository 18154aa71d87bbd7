// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRowDecimal(t *testing.T) {
	col, _ := parseColumn(encodeColumnPacket("price", 45))
	rs := newResultSet([]*Column{col})

	w := newWriter()
	w.lenencBytes([]byte("19.99"))
	row, err := parseRow(w.Bytes(), rs)
	if err != nil {
		t.Fatalf("parseRow: %v", err)
	}

	got, err := row.Decimal(0)
	if err != nil {
		t.Fatalf("Decimal: %v", err)
	}
	want := decimal.RequireFromString("19.99")
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRowDecimalNull(t *testing.T) {
	col, _ := parseColumn(encodeColumnPacket("price", 45))
	rs := newResultSet([]*Column{col})

	w := newWriter()
	w.uint8(0xfb)
	row, err := parseRow(w.Bytes(), rs)
	if err != nil {
		t.Fatalf("parseRow: %v", err)
	}

	if _, err := row.Decimal(0); err != errNullValue {
		t.Fatalf("got %v, want errNullValue", err)
	}
}
