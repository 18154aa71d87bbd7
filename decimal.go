// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "github.com/shopspring/decimal"

// Decimal converts the text value at column i (DECIMAL/NEWDECIMAL fields are
// sent as length-encoded text, like every other text-protocol value) into
// an arbitrary-precision decimal.Decimal. It never changes what was parsed
// off the wire — the underlying Row value stays the raw text the server
// sent; this is a pure convenience accessor on top of it.
func (row *Row) Decimal(i int) (decimal.Decimal, error) {
	v, ok := row.Value(i)
	if !ok {
		return decimal.Decimal{}, errNullValue
	}
	return decimal.NewFromString(v)
}
