// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import "errors"

// errNullValue is returned by Row accessors when the requested column is
// NULL.
var errNullValue = errors.New("mysqlwire: column value is NULL")

// Column is the parsed column-definition packet of §3.
type Column struct {
	Catalog       string
	Schema        string
	TableVirtual  string
	TableOriginal string
	NameVirtual   string
	NameOriginal  string
	CharsetCode   uint16
	MaxLength     uint32
	FieldType     uint8
	Flags         uint16
	Decimals      uint8
}

func parseColumn(body []byte) (*Column, error) {
	r := newReader(body)
	c := new(Column)

	fields := []*string{&c.Catalog, &c.Schema, &c.TableVirtual, &c.TableOriginal, &c.NameVirtual, &c.NameOriginal}
	for _, f := range fields {
		b, err := r.lenencBytes()
		if err != nil {
			return nil, err
		}
		*f = string(b)
	}

	// fixed_length_fields_length (always 0x0c) then the fixed fields.
	if _, err := r.lenencUint(); err != nil {
		return nil, err
	}
	charsetCode, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	maxLength, err := r.uint(4)
	if err != nil {
		return nil, err
	}
	fieldType, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	flags, err := r.uint(2)
	if err != nil {
		return nil, err
	}
	decimals, err := r.bytes(1)
	if err != nil {
		return nil, err
	}

	c.CharsetCode = uint16(charsetCode)
	c.MaxLength = uint32(maxLength)
	c.FieldType = fieldType[0]
	c.Flags = uint16(flags)
	c.Decimals = decimals[0]
	return c, nil
}

// Row is one text-protocol row: positionally-aligned values, each either
// NULL or the raw length-encoded bytes the server sent, plus the shared
// name->index mapping built once for the whole ResultSet.
type Row struct {
	values  [][]byte
	isNull  []bool
	columns *ResultSet
}

// Value returns the decoded text of column i and whether it's non-NULL.
func (row *Row) Value(i int) (string, bool) {
	if row.isNull[i] {
		return "", false
	}
	charsetName := charsetNameForCode(row.columns.Columns[i].CharsetCode)
	return decodeColumnText(charsetName, row.values[i]), true
}

// ValueByName is Value, looked up by the column's virtual name. Duplicate
// names resolve to the first occurrence, per §4.I.
func (row *Row) ValueByName(name string) (string, bool, error) {
	i, ok := row.columns.index[name]
	if !ok {
		return "", false, errors.New("mysqlwire: no such column: " + name)
	}
	v, nonNull := row.Value(i)
	return v, nonNull, nil
}

// ResultSet is §3's composed result: columns, rows, and a name->index
// mapping built from each column's NameVirtual.
type ResultSet struct {
	Columns []*Column
	Rows    []*Row
	index   map[string]int
}

func newResultSet(columns []*Column) *ResultSet {
	rs := &ResultSet{Columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, exists := rs.index[c.NameVirtual]; !exists {
			rs.index[c.NameVirtual] = i
		}
	}
	return rs
}

func parseRow(body []byte, rs *ResultSet) (*Row, error) {
	r := newReader(body)
	n := len(rs.Columns)
	row := &Row{
		values:  make([][]byte, n),
		isNull:  make([]bool, n),
		columns: rs,
	}
	for i := 0; i < n; i++ {
		b, ok, err := r.nullSafeBytes()
		if err != nil {
			return nil, err
		}
		if !ok {
			row.isNull[i] = true
			continue
		}
		row.values[i] = b
	}
	return row, nil
}
