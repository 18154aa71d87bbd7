// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// defaultCollation is utf8mb4_general_ci, §4.J's default charset code. Left
// untyped so it converts freely into both the uint16 codes this registry
// keys on and Config.Collation's uint8 (the wire-mandated width of the
// handshake's own character_set field).
const defaultCollation = 45

// collationName maps the handful of server collation codes this registry
// cares about to their charset name. The full MySQL collation table runs
// into the hundreds of entries, with IDs that legitimately run past 255
// (e.g. utf8mb4_0900_ai_ci=255 and newer IDs above 256) — the map is keyed
// uint16 so none of those alias onto an unrelated low code. Only the names
// §4.J normalizes are listed here; any code not present falls back to
// opaque bytes, per §4.J.
var collationName = map[uint16]string{
	45:  "utf8mb4",
	33:  "utf8mb3",
	8:   "latin1",
	9:   "latin1",
	99:  "koi8r",
	24:  "koi8u",
	35:  "ucs2",
	56:  "utf16le",
	255: "utf8mb4",
}

// textCodec resolves a server-reported charset name to the host text
// codec it decodes as, per §4.J's normalization rules. isUTF8 (with a nil
// enc) means the charset decodes as UTF-8 (no transcoding needed);
// supported == false means the name is unsupported and values should be
// left as raw bytes.
func textCodec(name string) (enc encoding.Encoding, isUTF8 bool, supported bool) {
	switch strings.ToLower(name) {
	case "utf8mb4", "utf8mb3", "utf8":
		return nil, true, true
	case "latin1":
		return charmap.Windows1252, false, true
	case "koi8r", "koi8u", "ucs2":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), false, true
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), false, true
	default:
		return nil, false, false
	}
}

// decodeColumnText decodes a row value reported under the given server
// charset name into a Go string, falling back to the raw bytes, unchanged,
// for unsupported charsets or a failed decode, as §4.J specifies.
func decodeColumnText(name string, b []byte) string {
	enc, isUTF8, supported := textCodec(name)
	if !supported || isUTF8 {
		return string(b)
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

// collationCode returns a server collation code for name, or the default
// collation if name is empty/unknown.
func collationCode(name string) uint16 {
	for code, n := range collationName {
		if n == name {
			return code
		}
	}
	return defaultCollation
}

func charsetNameForCode(code uint16) string {
	if name, ok := collationName[code]; ok {
		return name
	}
	return "utf8mb4"
}
