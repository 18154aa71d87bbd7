// Implementation of the MySQL 323 (pre-4.1) password hash/scramble
// algorithm.
//
// 27.08.2013, Klaus Hennemann

package mysqlwire

import "math"

const crypt323SeedMax = 0x3FFFFFFF

type crypt323Rand struct {
	seed1 uint32
	seed2 uint32
}

func newCrypt323Rand(seed1, seed2 uint32) *crypt323Rand {
	return &crypt323Rand{seed1: seed1 % crypt323SeedMax, seed2: seed2 % crypt323SeedMax}
}

func (r *crypt323Rand) float64() float64 {
	r.seed1 = (3*r.seed1 + r.seed2) % crypt323SeedMax
	r.seed2 = (r.seed1 + r.seed2 + 33) % crypt323SeedMax
	return float64(r.seed1) / float64(crypt323SeedMax)
}

func crypt323Hash(buf []byte) (value [2]uint32) {
	var add uint32 = 7
	value[0] = 1345345333
	value[1] = 0x12345671

	for _, b := range buf {
		if b == ' ' || b == '\t' {
			continue
		}
		tmp := uint32(b)
		value[0] ^= (((value[0] & 63) + add) * tmp) + (value[0] << 8)
		value[1] += (value[1] << 8) ^ value[0]
		add += tmp
	}

	value[0] &= 0x7FFFFFFF
	value[1] &= 0x7FFFFFFF
	return
}

// scrambleOldPassword scrambles the first 8 bytes of challenge with
// password using the pre-4.1 "323" hash, for the mysql_old_password
// extension-point plugin.
func scrambleOldPassword(challenge []byte, password []byte) []byte {
	if len(password) == 0 {
		return nil
	}
	challenge = challenge[:8]

	hashMsg := crypt323Hash(challenge)
	hashPwd := crypt323Hash(password)

	r := newCrypt323Rand(hashPwd[0]^hashMsg[0], hashPwd[1]^hashMsg[1])

	var out [8]byte
	for i := range out {
		out[i] = byte(math.Floor(31*r.float64())) + 64
	}
	mask := byte(math.Floor(31 * r.float64()))
	for i := range out {
		out[i] ^= mask
	}
	return out[:]
}
