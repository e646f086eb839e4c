// SPDX-License-Identifier: Apache-2.0
package mpq

import "encoding/binary"

// Hash types understood by hashString.
const (
	hashTableOffset = 0
	hashNameA       = 1
	hashNameB       = 2
	hashFileKey     = 3
)

var cryptTable = buildCryptTable()

func buildCryptTable() [0x500]uint32 {
	var table [0x500]uint32
	seed := uint32(0x00100001)
	for i := 0; i < 0x100; i++ {
		for j, idx := 0, i; j < 5; j, idx = j+1, idx+0x100 {
			seed = (seed*125 + 3) % 0x2AAAAB
			hi := (seed & 0xFFFF) << 0x10
			seed = (seed*125 + 3) % 0x2AAAAB
			lo := seed & 0xFFFF
			table[idx] = hi | lo
		}
	}
	return table
}

// normalizeChar upper-cases ASCII and maps '/' to the archive separator.
func normalizeChar(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case c == '/':
		return '\\'
	}
	return c
}

func hashString(s string, hashType uint32) uint32 {
	seed1 := uint32(0x7FED7FED)
	seed2 := uint32(0xEEEEEEEE)
	for i := 0; i < len(s); i++ {
		ch := uint32(normalizeChar(s[i]))
		seed1 = cryptTable[hashType*0x100+ch] ^ (seed1 + seed2)
		seed2 = ch + seed1 + seed2 + (seed2 << 5) + 3
	}
	return seed1
}

// decrypt works in place on whole little-endian words; trailing bytes
// that do not fill a word are left untouched.
func decrypt(data []byte, key uint32) {
	seed := uint32(0xEEEEEEEE)
	for i := 0; i+4 <= len(data); i += 4 {
		seed += cryptTable[0x400+(key&0xFF)]
		ch := binary.LittleEndian.Uint32(data[i:]) ^ (key + seed)
		key = ((^key << 0x15) + 0x11111111) | (key >> 0x0B)
		seed = ch + seed + (seed << 5) + 3
		binary.LittleEndian.PutUint32(data[i:], ch)
	}
}

func encrypt(data []byte, key uint32) {
	seed := uint32(0xEEEEEEEE)
	for i := 0; i+4 <= len(data); i += 4 {
		seed += cryptTable[0x400+(key&0xFF)]
		plain := binary.LittleEndian.Uint32(data[i:])
		binary.LittleEndian.PutUint32(data[i:], plain^(key+seed))
		key = ((^key << 0x15) + 0x11111111) | (key >> 0x0B)
		seed = plain + seed + (seed << 5) + 3
	}
}

// fileKey derives the encryption key of a stored file from its plain name
// (without directories).
func fileKey(name string, block blockEntry) uint32 {
	base := name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '\\' || name[i] == '/' {
			base = name[i+1:]
			break
		}
	}
	key := hashString(base, hashFileKey)
	if block.Flags&FlagFixKey != 0 {
		key = (key + block.Offset) ^ block.FileSize
	}
	return key
}
