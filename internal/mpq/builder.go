// SPDX-License-Identifier: Apache-2.0
package mpq

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Entry describes one file written by Build.
type Entry struct {
	Name        string
	Data        []byte
	Compression Compression
	SingleUnit  bool
	Encrypted   bool
	FixKey      bool
}

// BuildOptions tunes the archive layout produced by Build.
type BuildOptions struct {
	// SectorSizeShift sets the sector size to 512 << SectorSizeShift.
	SectorSizeShift uint16
	// Padding is prepended before the header and is rounded up to the
	// 512-byte header alignment.
	Padding int
}

// Build assembles a format version 0 archive containing entries.
func Build(entries []Entry, opts BuildOptions) ([]byte, error) {
	sectorSize := uint32(512) << opts.SectorSizeShift

	var body bytes.Buffer
	body.Write(make([]byte, headerSize))

	blocks := make([]blockEntry, 0, len(entries))
	for _, e := range entries {
		offset := uint32(body.Len())
		payload, flags, err := encodeEntry(e, offset, sectorSize)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Name, err)
		}
		body.Write(payload)
		blocks = append(blocks, blockEntry{
			Offset:         offset,
			CompressedSize: uint32(len(payload)),
			FileSize:       uint32(len(e.Data)),
			Flags:          flags,
		})
	}

	hashes := buildHashTable(entries)

	hashOffset := uint32(body.Len())
	hashData := new(bytes.Buffer)
	if err := binary.Write(hashData, binary.LittleEndian, hashes); err != nil {
		return nil, err
	}
	table := hashData.Bytes()
	encrypt(table, hashString("(hash table)", hashFileKey))
	body.Write(table)

	blockOffset := uint32(body.Len())
	blockData := new(bytes.Buffer)
	if err := binary.Write(blockData, binary.LittleEndian, blocks); err != nil {
		return nil, err
	}
	table = blockData.Bytes()
	encrypt(table, hashString("(block table)", hashFileKey))
	body.Write(table)

	out := body.Bytes()
	le := binary.LittleEndian
	copy(out[0:4], archiveMagic)
	le.PutUint32(out[4:], headerSize)
	le.PutUint32(out[8:], uint32(len(out)))
	le.PutUint16(out[12:], 0)
	le.PutUint16(out[14:], opts.SectorSizeShift)
	le.PutUint32(out[16:], hashOffset)
	le.PutUint32(out[20:], blockOffset)
	le.PutUint32(out[24:], uint32(len(hashes)))
	le.PutUint32(out[28:], uint32(len(blocks)))

	if opts.Padding > 0 {
		pad := (opts.Padding + headerAlignment - 1) / headerAlignment * headerAlignment
		return append(make([]byte, pad), out...), nil
	}
	return out, nil
}

func encodeEntry(e Entry, offset, sectorSize uint32) ([]byte, uint32, error) {
	flags := uint32(FlagExists)
	if e.Encrypted {
		flags |= FlagEncrypted
		if e.FixKey {
			flags |= FlagFixKey
		}
	}

	var key uint32
	if e.Encrypted {
		key = fileKey(e.Name, blockEntry{Offset: offset, FileSize: uint32(len(e.Data)), Flags: flags})
	}

	if e.SingleUnit {
		flags |= FlagSingleUnit
		payload := append([]byte(nil), e.Data...)
		if e.Compression != CompressionNone {
			packed, err := compress(e.Data, e.Compression)
			if err != nil {
				return nil, 0, err
			}
			if len(packed) < len(e.Data) {
				payload = packed
				flags |= FlagCompress
			}
		}
		if e.Encrypted {
			encrypt(payload, key)
		}
		return payload, flags, nil
	}

	count := (uint32(len(e.Data)) + sectorSize - 1) / sectorSize
	sectors := make([][]byte, count)
	for i := uint32(0); i < count; i++ {
		lo := i * sectorSize
		hi := lo + sectorSize
		if hi > uint32(len(e.Data)) {
			hi = uint32(len(e.Data))
		}
		sector := append([]byte(nil), e.Data[lo:hi]...)
		if e.Compression != CompressionNone {
			packed, err := compress(sector, e.Compression)
			if err != nil {
				return nil, 0, err
			}
			if len(packed) < len(sector) {
				sector = packed
			}
		}
		if e.Encrypted {
			encrypt(sector, key+i)
		}
		sectors[i] = sector
	}

	var buf bytes.Buffer
	if e.Compression != CompressionNone {
		flags |= FlagCompress
		table := make([]byte, (count+1)*4)
		pos := uint32(len(table))
		for i, s := range sectors {
			binary.LittleEndian.PutUint32(table[i*4:], pos)
			pos += uint32(len(s))
		}
		binary.LittleEndian.PutUint32(table[count*4:], pos)
		if e.Encrypted {
			encrypt(table, key-1)
		}
		buf.Write(table)
	}
	for _, s := range sectors {
		buf.Write(s)
	}
	return buf.Bytes(), flags, nil
}

func buildHashTable(entries []Entry) []hashEntry {
	size := 4
	for size < len(entries)*2 {
		size <<= 1
	}

	table := make([]hashEntry, size)
	for i := range table {
		table[i] = hashEntry{
			NameA:      hashEntryEmpty,
			NameB:      hashEntryEmpty,
			Locale:     0xFFFF,
			Platform:   0xFFFF,
			BlockIndex: hashEntryEmpty,
		}
	}

	mask := uint32(size - 1)
	for blockIndex, e := range entries {
		idx := hashString(e.Name, hashTableOffset) & mask
		for table[idx].BlockIndex != hashEntryEmpty {
			idx = (idx + 1) & mask
		}
		table[idx] = hashEntry{
			NameA:      hashString(e.Name, hashNameA),
			NameB:      hashString(e.Name, hashNameB),
			BlockIndex: uint32(blockIndex),
		}
	}
	return table
}
