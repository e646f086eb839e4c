// SPDX-License-Identifier: Apache-2.0
package mpq

import (
	"encoding/binary"
	"fmt"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// ReadFile returns the uncompressed contents of the named file.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	block, ok := a.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrFileNotFound, name)
	}
	if block.FileSize == 0 {
		return []byte{}, nil
	}
	if err := a.checkBlock(block); err != nil {
		return nil, err
	}

	var key uint32
	if block.Flags&FlagEncrypted != 0 {
		key = fileKey(name, block)
	}

	if block.Flags&FlagSingleUnit != 0 {
		return a.readSingleUnit(block, key)
	}
	return a.readSectors(block, key)
}

func (a *Archive) readSingleUnit(block blockEntry, key uint32) ([]byte, error) {
	raw := make([]byte, block.CompressedSize)
	if err := readAt(a.r, raw, a.base+int64(block.Offset)); err != nil {
		return nil, fmt.Errorf("%w: reading file data: %v", gerrors.ErrInvalidArchive, err)
	}
	if block.Flags&FlagEncrypted != 0 {
		decrypt(raw, key)
	}

	if block.CompressedSize < block.FileSize {
		if block.Flags&compressionMask == 0 {
			return nil, fmt.Errorf("%w: truncated file data", gerrors.ErrInvalidArchive)
		}
		return decompress(raw, int(block.FileSize), block.Flags)
	}
	return raw[:block.FileSize], nil
}

func (a *Archive) readSectors(block blockEntry, key uint32) ([]byte, error) {
	count := (block.FileSize + a.sectorSize - 1) / a.sectorSize
	start := a.base + int64(block.Offset)

	offsets, err := a.sectorOffsets(block, key, count, start)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, block.FileSize)
	for i := uint32(0); i < count; i++ {
		lo, hi := offsets[i], offsets[i+1]
		if hi < lo || hi > block.CompressedSize {
			return nil, fmt.Errorf("%w: sector %d out of bounds", gerrors.ErrInvalidArchive, i)
		}

		sector := make([]byte, hi-lo)
		if err := readAt(a.r, sector, start+int64(lo)); err != nil {
			return nil, fmt.Errorf("%w: reading sector %d: %v", gerrors.ErrInvalidArchive, i, err)
		}
		if block.Flags&FlagEncrypted != 0 {
			decrypt(sector, key+i)
		}

		expected := block.FileSize - i*a.sectorSize
		if expected > a.sectorSize {
			expected = a.sectorSize
		}
		if block.Flags&compressionMask != 0 && uint32(len(sector)) < expected {
			sector, err = decompress(sector, int(expected), block.Flags)
			if err != nil {
				return nil, fmt.Errorf("sector %d: %w", i, err)
			}
		}
		if uint32(len(sector)) != expected {
			return nil, fmt.Errorf("%w: sector %d has %d bytes, want %d", gerrors.ErrInvalidArchive, i, len(sector), expected)
		}
		out = append(out, sector...)
	}
	return out, nil
}

// sectorOffsets returns count+1 offsets relative to the block start.
// Uncompressed files have no stored table; their sectors are contiguous.
func (a *Archive) sectorOffsets(block blockEntry, key, count uint32, start int64) ([]uint32, error) {
	offsets := make([]uint32, count+1)
	if block.Flags&compressionMask == 0 {
		for i := uint32(0); i < count; i++ {
			offsets[i] = i * a.sectorSize
		}
		offsets[count] = block.FileSize
		return offsets, nil
	}

	entries := count + 1
	if block.Flags&FlagSectorCRC != 0 {
		entries++
	}
	table := make([]byte, entries*4)
	if err := readAt(a.r, table, start); err != nil {
		return nil, fmt.Errorf("%w: reading sector table: %v", gerrors.ErrInvalidArchive, err)
	}
	if block.Flags&FlagEncrypted != 0 {
		decrypt(table, key-1)
	}
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(table[i*4:])
	}
	return offsets, nil
}
