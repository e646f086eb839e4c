// SPDX-License-Identifier: Apache-2.0
// Package mpq reads and builds MPQ archives, the container format of the
// game's data and localization files.
package mpq

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Block flags
const (
	FlagImplode     = 0x00000100
	FlagCompress    = 0x00000200
	FlagEncrypted   = 0x00010000
	FlagFixKey      = 0x00020000
	FlagSingleUnit  = 0x01000000
	FlagDeleted     = 0x02000000
	FlagSectorCRC   = 0x04000000
	FlagExists      = 0x80000000
	compressionMask = FlagImplode | FlagCompress
)

const (
	headerSize      = 32
	headerAlignment = 0x200
	maxHeaderSearch = 64 << 20

	// Sectors of 512 << 15 bytes (16 MiB) are far above anything the engine writes.
	maxSectorSizeShift = 15
	// A compressed block never inflates beyond this factor of its stored size.
	maxExpansion = 4096

	hashEntryEmpty   = 0xFFFFFFFF
	hashEntryDeleted = 0xFFFFFFFE
)

var (
	archiveMagic  = []byte{'M', 'P', 'Q', 0x1A}
	userDataMagic = []byte{'M', 'P', 'Q', 0x1B}
)

type header struct {
	HeaderSize        uint32
	ArchiveSize       uint32
	FormatVersion     uint16
	SectorSizeShift   uint16
	HashTableOffset   uint32
	BlockTableOffset  uint32
	HashTableEntries  uint32
	BlockTableEntries uint32
}

type hashEntry struct {
	NameA      uint32
	NameB      uint32
	Locale     uint16
	Platform   uint16
	BlockIndex uint32
}

type blockEntry struct {
	Offset         uint32
	CompressedSize uint32
	FileSize       uint32
	Flags          uint32
}

// Archive is an opened MPQ archive. It is safe for concurrent reads as long
// as the underlying ReaderAt is.
type Archive struct {
	r          io.ReaderAt
	closer     io.Closer
	base       int64
	size       int64
	sectorSize uint32
	hashes     []hashEntry
	blocks     []blockEntry
}

// Open parses the archive found in r. size is the total number of bytes
// readable from r.
func Open(r io.ReaderAt, size int64) (*Archive, error) {
	base, hdr, err := findHeader(r, size)
	if err != nil {
		return nil, err
	}

	if hdr.SectorSizeShift > maxSectorSizeShift {
		return nil, fmt.Errorf("%w: sector size shift %d too large", gerrors.ErrInvalidArchive, hdr.SectorSizeShift)
	}
	if hdr.HashTableEntries == 0 || hdr.HashTableEntries&(hdr.HashTableEntries-1) != 0 {
		return nil, fmt.Errorf("%w: hash table size %d is not a power of two", gerrors.ErrInvalidArchive, hdr.HashTableEntries)
	}

	a := &Archive{
		r:          r,
		base:       base,
		size:       size,
		sectorSize: 512 << hdr.SectorSizeShift,
	}

	hashData, err := a.readTable(int64(hdr.HashTableOffset), hdr.HashTableEntries, size, "(hash table)")
	if err != nil {
		return nil, err
	}
	a.hashes = make([]hashEntry, hdr.HashTableEntries)
	if err := binary.Read(bytes.NewReader(hashData), binary.LittleEndian, a.hashes); err != nil {
		return nil, fmt.Errorf("%w: decoding hash table: %v", gerrors.ErrInvalidArchive, err)
	}

	blockData, err := a.readTable(int64(hdr.BlockTableOffset), hdr.BlockTableEntries, size, "(block table)")
	if err != nil {
		return nil, err
	}
	a.blocks = make([]blockEntry, hdr.BlockTableEntries)
	if err := binary.Read(bytes.NewReader(blockData), binary.LittleEndian, a.blocks); err != nil {
		return nil, fmt.Errorf("%w: decoding block table: %v", gerrors.ErrInvalidArchive, err)
	}

	return a, nil
}

// OpenFile opens the archive stored at path on fs. The returned archive
// owns the file and must be closed.
func OpenFile(fs billy.Basic, path string) (*Archive, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(path)
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := Open(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// Close releases the underlying file when the archive was opened with OpenFile.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// SectorSize reports the archive's sector size in bytes.
func (a *Archive) SectorSize() uint32 {
	return a.sectorSize
}

// Has reports whether name is stored in the archive.
func (a *Archive) Has(name string) bool {
	_, ok := a.lookup(name)
	return ok
}

func (a *Archive) lookup(name string) (blockEntry, bool) {
	mask := uint32(len(a.hashes) - 1)
	start := hashString(name, hashTableOffset) & mask
	nameA := hashString(name, hashNameA)
	nameB := hashString(name, hashNameB)

	for i := uint32(0); i < uint32(len(a.hashes)); i++ {
		entry := a.hashes[(start+i)&mask]
		if entry.BlockIndex == hashEntryEmpty {
			return blockEntry{}, false
		}
		if entry.BlockIndex == hashEntryDeleted || entry.NameA != nameA || entry.NameB != nameB {
			continue
		}
		if entry.BlockIndex >= uint32(len(a.blocks)) {
			return blockEntry{}, false
		}
		block := a.blocks[entry.BlockIndex]
		if block.Flags&FlagExists == 0 || block.Flags&FlagDeleted != 0 {
			continue
		}
		return block, true
	}
	return blockEntry{}, false
}

// checkBlock rejects blocks whose stored data lies outside the archive or
// whose declared size cannot come from the stored data.
func (a *Archive) checkBlock(block blockEntry) error {
	end := a.base + int64(block.Offset) + int64(block.CompressedSize)
	if end > a.size {
		return fmt.Errorf("%w: file data ends at %d beyond archive size %d", gerrors.ErrInvalidArchive, end, a.size)
	}
	limit := uint64(block.CompressedSize)
	if block.Flags&compressionMask != 0 {
		limit *= maxExpansion
	}
	if uint64(block.FileSize) > limit {
		return fmt.Errorf("%w: file size %d exceeds stored size %d", gerrors.ErrInvalidArchive, block.FileSize, block.CompressedSize)
	}
	return nil
}

func (a *Archive) readTable(offset int64, entries uint32, size int64, keyName string) ([]byte, error) {
	length := int64(entries) * 16
	start := a.base + offset
	if start < 0 || start+length > size {
		return nil, fmt.Errorf("%w: %s out of bounds", gerrors.ErrInvalidArchive, keyName)
	}
	buf := make([]byte, length)
	if err := readAt(a.r, buf, start); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", gerrors.ErrInvalidArchive, keyName, err)
	}
	decrypt(buf, hashString(keyName, hashFileKey))
	return buf, nil
}

// findHeader scans 512-byte boundaries for the archive header, following a
// user-data block when one precedes it.
func findHeader(r io.ReaderAt, size int64) (int64, header, error) {
	buf := make([]byte, headerSize)
	limit := size
	if limit > maxHeaderSearch {
		limit = maxHeaderSearch
	}

	for offset := int64(0); offset+headerSize <= limit; offset += headerAlignment {
		if err := readAt(r, buf, offset); err != nil {
			return 0, header{}, fmt.Errorf("%w: %v", gerrors.ErrInvalidArchive, err)
		}

		if bytes.Equal(buf[:4], userDataMagic) {
			redirect := int64(binary.LittleEndian.Uint32(buf[8:12]))
			target := offset + redirect
			if redirect > 0 && target+headerSize <= size {
				hdrBuf := make([]byte, headerSize)
				if err := readAt(r, hdrBuf, target); err == nil && bytes.Equal(hdrBuf[:4], archiveMagic) {
					return target, parseHeader(hdrBuf), nil
				}
			}
			continue
		}

		if bytes.Equal(buf[:4], archiveMagic) {
			return offset, parseHeader(buf), nil
		}
	}
	return 0, header{}, fmt.Errorf("%w: no header found", gerrors.ErrInvalidArchive)
}

func parseHeader(buf []byte) header {
	le := binary.LittleEndian
	return header{
		HeaderSize:        le.Uint32(buf[4:]),
		ArchiveSize:       le.Uint32(buf[8:]),
		FormatVersion:     le.Uint16(buf[12:]),
		SectorSizeShift:   le.Uint16(buf[14:]),
		HashTableOffset:   le.Uint32(buf[16:]),
		BlockTableOffset:  le.Uint32(buf[20:]),
		HashTableEntries:  le.Uint32(buf[24:]),
		BlockTableEntries: le.Uint32(buf[28:]),
	}
}

// readAt fills buf completely; an io.EOF that accompanies a full read is
// not an error.
func readAt(r io.ReaderAt, buf []byte, offset int64) error {
	n, err := r.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}
