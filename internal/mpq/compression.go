// SPDX-License-Identifier: Apache-2.0
package mpq

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zlib"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Compression identifies the codec recorded in the first byte of a
// compressed sector.
type Compression uint8

const (
	CompressionNone    Compression = 0x00
	CompressionHuffman Compression = 0x01
	CompressionZlib    Compression = 0x02
	CompressionPKWare  Compression = 0x08
	CompressionBzip2   Compression = 0x10
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionHuffman:
		return "huffman"
	case CompressionZlib:
		return "zlib"
	case CompressionPKWare:
		return "pkware"
	case CompressionBzip2:
		return "bzip2"
	default:
		return fmt.Sprintf("0x%02x", uint8(c))
	}
}

func decompress(data []byte, expected int, flags uint32) ([]byte, error) {
	if flags&FlagImplode != 0 {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrUnsupportedCompression, CompressionPKWare)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty compressed sector", gerrors.ErrInvalidArchive)
	}

	codec := Compression(data[0])
	payload := bytes.NewReader(data[1:])

	var r io.Reader
	switch codec {
	case CompressionZlib:
		zr, err := zlib.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", gerrors.ErrInvalidArchive, err)
		}
		defer zr.Close()
		r = zr
	case CompressionBzip2:
		br, err := bzip2.NewReader(payload, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, fmt.Errorf("%w: bzip2: %v", gerrors.ErrInvalidArchive, err)
		}
		defer br.Close()
		r = br
	default:
		return nil, fmt.Errorf("%w: %s", gerrors.ErrUnsupportedCompression, codec)
	}

	out := make([]byte, expected)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: inflating %s sector: %v", gerrors.ErrInvalidArchive, codec, err)
	}
	return out, nil
}

func compress(data []byte, codec Compression) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(codec))

	switch codec {
	case CompressionZlib:
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("writing zlib data: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("closing zlib writer: %w", err)
		}
	case CompressionBzip2:
		bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: 9})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 writer: %w", err)
		}
		if _, err := bw.Write(data); err != nil {
			bw.Close()
			return nil, fmt.Errorf("writing bzip2 data: %w", err)
		}
		if err := bw.Close(); err != nil {
			return nil, fmt.Errorf("closing bzip2 writer: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", gerrors.ErrUnsupportedCompression, codec)
	}
	return buf.Bytes(), nil
}
