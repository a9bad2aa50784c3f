// Package sqdat reconstructs a sqpack data-file entry from its block table,
// decompressing each block independently (spec.md §4.4).
package sqdat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-mmap/mmap"
	"github.com/klauspost/compress/flate"
)

// ContentType identifies the kind of payload stored at a data offset. Only
// Binary is decoded by this package; the others are recognised but rejected.
type ContentType uint32

const (
	Empty   ContentType = 1
	Binary  ContentType = 2
	Model   ContentType = 3
	Texture ContentType = 4
)

func (c ContentType) String() string {
	switch c {
	case Empty:
		return "empty"
	case Binary:
		return "binary"
	case Model:
		return "model"
	case Texture:
		return "texture"
	default:
		return fmt.Sprintf("content-type(%d)", uint32(c))
	}
}

// ErrUnsupportedContentType is returned for any content type other than Binary.
var ErrUnsupportedContentType = errors.New("sqdat: unsupported content type")

// ErrSizeMismatch is returned when the reassembled payload does not match
// the declared uncompressed size (spec.md §4.4 post-condition).
var ErrSizeMismatch = errors.New("sqdat: reassembled size does not match uncompressed_size")

const blockHeaderMagic = 0x10

// compressedSentinel: block payloads whose declared compressed_length is at
// or above this value are stored uncompressed (spec.md §4.4, §9 open question).
const compressedSentinel = 32000

type entryHeader struct {
	headerLength     uint32
	contentType      ContentType
	uncompressedSize uint32
	blockBufferSize  uint32
	blockCount       uint32
}

type blockTableEntry struct {
	offset            uint32
	blockSize         uint16
	decompressedSize  uint16
}

// File is a dat file opened for positioned reads.
type File struct {
	mm *mmap.File
}

// Open memory-maps the dat file at path.
func Open(path string) (*File, error) {
	mm, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sqdat: opening %s: %w", path, err)
	}
	return &File{mm: mm}, nil
}

// Close releases the underlying mapping.
func (f *File) Close() error {
	return f.mm.Close()
}

// ReadEntry reads and reassembles the Binary entry at dataOffset.
func (f *File) ReadEntry(dataOffset uint32) ([]byte, error) {
	hdr, err := readEntryHeader(f.mm, dataOffset)
	if err != nil {
		return nil, fmt.Errorf("sqdat: reading entry header at %#x: %w", dataOffset, err)
	}
	if hdr.contentType != Binary {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, hdr.contentType)
	}

	table, err := readBlockTable(f.mm, dataOffset, hdr.blockCount)
	if err != nil {
		return nil, fmt.Errorf("sqdat: reading block table at %#x: %w", dataOffset, err)
	}

	out := make([]byte, 0, hdr.uncompressedSize)
	for i, entry := range table {
		blockOffset := dataOffset + hdr.headerLength + entry.offset
		payload, compressed, err := readBlock(f.mm, blockOffset, entry)
		if err != nil {
			return nil, fmt.Errorf("sqdat: reading block %d at %#x: %w", i, blockOffset, err)
		}
		if compressed {
			decoded, err := inflate(payload, int(entry.decompressedSize))
			if err != nil {
				return nil, fmt.Errorf("sqdat: inflating block %d: %w", i, err)
			}
			out = append(out, decoded...)
		} else {
			out = append(out, payload...)
		}
	}

	if uint32(len(out)) != hdr.uncompressedSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(out), hdr.uncompressedSize)
	}
	return out, nil
}

func readEntryHeader(mm *mmap.File, dataOffset uint32) (entryHeader, error) {
	var buf [24]byte
	if _, err := mm.ReadAt(buf[:], int64(dataOffset)); err != nil {
		return entryHeader{}, err
	}
	return entryHeader{
		headerLength:     binary.LittleEndian.Uint32(buf[0:4]),
		contentType:      ContentType(binary.LittleEndian.Uint32(buf[4:8])),
		uncompressedSize: binary.LittleEndian.Uint32(buf[8:12]),
		// buf[12:16] is a reserved field.
		blockBufferSize: binary.LittleEndian.Uint32(buf[16:20]),
		blockCount:      binary.LittleEndian.Uint32(buf[20:24]),
	}, nil
}

func readBlockTable(mm *mmap.File, dataOffset uint32, count uint32) ([]blockTableEntry, error) {
	table := make([]blockTableEntry, count)
	buf := make([]byte, 8*count)
	if _, err := mm.ReadAt(buf, int64(dataOffset+24)); err != nil {
		return nil, err
	}
	for i := range table {
		rec := buf[i*8 : i*8+8]
		table[i] = blockTableEntry{
			offset:           binary.LittleEndian.Uint32(rec[0:4]),
			blockSize:        binary.LittleEndian.Uint16(rec[4:6]),
			decompressedSize: binary.LittleEndian.Uint16(rec[6:8]),
		}
	}
	return table, nil
}

// readBlock reads one block's header and payload, reporting whether the
// payload is DEFLATE-compressed.
func readBlock(mm *mmap.File, blockOffset uint32, entry blockTableEntry) ([]byte, bool, error) {
	var hdr [16]byte
	if _, err := mm.ReadAt(hdr[:], int64(blockOffset)); err != nil {
		return nil, false, err
	}
	magic := binary.LittleEndian.Uint32(hdr[0:4])
	if magic != blockHeaderMagic {
		return nil, false, fmt.Errorf("unexpected block magic %#x", magic)
	}
	compressedLength := binary.LittleEndian.Uint32(hdr[8:12])
	isCompressed := compressedLength < compressedSentinel

	payloadLen := int(entry.blockSize) - blockHeaderMagic
	if payloadLen < 0 {
		return nil, false, fmt.Errorf("block_size %d smaller than block header", entry.blockSize)
	}
	payload := make([]byte, payloadLen)
	if _, err := mm.ReadAt(payload, int64(blockOffset)+blockHeaderMagic); err != nil {
		return nil, false, err
	}
	return payload, isCompressed, nil
}

func inflate(compressed []byte, expectedSize int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	out := make([]byte, 0, expectedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
