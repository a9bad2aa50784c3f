// Package sqindex parses sqpack .win32.index files into an in-memory
// two-level folder-hash/file-hash lookup table.
package sqindex

import (
	"encoding/binary"
	"errors"
	"fmt"

	"codeberg.org/go-mmap/mmap"
	"github.com/kelindar/intmap"
)

// Wire layout constants, all little-endian (spec.md §4.3).
const (
	sqpackMagic      = uint64(0x00006B6361507153) // "SqPack\0\0"
	headerLengthAt   = 0x0C
	fileInfoOffset   = 0x08
	folderInfoOffset = 0xE4
	folderRecordSize = 0x10
	fileRecordSize   = 0x10
)

// ErrMagicMissing is returned when the SqPack magic number does not match.
var ErrMagicMissing = errors.New("sqindex: magic number missing")

// FileEntry is a single file's location within the dat files of a pack.
type FileEntry struct {
	FolderHash uint32
	FileHash   uint32
	DataOffset uint32
	DatNumber  uint8
}

// folder holds the file table for one folder hash, plus a fast lookup.
type folder struct {
	hash   uint32
	files  []FileEntry
	lookup *intmap.Map
}

// Index is the parsed two-level folder_hash -> file_hash -> FileEntry
// mapping for one .win32.index file. An Index is immutable after Open
// returns and is safe for concurrent use by many readers.
type Index struct {
	folders       []folder
	folderByHash  *intmap.Map // folder_hash -> index into folders
}

// Open parses the index file at path entirely into memory and returns an
// immutable Index. The underlying mapping is closed before Open returns;
// the index keeps only the decoded tables, not the mmap itself, since the
// index content (unlike dat payloads) is small and fully consumed up front.
func Open(path string) (*Index, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sqindex: opening %s: %w", path, err)
	}
	defer f.Close()

	var magicBuf [8]byte
	if _, err := f.ReadAt(magicBuf[:], 0); err != nil {
		return nil, fmt.Errorf("sqindex: reading magic: %w", err)
	}
	if binary.LittleEndian.Uint64(magicBuf[:]) != sqpackMagic {
		return nil, ErrMagicMissing
	}

	headerLength, err := readU32(f, headerLengthAt)
	if err != nil {
		return nil, fmt.Errorf("sqindex: reading header length: %w", err)
	}

	filesOffset, err := readU32(f, headerLength+fileInfoOffset)
	if err != nil {
		return nil, fmt.Errorf("sqindex: reading files offset: %w", err)
	}
	filesLen, err := readU32(f, headerLength+fileInfoOffset+4)
	if err != nil {
		return nil, fmt.Errorf("sqindex: reading files length: %w", err)
	}

	foldersOffset, err := readU32(f, headerLength+folderInfoOffset)
	if err != nil {
		return nil, fmt.Errorf("sqindex: reading folders offset: %w", err)
	}
	foldersLen, err := readU32(f, headerLength+folderInfoOffset+4)
	if err != nil {
		return nil, fmt.Errorf("sqindex: reading folders length: %w", err)
	}
	_ = filesOffset
	foldersCount := foldersLen / folderRecordSize
	_ = filesLen / fileRecordSize

	ix := &Index{
		folders:      make([]folder, 0, foldersCount),
		folderByHash: intmap.New(int(foldersCount)+1, .95),
	}

	for i := uint32(0); i < foldersCount; i++ {
		rec := foldersOffset + i*folderRecordSize
		fHash, err := readU32(f, rec)
		if err != nil {
			return nil, fmt.Errorf("sqindex: reading folder %d hash: %w", i, err)
		}
		fFilesOffset, err := readU32(f, rec+4)
		if err != nil {
			return nil, fmt.Errorf("sqindex: reading folder %d files offset: %w", i, err)
		}
		fFilesLen, err := readU32(f, rec+8)
		if err != nil {
			return nil, fmt.Errorf("sqindex: reading folder %d files length: %w", i, err)
		}

		fld, err := readFolder(f, fHash, fFilesOffset, fFilesLen/fileRecordSize)
		if err != nil {
			return nil, fmt.Errorf("sqindex: reading folder %d: %w", i, err)
		}

		ix.folderByHash.Store(fHash, uint32(len(ix.folders)))
		ix.folders = append(ix.folders, fld)
	}

	return ix, nil
}

func readFolder(f *mmap.File, folderHash, filesOffset, fileCount uint32) (folder, error) {
	fld := folder{
		hash:   folderHash,
		files:  make([]FileEntry, 0, fileCount),
		lookup: intmap.New(int(fileCount)+1, .95),
	}

	for i := uint32(0); i < fileCount; i++ {
		rec := filesOffset + i*fileRecordSize
		fileHash, err := readU32(f, rec)
		if err != nil {
			return folder{}, fmt.Errorf("reading file %d hash: %w", i, err)
		}
		recFolderHash, err := readU32(f, rec+4)
		if err != nil {
			return folder{}, fmt.Errorf("reading file %d folder hash: %w", i, err)
		}
		packed, err := readU32(f, rec+8)
		if err != nil {
			return folder{}, fmt.Errorf("reading file %d packed offset: %w", i, err)
		}

		entry := FileEntry{
			FolderHash: recFolderHash,
			FileHash:   fileHash,
			DatNumber:  uint8((packed & 0x7) >> 1),
			DataOffset: (packed & 0xFFFFFFF8) << 3,
		}

		fld.lookup.Store(fileHash, uint32(len(fld.files)))
		fld.files = append(fld.files, entry)
	}

	return fld, nil
}

// Lookup resolves a (folder_hash, file_hash) pair to its FileEntry.
func (ix *Index) Lookup(folderHash, fileHash uint32) (FileEntry, bool) {
	folderIdx, ok := ix.folderByHash.Load(folderHash)
	if !ok {
		return FileEntry{}, false
	}
	fld := &ix.folders[folderIdx]

	fileIdx, ok := fld.lookup.Load(fileHash)
	if !ok {
		return FileEntry{}, false
	}
	return fld.files[fileIdx], true
}

// Folders returns every folder hash present in the index.
func (ix *Index) Folders() []uint32 {
	out := make([]uint32, len(ix.folders))
	for i, f := range ix.folders {
		out[i] = f.hash
	}
	return out
}

func readU32(f *mmap.File, offset uint32) (uint32, error) {
	var buf [4]byte
	if _, err := f.ReadAt(buf[:], int64(offset)); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
