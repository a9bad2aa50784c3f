// Package sqpack decodes the packaged game-data archives of a large
// commercial role-playing game: path hashing, pack-file index parsing, DAT
// block reconstruction, tabular sheet decoding, and audio container
// decoding.
package sqpack

import (
	"fmt"
	"os"
	"sync"

	"github.com/sqpack-go/sqpack/internal/sqdat"
	"github.com/sqpack-go/sqpack/internal/sqindex"
)

// Archive is the facade over a sqpack root directory. It caches parsed
// indexes and opened dat files so repeated reads avoid re-parsing or
// re-mapping. An Archive is safe for concurrent use: indexes are immutable
// once built and dat handles are only ever read via positioned reads.
type Archive struct {
	root string

	indexes  sync.Map // BaseName -> *sqindex.Index
	datFiles sync.Map // "<BaseName>.<datNumber>" -> *sqdat.File
}

// Open returns an Archive rooted at dir, after confirming dir exists
// (spec.md §6: constructing an archive "returns nothing if the path does
// not exist"). No further filesystem access happens until the first read.
func Open(dir string) (*Archive, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, newErr(FileNotFound, dir, err)
	}
	return &Archive{root: dir}, nil
}

// Root returns the archive's root directory.
func (a *Archive) Root() string {
	return a.root
}

// Identify classifies a logical asset path into an ExFileIdentifier.
func (a *Archive) Identify(path string) (ExFileIdentifier, error) {
	return Identify(path)
}

// LoadIndex parses (or returns the cached) index for id.
func (a *Archive) LoadIndex(id ExFileIdentifier) (*sqindex.Index, error) {
	key := id.BaseName()
	if cached, ok := a.indexes.Load(key); ok {
		return cached.(*sqindex.Index), nil
	}

	ix, err := sqindex.Open(id.IndexPath(a.root))
	if err != nil {
		return nil, newErr(ReadingIndex, id.IndexPath(a.root), err)
	}

	actual, _ := a.indexes.LoadOrStore(key, ix)
	return actual.(*sqindex.Index), nil
}

// ReadRaw resolves path, loads its index, and returns the raw reassembled
// bytes of the entry. It composes Identify + LoadIndex + ReadRawWithIndex.
func (a *Archive) ReadRaw(path string) ([]byte, error) {
	id, err := a.Identify(path)
	if err != nil {
		return nil, err
	}
	ix, err := a.LoadIndex(id)
	if err != nil {
		return nil, err
	}
	return a.ReadRawWithIndex(id, ix)
}

// ReadRawWithIndex is the fast path: the caller already holds the Index for
// id, avoiding a re-parse.
func (a *Archive) ReadRawWithIndex(id ExFileIdentifier, ix *sqindex.Index) ([]byte, error) {
	hash := ComputeHash(id.LogicalPath)

	entry, ok := ix.Lookup(hash.FolderHash, hash.FileHash)
	if !ok {
		return nil, newErrMsg(FileNotFound, id.LogicalPath, "not present in index")
	}

	dat, err := a.datFile(id, entry.DatNumber)
	if err != nil {
		return nil, err
	}

	raw, err := dat.ReadEntry(entry.DataOffset)
	if err != nil {
		return nil, newErr(ReadingDat, id.DatPath(a.root, entry.DatNumber), err)
	}
	return raw, nil
}

func (a *Archive) datFile(id ExFileIdentifier, datNumber uint8) (*sqdat.File, error) {
	key := fmt.Sprintf("%s.%d", id.BaseName(), datNumber)
	if cached, ok := a.datFiles.Load(key); ok {
		return cached.(*sqdat.File), nil
	}

	path := id.DatPath(a.root, datNumber)
	f, err := sqdat.Open(path)
	if err != nil {
		return nil, newErr(ReadingDat, path, err)
	}

	actual, loaded := a.datFiles.LoadOrStore(key, f)
	if loaded {
		f.Close()
	}
	return actual.(*sqdat.File), nil
}

// SheetIndex wraps the Index of the EXD pack, distinguishing sheet lookups
// from general Archive lookups at the type level (spec.md §4.5).
type SheetIndex struct {
	index *sqindex.Index
}

// LoadSheetIndex loads (or returns the cached) index of the EXD pack.
func (a *Archive) LoadSheetIndex() (*SheetIndex, error) {
	id, err := Identify("exd")
	if err != nil {
		return nil, err
	}
	ix, err := a.LoadIndex(id)
	if err != nil {
		return nil, err
	}
	return &SheetIndex{index: ix}, nil
}
