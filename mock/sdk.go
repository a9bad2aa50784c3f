// Package mock provides a lightweight in-memory stand-in for sqpack.Archive,
// for tests that want to exercise callers without real pack files on disk.
package mock

import (
	"github.com/sqpack-go/sqpack"
)

// Archive is an in-memory Archive stand-in: raw bytes and decoded sheets are
// registered by logical path/name rather than read from a sqpack root.
type Archive struct {
	RawFiles map[string][]byte
	Sheets   map[string]*sqpack.Sheet
}

// New creates an empty mock Archive.
func New() *Archive {
	return &Archive{
		RawFiles: make(map[string][]byte),
		Sheets:   make(map[string]*sqpack.Sheet),
	}
}

// AddRaw registers raw bytes under a logical path, as if they had been read
// from a real pack file.
func (a *Archive) AddRaw(path string, data []byte) {
	a.RawFiles[path] = data
}

// AddSheet registers an already-decoded sheet under a bare sheet name.
func (a *Archive) AddSheet(name string, sheet *sqpack.Sheet) {
	a.Sheets[name] = sheet
}

// Identify delegates to sqpack.Identify; path classification needs no
// registered fixtures.
func (a *Archive) Identify(path string) (sqpack.ExFileIdentifier, error) {
	return sqpack.Identify(path)
}

// ReadRaw returns the bytes registered under path, or FileNotFound.
func (a *Archive) ReadRaw(path string) ([]byte, error) {
	data, ok := a.RawFiles[path]
	if !ok {
		return nil, &sqpack.Error{Kind: sqpack.FileNotFound, Path: path}
	}
	return data, nil
}

// LoadSheet returns the sheet registered under name, ignoring language
// (mock archives register one pre-decoded sheet per name rather than
// per-language pages).
func (a *Archive) LoadSheet(name string, _ sqpack.Language) (*sqpack.Sheet, error) {
	sheet, ok := a.Sheets[name]
	if !ok {
		return nil, &sqpack.Error{Kind: sqpack.FileNotFound, Path: name}
	}
	return sheet, nil
}

// LoadSound decodes the raw bytes registered under path as a sound
// container.
func (a *Archive) LoadSound(path string) (*sqpack.SoundFile, error) {
	raw, err := a.ReadRaw(path)
	if err != nil {
		return nil, err
	}
	return sqpack.DecodeSoundFile(raw)
}
