package sqpack

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure (spec.md §7).
type Kind int

const (
	// FileNotFound: a resolved path was absent from the index.
	FileNotFound Kind = iota
	// ReadingIndex: I/O or structural failure parsing an index file.
	ReadingIndex
	// ReadingDat: I/O, block, or checksum failure in the DAT reader.
	ReadingDat
	// DecodingEXD: structural failure in the sheet header/page decoder, or a cell-reader error.
	DecodingEXD
	// DecodingSCD: structural failure in the sound container decoder.
	DecodingSCD
	// MagicMissing: a required fixed magic number did not match.
	MagicMissing
	// UnknownFileType: the path's category component did not match a recognised category.
	UnknownFileType
	// UnknownExpansion: the path's expansion component did not match a recognised expansion.
	UnknownExpansion
	// CorruptFileName: the path could not be split into the expected components.
	CorruptFileName
	// InvalidLanguage: a sheet was asked for a language not listed in its header.
	InvalidLanguage
	// Custom: an arbitrary contextual failure.
	Custom
)

func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "FileNotFound"
	case ReadingIndex:
		return "ReadingIndex"
	case ReadingDat:
		return "ReadingDat"
	case DecodingEXD:
		return "DecodingEXD"
	case DecodingSCD:
		return "DecodingSCD"
	case MagicMissing:
		return "MagicMissing"
	case UnknownFileType:
		return "UnknownFileType"
	case UnknownExpansion:
		return "UnknownExpansion"
	case CorruptFileName:
		return "CorruptFileName"
	case InvalidLanguage:
		return "InvalidLanguage"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the unified error type returned by this package's archive, sheet
// and sound operations. Cell reads (ReadCell, ReadBit) return *CellError
// instead.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil && e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	case e.Path != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Cause: cause}
}

func newErrMsg(kind Kind, path, message string) *Error {
	return &Error{Kind: kind, Path: path, Message: message}
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
