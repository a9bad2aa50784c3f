package sqpack

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is a top-level pack category (spec.md §3).
type Category uint8

const (
	CategoryCommon     Category = 0x00
	CategoryBGCommon   Category = 0x01
	CategoryBG         Category = 0x02
	CategoryCut        Category = 0x03
	CategoryChara      Category = 0x04
	CategoryShader     Category = 0x05
	CategoryUI         Category = 0x06
	CategorySound      Category = 0x07
	CategoryVFX        Category = 0x08
	CategoryUIScript   Category = 0x09
	CategoryEXD        Category = 0x0A
	CategoryGameScript Category = 0x0B
	CategoryMusic      Category = 0x0C
	CategorySqpackTest Category = 0x12
	CategoryDebug      Category = 0x13
)

var categoryByPrefix = map[string]Category{
	"common":       CategoryCommon,
	"bgcommon":     CategoryBGCommon,
	"bg":           CategoryBG,
	"cut":          CategoryCut,
	"chara":        CategoryChara,
	"shader":       CategoryShader,
	"ui":           CategoryUI,
	"sound":        CategorySound,
	"vfx":          CategoryVFX,
	"ui_script":    CategoryUIScript,
	"exd":          CategoryEXD,
	"game_script":  CategoryGameScript,
	"music":        CategoryMusic,
	"_sqpack_test": CategorySqpackTest,
	"_debug":       CategoryDebug,
}

// String returns the lowercase path prefix this category was parsed from.
func (c Category) String() string {
	for prefix, cat := range categoryByPrefix {
		if cat == c {
			return prefix
		}
	}
	return fmt.Sprintf("category(%#02x)", uint8(c))
}

// Expansion identifies which expansion's data directory a file lives in.
type Expansion uint8

const (
	ExpansionFFXIV Expansion = 0x00
	ExpansionEX1   Expansion = 0x01
	ExpansionEX2   Expansion = 0x02
)

var expansionByName = map[string]Expansion{
	"ffxiv": ExpansionFFXIV,
	"ex1":   ExpansionEX1,
	"ex2":   ExpansionEX2,
}

// Name returns the expansion directory name ("ffxiv", "ex1", "ex2").
func (e Expansion) Name() string {
	for name, exp := range expansionByName {
		if exp == e {
			return name
		}
	}
	return fmt.Sprintf("expansion(%#02x)", uint8(e))
}

// ExFileIdentifier names a file's pack category, expansion, and number, and
// remembers the logical path it was resolved from (spec.md §3). Immutable
// once constructed.
type ExFileIdentifier struct {
	Category    Category
	Expansion   Expansion
	Number      uint8
	LogicalPath string
}

// BaseName is the six-lowercase-hex-digit "<cat><exp><num>" stem shared by
// the index and every dat file of this pack.
func (id ExFileIdentifier) BaseName() string {
	return fmt.Sprintf("%02x%02x%02x", uint8(id.Category), uint8(id.Expansion), id.Number)
}

// IndexPath returns the on-disk index file path under root.
func (id ExFileIdentifier) IndexPath(root string) string {
	return fmt.Sprintf("%s/%s/%s.win32.index", root, id.Expansion.Name(), id.BaseName())
}

// DatPath returns the on-disk dat file path for dat number n under root.
func (id ExFileIdentifier) DatPath(root string, n uint8) string {
	return fmt.Sprintf("%s/%s/%s.win32.dat%d", root, id.Expansion.Name(), id.BaseName(), n)
}

// Identify classifies a logical asset path into an ExFileIdentifier
// (spec.md §4.2).
func Identify(path string) (ExFileIdentifier, error) {
	if strings.HasPrefix(path, "exd") {
		return ExFileIdentifier{
			Category:    CategoryEXD,
			Expansion:   ExpansionFFXIV,
			Number:      0,
			LogicalPath: path,
		}, nil
	}

	parts := strings.Split(strings.ToLower(path), "/")
	if len(parts) < 3 {
		return ExFileIdentifier{}, newErrMsg(CorruptFileName, path, "expected at least 3 path components")
	}

	cat, ok := categoryByPrefix[parts[0]]
	if !ok {
		return ExFileIdentifier{}, newErrMsg(UnknownFileType, path, fmt.Sprintf("unrecognised category %q", parts[0]))
	}

	exp, ok := expansionByName[parts[1]]
	if !ok {
		return ExFileIdentifier{}, newErrMsg(UnknownExpansion, path, fmt.Sprintf("unrecognised expansion %q", parts[1]))
	}

	number := parseNumberToken(parts[2])

	return ExFileIdentifier{
		Category:    cat,
		Expansion:   exp,
		Number:      number,
		LogicalPath: path,
	}, nil
}

// parseNumberToken parses the first three hex characters of token (the
// substring before any "_") when it is exactly three hex characters long,
// else returns 0.
func parseNumberToken(token string) uint8 {
	if i := strings.IndexByte(token, '_'); i >= 0 {
		token = token[:i]
	}
	if len(token) != 3 {
		return 0
	}
	n, err := strconv.ParseUint(token, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(n)
}
