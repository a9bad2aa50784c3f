package sqpack

import (
	"encoding/binary"
	"fmt"
)

// Language is one of the localisations a sheet may carry (spec.md §3).
type Language uint16

const (
	LanguageNone     Language = 0
	LanguageJapanese Language = 1
	LanguageEnglish  Language = 2
	LanguageGerman   Language = 3
	LanguageFrench   Language = 4
	LanguageChineseS Language = 5
	LanguageChineseT Language = 6
	LanguageKorean   Language = 7
)

var languageCode = map[Language]string{
	LanguageJapanese: "ja",
	LanguageEnglish:  "en",
	LanguageGerman:   "de",
	LanguageFrench:   "fr",
	LanguageChineseS: "chs",
	LanguageChineseT: "cht",
	LanguageKorean:   "ko",
}

// String renders the language's external suffix, or "None" for LanguageNone.
func (l Language) String() string {
	if code, ok := languageCode[l]; ok {
		return code
	}
	return "None"
}

func languageFromCode(code uint16) (Language, bool) {
	lang := Language(code)
	switch lang {
	case LanguageNone, LanguageJapanese, LanguageEnglish, LanguageGerman,
		LanguageFrench, LanguageChineseS, LanguageChineseT, LanguageKorean:
		return lang, true
	default:
		return 0, false
	}
}

// ColumnKind is the tagged-variant discriminant of a ColumnDescriptor
// (spec.md §3).
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindBool
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindF32
	KindPackedInts
	KindBitFlags
)

// header returns the short CSV type tag for this kind (spec.md §6).
func (k ColumnKind) header(bit uint8) string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindI8:
		return "int8"
	case KindU8:
		return "uint8"
	case KindI16:
		return "int16"
	case KindU16:
		return "uint16"
	case KindI32:
		return "int32"
	case KindU32:
		return "uint32"
	case KindF32:
		return "float"
	case KindPackedInts:
		return "packed"
	case KindBitFlags:
		return fmt.Sprintf("bitflags[%d]", bit)
	default:
		return "unknown"
	}
}

// ColumnDescriptor tells the cell reader how and where to decode a value
// within a row (spec.md §3).
type ColumnDescriptor struct {
	Kind          ColumnKind
	Pointer       uint16
	Bit           uint8  // only meaningful when Kind == KindBitFlags
	StringsOffset uint32 // only meaningful when Kind == KindString
}

func (c ColumnDescriptor) header() string { return c.Kind.header(c.Bit) }

// PageDescriptor names one contiguous range of row indices stored in one
// EXDF file (spec.md §3).
type PageDescriptor struct {
	StartRow uint32
	RowCount uint32
}

// SheetInfo is the decoded contents of a sheet's EXHF header (spec.md §3).
type SheetInfo struct {
	Columns     []ColumnDescriptor
	Pages       []PageDescriptor
	Languages   map[Language]struct{}
	NumEntries  uint32
}

const (
	exhfMagic = 0x45584846
	exdfMagic = 0x45584446
)

func dataTypeFromKind(kind, pointer uint16, dataSetSize uint16) (ColumnDescriptor, error) {
	switch {
	case kind == 0x0:
		return ColumnDescriptor{Kind: KindString, Pointer: pointer, StringsOffset: uint32(dataSetSize)}, nil
	case kind == 0x1:
		return ColumnDescriptor{Kind: KindBool, Pointer: pointer}, nil
	case kind == 0x2:
		return ColumnDescriptor{Kind: KindI8, Pointer: pointer}, nil
	case kind == 0x3:
		return ColumnDescriptor{Kind: KindU8, Pointer: pointer}, nil
	case kind == 0x4:
		return ColumnDescriptor{Kind: KindI16, Pointer: pointer}, nil
	case kind == 0x5:
		return ColumnDescriptor{Kind: KindU16, Pointer: pointer}, nil
	case kind == 0x6:
		return ColumnDescriptor{Kind: KindI32, Pointer: pointer}, nil
	case kind == 0x7:
		return ColumnDescriptor{Kind: KindU32, Pointer: pointer}, nil
	case kind == 0x9:
		return ColumnDescriptor{Kind: KindF32, Pointer: pointer}, nil
	case kind == 0xb:
		return ColumnDescriptor{Kind: KindPackedInts, Pointer: pointer}, nil
	case kind >= 0x19 && kind < 0x21:
		return ColumnDescriptor{Kind: KindBitFlags, Pointer: pointer, Bit: uint8(kind - 0x19)}, nil
	default:
		return ColumnDescriptor{}, newErrMsg(DecodingEXD, "", fmt.Sprintf("unknown column kind %#x", kind))
	}
}

// decodeSheetInfo parses an EXHF header file (spec.md §4.6).
func decodeSheetInfo(exh []byte) (SheetInfo, error) {
	if len(exh) < 0x18 {
		return SheetInfo{}, newErrMsg(DecodingEXD, "", "EXHF header shorter than 0x18")
	}

	magic := binary.BigEndian.Uint32(exh[0:4])
	if magic != exhfMagic {
		return SheetInfo{}, newErr(DecodingEXD, "", newErrMsg(MagicMissing, "", "EXHF"))
	}

	dataSetSize := binary.BigEndian.Uint16(exh[0x06:0x08])
	numTypes := binary.BigEndian.Uint16(exh[0x08:0x0A])
	numPages := binary.BigEndian.Uint16(exh[0x0A:0x0C])
	numLangs := binary.BigEndian.Uint16(exh[0x0C:0x0E])
	numEntries := binary.BigEndian.Uint32(exh[0x14:0x18])

	required := 0x20 + 4*int(numTypes) + 8*int(numPages) + 2*int(numLangs)
	if len(exh) < required {
		return SheetInfo{}, newErrMsg(DecodingEXD, "", fmt.Sprintf("EXHF body too short: have %d, need %d", len(exh), required))
	}

	columnsStart := 0x20
	columnsEnd := columnsStart + 4*int(numTypes)
	pagesEnd := columnsEnd + 8*int(numPages)

	columns := make([]ColumnDescriptor, numTypes)
	for i := 0; i < int(numTypes); i++ {
		rec := exh[columnsStart+i*4 : columnsStart+i*4+4]
		kind := binary.BigEndian.Uint16(rec[0:2])
		pointer := binary.BigEndian.Uint16(rec[2:4])
		col, err := dataTypeFromKind(kind, pointer, dataSetSize)
		if err != nil {
			return SheetInfo{}, err
		}
		columns[i] = col
	}

	pages := make([]PageDescriptor, numPages)
	for i := 0; i < int(numPages); i++ {
		rec := exh[columnsEnd+i*8 : columnsEnd+i*8+8]
		pages[i] = PageDescriptor{
			StartRow: binary.BigEndian.Uint32(rec[0:4]),
			RowCount: binary.BigEndian.Uint32(rec[4:8]),
		}
	}

	languages := make(map[Language]struct{}, numLangs)
	for i := 0; i < int(numLangs); i++ {
		rec := exh[pagesEnd+i*2 : pagesEnd+i*2+2]
		// The language table is little-endian, unlike the rest of the header.
		code := binary.LittleEndian.Uint16(rec)
		lang, ok := languageFromCode(code)
		if !ok {
			return SheetInfo{}, newErrMsg(DecodingEXD, "", fmt.Sprintf("unknown language code %d", code))
		}
		languages[lang] = struct{}{}
	}

	return SheetInfo{
		Columns:    columns,
		Pages:      pages,
		Languages:  languages,
		NumEntries: numEntries,
	}, nil
}

// RowBytes is one row's raw fixed+variable byte region, plus the column
// layout shared by every row of its sheet.
type RowBytes struct {
	bytes   []byte
	columns []ColumnDescriptor
}

// Sheet is a decoded tabular asset: an ordered row_index -> RowBytes mapping
// over a shared column layout (spec.md §3).
type Sheet struct {
	rowOrder []uint32
	rows     map[uint32]RowBytes
	Columns  []ColumnDescriptor
}

// Row returns the bytes for rowIndex, or ok == false if absent.
func (s *Sheet) Row(rowIndex uint32) (RowBytes, bool) {
	r, ok := s.rows[rowIndex]
	return r, ok
}

// RowIndices returns every row index in ingestion order (page order, then
// on-disk order within each page).
func (s *Sheet) RowIndices() []uint32 {
	out := make([]uint32, len(s.rowOrder))
	copy(out, s.rowOrder)
	return out
}

// decodeSheetPages parses each EXDF page in header order, aggregating rows
// into a Sheet (spec.md §4.7).
func decodeSheetPages(info SheetInfo, pages [][]byte) (*Sheet, error) {
	sheet := &Sheet{
		rows:    make(map[uint32]RowBytes),
		Columns: info.Columns,
	}

	for pageIdx, page := range info.Pages {
		if pageIdx >= len(pages) {
			return nil, newErrMsg(DecodingEXD, "", fmt.Sprintf("missing page buffer for page %d", pageIdx))
		}
		buf := pages[pageIdx]
		if len(buf) < 0x20 {
			return nil, newErrMsg(DecodingEXD, "", "EXDF page shorter than 0x20")
		}

		magic := binary.BigEndian.Uint32(buf[0:4])
		if magic != exdfMagic {
			return nil, newErr(DecodingEXD, "", newErrMsg(MagicMissing, "", "EXDF"))
		}

		offsetSize := binary.BigEndian.Uint32(buf[0x08:0x0C])
		dataSize := binary.BigEndian.Uint32(buf[0x0C:0x10])
		required := 0x20 + int(offsetSize) + int(dataSize)
		if len(buf) < required {
			return nil, newErrMsg(DecodingEXD, "", fmt.Sprintf("EXDF page too short: have %d, need %d", len(buf), required))
		}

		type rowLoc struct {
			index  uint32
			offset uint32
		}
		var locs []rowLoc
		tableStart := 0x20
		limit := page.StartRow + page.RowCount
		for i := 0; ; i++ {
			recStart := tableStart + 8*i
			if recStart+8 > tableStart+int(offsetSize) {
				break
			}
			rec := buf[recStart : recStart+8]
			rowIndex := binary.BigEndian.Uint32(rec[0:4])
			rowOffset := binary.BigEndian.Uint32(rec[4:8])
			locs = append(locs, rowLoc{index: rowIndex, offset: rowOffset})
			if rowIndex >= limit {
				break
			}
		}

		for _, loc := range locs {
			if _, dup := sheet.rows[loc.index]; dup {
				return nil, newErrMsg(DecodingEXD, "", fmt.Sprintf("duplicate row index %d", loc.index))
			}

			if int(loc.offset)+4 > len(buf) {
				return nil, newErrMsg(DecodingEXD, "", "row size pointer out of bounds")
			}
			rowSize := binary.BigEndian.Uint32(buf[loc.offset : loc.offset+4])

			// Skip the 6-byte row prelude (u32 row_size + 2 unidentified bytes).
			start := int(loc.offset) + 6
			end := start + int(rowSize)
			if end > len(buf) {
				return nil, newErrMsg(DecodingEXD, "", "row content out of bounds")
			}

			rowBytes := make([]byte, rowSize)
			copy(rowBytes, buf[start:end])

			sheet.rowOrder = append(sheet.rowOrder, loc.index)
			sheet.rows[loc.index] = RowBytes{bytes: rowBytes, columns: info.Columns}
		}
	}

	return sheet, nil
}

// LoadSheet fetches a sheet's header and every page for the requested
// language from the archive and decodes it (spec.md §6). sheetName is the
// bare sheet name, with no "exd/" prefix and no extension.
func (a *Archive) LoadSheet(sheetName string, lang Language, ix *SheetIndex) (*Sheet, error) {
	headerPath := fmt.Sprintf("exd/%s.exh", sheetName)
	id, err := Identify(headerPath)
	if err != nil {
		return nil, err
	}

	exh, err := a.ReadRawWithIndex(id, ix.index)
	if err != nil {
		return nil, err
	}

	info, err := decodeSheetInfo(exh)
	if err != nil {
		return nil, err
	}

	if _, ok := info.Languages[lang]; !ok {
		return nil, &Error{Kind: InvalidLanguage, Message: fmt.Sprintf("language %s not available for sheet %q", lang, sheetName)}
	}

	pages := make([][]byte, len(info.Pages))
	for i, page := range info.Pages {
		pagePath := sheetPagePath(sheetName, lang, page.StartRow)
		pid, err := Identify(pagePath)
		if err != nil {
			return nil, err
		}
		buf, err := a.ReadRawWithIndex(pid, ix.index)
		if err != nil {
			return nil, err
		}
		pages[i] = buf
	}

	return decodeSheetPages(info, pages)
}

// LoadSheetDefault loads sheetName with LanguageNone, mirroring callers that
// don't care about localisation.
func (a *Archive) LoadSheetDefault(sheetName string, ix *SheetIndex) (*Sheet, error) {
	return a.LoadSheet(sheetName, LanguageNone, ix)
}

func sheetPagePath(sheetName string, lang Language, startRow uint32) string {
	if lang == LanguageNone {
		return fmt.Sprintf("exd/%s_%d.exd", sheetName, startRow)
	}
	return fmt.Sprintf("exd/%s_%d_%s.exd", sheetName, startRow, lang)
}
