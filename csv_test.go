package sqpack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheet_WriteCSV(t *testing.T) {
	columns := []ColumnDescriptor{
		{Kind: KindU8, Pointer: 0},
		{Kind: KindBitFlags, Pointer: 1, Bit: 0},
	}
	rowBuf := []byte{7, 0b1}

	sheet := &Sheet{
		rowOrder: []uint32{3},
		rows:     map[uint32]RowBytes{3: {bytes: rowBuf, columns: columns}},
		Columns:  columns,
	}

	var out bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&out))

	want := "\"index\",\"uint8\",\"bitflags[0]\"\n\"3\",\"7\",\"true\"\n"
	assert.Equal(t, want, out.String())
}

func TestSheet_WriteCSV_PackedIntsUnsupported(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindPackedInts, Pointer: 0}}
	rowBuf := make([]byte, 4)

	sheet := &Sheet{
		rowOrder: []uint32{0},
		rows:     map[uint32]RowBytes{0: {bytes: rowBuf, columns: columns}},
		Columns:  columns,
	}

	var out bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&out))
	assert.Contains(t, out.String(), `"unsupported"`)
}

func TestSheet_WriteCSV_StringColumn(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindString, Pointer: 0, StringsOffset: 4}}
	rowBuf := make([]byte, 4+3)
	binary.BigEndian.PutUint32(rowBuf[0:4], 0)
	copy(rowBuf[4:], []byte("go\x00"))

	sheet := &Sheet{
		rowOrder: []uint32{0},
		rows:     map[uint32]RowBytes{0: {bytes: rowBuf, columns: columns}},
		Columns:  columns,
	}

	var out bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&out))
	assert.Equal(t, "\"index\",\"string\"\n\"0\",\"go\"\n", out.String())
}
