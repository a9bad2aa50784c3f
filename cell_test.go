package sqpack

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowWith(columns []ColumnDescriptor, bytes []byte) RowBytes {
	return RowBytes{bytes: bytes, columns: columns}
}

func TestReadCell_Integers(t *testing.T) {
	columns := []ColumnDescriptor{
		{Kind: KindI8, Pointer: 0},
		{Kind: KindU8, Pointer: 1},
		{Kind: KindI16, Pointer: 2},
		{Kind: KindU16, Pointer: 4},
		{Kind: KindI32, Pointer: 6},
		{Kind: KindU32, Pointer: 10},
	}
	buf := make([]byte, 14)
	buf[0] = 0xFF // -1 as i8
	buf[1] = 200
	binary.BigEndian.PutUint16(buf[2:4], 0xFFFE) // -2 as i16
	binary.BigEndian.PutUint16(buf[4:6], 40000)
	binary.BigEndian.PutUint32(buf[6:10], 0xFFFFFFFE) // -2 as i32
	binary.BigEndian.PutUint32(buf[10:14], 3000000000)

	row := rowWith(columns, buf)

	i8, err := ReadCell[int8](row, 0)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	u8, err := ReadCell[uint8](row, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	i16, err := ReadCell[int16](row, 2)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	u16, err := ReadCell[uint16](row, 3)
	require.NoError(t, err)
	assert.Equal(t, uint16(40000), u16)

	i32, err := ReadCell[int32](row, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), i32)

	u32, err := ReadCell[uint32](row, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(3000000000), u32)
}

func TestReadCell_ZeroBytesYieldZero(t *testing.T) {
	columns := []ColumnDescriptor{
		{Kind: KindI32, Pointer: 0},
		{Kind: KindU32, Pointer: 4},
		{Kind: KindI16, Pointer: 8},
		{Kind: KindU16, Pointer: 10},
	}
	buf := make([]byte, 12)
	row := rowWith(columns, buf)

	i32, err := ReadCell[int32](row, 0)
	require.NoError(t, err)
	assert.Zero(t, i32)

	u32, err := ReadCell[uint32](row, 1)
	require.NoError(t, err)
	assert.Zero(t, u32)

	i16, err := ReadCell[int16](row, 2)
	require.NoError(t, err)
	assert.Zero(t, i16)

	u16, err := ReadCell[uint16](row, 3)
	require.NoError(t, err)
	assert.Zero(t, u16)
}

func TestReadCell_Float(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindF32, Pointer: 0}}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, math.Float32bits(3.5))

	row := rowWith(columns, buf)
	f, err := ReadCell[float32](row, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f)
}

func TestReadCell_Bool(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindBool, Pointer: 0}}

	row := rowWith(columns, []byte{0})
	v, err := ReadCell[bool](row, 0)
	require.NoError(t, err)
	assert.False(t, v)

	row = rowWith(columns, []byte{1})
	v, err = ReadCell[bool](row, 0)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestReadCell_BitFlags(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindBitFlags, Pointer: 0, Bit: 3}}
	row := rowWith(columns, []byte{0b00001000})

	ok, err := ReadBit(row, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	columns[0].Bit = 1
	row = rowWith(columns, []byte{0b00001000})
	ok, err = ReadBit(row, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadCell_String(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindString, Pointer: 0, StringsOffset: 4}}
	buf := make([]byte, 4+5)
	binary.BigEndian.PutUint32(buf[0:4], 0) // string pointer is relative offset 0
	copy(buf[4:], []byte("hi\x00xx"))

	row := rowWith(columns, buf)
	s, err := ReadCell[string](row, 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestReadCell_StringNoTerminator(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindString, Pointer: 0, StringsOffset: 4}}
	buf := make([]byte, 4+2)
	binary.BigEndian.PutUint32(buf[0:4], 0)
	copy(buf[4:], []byte("ab"))

	row := rowWith(columns, buf)
	s, err := ReadCell[string](row, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
}

func TestReadCell_Incompatible(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindI32, Pointer: 0}}
	row := rowWith(columns, make([]byte, 4))

	_, err := ReadCell[string](row, 0)
	require.Error(t, err)
}

func TestReadCell_OutOfBounds(t *testing.T) {
	columns := []ColumnDescriptor{{Kind: KindI32, Pointer: 0}}
	row := rowWith(columns, make([]byte, 4))

	_, err := ReadCell[int32](row, 5)
	require.Error(t, err)
}
