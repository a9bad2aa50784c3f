package sqpack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify_ExdOverride(t *testing.T) {
	id, err := Identify("exd/item.exh")
	require.NoError(t, err)
	assert.Equal(t, CategoryEXD, id.Category)
	assert.Equal(t, ExpansionFFXIV, id.Expansion)
	assert.Equal(t, uint8(0), id.Number)
}

func TestIdentify_MusicFFXIV(t *testing.T) {
	id, err := Identify("music/ffxiv/bgm_system_title.scd")
	require.NoError(t, err)

	indexPath := id.IndexPath("/root")
	assert.True(t, strings.HasSuffix(indexPath, "ffxiv/0c0000.win32.index"), indexPath)
}

func TestIdentify_MusicEX2(t *testing.T) {
	id, err := Identify("music/ex2/BGM_EX2_Dan_D09.scd")
	require.NoError(t, err)

	indexPath := id.IndexPath("/root")
	assert.True(t, strings.HasSuffix(indexPath, "ex2/0c0200.win32.index"), indexPath)
}

func TestIdentify_UnknownCategory(t *testing.T) {
	_, err := Identify("nope/ffxiv/foo.scd")
	require.Error(t, err)
	assert.True(t, IsKind(err, UnknownFileType))
}

func TestIdentify_UnknownExpansion(t *testing.T) {
	_, err := Identify("music/ex9/foo.scd")
	require.Error(t, err)
	assert.True(t, IsKind(err, UnknownExpansion))
}

func TestParseNumberToken(t *testing.T) {
	assert.Equal(t, uint8(0x20), parseNumberToken("020"))
	assert.Equal(t, uint8(0), parseNumberToken("bgm"))
	assert.Equal(t, uint8(0), parseNumberToken("ab"))
	assert.Equal(t, uint8(0), parseNumberToken("fff"))
}
