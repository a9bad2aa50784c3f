package sqpack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathCRC_CaseInsensitive(t *testing.T) {
	a := pathCRC(strings.ToLower("bgm_system_title.scd"))
	b := pathCRC(strings.ToLower("BGM_System_Title.scd"))

	assert.Equal(t, a, b)
	assert.Equal(t, uint32(0xE3B71579), a)
}

func TestPathCRC_FolderHalf(t *testing.T) {
	h := pathCRC("music/ffxiv")
	assert.Equal(t, uint32(0x0AF269D6), h)
}

func TestComputeHash_FullPath(t *testing.T) {
	h := ComputeHash("music/ffxiv/bgm_system_title.scd")
	assert.Equal(t, uint32(0x0AF269D6), h.FolderHash)
	assert.Equal(t, uint32(0xE3B71579), h.FileHash)
}

func TestComputeHash_NoSlash(t *testing.T) {
	withSlash := ComputeHash("bgm_system_title.scd")
	assert.Equal(t, pathCRC(""), withSlash.FolderHash)
	assert.Equal(t, uint32(0xE3B71579), withSlash.FileHash)
}
