package sqpack

import (
	"hash/crc32"
	"strings"
)

// PathHash is the pair of CRC-32 hashes over the folder and file halves of a
// lower-cased logical path (spec.md §4.1).
type PathHash struct {
	FolderHash uint32
	FileHash   uint32
}

// pathCRC is the bit-inverted CRC-32 this format uses: the bitwise
// complement of the standard IEEE CRC-32 that crc32.ChecksumIEEE returns.
func pathCRC(s string) uint32 {
	return ^crc32.ChecksumIEEE([]byte(s))
}

// ComputeHash splits path on the last "/" and hashes each half of the
// lower-cased string independently. A path with no "/" hashes an empty
// folder half.
func ComputeHash(path string) PathHash {
	lower := strings.ToLower(path)

	idx := strings.LastIndexByte(lower, '/')
	var folder, file string
	if idx < 0 {
		folder, file = "", lower
	} else {
		folder, file = lower[:idx], lower[idx+1:]
	}

	return PathHash{
		FolderHash: pathCRC(folder),
		FileHash:   pathCRC(file),
	}
}
