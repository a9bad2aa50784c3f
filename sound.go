package sqpack

import (
	"encoding/binary"
	"fmt"
)

// Codec is the per-entry audio codec selector within a sound container
// (spec.md §3).
type Codec int

const (
	CodecNone Codec = iota
	CodecOGG
	CodecMSADPCM
)

// String names the codec, mirroring the original implementation's Display.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecOGG:
		return "OGG"
	case CodecMSADPCM:
		return "MSADPCM"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// SoundHeader is the container-wide header of a sound file (spec.md §3).
type SoundHeader struct {
	Unknown1Count    int16
	Unknown2Count    int16
	EntryCount       int16
	Unknown1         int16
	Unknown1Offset   int32
	EntryTableOffset int32
	Unknown2Offset   int32
	Unknown2         int32
	UnknownOffset1   int32
}

// SoundEntryHeader describes one entry within a sound container.
type SoundEntryHeader struct {
	DataSize      int32
	ChannelCount  int32
	Frequency     int32
	Codec         Codec
	LoopStart     int32
	LoopEnd       int32
	SamplesOffset int32
	AuxChunkCount int16
	Unknown1      int16
}

// SoundEntry is one decoded entry of a SoundFile: its header plus the
// ready-to-consume byte payload (a RIFF/WAVE envelope for MSADPCM, the raw
// framed Vorbis stream for OGG, or nothing for an empty entry).
type SoundEntry struct {
	Header       SoundEntryHeader
	DecodedBytes []byte
}

// SoundFile is a decoded multi-entry audio container (spec.md §3).
type SoundFile struct {
	Header  SoundHeader
	Entries []SoundEntry
}

// endianReader reads little- or big-endian scalars depending on a flag
// resolved once per container (spec.md §9: endianness is carried as a
// decoded flag through the sound parser).
type endianReader struct {
	buf          []byte
	littleEndian bool
}

func (r endianReader) order() binary.ByteOrder {
	if r.littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (r endianReader) i16(offset int) (int16, error) {
	if offset < 0 || offset+2 > len(r.buf) {
		return 0, newErrMsg(DecodingSCD, "", "buffer too short for i16 read")
	}
	return int16(r.order().Uint16(r.buf[offset : offset+2])), nil
}

func (r endianReader) i32(offset int) (int32, error) {
	if offset < 0 || offset+4 > len(r.buf) {
		return 0, newErrMsg(DecodingSCD, "", "buffer too short for i32 read")
	}
	return int32(r.order().Uint32(r.buf[offset : offset+4])), nil
}

// LoadSound resolves path through the archive and decodes the resulting
// bytes as a sound container.
func (a *Archive) LoadSound(path string) (*SoundFile, error) {
	raw, err := a.ReadRaw(path)
	if err != nil {
		return nil, err
	}
	return DecodeSoundFile(raw)
}

// DecodeSoundFile parses the raw bytes of an audio container (spec.md §4.9).
func DecodeSoundFile(data []byte) (*SoundFile, error) {
	little, err := detectSoundEndianness(data)
	if err != nil {
		return nil, err
	}
	r := endianReader{buf: data, littleEndian: little}

	header, err := decodeSoundHeader(r)
	if err != nil {
		return nil, err
	}

	entries, err := decodeSoundEntries(r, header)
	if err != nil {
		return nil, err
	}

	return &SoundFile{Header: header, Entries: entries}, nil
}

// detectSoundEndianness reads the u32 at 0x08 as both little- and
// big-endian; whichever yields 2 or 3 names the file's endianness.
func detectSoundEndianness(data []byte) (bool, error) {
	if len(data) < 0x0C {
		return false, newErrMsg(DecodingSCD, "", "buffer too short to detect endianness")
	}
	field := data[0x08:0x0C]
	be := binary.BigEndian.Uint32(field)
	le := binary.LittleEndian.Uint32(field)

	switch {
	case be == 2 || be == 3:
		return false, nil
	case le == 2 || le == 3:
		return true, nil
	default:
		return false, newErrMsg(DecodingSCD, "", "unable to determine endianness")
	}
}

func decodeSoundHeader(r endianReader) (SoundHeader, error) {
	fileHeaderSize16, err := r.i16(0x0E)
	if err != nil {
		return SoundHeader{}, newErr(DecodingSCD, "", err)
	}
	base := int(fileHeaderSize16)

	u1c, e1 := r.i16(base)
	u2c, e2 := r.i16(base + 0x2)
	ec, e3 := r.i16(base + 0x4)
	u1, e4 := r.i16(base + 0x6)
	u1off, e5 := r.i32(base + 0x8)
	etOff, e6 := r.i32(base + 0xc)
	u2off, e7 := r.i32(base + 0x10)
	u2, e8 := r.i32(base + 0x14)
	uOff1, e9 := r.i32(base + 0x18)

	for _, e := range []error{e1, e2, e3, e4, e5, e6, e7, e8, e9} {
		if e != nil {
			return SoundHeader{}, newErr(DecodingSCD, "", e)
		}
	}

	return SoundHeader{
		Unknown1Count:    u1c,
		Unknown2Count:    u2c,
		EntryCount:       ec,
		Unknown1:         u1,
		Unknown1Offset:   u1off,
		EntryTableOffset: etOff,
		Unknown2Offset:   u2off,
		Unknown2:         u2,
		UnknownOffset1:   uOff1,
	}, nil
}

func decodeSoundEntries(r endianReader, header SoundHeader) ([]SoundEntry, error) {
	entries := make([]SoundEntry, 0, header.EntryCount)

	for i := 0; i < int(header.EntryCount); i++ {
		headerOffsetRaw, err := r.i32(int(header.EntryTableOffset) + 4*i)
		if err != nil {
			return nil, newErr(DecodingSCD, "", err)
		}
		headerOffset := int(headerOffsetRaw)

		eh, err := decodeSoundEntryHeader(r, headerOffset)
		if err != nil {
			return nil, err
		}

		chunksOffset := headerOffset + 32
		dataOffset := chunksOffset
		for j := 0; j < int(eh.AuxChunkCount); j++ {
			length, err := r.i32(dataOffset + 4)
			if err != nil {
				return nil, newErr(DecodingSCD, "", err)
			}
			dataOffset += int(length)
		}

		decoded, err := dispatchSoundCodec(r, eh, chunksOffset, dataOffset)
		if err != nil {
			return nil, err
		}

		entries = append(entries, SoundEntry{Header: eh, DecodedBytes: decoded})
	}

	return entries, nil
}

func decodeSoundEntryHeader(r endianReader, offset int) (SoundEntryHeader, error) {
	dataSize, e1 := r.i32(offset)
	channelCount, e2 := r.i32(offset + 0x4)
	frequency, e3 := r.i32(offset + 0x8)
	codecRaw, e4 := r.i32(offset + 0xc)
	loopStart, e5 := r.i32(offset + 0x10)
	loopEnd, e6 := r.i32(offset + 0x14)
	samplesOffset, e7 := r.i32(offset + 0x18)
	auxChunkCount, e8 := r.i16(offset + 0x1c)
	unknown1, e9 := r.i16(offset + 0x1e)

	for _, e := range []error{e1, e2, e3, e4, e5, e6, e7, e8, e9} {
		if e != nil {
			return SoundEntryHeader{}, newErr(DecodingSCD, "", e)
		}
	}

	var codec Codec
	switch codecRaw {
	case 0x0:
		codec = CodecNone
	case 0x6:
		codec = CodecOGG
	case 0x0C:
		codec = CodecMSADPCM
	default:
		return SoundEntryHeader{}, newErrMsg(DecodingSCD, "", fmt.Sprintf("unknown SCD codec %#x", codecRaw))
	}

	return SoundEntryHeader{
		DataSize:      dataSize,
		ChannelCount:  channelCount,
		Frequency:     frequency,
		Codec:         codec,
		LoopStart:     loopStart,
		LoopEnd:       loopEnd,
		SamplesOffset: samplesOffset,
		AuxChunkCount: auxChunkCount,
		Unknown1:      unknown1,
	}, nil
}

func dispatchSoundCodec(r endianReader, eh SoundEntryHeader, chunksOffset, dataOffset int) ([]byte, error) {
	if eh.Codec == CodecNone || eh.DataSize == 0 {
		return nil, nil
	}

	switch eh.Codec {
	case CodecMSADPCM:
		sampleOffset := chunksOffset + int(eh.SamplesOffset)
		return buildWAVEnvelope(r.buf, dataOffset, sampleOffset, int(eh.DataSize))
	case CodecOGG:
		start := chunksOffset + int(eh.SamplesOffset)
		end := start + int(eh.DataSize)
		if end > len(r.buf) || start < 0 {
			return nil, newErrMsg(DecodingSCD, "", "OGG payload out of bounds")
		}
		out := make([]byte, eh.DataSize)
		copy(out, r.buf[start:end])
		return out, nil
	default:
		return nil, newErrMsg(DecodingSCD, "", fmt.Sprintf("unsupported codec %v", eh.Codec))
	}
}
