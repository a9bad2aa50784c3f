package sqpack

import (
	"bytes"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// DecodePCM decodes an OGG-coded entry's framed Vorbis stream into
// interleaved float32 PCM samples. This sits outside the container
// decoder's own boundary (spec.md §1 treats Vorbis decoding as an external
// collaborator's job); it is an enrichment for callers that want samples
// rather than the raw framed bytes DecodedBytes already carries.
func (e SoundEntry) DecodePCM() ([]float32, int, int, error) {
	if e.Header.Codec != CodecOGG {
		return nil, 0, 0, newErrMsg(DecodingSCD, "", "DecodePCM requires an OGG-coded entry")
	}

	r, err := oggvorbis.NewReader(bytes.NewReader(e.DecodedBytes))
	if err != nil {
		return nil, 0, 0, newErr(DecodingSCD, "", err)
	}

	var samples []float32
	buf := make([]float32, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				return nil, 0, 0, newErr(DecodingSCD, "", err)
			}
			break
		}
	}

	return samples, r.Channels(), r.SampleRate(), nil
}
