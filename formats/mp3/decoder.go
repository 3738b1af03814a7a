// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/tsaudio/audio"
)

// mp3Reader is the slice of *gomp3.Decoder this package depends on, kept
// narrow so tests can substitute a fake.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// byteSource wraps a go-mp3 decoder, which already produces interleaved
// PCM16LE stereo bytes, so no float round trip is needed to present it as
// an audio.ByteSource.
type byteSource struct {
	dec    mp3Reader
	format audio.AudioFormat
}

func (s *byteSource) Format() audio.AudioFormat { return s.format }

func (s *byteSource) Read(p []byte) (int, error) {
	n, err := s.dec.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	return n, err
}

// Skip discards n bytes by reading and throwing them away: go-mp3 decodes
// frame-by-frame, so there is no cheaper way to skip without re-deriving
// its internal frame bookkeeping.
func (s *byteSource) Skip(n int64) (int64, error) {
	var buf [4096]byte
	var skipped int64
	for skipped < n {
		want := n - skipped
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		r, err := s.dec.Read(buf[:want])
		skipped += int64(r)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, fmt.Errorf("%w", err)
		}
		if r == 0 {
			break
		}
	}
	return skipped, nil
}

func (s *byteSource) Close() error { return nil }

// Decoder decodes MPEG-1 Audio Layer 3 streams via go-mp3, which always
// yields 16-bit little-endian stereo PCM.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.ByteSource, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &byteSource{
		dec: dec,
		format: audio.AudioFormat{
			SampleRate: float64(dec.SampleRate()),
			Channels:   2,
			Encoding:   audio.PCM16,
		},
	}, nil
}
