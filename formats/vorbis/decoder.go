// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/tsaudio/audio"
	"github.com/ik5/tsaudio/utils"
)

// oggReader is the slice of oggvorbis.Reader this package depends on, kept
// narrow so tests can substitute a fake.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// byteSource decodes Ogg Vorbis to float32 frames and re-encodes them to
// PCM16LE bytes, since oggvorbis has no native byte-oriented output and
// audio.ByteSource must present one.
type byteSource struct {
	dec      oggReader
	format   audio.AudioFormat
	frameBuf []float32
	pending  []byte // encoded bytes not yet handed to the caller
	err      error  // sticky error once the decoder is exhausted or fails
}

func (s *byteSource) Format() audio.AudioFormat { return s.format }

func (s *byteSource) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[n:], s.pending)
			n += c
			s.pending = s.pending[c:]
			continue
		}
		if s.err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, s.err
		}
		s.fill()
	}
	return n, nil
}

// fill decodes one batch of float32 frames and encodes them into s.pending.
func (s *byteSource) fill() {
	framesRead, err := s.dec.Read(s.frameBuf)
	if framesRead > 0 {
		samples := s.frameBuf[:framesRead*s.format.Channels]
		buf := make([]byte, len(samples)*2)
		for i, sample := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(utils.Float32ToInt16(sample)))
		}
		s.pending = buf
	}
	if err != nil {
		s.err = err
	} else if framesRead == 0 {
		s.err = io.EOF
	}
}

func (s *byteSource) Skip(n int64) (int64, error) {
	skipped, err := io.CopyN(io.Discard, s, n)
	if err == io.EOF {
		err = nil
	}
	return skipped, err
}

func (s *byteSource) Close() error { return nil }

// Decoder decodes Ogg Vorbis streams via oggvorbis, presenting the decoded
// float32 frames as PCM16LE bytes.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.ByteSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &byteSource{
		dec: dec,
		format: audio.AudioFormat{
			SampleRate: float64(dec.SampleRate()),
			Channels:   dec.Channels(),
			Encoding:   audio.PCM16,
		},
		frameBuf: make([]float32, 4096*dec.Channels()),
	}, nil
}
