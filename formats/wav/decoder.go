// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/tsaudio/audio"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// byteSource streams the bytes of a WAVE file's data chunk directly,
// without decoding them to float32. The dispatcher's FloatConverter does
// the bit-depth-aware decoding; this type never looks at sample values.
type byteSource struct {
	r          io.Reader
	format     audio.AudioFormat
	remaining  int64 // bytes left in the data chunk, -1 if unknown
}

func (s *byteSource) Format() audio.AudioFormat { return s.format }

func (s *byteSource) Read(p []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	if s.remaining > 0 && int64(len(p)) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.r.Read(p)
	if s.remaining > 0 {
		s.remaining -= int64(n)
	}
	return n, err
}

func (s *byteSource) Skip(n int64) (int64, error) {
	skipped, err := io.CopyN(io.Discard, s.r, n)
	if s.remaining > 0 {
		s.remaining -= skipped
	}
	return skipped, err
}

func (s *byteSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Decoder parses a RIFF/WAVE header and hands back a zero-copy
// audio.ByteSource over the "data" chunk. Any chunk preceding "data"
// (e.g. "LIST", "INFO", "fact") is skipped, odd-sized chunks are padded to
// an even boundary as RIFF requires.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.ByteSource, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if !bytes.Equal(riffHeader[0:4], []byte("RIFF")) || !bytes.Equal(riffHeader[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	var (
		haveFmt       bool
		audioFormat   uint16
		channels      int
		sampleRate    int
		bitsPerSample int
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			if len(body) < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			if chunkSize%2 != 0 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w", err)
				}
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavChunks
			}
			if audioFormat != wavFormatPCM && audioFormat != wavFormatFloat {
				return nil, ErrUnsupportedWavLayout
			}
			enc, ok := pcmEncoding(audioFormat, bitsPerSample)
			if !ok {
				return nil, ErrOnlyPCM16bitSupported
			}
			return &byteSource{
				r: r,
				format: audio.AudioFormat{
					SampleRate: float64(sampleRate),
					Channels:   channels,
					Encoding:   enc,
				},
				remaining: chunkSize,
			}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, chunkSize); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			if chunkSize%2 != 0 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w", err)
				}
			}
		}
	}
}

func pcmEncoding(audioFormat uint16, bitsPerSample int) (audio.SampleEncoding, bool) {
	if audioFormat == wavFormatFloat {
		switch bitsPerSample {
		case 32:
			return audio.Float32Enc, true
		case 64:
			return audio.Float64Enc, true
		default:
			return audio.SampleEncoding{}, false
		}
	}
	switch bitsPerSample {
	case 8:
		return audio.SampleEncoding{BitDepth: 8, Signed: false, Endian: audio.LittleEndian}, true
	case 16:
		return audio.PCM16, true
	case 24:
		return audio.PCM24, true
	case 32:
		return audio.PCM32, true
	default:
		return audio.SampleEncoding{}, false
	}
}
