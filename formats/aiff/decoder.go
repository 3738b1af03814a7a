// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/tsaudio/audio"
)

// aiffReader is the slice of aiff.Decoder this package depends on, kept
// narrow so tests can substitute a fake.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// byteSource decodes AIFF to its native-bit-depth int samples and
// re-encodes them to big-endian bytes of that same bit depth, matching the
// convention AIFF itself uses on the wire. Unlike WAV, go-audio/aiff never
// hands back raw bytes, so a byte round trip is unavoidable here.
type byteSource struct {
	dec      aiffReader
	format   audio.AudioFormat
	intBuf   *goaudio.IntBuffer
	frameLen int // samples per PCMBuffer call
}

func (s *byteSource) Format() audio.AudioFormat { return s.format }

func (s *byteSource) Read(p []byte) (int, error) {
	frameSize := s.format.Encoding.BitDepth / 8
	wantSamples := len(p) / frameSize
	if wantSamples == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < wantSamples {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, wantSamples),
			Format: s.dec.Format(),
		}
	}
	s.intBuf.Data = s.intBuf.Data[:wantSamples]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		putBigEndian(p[i*frameSize:(i+1)*frameSize], s.intBuf.Data[i], s.format.Encoding.BitDepth)
	}

	written := n * frameSize
	if err != nil && err != io.EOF {
		return written, fmt.Errorf("%w", err)
	}
	if err == io.EOF || n < wantSamples {
		return written, io.EOF
	}
	return written, nil
}

func putBigEndian(dst []byte, v, bitDepth int) {
	switch bitDepth {
	case 8:
		dst[0] = byte(v)
	case 16:
		dst[0] = byte(v >> 8)
		dst[1] = byte(v)
	case 24:
		dst[0] = byte(v >> 16)
		dst[1] = byte(v >> 8)
		dst[2] = byte(v)
	case 32:
		dst[0] = byte(v >> 24)
		dst[1] = byte(v >> 16)
		dst[2] = byte(v >> 8)
		dst[3] = byte(v)
	}
}

func (s *byteSource) Skip(n int64) (int64, error) {
	frameSize := int64(s.format.Encoding.BitDepth / 8)
	var buf [4096]byte
	var skipped int64
	for skipped < n {
		want := n - skipped
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		want -= want % frameSize
		if want == 0 {
			want = frameSize
		}
		r, err := s.Read(buf[:want])
		skipped += int64(r)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
		if r == 0 {
			break
		}
	}
	return skipped, nil
}

func (s *byteSource) Close() error { return nil }

// Decoder decodes AIFF streams via go-audio/aiff, converting the decoded
// samples straight to big-endian bytes of the file's native bit depth: no
// float normalization, since AIFF's PCM container already carries full
// precision for any depth this package recognizes.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.ByteSource, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = &readSeeker{data: data}
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	enc, ok := pcmEncoding(int(dec.BitDepth))
	if !ok {
		return nil, ErrOnlyPCM16bitSupported
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return &byteSource{
		dec: dec,
		format: audio.AudioFormat{
			SampleRate: float64(format.SampleRate),
			Channels:   format.NumChannels,
			Encoding:   enc,
		},
	}, nil
}

func pcmEncoding(bitDepth int) (audio.SampleEncoding, bool) {
	switch bitDepth {
	case 8:
		return audio.SampleEncoding{BitDepth: 8, Signed: true, Endian: audio.BigEndian}, true
	case 16:
		return audio.SampleEncoding{BitDepth: 16, Signed: true, Endian: audio.BigEndian}, true
	case 24:
		return audio.SampleEncoding{BitDepth: 24, Signed: true, Endian: audio.BigEndian}, true
	case 32:
		return audio.SampleEncoding{BitDepth: 32, Signed: true, Endian: audio.BigEndian}, true
	default:
		return audio.SampleEncoding{}, false
	}
}

// readSeeker implements io.ReadSeeker over in-memory data, for AIFF inputs
// that don't already support seeking.
type readSeeker struct {
	data   []byte
	offset int64
}

func (rs *readSeeker) Read(p []byte) (n int, err error) {
	if rs.offset >= int64(len(rs.data)) {
		return 0, io.EOF
	}
	n = copy(p, rs.data[rs.offset:])
	rs.offset += int64(n)
	return n, nil
}

func (rs *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = rs.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(rs.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("negative position")
	}

	rs.offset = newOffset
	return newOffset, nil
}
