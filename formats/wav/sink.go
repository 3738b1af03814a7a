// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/tsaudio/audio"
)

// Sink is an audio.ByteSink that streams a canonical PCM16LE WAV file. It
// writes a 44-byte header up front with a placeholder size and, if w also
// implements io.WriteSeeker, rewrites the RIFF/data sizes on Close; over a
// plain io.Writer the header sizes stay at the placeholder and the file is
// only valid once concatenated with knowledge of its true length (the demo
// CLI hands Sink an *os.File).
type Sink struct {
	w            io.Writer
	sampleRate   int
	channels     int
	bytesWritten int64
}

// NewSink creates a Sink and writes the WAV header immediately.
func NewSink(w io.Writer, sampleRate, channels int) (*Sink, error) {
	s := &Sink{w: w, sampleRate: sampleRate, channels: channels}
	if err := s.writeHeader(0); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) writeHeader(dataSize uint32) error {
	numChannels := uint16(s.channels)
	const bitsPerSample = 16
	byteRate := uint32(s.sampleRate) * uint32(numChannels) * uint32(bitsPerSample/8)
	blockAlign := numChannels * uint16(bitsPerSample/8)
	riffSize := 36 + dataSize

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(s.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if ws, ok := s.w.(io.WriteSeeker); ok {
		if _, err := ws.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	if _, err := s.w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Write appends raw PCM16LE bytes to the stream.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.bytesWritten += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w", err)
	}
	return n, nil
}

// Drain is a no-op: Write is synchronous, so there is nothing buffered.
func (s *Sink) Drain() error { return nil }

// Close rewrites the header with the final sizes if the underlying writer
// is seekable, then closes it if it is an io.Closer.
func (s *Sink) Close() error {
	if _, ok := s.w.(io.WriteSeeker); ok {
		if err := s.writeHeader(uint32(s.bytesWritten)); err != nil {
			return err
		}
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MicrosecondPosition reports the playback position implied by the bytes
// written so far, assuming 16-bit PCM at the sink's sample rate/channels.
func (s *Sink) MicrosecondPosition() (int64, bool) {
	frameSize := s.channels * 2
	if frameSize == 0 || s.sampleRate == 0 {
		return 0, false
	}
	frames := s.bytesWritten / int64(frameSize)
	return frames * 1_000_000 / int64(s.sampleRate), true
}

var _ audio.ByteSink = (*Sink)(nil)
