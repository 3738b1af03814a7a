// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"sync"

	"github.com/ik5/tsaudio/audio"
)

// MockByteSource generates a fixed-length PCM16LE byte stream, implementing
// audio.ByteSource. Samples come from a waveform function and are encoded
// with audio.FloatConverter, since AudioDispatcher pulls raw bytes, not
// floats.
type MockByteSource struct {
	format  audio.AudioFormat
	data    []byte
	offset  int
	skipErr error
}

// NewMockByteSource creates a source of totalFrames frames of PCM16LE audio
// at the given format, filled by waveform (sample index, channel -> value
// in [-1, 1]).
func NewMockByteSource(format audio.AudioFormat, totalFrames int, waveform func(frame, channel int) float32) *MockByteSource {
	format.Encoding = audio.PCM16
	buf := make([]byte, totalFrames*format.FrameSize())
	conv := audio.NewFloatConverter(format)
	floats := make([]float32, totalFrames*format.Channels)
	for frame := 0; frame < totalFrames; frame++ {
		for ch := 0; ch < format.Channels; ch++ {
			floats[frame*format.Channels+ch] = waveform(frame, ch)
		}
	}
	_ = conv.ToByteArray(floats, 0, len(floats), buf, 0)
	return &MockByteSource{format: format, data: buf}
}

// NewSilentMockByteSource creates a source of totalFrames frames of silence.
func NewSilentMockByteSource(format audio.AudioFormat, totalFrames int) *MockByteSource {
	return NewMockByteSource(format, totalFrames, func(frame, channel int) float32 { return 0 })
}

func (m *MockByteSource) Format() audio.AudioFormat { return m.format }

func (m *MockByteSource) Read(p []byte) (int, error) {
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.offset:])
	m.offset += n
	if m.offset >= len(m.data) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MockByteSource) Skip(n int64) (int64, error) {
	if m.skipErr != nil {
		return 0, m.skipErr
	}
	remaining := int64(len(m.data) - m.offset)
	if n > remaining {
		n = remaining
	}
	m.offset += int(n)
	return n, nil
}

func (m *MockByteSource) Close() error { return nil }

// MockByteSink records every byte written to it, implementing audio.ByteSink.
type MockByteSink struct {
	mu       sync.Mutex
	buf      []byte
	drained  bool
	closed   bool
	writeErr error
}

func NewMockByteSink() *MockByteSink { return &MockByteSink{} }

func (s *MockByteSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *MockByteSink) Drain() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drained = true
	return nil
}

func (s *MockByteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MockByteSink) MicrosecondPosition() (int64, bool) { return 0, false }

// Bytes returns a copy of everything written so far.
func (s *MockByteSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

func (s *MockByteSink) Drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drained
}

func (s *MockByteSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
