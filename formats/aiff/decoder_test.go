// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/tsaudio/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing.
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := len(buf.Data)
	if samplesToRead > len(m.samples)-m.offset {
		samplesToRead = len(m.samples) - m.offset
	}

	copy(buf.Data, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead, io.EOF
	}
	return samplesToRead, nil
}

func newTestSource(mock *mockAiffReader, bitDepth int) *byteSource {
	enc, _ := pcmEncoding(bitDepth)
	return &byteSource{
		dec: mock,
		format: audio.AudioFormat{
			SampleRate: float64(mock.sampleRate),
			Channels:   mock.channels,
			Encoding:   enc,
		},
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	decoder := Decoder{}
	_, err := decoder.Decode(bytes.NewReader([]byte("This is not AIFF data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	decoder := Decoder{}
	_, err := decoder.Decode(bytes.NewReader([]byte{}))
	if err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockAiffReader{sampleRate: 44100, channels: 2, samples: make([]int, 100)}, 16)

	format := src.Format()
	if format.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want 44100", format.SampleRate)
	}
	if format.Channels != 2 {
		t.Errorf("Channels = %d, want 2", format.Channels)
	}
	if format.Encoding.Endian != audio.BigEndian {
		t.Error("Encoding.Endian = LittleEndian, want BigEndian")
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockAiffReader{sampleRate: 44100, channels: 2, samples: make([]int, 100)}, 16)
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_Read16Bit(t *testing.T) {
	t.Parallel()

	testSamples := []int{0, 16384, -16384, 32767, -32768}
	mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: testSamples}
	src := newTestSource(mock, 16)

	dst := make([]byte, len(testSamples)*2)
	n, err := src.Read(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("Read() error = %v", err)
	}
	if n != len(dst) {
		t.Errorf("Read() n = %d, want %d", n, len(dst))
	}

	for i, want := range testSamples {
		got := int16(uint16(dst[i*2])<<8 | uint16(dst[i*2+1]))
		if int(got) != want {
			t.Errorf("sample[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSource_ReadEOF(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{100, 200}}
	src := newTestSource(mock, 16)

	dst := make([]byte, 4)
	n1, err1 := src.Read(dst)
	if err1 != io.EOF {
		t.Errorf("Read() error = %v, want io.EOF", err1)
	}
	if n1 != 4 {
		t.Errorf("Read() n = %d, want 4", n1)
	}

	n2, err2 := src.Read(dst)
	if err2 != io.EOF {
		t.Errorf("second Read() error = %v, want io.EOF", err2)
	}
	if n2 != 0 {
		t.Errorf("second Read() n = %d, want 0", n2)
	}
}

func TestSource_ReadPartial(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{100, 200, 300, 400, 500}}
	src := newTestSource(mock, 16)

	dst := make([]byte, 4) // 2 samples

	n1, err1 := src.Read(dst)
	if err1 != nil {
		t.Errorf("First Read() error = %v, want nil", err1)
	}
	if n1 != 4 {
		t.Errorf("First Read() n = %d, want 4", n1)
	}

	n2, err2 := src.Read(dst)
	if err2 != nil {
		t.Errorf("Second Read() error = %v, want nil", err2)
	}
	if n2 != 4 {
		t.Errorf("Second Read() n = %d, want 4", n2)
	}

	n3, err3 := src.Read(dst)
	if err3 != io.EOF {
		t.Errorf("Third Read() error = %v, want io.EOF", err3)
	}
	if n3 != 2 {
		t.Errorf("Third Read() n = %d, want 2", n3)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{100, 200}, returnErrors: true}
	src := newTestSource(mock, 16)

	dst := make([]byte, 20)
	_, err := src.Read(dst)
	if err == nil {
		t.Error("Read() error = nil, want error")
	}
}

func TestSource_BitDepthByteEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		input    int
	}{
		{"8-bit", 8, 127},
		{"16-bit", 16, 32767},
		{"24-bit", 24, 8388607},
		{"32-bit", 32, 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{tt.input}}
			src := newTestSource(mock, tt.bitDepth)

			dst := make([]byte, tt.bitDepth/8)
			n, _ := src.Read(dst)
			if n != len(dst) {
				t.Fatalf("Read() n = %d, want %d", n, len(dst))
			}
		})
	}
}

func TestSource_UnsupportedBitDepth(t *testing.T) {
	t.Parallel()

	if _, ok := pcmEncoding(12); ok {
		t.Error("pcmEncoding(12) ok = true, want false")
	}
}

func TestErrors_AreErrors(t *testing.T) {
	t.Parallel()

	testErrors := []error{ErrNotAiffFile, ErrOnlyPCM16bitSupported, ErrUnsupportedAiffLayout}
	for _, err := range testErrors {
		if err == nil {
			t.Error("Expected non-nil error")
		}
		if err.Error() == "" {
			t.Errorf("Error %v has empty message", err)
		}
	}
}

func TestErrors_IsComparison(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"ErrNotAiffFile matches itself", ErrNotAiffFile, ErrNotAiffFile, true},
		{"ErrNotAiffFile doesn't match ErrOnlyPCM16bitSupported", ErrNotAiffFile, ErrOnlyPCM16bitSupported, false},
		{"ErrOnlyPCM16bitSupported matches itself", ErrOnlyPCM16bitSupported, ErrOnlyPCM16bitSupported, true},
		{"ErrUnsupportedAiffLayout matches itself", ErrUnsupportedAiffLayout, ErrUnsupportedAiffLayout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, !tt.want, tt.want)
			}
		})
	}
}

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		message string
	}{
		{ErrNotAiffFile, "not an AIFF file"},
		{ErrOnlyPCM16bitSupported, "only 16-bit PCM AIFF is supported"},
		{ErrUnsupportedAiffLayout, "unsupported AIFF layout"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if tt.err.Error() != tt.message {
				t.Errorf("Error message = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}
}

func BenchmarkSource_Read(b *testing.B) {
	samples := make([]int, 4096)
	for i := range samples {
		samples[i] = i * 100
	}
	mock := &mockAiffReader{sampleRate: 44100, channels: 2, samples: samples}
	src := newTestSource(mock, 16)

	dst := make([]byte, 2048)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		mock.offset = 0
		for {
			n, err := src.Read(dst)
			if err == io.EOF || n == 0 {
				break
			}
		}
	}
}
