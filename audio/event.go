// SPDX-License-Identifier: EPL-2.0

package audio

// AudioEvent is the per-call carrier passed down the processor chain. Its
// float buffer and overlap are mutated in place by processors; mutations
// are visible to every processor further down the chain for this call.
//
// Invariant: len(FloatBuffer) == sampleCount*Channels and
// 0 <= Overlap < sampleCount.
type AudioEvent struct {
	format AudioFormat
	math   SampleMath

	floatBuffer []float32
	byteBuffer  []byte

	overlap SampleIndex

	bytesProcessed int64

	// Output2InputRatio is updated by rate-changing processors (WSOLA,
	// RateTransposer) to the ratio of their output sample count to input
	// sample count, used to compute TimeStamp.
	Output2InputRatio float64
}

// NewAudioEvent creates an event bound to format. The caller installs the
// float/byte buffers with SetFloatBuffer/SetByteBuffer before first use.
func NewAudioEvent(format AudioFormat) *AudioEvent {
	return &AudioEvent{
		format:            format,
		math:              NewSampleMath(format.Channels),
		Output2InputRatio: 1.0,
	}
}

func (e *AudioEvent) Format() AudioFormat { return e.format }

func (e *AudioEvent) SampleMath() SampleMath { return e.math }

func (e *AudioEvent) ChannelsPerSample() int { return e.format.Channels }

func (e *AudioEvent) FloatBuffer() []float32 { return e.floatBuffer }

func (e *AudioEvent) SetFloatBuffer(buf []float32) { e.floatBuffer = buf }

func (e *AudioEvent) ByteBuffer() []byte { return e.byteBuffer }

func (e *AudioEvent) SetByteBuffer(buf []byte) { e.byteBuffer = buf }

func (e *AudioEvent) Overlap() SampleIndex { return e.overlap }

func (e *AudioEvent) SetOverlap(o SampleIndex) { e.overlap = o }

func (e *AudioEvent) BytesProcessed() int64 { return e.bytesProcessed }

func (e *AudioEvent) SetBytesProcessed(n int64) { e.bytesProcessed = n }

// TimeStamp is the current position in seconds: bytes processed divided by
// frame size and sample rate, scaled by the output-to-input ratio of any
// rate-changing processor upstream.
func (e *AudioEvent) TimeStamp() float64 {
	frameSize := e.format.FrameSize()
	if frameSize == 0 {
		return 0
	}
	samplesProcessed := float64(e.bytesProcessed) / float64(frameSize)
	return samplesProcessed / e.format.SampleRate * e.Output2InputRatio
}

// SampleCount returns the number of multi-channel samples currently in the
// float buffer.
func (e *AudioEvent) SampleCount() SampleIndex {
	return e.math.ArrayToSampleIndex(ArrayIndex(len(e.floatBuffer)))
}
