// SPDX-License-Identifier: EPL-2.0

package audio

// SampleIndex addresses one multi-channel sample; ArrayIndex addresses one
// float32 slot in an interleaved buffer. Keeping them as distinct types
// means a bare index can never be multiplied by the channel count twice,
// or used in place of the other, without the compiler complaining.
type SampleIndex int

type ArrayIndex int

// SampleMath is the only place in the module that converts between sample
// indices and array indices. Every buffer operation elsewhere goes through
// it. It is parameterized by the channel count and otherwise stateless.
type SampleMath struct {
	Channels int
}

// NewSampleMath builds a SampleMath for the given channel count.
func NewSampleMath(channels int) SampleMath {
	return SampleMath{Channels: channels}
}

// SampleToArrayIndex converts a sample index to the array offset of its
// first channel.
func (m SampleMath) SampleToArrayIndex(i SampleIndex) ArrayIndex {
	return ArrayIndex(int(i) * m.Channels)
}

// ArrayToSampleIndex is the inverse conversion; it panics if a is not
// aligned on a sample boundary, catching the off-by-C bugs the newtypes
// are meant to prevent.
func (m SampleMath) ArrayToSampleIndex(a ArrayIndex) SampleIndex {
	if int(a)%m.Channels != 0 {
		panic("audio: array index is not aligned to a sample boundary")
	}
	return SampleIndex(int(a) / m.Channels)
}

// Realloc allocates a new buffer of newSampleCount*Channels float32s,
// copying the shared prefix of old if old is non-nil.
func (m SampleMath) Realloc(old []float32, newSampleCount int) []float32 {
	n := make([]float32, int(m.SampleToArrayIndex(SampleIndex(newSampleCount))))
	if old != nil {
		copy(n, old)
	}
	return n
}

// Copy copies sampleCount samples from src at srcOffset (in samples) to dst
// at dstOffset (in samples).
func (m SampleMath) Copy(src []float32, srcOffset SampleIndex, dst []float32, dstOffset SampleIndex, sampleCount SampleIndex) {
	so := m.SampleToArrayIndex(srcOffset)
	do := m.SampleToArrayIndex(dstOffset)
	n := m.SampleToArrayIndex(sampleCount)
	copy(dst[do:do+n], src[so:so+n])
}

// Fill sets sampleCount samples starting at offset (in samples) to value.
func (m SampleMath) Fill(buf []float32, offset SampleIndex, sampleCount SampleIndex, value float32) {
	start := m.SampleToArrayIndex(offset)
	end := start + m.SampleToArrayIndex(sampleCount)
	for i := start; i < end; i++ {
		buf[i] = value
	}
}

// Scale multiplies sampleCount samples starting at offset (in samples) by v.
func (m SampleMath) Scale(buf []float32, offset SampleIndex, sampleCount SampleIndex, v float32) {
	start := m.SampleToArrayIndex(offset)
	end := start + m.SampleToArrayIndex(sampleCount)
	for i := start; i < end; i++ {
		buf[i] *= v
	}
}

// MonoSample averages the channels of one sample into a single value.
func (m SampleMath) MonoSample(buf []float32, i SampleIndex) float32 {
	off := m.SampleToArrayIndex(i)
	var sum float32
	for c := 0; c < m.Channels; c++ {
		sum += buf[int(off)+c]
	}
	return sum / float32(m.Channels)
}

// ForEachChannel invokes f once per channel index [0, Channels).
func (m SampleMath) ForEachChannel(f func(channel int)) {
	for c := 0; c < m.Channels; c++ {
		f(c)
	}
}

// SamplesCountFactored rounds samplesCount*factor to the nearest sample
// count.
func (m SampleMath) SamplesCountFactored(samplesCount SampleIndex, factor float64) SampleIndex {
	return SampleIndex(roundHalfAwayFromZero(float64(samplesCount) * factor))
}

// ArrayFactoredLength returns the array length (not sample count) that
// results from scaling originalArrayLen's sample count by factor.
func (m SampleMath) ArrayFactoredLength(originalArrayLen ArrayIndex, factor float64) ArrayIndex {
	samples := m.ArrayToSampleIndex(originalArrayLen)
	return m.SampleToArrayIndex(m.SamplesCountFactored(samples, factor))
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
