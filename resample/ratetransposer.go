// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"sync"

	"github.com/ik5/tsaudio/audio"
)

// RateTransposer is an AudioProcessor that changes the sample rate of the
// events flowing through it by factor: 0.5 halves it, 1.0 leaves it
// unchanged, 2.0 doubles it. Combined with WSOLA it is the basis of
// pitch-shifting (resample to change pitch, then time-stretch back to the
// original duration).
type RateTransposer struct {
	mu     sync.Mutex
	factor float64

	r   *Resampler
	out []float32
}

// NewRateTransposer creates a transposer with the given initial factor.
func NewRateTransposer(factor float64) *RateTransposer {
	return &RateTransposer{factor: factor}
}

// SetFactor updates the live resampling factor. Safe to call concurrently
// with Process.
func (t *RateTransposer) SetFactor(factor float64) {
	t.mu.Lock()
	t.factor = factor
	t.mu.Unlock()
}

func (t *RateTransposer) Process(event *audio.AudioEvent) bool {
	t.mu.Lock()
	factor := t.factor
	t.mu.Unlock()

	samplesMath := event.SampleMath()

	if t.r == nil {
		t.r = NewResampler(false, 0.1, 4.0, samplesMath)
	}

	src := event.FloatBuffer()
	requiredSize := int(samplesMath.ArrayFactoredLength(audio.ArrayIndex(len(src)), factor))

	if len(t.out) != requiredSize {
		t.out = make([]float32, requiredSize)
	}

	t.r.Process(factor, src, 0, len(src), false, t.out, 0, requiredSize)

	event.SetFloatBuffer(t.out)
	event.SetOverlap(samplesMath.SamplesCountFactored(event.Overlap(), factor))

	return true
}

func (t *RateTransposer) Finished() {}
