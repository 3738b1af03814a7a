// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync/atomic"
)

// GainProcessor multiplies every non-overlap sample by a volatile gain and
// hard-clips the result to [-1, 1]. The leading overlap samples are left
// untouched so that a sample duplicated between two consecutive events is
// never scaled twice.
type GainProcessor struct {
	gain atomic.Uint64 // bits of a float64, read once per event
}

// NewGainProcessor creates a processor with the given initial gain. A gain
// of 1.0 leaves in-range samples untouched; values outside [-1, 1] clip.
func NewGainProcessor(gain float64) *GainProcessor {
	g := &GainProcessor{}
	g.SetGain(gain)
	return g
}

// SetGain updates the gain. Safe to call concurrently with Process.
func (g *GainProcessor) SetGain(gain float64) {
	g.gain.Store(math.Float64bits(gain))
}

// Gain returns the current gain.
func (g *GainProcessor) Gain() float64 {
	return math.Float64frombits(g.gain.Load())
}

func (g *GainProcessor) Process(event *AudioEvent) bool {
	gain := float32(g.Gain())
	buf := event.FloatBuffer()
	start := int(event.SampleMath().SampleToArrayIndex(event.Overlap()))
	for i := start; i < len(buf); i++ {
		v := buf[i] * gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		buf[i] = v
	}
	return true
}

func (g *GainProcessor) Finished() {}
