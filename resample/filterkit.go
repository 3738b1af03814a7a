// SPDX-License-Identifier: EPL-2.0

// Package resample implements Kaiser-windowed polyphase sinc resampling,
// the algorithmic core behind tsaudio's pitch-transposing RateTransposer.
// It is a from-scratch Go design against the documented contract of
// libresample/TarsosDSP's FilterKit and RateTransposer, since the upstream
// Resampler class itself was not available to copy from; see DESIGN.md.
package resample

import (
	"math"

	"github.com/ik5/tsaudio/audio"
)

// izeroEpsilon bounds the relative size of the next series term before the
// zeroth-order modified Bessel function series is considered converged.
const izeroEpsilon = 1e-21

// izero computes I0(x), the zeroth-order modified Bessel function of the
// first kind, via its power series. Needed to build the Kaiser window.
func izero(x float64) float64 {
	sum := 1.0
	u := 1.0
	halfx := x / 2.0
	n := 1.0
	for {
		temp := halfx / n
		n++
		temp *= temp
		u *= temp
		sum += u
		if u < izeroEpsilon*sum {
			break
		}
	}
	return sum
}

// lpFilter fills c[0:n] with the coefficients of a Kaiser-windowed ideal
// low-pass filter: cutoff frq (as a fraction of the sampling rate), window
// shape beta, and num coefficients per unit of 1/frq.
func lpFilter(c []float64, n int, frq, beta float64, num int) {
	c[0] = 2.0 * frq
	for i := 1; i < n; i++ {
		temp := math.Pi * float64(i) / float64(num)
		c[i] = math.Sin(2.0*temp*frq) / temp
	}

	ibeta := 1.0 / izero(beta)
	inm1 := 1.0 / float64(n-1)
	for i := 1; i < n; i++ {
		temp := float64(i) * inm1
		temp1 := 1.0 - temp*temp
		if temp1 < 0 {
			temp1 = 0
		}
		c[i] *= izero(beta*math.Sqrt(temp1)) * ibeta
	}
}

// FilterResult accumulates one output sample across every channel while a
// convolution kernel walks one wing of the filter.
type FilterResult struct {
	res []float32
	t   []float32
	math audio.SampleMath
}

// NewFilterResult allocates a per-channel accumulator for math's channel
// count.
func NewFilterResult(math audio.SampleMath) *FilterResult {
	return &FilterResult{
		res:  make([]float32, math.Channels),
		t:    make([]float32, math.Channels),
		math: math,
	}
}

// Clear zeroes the accumulator, ready for the next output sample.
func (fr *FilterResult) Clear() {
	for i := range fr.res {
		fr.res[i] = 0
	}
}

func (fr *FilterResult) setT(v float32) {
	for i := range fr.t {
		fr.t[i] = v
	}
}

func (fr *FilterResult) addT(v float32) {
	for i := range fr.t {
		fr.t[i] += v
	}
}

// MulR scales every channel of the accumulated result by v (Resampler
// passes its lpScl, 1/(2*frq), on both the up- and down-sampling paths).
func (fr *FilterResult) MulR(v float32) {
	for i := range fr.res {
		fr.res[i] *= v
	}
}

// Res returns the accumulated, per-channel output sample.
func (fr *FilterResult) Res() []float32 { return fr.res }

func (fr *FilterResult) addInput(samples []float32, sampleIndex int) {
	base := int(fr.math.SampleToArrayIndex(audio.SampleIndex(sampleIndex)))
	for i := range fr.t {
		fr.t[i] *= samples[base+i]
		fr.res[i] += fr.t[i]
	}
}

// filterUp convolves one wing (inc = +1 right, -1 left) of the up-sampling
// filter (output rate >= input rate) against the sample at xpIndex,
// stepping the filter table by Npc per input sample and interpolating the
// fractional phase when interp is true.
func filterUp(imp, impD []float32, nwing int, interp bool, xp []float32, xpIndex int, ph float64, inc int, fres *FilterResult) {
	ph *= float64(Npc)

	hpIndex := int(ph)
	endIndex := nwing
	hdpIndex := int(ph)

	var a float32
	if interp {
		a = float32(ph - math.Floor(ph))
	}

	if inc == 1 {
		endIndex--
		if ph == 0 {
			hpIndex += Npc
			hdpIndex += Npc
		}
	}

	if interp {
		for hpIndex < endIndex {
			fres.setT(imp[hpIndex])
			fres.addT(impD[hdpIndex] * a)
			hdpIndex += Npc

			fres.addInput(xp, xpIndex)

			hpIndex += Npc
			xpIndex += inc
		}
	} else {
		for hpIndex < endIndex {
			fres.setT(imp[hpIndex])
			fres.addInput(xp, xpIndex)

			hpIndex += Npc
			xpIndex += inc
		}
	}
}

// filterDown convolves one wing of the down-sampling filter (output rate <
// input rate) against the sample at xpIndex, stepping phase by dhb (the
// filter's sampling period for this factor) instead of a fixed Npc.
func filterDown(imp, impD []float32, nwing int, interp bool, xp []float32, xpIndex int, ph float64, inc int, dhb float64, fres *FilterResult) {
	ho := ph * dhb
	endIndex := nwing

	if inc == 1 {
		endIndex--
		if ph == 0 {
			ho += dhb
		}
	}

	if interp {
		for {
			hpIndex := int(ho)
			if hpIndex >= endIndex {
				break
			}
			fres.setT(imp[hpIndex])

			hdpIndex := int(ho)
			a := float32(ho - math.Floor(ho))
			fres.addT(impD[hdpIndex] * a)

			fres.addInput(xp, xpIndex)

			ho += dhb
			xpIndex += inc
		}
	} else {
		for {
			hpIndex := int(ho)
			if hpIndex >= endIndex {
				break
			}
			fres.setT(imp[hpIndex])
			fres.addInput(xp, xpIndex)

			ho += dhb
			xpIndex += inc
		}
	}
}
