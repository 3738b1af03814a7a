// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"math"
	"testing"

	"github.com/ik5/tsaudio/audio"
)

func constantSignal(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestResampler_UnityFactorPreservesDCLevel(t *testing.T) {
	t.Parallel()

	m := audio.NewSampleMath(1)
	r := NewResampler(false, 1.0, 1.0, m)

	const n = 200
	src := constantSignal(n, 0.7)
	dst := make([]float32, n)

	got := r.Process(1.0, src, 0, n, false, dst, 0, n)
	if got != n {
		t.Fatalf("Process() returned %d, want %d", got, n)
	}

	// Skip the filter's startup/ending transient near the zero-padded
	// edges and check the steady interior.
	for i := n / 4; i < 3*n/4; i++ {
		if math.Abs(float64(dst[i]-0.7)) > 0.05 {
			t.Errorf("dst[%d] = %v, want close to 0.7", i, dst[i])
		}
	}
}

func TestResampler_DownsamplingHalvesLength(t *testing.T) {
	t.Parallel()

	m := audio.NewSampleMath(1)
	r := NewResampler(false, 0.5, 0.5, m)

	const srcN = 400
	const dstN = 200
	src := constantSignal(srcN, 0.5)
	dst := make([]float32, dstN)

	got := r.Process(0.5, src, 0, srcN, false, dst, 0, dstN)
	if got != dstN {
		t.Fatalf("Process() returned %d, want %d", got, dstN)
	}

	for i := dstN / 4; i < 3*dstN/4; i++ {
		if math.Abs(float64(dst[i]-0.5)) > 0.05 {
			t.Errorf("dst[%d] = %v, want close to 0.5", i, dst[i])
		}
	}
}

func TestResampler_UpsamplingDoublesLength(t *testing.T) {
	t.Parallel()

	m := audio.NewSampleMath(1)
	r := NewResampler(false, 1.0, 2.0, m)

	const srcN = 200
	const dstN = 400
	src := constantSignal(srcN, -0.3)
	dst := make([]float32, dstN)

	got := r.Process(2.0, src, 0, srcN, false, dst, 0, dstN)
	if got != dstN {
		t.Fatalf("Process() returned %d, want %d", got, dstN)
	}

	for i := dstN / 4; i < 3*dstN/4; i++ {
		if math.Abs(float64(dst[i]+0.3)) > 0.05 {
			t.Errorf("dst[%d] = %v, want close to -0.3", i, dst[i])
		}
	}
}

func TestResampler_MultiChannelInterleavesIndependently(t *testing.T) {
	t.Parallel()

	m := audio.NewSampleMath(2)
	r := NewResampler(false, 1.0, 1.0, m)

	const frames = 200
	src := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		src[i*2] = 0.4
		src[i*2+1] = -0.4
	}
	dst := make([]float32, frames*2)

	r.Process(1.0, src, 0, len(src), false, dst, 0, len(dst))

	for i := frames / 4; i < 3*frames/4; i++ {
		if math.Abs(float64(dst[i*2]-0.4)) > 0.05 {
			t.Errorf("left channel frame %d = %v, want close to 0.4", i, dst[i*2])
		}
		if math.Abs(float64(dst[i*2+1]+0.4)) > 0.05 {
			t.Errorf("right channel frame %d = %v, want close to -0.4", i, dst[i*2+1])
		}
	}
}

func TestResampler_HighQualityBuildsLargerFilter(t *testing.T) {
	t.Parallel()

	m := audio.NewSampleMath(1)
	small := NewResampler(false, 1.0, 1.0, m)
	large := NewResampler(true, 1.0, 1.0, m)

	if large.nwing <= small.nwing {
		t.Errorf("highQuality nwing = %d, want > standard nwing = %d", large.nwing, small.nwing)
	}
}
