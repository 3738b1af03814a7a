// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync/atomic"
)

// Parameters configures one instance of WSOLA. Tempo 1.0 means unchanged
// speed, 2.0 doubles it, 0.5 halves it. SampleRate, SequenceMs,
// SeekWindowMs and OverlapMs mirror the four-argument constructor of the
// original Parameters inner class.
type Parameters struct {
	Tempo        float64
	SampleRate   float64
	SequenceMs   int
	SeekWindowMs int
	OverlapMs    int
}

// SpeechParameters favors short sequences, tuned for intelligibility of
// speech at varying tempo.
func SpeechParameters(tempo, sampleRate float64) Parameters {
	return Parameters{Tempo: tempo, SampleRate: sampleRate, SequenceMs: 40, SeekWindowMs: 15, OverlapMs: 12}
}

// MusicParameters favors longer sequences, tuned for musical material.
func MusicParameters(tempo, sampleRate float64) Parameters {
	return Parameters{Tempo: tempo, SampleRate: sampleRate, SequenceMs: 82, SeekWindowMs: 28, OverlapMs: 12}
}

// SlowdownParameters is tuned for large tempo reductions.
func SlowdownParameters(tempo, sampleRate float64) Parameters {
	return Parameters{Tempo: tempo, SampleRate: sampleRate, SequenceMs: 100, SeekWindowMs: 35, OverlapMs: 20}
}

// AutomaticParameters interpolates sequence/seek-window length from tempo,
// linearly between the tempoLow/tempoHigh anchors used by the original
// implementation. The seek-window interpolation keeps the source's literal
// seekC formula; see DESIGN.md for why it is not "corrected".
func AutomaticParameters(tempo, sampleRate float64) Parameters {
	const (
		tempoLow  = 0.5
		tempoHigh = 2.0

		sequenceMsLow  = 125.0
		sequenceMsHigh = 50.0

		seekLow  = 25.0
		seekHigh = 15.0
	)

	sequenceK := (sequenceMsHigh - sequenceMsLow) / (tempoHigh - tempoLow)
	sequenceC := sequenceMsLow - sequenceK*tempoLow

	seekK := (seekHigh - seekLow) / (tempoHigh - tempoLow)
	seekC := seekLow - seekK*seekLow

	sequenceMs := int(sequenceC + sequenceK*tempo + 0.5)
	seekWindowMs := int(seekC + seekK*tempo + 0.5)

	return Parameters{Tempo: tempo, SampleRate: sampleRate, SequenceMs: sequenceMs, SeekWindowMs: seekWindowMs, OverlapMs: 12}
}

// DispatcherBackChannel is the narrow interface WSOLA uses to tell its
// owning dispatcher that its buffer geometry changed. AudioDispatcher
// satisfies it; tests may install a fake.
type DispatcherBackChannel interface {
	SetStepSizeAndOverlap(bufferSizeSamples, overlapSamples SampleIndex)
}

// WSOLA is a streaming Waveform-Similarity-based Overlap-Add time
// stretcher. It implements AudioProcessor. Tempo changes are pushed through
// SetParameters and picked up atomically at the start of the next Process
// call; WSOLA never blocks waiting for a new parameter set.
type WSOLA struct {
	seekWindowLength SampleIndex
	seekLength       SampleIndex
	overlapLength    SampleIndex

	output2input atomic.Uint64 // float64 bits

	pMidBuffer    []float32
	pRefMidBuffer []float32
	outputBuffer  []float32

	intSkip   SampleIndex
	sampleReq SampleIndex

	dispatcher    atomic.Pointer[DispatcherBackChannel]
	newParameters atomic.Pointer[Parameters]
}

// NewWSOLA creates a WSOLA processor for the given channel count and
// initial parameters.
func NewWSOLA(params Parameters, channelsPerSample int) *WSOLA {
	w := &WSOLA{}
	w.output2input.Store(math.Float64bits(1.0))
	w.SetParameters(params)
	w.applyNewParameters(NewSampleMath(channelsPerSample))
	return w
}

// SetParameters publishes a new parameter set. It is picked up at the top
// of the next Process call; intermediate sets published before that are
// lost by design (single-slot hand-off, spec.md §9).
func (w *WSOLA) SetParameters(params Parameters) {
	p := params
	w.newParameters.Store(&p)
}

// SetDispatcher installs the back-channel used to propagate buffer-geometry
// changes. May be left unset; WSOLA silently skips the notification rather
// than failing when no dispatcher has been installed.
func (w *WSOLA) SetDispatcher(d DispatcherBackChannel) {
	w.dispatcher.Store(&d)
}

// InputBufferSize is the number of samples (not array elements) WSOLA
// requires per Process call.
func (w *WSOLA) InputBufferSize() SampleIndex { return w.sampleReq }

func (w *WSOLA) outputBufferSize() SampleIndex { return w.seekWindowLength - w.overlapLength }

// Overlap is the number of samples the dispatcher should overlap between
// successive input buffers fed to this WSOLA instance.
func (w *WSOLA) Overlap() SampleIndex { return w.sampleReq - w.intSkip }

func (w *WSOLA) applyNewParameters(samplesMath SampleMath) bool {
	params := w.newParameters.Swap(nil)
	if params == nil {
		return false
	}

	w.output2input.Store(math.Float64bits(1.0 / params.Tempo))
	oldOverlapLength := w.overlapLength

	pRate := params.SampleRate / 1000
	w.overlapLength = SampleIndex(int(pRate * float64(params.OverlapMs)))
	w.seekWindowLength = SampleIndex(int(pRate * float64(params.SequenceMs)))
	w.seekLength = SampleIndex(int(pRate * float64(params.SeekWindowMs)))

	// Mandated fix (spec.md §9): reallocate when overlap grew OR the mid
	// buffer is not yet allocated. With "and", the first call would still
	// allocate (overlapLength > 0 and pMidBuffer == nil), but a later call
	// that grows the overlap would keep the shorter mid buffers and the
	// overlap loops would index past their end.
	if w.overlapLength > oldOverlapLength || w.pMidBuffer == nil {
		w.pMidBuffer = samplesMath.Realloc(w.pMidBuffer, int(w.overlapLength))
		w.pRefMidBuffer = samplesMath.Realloc(w.pRefMidBuffer, int(w.overlapLength))
	}

	nominalSkip := params.Tempo * float64(w.seekWindowLength-w.overlapLength)
	w.intSkip = SampleIndex(int(nominalSkip + 0.5))

	w.sampleReq = max(w.intSkip+w.overlapLength, w.seekWindowLength) + w.seekLength
	w.outputBuffer = samplesMath.Realloc(w.outputBuffer, int(w.outputBufferSize()))

	return true
}

// precalcCorrReference slopes the amplitude of the mid buffer so that the
// cross-correlation search favors centered alignments.
func (w *WSOLA) precalcCorrReference(samplesMath SampleMath) {
	for i := SampleIndex(0); i < w.overlapLength; i++ {
		off := int(samplesMath.SampleToArrayIndex(i))
		temp := float32(int(i) * int(w.overlapLength-i))
		for c := 0; c < samplesMath.Channels; c++ {
			w.pRefMidBuffer[off+c] = w.pMidBuffer[off+c] * temp
		}
	}
}

// calcCrossCorr computes the normalized cross-correlation between the
// pre-sloped reference and compare at the given sample offset, both
// projected to mono.
func (w *WSOLA) calcCrossCorr(mixingPos, compare []float32, offset SampleIndex, samplesMath SampleMath) float64 {
	var corr, norm float64
	for i := SampleIndex(0); i < w.overlapLength; i++ {
		monoMp := float64(samplesMath.MonoSample(mixingPos, i))
		monoCmp := float64(samplesMath.MonoSample(compare, i+offset))
		corr += monoMp * monoCmp
		norm += monoMp * monoMp
	}
	if norm < 1e-8 {
		norm = 1.0
	}
	return corr / math.Sqrt(norm)
}

// seekBestOverlapPosition scans the seek window for the offset that
// maximizes a tempo-weighted cross-correlation score, favoring offsets near
// the center of the range. Ties are broken by the first (smallest) offset.
func (w *WSOLA) seekBestOverlapPosition(input []float32, position SampleIndex, samplesMath SampleMath) SampleIndex {
	w.precalcCorrReference(samplesMath)

	bestCorrelation := -10.0
	var bestOffset SampleIndex

	for tempOffset := SampleIndex(0); tempOffset < w.seekLength; tempOffset++ {
		comparePosition := position + tempOffset

		current := w.calcCrossCorr(w.pRefMidBuffer, input, comparePosition, samplesMath)
		t := float64(2*int(tempOffset)-int(w.seekLength)) / float64(w.seekLength)
		current = (current + 0.1) * (1.0 - 0.25*t*t)

		if current > bestCorrelation {
			bestCorrelation = current
			bestOffset = tempOffset
		}
	}

	return bestOffset
}

// overlap cross-fades overlapLength samples of the tail of the previous
// sequence (mid buffer) with input starting at inputOffset into output
// starting at outputOffset.
func (w *WSOLA) overlap(output []float32, outputOffset SampleIndex, input []float32, inputOffset SampleIndex, samplesMath SampleMath) {
	for i := SampleIndex(0); i < w.overlapLength; i++ {
		itemp := float32(w.overlapLength - i)
		offO := int(samplesMath.SampleToArrayIndex(i + outputOffset))
		offI := int(samplesMath.SampleToArrayIndex(i + inputOffset))
		offM := int(samplesMath.SampleToArrayIndex(i))
		for c := 0; c < samplesMath.Channels; c++ {
			output[offO+c] = (input[offI+c]*float32(i) + w.pMidBuffer[offM+c]*itemp) / float32(w.overlapLength)
		}
	}
}

// Process implements AudioProcessor. It expects event's float buffer to
// contain exactly InputBufferSize samples, searches for the best overlap
// offset, cross-fades, copies the sequence body, refreshes the mid buffer,
// and replaces the event's buffer with the (shorter) output buffer.
func (w *WSOLA) Process(event *AudioEvent) bool {
	samplesMath := event.SampleMath()
	input := event.FloatBuffer()

	offset := w.seekBestOverlapPosition(input, 0, samplesMath)

	w.overlap(w.outputBuffer, 0, input, offset, samplesMath)

	sequenceLength := w.seekWindowLength - 2*w.overlapLength
	samplesMath.Copy(input, offset+w.overlapLength, w.outputBuffer, w.overlapLength, sequenceLength)

	samplesMath.Copy(input, offset+sequenceLength+w.overlapLength, w.pMidBuffer, 0, w.overlapLength)

	event.SetFloatBuffer(w.outputBuffer)
	event.SetOverlap(0)
	event.Output2InputRatio = math.Float64frombits(w.output2input.Load())

	if w.applyNewParameters(samplesMath) {
		if dp := w.dispatcher.Load(); dp != nil && *dp != nil {
			(*dp).SetStepSizeAndOverlap(w.InputBufferSize(), w.Overlap())
		}
	}

	return true
}

// Finished implements AudioProcessor. WSOLA holds no resources to release.
func (w *WSOLA) Finished() {}
