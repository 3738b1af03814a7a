// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// ByteSource is the external collaborator the dispatcher pulls raw,
// format-described bytes from. Read follows io.Reader semantics; a read
// that returns 0, io.EOF signals end of stream.
type ByteSource interface {
	Format() AudioFormat
	Read(p []byte) (n int, err error)
	Skip(n int64) (skipped int64, err error)
	Close() error
}

// ByteSink is the external collaborator the dispatcher-chain integration
// ultimately writes decoded bytes to. Write blocks for back-pressure.
type ByteSink interface {
	Write(p []byte) (n int, err error)
	Drain() error
	Close() error
	MicrosecondPosition() (int64, bool)
}

// AudioDispatcher pulls bytes from a ByteSource, decodes them into a
// reusable float buffer with overlap bookkeeping, and drives a
// ProcessorChain one event at a time. Exactly one worker goroutine calls
// Run; the dispatcher exclusively owns the byte stream and its buffers
// while Run is active.
type AudioDispatcher struct {
	source    ByteSource
	format    AudioFormat
	math      SampleMath
	converter *FloatConverter

	audioFloatBuffer []float32
	audioByteBuffer  []byte

	samplesOverlap   SampleIndex
	samplesStepSize  SampleIndex
	byteOverlap      int
	byteStepSize     int

	bytesToSkip    int64
	bytesProcessed int64

	event *AudioEvent

	stopped atomic.Bool

	zeroPadFirstBuffer bool
	zeroPadLastBuffer  bool

	chain *ProcessorChain
}

// NewAudioDispatcher creates a dispatcher reading from source with the given
// buffer size and overlap, both in samples. zeroPadLastBuffer defaults to
// true, matching the original implementation.
func NewAudioDispatcher(source ByteSource, bufferSizeSamples, overlapSamples SampleIndex) *AudioDispatcher {
	format := source.Format()
	d := &AudioDispatcher{
		source:            source,
		format:            format,
		math:              NewSampleMath(format.Channels),
		converter:         NewFloatConverter(format),
		event:             NewAudioEvent(format),
		zeroPadLastBuffer: true,
		chain:             NewProcessorChain(),
	}
	d.SetStepSizeAndOverlap(bufferSizeSamples, overlapSamples)
	d.event.SetFloatBuffer(d.audioFloatBuffer)
	d.event.SetOverlap(d.samplesOverlap)
	return d
}

// Chain returns the processor chain driven by Run.
func (d *AudioDispatcher) Chain() *ProcessorChain { return d.chain }

// Format returns the format of the underlying byte source.
func (d *AudioDispatcher) Format() AudioFormat { return d.format }

// Skip arranges for seconds worth of bytes to be skipped before the first
// event is produced. Must be called before Run.
func (d *AudioDispatcher) Skip(seconds float64) {
	samples := int64(seconds*d.format.SampleRate + 0.5)
	d.bytesToSkip = samples * int64(d.format.FrameSize())
}

// SetZeroPadFirstBuffer controls whether the first event is padded with
// leading zeros up to the full buffer size (true) or filled with a full
// buffer of fresh samples at offset 0 (false, the default).
func (d *AudioDispatcher) SetZeroPadFirstBuffer(v bool) { d.zeroPadFirstBuffer = v }

// SetZeroPadLastBuffer controls whether a short final read is zero-padded
// to the canonical buffer size (true, the default) or delivered as a
// shortened buffer.
func (d *AudioDispatcher) SetZeroPadLastBuffer(v bool) { d.zeroPadLastBuffer = v }

// SetStepSizeAndOverlap reallocates the dispatcher's buffers for a new
// buffer size / overlap, both in samples. Must be called between events,
// never while a read is in flight — WSOLA calls this via its dispatcher
// back-channel when its own geometry changes.
func (d *AudioDispatcher) SetStepSizeAndOverlap(bufferSizeSamples, overlapSamples SampleIndex) {
	d.audioFloatBuffer = d.math.Realloc(nil, int(bufferSizeSamples))
	d.samplesOverlap = overlapSamples
	d.samplesStepSize = bufferSizeSamples - overlapSamples

	frameSize := d.format.FrameSize()
	d.audioByteBuffer = make([]byte, int(bufferSizeSamples)*frameSize)
	d.byteOverlap = int(overlapSamples) * frameSize
	d.byteStepSize = int(d.samplesStepSize) * frameSize
}

// IsStopped reports whether the dispatcher has stopped or finished.
func (d *AudioDispatcher) IsStopped() bool { return d.stopped.Load() }

// Stop requests the worker to exit at the next loop boundary. Safe to call
// from any goroutine; idempotent.
func (d *AudioDispatcher) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	d.chain.FinishAll()
	if err := d.source.Close(); err != nil {
		log.Warn("audio: error closing byte source", "err", err)
	}
}

// SecondsProcessed returns the position, in seconds, implied by
// bytesProcessed alone (ignoring any rate-changing processor downstream).
func (d *AudioDispatcher) SecondsProcessed() float64 {
	frameSize := d.format.FrameSize()
	if frameSize == 0 {
		return 0
	}
	samples := float64(d.bytesProcessed) / float64(frameSize)
	return samples / d.format.SampleRate
}

// Run drives the dispatch loop on the calling goroutine until the source is
// exhausted or Stop is called. It is the worker thread's entry point in the
// two-thread concurrency model of §5.
func (d *AudioDispatcher) Run() error {
	d.bytesProcessed = 0
	if err := d.skipToStart(); err != nil {
		return err
	}

	for {
		if d.stopped.Load() {
			break
		}
		d.event.SetBytesProcessed(d.bytesProcessed)
		bytesRead, err := d.readNextAudioBlock()
		if err != nil {
			return err
		}
		d.event.SetOverlap(d.samplesOverlap)
		if bytesRead <= 0 || d.stopped.Load() {
			break
		}

		d.chain.ForEach(func(p AudioProcessor) bool {
			return p.Process(d.event)
		})
		d.bytesProcessed += int64(bytesRead)
	}

	d.Stop()
	return nil
}

func (d *AudioDispatcher) skipToStart() error {
	if d.bytesProcessed >= d.bytesToSkip {
		return nil
	}
	skipped, err := d.source.Skip(d.bytesToSkip)
	if err != nil || skipped != d.bytesToSkip {
		log.Warn("audio: short skip", "requested", d.bytesToSkip, "skipped", skipped)
		return fmt.Errorf("%w: skipped %d of %d bytes", ErrShortSkip, skipped, d.bytesToSkip)
	}
	d.bytesProcessed += d.bytesToSkip
	return nil
}

// readNextAudioBlock implements the block read policy of spec.md §4.3: it
// fills d.audioFloatBuffer (and the backing d.audioByteBuffer) according to
// whether this is the zero-pad-aware first buffer or a stepped buffer, and
// handles the zero-pad-last / shortened-last-buffer end-of-stream policies.
func (d *AudioDispatcher) readNextAudioBlock() (int, error) {
	isFirstBuffer := d.bytesProcessed <= d.bytesToSkip

	var offsetInBytes, offsetInSamples, bytesToRead int
	if isFirstBuffer && !d.zeroPadFirstBuffer {
		bytesToRead = len(d.audioByteBuffer)
		offsetInBytes = 0
		offsetInSamples = 0
	} else {
		bytesToRead = d.byteStepSize
		offsetInBytes = d.byteOverlap
		offsetInSamples = int(d.samplesOverlap)
	}

	if !isFirstBuffer && len(d.audioFloatBuffer) == int(d.samplesOverlap+d.samplesStepSize)*d.format.Channels {
		d.math.Copy(d.audioFloatBuffer, d.samplesStepSize, d.audioFloatBuffer, 0, d.samplesOverlap)
	}

	endOfStream := false
	totalBytesRead := 0
	for !d.stopped.Load() && !endOfStream && totalBytesRead < bytesToRead {
		n, err := d.source.Read(d.audioByteBuffer[offsetInBytes+totalBytesRead : offsetInBytes+bytesToRead])
		if n <= 0 {
			endOfStream = true
			continue
		}
		totalBytesRead += n
		if err != nil {
			endOfStream = true
		}
	}

	switch {
	case endOfStream:
		if d.zeroPadLastBuffer {
			for i := offsetInBytes + totalBytesRead; i < len(d.audioByteBuffer); i++ {
				d.audioByteBuffer[i] = 0
			}
			if err := d.converter.ToFloatArray(d.audioByteBuffer, offsetInBytes, d.audioFloatBuffer,
				int(d.math.SampleToArrayIndex(SampleIndex(offsetInSamples))),
				len(d.audioFloatBuffer)-int(d.math.SampleToArrayIndex(SampleIndex(offsetInSamples)))); err != nil {
				return 0, err
			}
		} else {
			d.audioByteBuffer = d.audioByteBuffer[:offsetInBytes+totalBytesRead]
			totalSamplesRead := totalBytesRead / d.format.FrameSize()
			d.audioFloatBuffer = d.math.Realloc(nil, offsetInSamples+totalSamplesRead)
			if err := d.converter.ToFloatArray(d.audioByteBuffer, offsetInBytes, d.audioFloatBuffer,
				int(d.math.SampleToArrayIndex(SampleIndex(offsetInSamples))),
				int(d.math.SampleToArrayIndex(SampleIndex(totalSamplesRead)))); err != nil {
				return 0, err
			}
		}
	case bytesToRead == totalBytesRead:
		if isFirstBuffer && !d.zeroPadFirstBuffer {
			if err := d.converter.ToFloatArray(d.audioByteBuffer, 0, d.audioFloatBuffer, 0, len(d.audioFloatBuffer)); err != nil {
				return 0, err
			}
		} else {
			if err := d.converter.ToFloatArray(d.audioByteBuffer, offsetInBytes, d.audioFloatBuffer,
				int(d.math.SampleToArrayIndex(SampleIndex(offsetInSamples))),
				int(d.math.SampleToArrayIndex(d.samplesStepSize))); err != nil {
				return 0, err
			}
		}
	case !d.stopped.Load():
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrUnexpectedPartialRead, totalBytesRead, bytesToRead)
	}

	d.event.SetFloatBuffer(d.audioFloatBuffer)
	d.event.SetOverlap(SampleIndex(offsetInSamples))

	return totalBytesRead, nil
}
