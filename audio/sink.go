// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// SinkProcessor is the terminal stage of a processing chain: it encodes
// every non-overlap sample of the event's float buffer to bytes of the
// given format and writes them to a ByteSink. Grounded on GainProcessor's
// overlap-skipping pattern, since a sample duplicated between two
// consecutive events must only reach the sink once.
type SinkProcessor struct {
	sink      ByteSink
	format    AudioFormat
	converter *FloatConverter
	buf       []byte
	err       error
}

// NewSinkProcessor creates a processor that writes samples in format to
// sink. format need not match the dispatcher's source format — only its
// channel count must, since WSOLA/RateTransposer only ever change timing,
// never channel layout.
func NewSinkProcessor(sink ByteSink, format AudioFormat) *SinkProcessor {
	return &SinkProcessor{
		sink:      sink,
		format:    format,
		converter: NewFloatConverter(format),
	}
}

// Err returns the first write error encountered, if any. Once set, Process
// becomes a no-op that keeps returning false.
func (s *SinkProcessor) Err() error { return s.err }

func (s *SinkProcessor) Process(event *AudioEvent) bool {
	if s.err != nil {
		return false
	}

	math := event.SampleMath()
	buf := event.FloatBuffer()
	overlap := event.Overlap()
	if event.TimeStamp() == 0 {
		// The dispatcher reports the full configured overlap on the very
		// first event even though there is no preceding event to have
		// duplicated samples with; write it whole.
		overlap = 0
	}
	start := int(math.SampleToArrayIndex(overlap))
	srcLen := len(buf) - start
	if srcLen <= 0 {
		return true
	}

	need := srcLen * s.format.Encoding.BytesPerSample()
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	if err := s.converter.ToByteArray(buf, start, srcLen, s.buf, 0); err != nil {
		s.err = fmt.Errorf("sink processor: %w", err)
		return false
	}

	if _, err := s.sink.Write(s.buf); err != nil {
		s.err = fmt.Errorf("sink processor: %w", err)
		return false
	}

	return true
}

func (s *SinkProcessor) Finished() {
	if err := s.sink.Drain(); err != nil && s.err == nil {
		s.err = err
	}
}
