// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) streams.
//
// go-audio/aiff decodes to an int-sample IntBuffer, not raw bytes, so
// Decoder re-encodes each sample to big-endian bytes of the file's own bit
// depth before handing it back as an audio.ByteSource: no normalization to
// float, unlike the teacher's original float-Source design, since the
// dispatcher's FloatConverter is where bit-depth-aware decoding belongs.
//
//	decoder := aiff.Decoder{}
//	file, _ := os.Open("audio.aiff")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, source.Format().FrameSize()*4096)
//	n, err := source.Read(buf)
//
// PCM 8/16/24/32-bit are all recognized; compressed AIFF-C variants are not.
//
// # AIFF vs. WAV
//
// AIFF stores samples big-endian (WAV is little-endian) and its sample
// rate as an 80-bit extended float (WAV uses a 32-bit int); Format()
// reports both the byte order and bit depth so callers can tell the two
// apart without inspecting file headers themselves.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF stream
//   - ErrOnlyPCM16bitSupported: the file's bit depth isn't one this package recognizes
//   - ErrUnsupportedAiffLayout: go-audio/aiff could not determine the stream's format
//
// # Limitations
//
//   - AIFF encoding is not supported (decoding only)
//   - AIFF-C (compressed) variants are not supported
//   - Readers without io.ReadSeeker are buffered fully into memory first, since go-audio/aiff requires seeking
package aiff
