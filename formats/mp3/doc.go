// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Audio Layer 3 streams.
//
// go-mp3 already decodes straight to interleaved 16-bit little-endian
// stereo PCM, so Decoder wraps it directly with no float round trip: the
// audio.ByteSource it returns hands back the decoder's own byte stream.
//
//	decoder := mp3.Decoder{}
//	file, _ := os.Open("audio.mp3")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, source.Format().FrameSize()*4096)
//	n, err := source.Read(buf)
//
// # Output Format
//
// Decoded format is fixed by go-mp3: PCM16LE, 2 channels, at whatever
// sample rate the stream declares (typically 44.1kHz or 48kHz).
//
// # Limitations
//
//   - MP3 encoding is not supported (decoding only)
//   - Output is always stereo
//   - Skip reads and discards frames; go-mp3 has no cheaper seek
package mp3
