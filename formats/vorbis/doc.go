// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio streams.
//
// oggvorbis decodes straight to float32 frames, so Decoder re-encodes each
// frame to PCM16LE bytes via utils.Float32ToInt16 before handing it back as
// an audio.ByteSource, matching the byte-oriented contract the other
// formats packages and the dispatcher expect.
//
//	decoder := vorbis.Decoder{}
//	file, _ := os.Open("audio.ogg")
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
// Channels and sample rate come from the stream itself; bit depth is
// always forced to PCM16LE since that is the re-encoding target.
//
// # Limitations
//
//   - Vorbis encoding is not supported (decoding only)
//   - Skip reads and discards frames; oggvorbis decodes frame by frame
package vorbis
