// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes the RIFF/WAVE container.
//
// # Decoding
//
// Decoder walks the RIFF chunk list, skipping anything that isn't "fmt "
// or "data" (LIST/INFO/fact and friends), and hands back a zero-copy
// audio.ByteSource over the data chunk: the bytes are never touched, only
// counted. Bit-depth-aware conversion to float32 happens downstream in
// audio.FloatConverter, not here.
//
//	decoder := wav.Decoder{}
//	file, _ := os.Open("audio.wav")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, source.Format().FrameSize()*4096)
//	n, err := source.Read(buf)
//
// PCM 8/16/24/32 (unsigned 8-bit, signed otherwise) and IEEE float32/64
// are all recognized.
//
// # Encoding
//
// Sink streams PCM16LE bytes incrementally as an audio.ByteSink, for use
// as the dispatcher's sink in the demo CLI. It writes a placeholder header
// immediately and, if the underlying writer is also an io.WriteSeeker,
// rewrites the RIFF/data sizes on Close.
//
//	file, _ := os.Create("output.wav")
//	sink, err := wav.NewSink(file, 8000, 1)
//	// ... sink.Write(pcm16Bytes) for each chunk ...
//	err = sink.Close()
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a valid RIFF/WAVE stream
//   - ErrUnsupportedWavLayout: the fmt chunk is present but not PCM or IEEE float
//   - ErrOnlyPCM16bitSupported: the fmt chunk names a bit depth this package does not recognize
//   - ErrUnsupportedWavChunks: a data chunk appeared before any fmt chunk
package wav
