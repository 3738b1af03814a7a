// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ik5/tsaudio/formats/vorbis"
	"github.com/ik5/tsaudio/formats/wav"
)

// ExampleDecoder_Decode shows how to decode an Ogg Vorbis file.
func ExampleDecoder_Decode() {
	decoder := vorbis.Decoder{}

	f, err := os.Open("input.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := decoder.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	format := src.Format()
	fmt.Printf("Decoded Vorbis: %v Hz, %d channels\n", format.SampleRate, format.Channels)
}

// ExampleDecoder_Decode_convertToWav demonstrates converting Ogg Vorbis to
// WAV by streaming the decoder's re-encoded PCM16LE bytes into a wav.Sink.
func ExampleDecoder_Decode_convertToWav() {
	vorbisFile, err := os.Open("input.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer vorbisFile.Close()

	vorbisDecoder := vorbis.Decoder{}
	src, err := vorbisDecoder.Decode(vorbisFile)
	if err != nil {
		log.Fatal(err)
	}

	wavFile, err := os.Create("output.wav")
	if err != nil {
		log.Fatal(err)
	}
	defer wavFile.Close()

	format := src.Format()
	sink, err := wav.NewSink(wavFile, int(format.SampleRate), format.Channels)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := io.Copy(sink, src); err != nil && err != io.EOF {
		log.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Ogg Vorbis converted to WAV")
}

// ExampleDecoder_Decode_errorHandling shows error handling for invalid Ogg Vorbis data.
func ExampleDecoder_Decode_errorHandling() {
	decoder := vorbis.Decoder{}

	invalidData := bytes.NewReader([]byte("not an ogg file"))
	_, err := decoder.Decode(invalidData)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Ogg Vorbis decoded successfully")
}

// ExampleDecoder_Decode_streaming demonstrates streaming Ogg Vorbis decoding
// in fixed-size byte chunks.
func ExampleDecoder_Decode_streaming() {
	f, err := os.Open("input.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	decoder := vorbis.Decoder{}
	src, err := decoder.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	buf := make([]byte, 4096)
	var totalBytes int
	for {
		n, err := src.Read(buf)
		totalBytes += n
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Streamed %d bytes from Ogg Vorbis\n", totalBytes)
}

// ExampleDecoder_Decode_quality demonstrates handling different Vorbis
// quality settings: regardless of encoding quality, the decoder always
// presents PCM16LE bytes.
func ExampleDecoder_Decode_quality() {
	f, err := os.Open("input.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	decoder := vorbis.Decoder{}
	src, err := decoder.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	format := src.Format()
	fmt.Printf("Decoded Vorbis: %v Hz, %d channels\n", format.SampleRate, format.Channels)
	fmt.Println("Quality level handled transparently")
}
