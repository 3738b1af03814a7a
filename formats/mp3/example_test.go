// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ik5/tsaudio/formats/mp3"
	"github.com/ik5/tsaudio/formats/wav"
)

// ExampleDecoder_Decode shows how to decode an MP3 file.
func ExampleDecoder_Decode() {
	decoder := mp3.Decoder{}

	f, err := os.Open("input.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := decoder.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	format := src.Format()
	fmt.Printf("Decoded MP3: %v Hz, %d channels\n", format.SampleRate, format.Channels)
}

// ExampleDecoder_Decode_convertToWav demonstrates converting MP3 to WAV by
// streaming the decoder's PCM16LE bytes straight into a wav.Sink.
func ExampleDecoder_Decode_convertToWav() {
	mp3File, err := os.Open("input.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer mp3File.Close()

	mp3Decoder := mp3.Decoder{}
	src, err := mp3Decoder.Decode(mp3File)
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

	fmt.Println("MP3 converted to WAV")
}

// ExampleDecoder_Decode_errorHandling shows error handling for invalid MP3 data.
func ExampleDecoder_Decode_errorHandling() {
	decoder := mp3.Decoder{}

	invalidData := bytes.NewReader([]byte("not an mp3 file"))
	_, err := decoder.Decode(invalidData)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("MP3 decoded successfully")
}

// ExampleDecoder_Decode_streaming demonstrates streaming MP3 decoding in
// fixed-size byte chunks.
func ExampleDecoder_Decode_streaming() {
	f, err := os.Open("input.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	decoder := mp3.Decoder{}
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

	fmt.Printf("Streamed %d bytes from MP3\n", totalBytes)
}

// ExampleDecoder_Decode_metadata shows how MP3 decoding handles stereo output.
func ExampleDecoder_Decode_metadata() {
	f, err := os.Open("input.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	decoder := mp3.Decoder{}
	src, err := decoder.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	if src.Format().Channels == 2 {
		fmt.Println("MP3 decoded as stereo")
	}
}
