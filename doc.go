// SPDX-License-Identifier: EPL-2.0

// Package tsaudio is a streaming, time-scale-modification audio engine: a
// buffered dispatch loop drives a chain of AudioProcessors (gain, WSOLA
// time-stretching, Kaiser-windowed polyphase resampling) over bytes pulled
// from a decoder and pushed to a sink, with no intermediate full-file
// buffering.
//
// Player is the facade most callers use:
//
//	player := tsaudio.NewPlayer(nil, nil, func(format audio.AudioFormat) (audio.ByteSink, error) {
//		return wav.NewSink(outFile, int(format.SampleRate), format.Channels)
//	})
//	player.Load(source, totalFrames)
//	player.SetParameters(audio.MusicParameters(1.5, format.SampleRate))
//	player.Play()
//
// The audio package holds the core engine (AudioDispatcher, WSOLA,
// AudioEvent, ProcessorChain); resample holds the Kaiser-windowed
// polyphase resampler; formats holds the byte-oriented decoders for WAV,
// MP3, Ogg Vorbis, and AIFF; config loads WSOLA presets from YAML.
package tsaudio
