// SPDX-License-Identifier: EPL-2.0

// Command tsaudio-play is a demo CLI that decodes an input file, runs it
// through the Player's gain/WSOLA/resample chain, and writes the result to
// a WAV file. It exercises the module end to end the way a real host
// application would wire it, without a live audio device (out of scope
// per spec.md §1).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ik5/tsaudio"
	"github.com/ik5/tsaudio/audio"
	"github.com/ik5/tsaudio/config"
	"github.com/ik5/tsaudio/formats/aiff"
	"github.com/ik5/tsaudio/formats/mp3"
	"github.com/ik5/tsaudio/formats/vorbis"
	"github.com/ik5/tsaudio/formats/wav"
	"github.com/ik5/tsaudio/resample"
)

var (
	tempo       float64
	gain        float64
	preset      string
	presetsFile string
	outputRate  int
	logLevel    string
)

func newRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}

func decoderFor(reg *audio.Registry, path string) (audio.ByteSourceDecoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := reg.Get(strings.ToLower(ext))
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", ext)
	}
	return dec, nil
}

func resolveParameters(format audio.AudioFormat) (audio.Parameters, error) {
	if presetsFile != "" {
		f, err := os.Open(presetsFile)
		if err != nil {
			return audio.Parameters{}, fmt.Errorf("opening presets file: %w", err)
		}
		defer f.Close()

		presets, err := config.LoadPresets(f)
		if err != nil {
			return audio.Parameters{}, err
		}
		p, ok := presets[preset]
		if !ok {
			return audio.Parameters{}, fmt.Errorf("preset %q not found in %s", preset, presetsFile)
		}
		p.Tempo = tempo
		return p, nil
	}

	builtin := config.BuiltinPresets(tempo, format.SampleRate)
	p, ok := builtin[preset]
	if !ok {
		return audio.Parameters{}, fmt.Errorf("unknown preset %q (want speech, music, slowdown, or auto)", preset)
	}
	return p, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	switch strings.ToLower(logLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	inPath, outPath := args[0], args[1]

	reg := newRegistry()
	dec, err := decoderFor(reg, inPath)
	if err != nil {
		return err
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer inFile.Close()

	src, err := dec.Decode(inFile)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	format := src.Format()
	params, err := resolveParameters(format)
	if err != nil {
		return err
	}

	var after audio.AudioProcessor
	if outputRate > 0 && float64(outputRate) != format.SampleRate {
		factor := float64(outputRate) / format.SampleRate
		after = resample.NewRateTransposer(factor)
		log.Info("resampling", "from", format.SampleRate, "to", outputRate, "factor", factor)
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer outFile.Close()

	sinkRate := int(format.SampleRate)
	if outputRate > 0 {
		sinkRate = outputRate
	}

	var sink *wav.Sink
	player := tsaudio.NewPlayer(nil, after, func(f audio.AudioFormat) (audio.ByteSink, error) {
		s, err := wav.NewSink(outFile, sinkRate, f.Channels)
		if err != nil {
			return nil, err
		}
		sink = s
		return s, nil
	})
	player.SetParameters(params)
	player.SetGain(gain)

	player.OnStateChange(func(old, new tsaudio.PlayerState) {
		log.Info("player state change", "from", old, "to", new)
	})

	if err := player.Load(src, 0); err != nil {
		return fmt.Errorf("loading: %w", err)
	}
	if err := player.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	for player.State() == tsaudio.Playing {
		time.Sleep(20 * time.Millisecond)
	}

	if err := player.RunError(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	if err := player.Eject(); err != nil {
		return fmt.Errorf("eject: %w", err)
	}

	if sink != nil {
		if err := sink.Close(); err != nil {
			return fmt.Errorf("finalizing output: %w", err)
		}
	}

	fmt.Println("Wrote:", outPath)
	return nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tsaudio-play <input> <output.wav>",
		Short: "Decode, time-stretch, and render an audio file to WAV",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlay,
	}

	cmd.Flags().Float64Var(&tempo, "tempo", 1.0, "playback tempo (1.0 = unchanged, 2.0 = double speed)")
	cmd.Flags().Float64Var(&gain, "gain", 1.0, "output gain multiplier")
	cmd.Flags().StringVar(&preset, "preset", "music", "WSOLA preset: speech, music, slowdown, or auto")
	cmd.Flags().StringVar(&presetsFile, "presets-file", "", "YAML file of custom presets (overrides built-ins)")
	cmd.Flags().IntVar(&outputRate, "output-rate", 0, "resample output to this sample rate (0 = keep source rate)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
