// SPDX-License-Identifier: EPL-2.0

// Package config loads WSOLA parameter presets from YAML, letting a host
// application ship a presets.yaml instead of hard-coding tempo/sequence/
// seek/overlap milliseconds at call sites.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ik5/tsaudio/audio"
)

// presetFile mirrors the on-disk shape: a map of name to the four
// millisecond knobs audio.Parameters exposes, plus tempo and sample rate.
type presetFile struct {
	Presets map[string]presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Tempo        float64 `yaml:"tempo"`
	SampleRate   float64 `yaml:"sample_rate"`
	SequenceMs   int     `yaml:"sequence_ms"`
	SeekWindowMs int     `yaml:"seek_window_ms"`
	OverlapMs    int     `yaml:"overlap_ms"`
}

// LoadPresets reads a YAML document of the form:
//
//	presets:
//	  speech:
//	    tempo: 1.0
//	    sample_rate: 44100
//	    sequence_ms: 40
//	    seek_window_ms: 15
//	    overlap_ms: 12
//
// and returns the named audio.Parameters values it describes.
func LoadPresets(r io.Reader) (map[string]audio.Parameters, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading presets: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parsing presets: %w", err)
	}

	out := make(map[string]audio.Parameters, len(file.Presets))
	for name, entry := range file.Presets {
		out[name] = audio.Parameters{
			Tempo:        entry.Tempo,
			SampleRate:   entry.SampleRate,
			SequenceMs:   entry.SequenceMs,
			SeekWindowMs: entry.SeekWindowMs,
			OverlapMs:    entry.OverlapMs,
		}
	}
	return out, nil
}

// BuiltinPresets returns the four hard-coded presets audio.WSOLA's
// constructor helpers provide, for use when no presets.yaml is supplied.
func BuiltinPresets(tempo, sampleRate float64) map[string]audio.Parameters {
	return map[string]audio.Parameters{
		"speech":   audio.SpeechParameters(tempo, sampleRate),
		"music":    audio.MusicParameters(tempo, sampleRate),
		"slowdown": audio.SlowdownParameters(tempo, sampleRate),
		"auto":     audio.AutomaticParameters(tempo, sampleRate),
	}
}
