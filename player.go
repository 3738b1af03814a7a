// SPDX-License-Identifier: EPL-2.0

// Package tsaudio exposes the Player state machine: the public entry point
// that wires a ByteSource, gain, WSOLA time-stretching, and a ByteSink into
// a running AudioDispatcher, and coordinates play/pause/stop transitions
// between a controller goroutine and the dispatcher's worker goroutine.
package tsaudio

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ik5/tsaudio/audio"
)

// PlayerState enumerates the lifecycle a Player moves through.
type PlayerState int

const (
	NoFileLoaded PlayerState = iota
	FileLoaded
	Playing
	Paused
	Stopped
)

func (s PlayerState) String() string {
	switch s {
	case NoFileLoaded:
		return "NO_FILE_LOADED"
	case FileLoaded:
		return "FILE_LOADED"
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ErrIllegalTransition reports a call made from a state that does not
// permit it.
type ErrIllegalTransition struct {
	Method string
	From   PlayerState
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("tsaudio: %s is not valid from state %s", e.Method, e.From)
}

// SinkFactory opens the ByteSink a Player writes decoded, time-stretched
// audio to for one playback session. Player calls it once per play().
type SinkFactory func(format audio.AudioFormat) (audio.ByteSink, error)

// Player coordinates load/play/pause/stop against one open file, owning
// exactly one worker goroutine while PLAYING. Grounded on the Java
// Player's wiring order: [Player-as-processor, GainProcessor,
// beforeWSOLA, WSOLA, afterWSOLA, sink].
type Player struct {
	mu    sync.Mutex
	state PlayerState

	beforeWSOLA audio.AudioProcessor
	afterWSOLA  audio.AudioProcessor
	sinkFactory SinkFactory

	source audio.ByteSource
	format audio.AudioFormat

	params      audio.Parameters
	pendingGain float64

	dispatcher *audio.AudioDispatcher
	gain       *audio.GainProcessor
	wsola      *audio.WSOLA

	currentTime float64
	pauzedAt    float64

	totalFrames int64

	runErr  error
	doneCh  chan struct{}
	pausing bool

	listeners []func(old, new PlayerState)
}

// NewPlayer creates a Player. beforeWSOLA and afterWSOLA are optional
// processors spliced immediately before and after WSOLA in the chain (pass
// nil for either to omit it). sinkFactory opens the destination for
// decoded audio each time play() starts a session.
func NewPlayer(beforeWSOLA, afterWSOLA audio.AudioProcessor, sinkFactory SinkFactory) *Player {
	return &Player{
		state:       NoFileLoaded,
		beforeWSOLA: beforeWSOLA,
		afterWSOLA:  afterWSOLA,
		sinkFactory: sinkFactory,
		pendingGain: 1.0,
		params:      audio.MusicParameters(1.0, 44100),
	}
}

// OnStateChange registers a listener invoked synchronously, on the caller's
// goroutine, every time State() changes.
func (p *Player) OnStateChange(f func(old, new PlayerState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, f)
}

// State returns the player's current state.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) setState(s PlayerState) {
	old := p.state
	p.state = s
	listeners := append([]func(old, new PlayerState){}, p.listeners...)
	p.mu.Unlock()
	for _, f := range listeners {
		f(old, s)
	}
	p.mu.Lock()
}

// Load opens source, recording its format and total frame count, and
// transitions to FILE_LOADED. If a file is already loaded, it is ejected
// first.
func (p *Player) Load(source audio.ByteSource, totalFrames int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != NoFileLoaded {
		p.ejectLocked()
	}

	p.source = source
	p.format = source.Format()
	p.totalFrames = totalFrames
	p.currentTime = 0
	p.pauzedAt = 0

	p.setState(FileLoaded)
	return nil
}

// DurationInSeconds returns the loaded file's duration. Returns an error if
// no file is loaded.
func (p *Player) DurationInSeconds() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == NoFileLoaded {
		return 0, &ErrIllegalTransition{Method: "DurationInSeconds", From: p.state}
	}
	if p.format.SampleRate == 0 {
		return 0, nil
	}
	return float64(p.totalFrames) / p.format.SampleRate, nil
}

// TotalFrames returns the loaded file's frame count. Returns an error if no
// file is loaded.
func (p *Player) TotalFrames() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == NoFileLoaded {
		return 0, &ErrIllegalTransition{Method: "TotalFrames", From: p.state}
	}
	return p.totalFrames, nil
}

// Play starts playback from the beginning or, from PAUSED, resumes it at the
// point where it was paused. Valid from FILE_LOADED, PAUSED, or STOPPED.
func (p *Player) Play() error {
	return p.playFrom(0)
}

// PlayFrom starts playback seeking to startSeconds first. Valid from
// FILE_LOADED, PAUSED, or STOPPED; from PAUSED, startSeconds is ignored and
// playback resumes at the point where it was paused.
func (p *Player) PlayFrom(startSeconds float64) error {
	return p.playFrom(startSeconds)
}

func (p *Player) playFrom(startSeconds float64) error {
	p.mu.Lock()

	switch p.state {
	case FileLoaded, Stopped:
		// fresh start: startSeconds as given
	case Paused:
		startSeconds = p.pauzedAt
	default:
		from := p.state
		p.mu.Unlock()
		return &ErrIllegalTransition{Method: "Play", From: from}
	}

	sink, err := p.sinkFactory(p.format)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("tsaudio: sink unavailable: %w", err)
	}

	p.gain = audio.NewGainProcessor(p.pendingGain)
	p.wsola = audio.NewWSOLA(p.params, p.format.Channels)

	bufSize := p.wsola.InputBufferSize()
	overlap := p.wsola.Overlap()
	p.dispatcher = audio.NewAudioDispatcher(p.source, bufSize, overlap)
	p.wsola.SetDispatcher(p.dispatcher)
	p.dispatcher.Skip(startSeconds)

	chain := p.dispatcher.Chain()
	chain.Add(playerProcessor{p})
	chain.Add(p.gain)
	if p.beforeWSOLA != nil {
		chain.Add(p.beforeWSOLA)
	}
	chain.Add(p.wsola)
	if p.afterWSOLA != nil {
		chain.Add(p.afterWSOLA)
	}
	chain.Add(audio.NewSinkProcessor(sink, p.format))

	p.doneCh = make(chan struct{})
	p.runErr = nil
	dispatcher := p.dispatcher

	p.setState(Playing)
	p.mu.Unlock()

	go func() {
		err := dispatcher.Run()
		p.mu.Lock()
		p.runErr = err
		if err != nil {
			log.Error("tsaudio: dispatcher run failed", "err", err)
		}
		if p.state == Playing && !p.pausing {
			p.setState(Stopped)
		}
		close(p.doneCh)
		p.mu.Unlock()
	}()

	return nil
}

// Pause stops the dispatcher and records the resume point. Valid from
// PLAYING or PAUSED.
func (p *Player) Pause() error {
	p.mu.Lock()
	switch p.state {
	case Playing:
	case Paused:
		p.mu.Unlock()
		return nil
	default:
		from := p.state
		p.mu.Unlock()
		return &ErrIllegalTransition{Method: "Pause", From: from}
	}

	p.pauzedAt = p.currentTime
	p.pausing = true
	dispatcher := p.dispatcher
	doneCh := p.doneCh
	p.mu.Unlock()

	dispatcher.Stop()
	if doneCh != nil {
		<-doneCh
	}

	p.mu.Lock()
	p.pausing = false
	p.setState(Paused)
	p.mu.Unlock()
	return nil
}

// Stop halts playback and discards the resume point. Valid from PLAYING or
// PAUSED.
func (p *Player) Stop() error {
	p.mu.Lock()
	switch p.state {
	case Playing, Paused:
	default:
		from := p.state
		p.mu.Unlock()
		return &ErrIllegalTransition{Method: "Stop", From: from}
	}

	dispatcher := p.dispatcher
	doneCh := p.doneCh
	p.mu.Unlock()

	if dispatcher != nil {
		dispatcher.Stop()
	}
	if doneCh != nil {
		<-doneCh
	}

	p.mu.Lock()
	p.pauzedAt = 0
	p.setState(Stopped)
	p.mu.Unlock()
	return nil
}

// Eject stops playback if running, drops the file handle, and transitions
// to NO_FILE_LOADED.
func (p *Player) Eject() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ejectLocked()
	return nil
}

func (p *Player) ejectLocked() {
	if p.state == Playing || p.state == Paused {
		dispatcher := p.dispatcher
		doneCh := p.doneCh
		p.mu.Unlock()
		if dispatcher != nil {
			dispatcher.Stop()
		}
		if doneCh != nil {
			<-doneCh
		}
		p.mu.Lock()
	}
	if p.source != nil {
		if err := p.source.Close(); err != nil {
			log.Warn("tsaudio: error closing source on eject", "err", err)
		}
	}
	p.source = nil
	p.setState(NoFileLoaded)
}

// SetGain updates the gain. Takes effect immediately while PLAYING;
// otherwise it is stored for the next Play.
func (p *Player) SetGain(gain float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingGain = gain
	if p.state == Playing && p.gain != nil {
		p.gain.SetGain(gain)
	}
}

// SetTempo updates the WSOLA tempo. Takes effect immediately while
// PLAYING; otherwise it is stored for the next Play.
func (p *Player) SetTempo(tempo float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Tempo = tempo
	if p.state == Playing && p.wsola != nil {
		p.wsola.SetParameters(p.params)
	}
}

// SetParameters replaces the WSOLA parameter preset used for the next
// Play (or immediately, if PLAYING).
func (p *Player) SetParameters(params audio.Parameters) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
	if p.state == Playing && p.wsola != nil {
		p.wsola.SetParameters(params)
	}
}

// CurrentTime returns the player's current playback position in seconds.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime
}

// playerProcessor implements audio.AudioProcessor so the Player itself
// sits first in the chain and observes every event's time stamp, matching
// the Java Player's self-registration as a processor.
type playerProcessor struct{ p *Player }

func (pp playerProcessor) Process(event *audio.AudioEvent) bool {
	pp.p.mu.Lock()
	pp.p.currentTime = event.TimeStamp()
	pp.p.mu.Unlock()
	return true
}

func (pp playerProcessor) Finished() {}

// RunError returns the error the dispatcher's worker goroutine exited
// with, if any, after a session transitions to STOPPED on its own.
func (p *Player) RunError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runErr
}
