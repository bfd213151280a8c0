package sheetsynth

import (
	"sync"

	intaudio "github.com/cbegin/sheetsynth-go/internal/audio"
)

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted, EventPlaybackEnded or EventRestarted
	Loop int // completed passes, for EventLoopCompleted
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
	EventRestarted
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	loopPlayback bool
	sampleTap    func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{loopPlayback: true}
}

// WithLoopPlayback repeats the buffer until Stop when enabled (the default).
func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player plays rendered buffers through the default audio device.
type Player struct {
	mu           sync.Mutex
	audio        *intaudio.Output
	source       *intaudio.LoopSource
	volume       float64
	paused       bool
	loopPlayback bool
	sampleTap    func([]float32)
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// NewPlayer returns an idle player. The audio device is opened by the first Play.
func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		volume:       1,
		loopPlayback: cfg.loopPlayback,
		sampleTap:    cfg.sampleTap,
	}, nil
}

// Play starts buf from the beginning, replacing any current playback.
func (p *Player) Play(buf *Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})

	source := intaudio.NewLoopSource(buf, p.loopPlayback)
	source.OnLoop = func(n int) {
		p.sendEvent(PlaybackEvent{Kind: EventLoopCompleted, Loop: n})
	}
	source.OnEnd = func() {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
		p.signalDone()
	}
	source.Tap = p.sampleTap

	backend, err := intaudio.NewOutput(buf.SampleRate, source)
	if err != nil {
		return err
	}
	if p.audio != nil {
		_ = p.audio.Close()
	}
	p.audio = backend
	p.source = source
	p.paused = false
	p.audio.SetVolume(p.volume)
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// Restart rewinds the current buffer to its first frame and resumes playback.
func (p *Player) Restart() {
	p.mu.Lock()
	if p.source == nil {
		p.mu.Unlock()
		return
	}
	// A stream that reached EOF is not read again; reopen the output.
	if p.source.Finished() {
		if backend, err := intaudio.NewOutput(SampleRate, p.source); err == nil {
			_ = p.audio.Close()
			backend.SetVolume(p.volume)
			p.audio = backend
		}
	}
	p.source.Restart()
	if p.done == nil {
		p.done = make(chan struct{})
	}
	p.paused = false
	p.audio.Play()
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventRestarted})
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
		p.paused = true
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
		p.paused = false
	}
}

// TogglePause pauses or resumes and reports whether playback is now paused.
func (p *Player) TogglePause() bool {
	if p.Paused() {
		p.Resume()
	} else {
		p.Pause()
	}
	return p.Paused()
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Close()
	p.audio = nil
	p.source = nil
	p.paused = false
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends. When loop playback is enabled,
// Wait blocks until Stop (use Watch for loop-counting instead).
// Wait returns immediately if no playback is active or if it was stopped.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events. Events are sent when:
//   - EventLoopCompleted: a pass finished and playback wrapped (when looping)
//   - EventPlaybackEnded: playback finished or was stopped
//   - EventRestarted: Restart rewound the buffer
//
// The channel is buffered (cap 8); receive in a goroutine to avoid dropping events.
// Only the most recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.audio != nil {
		p.audio.SetVolume(volume)
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Progress returns the frame about to be played within the current pass, the
// pass length and the number of completed loops. All are zero when idle.
func (p *Player) Progress() (frame, total, loops int) {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return 0, 0, 0
	}
	frame, loops = src.Position()
	return frame, src.Frames(), loops
}

// PlaybackPosition returns the current output position of the audio driver,
// i.e. what the listener actually hears right now. Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * SampleRate)
}
