package audio

import (
	"sync"
	"sync/atomic"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// LoopSource plays a rendered buffer, optionally looping it forever. It is
// safe to call Restart and Position while the audio thread calls Fill.
type LoopSource struct {
	mu       sync.Mutex
	frames   []float32 // interleaved stereo, full scale = 1
	pos      int       // frame index
	loop     bool
	loops    int // completed passes
	finished atomic.Bool

	// OnLoop runs on the audio thread each time a looping pass completes.
	OnLoop func(completed int)
	// OnEnd runs on the audio thread once a non-looping source is exhausted.
	OnEnd func()
	// Tap receives every filled output slice on the audio thread.
	Tap func([]float32)
}

// NewLoopSource converts buf to normalized stereo float32.
func NewLoopSource(buf *pcm.Buffer, loop bool) *LoopSource {
	st := buf.Stereo()
	frames := make([]float32, len(st.Samples))
	for i, s := range st.Samples {
		v := s / pcm.MaxAmplitude
		frames[i] = float32(max(-1, min(1, v)))
	}
	return &LoopSource{frames: frames, loop: loop}
}

// Fill copies the next frames into dst. A looping source always fills dst;
// otherwise Fill stops at the end of the buffer and returns the short count.
func (s *LoopSource) Fill(dst []float32) int {
	var wrapped []int
	ended := false

	s.mu.Lock()
	total := len(s.frames) / 2
	n := 0
	for n+1 < len(dst) {
		if s.pos >= total {
			if !s.loop || total == 0 {
				ended = !s.finished.Swap(true)
				break
			}
			s.pos = 0
			s.loops++
			wrapped = append(wrapped, s.loops)
		}
		copy(dst[n:n+2], s.frames[s.pos*2:])
		s.pos++
		n += 2
	}
	s.mu.Unlock()

	for _, c := range wrapped {
		if s.OnLoop != nil {
			s.OnLoop(c)
		}
	}
	if ended && s.OnEnd != nil {
		s.OnEnd()
	}
	if s.Tap != nil && n > 0 {
		s.Tap(dst[:n])
	}
	return n
}

// Finished reports whether a non-looping source has played to the end.
func (s *LoopSource) Finished() bool { return s.finished.Load() }

// Restart rewinds to the first frame and resets the loop count.
func (s *LoopSource) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.loops = 0
	s.finished.Store(false)
}

// Position returns the next frame to be produced and the completed loop count.
func (s *LoopSource) Position() (frame, loops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, s.loops
}

// Frames is the length of one pass.
func (s *LoopSource) Frames() int { return len(s.frames) / 2 }
