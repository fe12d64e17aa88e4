package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

const sampleRate = beep.SampleRate(44100)

// Player plays cues through the system speaker. When the audio device cannot
// be opened, or audio is disabled, every method is a no-op.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	muted       bool
	initialized bool
	cache       map[Cue][]float64 // rendered mono samples
}

// NewPlayer opens the speaker. A failure is logged and yields a silent player.
func NewPlayer(enabled bool, volume float64) *Player {
	p := &Player{
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(volume, 1)),
		cache:  make(map[Cue][]float64),
	}
	if !enabled {
		return p
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		log.Warn("Audio unavailable, continuing without sound", "error", err)
		return p
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return p
}

// Silent returns a player that never makes a sound.
func Silent() *Player {
	return &Player{mixer: &beep.Mixer{}, cache: make(map[Cue][]float64)}
}

// Enabled reports whether cues are audible.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && !p.muted
}

// ToggleMute flips the mute state and returns the new state.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

// Observe plays the cue for a session event. It is a tetris.Observer.
func (p *Player) Observe(e tetris.Event) {
	if c := CueFor(e); c != CueNone {
		p.Play(c)
	}
}

// Play starts a cue without waiting for it to finish.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized || p.muted {
		return
	}

	samples, ok := p.cache[c]
	if !ok {
		var err error
		samples, err = render(cueStreamer(c, p.volume))
		if err != nil {
			log.Debug("Cannot render cue", "cue", c, "error", err)
			return
		}
		p.cache[c] = samples
	}

	speaker.Lock()
	p.mixer.Add(newSampleStreamer(samples))
	speaker.Unlock()
}

// Close stops playback and releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// cueStreamer builds the tone sequence for a cue at the given volume (0..1).
func cueStreamer(c Cue, volume float64) beep.Streamer {
	melody := melodies[c]
	parts := make([]beep.Streamer, 0, len(melody))
	for _, n := range melody {
		length := sampleRate.N(time.Duration(n.ms) * time.Millisecond)
		if n.freq <= 0 {
			parts = append(parts, beep.Silence(length))
			continue
		}
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			parts = append(parts, beep.Silence(length))
			continue
		}
		parts = append(parts, beep.Take(length, tone))
	}
	return withVolume(beep.Seq(parts...), volume)
}

// withVolume scales linearly. math.Log2(0) is -Inf, so zero is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// render drains a finite streamer into mono samples.
func render(s beep.Streamer) ([]float64, error) {
	var out []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			out = append(out, smp[0])
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}

// sampleStreamer replays rendered samples on both channels.
type sampleStreamer struct {
	samples []float64
	pos     int
}

func newSampleStreamer(samples []float64) *sampleStreamer {
	return &sampleStreamer{samples: samples}
}

func (s *sampleStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy2(buf, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sampleStreamer) Err() error { return nil }

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0], dst[i][1] = src[i], src[i]
	}
	return n
}
