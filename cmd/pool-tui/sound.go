package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/poolsim/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// SoundManager plays short synthesized clicks for table contacts.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker. The game runs silently when it fails.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// PlayContacts plays at most one sound per contact type, loudest first.
func (sm *SoundManager) PlayContacts(contacts []game.CollisionEvent) {
	loudest := map[string]float64{}
	for _, c := range contacts {
		if c.Speed > loudest[c.Type] {
			loudest[c.Type] = c.Speed
		}
	}
	for kind, speed := range loudest {
		switch kind {
		case "ball":
			sm.play(clickTone(1400, 25*time.Millisecond, speed))
		case "wall":
			sm.play(clickTone(320, 40*time.Millisecond, speed))
		case "pocket":
			sm.play(NewDropGenerator(sampleRate, 150*time.Millisecond))
		}
	}
}

// PlayUnlock plays a two-note chime.
func (sm *SoundManager) PlayUnlock() {
	low, _ := generators.SineTone(sampleRate, 660)
	high, _ := generators.SineTone(sampleRate, 990)
	if low == nil || high == nil {
		return
	}
	sm.play(beep.Seq(
		beep.Take(sampleRate.N(90*time.Millisecond), low),
		beep.Take(sampleRate.N(140*time.Millisecond), high),
	))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized || s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// clickTone is a short sine burst whose volume follows impact speed.
func clickTone(freq float64, d time.Duration, speed float64) beep.Streamer {
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(d), tone),
		Base:     2,
		Volume:   impactVolume(speed),
	}
}

// impactVolume maps an impact speed onto a beep volume exponent.
func impactVolume(speed float64) float64 {
	v := math.Min(speed/game.MaxPower, 1)
	return -4 + 3.5*v
}

// DropGenerator is a falling tone for a ball dropping into a pocket.
type DropGenerator struct {
	sr    beep.SampleRate
	pos   int
	total int
}

func NewDropGenerator(sr beep.SampleRate, d time.Duration) *DropGenerator {
	return &DropGenerator{sr: sr, total: sr.N(d)}
}

func (g *DropGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.total {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)
		progress := float64(g.pos) / float64(g.total)
		freq := 260 - 140*progress
		sample := 0.2 * (1 - progress) * math.Sin(2*math.Pi*freq*t)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *DropGenerator) Err() error {
	return nil
}
