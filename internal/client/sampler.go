package client

import (
	"math"
	"time"
)

// Sampler supplies the local participant's smoothed intensity. ok is false
// when the underlying capability (e.g. microphone) is unavailable.
type Sampler interface {
	Sample() (value float64, ok bool)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func() (float64, bool)

// Sample calls f.
func (f SamplerFunc) Sample() (float64, bool) { return f() }

// Unavailable is a sampler whose capability was denied.
var Unavailable Sampler = SamplerFunc(func() (float64, bool) { return 0, false })

// WaveSampler produces a sine wave in [0,1]. It stands in for a real signal
// source in the headless client.
type WaveSampler struct {
	Period time.Duration
	start  time.Time
	now    func() time.Time
}

// NewWaveSampler starts a wave with the given period.
func NewWaveSampler(period time.Duration) *WaveSampler {
	return &WaveSampler{Period: period, start: time.Now(), now: time.Now}
}

// Sample implements Sampler.
func (w *WaveSampler) Sample() (float64, bool) {
	if w.Period <= 0 {
		return 0, true
	}
	elapsed := w.now().Sub(w.start).Seconds()
	phase := 2 * math.Pi * elapsed / w.Period.Seconds()
	return 0.5 + 0.5*math.Sin(phase), true
}
