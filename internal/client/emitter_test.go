package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitterThrottlesToInterval(t *testing.T) {
	em := newEmitter(120 * time.Millisecond)
	start := time.Unix(1000, 0)

	sent := 0
	// 1.2s of samples every 10ms, each one different.
	for i := range 120 {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if _, ok := em.offer(now, float64(i%100)/100); ok {
			sent++
		}
	}
	assert.LessOrEqual(t, sent, 11)
	assert.GreaterOrEqual(t, sent, 9)
}

func TestEmitterSkipsUnchangedValues(t *testing.T) {
	em := newEmitter(120 * time.Millisecond)
	start := time.Unix(1000, 0)

	v, ok := em.offer(start, 0.5)
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = em.offer(start.Add(time.Second), 0.5)
	assert.False(t, ok, "unchanged value should not be re-sent")

	v, ok = em.offer(start.Add(2*time.Second), 2)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestEmitterEventuallySendsLatestValue(t *testing.T) {
	em := newEmitter(120 * time.Millisecond)
	start := time.Unix(1000, 0)

	_, ok := em.offer(start, 0.1)
	assert.True(t, ok)
	_, ok = em.offer(start.Add(10*time.Millisecond), 0.9)
	assert.False(t, ok, "throttled")

	v, ok := em.offer(start.Add(130*time.Millisecond), 0.9)
	assert.True(t, ok)
	assert.Equal(t, 0.9, v)
}

func TestWaveSamplerRange(t *testing.T) {
	w := NewWaveSampler(time.Second)
	base := w.start
	for i := range 100 {
		w.now = func() time.Time { return base.Add(time.Duration(i) * 17 * time.Millisecond) }
		v, ok := w.Sample()
		assert.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestUnavailableSampler(t *testing.T) {
	v, ok := Unavailable.Sample()
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}
