package client

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/vovakirdan/pulse-server/internal/presence"
)

// emitter decides which samples become outbound stateUpdate messages:
// at most one per interval, and only when the value changed since the last send.
type emitter struct {
	limiter  *rate.Limiter
	lastSent float64
	sent     bool
}

func newEmitter(interval time.Duration) *emitter {
	return &emitter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// offer returns the value to send for a sample taken at now, if any.
func (e *emitter) offer(now time.Time, sample float64) (float64, bool) {
	v := presence.Clamp(sample)
	if e.sent && v == e.lastSent {
		return 0, false
	}
	if !e.limiter.AllowN(now, 1) {
		return 0, false
	}
	e.lastSent = v
	e.sent = true
	return v, true
}
