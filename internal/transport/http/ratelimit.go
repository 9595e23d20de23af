package http

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter guards the hub against a single connection flooding state updates.
// A nil limiter allows everything.
type rateLimiter struct {
	lim *rate.Limiter
}

func newRateLimiter(perSecond float64) *rateLimiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(math.Ceil(perSecond))
	return &rateLimiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *rateLimiter) allow() bool {
	if r == nil {
		return true
	}
	return r.lim.Allow()
}

// reserve books the next token and reports how long to wait before using it.
func (r *rateLimiter) reserve() time.Duration {
	if r == nil {
		return 0
	}
	return r.lim.Reserve().Delay()
}
