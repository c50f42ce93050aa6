package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// createLimiter throttles booking submissions per contact so an impatient
// double-click does not flood the store with duplicate records. Creation has
// no deduplication key, so this is the only guard.
type createLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func newCreateLimiter(rps float64, burst int) *createLimiter {
	if burst <= 0 {
		burst = 5
	}
	if rps <= 0 {
		rps = 1
	}
	return &createLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *createLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func (l *createLimiter) allow(key string) bool {
	if l == nil {
		return true
	}
	return l.getLimiter(key).Allow()
}
