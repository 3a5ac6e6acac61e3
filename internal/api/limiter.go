package api

import (
	"sync"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// keyedLimiters hands out one token bucket per client key.
type keyedLimiters struct {
	limiters sync.Map
	burst    int
}

func newKeyedLimiters(burst int) *keyedLimiters {
	if burst <= 0 {
		burst = defaultBurst
	}
	return &keyedLimiters{burst: burst}
}

func (l *keyedLimiters) get(key string, rps float64) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(rate.Limit(rps), l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// allow reports whether key may proceed. Keys with rps <= 0 are unlimited.
func (l *keyedLimiters) allow(key string, rps float64) bool {
	if rps <= 0 {
		return true
	}
	return l.get(key, rps).Allow()
}
