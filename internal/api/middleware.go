package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by requestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		event := logger.Info()
		if recorder.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("user_id", r.Header.Get(models.HeaderUserID)).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func recoverMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Interface("panic", rec).
					Str("request_id", RequestIDFromContext(r.Context())).
					Msg("handler panicked")
				writeError(w, domain.Unknown("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// instrument records the request count and latency of one route.
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.ObserveHTTP(route, recorder.status, time.Since(start))
	})
}

// quota enforces the per-caller request budget. Store failures let the
// request through.
type quota struct {
	store  domain.RateLimitStore
	limit  int
	window time.Duration
	logger *zerolog.Logger
}

func (q *quota) wrap(next http.Handler) http.Handler {
	if q == nil || q.store == nil || q.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := quotaKey(r)
		allowed, err := q.store.CheckRateLimit(r.Context(), key, q.limit, q.window)
		if err != nil {
			q.logger.Warn().Err(err).Str("key", key).Msg("quota check failed")
		} else if !allowed {
			metrics.IncRateLimited()
			w.Header().Set("Retry-After", retryAfter(q.window))
			writeStatus(w, http.StatusTooManyRequests, "RATE_LIMITED", errRateLimited.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func quotaKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.HeaderUserID)); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "addr:" + host
	}
	return "addr:unknown"
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
