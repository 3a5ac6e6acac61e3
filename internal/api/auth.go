package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"shareit/internal/config"
	"shareit/internal/metrics"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const apiKeyHeaderDefault = "x-api-key"

// apiKeys checks API keys and throttles each key with its own token bucket.
type apiKeys struct {
	enabled  bool
	header   string
	clients  []config.APIClientKey
	limiters *keyedLimiters
}

func newAPIKeys(cfg config.APIConfig) *apiKeys {
	header := strings.ToLower(strings.TrimSpace(cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &apiKeys{
		enabled:  cfg.Auth.Enabled,
		header:   header,
		clients:  cfg.Auth.APIKeys,
		limiters: newKeyedLimiters(cfg.RateLimit.Burst),
	}
}

func (a *apiKeys) lookup(key string) (config.APIClientKey, bool) {
	if key == "" {
		return config.APIClientKey{}, false
	}
	for _, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(key)) == 1 {
			return c, true
		}
	}
	return config.APIClientKey{}, false
}

// check returns errUnauthenticated or errRateLimited, nil when the key may proceed.
func (a *apiKeys) check(key string) error {
	if !a.enabled {
		return nil
	}
	client, ok := a.lookup(strings.TrimSpace(key))
	if !ok {
		return errUnauthenticated
	}
	if !a.limiters.allow(client.Key, client.RPS) {
		return errRateLimited
	}
	return nil
}

// HTTPAuth guards HTTP routes with the configured API keys.
type HTTPAuth struct {
	keys *apiKeys
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{keys: newAPIKeys(cfg)}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch err := a.keys.check(r.Header.Get(a.keys.header)); err {
		case nil:
			next.ServeHTTP(w, r)
		case errRateLimited:
			metrics.IncRateLimited()
			writeStatus(w, http.StatusTooManyRequests, "RATE_LIMITED", err.Error())
		default:
			writeStatus(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
		}
	})
}

// AuthInterceptor applies the same API key rules to unary gRPC calls.
type AuthInterceptor struct {
	keys *apiKeys
}

func NewAuthInterceptor(cfg config.APIConfig) *AuthInterceptor {
	return &AuthInterceptor{keys: newAPIKeys(cfg)}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		switch err := a.keys.check(first(md.Get(a.keys.header))); err {
		case nil:
			return handler(ctx, req)
		case errRateLimited:
			metrics.IncRateLimited()
			return nil, status.Error(codes.ResourceExhausted, err.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
	}
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
