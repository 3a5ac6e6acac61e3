package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// Services bundles the components the transport layers call into.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Requests *service.RequestService
	Bookings *service.BookingService
	Comments *service.CommentService
}

// ReadinessCheck reports whether the backing store can serve requests.
type ReadinessCheck func(ctx context.Context) error

// HTTPServer exposes the ShareIt resources over JSON/HTTP.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	ready  ReadinessCheck
	auth   *HTTPAuth
	quota  *quota
	now    func() time.Time
	server *http.Server
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, store domain.RateLimitStore, ready ReadinessCheck, logger *zerolog.Logger) *HTTPServer {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http").Logger()
	}

	s := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		ready:  ready,
		auth:   NewHTTPAuth(cfg),
		now:    time.Now,
		logger: &base,
		quota: &quota{
			store:  store,
			limit:  cfg.RateLimit.Requests,
			window: cfg.RateLimit.Window,
			logger: &base,
		},
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", instrument("/healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /readyz", instrument("/readyz", http.HandlerFunc(s.handleReady)))

	s.route(mux, "GET /users", s.handleListUsers)
	s.route(mux, "GET /users/{id}", s.handleGetUser)
	s.route(mux, "POST /users", s.handleCreateUser)
	s.route(mux, "PATCH /users/{id}", s.handleUpdateUser)
	s.route(mux, "DELETE /users/{id}", s.handleDeleteUser)

	s.route(mux, "GET /items", s.handleListItems)
	s.route(mux, "GET /items/search", s.handleSearchItems)
	s.route(mux, "GET /items/{id}", s.handleGetItem)
	s.route(mux, "POST /items", s.handleCreateItem)
	s.route(mux, "PATCH /items/{id}", s.handleUpdateItem)
	s.route(mux, "POST /items/{id}/comment", s.handleCreateComment)

	s.route(mux, "GET /bookings", s.handleListBookings(models.RoleBooker))
	s.route(mux, "GET /bookings/owner", s.handleListBookings(models.RoleOwner))
	s.route(mux, "GET /bookings/owner/export", s.handleExportBookings)
	s.route(mux, "GET /bookings/{id}", s.handleGetBooking)
	s.route(mux, "POST /bookings", s.handleCreateBooking)
	s.route(mux, "PATCH /bookings/{id}", s.handleApproveBooking)

	s.route(mux, "GET /requests", s.handleListOwnRequests)
	s.route(mux, "GET /requests/all", s.handleListAllRequests)
	s.route(mux, "GET /requests/{id}", s.handleGetRequest)
	s.route(mux, "POST /requests", s.handleCreateRequest)

	handler := requestIDMiddleware(loggingMiddleware(s.logger, recoverMiddleware(s.logger, mux)))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	return s
}

// route registers h behind API key auth, the caller quota and route metrics.
func (s *HTTPServer) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, instrument(pattern, s.auth.Wrap(s.quota.wrap(h))))
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func callerID(r *http.Request) (int64, error) {
	return parseUserID(r.Header.Get(models.HeaderUserID))
}

func pathID(r *http.Request) (int64, error) {
	return parsePathID(r.PathValue("id"), "id")
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validation("invalid JSON body: %v", err)
	}
	return nil
}
