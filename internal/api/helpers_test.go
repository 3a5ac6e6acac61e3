package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *database.DB
	now    time.Time
	svc    Services
	server *HTTPServer
	ts     *httptest.Server
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		HTTP:      config.APIHTTPConfig{Port: 0},
		RateLimit: config.APIRateLimitConfig{Requests: 1000, Window: time.Minute},
	}
}

func newTestEnv(t *testing.T, cfg config.APIConfig) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db, now: time.Date(2030, 1, 10, 12, 0, 0, 0, time.Local)}
	clock := func() time.Time { return env.now }

	bookings := service.NewBookingService(db, db, db, db, nil, nil, clock, &logger)
	comments := service.NewCommentService(db, db, db, db, db, nil, clock, &logger)
	env.svc = Services{
		Users:    service.NewUserService(db, db, &logger),
		Items:    service.NewItemService(db, db, db, bookings, comments, db, &logger),
		Requests: service.NewRequestService(db, db, db, db, clock, &logger),
		Bookings: bookings,
		Comments: comments,
	}

	env.server = NewHTTPServer(cfg, env.svc, repository.NewMemoryRateLimitStore(), db.PingContext, &logger)
	env.server.now = clock
	env.ts = httptest.NewServer(env.server.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

// do sends a JSON request as userID (0 means no caller header) and decodes
// the response into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(models.HeaderUserID, fmt.Sprint(userID))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (e *testEnv) createUser(t *testing.T, name, email string) UserDTO {
	t.Helper()
	var u UserDTO
	resp := e.do(t, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email}, &u)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return u
}

func (e *testEnv) createItem(t *testing.T, ownerID int64, name string, available bool) ItemDTO {
	t.Helper()
	var it ItemDTO
	body := map[string]any{"name": name, "description": name + " for rent", "available": available}
	resp := e.do(t, http.MethodPost, "/items", ownerID, body, &it)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return it
}

// insertBooking stores a booking relative to env.now without the HTTP window checks.
func (e *testEnv) insertBooking(t *testing.T, booker UserDTO, item ItemDTO, from, to time.Duration, status string) int64 {
	t.Helper()
	b := &models.Booking{
		Start:   e.now.Add(from),
		End:     e.now.Add(to),
		Item:    models.Ref{ID: item.ID, Name: item.Name},
		Booker:  models.Ref{ID: booker.ID, Name: booker.Name},
		OwnerID: item.Owner.ID,
		Status:  status,
	}
	require.NoError(t, e.db.CreateBooking(context.Background(), b))
	return b.ID
}

func stamp(t time.Time) string {
	return t.Format(models.DateTimeLayout)
}
