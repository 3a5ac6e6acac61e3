package api

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())

	resp := env.do(t, http.MethodGet, "/healthz", 0, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	resp = env.do(t, http.MethodGet, "/readyz", 0, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.db.Close()
	resp = env.do(t, http.MethodGet, "/readyz", 0, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUsersEndpoints(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())
	alice := env.createUser(t, "Alice", "alice@example.com")

	t.Run("DuplicateEmail", func(t *testing.T) {
		var e errorResponse
		resp := env.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "Other", "email": "ALICE@example.com"}, &e)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_EMAIL", e.Error)
	})

	t.Run("InvalidBodies", func(t *testing.T) {
		bodies := []map[string]string{
			{"name": "Al", "email": "al@example.com"},
			{"name": "   ", "email": "blank@example.com"},
			{"name": "Valid", "email": "not-an-email"},
			{"name": "Valid"},
		}
		for _, b := range bodies {
			resp := env.do(t, http.MethodPost, "/users", 0, b, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%v", b)
		}
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		var u UserDTO
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", alice.ID), 0, map[string]string{"name": "Alice Smith"}, &u)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Alice Smith", u.Name)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("GetAndList", func(t *testing.T) {
		var u UserDTO
		resp := env.do(t, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), 0, nil, &u)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, alice.ID, u.ID)

		var all []UserDTO
		env.do(t, http.MethodGet, "/users", 0, nil, &all)
		assert.Len(t, all, 1)

		resp = env.do(t, http.MethodGet, "/users/abc", 0, nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var e errorResponse
		resp = env.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil, &e)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", e.Error)
	})
}

func TestItemsEndpoints(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())
	owner := env.createUser(t, "Owner", "owner@example.com")
	other := env.createUser(t, "Other", "other@example.com")
	drill := env.createItem(t, owner.ID, "Drill", true)
	env.createItem(t, owner.ID, "Saw", false)

	t.Run("MissingHeader", func(t *testing.T) {
		var e errorResponse
		resp := env.do(t, http.MethodGet, "/items", 0, nil, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION", e.Error)
	})

	t.Run("CreateValidation", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "Tent", "description": "Big"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = env.do(t, http.MethodPost, "/items", 999, map[string]any{"name": "Tent", "description": "Big", "available": true}, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		var items []ItemWithCommentsDTO
		resp := env.do(t, http.MethodGet, "/items", owner.ID, nil, &items)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, items, 2)
		assert.NotNil(t, items[0].Comments)
	})

	t.Run("Search", func(t *testing.T) {
		var items []ItemWithCommentsDTO
		env.do(t, http.MethodGet, "/items/search?text=DRI", other.ID, nil, &items)
		require.Len(t, items, 1)
		assert.Equal(t, drill.ID, items[0].ID)

		env.do(t, http.MethodGet, "/items/search?text=saw", other.ID, nil, &items)
		assert.Empty(t, items)

		env.do(t, http.MethodGet, "/items/search?text=", owner.ID, nil, &items)
		assert.Len(t, items, 2)
	})

	t.Run("UpdateByNonOwner", func(t *testing.T) {
		var e errorResponse
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), other.ID, map[string]any{"name": "Stolen"}, &e)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", e.Error)

		var detail ItemDetailDTO
		env.do(t, http.MethodGet, fmt.Sprintf("/items/%d", drill.ID), owner.ID, nil, &detail)
		assert.Equal(t, "Drill", detail.Name)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		var it ItemDTO
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), owner.ID, map[string]any{"description": "Cordless"}, &it)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Drill", it.Name)
		assert.Equal(t, "Cordless", it.Description)
		assert.True(t, it.Available)
	})

	t.Run("BlankDescriptionRejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), owner.ID, map[string]any{"description": "  "}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var detail ItemDetailDTO
		env.do(t, http.MethodGet, fmt.Sprintf("/items/%d", drill.ID), owner.ID, nil, &detail)
		assert.Equal(t, "Cordless", detail.Description)
	})

	t.Run("DetailWithBookingsAndComments", func(t *testing.T) {
		env.insertBooking(t, other, drill, -48*time.Hour, -24*time.Hour, models.StatusApproved)
		current := env.insertBooking(t, other, drill, -time.Hour, time.Hour, models.StatusApproved)
		next := env.insertBooking(t, other, drill, 24*time.Hour, 48*time.Hour, models.StatusWaiting)

		var c CommentDTO
		resp := env.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", drill.ID), other.ID, map[string]string{"text": "Works well"}, &c)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Other", c.AuthorName)
		assert.True(t, env.now.Equal(c.Created.Time()))

		resp = env.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", drill.ID), other.ID, map[string]string{"text": " "}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var detail ItemDetailDTO
		resp = env.do(t, http.MethodGet, fmt.Sprintf("/items/%d", drill.ID), owner.ID, nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, detail.Comments, 1)
		require.NotNil(t, detail.LastBooking)
		require.NotNil(t, detail.NextBooking)
		assert.Equal(t, current, detail.LastBooking.ID)
		assert.Equal(t, next, detail.NextBooking.ID)
	})

	t.Run("DetailNotFound", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/items/999", owner.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestBookingsEndpoints(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())
	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	stranger := env.createUser(t, "Stranger", "stranger@example.com")
	drill := env.createItem(t, owner.ID, "Drill", true)
	saw := env.createItem(t, owner.ID, "Saw", false)

	body := func(itemID int64, from, to time.Duration) map[string]any {
		return map[string]any{"itemId": itemID, "start": stamp(env.now.Add(from)), "end": stamp(env.now.Add(to))}
	}

	var created BookingDTO
	resp := env.do(t, http.MethodPost, "/bookings", booker.ID, body(drill.ID, time.Hour, 2*time.Hour), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.StatusWaiting, created.Status)
	assert.Equal(t, booker.ID, created.Booker.ID)
	assert.Equal(t, drill.ID, created.Item.ID)
	assert.True(t, env.now.Add(time.Hour).Equal(created.Start.Time()))

	t.Run("CreateFailures", func(t *testing.T) {
		tests := []struct {
			name   string
			user   int64
			body   map[string]any
			status int
		}{
			{"unavailable", booker.ID, body(saw.ID, time.Hour, 2*time.Hour), http.StatusBadRequest},
			{"end equals start", booker.ID, body(drill.ID, time.Hour, time.Hour), http.StatusBadRequest},
			{"end before start", booker.ID, body(drill.ID, 2*time.Hour, time.Hour), http.StatusBadRequest},
			{"start in past", booker.ID, body(drill.ID, -time.Hour, time.Hour), http.StatusBadRequest},
			{"unknown item", booker.ID, body(999, time.Hour, 2*time.Hour), http.StatusNotFound},
			{"unknown booker", 999, body(drill.ID, time.Hour, 2*time.Hour), http.StatusNotFound},
			{"bad timestamp", booker.ID, map[string]any{"itemId": drill.ID, "start": "2030-01-10 13:00", "end": stamp(env.now.Add(time.Hour))}, http.StatusBadRequest},
			{"missing end", booker.ID, map[string]any{"itemId": drill.ID, "start": stamp(env.now.Add(time.Hour))}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp := env.do(t, http.MethodPost, "/bookings", tt.user, tt.body, nil)
				assert.Equal(t, tt.status, resp.StatusCode)
			})
		}
	})

	t.Run("GetForUser", func(t *testing.T) {
		path := fmt.Sprintf("/bookings/%d", created.ID)
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, booker.ID, nil, nil).StatusCode)
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, owner.ID, nil, nil).StatusCode)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, stranger.ID, nil, nil).StatusCode)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/bookings/999", owner.ID, nil, nil).StatusCode)
	})

	t.Run("Approve", func(t *testing.T) {
		path := fmt.Sprintf("/bookings/%d?approved=true", created.ID)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPatch, path, booker.ID, nil, nil).StatusCode)
		assert.Equal(t, http.StatusBadRequest,
			env.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=maybe", created.ID), owner.ID, nil, nil).StatusCode)

		var b BookingDTO
		resp := env.do(t, http.MethodPatch, path, owner.ID, nil, &b)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, models.StatusApproved, b.Status)
	})

	t.Run("ListByState", func(t *testing.T) {
		env.insertBooking(t, booker, drill, -48*time.Hour, -24*time.Hour, models.StatusRejected)

		var list []BookingDTO
		env.do(t, http.MethodGet, "/bookings", booker.ID, nil, &list)
		require.Len(t, list, 2)
		assert.True(t, list[0].Start.Time().After(list[1].Start.Time()))

		env.do(t, http.MethodGet, "/bookings?state=past", booker.ID, nil, &list)
		assert.Len(t, list, 1)

		env.do(t, http.MethodGet, "/bookings/owner?state=FUTURE", owner.ID, nil, &list)
		assert.Len(t, list, 1)

		env.do(t, http.MethodGet, "/bookings/owner?state=REJECTED", owner.ID, nil, &list)
		assert.Len(t, list, 1)

		var e errorResponse
		resp := env.do(t, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "unknown state: UNSUPPORTED_STATUS", e.Message)

		resp = env.do(t, http.MethodGet, "/bookings", 999, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Export", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/bookings/owner/export", owner.ID, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

		var buf bytes.Buffer
		_, err := buf.ReadFrom(resp.Body)
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Bookings")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})
}

func TestRequestsEndpoints(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())
	alice := env.createUser(t, "Alice", "alice@example.com")
	bob := env.createUser(t, "Bob", "bob@example.com")

	var req RequestDTO
	resp := env.do(t, http.MethodPost, "/requests", bob.ID, map[string]string{"description": "Need a ladder"}, &req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.now.Equal(req.Created.Time()))
	assert.Equal(t, "Bob", req.Requestor.Name)

	resp = env.do(t, http.MethodPost, "/requests", bob.ID, map[string]string{"description": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var item ItemDTO
	resp = env.do(t, http.MethodPost, "/items", alice.ID,
		map[string]any{"name": "Ladder", "description": "Three meters", "available": true, "requestId": req.ID}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, item.RequestID)
	assert.Equal(t, req.ID, *item.RequestID)

	var own []RequestDTO
	env.do(t, http.MethodGet, "/requests", bob.ID, nil, &own)
	assert.Len(t, own, 1)
	env.do(t, http.MethodGet, "/requests", alice.ID, nil, &own)
	assert.Empty(t, own)

	var all []RequestDTO
	env.do(t, http.MethodGet, "/requests/all", alice.ID, nil, &all)
	assert.Len(t, all, 1)

	var detail RequestWithItemsDTO
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), alice.ID, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, item.ID, detail.Items[0].ID)

	resp = env.do(t, http.MethodGet, "/requests/999", alice.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuotaMiddleware(t *testing.T) {
	cfg := testAPIConfig()
	cfg.RateLimit.Requests = 2
	env := newTestEnv(t, cfg)
	u := env.createUser(t, "Alice", "alice@example.com")

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/items", u.ID, nil, nil).StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/items", u.ID, nil, nil).StatusCode)

	resp := env.do(t, http.MethodGet, "/items", u.ID, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", u.ID, nil, nil).StatusCode)
}
