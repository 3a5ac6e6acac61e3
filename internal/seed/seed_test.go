package seed

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
users:
  - name: Alice
    email: alice@example.com
  - name: Boris
    email: boris@example.com
requests:
  - key: tent
    requestor: boris@example.com
    description: Need a two-person tent
items:
  - owner: alice@example.com
    name: Tent
    description: Two-person tent
    available: true
    request: tent
  - owner: alice@example.com
    name: Drill
    description: Cordless drill
    available: false
`

func newLoader(t *testing.T) (*Loader, *service.ItemService, *service.RequestService) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := service.NewUserService(db, db, &logger)
	bookings := service.NewBookingService(db, db, db, db, nil, nil, nil, &logger)
	comments := service.NewCommentService(db, db, db, db, db, nil, nil, &logger)
	items := service.NewItemService(db, db, db, bookings, comments, db, &logger)
	requests := service.NewRequestService(db, db, db, db, nil, &logger)
	return NewLoader(users, requests, items, &logger), items, requests
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing email", "users:\n  - name: A\n"},
		{"unknown owner", "users:\n  - {name: Alice, email: a@x.io}\nitems:\n  - {owner: b@x.io, name: Drill}\n"},
		{"unknown request", "users:\n  - {name: Alice, email: a@x.io}\nitems:\n  - {owner: a@x.io, name: Drill, request: nope}\n"},
		{"duplicate key", "users:\n  - {name: Alice, email: a@x.io}\nrequests:\n  - {key: k, requestor: a@x.io, description: d}\n  - {key: k, requestor: a@x.io, description: e}\n"},
		{"bad yaml", "users: ["},
		{"short name", "users:\n  - {name: Al, email: al@x.io}\n"},
		{"malformed email", "users:\n  - {name: Alice, email: alice.x.io}\n"},
		{"display name email", "users:\n  - {name: Alice, email: 'Alice <a@x.io>'}\n"},
		{"short item name", "users:\n  - {name: Alice, email: a@x.io}\nitems:\n  - {owner: a@x.io, name: Ax, description: d}\n"},
		{"blank item description", "users:\n  - {name: Alice, email: a@x.io}\nitems:\n  - {owner: a@x.io, name: Drill, description: ' '}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	loader, items, requests := newLoader(t)

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := loader.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Users: 2, Requests: 1, Items: 2}, res)

	all, err := requests.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	withItems, err := requests.GetWithItems(ctx, all[0].ID)
	require.NoError(t, err)
	require.Len(t, withItems.Items, 1)
	assert.Equal(t, "Tent", withItems.Items[0].Name)

	owned, err := items.ListByOwner(ctx, withItems.Items[0].Owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	t.Run("Idempotent", func(t *testing.T) {
		res, err := loader.Apply(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, &Result{}, res)
	})
}
