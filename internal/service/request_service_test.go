package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.user(t, "Anna", "anna@example.com")
	b := f.user(t, "Boris", "boris@example.com")

	first, err := f.requests.CreateRequest(ctx, a.ID, "Need a ladder")
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(f.now))
	assert.Equal(t, models.Ref{ID: a.ID, Name: "Anna"}, first.Requestor)

	f.now = f.now.Add(time.Minute)
	second, err := f.requests.CreateRequest(ctx, b.ID, "Need a tent")
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	third, err := f.requests.CreateRequest(ctx, a.ID, "Need a kayak")
	require.NoError(t, err)

	t.Run("CreateUnknownRequestor", func(t *testing.T) {
		_, err := f.requests.CreateRequest(ctx, 999, "Need anything")
		assertKind(t, err, domain.KindNotFound)
	})

	t.Run("ListAllNewestFirst", func(t *testing.T) {
		all, err := f.requests.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("ListByRequestor", func(t *testing.T) {
		mine, err := f.requests.ListByRequestor(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, third.ID, mine[0].ID)
		assert.Equal(t, first.ID, mine[1].ID)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := f.requests.GetRequest(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Need a tent", got.Description)

		_, err = f.requests.GetRequest(ctx, 999)
		assertKind(t, err, domain.KindNotFound)
	})

	t.Run("WithItems", func(t *testing.T) {
		empty, err := f.requests.GetWithItems(ctx, first.ID)
		require.NoError(t, err)
		assert.Empty(t, empty.Items)

		_, err = f.items.CreateItem(ctx, b.ID, &models.Item{Name: "Ladder", Description: "3m", Available: true, RequestID: &first.ID})
		require.NoError(t, err)
		f.item(t, b, "Unrelated", true)

		withItems, err := f.requests.GetWithItems(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, withItems.ID)
		require.Len(t, withItems.Items, 1)
		assert.Equal(t, "Ladder", withItems.Items[0].Name)

		_, err = f.requests.GetWithItems(ctx, 999)
		assertKind(t, err, domain.KindNotFound)
	})
}
