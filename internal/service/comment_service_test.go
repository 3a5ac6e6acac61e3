package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "Owner", "owner@example.com")
	booker := f.user(t, "Booker", "booker@example.com")
	drill := f.item(t, owner, "Drill", true)

	t.Run("ItemNotFound", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, 999, booker.ID, "Great")
		assertKind(t, err, domain.KindNotFound)
	})

	t.Run("AuthorNotFound", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, drill.ID, 999, "Great")
		assertKind(t, err, domain.KindNotFound)
	})

	t.Run("NoBooking", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, drill.ID, booker.ID, "Great")
		assertKind(t, err, domain.KindDataNotAvailable)
	})

	t.Run("BookingNotFinished", func(t *testing.T) {
		f.booking(t, booker, drill, -time.Hour, time.Hour)
		_, err := f.comments.CreateComment(ctx, drill.ID, booker.ID, "Great")
		assertKind(t, err, domain.KindDataNotAvailable)
	})

	t.Run("FinishedBooking", func(t *testing.T) {
		f.booking(t, booker, drill, -3*time.Hour, -2*time.Hour)
		c, err := f.comments.CreateComment(ctx, drill.ID, booker.ID, "Great drill")
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
		assert.Equal(t, "Booker", c.Author.Name)
		assert.True(t, c.CreatedAt.Equal(f.now))
		f.events.AssertCalled(t, "PublishJSON", events.EventCommentCreated, mock.AnythingOfType("events.CommentEventPayload"))
	})

	t.Run("OwnerWithoutBooking", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, drill.ID, owner.ID, "Mine")
		assertKind(t, err, domain.KindDataNotAvailable)
	})
}

func TestCommentService_ListForItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "Owner", "owner@example.com")
	booker := f.user(t, "Booker", "booker@example.com")
	drill := f.item(t, owner, "Drill", true)
	tent := f.item(t, owner, "Tent", true)
	f.booking(t, booker, drill, -3*time.Hour, -2*time.Hour)
	f.booking(t, booker, tent, -3*time.Hour, -2*time.Hour)

	_, err := f.comments.CreateComment(ctx, drill.ID, booker.ID, "Drill ok")
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, tent.ID, booker.ID, "Tent ok")
	require.NoError(t, err)

	comments, err := f.comments.ListForItems(ctx, []int64{drill.ID, tent.ID})
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	comments, err = f.comments.ListForItems(ctx, []int64{tent.ID})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Tent ok", comments[0].Text)

	comments, err = f.comments.ListForItems(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

// Owner A lists item I, B books it from T+100s to T+200s, A approves, and B
// may comment only once the booking has ended.
func TestBookingAndCommentScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now

	a := f.user(t, "Anna", "anna@example.com")
	b := f.user(t, "Boris", "boris@example.com")
	item := f.item(t, a, "Kayak", true)

	booking, err := f.bookings.CreateBooking(ctx, b.ID, item.ID, start.Add(100*time.Second), start.Add(200*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "WAITING", booking.Status)

	booking, err = f.bookings.Approve(ctx, booking.ID, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", booking.Status)

	f.now = start.Add(50 * time.Second)
	_, err = f.comments.CreateComment(ctx, item.ID, b.ID, "Too early")
	assertKind(t, err, domain.KindDataNotAvailable)

	f.now = start.Add(250 * time.Second)
	comment, err := f.comments.CreateComment(ctx, item.ID, b.ID, "Great kayak")
	require.NoError(t, err)
	assert.Equal(t, "Boris", comment.Author.Name)
	assert.False(t, comment.CreatedAt.IsZero())
}
