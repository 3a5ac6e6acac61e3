package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRateLimitStore(t *testing.T) {
	store := NewMemoryRateLimitStore()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("RateLimit", func(t *testing.T) {
		allowed, _ := store.CheckRateLimit(ctx, "user:456", 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = store.CheckRateLimit(ctx, "user:456", 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = store.CheckRateLimit(ctx, "user:456", 2, time.Second)
		assert.False(t, allowed)

		now = now.Add(time.Second + time.Millisecond)
		allowed, _ = store.CheckRateLimit(ctx, "user:456", 2, time.Second)
		assert.True(t, allowed)
	})

	t.Run("Sweep", func(t *testing.T) {
		_, _ = store.CheckRateLimit(ctx, "user:old", 1, time.Second)
		now = now.Add(2 * time.Second)
		assert.GreaterOrEqual(t, store.Sweep(), 1)

		allowed, _ := store.CheckRateLimit(ctx, "user:old", 1, time.Second)
		assert.True(t, allowed)
	})
}
