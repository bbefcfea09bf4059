package papersources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	t.Run("allows a full burst without waiting", func(t *testing.T) {
		rl := NewRateLimiter(0.1, 5)

		start := time.Now()
		for i := 0; i < 5; i++ {
			require.NoError(t, rl.Wait(context.Background()), "request %d within burst", i+1)
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("request past the burst must wait", func(t *testing.T) {
		rl := NewRateLimiter(0.5, 1)
		require.NoError(t, rl.Wait(context.Background()))

		// The next token is two seconds away, so a short deadline cannot be met.
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.Error(t, rl.Wait(ctx))
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("returns immediately within burst", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)

		start := time.Now()
		require.NoError(t, rl.Wait(context.Background()))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		rl := NewRateLimiter(0.1, 1)
		require.NoError(t, rl.Wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, rl.Wait(ctx))
	})

	t.Run("refills at the configured rate", func(t *testing.T) {
		rl := NewRateLimiter(20, 1)
		require.NoError(t, rl.Wait(context.Background()))

		start := time.Now()
		require.NoError(t, rl.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})
}
