package redisq_test

import (
	"context"
	"testing"
	"time"

	"go-resume-screener/internal/repository/redisq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopSignal(t *testing.T) {
	sig := redisq.NewNopSignal()

	t.Run("Should accept notifications", func(t *testing.T) {
		assert.NoError(t, sig.Notify(context.Background(), "task-1"))
	})

	t.Run("Should return empty after the timeout", func(t *testing.T) {
		id, err := sig.Wait(context.Background(), 10*time.Millisecond)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("Should stop waiting when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sig.Wait(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
