package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "intento %d", i)
	}
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, 20*time.Second)

	// otra clave tiene su propio bucket
	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// pasado un intervalo se repone un token
	now = now.Add(20 * time.Second)
	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestDecide(t *testing.T) {
	res := decide(2, 5, 30*time.Second, time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(3), res.Remaining)

	res = decide(6, 5, 30*time.Second, time.Minute)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	res = decide(6, 5, -1, time.Minute)
	assert.Equal(t, time.Minute, res.RetryAfter)
}
