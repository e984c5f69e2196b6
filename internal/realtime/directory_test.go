package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*RedisDirectory, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	dir, err := NewRedisDirectory("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })
	return dir, s
}

func TestDirectoryConnectDisconnect(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()
	userID := uuid.New()

	online, err := dir.IsConnected(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, dir.Connect(ctx, userID))
	online, err = dir.IsConnected(ctx, userID)
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, dir.Disconnect(ctx, userID))
	online, err = dir.IsConnected(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestDirectoryEntriesExpire(t *testing.T) {
	dir, s := newTestDirectory(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, dir.Connect(ctx, userID))

	// A crashed edge never calls Disconnect; the TTL cleans up for it.
	s.FastForward(2 * time.Minute)

	online, err := dir.IsConnected(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestDirectoryIsolatesUsers(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()
	connected := uuid.New()
	other := uuid.New()

	require.NoError(t, dir.Connect(ctx, connected))

	online, err := dir.IsConnected(ctx, other)
	require.NoError(t, err)
	assert.False(t, online)
}
