package rdx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestAcquire(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	release, ok := c.Acquire(ctx, "u1:r1", 5*time.Second)
	require.True(t, ok)
	assert.True(t, mr.Exists(lockKeyPrefix+"u1:r1"))

	_, ok = c.Acquire(ctx, "u1:r1", 5*time.Second)
	assert.False(t, ok, "second acquire must fail while held")

	release()
	assert.False(t, mr.Exists(lockKeyPrefix+"u1:r1"))

	_, ok = c.Acquire(ctx, "u1:r1", 5*time.Second)
	assert.True(t, ok)
}

func TestAcquire_ReleaseDoesNotStealForeignLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	release, ok := c.Acquire(ctx, "u1:r1", time.Second)
	require.True(t, ok)

	// lock expired and was taken by someone else
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(lockKeyPrefix+"u1:r1", "other"))

	release()
	got, err := mr.Get(lockKeyPrefix + "u1:r1")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestAcquire_FailsOpenWhenRedisDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()

	release, ok := c.Acquire(context.Background(), "u1:r1", time.Second)
	assert.True(t, ok)
	release()
}

func TestRevoke(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	assert.False(t, c.IsRevoked(ctx, "jti-1"))
	require.NoError(t, c.Revoke(ctx, "jti-1", time.Minute))
	assert.True(t, c.IsRevoked(ctx, "jti-1"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.IsRevoked(ctx, "jti-1"), "revocation expires with the token")
}

func TestRevoke_ExpiredTokenIsNoop(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, c.Revoke(context.Background(), "jti-2", 0))
	assert.False(t, mr.Exists(revokedKeyPrefix+"jti-2"))
}
