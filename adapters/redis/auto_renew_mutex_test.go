package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewAutoRenewMutex(t *testing.T) {
	tests := []struct {
		name string
		opts []AutoRenewMutexOption
	}{
		{
			name: "default options",
		},
		{
			name: "custom options",
			opts: []AutoRenewMutexOption{
				WithAutoRenewMutexExpiry(5 * time.Second),
				WithAutoRenewMutexRenewInterval(time.Second),
				WithAutoRenewMutexRetryDelay(100 * time.Millisecond),
				WithAutoRenewMutexSkipLockError(true),
			},
		},
		{
			name: "zero expiry falls back to default",
			opts: []AutoRenewMutexOption{
				WithAutoRenewMutexExpiry(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)
			client, _, cleanup := setupTest(t)
			defer cleanup()

			mutex := NewAutoRenewMutex(client, "test-lock", tt.opts...)
			require.NotNil(t, mutex)
			assert.False(t, mutex.Valid())
		})
	}
}

func TestAutoRenewMutex_Lock(t *testing.T) {
	t.Run("lock and unlock", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, mr, cleanup := setupMiniredis(t)
		defer cleanup()

		mutex := NewAutoRenewMutex(client, "test-lock")
		lockCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		require.NotNil(t, lockCtx)
		assert.True(t, mutex.Valid())
		assert.True(t, mr.Exists("test-lock"))

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, mutex.Valid())
		assert.False(t, mr.Exists("test-lock"))

		select {
		case <-lockCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lock context was not cancelled after unlock")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		mutex := NewAutoRenewMutex(client, "test-lock")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		lockCtx, err := mutex.Lock(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, lockCtx)
	})

	t.Run("contended lock waits until deadline", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		holder := NewAutoRenewMutex(client, "test-lock")
		_, err := holder.Lock(context.Background())
		require.NoError(t, err)

		waiter := NewAutoRenewMutex(client, "test-lock", WithAutoRenewMutexRetryDelay(20*time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		lockCtx, err := waiter.Lock(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, lockCtx)

		ok, err := holder.Unlock()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("contended lock is acquired after release", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		holder := NewAutoRenewMutex(client, "test-lock")
		_, err := holder.Lock(context.Background())
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			holder.Unlock()
		}()

		waiter := NewAutoRenewMutex(client, "test-lock", WithAutoRenewMutexRetryDelay(10*time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err = waiter.Lock(ctx)
		require.NoError(t, err)
		_, err = waiter.Unlock()
		require.NoError(t, err)
	})

	t.Run("redis error without skip", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX("test-lock", ".*", 8*time.Second).SetErr(redis.ErrClosed)

		mutex := NewAutoRenewMutex(client, "test-lock")
		lockCtx, err := mutex.Lock(context.Background())
		var commErr *redsync.RedisError
		assert.ErrorAs(t, err, &commErr)
		assert.Nil(t, lockCtx)
	})
}

func TestAutoRenewMutex_AutoRenew(t *testing.T) {
	t.Run("lock outlives expiry while renewing", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, mr, cleanup := setupMiniredis(t)
		defer cleanup()

		mutex := NewAutoRenewMutex(client, "test-lock",
			WithAutoRenewMutexExpiry(300*time.Millisecond),
			WithAutoRenewMutexRenewInterval(50*time.Millisecond))

		_, err := mutex.Lock(context.Background())
		require.NoError(t, err)

		time.Sleep(500 * time.Millisecond)
		assert.True(t, mutex.Valid())
		assert.True(t, mr.Exists("test-lock"))

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("lost lock cancels the lock context", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, mr, cleanup := setupMiniredis(t)
		defer cleanup()

		mutex := NewAutoRenewMutex(client, "test-lock",
			WithAutoRenewMutexExpiry(2*time.Second),
			WithAutoRenewMutexRenewInterval(30*time.Millisecond))

		lockCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)

		// 其他人強制刪除了鎖
		mr.Del("test-lock")

		select {
		case <-lockCtx.Done():
		case <-time.After(time.Second):
			t.Fatal("lock context was not cancelled after losing the lock")
		}
		assert.False(t, mutex.Valid())

		ok, err := mutex.Unlock()
		assert.ErrorIs(t, err, redsync.ErrLockAlreadyExpired)
		assert.False(t, ok)
	})
}
