package lotofacil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T, retryAttempts int) (*RedisLock, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { db.Close() })

	lock := NewRedisLock(db, "lotofacil:lock:test", time.Second, retryAttempts, time.Millisecond)
	lock.newToken = func() string { return "token-1" }
	return lock, mock
}

func TestRedisLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire_and_release", func(t *testing.T) {
		lock, mock := newTestLock(t, 2)

		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(true)
		require.NoError(t, lock.Acquire(ctx))

		mock.ExpectEval(releaseLockScript, []string{"lotofacil:lock:test"}, "token-1").SetVal(int64(1))
		released, err := lock.Release(ctx)
		require.NoError(t, err)
		assert.True(t, released)

		released, err = lock.Release(ctx)
		require.NoError(t, err)
		assert.False(t, released, "second release is a no-op")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("waits_for_holder", func(t *testing.T) {
		lock, mock := newTestLock(t, 2)

		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(false)
		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(true)
		require.NoError(t, lock.Acquire(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held_by_another_process", func(t *testing.T) {
		lock, mock := newTestLock(t, 2)

		for i := 0; i < 3; i++ {
			mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(false)
		}
		err := lock.Acquire(ctx)
		assert.ErrorIs(t, err, ErrLockAcquisitionFailed)
		assert.NoError(t, mock.ExpectationsWereMet())

		released, err := lock.Release(ctx)
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("already_held", func(t *testing.T) {
		lock, mock := newTestLock(t, 0)

		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(true)
		require.NoError(t, lock.Acquire(ctx))
		assert.ErrorIs(t, lock.Acquire(ctx), ErrInvalidParameters)
	})

	t.Run("redis_error", func(t *testing.T) {
		lock, mock := newTestLock(t, 1)

		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetErr(fmt.Errorf("connection refused"))
		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetErr(fmt.Errorf("connection refused"))

		err := lock.Acquire(ctx)
		assert.ErrorIs(t, err, ErrRedisConnectionFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired_before_release", func(t *testing.T) {
		lock, mock := newTestLock(t, 0)

		mock.ExpectSetNX("lotofacil:lock:test", "token-1", time.Second).SetVal(true)
		require.NoError(t, lock.Acquire(ctx))

		mock.ExpectEval(releaseLockScript, []string{"lotofacil:lock:test"}, "token-1").SetVal(int64(0))
		released, err := lock.Release(ctx)
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("default_expiration", func(t *testing.T) {
		lock := NewRedisLock(nil, "k", 0, 0, 0)
		assert.Equal(t, DefaultLockExpiration, lock.expiration)
	})
}
