package lotofacil

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Lock acquisition uses SET NX with an expiry (one round trip). Release runs a Lua
// script so that only the holder of the token can delete the key.
const (
	// releaseLockScript prevents a holder whose lock already expired from deleting
	// a lock acquired since by someone else
	releaseLockScript = `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
)

// RedisLock is a single-key Redis lock. It is not reentrant and a value is meant to
// be used by one goroutine.
type RedisLock struct {
	redisClient   *redis.Client
	key           string
	expiration    time.Duration
	retryAttempts int
	retryInterval time.Duration

	newToken func() string
	token    string
}

// NewRedisLock creates a lock on key. A non-positive expiration uses
// DefaultLockExpiration.
func NewRedisLock(
	redisClient *redis.Client, key string, expiration time.Duration, retryAttempts int, retryInterval time.Duration,
) *RedisLock {
	if expiration <= 0 {
		expiration = DefaultLockExpiration
	}
	return &RedisLock{
		redisClient:   redisClient,
		key:           key,
		expiration:    expiration,
		retryAttempts: retryAttempts,
		retryInterval: retryInterval,
		newToken:      uuid.NewString,
	}
}

// Acquire tries to take the lock up to retryAttempts+1 times. A lock held by someone
// else for the whole period is ErrLockAcquisitionFailed.
func (l *RedisLock) Acquire(ctx context.Context) error {
	if l.key == "" {
		return ErrInvalidParameters.WithDetails("empty lock key")
	}
	if l.token != "" {
		return ErrInvalidParameters.WithDetailsf("lock %s is already held", l.key)
	}

	token := l.newToken()
	for attempt := 0; attempt <= l.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ErrSystemError.WithDetails("operation cancelled").WithCause(ctx.Err())
			case <-time.After(l.retryInterval):
			}
		}

		acquired, err := l.redisClient.SetNX(ctx, l.key, token, l.expiration).Result()
		if err != nil {
			// If this is the last attempt, return the error
			if attempt == l.retryAttempts || !isRetriableRedisError(err) {
				return ErrRedisConnectionFailed.WithOperation("acquire_lock").WithCause(err)
			}
			continue
		}
		if acquired {
			l.token = token
			return nil
		}
	}

	return ErrLockAcquisitionFailed.WithDetailsf("%s is held by another process", l.key)
}

// Release frees the lock. It reports false when the lock had already expired and
// was not ours anymore.
func (l *RedisLock) Release(ctx context.Context) (bool, error) {
	if l.token == "" {
		return false, nil
	}

	result, err := l.redisClient.Eval(ctx, releaseLockScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return false, ErrRedisConnectionFailed.WithOperation("release_lock").WithCause(err)
	}
	l.token = ""
	return result == 1, nil
}
