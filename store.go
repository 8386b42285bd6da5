package lotofacil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore persists bets and the draw history snapshot in Redis.
// Bets live as JSON values of the BetsKey hash, keyed by bet ID.
type RedisStore struct {
	redisClient    *redis.Client
	logger         Logger
	monitor        *StrategyMonitor
	retryAttempts  int
	retryBaseDelay time.Duration
	historyTTL     time.Duration
	lockToken      func() string
}

// NewRedisStore creates a store with the default retry settings
func NewRedisStore(redisClient *redis.Client, logger Logger) *RedisStore {
	return NewRedisStoreWithConfig(redisClient, DefaultRedisConfig(), logger)
}

// NewRedisStoreWithConfig creates a store using the retry and TTL settings of config
func NewRedisStoreWithConfig(redisClient *redis.Client, config *RedisConfig, logger Logger) *RedisStore {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &RedisStore{
		redisClient:    redisClient,
		logger:         logger,
		retryAttempts:  config.RetryAttempts,
		retryBaseDelay: config.RetryInterval,
		historyTTL:     config.HistoryTTL,
		lockToken:      uuid.NewString,
	}
}

// SetMonitor makes the store report failed operations to monitor
func (s *RedisStore) SetMonitor(monitor *StrategyMonitor) { s.monitor = monitor }

// isRetriableRedisError checks if a Redis error is retriable
func isRetriableRedisError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	// Check for common retriable Redis errors
	errStr := strings.ToLower(err.Error())
	retriableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"temporary failure",
		"server closed",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"read tcp",
		"write tcp",
		"connection timed out",
		"no route to host",
		"host is down",
		"connection aborted",
		"operation timed out",
		"redis: connection pool timeout",
		"redis: client is closed",
		"context deadline exceeded",
	}

	for _, retriableErr := range retriableErrors {
		if strings.Contains(errStr, retriableErr) {
			return true
		}
	}
	return false
}

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (s *RedisStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			// Calculate exponential backoff delay: baseDelay * 2^(attempt-1)
			delay := time.Duration(1<<(attempt-1)) * s.retryBaseDelay

			// Cap the maximum delay to prevent excessive wait times
			if maxDelay := 5 * time.Second; delay > maxDelay {
				delay = maxDelay
			}

			s.logger.Debug("Retrying %s operation (attempt %d/%d) after %v, total elapsed: %v",
				operation, attempt, s.retryAttempts, delay, time.Since(startTime))

			select {
			case <-ctx.Done():
				err := fmt.Errorf("context cancelled during retry for %s operation (attempt %d/%d): %w",
					operation, attempt, s.retryAttempts+1, ctx.Err())
				if isRedisTimeout(err) {
					return ErrRedisTimeout.WithOperation(operation).WithCause(err)
				}
				return err
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				s.logger.Info("Successfully completed %s operation after %d retries (total time: %v)",
					operation, attempt, time.Since(startTime))
			}
			return nil
		}
		lastErr = err

		if !isRetriableRedisError(err) {
			s.logger.Debug("Non-retriable error for %s operation (attempt %d): %v", operation, attempt+1, err)
			break
		}
		if attempt == s.retryAttempts {
			s.logger.Error("Final retry attempt failed for %s operation (attempt %d/%d): %v",
				operation, attempt+1, s.retryAttempts+1, err)
		}
	}

	if isRedisTimeout(lastErr) {
		return ErrRedisTimeout.WithOperation(operation).
			WithDetailsf("gave up after %v", time.Since(startTime)).WithCause(lastErr)
	}
	return fmt.Errorf("%s operation failed after %v: %w", operation, time.Since(startTime), lastErr)
}

// isRedisTimeout reports deadline and network timeouts, including the ones go-redis
// only reports as text
func isRedisTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func (s *RedisStore) fail(base *LotofacilError, operation string, err error) error {
	if s.monitor != nil {
		s.monitor.RecordStoreError()
	}
	s.logger.Error("Store %s failed: %v", operation, err)
	return base.WithOperation(operation).WithCause(err)
}

// SaveBet validates and stores bet, replacing any bet with the same ID
func (s *RedisStore) SaveBet(ctx context.Context, bet *Bet) error {
	if err := bet.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(bet)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if len(data) > MaxSerializationSize {
		return ErrSerializationFailed.WithDetailsf("bet %s is %d bytes, limit is %d", bet.ID, len(data), MaxSerializationSize)
	}

	err = s.executeWithRetry(ctx, fmt.Sprintf("save_bet[%s]", bet.ID), func() error {
		return s.redisClient.HSet(ctx, BetsKey, bet.ID, data).Err()
	})
	if err != nil {
		return s.fail(ErrStateSaveFailure, "save_bet", err)
	}

	s.logger.Debug("Saved bet %s (%s, %d games)", bet.ID, bet.Kind, len(bet.Games))
	return nil
}

// GetBet loads a bet by ID; a missing bet is ErrBetNotFound
func (s *RedisStore) GetBet(ctx context.Context, id string) (*Bet, error) {
	if id == "" {
		return nil, ErrInvalidParameters.WithDetails("empty bet id")
	}

	var data []byte
	found := true
	err := s.executeWithRetry(ctx, fmt.Sprintf("get_bet[%s]", id), func() error {
		var err error
		data, err = s.redisClient.HGet(ctx, BetsKey, id).Bytes()
		if errors.Is(err, redis.Nil) {
			// Key doesn't exist - this is not an error condition, don't retry
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, s.fail(ErrStateLoadFailure, "get_bet", err)
	}
	if !found {
		return nil, ErrBetNotFound.WithDetailsf("id %s", id)
	}
	return decodeBet(data)
}

// ListBets returns every stored bet, newest first
func (s *RedisStore) ListBets(ctx context.Context) ([]*Bet, error) {
	var raw map[string]string
	err := s.executeWithRetry(ctx, "list_bets", func() error {
		var err error
		raw, err = s.redisClient.HGetAll(ctx, BetsKey).Result()
		return err
	})
	if err != nil {
		return nil, s.fail(ErrStateLoadFailure, "list_bets", err)
	}

	bets := make([]*Bet, 0, len(raw))
	for id, value := range raw {
		bet, err := decodeBet([]byte(value))
		if err != nil {
			s.logger.Error("Skipping unreadable bet %s: %v", id, err)
			continue
		}
		bets = append(bets, bet)
	}
	sort.Slice(bets, func(i, j int) bool {
		if !bets[i].CreatedAt.Equal(bets[j].CreatedAt) {
			return bets[i].CreatedAt.After(bets[j].CreatedAt)
		}
		return bets[i].ID < bets[j].ID
	})
	return bets, nil
}

// DeleteBet removes a bet; a missing bet is ErrBetNotFound
func (s *RedisStore) DeleteBet(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidParameters.WithDetails("empty bet id")
	}

	var removed int64
	err := s.executeWithRetry(ctx, fmt.Sprintf("delete_bet[%s]", id), func() error {
		var err error
		removed, err = s.redisClient.HDel(ctx, BetsKey, id).Result()
		return err
	})
	if err != nil {
		return s.fail(ErrStateSaveFailure, "delete_bet", err)
	}
	if removed == 0 {
		return ErrBetNotFound.WithDetailsf("id %s", id)
	}
	return nil
}

// SaveHistory replaces the stored draw history snapshot. Draws are validated and
// stored in ascending contest order.
func (s *RedisStore) SaveHistory(ctx context.Context, history []Draw) error {
	for _, d := range history {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	draws := append([]Draw(nil), history...)
	sort.SliceStable(draws, func(i, j int) bool { return draws[i].Contest < draws[j].Contest })

	data, err := json.Marshal(draws)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if len(data) > MaxSerializationSize {
		return ErrSerializationFailed.WithDetailsf("history is %d bytes, limit is %d", len(data), MaxSerializationSize)
	}

	err = s.executeWithRetry(ctx, "save_history", func() error {
		return s.redisClient.Set(ctx, HistoryKey, data, s.historyTTL).Err()
	})
	if err != nil {
		return s.fail(ErrStateSaveFailure, "save_history", err)
	}

	s.logger.Debug("Saved history snapshot with %d draws (%d bytes)", len(draws), len(data))
	return nil
}

// LoadHistory returns the stored history snapshot, or an empty slice when none exists
func (s *RedisStore) LoadHistory(ctx context.Context) ([]Draw, error) {
	var data []byte
	err := s.executeWithRetry(ctx, "load_history", func() error {
		var err error
		data, err = s.redisClient.Get(ctx, HistoryKey).Bytes()
		if errors.Is(err, redis.Nil) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, s.fail(ErrStateLoadFailure, "load_history", err)
	}
	if len(data) == 0 {
		return []Draw{}, nil
	}
	if len(data) > MaxSerializationSize {
		return nil, ErrDeserializationFailed.WithDetailsf("history is %d bytes, limit is %d", len(data), MaxSerializationSize)
	}

	var draws []Draw
	if err := json.Unmarshal(data, &draws); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}
	return draws, nil
}

// AppendDraw adds d to the history snapshot while holding HistoryLockKey, so that
// concurrent appends never drop each other's draws. It reports false when the
// contest is already stored.
func (s *RedisStore) AppendDraw(ctx context.Context, d Draw) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}

	lock := NewRedisLock(s.redisClient, HistoryLockKey, DefaultLockExpiration, s.retryAttempts, s.retryBaseDelay)
	lock.newToken = s.lockToken
	if err := lock.Acquire(ctx); err != nil {
		return false, s.fail(ErrStateSaveFailure, "append_draw", err)
	}
	defer func() {
		released, err := lock.Release(context.WithoutCancel(ctx))
		switch {
		case err != nil:
			s.logger.Error("Failed to release history lock: %v", err)
		case !released:
			s.logger.Info("History lock expired before release")
		}
	}()

	history, err := s.LoadHistory(ctx)
	if err != nil {
		return false, err
	}
	for _, h := range history {
		if h.Contest == d.Contest {
			s.logger.Debug("Contest %d already stored", d.Contest)
			return false, nil
		}
	}
	if err := s.SaveHistory(ctx, append(history, d)); err != nil {
		return false, err
	}
	return true, nil
}

func decodeBet(data []byte) (*Bet, error) {
	if len(data) == 0 {
		return nil, ErrDeserializationFailed.WithDetails("empty bet payload")
	}
	var bet Bet
	if err := json.Unmarshal(data, &bet); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}
	if err := bet.Validate(); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}
	return &bet, nil
}
