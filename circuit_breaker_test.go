package lotofacil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker(t *testing.T) {
	failing := func() (any, error) { return nil, errors.New("upstream down") }

	newBreaker := func() *CircuitBreaker {
		config := DefaultCircuitBreakerConfig()
		config.MinRequests = 2
		config.FailureRatio = 0.5
		config.Timeout = time.Minute
		return NewCircuitBreaker(config, NewSilentLogger())
	}

	t.Run("passes_results_through", func(t *testing.T) {
		cb := newBreaker()

		res, err := cb.Execute(func() (any, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, res)
		assert.Equal(t, "closed", cb.State())
		assert.Equal(t, uint32(1), cb.Counts().TotalSuccesses)
	})

	t.Run("trips_after_failures", func(t *testing.T) {
		cb := newBreaker()

		_, err := cb.Execute(failing)
		require.Error(t, err)
		assert.Equal(t, "closed", cb.State())

		_, err = cb.Execute(failing)
		require.Error(t, err)
		assert.Equal(t, "open", cb.State())

		called := false
		_, err = cb.Execute(func() (any, error) {
			called = true
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
		assert.False(t, called)

		health := cb.HealthCheck()
		assert.Equal(t, "open", health["state"])
		assert.Equal(t, false, health["healthy"])
	})

	t.Run("invalid_responses_do_not_count", func(t *testing.T) {
		cb := newBreaker()

		for i := 0; i < 3; i++ {
			_, err := cb.Execute(func() (any, error) { return nil, ErrInvalidResponse })
			assert.ErrorIs(t, err, ErrInvalidResponse)
		}
		assert.Equal(t, "closed", cb.State())
		assert.Zero(t, cb.Counts().TotalFailures)
	})

	t.Run("reset", func(t *testing.T) {
		cb := newBreaker()
		_, _ = cb.Execute(failing)
		_, _ = cb.Execute(failing)
		require.Equal(t, "open", cb.State())

		cb.Reset()
		assert.Equal(t, "closed", cb.State())
		assert.Zero(t, cb.Counts().Requests)
	})

	t.Run("disabled", func(t *testing.T) {
		config := DefaultCircuitBreakerConfig()
		config.Enabled = false
		cb := NewCircuitBreaker(config, nil)

		for i := 0; i < 5; i++ {
			_, err := cb.Execute(failing)
			assert.EqualError(t, err, "upstream down")
		}
		assert.Equal(t, "disabled", cb.State())
		assert.Zero(t, cb.Counts().Requests)

		health := cb.HealthCheck()
		assert.Equal(t, true, health["healthy"])
		assert.Equal(t, false, health["circuit_breaker_enabled"])
	})

	t.Run("health_of_closed_breaker", func(t *testing.T) {
		cb := newBreaker()
		for i := 0; i < 3; i++ {
			_, _ = cb.Execute(func() (any, error) { return nil, nil })
		}
		_, _ = cb.Execute(failing)

		health := cb.HealthCheck()
		assert.Equal(t, "closed", health["state"])
		assert.Equal(t, true, health["healthy"])
		assert.Equal(t, uint32(4), health["requests"])
		assert.InDelta(t, 0.25, health["failure_rate"], 1e-9)
	})
}
