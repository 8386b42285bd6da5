package lotofacil

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyMonitor(t *testing.T) {
	t.Run("record_runs", func(t *testing.T) {
		m := NewStrategyMonitor()
		m.RecordRun(ModeClosure, 12, true, 300*time.Millisecond)
		m.RecordRun(ModeClosure, 0, false, 100*time.Millisecond)
		m.RecordRun(ModeSmartSpread, 5, true, 200*time.Millisecond)

		metrics := m.GetMetrics()
		assert.Equal(t, int64(3), metrics.TotalRuns)
		assert.Equal(t, int64(2), metrics.SuccessfulRuns)
		assert.Equal(t, int64(1), metrics.FailedRuns)
		assert.Equal(t, int64(17), metrics.GamesGenerated)
		assert.Equal(t, int64(600*time.Millisecond), metrics.TotalRunTime)
		assert.Equal(t, int64(200*time.Millisecond), metrics.AverageRunTime)
		assert.InDelta(t, 66.666, metrics.GetSuccessRate(), 0.01)

		stats := m.GetModeStats()
		require.Len(t, stats, 2)
		assert.Equal(t, ModeSnapshot{Mode: ModeClosure, ModeStats: ModeStats{
			Runs: 2, Failures: 1, GamesGenerated: 12, TotalRunTime: 400 * time.Millisecond,
		}}, stats[0])
		assert.Equal(t, ModeSmartSpread, stats[1].Mode)
	})

	t.Run("dependency_errors", func(t *testing.T) {
		m := NewStrategyMonitor()
		m.RecordStoreError()
		m.RecordStoreError()
		m.RecordFetchError()

		metrics := m.GetMetrics()
		assert.Equal(t, int64(2), metrics.StoreErrors)
		assert.Equal(t, int64(1), metrics.FetchErrors)
	})

	t.Run("disabled", func(t *testing.T) {
		m := NewStrategyMonitor()
		m.Disable()
		assert.False(t, m.IsEnabled())

		m.RecordRun(ModeBalanced, 3, true, time.Millisecond)
		m.RecordStoreError()
		assert.Zero(t, m.GetMetrics().TotalRuns)
		assert.Zero(t, m.GetMetrics().StoreErrors)
		assert.Empty(t, m.GetModeStats())

		m.Enable()
		m.RecordRun(ModeBalanced, 3, true, time.Millisecond)
		assert.Equal(t, int64(1), m.GetMetrics().TotalRuns)
	})

	t.Run("reset", func(t *testing.T) {
		m := NewStrategyMonitor()
		m.RecordRun(ModeBalanced, 3, true, time.Millisecond)
		m.RecordFetchError()

		m.ResetMetrics()
		metrics := m.GetMetrics()
		assert.Zero(t, metrics.TotalRuns)
		assert.Zero(t, metrics.FetchErrors)
		assert.Empty(t, m.GetModeStats())
		assert.Zero(t, metrics.GetSuccessRate())
	})

	t.Run("concurrent_recording", func(t *testing.T) {
		m := NewStrategyMonitor()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.RecordRun(ModeFixedNumbers, 2, true, time.Microsecond)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(50), m.GetMetrics().TotalRuns)
		assert.Equal(t, int64(100), m.GetModeStats()[0].GamesGenerated)
	})
}

func TestMetricsCollector(t *testing.T) {
	m := NewStrategyMonitor()
	m.RecordRun(ModeBalanced, 4, true, 1500*time.Millisecond)
	m.RecordRun(ModeBalanced, 0, false, 500*time.Millisecond)
	m.RecordRun(ModeCycleClosure, 2, true, time.Second)
	m.RecordStoreError()

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewMetricsCollector("", m)))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				key += "/" + lp.GetValue()
			}
			values[key] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, map[string]float64{
		"lotofacil_strategy_runs_total/balanced":                 2,
		"lotofacil_strategy_runs_total/cycle-closure":            1,
		"lotofacil_strategy_failures_total/balanced":             1,
		"lotofacil_strategy_failures_total/cycle-closure":        0,
		"lotofacil_strategy_games_generated_total/balanced":      4,
		"lotofacil_strategy_games_generated_total/cycle-closure": 2,
		"lotofacil_strategy_run_seconds_total/balanced":          2,
		"lotofacil_strategy_run_seconds_total/cycle-closure":     1,
		"lotofacil_store_errors_total":                           1,
		"lotofacil_fetcher_errors_total":                         0,
	}, values)
}

func TestMetricsCollector_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewMetricsCollector("draws", NewStrategyMonitor())))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{"draws_store_errors_total", "draws_fetcher_errors_total"}, names)
}
