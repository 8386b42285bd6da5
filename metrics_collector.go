package lotofacil

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exports a StrategyMonitor as Prometheus metrics
type MetricsCollector struct {
	monitor *StrategyMonitor

	runs        *prometheus.Desc
	failures    *prometheus.Desc
	games       *prometheus.Desc
	runSeconds  *prometheus.Desc
	storeErrors *prometheus.Desc
	fetchErrors *prometheus.Desc
}

// NewMetricsCollector creates a collector; register it with a prometheus.Registerer.
func NewMetricsCollector(namespace string, monitor *StrategyMonitor) *MetricsCollector {
	if namespace == "" {
		namespace = "lotofacil"
	}
	labels := []string{"strategy"}
	return &MetricsCollector{
		monitor: monitor,
		runs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "strategy", "runs_total"),
			"Strategy runs by strategy mode.", labels, nil),
		failures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "strategy", "failures_total"),
			"Failed strategy runs by strategy mode.", labels, nil),
		games: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "strategy", "games_generated_total"),
			"Games generated by strategy mode.", labels, nil),
		runSeconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "strategy", "run_seconds_total"),
			"Cumulative strategy run time in seconds.", labels, nil),
		storeErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "errors_total"),
			"Redis store operations that failed.", nil, nil),
		fetchErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fetcher", "errors_total"),
			"Latest result fetches that failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.runs
	ch <- c.failures
	ch <- c.games
	ch <- c.runSeconds
	ch <- c.storeErrors
	ch <- c.fetchErrors
}

// Collect implements prometheus.Collector
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.monitor.GetModeStats() {
		mode := string(s.Mode)
		ch <- prometheus.MustNewConstMetric(c.runs, prometheus.CounterValue, float64(s.Runs), mode)
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.Failures), mode)
		ch <- prometheus.MustNewConstMetric(c.games, prometheus.CounterValue, float64(s.GamesGenerated), mode)
		ch <- prometheus.MustNewConstMetric(c.runSeconds, prometheus.CounterValue, s.TotalRunTime.Seconds(), mode)
	}

	m := c.monitor.GetMetrics()
	ch <- prometheus.MustNewConstMetric(c.storeErrors, prometheus.CounterValue, float64(m.StoreErrors))
	ch <- prometheus.MustNewConstMetric(c.fetchErrors, prometheus.CounterValue, float64(m.FetchErrors))
}
