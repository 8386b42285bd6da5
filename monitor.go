package lotofacil

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// RunMetrics 策略运行指标
type RunMetrics struct {
	// 策略运行统计
	TotalRuns      int64 `json:"total_runs"`      // 总运行次数
	SuccessfulRuns int64 `json:"successful_runs"` // 成功次数
	FailedRuns     int64 `json:"failed_runs"`     // 失败次数
	GamesGenerated int64 `json:"games_generated"` // 生成的游戏总数

	// 性能统计
	AverageRunTime int64 `json:"average_run_time"` // 平均运行时间(纳秒)
	TotalRunTime   int64 `json:"total_run_time"`   // 总运行时间(纳秒)

	// 外部依赖统计
	StoreErrors int64 `json:"store_errors"` // Redis 存储错误数
	FetchErrors int64 `json:"fetch_errors"` // 最新结果获取错误数

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// GetSuccessRate 获取成功率
func (m *RunMetrics) GetSuccessRate() float64 {
	total := atomic.LoadInt64(&m.TotalRuns)
	if total == 0 {
		return 0.0
	}
	successful := atomic.LoadInt64(&m.SuccessfulRuns)
	return float64(successful) / float64(total) * 100.0
}

// GetThroughput 获取吞吐量(每秒运行次数)
func (m *RunMetrics) GetThroughput() float64 {
	startTime := atomic.LoadInt64(&m.StartTime)
	lastUpdate := atomic.LoadInt64(&m.LastUpdateTime)
	if startTime == 0 || lastUpdate <= startTime {
		return 0.0
	}

	duration := time.Duration(lastUpdate - startTime)
	return float64(atomic.LoadInt64(&m.TotalRuns)) / duration.Seconds()
}

// Reset 重置指标
func (m *RunMetrics) Reset() {
	atomic.StoreInt64(&m.TotalRuns, 0)
	atomic.StoreInt64(&m.SuccessfulRuns, 0)
	atomic.StoreInt64(&m.FailedRuns, 0)
	atomic.StoreInt64(&m.GamesGenerated, 0)
	atomic.StoreInt64(&m.AverageRunTime, 0)
	atomic.StoreInt64(&m.TotalRunTime, 0)
	atomic.StoreInt64(&m.StoreErrors, 0)
	atomic.StoreInt64(&m.FetchErrors, 0)
	atomic.StoreInt64(&m.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&m.LastUpdateTime, time.Now().UnixNano())
}

// ModeStats 单个策略的运行统计
type ModeStats struct {
	Runs           int64
	Failures       int64
	GamesGenerated int64
	TotalRunTime   time.Duration
}

// ================================================================================

// StrategyMonitor 策略运行监控器
type StrategyMonitor struct {
	metrics *RunMetrics
	enabled atomic.Bool

	modesMu sync.Mutex
	modes   map[StrategyMode]*ModeStats
}

// NewStrategyMonitor 创建新的策略监控器
func NewStrategyMonitor() *StrategyMonitor {
	sm := &StrategyMonitor{
		metrics: &RunMetrics{},
		modes:   make(map[StrategyMode]*ModeStats),
	}
	sm.enabled.Store(true)
	sm.metrics.Reset()
	return sm
}

// Enable 启用监控
func (sm *StrategyMonitor) Enable() { sm.enabled.Store(true) }

// Disable 禁用监控
func (sm *StrategyMonitor) Disable() { sm.enabled.Store(false) }

// IsEnabled 检查是否启用了监控
func (sm *StrategyMonitor) IsEnabled() bool { return sm.enabled.Load() }

// RecordRun 记录一次策略运行
func (sm *StrategyMonitor) RecordRun(mode StrategyMode, games int, success bool, duration time.Duration) {
	if !sm.IsEnabled() {
		return
	}

	atomic.AddInt64(&sm.metrics.TotalRuns, 1)
	atomic.AddInt64(&sm.metrics.TotalRunTime, int64(duration))
	if success {
		atomic.AddInt64(&sm.metrics.SuccessfulRuns, 1)
		atomic.AddInt64(&sm.metrics.GamesGenerated, int64(games))
	} else {
		atomic.AddInt64(&sm.metrics.FailedRuns, 1)
	}

	// 更新平均运行时间
	totalRuns := atomic.LoadInt64(&sm.metrics.TotalRuns)
	totalTime := atomic.LoadInt64(&sm.metrics.TotalRunTime)
	atomic.StoreInt64(&sm.metrics.AverageRunTime, totalTime/totalRuns)
	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())

	sm.modesMu.Lock()
	defer sm.modesMu.Unlock()
	stats, ok := sm.modes[mode]
	if !ok {
		stats = &ModeStats{}
		sm.modes[mode] = stats
	}
	stats.Runs++
	stats.TotalRunTime += duration
	if success {
		stats.GamesGenerated += int64(games)
	} else {
		stats.Failures++
	}
}

// RecordStoreError 记录存储错误
func (sm *StrategyMonitor) RecordStoreError() {
	if !sm.IsEnabled() {
		return
	}
	atomic.AddInt64(&sm.metrics.StoreErrors, 1)
	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordFetchError 记录获取错误
func (sm *StrategyMonitor) RecordFetchError() {
	if !sm.IsEnabled() {
		return
	}
	atomic.AddInt64(&sm.metrics.FetchErrors, 1)
	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// GetMetrics 获取指标的副本
func (sm *StrategyMonitor) GetMetrics() RunMetrics {
	return RunMetrics{
		TotalRuns:      atomic.LoadInt64(&sm.metrics.TotalRuns),
		SuccessfulRuns: atomic.LoadInt64(&sm.metrics.SuccessfulRuns),
		FailedRuns:     atomic.LoadInt64(&sm.metrics.FailedRuns),
		GamesGenerated: atomic.LoadInt64(&sm.metrics.GamesGenerated),
		AverageRunTime: atomic.LoadInt64(&sm.metrics.AverageRunTime),
		TotalRunTime:   atomic.LoadInt64(&sm.metrics.TotalRunTime),
		StoreErrors:    atomic.LoadInt64(&sm.metrics.StoreErrors),
		FetchErrors:    atomic.LoadInt64(&sm.metrics.FetchErrors),
		StartTime:      atomic.LoadInt64(&sm.metrics.StartTime),
		LastUpdateTime: atomic.LoadInt64(&sm.metrics.LastUpdateTime),
	}
}

// GetModeStats 获取按策略名排序的统计副本
func (sm *StrategyMonitor) GetModeStats() []ModeSnapshot {
	sm.modesMu.Lock()
	defer sm.modesMu.Unlock()

	out := make([]ModeSnapshot, 0, len(sm.modes))
	for mode, stats := range sm.modes {
		out = append(out, ModeSnapshot{Mode: mode, ModeStats: *stats})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out
}

// ModeSnapshot 策略及其统计
type ModeSnapshot struct {
	Mode StrategyMode
	ModeStats
}

// ResetMetrics 重置指标
func (sm *StrategyMonitor) ResetMetrics() {
	sm.metrics.Reset()
	sm.modesMu.Lock()
	sm.modes = make(map[StrategyMode]*ModeStats)
	sm.modesMu.Unlock()
}
