package lotofacil

import (
	"context"
	"sync"
	"time"
)

// StrategyEngine runs the generation strategies with the configured heuristic
// bounds, logging every run and recording it in a StrategyMonitor. It is safe for
// concurrent use.
type StrategyEngine struct {
	configManager *ConfigManager
	logger        Logger
	random        RandomSource
	monitor       *StrategyMonitor
	mu            sync.RWMutex // guards logger and random
}

// NewStrategyEngine creates an engine with the default configuration
func NewStrategyEngine() *StrategyEngine {
	return NewStrategyEngineWithConfigAndLogger(NewDefaultConfigManager(), &DefaultLogger{})
}

// NewStrategyEngineWithConfig creates an engine with a custom configuration
func NewStrategyEngineWithConfig(cm *ConfigManager) *StrategyEngine {
	return NewStrategyEngineWithConfigAndLogger(cm, &DefaultLogger{})
}

// NewStrategyEngineWithLogger creates an engine with a custom logger
func NewStrategyEngineWithLogger(logger Logger) *StrategyEngine {
	return NewStrategyEngineWithConfigAndLogger(NewDefaultConfigManager(), logger)
}

// NewStrategyEngineWithConfigAndLogger creates an engine with a custom configuration and logger
func NewStrategyEngineWithConfigAndLogger(cm *ConfigManager, logger Logger) *StrategyEngine {
	if cm == nil {
		cm = NewDefaultConfigManager()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &StrategyEngine{
		configManager: cm,
		logger:        logger,
		random:        NewSecureRandomSource(),
		monitor:       NewStrategyMonitor(),
	}
}

// GetConfig returns the current configuration
func (e *StrategyEngine) GetConfig() *Config {
	return e.configManager.GetConfig()
}

// UpdateConfig validates and installs a new configuration at runtime
func (e *StrategyEngine) UpdateConfig(newConfig *Config) error {
	logger, _ := e.state()
	logger.Debug("UpdateConfig called")

	if newConfig == nil {
		logger.Error("UpdateConfig failed: nil configuration")
		return ErrInvalidParameters.WithDetails("nil configuration")
	}
	if err := newConfig.Validate(); err != nil {
		logger.Error("UpdateConfig validation failed: %v", err)
		return err
	}

	e.configManager.mu.Lock()
	e.configManager.config = newConfig
	e.configManager.mu.Unlock()

	s := newConfig.Strategy
	logger.Info(
		"Configuration updated successfully: CombinationLimit=%d, FrequentRatio=%.2f, ClosureMaxWork=%d",
		s.CombinationLimit, s.FrequentRatio, s.ClosureMaxWork)
	return nil
}

// SetLogger updates the logger at runtime
func (e *StrategyEngine) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// GetLogger returns the current logger
func (e *StrategyEngine) GetLogger() Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logger
}

// SetRandomSource replaces the source used by strategies that shuffle.
// A SeededSource makes runs reproducible.
func (e *StrategyEngine) SetRandomSource(src RandomSource) {
	if src == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.random = src
}

// Monitor returns the run statistics collector
func (e *StrategyEngine) Monitor() *StrategyMonitor { return e.monitor }

func (e *StrategyEngine) strategyConfig() *StrategyConfig {
	if cfg := e.configManager.GetConfig(); cfg != nil && cfg.Strategy != nil {
		return cfg.Strategy
	}
	return DefaultStrategyConfig()
}

func (e *StrategyEngine) state() (Logger, RandomSource) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logger, e.random
}

// run wraps one strategy call with logging and monitoring
func (e *StrategyEngine) run(
	ctx context.Context, mode StrategyMode, generate func() (*StrategyResult, error),
) (*StrategyResult, error) {
	logger, _ := e.state()
	logger.Debug("Running strategy %s", mode)

	if err := ctx.Err(); err != nil {
		logger.Error("Strategy %s cancelled before start: %v", mode, err)
		return nil, ErrSystemError.WithDetails("operation cancelled").WithCause(err)
	}

	start := time.Now()
	result, err := generate()
	elapsed := time.Since(start)
	if err != nil {
		e.monitor.RecordRun(mode, 0, false, elapsed)
		logger.Error("Strategy %s failed after %v: %v", mode, elapsed, err)
		return nil, err
	}

	e.monitor.RecordRun(mode, len(result.Games), true, elapsed)
	logger.Info("Strategy %s generated %d games in %v", mode, len(result.Games), elapsed)
	return result, nil
}

// GenerateCombinations enumerates filtered combinations; a zero limit uses the
// configured combination limit.
func (e *StrategyEngine) GenerateCombinations(ctx context.Context, req CombinationRequest) (*StrategyResult, error) {
	mode := ModeCombinations
	if req.Balanced {
		mode = ModeBalanced
	}
	limit := e.strategyConfig().CombinationLimit
	return e.run(ctx, mode, func() (*StrategyResult, error) {
		return generateCombinations(req, limit)
	})
}

// GenerateBalanced returns balanced games that pass the filters
func (e *StrategyEngine) GenerateBalanced(ctx context.Context, opts BalancedOptions) (*StrategyResult, error) {
	return e.run(ctx, ModeBalanced, func() (*StrategyResult, error) {
		return GenerateBalanced(opts)
	})
}

// GenerateFixedNumbers runs the fixed numbers strategy. The engine's random source
// is used unless opts carries its own.
func (e *StrategyEngine) GenerateFixedNumbers(ctx context.Context, opts FixedNumbersOptions) (*StrategyResult, error) {
	if opts.Random == nil {
		_, opts.Random = e.state()
	}
	factor := e.strategyConfig().FixedAttemptFactor
	return e.run(ctx, ModeFixedNumbers, func() (*StrategyResult, error) {
		return generateFixedNumbers(opts, factor)
	})
}

// GenerateGuaranteedClosure runs the greedy covering strategy under the configured
// work budget.
func (e *StrategyEngine) GenerateGuaranteedClosure(ctx context.Context, opts ClosureOptions) (*StrategyResult, error) {
	budget := e.strategyConfig().closureBudget()
	return e.run(ctx, ModeClosure, func() (*StrategyResult, error) {
		return generateGuaranteedClosure(opts, budget)
	})
}

// GenerateSmartSpread runs the pair spreading strategy
func (e *StrategyEngine) GenerateSmartSpread(ctx context.Context, opts SmartSpreadOptions) (*StrategyResult, error) {
	factor := e.strategyConfig().SmartPoolFactor
	return e.run(ctx, ModeSmartSpread, func() (*StrategyResult, error) {
		return generateSmartSpread(opts, factor)
	})
}

// GenerateFrequencyDelay runs the frequency and delay strategy. A zero ratio uses
// the configured one.
func (e *StrategyEngine) GenerateFrequencyDelay(ctx context.Context, opts FrequencyDelayOptions) (*StrategyResult, error) {
	cfg := e.strategyConfig()
	if opts.FrequentRatio == 0 {
		opts.FrequentRatio = cfg.FrequentRatio
	}
	return e.run(ctx, ModeFrequencyDelay, func() (*StrategyResult, error) {
		return generateFrequencyDelay(opts, cfg.FrequencyAttemptFactor)
	})
}

// GenerateCycleClosure runs the cycle closure strategy
func (e *StrategyEngine) GenerateCycleClosure(ctx context.Context, opts CycleClosureOptions) (*StrategyResult, error) {
	factor := e.strategyConfig().CycleAttemptFactor
	return e.run(ctx, ModeCycleClosure, func() (*StrategyResult, error) {
		return generateCycleClosure(opts, factor)
	})
}

// StrategyRequest selects one strategy and carries its options. Only the field
// matching Mode is read.
type StrategyRequest struct {
	Mode           StrategyMode           `json:"mode"`
	Combinations   *CombinationRequest    `json:"combinations,omitempty"`
	Balanced       *BalancedOptions       `json:"balanced,omitempty"`
	FixedNumbers   *FixedNumbersOptions   `json:"fixed,omitempty"`
	Closure        *ClosureOptions        `json:"closure,omitempty"`
	SmartSpread    *SmartSpreadOptions    `json:"smart_spread,omitempty"`
	FrequencyDelay *FrequencyDelayOptions `json:"frequency_delay,omitempty"`
	CycleClosure   *CycleClosureOptions   `json:"cycle_closure,omitempty"`
}

// Run dispatches req to the strategy named by its mode
func (e *StrategyEngine) Run(ctx context.Context, req StrategyRequest) (*StrategyResult, error) {
	missing := ErrInvalidParameters.WithDetailsf("options for strategy %s are missing", req.Mode)

	switch req.Mode {
	case ModeCombinations:
		if req.Combinations == nil {
			return nil, missing
		}
		return e.GenerateCombinations(ctx, *req.Combinations)
	case ModeBalanced:
		if req.Balanced == nil {
			return nil, missing
		}
		return e.GenerateBalanced(ctx, *req.Balanced)
	case ModeFixedNumbers:
		if req.FixedNumbers == nil {
			return nil, missing
		}
		return e.GenerateFixedNumbers(ctx, *req.FixedNumbers)
	case ModeClosure:
		if req.Closure == nil {
			return nil, missing
		}
		return e.GenerateGuaranteedClosure(ctx, *req.Closure)
	case ModeSmartSpread:
		if req.SmartSpread == nil {
			return nil, missing
		}
		return e.GenerateSmartSpread(ctx, *req.SmartSpread)
	case ModeFrequencyDelay:
		if req.FrequencyDelay == nil {
			return nil, missing
		}
		return e.GenerateFrequencyDelay(ctx, *req.FrequencyDelay)
	case ModeCycleClosure:
		if req.CycleClosure == nil {
			return nil, missing
		}
		return e.GenerateCycleClosure(ctx, *req.CycleClosure)
	default:
		logger, _ := e.state()
		logger.Error("Run failed: unknown strategy %q", req.Mode)
		return nil, ErrUnknownStrategy.WithDetailsf("mode %q", req.Mode)
	}
}
