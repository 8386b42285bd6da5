package lotofacil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config is the complete runtime configuration
type Config struct {
	// Strategy heuristics
	Strategy *StrategyConfig `mapstructure:"strategy"`

	// Bet and history store
	Redis *RedisConfig `mapstructure:"redis"`

	// Breaker around the latest result fetcher
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Latest result fetcher
	Fetcher *FetcherConfig `mapstructure:"fetcher"`
}

// Validate checks every section; nil sections are rejected.
func (c *Config) Validate() error {
	if c.Strategy == nil || c.Redis == nil || c.CircuitBreaker == nil || c.Fetcher == nil {
		return ErrConfigInvalid.WithDetails("missing configuration section")
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}

	if c.Redis.Addr == "" {
		return ErrConfigInvalid.WithDetails("redis address is required")
	}
	if c.Redis.PoolSize <= 0 {
		return ErrConfigInvalid.WithDetails("redis pool size must be positive")
	}
	if c.Redis.RetryAttempts < 0 || c.Redis.RetryAttempts > MaxRetryAttempts {
		return ErrConfigInvalid.WithDetailsf("redis retry attempts must be between 0 and %d", MaxRetryAttempts)
	}
	if c.Redis.RetryInterval < 0 || c.Redis.HistoryTTL < 0 {
		return ErrConfigInvalid.WithDetails("redis durations cannot be negative")
	}

	if c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1 {
		return ErrConfigInvalid.WithDetails("circuit breaker failure ratio must be in (0, 1]")
	}

	if c.Fetcher.URL == "" {
		return ErrConfigInvalid.WithDetails("fetcher url is required")
	}
	if c.Fetcher.Timeout <= 0 || c.Fetcher.RatePerSecond <= 0 || c.Fetcher.Burst <= 0 {
		return ErrConfigInvalid.WithDetails("fetcher timeout, rate and burst must be positive")
	}
	if c.Fetcher.MaxRetries < 0 || c.Fetcher.MaxRetries > MaxRetryAttempts {
		return ErrConfigInvalid.WithDetailsf("fetcher retries must be between 0 and %d", MaxRetryAttempts)
	}
	return nil
}

// StrategyConfig holds the tunable bounds of the generation heuristics
type StrategyConfig struct {
	CombinationLimit       int     `mapstructure:"combination_limit"`
	FixedAttemptFactor     int     `mapstructure:"fixed_attempt_factor"`
	FrequencyAttemptFactor int     `mapstructure:"frequency_attempt_factor"`
	CycleAttemptFactor     int     `mapstructure:"cycle_attempt_factor"`
	SmartPoolFactor        int     `mapstructure:"smart_pool_factor"`
	FrequentRatio          float64 `mapstructure:"frequent_ratio"`
	ClosureMaxWork         uint64  `mapstructure:"closure_max_work"`
	ClosureMaxTargets      uint64  `mapstructure:"closure_max_targets"`
}

// DefaultStrategyConfig returns the built-in heuristic bounds
func DefaultStrategyConfig() *StrategyConfig {
	return &StrategyConfig{
		CombinationLimit:       DefaultCombinationLimit,
		FixedAttemptFactor:     DefaultFixedAttemptFactor,
		FrequencyAttemptFactor: DefaultFrequencyAttemptFactor,
		CycleAttemptFactor:     DefaultCycleAttemptFactor,
		SmartPoolFactor:        DefaultSmartPoolFactor,
		FrequentRatio:          DefaultFrequentRatio,
		ClosureMaxWork:         DefaultClosureMaxWork,
		ClosureMaxTargets:      DefaultClosureMaxTargets,
	}
}

// Validate checks that every bound is positive and every factor is capped
func (s *StrategyConfig) Validate() error {
	if s.CombinationLimit <= 0 {
		return ErrConfigInvalid.WithDetails("strategy combination limit must be positive")
	}
	factors := map[string]int{
		"fixed_attempt_factor":     s.FixedAttemptFactor,
		"frequency_attempt_factor": s.FrequencyAttemptFactor,
		"cycle_attempt_factor":     s.CycleAttemptFactor,
		"smart_pool_factor":        s.SmartPoolFactor,
	}
	for name, v := range factors {
		if v <= 0 || v > MaxAttemptFactor {
			return ErrConfigInvalid.WithDetailsf("strategy %s must be between 1 and %d", name, MaxAttemptFactor)
		}
	}
	if s.FrequentRatio <= 0 || s.FrequentRatio > 1 {
		return ErrConfigInvalid.WithDetails("strategy frequent ratio must be in (0, 1]")
	}
	if s.ClosureMaxWork == 0 || s.ClosureMaxTargets == 0 {
		return ErrConfigInvalid.WithDetails("strategy closure budgets must be positive")
	}
	return nil
}

func (s *StrategyConfig) closureBudget() closureBudget {
	return closureBudget{maxWork: s.ClosureMaxWork, maxTargets: s.ClosureMaxTargets}
}

// RedisConfig configures the Redis client and the store retries
type RedisConfig struct {
	// Connection
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Pool
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// Timeouts
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`

	// Store retry policy and history snapshot lifetime (0 keeps it forever)
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	HistoryTTL    time.Duration `mapstructure:"history_ttl"`
}

// CircuitBreakerConfig configures the gobreaker settings
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig returns the breaker defaults
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// FetcherConfig configures the latest result fetcher
type FetcherConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// DefaultFetcherConfig returns the fetcher defaults
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		URL:           DefaultFetcherURL,
		Timeout:       DefaultFetcherTimeout,
		RatePerSecond: DefaultFetcherRatePerSecond,
		Burst:         DefaultFetcherBurst,
		MaxRetries:    DefaultFetcherMaxRetries,
	}
}

// DefaultConfig returns a complete configuration built from the package defaults
func DefaultConfig() *Config {
	return &Config{
		Strategy:       DefaultStrategyConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
		Fetcher:        DefaultFetcherConfig(),
	}
}

// ConfigManager loads, validates and watches the configuration through viper
type ConfigManager struct {
	viper  *viper.Viper
	mu     sync.RWMutex
	config *Config
	logger Logger
}

// NewConfigManager creates a manager that searches for config.yaml and reads
// LOTOFACIL_ environment variables
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lotofacil")
	v.AddConfigPath("$HOME/.lotofacil")

	// LOTOFACIL_REDIS_ADDR overrides redis.addr
	v.SetEnvPrefix("LOTOFACIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{
		viper:  v,
		logger: &DefaultLogger{},
	}
}

// SetConfigFile makes the manager read an explicit file instead of searching
func (cm *ConfigManager) SetConfigFile(path string) {
	cm.viper.SetConfigFile(path)
}

// SetLogger sets the logger used to report hot reload problems
func (cm *ConfigManager) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewSilentLogger()
	}
	cm.logger = logger
}

// LoadConfig reads defaults, the config file and the environment, then validates the
// result. An invalid configuration leaves the current one untouched.
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	cm.setDefaults()

	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ErrConfigInvalid.WithDetails("failed to read config file").WithCause(err)
		}
		// a missing file means defaults and environment only
	}

	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, ErrConfigInvalid.WithDetails("failed to unmarshal config").WithCause(err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("strategy.combination_limit", DefaultCombinationLimit)
	cm.viper.SetDefault("strategy.fixed_attempt_factor", DefaultFixedAttemptFactor)
	cm.viper.SetDefault("strategy.frequency_attempt_factor", DefaultFrequencyAttemptFactor)
	cm.viper.SetDefault("strategy.cycle_attempt_factor", DefaultCycleAttemptFactor)
	cm.viper.SetDefault("strategy.smart_pool_factor", DefaultSmartPoolFactor)
	cm.viper.SetDefault("strategy.frequent_ratio", DefaultFrequentRatio)
	cm.viper.SetDefault("strategy.closure_max_work", DefaultClosureMaxWork)
	cm.viper.SetDefault("strategy.closure_max_targets", DefaultClosureMaxTargets)

	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")
	cm.viper.SetDefault("redis.pool_timeout", "4s")
	cm.viper.SetDefault("redis.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("redis.retry_interval", "100ms")
	cm.viper.SetDefault("redis.history_ttl", "0s")

	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", "60s")
	cm.viper.SetDefault("circuit_breaker.timeout", "30s")
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", DefaultCircuitBreakerOnStateChange)

	cm.viper.SetDefault("fetcher.url", DefaultFetcherURL)
	cm.viper.SetDefault("fetcher.timeout", "10s")
	cm.viper.SetDefault("fetcher.rate_per_second", DefaultFetcherRatePerSecond)
	cm.viper.SetDefault("fetcher.burst", DefaultFetcherBurst)
	cm.viper.SetDefault("fetcher.max_retries", DefaultFetcherMaxRetries)
}

// WatchConfig reloads the configuration when the file changes. Invalid changes are
// logged and ignored; callback receives every accepted configuration.
func (cm *ConfigManager) WatchConfig(callback func(*Config)) error {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config := &Config{}
		if err := cm.viper.Unmarshal(config); err != nil {
			cm.logger.Error("Failed to reload config from %s: %v", e.Name, err)
			return
		}

		if err := config.Validate(); err != nil {
			cm.logger.Error("Ignoring invalid config change in %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		cm.logger.Info("Config reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()

	return nil
}

// GetConfig returns the current configuration, nil before a successful load
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ReloadConfig is LoadConfig
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }

// DefaultRedisConfig returns the Redis defaults
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:          DefaultRedisAddr,
		Password:      DefaultRedisPassword,
		DB:            DefaultRedisDB,
		PoolSize:      DefaultRedisPoolSize,
		MinIdleConns:  DefaultRedisMinIdleConns,
		MaxRetries:    DefaultRedisMaxRetries,
		DialTimeout:   DefaultRedisDialTimeout,
		ReadTimeout:   DefaultRedisReadTimeout,
		WriteTimeout:  DefaultRedisWriteTimeout,
		PoolTimeout:   DefaultRedisPoolTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
		HistoryTTL:    DefaultHistoryTTL,
	}
}

// NewRedisClientFromConfig creates a client; nil uses DefaultRedisConfig
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}

// NewDefaultConfigManager returns a manager already holding DefaultConfig
func NewDefaultConfigManager() *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()
	cm.config = DefaultConfig()
	return cm
}

// NewConfigManagerFromConfig wraps an already built configuration
func NewConfigManagerFromConfig(config *Config) (*ConfigManager, error) {
	if config == nil {
		return nil, ErrConfigInvalid.WithDetails("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm := NewConfigManager()
	cm.config = config
	return cm, nil
}
