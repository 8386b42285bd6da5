package lotofacil

import "time"

const (
	// MinNumber is the smallest number on a Lotofácil slip
	MinNumber = 1

	// MaxNumber is the largest number on a Lotofácil slip
	MaxNumber = 25

	// TotalNumbers is the size of the default universe
	TotalNumbers = MaxNumber - MinNumber + 1

	// GridSide is the side of the 5x5 slip grid
	GridSide = 5

	// LowNumberMax is the upper bound of the "low" half of the slip
	LowNumberMax = 13

	// DrawSize is how many numbers an official draw contains
	DrawSize = 15

	// MinGameSize is the smallest game that can be played
	MinGameSize = 15

	// MaxGameSize is the largest game that can be played
	MaxGameSize = 20

	// MinFixedNumbers is the smallest fixed set accepted by the fixed-numbers strategy
	MinFixedNumbers = 5

	// MaxFixedNumbers is the largest fixed set accepted by the fixed-numbers strategy
	MaxFixedNumbers = 10

	// MinGuarantee and MaxGuarantee bound the closure guarantee level
	MinGuarantee GuaranteeLevel = 11
	MaxGuarantee GuaranteeLevel = 14

	// ProbabilityPrecision is the number of decimals kept in conditional probabilities
	ProbabilityPrecision = 4
)

// Strategy heuristics defaults. All of them can be tuned through StrategyConfig.
const (
	DefaultCombinationLimit       = 512
	DefaultFixedAttemptFactor     = 3
	DefaultFrequencyAttemptFactor = 120
	DefaultCycleAttemptFactor     = 120
	DefaultSmartPoolFactor        = 25
	DefaultFrequentRatio          = 0.6
	DefaultClosureMaxWork         = 50_000_000
	DefaultClosureMaxTargets      = 2_000_000

	// MaxAttemptFactor caps every attempt multiplier accepted by the configuration
	MaxAttemptFactor = 10_000
)

// Cycle analysis tuning.
const (
	HotNumbersLimit        = 10
	RecentWindowRatio      = 0.2
	RecentWindowMin        = 1
	RecentWindowMax        = 5
	CycleMandatoryMissing  = 3
	CycleMetadataListLimit = 6
)

const (
	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// BetsKey is the Redis hash holding saved bets
	BetsKey = "lotofacil:bets"

	// HistoryKey is the Redis key holding the draw history snapshot
	HistoryKey = "lotofacil:history"

	// HistoryLockKey serializes read-modify-write updates of the history snapshot
	HistoryLockKey = "lotofacil:lock:history"

	// DefaultLockExpiration is how long a lock survives a crashed holder
	DefaultLockExpiration = 30 * time.Second

	// MaxSerializationSize is the maximum allowed size for a serialized bet or history (10MB)
	MaxSerializationSize = 10 * 1024 * 1024
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "lotofacil-fetcher"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultFetcherURL           = "https://loteriascaixa-api.herokuapp.com/api/lotofacil/latest"
	DefaultFetcherTimeout       = 10 * time.Second
	DefaultFetcherRatePerSecond = 1.0
	DefaultFetcherBurst         = 3
	DefaultFetcherMaxRetries    = 2
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
	DefaultHistoryTTL        = time.Duration(0)
)
