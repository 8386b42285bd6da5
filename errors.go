package lotofacil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"strings"
	"time"
)

// ErrorCode identifies a failure; codes are grouped by range
type ErrorCode string

// Error codes
const (
	// System errors (1000-1999)
	ErrCodeSystem             ErrorCode = "LOTOFACIL_1000"
	ErrCodeRedisConnection    ErrorCode = "LOTOFACIL_1001"
	ErrCodeRedisTimeout       ErrorCode = "LOTOFACIL_1002"
	ErrCodeLockAcquisition    ErrorCode = "LOTOFACIL_1003"
	ErrCodeConfigInvalid      ErrorCode = "LOTOFACIL_1004"
	ErrCodeServiceUnavailable ErrorCode = "LOTOFACIL_1005"

	// Input and generation errors (2000-2999)
	ErrCodeInvalidParameters        ErrorCode = "LOTOFACIL_2000"
	ErrCodeInvalidGameSize          ErrorCode = "LOTOFACIL_2001"
	ErrCodeInvalidFixedCount        ErrorCode = "LOTOFACIL_2002"
	ErrCodeInsufficientFloatingPool ErrorCode = "LOTOFACIL_2003"
	ErrCodeInsufficientUniverse     ErrorCode = "LOTOFACIL_2004"
	ErrCodeGuaranteeUnreachable     ErrorCode = "LOTOFACIL_2005"
	ErrCodeEmptyHistory             ErrorCode = "LOTOFACIL_2006"
	ErrCodeClosureUnachievable      ErrorCode = "LOTOFACIL_2007"
	ErrCodeInvalidGuarantee         ErrorCode = "LOTOFACIL_2008"
	ErrCodeInvalidCount             ErrorCode = "LOTOFACIL_2009"
	ErrCodeInvalidNumber            ErrorCode = "LOTOFACIL_2010"
	ErrCodeNoGamesGenerated         ErrorCode = "LOTOFACIL_2011"
	ErrCodeClosureTooLarge          ErrorCode = "LOTOFACIL_2012"
	ErrCodeUnknownStrategy          ErrorCode = "LOTOFACIL_2013"

	// Breaker and remote service errors (5000-5999)
	ErrCodeRateLimitExceeded  ErrorCode = "LOTOFACIL_5000"
	ErrCodeCircuitBreakerOpen ErrorCode = "LOTOFACIL_5002"
	ErrCodeFetchFailed        ErrorCode = "LOTOFACIL_5003"
	ErrCodeInvalidResponse    ErrorCode = "LOTOFACIL_5004"

	// Store and import errors (6000-6999)
	ErrCodeBetNotFound           ErrorCode = "LOTOFACIL_6000"
	ErrCodeStateSaveFailure      ErrorCode = "LOTOFACIL_6001"
	ErrCodeStateLoadFailure      ErrorCode = "LOTOFACIL_6002"
	ErrCodeSerializationFailed   ErrorCode = "LOTOFACIL_6004"
	ErrCodeDeserializationFailed ErrorCode = "LOTOFACIL_6005"
	ErrCodeImportFailed          ErrorCode = "LOTOFACIL_6006"
)

// ErrorSeverity grades how bad a failure is
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
	SeverityInfo     ErrorSeverity = "info"
)

// LotofacilError is the coded error returned by every operation of the package.
// Two errors are equal under errors.Is when their codes match.
type LotofacilError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    string         `json:"details,omitempty"`
	Severity   ErrorSeverity  `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	Operation  string         `json:"operation,omitempty"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Cause      error          `json:"-"`
	Retryable  bool           `json:"retryable"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Error formats the code, message, details and cause in that order
func (e *LotofacilError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause
func (e *LotofacilError) Unwrap() error {
	return e.Cause
}

// Is matches any LotofacilError with the same code
func (e *LotofacilError) Is(target error) bool {
	if t, ok := target.(*LotofacilError); ok {
		return e.Code == t.Code
	}
	return false
}

// clone returns a shallow copy so that the predefined errors are never mutated.
func (e *LotofacilError) clone() *LotofacilError {
	c := *e
	c.Timestamp = time.Now()
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// WithCause returns a copy carrying the given cause
func (e *LotofacilError) WithCause(cause error) *LotofacilError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy carrying the given details
func (e *LotofacilError) WithDetails(details string) *LotofacilError {
	c := e.clone()
	c.Details = details
	return c
}

// WithDetailsf is WithDetails with fmt formatting
func (e *LotofacilError) WithDetailsf(format string, args ...any) *LotofacilError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithOperation returns a copy tagged with the failing operation
func (e *LotofacilError) WithOperation(operation string) *LotofacilError {
	c := e.clone()
	c.Operation = operation
	return c
}

// WithMetadata returns a copy with an extra metadata entry
func (e *LotofacilError) WithMetadata(key string, value any) *LotofacilError {
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// WithStackTrace records the current goroutine stack on e
func (e *LotofacilError) WithStackTrace() *LotofacilError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	e.StackTrace = string(buf[:n])
	return e
}

// NewError creates a non-retryable error of medium severity
func NewError(code ErrorCode, message string) *LotofacilError {
	return &LotofacilError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: false,
	}
}

// NewRetryableError creates a retryable error of medium severity
func NewRetryableError(code ErrorCode, message string) *LotofacilError {
	return &LotofacilError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: true,
	}
}

// NewCriticalError creates a critical error carrying a stack trace
func NewCriticalError(code ErrorCode, message string) *LotofacilError {
	err := &LotofacilError{
		Code:      code,
		Message:   message,
		Severity:  SeverityCritical,
		Timestamp: time.Now(),
		Retryable: false,
	}
	return err.WithStackTrace()
}

// Predefined errors. Use the With* builders to add context; they return copies.
var (
	// System
	ErrSystemError           = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrRedisConnectionFailed = NewRetryableError(ErrCodeRedisConnection, "Redis connection failed")
	ErrRedisTimeout          = NewRetryableError(ErrCodeRedisTimeout, "Redis operation timeout")
	ErrLockAcquisitionFailed = NewRetryableError(ErrCodeLockAcquisition, "failed to acquire distributed lock")
	ErrConfigInvalid         = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrServiceUnavailable    = NewRetryableError(ErrCodeServiceUnavailable, "service temporarily unavailable")

	// Input and generation
	ErrInvalidParameters        = NewError(ErrCodeInvalidParameters, "invalid parameters provided")
	ErrInvalidGameSize          = NewError(ErrCodeInvalidGameSize, "invalid game size: must be between 15 and 20")
	ErrInvalidFixedCount        = NewError(ErrCodeInvalidFixedCount, "invalid fixed numbers count for the requested game size")
	ErrInsufficientFloatingPool = NewError(ErrCodeInsufficientFloatingPool, "not enough floating numbers to complete the games")
	ErrInsufficientUniverse     = NewError(ErrCodeInsufficientUniverse, "universe is smaller than the requested game size")
	ErrGuaranteeUnreachable     = NewError(ErrCodeGuaranteeUnreachable, "guarantee exceeds what the floating numbers can cover")
	ErrEmptyHistory             = NewError(ErrCodeEmptyHistory, "draw history is empty")
	ErrClosureUnachievable      = NewError(ErrCodeClosureUnachievable, "could not build any game for the current cycle with the given filters")
	ErrInvalidGuarantee         = NewError(ErrCodeInvalidGuarantee, "invalid guarantee level: must be between 11 and 14")
	ErrInvalidCount             = NewError(ErrCodeInvalidCount, "invalid count: must be greater than 0")
	ErrInvalidNumber            = NewError(ErrCodeInvalidNumber, "invalid number: must be between 1 and 25")
	ErrNoGamesGenerated         = NewError(ErrCodeNoGamesGenerated, "no game satisfied the filters within the attempt limit")
	ErrClosureTooLarge          = NewError(ErrCodeClosureTooLarge, "closure instance exceeds the configured work budget")
	ErrUnknownStrategy          = NewError(ErrCodeUnknownStrategy, "unknown strategy mode")

	// Remote services
	ErrRateLimitExceeded  = NewRetryableError(ErrCodeRateLimitExceeded, "rate limit exceeded")
	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")
	ErrFetchFailed        = NewRetryableError(ErrCodeFetchFailed, "failed to fetch latest result")
	ErrInvalidResponse    = NewError(ErrCodeInvalidResponse, "invalid latest result response")

	// Store and import
	ErrBetNotFound           = NewError(ErrCodeBetNotFound, "bet not found")
	ErrStateSaveFailure      = NewRetryableError(ErrCodeStateSaveFailure, "failed to save state")
	ErrStateLoadFailure      = NewRetryableError(ErrCodeStateLoadFailure, "failed to load state")
	ErrSerializationFailed   = NewError(ErrCodeSerializationFailed, "serialization failed")
	ErrDeserializationFailed = NewError(ErrCodeDeserializationFailed, "deserialization failed")
	ErrImportFailed          = NewError(ErrCodeImportFailed, "failed to import draw history")
)

// ErrorHandler classifies errors for ErrorRecovery
type ErrorHandler interface {
	HandleError(ctx context.Context, err error) error
	ShouldRetry(err error) bool
	GetRetryDelay(attempt int, err error) time.Duration
}

// DefaultErrorHandler retries retryable errors with jittered exponential backoff
type DefaultErrorHandler struct {
	logger        Logger
	baseDelay     time.Duration
	maxDelay      time.Duration
	backoffFactor float64
}

// NewDefaultErrorHandler creates a handler with DefaultRetryInterval as base delay
func NewDefaultErrorHandler(logger Logger) *DefaultErrorHandler {
	return &DefaultErrorHandler{
		logger:        logger,
		baseDelay:     DefaultRetryInterval,
		maxDelay:      5 * time.Second,
		backoffFactor: 2.0,
	}
}

// NewErrorHandlerWithDelay creates a handler with a custom base and max delay
func NewErrorHandlerWithDelay(logger Logger, baseDelay, maxDelay time.Duration) *DefaultErrorHandler {
	h := NewDefaultErrorHandler(logger)
	h.baseDelay = baseDelay
	h.maxDelay = maxDelay
	return h
}

// HandleError logs err and wraps plain errors into a LotofacilError
func (h *DefaultErrorHandler) HandleError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var lfErr *LotofacilError
	if !errors.As(err, &lfErr) {
		lfErr = NewError(ErrCodeSystem, "unexpected error").WithCause(err)
		if IsRetryableError(err) {
			lfErr.Retryable = true
		}
	}

	h.logError(lfErr)
	return lfErr
}

// ShouldRetry reports whether err is worth another attempt
func (h *DefaultErrorHandler) ShouldRetry(err error) bool {
	var lfErr *LotofacilError
	if errors.As(err, &lfErr) {
		return lfErr.Retryable
	}
	return IsRetryableError(err)
}

// GetRetryDelay returns the backoff before the given attempt
func (h *DefaultErrorHandler) GetRetryDelay(attempt int, err error) time.Duration {
	if attempt <= 0 {
		return h.baseDelay
	}

	// exponential backoff
	delay := time.Duration(float64(h.baseDelay) * math.Pow(h.backoffFactor, float64(attempt-1)))

	// ±25% jitter
	jitter := time.Duration(float64(delay) * 0.25 * (2*rand.Float64() - 1))
	delay += jitter

	if delay > h.maxDelay {
		delay = h.maxDelay
	}
	return delay
}

func (h *DefaultErrorHandler) logError(err *LotofacilError) {
	if h.logger == nil {
		return
	}
	switch err.Severity {
	case SeverityCritical:
		h.logger.Error("Critical error occurred: %s", err.Error())
	case SeverityHigh, SeverityMedium:
		h.logger.Error("Error occurred (severity=%s, retryable=%t): %s", err.Severity, err.Retryable, err.Error())
	default:
		h.logger.Info("Low severity error: %s", err.Error())
	}
}

// IsRetryableError reports whether err is retryable, by flag for coded errors and by
// message for plain ones
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var lfErr *LotofacilError
	if errors.As(err, &lfErr) {
		return lfErr.Retryable
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
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
		"eof",
		"redis: connection pool timeout",
		"redis: client is closed",
		"context deadline exceeded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// ErrorRecovery runs an operation with retries driven by an ErrorHandler
type ErrorRecovery struct {
	handler    ErrorHandler
	maxRetries int
	logger     Logger
}

// NewErrorRecovery creates a recovery allowing maxRetries retries after the first try
func NewErrorRecovery(handler ErrorHandler, maxRetries int, logger Logger) *ErrorRecovery {
	return &ErrorRecovery{
		handler:    handler,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ExecuteWithRetry runs operation until it succeeds, returns a non-retryable error,
// runs out of attempts or ctx is done.
func (r *ErrorRecovery) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ErrSystemError.WithDetails("operation cancelled").WithCause(ctx.Err())
		default:
		}

		err := operation()
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Operation succeeded after %d retries", attempt)
			}
			return nil
		}

		lastErr = r.handler.HandleError(ctx, err)

		if !r.handler.ShouldRetry(lastErr) {
			r.logger.Debug("Error is not retryable: %v", lastErr)
			return lastErr
		}

		if attempt < r.maxRetries {
			delay := r.handler.GetRetryDelay(attempt+1, lastErr)
			r.logger.Debug("Retrying operation in %v (attempt %d/%d)", delay, attempt+1, r.maxRetries)

			select {
			case <-ctx.Done():
				return ErrSystemError.WithDetails("operation cancelled during retry").WithCause(ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return ErrSystemError.WithDetailsf("operation failed after %d attempts", r.maxRetries+1).WithCause(lastErr)
}
