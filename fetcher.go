package lotofacil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds how much of the API response is read
const maxResponseSize = 1 << 20

// Prize is one prize band of an official result
type Prize struct {
	Description string  `json:"description"`
	Tier        int     `json:"tier"`
	Winners     int     `json:"winners"`
	Amount      float64 `json:"amount"`
}

// LatestResult is the most recent official draw as published by the results API
type LatestResult struct {
	Contest          int      `json:"contest"`
	Date             string   `json:"date"`
	Numbers          []Number `json:"numbers"`
	Prizes           []Prize  `json:"prizes,omitempty"`
	Accumulated      bool     `json:"accumulated"`
	NextContest      int      `json:"next_contest,omitempty"`
	NextContestDate  string   `json:"next_contest_date,omitempty"`
	NextEstimatedPot float64  `json:"next_estimated_pot,omitempty"`
}

// Description returns the "Contest N - date" label shown next to the result
func (r *LatestResult) Description() string {
	return fmt.Sprintf("Contest %d - %s", r.Contest, r.Date)
}

// Draw converts the result into a history record
func (r *LatestResult) Draw() Draw {
	return Draw{Contest: r.Contest, Date: r.Date, Numbers: append([]Number(nil), r.Numbers...)}
}

// LatestResultFetcher downloads the latest official result. Calls are rate limited,
// guarded by a circuit breaker and retried on transient failures.
type LatestResultFetcher struct {
	client   *http.Client
	url      string
	limiter  *rate.Limiter
	breaker  *CircuitBreaker
	recovery *ErrorRecovery
	logger   Logger
	monitor  *StrategyMonitor
}

// NewLatestResultFetcher creates a fetcher; nil configs fall back to the defaults
func NewLatestResultFetcher(config *FetcherConfig, breakerConfig *CircuitBreakerConfig, logger Logger) *LatestResultFetcher {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &LatestResultFetcher{
		client:   &http.Client{Timeout: config.Timeout},
		url:      config.URL,
		limiter:  rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Burst),
		breaker:  NewCircuitBreaker(breakerConfig, logger),
		recovery: NewErrorRecovery(NewDefaultErrorHandler(logger), config.MaxRetries, logger),
		logger:   logger,
	}
}

// SetHTTPClient replaces the HTTP client
func (f *LatestResultFetcher) SetHTTPClient(client *http.Client) { f.client = client }

// SetMonitor makes the fetcher report failures to monitor
func (f *LatestResultFetcher) SetMonitor(monitor *StrategyMonitor) { f.monitor = monitor }

// SetRetryDelay changes the retry backoff bounds
func (f *LatestResultFetcher) SetRetryDelay(base, maxDelay time.Duration) {
	f.recovery.handler = NewErrorHandlerWithDelay(f.logger, base, maxDelay)
}

// Breaker exposes the circuit breaker for health checks
func (f *LatestResultFetcher) Breaker() *CircuitBreaker { return f.breaker }

// FetchLatest returns the latest result. The response must carry exactly 15 valid
// numbers.
func (f *LatestResultFetcher) FetchLatest(ctx context.Context) (*LatestResult, error) {
	var result *LatestResult
	err := f.recovery.ExecuteWithRetry(ctx, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return ErrRateLimitExceeded.WithCause(err)
		}
		res, err := f.breaker.Execute(func() (any, error) {
			return f.fetchOnce(ctx)
		})
		if err != nil {
			return err
		}
		result = res.(*LatestResult)
		return nil
	})
	if err != nil {
		if f.monitor != nil {
			f.monitor.RecordFetchError()
		}
		f.logger.Error("Failed to fetch latest result from %s: %v", f.url, err)
		return nil, err
	}

	f.logger.Info("Fetched latest result: contest %d", result.Contest)
	return result, nil
}

func (f *LatestResultFetcher) fetchOnce(ctx context.Context) (*LatestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, ErrInvalidParameters.WithDetails("invalid fetcher url").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ErrFetchFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fetchErr := ErrFetchFailed.WithDetailsf("HTTP %d", resp.StatusCode)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, ErrRateLimitExceeded.WithDetailsf("HTTP %d", resp.StatusCode)
		case resp.StatusCode < http.StatusInternalServerError:
			fetchErr.Retryable = false
		}
		return nil, fetchErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, ErrFetchFailed.WithCause(err)
	}
	return parseLatestResult(body)
}

// parseLatestResult reads the results API payload. Numbers may be encoded as
// strings ("01") or integers; values off the slip are dropped before counting.
func parseLatestResult(body []byte) (*LatestResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidResponse.WithDetails("response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)

	dezenas := doc.Get("dezenas")
	if !dezenas.IsArray() {
		return nil, ErrInvalidResponse.WithDetails("numbers not found")
	}

	var seen numberSet
	dezenas.ForEach(func(_, v gjson.Result) bool {
		seen = seen.add(Number(v.Int()))
		return true
	})
	numbers := seen.numbers()
	if len(numbers) != DrawSize {
		return nil, ErrInvalidResponse.WithDetailsf("expected %d numbers, got %d", DrawSize, len(numbers))
	}

	result := &LatestResult{
		Contest:          int(doc.Get("concurso").Int()),
		Date:             doc.Get("data").String(),
		Numbers:          numbers,
		Accumulated:      doc.Get("acumulou").Bool(),
		NextContest:      int(doc.Get("proximoConcurso").Int()),
		NextContestDate:  doc.Get("dataProximoConcurso").String(),
		NextEstimatedPot: doc.Get("valorEstimadoProximoConcurso").Float(),
	}
	doc.Get("premiacoes").ForEach(func(_, p gjson.Result) bool {
		result.Prizes = append(result.Prizes, Prize{
			Description: p.Get("descricao").String(),
			Tier:        int(p.Get("faixa").Int()),
			Winners:     int(p.Get("ganhadores").Int()),
			Amount:      p.Get("valorPremio").Float(),
		})
		return true
	})
	return result, nil
}
