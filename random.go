package lotofacil

import (
	"crypto/rand"
	"math/big"
	rnd "math/rand/v2"
	"sync"
)

// DefaultSecureSourceCacheSize is the number of floats pre-generated by SecureRandomSource
const DefaultSecureSourceCacheSize = 256

// RandomSource is the only source of randomness used by the strategies.
// Float64 returns a value in [0, 1).
type RandomSource interface {
	Float64() float64
}

// SecureRandomSource implements RandomSource using crypto/rand with caching
type SecureRandomSource struct {
	cache      []float64
	cacheSize  int
	cacheIndex int
	cacheMtx   sync.Mutex
}

// NewSecureRandomSource creates a crypto backed source with the given cache size.
//
// If no cache size is provided, DefaultSecureSourceCacheSize is used.
func NewSecureRandomSource(cacheSize ...int) *SecureRandomSource {
	size := DefaultSecureSourceCacheSize
	if len(cacheSize) > 0 && cacheSize[0] > 0 {
		size = cacheSize[0]
	}

	s := &SecureRandomSource{
		cache:     make([]float64, size),
		cacheSize: size,
	}
	s.refillCache()
	return s
}

func (s *SecureRandomSource) refillCache() {
	for i := range s.cacheSize {
		val, err := secureFloat()
		if err != nil {
			// crypto/rand failures are not recoverable here; fall back to the PCG stream
			val = rnd.Float64()
		}
		s.cache[i] = val
	}
	s.cacheIndex = 0
}

// Float64 returns a secure random float in [0, 1)
func (s *SecureRandomSource) Float64() float64 {
	s.cacheMtx.Lock()
	defer s.cacheMtx.Unlock()

	if s.cacheIndex >= s.cacheSize {
		s.refillCache()
	}

	result := s.cache[s.cacheIndex]
	s.cacheIndex++
	return result
}

func secureFloat() (float64, error) {
	randomBig, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		return 0, err
	}
	return float64(randomBig.Int64()) / float64(1<<53), nil
}

// SeededSource is a reproducible RandomSource backed by a PCG generator. It is safe
// for concurrent use; the sequence is reproducible only when one goroutine draws.
type SeededSource struct {
	mu sync.Mutex
	r  *rnd.Rand
}

// NewSeededSource creates a deterministic source for the given seed
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: rnd.New(rnd.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next float in [0, 1)
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// intn returns an int in [0, n) drawn from src.
func intn(src RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// shuffleNumbers returns a Fisher-Yates shuffled copy of numbers.
func shuffleNumbers(src RandomSource, numbers []Number) []Number {
	out := make([]Number, len(numbers))
	copy(out, numbers)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(src, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
