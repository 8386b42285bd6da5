package lotofacil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource replays values in a loop
type fixedSource struct {
	values []float64
	i      int
}

func (s *fixedSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func TestSecureRandomSource(t *testing.T) {
	src := NewSecureRandomSource(100)

	t.Run("浮点生成正确性", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := src.Float64()
			require.GreaterOrEqual(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	})

	t.Run("缓存重填充", func(t *testing.T) {
		small := NewSecureRandomSource(4)
		seen := map[float64]bool{}
		for i := 0; i < 12; i++ {
			seen[small.Float64()] = true
		}
		assert.Greater(t, len(seen), 4)
	})

	t.Run("default_cache_size", func(t *testing.T) {
		assert.Len(t, NewSecureRandomSource().cache, DefaultSecureSourceCacheSize)
		assert.Len(t, NewSecureRandomSource(0).cache, DefaultSecureSourceCacheSize)
	})

	t.Run("concurrent_use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					v := src.Float64()
					assert.True(t, v >= 0 && v < 1)
				}
			}()
		}
		wg.Wait()
	})
}

func TestSeededSource(t *testing.T) {
	a := NewSeededSource(99)
	b := NewSeededSource(99)
	c := NewSeededSource(100)

	same, different := true, false
	for i := 0; i < 20; i++ {
		va, vb, vc := a.Float64(), b.Float64(), c.Float64()
		same = same && va == vb
		different = different || va != vc
	}
	assert.True(t, same)
	assert.True(t, different)

	t.Run("concurrent_draws_share_one_sequence", func(t *testing.T) {
		shared := NewSeededSource(5)
		reference := NewSeededSource(5)

		var mu sync.Mutex
		var drawn []float64
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				local := make([]float64, 0, 250)
				for j := 0; j < 250; j++ {
					local = append(local, shared.Float64())
				}
				mu.Lock()
				drawn = append(drawn, local...)
				mu.Unlock()
			}()
		}
		wg.Wait()

		want := make([]float64, 1000)
		for i := range want {
			want[i] = reference.Float64()
		}
		assert.ElementsMatch(t, want, drawn)
	})
}

func TestIntn(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		n    int
		want int
	}{
		{name: "zero", v: 0, n: 10, want: 0},
		{name: "middle", v: 0.55, n: 10, want: 5},
		{name: "upper_edge", v: 0.9999999999999999, n: 10, want: 9},
		{name: "single", v: 0.7, n: 1, want: 0},
		{name: "empty", v: 0.7, n: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intn(&fixedSource{values: []float64{tt.v}}, tt.n))
		})
	}
}

func TestShuffleNumbers(t *testing.T) {
	t.Run("zero_source_rotates", func(t *testing.T) {
		// j is always 0: every element is swapped with the head in turn
		got := shuffleNumbers(&fixedSource{values: []float64{0}}, nums(1, 2, 3, 4))
		assert.Equal(t, nums(2, 3, 4, 1), got)
	})

	t.Run("keeps_input_and_elements", func(t *testing.T) {
		in := seq(1, 25)
		got := shuffleNumbers(NewSeededSource(5), in)

		assert.Equal(t, seq(1, 25), in)
		assert.ElementsMatch(t, in, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, shuffleNumbers(NewSeededSource(1), nil))
	})
}
