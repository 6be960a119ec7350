package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRand возвращает заранее заданные значения, затем fallback
type scriptedRand struct {
	values   []float64
	fallback float64
	draws    int
}

func (s *scriptedRand) Float64() float64 {
	s.draws++
	if len(s.values) == 0 {
		return s.fallback
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func script(fallback float64, values ...float64) *scriptedRand {
	return &scriptedRand{values: values, fallback: fallback}
}

// lcgRand - 64-битный LCG (константы PCG/Knuth MMIX). Последовательность
// не зависит от версии Go, поэтому годится для записанных значений.
type lcgRand struct {
	state uint64
	draws int
}

func (l *lcgRand) Float64() float64 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	l.draws++
	return float64(l.state>>11) / (1 << 53)
}

func newTestGenerator(t *testing.T, rng RandomSource) *Generator {
	t.Helper()
	g, err := NewGenerator(DefaultGeneratorConfig(), rng, nil, 1)
	require.NoError(t, err)
	return g
}

func newTestWorld(t *testing.T, seed int64) *World {
	t.Helper()
	w, err := New(DefaultGeneratorConfig(), rand.New(rand.NewSource(seed)), seed)
	require.NoError(t, err)
	require.NoError(t, w.Initialize(800, false))
	return w
}
