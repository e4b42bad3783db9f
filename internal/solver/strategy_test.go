package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldroute/internal/engine"
)

func TestDefaultTierSinglePair(t *testing.T) {
	h := NewHistory()
	p := h.Next("", true, nil)
	assert.Equal(t, engine.StrategyPathCheapestArc, p.First)
	assert.Equal(t, engine.MetaGreedyDescent, p.Meta)

	// the single-pair pool resets and keeps serving
	for i := 0; i < 5; i++ {
		assert.Equal(t, p, h.Next("", true, nil))
	}
}

func TestDeterministicDrawIsSortedFirstUnseen(t *testing.T) {
	h := NewHistory()
	first := h.Next(TierFast, true, nil)
	second := h.Next(TierFast, true, nil)
	assert.NotEqual(t, first, second)

	pool := tierPairs(TierFast)
	assert.Equal(t, pool[0], first)
	assert.Equal(t, pool[1], second)
}

func TestTierExhaustionResets(t *testing.T) {
	h := NewHistory()
	pool := tierPairs(TierOptimized)
	seen := map[StrategyPair]bool{}
	for range pool {
		p := h.Next(TierOptimized, true, nil)
		assert.False(t, seen[p], "pairs must not repeat before exhaustion")
		seen[p] = true
	}
	require.Len(t, seen, len(pool))

	// the next draw must succeed again from a reset pool
	p := h.Next(TierOptimized, true, nil)
	assert.True(t, seen[p])
}

func TestBestTierUsesOptimizedPool(t *testing.T) {
	assert.Equal(t, tierPairs(TierOptimized), tierPairs(TierBest))
}

func TestRandomDrawReproducibleWithSeed(t *testing.T) {
	draw := func() []StrategyPair {
		h := NewHistory()
		rng := rand.New(rand.NewSource(11))
		var out []StrategyPair
		for i := 0; i < 6; i++ {
			out = append(out, h.Next(TierFast, false, rng))
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	h := NewHistory()
	h.Next(TierFast, true, nil)
	clone := h.Clone()
	clone.Next(TierFast, true, nil)

	pool := tierPairs(TierFast)
	assert.Equal(t, pool[1], h.Next(TierFast, true, nil),
		"draws on the clone must not advance the original")
}

func TestProfileRuns(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, 1, p.Runs())

	p.Tier = TierBest
	assert.Equal(t, NumRunsForBest, p.Runs())

	p.NumRuns = 8
	assert.Equal(t, 8, p.Runs())

	assert.Equal(t, 3, p.Workers(3))
	assert.Equal(t, DefaultMaxWorkers, p.Workers(100))
}
