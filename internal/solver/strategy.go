package solver

import (
	"math/rand"
	"sort"

	"fieldroute/internal/engine"
)

// Quality tiers a request may ask for.
const (
	TierFast      = "fast"
	TierOptimized = "optimized"
	TierBest      = "best"
)

// StrategyPair couples a first-solution heuristic with a local-search
// metaheuristic, both addressed by engine name.
type StrategyPair struct {
	First string
	Meta  string
}

func (p StrategyPair) String() string { return p.First + "/" + p.Meta }

func cross(firsts, metas []string) []StrategyPair {
	var out []StrategyPair
	for _, f := range firsts {
		for _, m := range metas {
			out = append(out, StrategyPair{First: f, Meta: m})
		}
	}
	return out
}

// tierPairs returns the combination pool of a quality tier, sorted so the
// deterministic draw is stable. "best" reuses the optimized pool; unknown
// tiers fall back to the single default pair.
func tierPairs(tier string) []StrategyPair {
	var pairs []StrategyPair
	switch tier {
	case TierFast:
		pairs = cross(
			[]string{engine.StrategyUnset, engine.StrategyParallelCheapestInsertion},
			[]string{engine.MetaGuidedLocalSearch, engine.MetaUnset, engine.MetaGreedyDescent},
		)
	case TierOptimized, TierBest:
		pairs = cross(
			[]string{engine.StrategyLocalCheapestArc, engine.StrategyBestInsertion, engine.StrategyGlobalCheapestArc},
			[]string{engine.MetaSimulatedAnnealing, engine.MetaGenericTabuSearch},
		)
	default:
		pairs = []StrategyPair{{First: engine.StrategyPathCheapestArc, Meta: engine.MetaGreedyDescent}}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Meta < pairs[j].Meta
	})
	return pairs
}

// History tracks which strategy pairs a run has already tried, per tier, so
// consecutive days explore different combinations. Once a tier's pool is
// exhausted the history resets and pairs may repeat.
type History struct {
	used map[string]map[StrategyPair]bool
}

func NewHistory() *History {
	return &History{used: map[string]map[StrategyPair]bool{}}
}

// Clone copies the history so deep-copied instances sample independently.
func (h *History) Clone() *History {
	out := NewHistory()
	for tier, set := range h.used {
		out.used[tier] = make(map[StrategyPair]bool, len(set))
		for p := range set {
			out.used[tier][p] = true
		}
	}
	return out
}

// Reset clears one tier's draw history.
func (h *History) Reset(tier string) { delete(h.used, tier) }

// Next draws an untried pair from the tier's pool: the sorted-first unseen
// pair when deterministic, otherwise a uniform pick through rng.
func (h *History) Next(tier string, deterministic bool, rng *rand.Rand) StrategyPair {
	pairs := tierPairs(tier)
	set := h.used[tier]
	if set == nil {
		set = map[StrategyPair]bool{}
		h.used[tier] = set
	}

	unseen := pairs[:0:0]
	for _, p := range pairs {
		if !set[p] {
			unseen = append(unseen, p)
		}
	}
	if len(unseen) == 0 {
		h.Reset(tier)
		set = map[StrategyPair]bool{}
		h.used[tier] = set
		unseen = pairs
	}

	var pick StrategyPair
	if deterministic || rng == nil {
		pick = unseen[0]
	} else {
		pick = unseen[rng.Intn(len(unseen))]
	}
	set[pick] = true
	return pick
}
