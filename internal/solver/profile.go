package solver

import "time"

// Orchestration defaults.
const (
	DefaultTimeLimit  = 30 * time.Second
	NumRunsForBest    = 5
	DefaultMaxWorkers = 20
)

// SolveProfile tunes a full solve: quality tier, per-day search budget,
// stagnation limit, determinism and the parallel-run shape.
type SolveProfile struct {
	// Tier selects the strategy pool: "fast", "optimized", "best" or empty
	// for the single default pair.
	Tier string

	TimeLimit          time.Duration
	NoImprovementLimit int

	// Deterministic makes strategy draws and the search seed reproducible.
	Deterministic bool
	Seed          int64

	// NumRuns is how many independent runs each instance gets; MaxWorkers
	// bounds the pool running them.
	NumRuns    int
	MaxWorkers int

	Options Options
}

// DefaultProfile is a single deterministic-ish run with the default pair.
func DefaultProfile() SolveProfile {
	return SolveProfile{
		TimeLimit:          DefaultTimeLimit,
		NoImprovementLimit: DefaultNoImprovementLimit,
		NumRuns:            1,
		MaxWorkers:         DefaultMaxWorkers,
	}
}

// Runs resolves the effective run count: the "best" tier fans out to
// NumRunsForBest unless the caller already asked for more.
func (p SolveProfile) Runs() int {
	runs := p.NumRuns
	if runs < 1 {
		runs = 1
	}
	if p.Tier == TierBest && runs < NumRunsForBest {
		runs = NumRunsForBest
	}
	return runs
}

// Workers resolves the worker pool bound for the given job count.
func (p SolveProfile) Workers(jobs int) int {
	max := p.MaxWorkers
	if max <= 0 {
		max = DefaultMaxWorkers
	}
	if jobs < max {
		max = jobs
	}
	if max < 1 {
		max = 1
	}
	return max
}
