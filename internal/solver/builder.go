package solver

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fieldroute/internal/engine"
	"fieldroute/internal/solver/constraint"
	"fieldroute/internal/solver/input"
)

// ErrNoSolution is returned when the search exhausts its budget without a
// feasible assignment serving every mandatory node.
var ErrNoSolution = errors.New("no solution found")

// ErrModelBuild marks a failure constructing the model itself. Unlike a
// fruitless search it is not specific to one day: the same input shape will
// fail every day, so callers abort the instance instead of skipping the day.
var ErrModelBuild = errors.New("model build failed")

// BuildModel composes the full constraint set over a SolverInput.
func BuildModel(in *input.SolverInput, log zerolog.Logger) (*engine.Model, error) {
	manager := engine.NewIndexManager(in.NumNodes(), in.NumVehicles, in.Starts, in.Ends)
	m := engine.NewModel(manager)

	ctx := &constraint.Context{
		Model:        m,
		Manager:      manager,
		Input:        in,
		Log:          log,
		Dimensions:   map[string]*engine.Dimension{},
		CostCallback: -1,
	}
	for _, c := range constraint.Defaults() {
		if err := c.Apply(ctx); err != nil {
			return nil, fmt.Errorf("apply %s: %w", c.Name(), err)
		}
	}
	return m, nil
}

// SolveDay builds the model for one day's input and runs the search with
// the given strategy pair, monitored for stagnation.
func SolveDay(in *input.SolverInput, pair StrategyPair, profile SolveProfile, log zerolog.Logger) (*engine.Assignment, error) {
	m, err := BuildModel(in, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}

	monitor := NewNoImprovementMonitor(profile.NoImprovementLimit)
	m.AddAtSolutionCallback(func(objective int64) {
		if monitor.Observe(objective) {
			log.Debug().Int64("objective", objective).Msg("search stagnated, stopping early")
			m.FinishSearch()
		}
	})

	limit := profile.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	assignment := m.SolveWithParameters(engine.SearchParameters{
		FirstSolutionStrategy: pair.First,
		Metaheuristic:         pair.Meta,
		TimeLimit:             limit,
		Seed:                  profile.Seed,
	})
	if assignment == nil {
		return nil, ErrNoSolution
	}
	return assignment, nil
}
