package plan

import (
	"errors"
	"math/rand"

	"github.com/rs/zerolog"

	"fieldroute/internal/model"
	"fieldroute/internal/solver"
)

// RunResult is one full sequential pass over an instance's horizon.
type RunResult struct {
	Skill     string
	Tours     map[string][]WorkerTour
	Summaries map[string]Summary
	Dropped   []DroppedOrder
	Objective int64
	Err       error
}

// RunSequential solves one instance day by day: draw a strategy pair, build
// the solver input, search, reconstruct. A failed day is logged and skipped;
// the horizon continues. After the last day every still-unscheduled order is
// diagnosed.
func RunSequential(inst *model.Instance, profile solver.SolveProfile, history *solver.History, log zerolog.Logger) *RunResult {
	res := &RunResult{
		Skill:     inst.Skill,
		Tours:     map[string][]WorkerTour{},
		Summaries: map[string]Summary{},
	}
	if history == nil {
		history = solver.NewHistory()
	}
	var rng *rand.Rand
	if !profile.Deterministic {
		seed := profile.Seed
		if seed == 0 {
			seed = int64(len(inst.AllOrders)) + 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	days := int(inst.PeriodEnd.Sub(inst.PeriodStart).Hours()/24) + 1
	for d := 0; d < days; d++ {
		date := inst.PeriodStart.AddDate(0, 0, d)
		dayLog := log.With().Str("skill", inst.Skill).Str("date", model.DayKey(date)).Logger()

		if err := inst.InitDay(date); err != nil {
			dayLog.Error().Err(err).Msg("day initialization failed, skipping day")
			continue
		}
		if !inst.CanScheduleNewOrders() {
			dayLog.Debug().Msg("nothing to schedule")
			continue
		}

		pair := history.Next(profile.Tier, profile.Deterministic, rng)
		in := solver.BuildSolverInput(inst, profile.Options)
		dayLog.Info().
			Str("strategy", pair.String()).
			Int("orders", len(inst.WorkOrders())).
			Int("workers", len(inst.Workers())).
			Msg("solving day")

		assignment, err := solver.SolveDay(in, pair, profile, dayLog)
		if errors.Is(err, solver.ErrModelBuild) {
			dayLog.Error().Err(err).Msg("model build failed, aborting instance")
			res.Err = err
			break
		}
		if err != nil {
			dayLog.Warn().Err(err).Msg("day solve failed, skipping day")
			continue
		}

		sol := Reconstruct(inst, assignment)
		res.Tours[sol.Date] = snapshotTours(sol)
		res.Summaries[sol.Date] = sol.summary()
		res.Objective += sol.Objective
		dayLog.Debug().Msg(sol.Visualize())
	}

	res.Dropped = droppedDTOs(DiagnoseDropped(inst))
	return res
}
