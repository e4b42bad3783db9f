package solver

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldroute/internal/model"
	"fieldroute/internal/solver/input"
)

// one depot, one vehicle, one order, everything feasible
func minimalDayInput() *input.SolverInput {
	return &input.SolverInput{
		NumVehicles:      1,
		NumDepots:        1,
		Starts:           []int{0},
		Ends:             []int{0},
		Distances:        [][]float64{{0, 1000}, {1000, 0}},
		Times:            [][]int{{0, 10}, {10, 0}},
		ServiceDurations: []int{0, 30},
		TimeWindows:      [][2]int{{0, model.DayEndMinutes}, {0, model.DayEndMinutes}},
		VehicleWindows:   [][2]int{{480, 1020}},
		Breaks:           make([][]model.BreakWindow, 1),
		Penalties:        map[int]int64{1: 1_000_000},
		SlackMax:         1000,
		Tolerance:        15,
		Horizon:          model.DayEndMinutes,
		MaxWorkingTime:   600,
	}
}

func quickProfile() SolveProfile {
	p := DefaultProfile()
	p.TimeLimit = 50 * time.Millisecond
	return p
}

func TestSolveDaySchedulesMinimalInput(t *testing.T) {
	in := minimalDayInput()
	a, err := SolveDay(in, StrategyPair{}, quickProfile(), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, a.Route(0), 1)
	assert.Empty(t, a.Dropped())
}

func TestSolveDayClassifiesModelBuildFailure(t *testing.T) {
	in := minimalDayInput()
	in.TimeWindows = nil

	_, err := SolveDay(in, StrategyPair{}, quickProfile(), zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelBuild)
	assert.NotErrorIs(t, err, ErrNoSolution)
}

func TestSolveDayNoSolutionIsNotBuildFailure(t *testing.T) {
	in := minimalDayInput()
	// an inverted shift window is unsatisfiable but builds fine
	in.VehicleWindows = [][2]int{{1020, 480}}

	_, err := SolveDay(in, StrategyPair{}, quickProfile(), zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSolution)
	assert.NotErrorIs(t, err, ErrModelBuild)
}
