package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProblem is a single-depot problem with three visits on a line, so the
// cheapest tour is easy to reason about.
//
//	depot(0) -- a(1) -- b(2) -- c(3)
var testTravel = [][]int64{
	{0, 10, 20, 30},
	{10, 0, 10, 20},
	{20, 10, 0, 10},
	{30, 20, 10, 0},
}

func newTestModel(numVehicles int) (*Model, *IndexManager) {
	starts := make([]int, numVehicles)
	ends := make([]int, numVehicles)
	mgr := NewIndexManager(4, numVehicles, starts, ends)
	m := NewModel(mgr)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	m.SetArcCostEvaluatorOfAllVehicles(transit)
	return m, mgr
}

func solveQuick(m *Model, strategy string) *Assignment {
	return m.SolveWithParameters(SearchParameters{
		FirstSolutionStrategy: strategy,
		Metaheuristic:         MetaGreedyDescent,
		TimeLimit:             200 * time.Millisecond,
		Seed:                  1,
	})
}

func TestIndexManagerLayout(t *testing.T) {
	mgr := NewIndexManager(4, 2, []int{0, 0}, []int{0, 0})
	assert.Equal(t, 8, mgr.Size())
	assert.Equal(t, int64(4), mgr.Start(0))
	assert.Equal(t, int64(5), mgr.End(0))
	assert.Equal(t, int64(6), mgr.Start(1))
	assert.True(t, mgr.IsStart(mgr.Start(1)))
	assert.True(t, mgr.IsEnd(mgr.End(1)))
	assert.False(t, mgr.IsStart(2))
	assert.Equal(t, 0, mgr.IndexToNode(mgr.Start(1)))
	assert.Equal(t, 3, mgr.IndexToNode(3))
	assert.Equal(t, 1, mgr.VehicleOf(mgr.End(1)))
	assert.Equal(t, -1, mgr.VehicleOf(2))
}

func TestSolveServesAllMandatory(t *testing.T) {
	m, _ := newTestModel(1)
	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)

	route := a.Route(0)
	assert.ElementsMatch(t, []int64{1, 2, 3}, route)
	assert.Empty(t, a.Dropped())
	// the line tour 0->1->2->3->0 costs 60
	assert.Equal(t, int64(60), a.ObjectiveValue())
}

func TestDisjunctionDropsExpensiveVisit(t *testing.T) {
	m, _ := newTestModel(1)
	m.AddDisjunction([]int64{3}, 5)
	a := solveQuick(m, StrategyParallelCheapestInsertion)
	require.NotNil(t, a)

	assert.Equal(t, []int64{3}, a.Dropped())
	// serving 3 adds 20 over the 0->1->2->0 tour; dropping costs 5
	assert.Equal(t, int64(45), a.ObjectiveValue())
}

func TestDisjunctionKeepsCheapPenaltyVisit(t *testing.T) {
	m, _ := newTestModel(1)
	m.AddDisjunction([]int64{3}, 1_000_000)
	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)
	assert.Empty(t, a.Dropped())
}

func TestTimeDimensionWindows(t *testing.T) {
	m, mgr := newTestModel(1)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	require.NoError(t, m.AddDimension(transit, 1000, 1439, false, "Time"))
	dim, ok := m.GetDimension("Time")
	require.True(t, ok)

	// node 2 cannot be visited before minute 100
	dim.SetCumulVarRange(2, 100, 200)
	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)
	assert.GreaterOrEqual(t, a.Cumul("Time", 2), int64(100))
}

func TestTimeWindowInfeasibleWithoutSlack(t *testing.T) {
	m, mgr := newTestModel(1)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	require.NoError(t, m.AddDimension(transit, 0, 1439, false, "Time"))
	dim, _ := m.GetDimension("Time")
	// unreachable: node 1 is 10 minutes out but must be reached at 100+
	// with zero slack allowed
	dim.SetCumulVarRange(1, 100, 200)
	dim.SetCumulVarRange(int64(mgr.Start(0)), 0, 0)

	a := solveQuick(m, StrategyPathCheapestArc)
	assert.Nil(t, a)
}

func TestCapacityDimension(t *testing.T) {
	m, mgr := newTestModel(2)
	demand := m.RegisterUnaryTransitCallback(func(index int64) int64 {
		if mgr.IndexToNode(index) == 0 {
			return 0
		}
		return 1
	})
	require.NoError(t, m.AddDimensionWithVehicleCapacity(demand, 0, []int64{2, 2}, true, "Count"))

	a := solveQuick(m, StrategyParallelCheapestInsertion)
	require.NotNil(t, a)
	assert.LessOrEqual(t, len(a.Route(0)), 2)
	assert.LessOrEqual(t, len(a.Route(1)), 2)
	assert.Equal(t, 3, len(a.Route(0))+len(a.Route(1)))
}

func TestAllowedVehicles(t *testing.T) {
	m, _ := newTestModel(2)
	m.SetAllowedVehiclesForIndex([]int{1}, 2)
	a := solveQuick(m, StrategyGlobalCheapestArc)
	require.NotNil(t, a)
	assert.Contains(t, a.Route(1), int64(2))
}

func TestFixedVehicleCostPrefersFewerVehicles(t *testing.T) {
	m, _ := newTestModel(2)
	m.SetFixedCostOfVehicle(10_000, 0)
	m.SetFixedCostOfVehicle(10_000, 1)
	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)

	used := 0
	for v := 0; v < 2; v++ {
		if len(a.Route(v)) > 0 {
			used++
		}
	}
	assert.Equal(t, 1, used)
}

func TestMandatoryBreakPushesService(t *testing.T) {
	m, mgr := newTestModel(1)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	require.NoError(t, m.AddDimension(transit, 1000, 1439, false, "Time"))
	dim, _ := m.GetDimension("Time")

	services := make([]int64, mgr.Size())
	dim.SetBreakIntervalsOfVehicle([]*IntervalVar{
		m.FixedDurationIntervalVar(0, 0, 60, false, "pre-shift"),
	}, 0, services)

	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)
	first := a.Route(0)[0]
	assert.GreaterOrEqual(t, a.Cumul("Time", first), int64(60),
		"first visit waits for the shift to start")
}

func TestOptionalBreakDoesNotBlock(t *testing.T) {
	m, mgr := newTestModel(1)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	require.NoError(t, m.AddDimension(transit, 1000, 1439, false, "Time"))
	dim, _ := m.GetDimension("Time")

	services := make([]int64, mgr.Size())
	dim.SetBreakIntervalsOfVehicle([]*IntervalVar{
		m.FixedDurationIntervalVar(0, 0, 60, true, "optional-pre"),
	}, 0, services)

	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)
	first := a.Route(0)[0]
	assert.Less(t, a.Cumul("Time", first), int64(60))
}

func TestSoftUpperBoundCharges(t *testing.T) {
	m, mgr := newTestModel(1)
	transit := m.RegisterTransitCallback(func(from, to int64) int64 {
		return testTravel[mgr.IndexToNode(from)][mgr.IndexToNode(to)]
	})
	require.NoError(t, m.AddDimension(transit, 1000, 1439, false, "Time"))
	dim, _ := m.GetDimension("Time")
	// every visit is late against a bound of zero, so each accrues its
	// arrival time as penalty
	dim.SetCumulVarSoftUpperBound(3, 0, 1)

	a := solveQuick(m, StrategyPathCheapestArc)
	require.NotNil(t, a)
	assert.Greater(t, a.ObjectiveValue(), int64(60))
}

func TestFinishSearchStops(t *testing.T) {
	m, _ := newTestModel(1)
	m.AddAtSolutionCallback(func(int64) { m.FinishSearch() })
	done := make(chan *Assignment, 1)
	go func() {
		done <- m.SolveWithParameters(SearchParameters{
			FirstSolutionStrategy: StrategyPathCheapestArc,
			TimeLimit:             10 * time.Second,
			Seed:                  1,
		})
	}()
	select {
	case a := <-done:
		require.NotNil(t, a)
	case <-time.After(5 * time.Second):
		t.Fatal("solve did not stop after FinishSearch")
	}
}

func TestPrecedenceOrdersPair(t *testing.T) {
	m, _ := newTestModel(2)
	// 3 must run before 1 on the same vehicle, even though 1 is the
	// cheaper first stop
	m.AddPrecedence(3, 1)
	a := solveQuick(m, StrategyParallelCheapestInsertion)
	require.NotNil(t, a)

	for v := 0; v < 2; v++ {
		r := a.Route(v)
		p3, p1 := indexOf(r, 3), indexOf(r, 1)
		if p3 >= 0 || p1 >= 0 {
			require.GreaterOrEqual(t, p3, 0)
			require.GreaterOrEqual(t, p1, 0)
			assert.Less(t, p3, p1)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() int64 {
		m, _ := newTestModel(2)
		m.AddDisjunction([]int64{3}, 25)
		a := m.SolveWithParameters(SearchParameters{
			FirstSolutionStrategy: StrategyPathCheapestArc,
			Metaheuristic:         MetaGreedyDescent,
			TimeLimit:             100 * time.Millisecond,
			SolutionLimit:         50,
			Seed:                  7,
		})
		return a.ObjectiveValue()
	}
	assert.Equal(t, run(), run())
}
