package engine

import (
	"fmt"
	"sync/atomic"
)

// TransitCallback evaluates the cost or transit of traversing an arc between
// two internal indices.
type TransitCallback func(from, to int64) int64

// UnaryCallback evaluates a per-index quantity, such as a demand.
type UnaryCallback func(index int64) int64

// IntervalVar is a fixed-duration interval used for vehicle breaks. The
// search chooses a start in [StartMin, StartMax]; optional intervals may be
// left unperformed when no conflict-free start exists.
type IntervalVar struct {
	StartMin int64
	StartMax int64
	Duration int64
	Optional bool
	Name     string
}

type disjunction struct {
	indices []int64
	penalty int64
}

type softUpperBound struct {
	bound       int64
	coefficient int64
}

// Dimension accumulates a quantity along routes: capacity totals for unary
// transits, cumulative time with slack for arc transits. Cumul bounds, soft
// upper bounds, a global span cost and per-vehicle break intervals all hang
// off a dimension.
type Dimension struct {
	name               string
	model              *Model
	transit            TransitCallback
	unary              UnaryCallback
	slackMax           int64
	capacities         []int64
	startCumulToZero   bool
	cumulRanges        map[int64][2]int64
	slackRanges        map[int64][2]int64
	softUpperBounds    map[int64]softUpperBound
	globalSpanCoeff    int64
	breaks             [][]*IntervalVar
	breakTransitsByVeh [][]int64
}

// SetCumulVarRange bounds the accumulated value at the given internal index.
func (d *Dimension) SetCumulVarRange(index, min, max int64) {
	d.cumulRanges[index] = [2]int64{min, max}
}

// SetSlackVarRange bounds the slack (waiting) allowed at the given index.
func (d *Dimension) SetSlackVarRange(index, min, max int64) {
	d.slackRanges[index] = [2]int64{min, max}
}

// SetCumulVarSoftUpperBound penalizes the accumulated value beyond bound by
// coefficient per unit.
func (d *Dimension) SetCumulVarSoftUpperBound(index, bound, coefficient int64) {
	d.softUpperBounds[index] = softUpperBound{bound: bound, coefficient: coefficient}
}

// SetGlobalSpanCostCoefficient adds coefficient * (max end cumul - min start
// cumul) to the objective.
func (d *Dimension) SetGlobalSpanCostCoefficient(c int64) { d.globalSpanCoeff = c }

// SetBreakIntervalsOfVehicle installs the vehicle's break intervals. A
// mandatory interval blocks [start, start+duration); service overlapping it
// is pushed past its end. Optional intervals are dropped on conflict.
func (d *Dimension) SetBreakIntervalsOfVehicle(intervals []*IntervalVar, vehicle int, transits []int64) {
	d.breaks[vehicle] = intervals
	d.breakTransitsByVeh[vehicle] = transits
}

// CumulRange returns the bounds installed at index, defaulting to the full
// non-negative range.
func (d *Dimension) CumulRange(index int64) (int64, int64) {
	if r, ok := d.cumulRanges[index]; ok {
		return r[0], r[1]
	}
	return 0, int64(1) << 40
}

// Name returns the dimension's registration name.
func (d *Dimension) Name() string { return d.name }

// Model is a declarative routing problem over an IndexManager.
type Model struct {
	manager *IndexManager

	transits []TransitCallback
	unaries  []UnaryCallback

	arcCostEvaluators []int // per vehicle, -1 when unset
	fixedVehicleCosts []int64

	dimensions   map[string]*Dimension
	dimOrder     []string
	disjunctions []disjunction
	// disjunctionOf maps an internal index to its disjunction, -1 when the
	// visit is mandatory.
	disjunctionOf []int

	allowedVehicles map[int64][]int
	precedences     [][2]int64

	atSolution []func(objective int64)

	finish atomic.Bool
	closed bool
}

// NewModel builds an empty model over the given manager.
func NewModel(manager *IndexManager) *Model {
	m := &Model{
		manager:           manager,
		arcCostEvaluators: make([]int, manager.NumVehicles()),
		fixedVehicleCosts: make([]int64, manager.NumVehicles()),
		dimensions:        map[string]*Dimension{},
		allowedVehicles:   map[int64][]int{},
		disjunctionOf:     make([]int, manager.Size()),
	}
	for i := range m.arcCostEvaluators {
		m.arcCostEvaluators[i] = -1
	}
	for i := range m.disjunctionOf {
		m.disjunctionOf[i] = -1
	}
	return m
}

// Manager returns the model's index manager.
func (m *Model) Manager() *IndexManager { return m.manager }

// RegisterTransitCallback registers an arc evaluator and returns its handle.
func (m *Model) RegisterTransitCallback(cb TransitCallback) int {
	m.transits = append(m.transits, cb)
	return len(m.transits) - 1
}

// RegisterUnaryTransitCallback registers a per-index evaluator and returns
// its handle.
func (m *Model) RegisterUnaryTransitCallback(cb UnaryCallback) int {
	m.unaries = append(m.unaries, cb)
	return len(m.unaries) - 1
}

// SetArcCostEvaluatorOfAllVehicles makes the given transit callback the arc
// cost for every vehicle.
func (m *Model) SetArcCostEvaluatorOfAllVehicles(callback int) {
	for v := range m.arcCostEvaluators {
		m.arcCostEvaluators[v] = callback
	}
}

// SetArcCostEvaluatorOfVehicle sets the arc cost callback for one vehicle.
func (m *Model) SetArcCostEvaluatorOfVehicle(callback, vehicle int) {
	m.arcCostEvaluators[vehicle] = callback
}

// SetFixedCostOfVehicle charges cost whenever the vehicle serves at least one
// node.
func (m *Model) SetFixedCostOfVehicle(cost int64, vehicle int) {
	m.fixedVehicleCosts[vehicle] = cost
}

// AddDimension accumulates an arc transit callback along routes with up to
// slackMax slack per stop and the same capacity for every vehicle.
func (m *Model) AddDimension(callback int, slackMax, capacity int64, startCumulToZero bool, name string) error {
	caps := make([]int64, m.manager.NumVehicles())
	for i := range caps {
		caps[i] = capacity
	}
	return m.addDimension(name, m.transits[callback], nil, slackMax, caps, startCumulToZero)
}

// AddDimensionWithVehicleCapacity accumulates a unary demand callback with a
// per-vehicle capacity and no slack.
func (m *Model) AddDimensionWithVehicleCapacity(callback int, slackMax int64, capacities []int64, startCumulToZero bool, name string) error {
	return m.addDimension(name, nil, m.unaries[callback], slackMax, capacities, startCumulToZero)
}

func (m *Model) addDimension(name string, transit TransitCallback, unary UnaryCallback, slackMax int64, capacities []int64, startCumulToZero bool) error {
	if _, ok := m.dimensions[name]; ok {
		return fmt.Errorf("dimension %q already exists", name)
	}
	d := &Dimension{
		name:               name,
		model:              m,
		transit:            transit,
		unary:              unary,
		slackMax:           slackMax,
		capacities:         capacities,
		startCumulToZero:   startCumulToZero,
		cumulRanges:        map[int64][2]int64{},
		slackRanges:        map[int64][2]int64{},
		softUpperBounds:    map[int64]softUpperBound{},
		breaks:             make([][]*IntervalVar, m.manager.NumVehicles()),
		breakTransitsByVeh: make([][]int64, m.manager.NumVehicles()),
	}
	m.dimensions[name] = d
	m.dimOrder = append(m.dimOrder, name)
	return nil
}

// GetDimension returns the named dimension.
func (m *Model) GetDimension(name string) (*Dimension, bool) {
	d, ok := m.dimensions[name]
	return d, ok
}

// AddDisjunction makes the given indices optional as a group: when none is
// served, penalty is added to the objective. At most one index of the group
// is served.
func (m *Model) AddDisjunction(indices []int64, penalty int64) {
	m.disjunctions = append(m.disjunctions, disjunction{indices: indices, penalty: penalty})
	for _, idx := range indices {
		m.disjunctionOf[idx] = len(m.disjunctions) - 1
	}
}

// SetAllowedVehiclesForIndex restricts which vehicles may serve an index.
func (m *Model) SetAllowedVehiclesForIndex(vehicles []int, index int64) {
	m.allowedVehicles[index] = append([]int(nil), vehicles...)
}

// VehicleAllowed reports whether the vehicle may serve the index.
func (m *Model) VehicleAllowed(index int64, vehicle int) bool {
	allowed, ok := m.allowedVehicles[index]
	if !ok {
		return true
	}
	for _, v := range allowed {
		if v == vehicle {
			return true
		}
	}
	return false
}

// IsOptional reports whether the index belongs to a disjunction.
func (m *Model) IsOptional(index int64) bool { return m.disjunctionOf[index] >= 0 }

// DropPenalty returns the disjunction penalty for an index, or 0 for
// mandatory visits.
func (m *Model) DropPenalty(index int64) int64 {
	if d := m.disjunctionOf[index]; d >= 0 {
		return m.disjunctions[d].penalty
	}
	return 0
}

// FixedDurationIntervalVar builds a break interval for use with
// SetBreakIntervalsOfVehicle.
func (m *Model) FixedDurationIntervalVar(startMin, startMax, duration int64, optional bool, name string) *IntervalVar {
	return &IntervalVar{StartMin: startMin, StartMax: startMax, Duration: duration, Optional: optional, Name: name}
}

// AddPrecedence requires that index a is served before index b, on the same
// vehicle, whenever both are served.
func (m *Model) AddPrecedence(a, b int64) {
	m.precedences = append(m.precedences, [2]int64{a, b})
}

// AddAtSolutionCallback registers a hook invoked with the objective value
// every time the search accepts an improving solution.
func (m *Model) AddAtSolutionCallback(cb func(objective int64)) {
	m.atSolution = append(m.atSolution, cb)
}

// FinishSearch asks a running solve to stop at the next iteration boundary.
func (m *Model) FinishSearch() { m.finish.Store(true) }

// CloseModel freezes the declaration phase.
func (m *Model) CloseModel() { m.closed = true }

func (m *Model) arcCost(from, to int64, vehicle int) int64 {
	cb := m.arcCostEvaluators[vehicle]
	if cb < 0 {
		return 0
	}
	return m.transits[cb](from, to)
}
