package engine

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// First-solution strategy names.
const (
	StrategyUnset                     = "UNSET"
	StrategyAutomatic                 = "AUTOMATIC"
	StrategyPathCheapestArc           = "PATH_CHEAPEST_ARC"
	StrategyParallelCheapestInsertion = "PARALLEL_CHEAPEST_INSERTION"
	StrategyLocalCheapestArc          = "LOCAL_CHEAPEST_ARC"
	StrategyGlobalCheapestArc         = "GLOBAL_CHEAPEST_ARC"
	StrategyBestInsertion             = "BEST_INSERTION"
)

// Metaheuristic names.
const (
	MetaUnset              = "UNSET"
	MetaAutomatic          = "AUTOMATIC"
	MetaGreedyDescent      = "GREEDY_DESCENT"
	MetaGuidedLocalSearch  = "GUIDED_LOCAL_SEARCH"
	MetaSimulatedAnnealing = "SIMULATED_ANNEALING"
	MetaGenericTabuSearch  = "GENERIC_TABU_SEARCH"
	MetaTabuSearch         = "TABU_SEARCH"
)

// SearchParameters tunes a single solve.
type SearchParameters struct {
	FirstSolutionStrategy string
	Metaheuristic         string
	TimeLimit             time.Duration
	SolutionLimit         int
	Seed                  int64
}

// DefaultSearchParameters matches the solver defaults: a cheapest-arc first
// solution improved by plain descent for up to thirty seconds.
func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		FirstSolutionStrategy: StrategyPathCheapestArc,
		Metaheuristic:         MetaGreedyDescent,
		TimeLimit:             30 * time.Second,
	}
}

// acceptor decides whether a candidate cost replaces the current one.
type acceptor interface {
	accept(current, candidate int64, rng *rand.Rand) bool
	step()
}

type greedyAcceptor struct{}

func (greedyAcceptor) accept(current, candidate int64, _ *rand.Rand) bool {
	return candidate < current
}
func (greedyAcceptor) step() {}

// annealingAcceptor takes worse moves with a probability that cools over the
// run, the standard simulated annealing schedule.
type annealingAcceptor struct {
	temperature float64
	cooling     float64
}

func newAnnealingAcceptor() *annealingAcceptor {
	return &annealingAcceptor{temperature: 10_000, cooling: 0.999}
}

func (a *annealingAcceptor) accept(current, candidate int64, rng *rand.Rand) bool {
	if candidate < current {
		return true
	}
	if a.temperature < 1e-6 {
		return false
	}
	delta := float64(candidate - current)
	return rng.Float64() < math.Exp(-delta/a.temperature)
}

func (a *annealingAcceptor) step() { a.temperature *= a.cooling }

// guidedAcceptor is descent with sideways moves allowed, so plateaus do not
// stall the search the way strict descent does.
type guidedAcceptor struct{}

func (guidedAcceptor) accept(current, candidate int64, _ *rand.Rand) bool {
	return candidate <= current
}
func (guidedAcceptor) step() {}

// tabuAcceptor forbids revisiting recently seen costs, which lets the search
// walk through worse neighbors without cycling.
type tabuAcceptor struct {
	recent []int64
	size   int
}

func newTabuAcceptor() *tabuAcceptor { return &tabuAcceptor{size: 50} }

func (t *tabuAcceptor) accept(current, candidate int64, _ *rand.Rand) bool {
	for _, c := range t.recent {
		if c == candidate {
			return false
		}
	}
	if candidate >= current+current/10+1000 {
		return false
	}
	t.recent = append(t.recent, candidate)
	if len(t.recent) > t.size {
		t.recent = t.recent[1:]
	}
	return true
}
func (t *tabuAcceptor) step() {}

func acceptorFor(name string) acceptor {
	switch name {
	case MetaSimulatedAnnealing:
		return newAnnealingAcceptor()
	case MetaGuidedLocalSearch:
		return guidedAcceptor{}
	case MetaGenericTabuSearch, MetaTabuSearch:
		return newTabuAcceptor()
	default:
		return greedyAcceptor{}
	}
}

// SolveWithParameters runs a full search and returns the best assignment
// found, or nil when no feasible solution serving every mandatory node
// exists within the limits.
func (m *Model) SolveWithParameters(params SearchParameters) *Assignment {
	m.finish.Store(false)
	m.CloseModel()

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	limit := params.TimeLimit
	if limit <= 0 {
		limit = 30 * time.Second
	}
	deadline := time.Now().Add(limit)

	current := m.construct(params.FirstSolutionStrategy, rng)
	ev := m.evaluate(current)
	if !ev.feasible {
		return nil
	}

	best := current.clone()
	bestEval := ev
	currentCost := ev.cost
	accept := acceptorFor(params.Metaheuristic)
	solutions := 1
	m.notifySolution(bestEval.cost)

	for time.Now().Before(deadline) && !m.finish.Load() {
		if params.SolutionLimit > 0 && solutions >= params.SolutionLimit {
			break
		}
		candidate := current.clone()
		if !m.mutate(candidate, rng) {
			continue
		}
		cev := m.evaluate(candidate)
		accept.step()
		if !cev.feasible {
			continue
		}
		if accept.accept(currentCost, cev.cost, rng) {
			current = candidate
			currentCost = cev.cost
			if cev.cost < bestEval.cost {
				best = candidate.clone()
				bestEval = cev
			}
			solutions++
			m.notifySolution(cev.cost)
		}
	}

	if !m.mandatoryServed(best) {
		return nil
	}
	return newAssignment(m, best, bestEval)
}

func (m *Model) notifySolution(objective int64) {
	for _, cb := range m.atSolution {
		cb(objective)
	}
}

func (m *Model) mandatoryServed(s *routeState) bool {
	for _, node := range m.insertable() {
		if m.IsOptional(node) {
			continue
		}
		if _, ok := s.vehicle[node]; !ok {
			return false
		}
	}
	return true
}

// mutate applies one random neighborhood move in place. It returns false
// when the chosen move had nothing to operate on.
func (m *Model) mutate(s *routeState, rng *rand.Rand) bool {
	switch rng.Intn(6) {
	case 0:
		return m.moveRelocate(s, rng)
	case 1:
		return m.moveSwap(s, rng)
	case 2:
		return m.moveTwoOpt(s, rng)
	case 3:
		return m.moveCrossExchange(s, rng)
	case 4:
		return m.moveDrop(s, rng)
	default:
		return m.moveReinsert(s, rng)
	}
}

func (m *Model) randomRoutedNode(s *routeState, rng *rand.Rand) (int64, bool) {
	var nodes []int64
	for n := range s.vehicle {
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return 0, false
	}
	// map iteration order is random; sort so the same seed replays the
	// same move sequence
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes[rng.Intn(len(nodes))], true
}

// moveRelocate removes a node and reinserts it at a random position on a
// random allowed vehicle.
func (m *Model) moveRelocate(s *routeState, rng *rand.Rand) bool {
	node, ok := m.randomRoutedNode(s, rng)
	if !ok {
		return false
	}
	s.remove(node)
	v := rng.Intn(len(s.routes))
	if !m.VehicleAllowed(node, v) {
		return false
	}
	s.insert(node, v, rng.Intn(len(s.routes[v])+1))
	return true
}

// moveSwap exchanges the positions of two routed nodes.
func (m *Model) moveSwap(s *routeState, rng *rand.Rand) bool {
	a, ok := m.randomRoutedNode(s, rng)
	if !ok {
		return false
	}
	b, ok := m.randomRoutedNode(s, rng)
	if !ok || a == b {
		return false
	}
	va, vb := s.vehicle[a], s.vehicle[b]
	if !m.VehicleAllowed(a, vb) || !m.VehicleAllowed(b, va) {
		return false
	}
	pa, pb := indexOf(s.routes[va], a), indexOf(s.routes[vb], b)
	s.routes[va][pa], s.routes[vb][pb] = b, a
	s.vehicle[a], s.vehicle[b] = vb, va
	return true
}

// moveTwoOpt reverses a random segment of one route.
func (m *Model) moveTwoOpt(s *routeState, rng *rand.Rand) bool {
	v := rng.Intn(len(s.routes))
	r := s.routes[v]
	if len(r) < 3 {
		return false
	}
	i, j := rng.Intn(len(r)), rng.Intn(len(r))
	if i > j {
		i, j = j, i
	}
	if i == j {
		return false
	}
	for i < j {
		r[i], r[j] = r[j], r[i]
		i++
		j--
	}
	return true
}

// moveCrossExchange swaps the tails of two routes.
func (m *Model) moveCrossExchange(s *routeState, rng *rand.Rand) bool {
	if len(s.routes) < 2 {
		return false
	}
	va, vb := rng.Intn(len(s.routes)), rng.Intn(len(s.routes))
	if va == vb || len(s.routes[va]) == 0 || len(s.routes[vb]) == 0 {
		return false
	}
	ca, cb := rng.Intn(len(s.routes[va])+1), rng.Intn(len(s.routes[vb])+1)
	tailA := append([]int64(nil), s.routes[va][ca:]...)
	tailB := append([]int64(nil), s.routes[vb][cb:]...)
	for _, n := range tailA {
		if !m.VehicleAllowed(n, vb) {
			return false
		}
	}
	for _, n := range tailB {
		if !m.VehicleAllowed(n, va) {
			return false
		}
	}
	s.routes[va] = append(s.routes[va][:ca], tailB...)
	s.routes[vb] = append(s.routes[vb][:cb], tailA...)
	for _, n := range tailA {
		s.vehicle[n] = vb
	}
	for _, n := range tailB {
		s.vehicle[n] = va
	}
	return true
}

// moveDrop removes one optional node from its route.
func (m *Model) moveDrop(s *routeState, rng *rand.Rand) bool {
	node, ok := m.randomRoutedNode(s, rng)
	if !ok || !m.IsOptional(node) {
		return false
	}
	s.remove(node)
	return true
}

// moveReinsert places a currently dropped node at a random position.
func (m *Model) moveReinsert(s *routeState, rng *rand.Rand) bool {
	var dropped []int64
	for _, node := range m.insertable() {
		if _, ok := s.vehicle[node]; !ok {
			dropped = append(dropped, node)
		}
	}
	if len(dropped) == 0 {
		return false
	}
	node := dropped[rng.Intn(len(dropped))]
	v := rng.Intn(len(s.routes))
	if !m.VehicleAllowed(node, v) {
		return false
	}
	s.insert(node, v, rng.Intn(len(s.routes[v])+1))
	return true
}

func indexOf(r []int64, n int64) int {
	for i, x := range r {
		if x == n {
			return i
		}
	}
	return -1
}
