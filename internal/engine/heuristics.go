package engine

import "math/rand"

// Construction heuristics. All of them score candidate placements with the
// full objective delta, so time windows, breaks and vehicle restrictions are
// respected from the first solution on. They differ in the order placements
// are committed.

// insertionCost evaluates placing node at (vehicle, pos) on top of s. It
// returns the objective delta and whether the placement is feasible.
func (m *Model) insertionCost(s *routeState, base int64, node int64, vehicle, pos int) (int64, bool) {
	s.insert(node, vehicle, pos)
	ev := m.evaluate(s)
	s.remove(node)
	if !ev.feasible {
		return 0, false
	}
	return ev.cost - base, true
}

type placement struct {
	node    int64
	vehicle int
	pos     int
	delta   int64
}

// bestPlacement finds the cheapest feasible placement of node anywhere. When
// endOnly is set, only appending at route ends is considered.
func (m *Model) bestPlacement(s *routeState, base int64, node int64, endOnly bool) (placement, bool) {
	best := placement{node: node, delta: infeasibleCost}
	found := false
	for v := range s.routes {
		if !m.VehicleAllowed(node, v) {
			continue
		}
		positions := []int{len(s.routes[v])}
		if !endOnly {
			positions = positions[:0]
			for p := 0; p <= len(s.routes[v]); p++ {
				positions = append(positions, p)
			}
		}
		for _, p := range positions {
			if delta, ok := m.insertionCost(s, base, node, v, p); ok && delta < best.delta {
				best = placement{node: node, vehicle: v, pos: p, delta: delta}
				found = true
			}
		}
	}
	return best, found
}

// insertable lists the node indices that have to be placed: every index
// below numNodes that is not a vehicle start/end node.
func (m *Model) insertable() []int64 {
	depot := map[int]bool{}
	for _, n := range m.manager.starts {
		depot[n] = true
	}
	for _, n := range m.manager.ends {
		depot[n] = true
	}
	var out []int64
	for n := 0; n < m.manager.numNodes; n++ {
		if !depot[n] {
			out = append(out, int64(n))
		}
	}
	return out
}

// commitOrDrop inserts the node at its best placement unless dropping it is
// cheaper and allowed.
func (m *Model) commitOrDrop(s *routeState, node int64, endOnly bool) {
	base := m.evaluate(s).cost
	best, ok := m.bestPlacement(s, base, node, endOnly)
	if !ok {
		return
	}
	if m.IsOptional(node) && best.delta >= 0 {
		// base already carries the drop penalty, so a non-negative delta
		// means serving the node costs more than dropping it
		return
	}
	s.insert(node, best.vehicle, best.pos)
}

func (m *Model) constructPathCheapestArc(s *routeState, pending []int64) {
	remaining := append([]int64(nil), pending...)
	v := 0
	for len(remaining) > 0 {
		base := m.evaluate(s).cost
		best, bestIdx := placement{delta: infeasibleCost}, -1
		for i, node := range remaining {
			if !m.VehicleAllowed(node, v) {
				continue
			}
			if delta, ok := m.insertionCost(s, base, node, v, len(s.routes[v])); ok && delta < best.delta {
				best = placement{node: node, vehicle: v, pos: len(s.routes[v]), delta: delta}
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			v++
			if v >= len(s.routes) {
				// leftovers get a final any-position pass
				for _, node := range remaining {
					m.commitOrDrop(s, node, false)
				}
				return
			}
			continue
		}
		if m.IsOptional(best.node) && best.delta >= 0 {
			remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
			continue
		}
		s.insert(best.node, best.vehicle, best.pos)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		v = (v + 1) % len(s.routes)
	}
}

func (m *Model) constructGlobalCheapest(s *routeState, pending []int64, endOnly bool) {
	remaining := append([]int64(nil), pending...)
	for len(remaining) > 0 {
		base := m.evaluate(s).cost
		best, bestIdx := placement{delta: infeasibleCost}, -1
		for i, node := range remaining {
			if p, ok := m.bestPlacement(s, base, node, endOnly); ok && p.delta < best.delta {
				best, bestIdx = p, i
			}
		}
		if bestIdx < 0 {
			return
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		if m.IsOptional(best.node) && best.delta >= 0 {
			continue
		}
		s.insert(best.node, best.vehicle, best.pos)
	}
}

func (m *Model) constructSequential(s *routeState, pending []int64, rng *rand.Rand, shuffle bool) {
	order := append([]int64(nil), pending...)
	if shuffle {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	for _, node := range order {
		m.commitOrDrop(s, node, false)
	}
}

// construct builds a first solution with the named strategy.
func (m *Model) construct(strategy string, rng *rand.Rand) *routeState {
	s := newRouteState(m.manager.NumVehicles())
	pending := m.insertable()
	switch strategy {
	case StrategyPathCheapestArc, StrategyUnset, StrategyAutomatic, "":
		m.constructPathCheapestArc(s, pending)
	case StrategyGlobalCheapestArc:
		m.constructGlobalCheapest(s, pending, true)
	case StrategyLocalCheapestArc:
		m.constructSequential(s, pending, rng, false)
	case StrategyParallelCheapestInsertion:
		m.constructGlobalCheapest(s, pending, false)
	case StrategyBestInsertion:
		m.constructSequential(s, pending, rng, true)
	default:
		m.constructPathCheapestArc(s, pending)
	}
	return s
}
