package engine

import "sort"

const infeasibleCost = int64(1) << 62

// routeState is a candidate assignment of nodes to vehicles. Routes hold
// plain node indices; starts and ends are implicit.
type routeState struct {
	routes  [][]int64
	vehicle map[int64]int // node index -> vehicle, absent when dropped
}

func newRouteState(numVehicles int) *routeState {
	return &routeState{
		routes:  make([][]int64, numVehicles),
		vehicle: map[int64]int{},
	}
}

func (s *routeState) clone() *routeState {
	out := &routeState{
		routes:  make([][]int64, len(s.routes)),
		vehicle: make(map[int64]int, len(s.vehicle)),
	}
	for v, r := range s.routes {
		out.routes[v] = append([]int64(nil), r...)
	}
	for n, v := range s.vehicle {
		out.vehicle[n] = v
	}
	return out
}

func (s *routeState) insert(node int64, vehicle, pos int) {
	r := s.routes[vehicle]
	r = append(r, 0)
	copy(r[pos+1:], r[pos:])
	r[pos] = node
	s.routes[vehicle] = r
	s.vehicle[node] = vehicle
}

func (s *routeState) remove(node int64) {
	v, ok := s.vehicle[node]
	if !ok {
		return
	}
	r := s.routes[v]
	for i, n := range r {
		if n == node {
			s.routes[v] = append(r[:i], r[i+1:]...)
			break
		}
	}
	delete(s.vehicle, node)
}

// evaluation is the outcome of simulating a routeState against the model.
type evaluation struct {
	feasible bool
	cost     int64
	// cumuls holds, per dimension name, the accumulated value at every
	// internal index on a route.
	cumuls map[string]map[int64]int64
	// performedBreaks holds, per vehicle, the break intervals that were
	// actually taken, with their resolved starts.
	performedBreaks map[int][]PerformedBreak
}

// PerformedBreak is a break interval placed on a vehicle's timeline.
type PerformedBreak struct {
	Name     string
	Start    int64
	Duration int64
}

// evaluate simulates every route, checks feasibility and totals the
// objective: arc costs, fixed vehicle costs, drop penalties, soft upper
// bound penalties and global span costs.
func (m *Model) evaluate(s *routeState) evaluation {
	ev := evaluation{
		feasible:        true,
		cumuls:          map[string]map[int64]int64{},
		performedBreaks: map[int][]PerformedBreak{},
	}
	for _, name := range m.dimOrder {
		ev.cumuls[name] = map[int64]int64{}
	}

	if !m.precedencesSatisfied(s) {
		ev.feasible = false
		return ev
	}

	var cost int64
	for v, route := range s.routes {
		// vehicle restrictions
		for _, n := range route {
			if !m.VehicleAllowed(n, v) {
				ev.feasible = false
				return ev
			}
		}
		if !m.evaluateVehicle(v, route, &ev, &cost) {
			ev.feasible = false
			return ev
		}
		if len(route) > 0 {
			cost += m.fixedVehicleCosts[v]
		}
	}

	// drop penalties for unserved disjunctions
	for _, d := range m.disjunctions {
		served := false
		for _, idx := range d.indices {
			if _, ok := s.vehicle[idx]; ok {
				served = true
				break
			}
		}
		if !served {
			cost += d.penalty
		}
	}

	// global span costs
	for _, name := range m.dimOrder {
		d := m.dimensions[name]
		if d.globalSpanCoeff == 0 || d.transit == nil {
			continue
		}
		cumuls := ev.cumuls[name]
		var minStart, maxEnd int64
		first := true
		for v, route := range s.routes {
			if len(route) == 0 {
				continue
			}
			start := cumuls[m.manager.Start(v)]
			end := cumuls[m.manager.End(v)]
			if first || start < minStart {
				minStart = start
			}
			if first || end > maxEnd {
				maxEnd = end
			}
			first = false
		}
		if !first {
			cost += d.globalSpanCoeff * (maxEnd - minStart)
		}
	}

	ev.cost = cost
	return ev
}

// precedencesSatisfied checks that every served precedence pair shares a
// vehicle and runs in order.
func (m *Model) precedencesSatisfied(s *routeState) bool {
	for _, p := range m.precedences {
		va, okA := s.vehicle[p[0]]
		vb, okB := s.vehicle[p[1]]
		if !okA || !okB {
			continue
		}
		if va != vb {
			return false
		}
		if indexOf(s.routes[va], p[0]) > indexOf(s.routes[vb], p[1]) {
			return false
		}
	}
	return true
}

// evaluateVehicle propagates every dimension along one vehicle's route,
// accumulating arc and soft-bound costs. Returns false when any hard
// constraint fails.
func (m *Model) evaluateVehicle(v int, route []int64, ev *evaluation, cost *int64) bool {
	start, end := m.manager.Start(v), m.manager.End(v)

	chain := make([]int64, 0, len(route)+2)
	chain = append(chain, start)
	chain = append(chain, route...)
	chain = append(chain, end)

	for i := 0; i+1 < len(chain); i++ {
		*cost += m.arcCost(chain[i], chain[i+1], v)
	}

	for _, name := range m.dimOrder {
		d := m.dimensions[name]
		switch {
		case d.unary != nil:
			var total int64
			for _, idx := range chain {
				total += d.unary(idx)
			}
			if total > d.capacities[v] {
				return false
			}
			running := int64(0)
			for _, idx := range chain {
				running += d.unary(idx)
				ev.cumuls[name][idx] = running
			}
		case d.transit != nil:
			if !m.propagateTransit(d, v, chain, ev, cost) {
				return false
			}
		}
	}
	return true
}

// propagateTransit walks the chain forward with earliest-arrival semantics:
// waiting (slack) lifts arrivals to window minimums, mandatory breaks block
// their interval and push overlapping service past their end.
func (m *Model) propagateTransit(d *Dimension, v int, chain []int64, ev *evaluation, cost *int64) bool {
	blocks, performed := m.vehicleBlocks(d, v, len(chain) > 2)
	serviceOf := func(idx int64) int64 {
		t := d.breakTransitsByVeh[v]
		if int(idx) < len(t) {
			return t[idx]
		}
		return 0
	}

	lo, hi := d.CumulRange(chain[0])
	cumul := lo
	if d.startCumulToZero {
		cumul = 0
	}
	cumul = pushPastBlocks(cumul, serviceOf(chain[0]), blocks)
	if cumul > hi {
		return false
	}
	ev.cumuls[d.name][chain[0]] = cumul
	m.chargeSoftBound(d, chain[0], cumul, cost)

	for i := 1; i < len(chain); i++ {
		prev, cur := chain[i-1], chain[i]
		arrive := cumul + d.transit(prev, cur)
		lo, hi := d.CumulRange(cur)
		next := arrive
		if next < lo {
			next = lo
		}
		slack := next - arrive
		if sr, ok := d.slackRanges[prev]; ok {
			if slack < sr[0] {
				next = arrive + sr[0]
				slack = sr[0]
			}
			if slack > sr[1] {
				return false
			}
		}
		if slack > d.slackMax {
			return false
		}
		next = pushPastBlocks(next, serviceOf(cur), blocks)
		if next > hi || next-arrive > d.slackMax {
			return false
		}
		cumul = next
		ev.cumuls[d.name][cur] = cumul
		m.chargeSoftBound(d, cur, cumul, cost)
	}

	if len(performed) > 0 {
		ev.performedBreaks[v] = append(ev.performedBreaks[v], performed...)
	}
	return true
}

func (m *Model) chargeSoftBound(d *Dimension, idx int64, cumul int64, cost *int64) {
	if sb, ok := d.softUpperBounds[idx]; ok && cumul > sb.bound {
		*cost += (cumul - sb.bound) * sb.coefficient
	}
}

// vehicleBlocks resolves the vehicle's break intervals into blocking windows.
// Mandatory breaks always block at their earliest start; optional breaks are
// recorded as performed but never push work. Used vehicles carry all their
// breaks; idle vehicles none.
func (m *Model) vehicleBlocks(d *Dimension, v int, used bool) ([][2]int64, []PerformedBreak) {
	if !used {
		return nil, nil
	}
	intervals := d.breaks[v]
	if len(intervals) == 0 {
		return nil, nil
	}
	var blocks [][2]int64
	var performed []PerformedBreak
	for _, iv := range intervals {
		performed = append(performed, PerformedBreak{Name: iv.Name, Start: iv.StartMin, Duration: iv.Duration})
		if iv.Optional {
			continue
		}
		blocks = append(blocks, [2]int64{iv.StartMin, iv.StartMin + iv.Duration})
	}
	sort.Slice(blocks, func(a, b int) bool { return blocks[a][0] < blocks[b][0] })
	return blocks, performed
}

// pushPastBlocks lifts a service start so that [start, start+service) avoids
// every blocking window.
func pushPastBlocks(start, service int64, blocks [][2]int64) int64 {
	for _, b := range blocks {
		if start < b[1] && start+service > b[0] {
			start = b[1]
		}
	}
	return start
}
