package engine

// Assignment is a solved routing plan: the accepted routes, the objective
// value and the per-dimension cumulative values needed to reconstruct a
// schedule.
type Assignment struct {
	model     *Model
	objective int64
	routes    [][]int64
	cumuls    map[string]map[int64]int64
	breaks    map[int][]PerformedBreak
}

// ObjectiveValue is the total cost of the plan.
func (a *Assignment) ObjectiveValue() int64 { return a.objective }

// Route returns vehicle v's visited node indices, excluding the start and
// end indices.
func (a *Assignment) Route(v int) []int64 { return a.routes[v] }

// Cumul returns the accumulated value of the named dimension at an internal
// index. Indices off every route report zero.
func (a *Assignment) Cumul(dimension string, index int64) int64 {
	if c, ok := a.cumuls[dimension]; ok {
		return c[index]
	}
	return 0
}

// PerformedBreaks returns vehicle v's placed break intervals.
func (a *Assignment) PerformedBreaks(v int) []PerformedBreak { return a.breaks[v] }

// Dropped returns the node indices that no route serves, in ascending order.
func (a *Assignment) Dropped() []int64 {
	served := map[int64]bool{}
	for _, r := range a.routes {
		for _, n := range r {
			served[n] = true
		}
	}
	var out []int64
	for _, d := range a.model.disjunctions {
		for _, idx := range d.indices {
			if !served[idx] {
				out = append(out, idx)
			}
		}
	}
	return out
}

func newAssignment(m *Model, s *routeState, ev evaluation) *Assignment {
	a := &Assignment{
		model:     m,
		objective: ev.cost,
		routes:    make([][]int64, len(s.routes)),
		cumuls:    ev.cumuls,
		breaks:    ev.performedBreaks,
	}
	for v, r := range s.routes {
		a.routes[v] = append([]int64(nil), r...)
	}
	return a
}
