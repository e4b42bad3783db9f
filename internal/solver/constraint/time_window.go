package constraint

import (
	"fmt"

	"fieldroute/internal/engine"
)

// TimeWindow creates the "Time" dimension and pins every window: order nodes
// to [start, end - service + tolerance], vehicle starts and ends to the
// worker's shift. Soft preferred windows become soft upper bounds.
type TimeWindow struct{}

func (TimeWindow) Name() string { return "time_window" }

func (TimeWindow) Apply(ctx *Context) error {
	in := ctx.Input
	mgr := ctx.Manager

	cb := ctx.CostCallback
	if ctx.CostIsDistance || cb < 0 {
		// distance-based cost cannot drive the time dimension; register a
		// dedicated travel+service evaluator
		cb = ctx.Model.RegisterTransitCallback(func(from, to int64) int64 {
			a, b := mgr.IndexToNode(from), mgr.IndexToNode(to)
			return int64(in.Times[a][b]) + int64(in.ServiceDurations[a])
		})
	}

	if err := ctx.Model.AddDimension(cb, int64(in.SlackMax), int64(in.Horizon), false, TimeDimension); err != nil {
		return err
	}
	dim, _ := ctx.Model.GetDimension(TimeDimension)
	ctx.Dimensions[TimeDimension] = dim

	for node := in.NumDepots; node < in.NumNodes(); node++ {
		if node >= len(in.TimeWindows) {
			return fmt.Errorf("missing time window for node %d", node)
		}
		w := in.TimeWindows[node]
		max := w[1] - in.ServiceDurations[node] + in.Tolerance
		if max < w[0] {
			max = w[0]
		}
		dim.SetCumulVarRange(mgr.NodeToIndex(node), int64(w[0]), int64(max))
	}

	for v := 0; v < in.NumVehicles; v++ {
		w := in.VehicleWindows[v]
		dim.SetCumulVarRange(mgr.Start(v), int64(w[0]), int64(w[1]))
		dim.SetCumulVarRange(mgr.End(v), int64(w[0]), int64(w[1]))
	}

	if in.UseSoftWindows {
		for node, sw := range in.SoftWindows {
			dim.SetCumulVarSoftUpperBound(mgr.NodeToIndex(node), int64(sw.End), sw.Penalty)
		}
	}
	return nil
}

// Breaks installs every vehicle's non-working intervals on the time
// dimension as fixed-duration interval variables with a tolerant start.
type Breaks struct{}

func (Breaks) Name() string { return "breaks" }

func (Breaks) Apply(ctx *Context) error {
	in := ctx.Input
	dim, ok := ctx.Dimensions[TimeDimension]
	if !ok {
		return fmt.Errorf("breaks require the %s dimension", TimeDimension)
	}
	transits := serviceTransits(ctx)
	for v := 0; v < in.NumVehicles; v++ {
		var intervals []*engine.IntervalVar
		for i, b := range in.Breaks[v] {
			if b.Duration <= 0 {
				continue
			}
			iv := ctx.Model.FixedDurationIntervalVar(
				int64(b.Start),
				int64(b.Start+in.Tolerance),
				int64(b.Duration),
				b.Optional,
				fmt.Sprintf("break-%d-%d", v, i),
			)
			intervals = append(intervals, iv)
		}
		if len(intervals) > 0 {
			dim.SetBreakIntervalsOfVehicle(intervals, v, transits)
		}
	}
	return nil
}

// PrioritySoft nudges high-priority visits early: a soft upper bound at
// window start plus service, weighted by 5 minus the priority.
type PrioritySoft struct{}

func (PrioritySoft) Name() string { return "priority_soft" }

func (PrioritySoft) Apply(ctx *Context) error {
	in := ctx.Input
	if !in.UsePrioritySoft {
		return nil
	}
	dim, ok := ctx.Dimensions[TimeDimension]
	if !ok {
		return fmt.Errorf("priority bounds require the %s dimension", TimeDimension)
	}
	for _, p := range in.Priorities {
		coeff := int64(5 - p.Priority)
		if coeff <= 0 || p.Node < 0 || p.Node >= in.NumNodes() {
			continue
		}
		bound := int64(in.TimeWindows[p.Node][0] + in.ServiceDurations[p.Node])
		dim.SetCumulVarSoftUpperBound(ctx.Manager.NodeToIndex(p.Node), bound, coeff)
	}
	return nil
}
