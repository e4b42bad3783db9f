package constraint

import "math"

// ArcCost registers the travel-cost evaluator every vehicle uses. The basis
// is travel time plus the origin's service time, or raw distance when the
// objective is distance. Short arcs can be re-costed at walking speed.
type ArcCost struct{}

func (ArcCost) Name() string { return "arc_cost" }

func (ArcCost) Apply(ctx *Context) error {
	in := ctx.Input
	mgr := ctx.Manager

	walkSpeed := in.WalkingSpeedKmh
	if walkSpeed <= 0 {
		walkSpeed = 5
	}
	blend := in.WalkingThresholdM > 0 && len(in.Distances) == in.NumNodes()

	travel := func(a, b int) int64 {
		if blend && (in.Distances[a][b] < in.WalkingThresholdM || in.Distances[b][a] < in.WalkingThresholdM) {
			return int64(math.Round(in.Distances[a][b] / (walkSpeed * 1000 / 60)))
		}
		return int64(in.Times[a][b])
	}

	var cb int
	if in.DistanceObjective {
		cb = ctx.Model.RegisterTransitCallback(func(from, to int64) int64 {
			return int64(in.Distances[mgr.IndexToNode(from)][mgr.IndexToNode(to)])
		})
	} else {
		cb = ctx.Model.RegisterTransitCallback(func(from, to int64) int64 {
			a, b := mgr.IndexToNode(from), mgr.IndexToNode(to)
			return travel(a, b) + int64(in.ServiceDurations[a])
		})
	}
	ctx.Model.SetArcCostEvaluatorOfAllVehicles(cb)
	ctx.CostCallback = cb
	ctx.CostIsDistance = in.DistanceObjective
	return nil
}
