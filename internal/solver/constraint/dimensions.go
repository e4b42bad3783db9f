package constraint

// NeighborhoodClustering penalizes dispersion between consecutive stops: a
// dimension accumulating scaled straight-line distance, zeroed at depot
// arcs, with a global span cost that rewards compact routes.
type NeighborhoodClustering struct{}

func (NeighborhoodClustering) Name() string { return "neighborhood_clustering" }

func (NeighborhoodClustering) Apply(ctx *Context) error {
	in := ctx.Input
	if !in.UseClustering || len(in.Distances) != in.NumNodes() {
		return nil
	}
	factor := in.ClusteringPenaltyFactor
	if factor <= 0 {
		factor = 10
	}
	capacity := in.ClusteringCap
	if capacity <= 0 {
		capacity = 3_000_000_000
	}
	span := in.ClusteringSpanCoeff
	if span <= 0 {
		span = 1
	}

	mgr := ctx.Manager
	cb := ctx.Model.RegisterTransitCallback(func(from, to int64) int64 {
		a, b := mgr.IndexToNode(from), mgr.IndexToNode(to)
		if in.IsDepot(a) || in.IsDepot(b) {
			return 0
		}
		return int64(in.Distances[a][b] * factor)
	})
	if err := ctx.Model.AddDimension(cb, 0, capacity, true, ClusteringDimension); err != nil {
		return err
	}
	d, _ := ctx.Model.GetDimension(ClusteringDimension)
	d.SetGlobalSpanCostCoefficient(span)
	ctx.Dimensions[ClusteringDimension] = d
	return nil
}

// Capacity bounds each vehicle's accumulated service time by the maximum
// working time.
type Capacity struct{}

func (Capacity) Name() string { return "capacity" }

func (Capacity) Apply(ctx *Context) error {
	in := ctx.Input
	mgr := ctx.Manager
	cb := ctx.Model.RegisterUnaryTransitCallback(func(index int64) int64 {
		node := mgr.IndexToNode(index)
		if node < len(in.ServiceDurations) {
			return int64(in.ServiceDurations[node])
		}
		return 0
	})
	caps := make([]int64, in.NumVehicles)
	for v := range caps {
		caps[v] = in.MaxWorkingTime
	}
	if err := ctx.Model.AddDimensionWithVehicleCapacity(cb, 0, caps, true, CapacityDimension); err != nil {
		return err
	}
	d, _ := ctx.Model.GetDimension(CapacityDimension)
	ctx.Dimensions[CapacityDimension] = d
	return nil
}

// Distance caps the accumulated route distance per vehicle. Inactive when no
// cap is configured.
type Distance struct{}

func (Distance) Name() string { return "distance" }

func (Distance) Apply(ctx *Context) error {
	in := ctx.Input
	if in.MaxRouteDistance <= 0 || len(in.Distances) != in.NumNodes() {
		return nil
	}
	mgr := ctx.Manager
	cb := ctx.Model.RegisterTransitCallback(func(from, to int64) int64 {
		return int64(in.Distances[mgr.IndexToNode(from)][mgr.IndexToNode(to)])
	})
	if err := ctx.Model.AddDimension(cb, 0, in.MaxRouteDistance, true, DistanceDimension); err != nil {
		return err
	}
	d, _ := ctx.Model.GetDimension(DistanceDimension)
	ctx.Dimensions[DistanceDimension] = d
	return nil
}
