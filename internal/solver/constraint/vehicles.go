package constraint

// LoadDistribution forces task counts to stay even across vehicles by
// capping a unit-increment dimension at ceil(orders/vehicles)+1. Mutually
// exclusive with VehicleCost.
type LoadDistribution struct{}

func (LoadDistribution) Name() string { return "load_distribution" }

func (LoadDistribution) Apply(ctx *Context) error {
	in := ctx.Input
	if !in.UseLoadDistribution {
		return nil
	}
	orders := in.NumNodes() - in.NumDepots
	if orders <= 0 || in.NumVehicles <= 0 {
		return nil
	}
	cap := int64((orders+in.NumVehicles-1)/in.NumVehicles) + 1

	mgr := ctx.Manager
	cb := ctx.Model.RegisterUnaryTransitCallback(func(index int64) int64 {
		if in.IsDepot(mgr.IndexToNode(index)) {
			return 0
		}
		return 1
	})
	caps := make([]int64, in.NumVehicles)
	for v := range caps {
		caps[v] = cap
	}
	if err := ctx.Model.AddDimensionWithVehicleCapacity(cb, 0, caps, true, CountDimension); err != nil {
		return err
	}
	d, _ := ctx.Model.GetDimension(CountDimension)
	ctx.Dimensions[CountDimension] = d
	return nil
}

// VehicleCost charges a fixed cost per vehicle that leaves its depot, so the
// search prefers fewer, fuller tours. Skipped while LoadDistribution is
// active, which wants the opposite.
type VehicleCost struct{}

func (VehicleCost) Name() string { return "vehicle_cost" }

func (VehicleCost) Apply(ctx *Context) error {
	in := ctx.Input
	if !in.UseVehicleCost || in.UseLoadDistribution {
		return nil
	}
	for v := 0; v < in.NumVehicles; v++ {
		ctx.Model.SetFixedCostOfVehicle(in.FixedVehicleCost, v)
	}
	return nil
}

// ZoneRestriction narrows the feasible vehicle set for specific nodes.
type ZoneRestriction struct{}

func (ZoneRestriction) Name() string { return "zone_restriction" }

func (ZoneRestriction) Apply(ctx *Context) error {
	for node, vehicles := range ctx.Input.AllowedVehicles {
		if node < 0 || node >= ctx.Input.NumNodes() {
			ctx.Log.Warn().Int("node", node).Msg("allowed-vehicles index out of range, skipping")
			continue
		}
		ctx.Model.SetAllowedVehiclesForIndex(vehicles, ctx.Manager.NodeToIndex(node))
	}
	return nil
}
