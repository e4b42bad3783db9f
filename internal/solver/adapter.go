// Package solver turns an initialized day instance into a routing model and
// runs the search: SolverInput adapter, constraint composition, strategy
// sampling and the stagnation monitor.
package solver

import (
	"fieldroute/internal/model"
	"fieldroute/internal/solver/input"
)

// Options carries the model-shaping knobs that come from configuration
// rather than from the instance itself.
type Options struct {
	DistanceObjective   bool
	UseLoadDistribution bool
	UseVehicleCost      bool
	UseClustering       bool
	UsePrioritySoft     bool

	WalkingThresholdM float64
	WalkingSpeedKmh   float64
	FixedVehicleCost  int64
	MaxRouteDistance  int64

	ClusteringPenaltyFactor float64
	ClusteringCap           int64
	ClusteringSpanCoeff     int64
}

// BuildSolverInput snapshots an instance already initialized for its current
// day into the numeric form the constraint framework consumes. Dependency
// and zone rules referencing unknown task or worker ids are dropped; this is
// a best-effort mapping, not validation.
func BuildSolverInput(inst *model.Instance, opts Options) *input.SolverInput {
	workers := inst.Workers()
	orders := inst.WorkOrders()

	in := &input.SolverInput{
		NumVehicles: len(workers),
		NumDepots:   inst.NumDepots,
		Starts:      append([]int(nil), inst.Starts...),
		Ends:        append([]int(nil), inst.Ends...),
		Distances:   inst.Distances,
		Times:       inst.Times,

		ServiceDurations: make([]int, inst.NumNodes()),
		TimeWindows:      append([][2]int(nil), inst.Windows...),

		VehicleWindows: make([][2]int, len(workers)),
		Breaks:         make([][]model.BreakWindow, len(workers)),

		SoftWindows:     inst.SoftBounds,
		Penalties:       inst.Penalties,
		Priorities:      append([]model.NodePriority(nil), inst.Priorities...),
		AllowedVehicles: map[int][]int{},

		SlackMax:  inst.SlackAllow,
		Tolerance: inst.Tolerance,
		Horizon:   model.DayEndMinutes,

		DistanceObjective:   opts.DistanceObjective,
		UseLoadDistribution: opts.UseLoadDistribution,
		UseVehicleCost:      opts.UseVehicleCost,
		UseClustering:       opts.UseClustering,
		UsePrioritySoft:     opts.UsePrioritySoft,
		UseSoftWindows:      inst.AllowSoftWindows,

		WalkingThresholdM: opts.WalkingThresholdM,
		WalkingSpeedKmh:   opts.WalkingSpeedKmh,
		DrivingSpeedKmh:   inst.DrivingSpeedKmh,
		FixedVehicleCost:  opts.FixedVehicleCost,
		MaxRouteDistance:  opts.MaxRouteDistance,

		ClusteringPenaltyFactor: opts.ClusteringPenaltyFactor,
		ClusteringCap:           opts.ClusteringCap,
		ClusteringSpanCoeff:     opts.ClusteringSpanCoeff,
	}

	for idx, o := range orders {
		in.ServiceDurations[inst.NumDepots+idx] = o.Duration
	}

	var maxWorking int64
	for v, w := range workers {
		start, end := w.DayTimes(inst.CurrentDate)
		in.VehicleWindows[v] = [2]int{start, end}
		in.Breaks[v] = w.Breaks(inst.CurrentDate)
		if span := int64(end - start); span > maxWorking {
			maxWorking = span
		}
	}
	if maxWorking <= 0 {
		maxWorking = model.DayEndMinutes
	}
	in.MaxWorkingTime = maxWorking + int64(inst.Tolerance)

	nodeOf := map[string]int{}
	for idx, o := range orders {
		nodeOf[o.ID] = inst.NumDepots + idx
	}
	for _, dep := range inst.Dependencies {
		first, ok := nodeOf[dep.TaskID]
		if !ok {
			continue
		}
		for _, after := range dep.MustBeBefore {
			if node, ok := nodeOf[after]; ok {
				in.PrecedencePairs = append(in.PrecedencePairs, [2]int{first, node})
			}
		}
	}

	vehicleOf := map[string]int{}
	for v, w := range workers {
		vehicleOf[w.ID] = v
	}
	for _, zone := range inst.ZoneRestrictions {
		var vehicles []int
		for _, id := range zone.AllowedWorkers {
			if v, ok := vehicleOf[id]; ok {
				vehicles = append(vehicles, v)
			}
		}
		if len(vehicles) == 0 {
			continue
		}
		for _, id := range zone.TaskIDs {
			if node, ok := nodeOf[id]; ok {
				in.AllowedVehicles[node] = vehicles
			}
		}
	}

	return in
}
