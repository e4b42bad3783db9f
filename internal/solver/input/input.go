// Package input defines the numeric snapshot handed to the constraint
// framework. A SolverInput is self-contained: once built it fully determines
// the routing model, with no reads back into the domain layer.
package input

import "fieldroute/internal/model"

// SolverInput is the per-day, per-skill problem in purely numeric form.
// Node indices cover depots first ([0, NumDepots)) then work orders.
type SolverInput struct {
	NumVehicles int
	NumDepots   int
	Starts      []int
	Ends        []int

	Distances [][]float64
	Times     [][]int

	// Per-node arrays, indexed by routing node.
	ServiceDurations []int
	TimeWindows      [][2]int

	// Per-vehicle arrays.
	VehicleWindows [][2]int
	Breaks         [][]model.BreakWindow

	SoftWindows     map[int]model.SoftWindow
	Penalties       map[int]int64
	Priorities      []model.NodePriority
	PrecedencePairs [][2]int
	AllowedVehicles map[int][]int

	// Tuning.
	SlackMax         int
	Tolerance        int
	Horizon          int
	MaxWorkingTime   int64
	MaxRouteDistance int64
	FixedVehicleCost int64

	// Walking blend: arcs whose straight-line distance falls under the
	// threshold are costed at walking speed. Zero threshold disables it.
	WalkingThresholdM float64
	WalkingSpeedKmh   float64
	DrivingSpeedKmh   float64

	// Toggles.
	DistanceObjective   bool
	UseLoadDistribution bool
	UseVehicleCost      bool
	UseClustering       bool
	UsePrioritySoft     bool
	UseSoftWindows      bool

	ClusteringPenaltyFactor float64
	ClusteringCap           int64
	ClusteringSpanCoeff     int64
}

// NumNodes is the routing node count.
func (in *SolverInput) NumNodes() int { return len(in.Times) }

// IsDepot reports whether the node index is a depot/home pseudo-stop.
func (in *SolverInput) IsDepot(node int) bool { return node < in.NumDepots }
