// Package constraint holds the composable modules that turn a SolverInput
// into a routing model. Each module covers one concern and reads only the
// context; application order is fixed because later modules attach to
// dimensions created by earlier ones.
package constraint

import (
	"github.com/rs/zerolog"

	"fieldroute/internal/engine"
	"fieldroute/internal/solver/input"
)

// Dimension names shared across modules.
const (
	TimeDimension       = "Time"
	CapacityDimension   = "Capacity"
	DistanceDimension   = "Distance"
	ClusteringDimension = "Clustering"
	CountDimension      = "Count"
)

// Context is the shared build state a constraint mutates.
type Context struct {
	Model   *engine.Model
	Manager *engine.IndexManager
	Input   *input.SolverInput
	Log     zerolog.Logger

	// Dimensions collects the dimensions registered so far by name.
	Dimensions map[string]*engine.Dimension

	// CostCallback is the handle of the arc-cost evaluator registered by
	// the ArcCost module; CostIsDistance records its basis.
	CostCallback   int
	CostIsDistance bool
}

// Constraint is one composable concern of the model build.
type Constraint interface {
	Name() string
	Apply(ctx *Context) error
}

// Defaults is the full module set in required build order: the cost
// evaluator first, dimensions next, then everything that attaches to them.
func Defaults() []Constraint {
	return []Constraint{
		ArcCost{},
		LoadDistribution{},
		VehicleCost{},
		NeighborhoodClustering{},
		Capacity{},
		TimeWindow{},
		Breaks{},
		PrioritySoft{},
		NodeDropping{},
		Precedence{},
		ZoneRestriction{},
		Distance{},
	}
}

// serviceTransits lays the per-node service durations out over the full
// internal index space, start/end indices included (zero service).
func serviceTransits(ctx *Context) []int64 {
	out := make([]int64, ctx.Manager.Size())
	for node, d := range ctx.Input.ServiceDurations {
		out[node] = int64(d)
	}
	return out
}
