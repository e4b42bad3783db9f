package model

import (
	"fmt"
	"strings"
	"time"

	"fieldroute/internal/matrix"
)

// Default tuning for an instance. Callers override these from configuration.
const (
	DefaultSlackAllow      = 1000
	DefaultTolerance       = 15
	DefaultDrivingSpeedKmh = 40.0
	DefaultDropPenalty     = int64(1_000_000)

	// Traffic uplift applied to travel times when the caller opts in.
	predictiveTrafficFactor = 1.05
	historicalTrafficFactor = 1.10
)

// Matrix sourcing methods.
const (
	MethodHaversine = "haversine"
	MethodMatrix    = "matrix"
)

// ConvertDuration converts a duration value in the request's time unit into
// planning minutes.
func ConvertDuration(value float64, unit string) (int, error) {
	switch unit {
	case "", "minutes", "min":
		return int(value), nil
	case "hours", "h":
		return int(value * 60), nil
	case "seconds", "s":
		return int(value / 60), nil
	default:
		return 0, fmt.Errorf("unsupported time unit: %s", unit)
	}
}

// Instance is the per-skill planning problem. The request layer builds one
// instance per distinct skill; InitDay then derives the routing arrays for
// each day of the optimization period in turn.
type Instance struct {
	Skill    string
	Language string

	AllWorkers []*Worker
	AllOrders  []*WorkOrder

	PeriodStart time.Time
	PeriodEnd   time.Time
	CurrentDate time.Time

	// Matrix sourcing. Precomputed matrices are used when their size matches
	// the day's location count; MethodHaversine derives both from coordinates.
	DistanceMethod    string
	DistanceMatrix    [][]float64
	TimeMatrix        [][]int
	DrivingSpeedKmh   float64
	PredictiveTraffic bool
	HistoricalTraffic bool

	SlackAllow       int
	Tolerance        int
	DropPenaltyBase  int64
	AllowSoftWindows bool

	Dependencies     []Dependency
	ZoneRestrictions []ZoneRestriction

	// Derived per-day state, rebuilt by InitDay.
	Locations  []Location
	Starts     []int
	Ends       []int
	NumDepots  int
	Distances  [][]float64
	Times      [][]int
	Windows    [][2]int
	SoftBounds map[int]SoftWindow
	Penalties  map[int]int64
	Priorities []NodePriority

	dayWorkers []*Worker
	dayOrders  []*WorkOrder
	depotStops []*Stop
}

// NewInstance builds an instance with the standard tuning defaults.
func NewInstance(skill string, workers []*Worker, orders []*WorkOrder) *Instance {
	return &Instance{
		Skill:           skill,
		AllWorkers:      workers,
		AllOrders:       orders,
		DistanceMethod:  MethodHaversine,
		DrivingSpeedKmh: DefaultDrivingSpeedKmh,
		SlackAllow:      DefaultSlackAllow,
		Tolerance:       DefaultTolerance,
		DropPenaltyBase: DefaultDropPenalty,
	}
}

// Workers returns the workers on duty for the current day.
func (i *Instance) Workers() []*Worker { return i.dayWorkers }

// WorkOrders returns the orders eligible for the current day, in node order.
func (i *Instance) WorkOrders() []*WorkOrder { return i.dayOrders }

// Horizon is the number of days a single solve covers.
func (i *Instance) Horizon() int { return 1 }

// CanScheduleNewOrders reports whether the current day has anything to solve.
func (i *Instance) CanScheduleNewOrders() bool {
	return len(i.dayOrders) > 0 && len(i.dayWorkers) > 0
}

// DroppedOrders returns the orders that were eligible at some point during
// the period but never made it into a tour.
func (i *Instance) DroppedOrders() []*WorkOrder {
	var out []*WorkOrder
	for _, o := range i.AllOrders {
		if !o.Scheduled {
			out = append(out, o)
		}
	}
	return out
}

// Node returns the routing node at the given index: a depot/home stop for
// indices below NumDepots, the matching work order above.
func (i *Instance) Node(index int) Node {
	if index < i.NumDepots {
		return i.depotStops[index]
	}
	return i.dayOrders[index-i.NumDepots]
}

// NumNodes is the day's routing node count.
func (i *Instance) NumNodes() int { return len(i.Locations) }

// InitDay rebuilds the derived routing arrays for the given day: the active
// worker set, the deduplicated depot locations, the eligible order nodes and
// the matrices, windows and penalties over them.
func (i *Instance) InitDay(date time.Time) error {
	i.CurrentDate = date
	i.Locations = nil
	i.Starts = nil
	i.Ends = nil
	i.NumDepots = 0
	i.Distances = nil
	i.Times = nil
	i.Windows = nil
	i.SoftBounds = map[int]SoftWindow{}
	i.Penalties = map[int]int64{}
	i.Priorities = nil
	i.depotStops = nil
	i.dayWorkers = nil
	i.dayOrders = nil

	for _, w := range i.AllWorkers {
		w.ResetDay()
		if w.IsWorking(date) && w.HasSkill(i.Skill) {
			i.dayWorkers = append(i.dayWorkers, w)
		}
	}

	if len(i.AllOrders) > 0 && len(i.dayWorkers) == 0 {
		msg := fmt.Sprintf(Translate(MsgNoSkillMatch, i.Language), i.Skill)
		for _, o := range i.AllOrders {
			if !o.Scheduled && !containsMessage(o.Errors, msg) {
				o.Errors = append(o.Errors, msg)
			}
		}
		return nil
	}

	for _, o := range i.AllOrders {
		if !o.Scheduled {
			o.ResetVisit()
		}
		if o.EligibleOn(date, i.Language) {
			i.dayOrders = append(i.dayOrders, o)
		} else if o.HasBeenScheduled && !o.Scheduled {
			for _, msg := range o.ValidationErrors(date, i.Language) {
				if !containsMessage(o.Errors, msg) {
					o.Errors = append(o.Errors, msg)
				}
			}
		}
	}

	// Depot and home locations are deduplicated by address so workers sharing
	// a depot route through a single node.
	seen := map[string]int{}
	addStop := func(kind StopKind, ownerID string, loc Location) int {
		key := loc.Address
		if idx, ok := seen[key]; ok && key != "" {
			return idx
		}
		idx := len(i.Locations)
		seen[key] = idx
		i.Locations = append(i.Locations, loc)
		if kind == KindHome {
			i.depotStops = append(i.depotStops, NewHome(ownerID, loc.Address, loc.Lat, loc.Lng))
		} else {
			i.depotStops = append(i.depotStops, NewDepot(loc.Address, loc.Address, loc.Lat, loc.Lng))
		}
		return idx
	}
	for _, w := range i.dayWorkers {
		startKind, endKind := KindDepot, KindDepot
		if w.StartAddress.Address == "" || strings.HasPrefix(w.StartAddress.Address, "Home") {
			startKind = KindHome
		}
		if w.EndAddress.Address == "" || strings.HasPrefix(w.EndAddress.Address, "Home") {
			endKind = KindHome
		}
		i.Starts = append(i.Starts, addStop(startKind, w.ID, w.StartAddress))
		i.Ends = append(i.Ends, addStop(endKind, w.ID, w.EndAddress))
	}
	i.NumDepots = len(i.Locations)

	for _, o := range i.dayOrders {
		lat, lng := o.LatLng()
		i.Locations = append(i.Locations, Location{Address: o.NodeAddress(), Lat: lat, Lng: lng})
	}

	if err := i.buildMatrices(); err != nil {
		return err
	}
	i.buildWindows(date)
	return nil
}

// buildMatrices fills Distances and Times for the day's locations, applying
// the traffic uplift when enabled.
func (i *Instance) buildMatrices() error {
	n := len(i.Locations)
	switch {
	case len(i.TimeMatrix) == n && n > 0:
		i.Times = copyIntMatrix(i.TimeMatrix)
		if len(i.DistanceMatrix) == n {
			i.Distances = copyFloatMatrix(i.DistanceMatrix)
		} else {
			i.Distances = haversineDistances(i.Locations)
		}
	case i.DistanceMethod == MethodHaversine || i.DistanceMethod == "":
		i.Distances = haversineDistances(i.Locations)
		i.Times = timesFromDistances(i.Distances, i.DrivingSpeedKmh)
	default:
		return fmt.Errorf("%s", Translate(MsgNoMatrixDefined, i.Language))
	}

	factor := 1.0
	if i.PredictiveTraffic {
		factor *= predictiveTrafficFactor
	}
	if i.HistoricalTraffic {
		factor *= historicalTrafficFactor
	}
	if factor != 1.0 {
		for r, row := range i.Times {
			for c, v := range row {
				i.Times[r][c] = int(float64(v) * factor)
			}
		}
	}
	return nil
}

// buildWindows fills the per-node time windows, soft windows, drop penalties
// and priorities for the day.
func (i *Instance) buildWindows(date time.Time) {
	i.Windows = make([][2]int, len(i.Locations))
	for d := 0; d < i.NumDepots; d++ {
		i.Windows[d] = [2]int{0, DayEndMinutes}
	}
	for idx, o := range i.dayOrders {
		node := i.NumDepots + idx
		start, end := o.TimeConstraint(date)
		i.Windows[node] = [2]int{start, end}
		if i.AllowSoftWindows {
			if sw := o.PreferredWindow(date); sw != nil {
				i.SoftBounds[node] = *sw
			}
		}
		i.Penalties[node] = o.DropPenalty(date, i.PeriodEnd, i.DropPenaltyBase)
		i.Priorities = append(i.Priorities, NodePriority{Node: node, Priority: o.Priority})
	}
}

// Clone deep-copies the instance so parallel runs can mutate state freely.
func (i *Instance) Clone() *Instance {
	out := &Instance{
		Skill:             i.Skill,
		Language:          i.Language,
		PeriodStart:       i.PeriodStart,
		PeriodEnd:         i.PeriodEnd,
		CurrentDate:       i.CurrentDate,
		DistanceMethod:    i.DistanceMethod,
		DistanceMatrix:    copyFloatMatrix(i.DistanceMatrix),
		TimeMatrix:        copyIntMatrix(i.TimeMatrix),
		DrivingSpeedKmh:   i.DrivingSpeedKmh,
		PredictiveTraffic: i.PredictiveTraffic,
		HistoricalTraffic: i.HistoricalTraffic,
		SlackAllow:        i.SlackAllow,
		Tolerance:         i.Tolerance,
		DropPenaltyBase:   i.DropPenaltyBase,
		AllowSoftWindows:  i.AllowSoftWindows,
		Dependencies:      append([]Dependency(nil), i.Dependencies...),
		ZoneRestrictions:  append([]ZoneRestriction(nil), i.ZoneRestrictions...),
	}
	for _, w := range i.AllWorkers {
		cw := *w
		cw.Skills = append([]string(nil), w.Skills...)
		cw.Shifts = append([]ShiftTime(nil), w.Shifts...)
		cw.BlockedTimes = append([]IntervalTime(nil), w.BlockedTimes...)
		cw.Tour = nil
		out.AllWorkers = append(out.AllWorkers, &cw)
	}
	for _, o := range i.AllOrders {
		co := *o
		co.VisitsSchedule = append([]IntervalTime(nil), o.VisitsSchedule...)
		co.Errors = append([]string(nil), o.Errors...)
		out.AllOrders = append(out.AllOrders, &co)
	}
	return out
}

func containsMessage(msgs []string, msg string) bool {
	for _, m := range msgs {
		if m == msg {
			return true
		}
	}
	return false
}

func haversineDistances(locations []Location) [][]float64 {
	points := make([][2]float64, len(locations))
	for i, l := range locations {
		points[i] = [2]float64{l.Lat, l.Lng}
	}
	return matrix.HaversineMatrix(points)
}

func timesFromDistances(distances [][]float64, speedKmh float64) [][]int {
	return matrix.TimeFromDistance(distances, speedKmh)
}

func copyIntMatrix(m [][]int) [][]int {
	if m == nil {
		return nil
	}
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func copyFloatMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
