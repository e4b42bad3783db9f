package plan

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fieldroute/internal/model"
)

// Request routing modes and objectives.
const (
	StartAtDepot = "depot"
	StartAtHome  = "home"

	TargetDuration  = "duration"
	TargetDistance  = "distance"
	TargetHaversine = "haversine"
)

// ErrInvalidRequest wraps every input-validation failure; such failures
// abort the whole request before any instance is built.
var ErrInvalidRequest = errors.New("invalid request")

// LocationSpec is a named coordinate.
type LocationSpec struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// ShiftSpec is one day's shift override for a worker.
type ShiftSpec struct {
	Date          time.Time `json:"date"`
	DayStart      int       `json:"day_start"`
	DayEnd        int       `json:"day_end"`
	PauseStart    int       `json:"pause_start"`
	PauseEnd      int       `json:"pause_end"`
	PauseOptional bool      `json:"pause_optional"`
}

// IntervalSpec is a date-scoped intra-day interval.
type IntervalSpec struct {
	Date  time.Time `json:"date"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}

// WorkerSpec is one mobile worker as the preprocessing collaborator hands
// it over: times already in minutes, dates already parsed.
type WorkerSpec struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Skills        []string       `json:"skills"`
	DayStart      int            `json:"day_start"`
	DayEnd        int            `json:"day_end"`
	PauseStart    int            `json:"pause_start"`
	PauseEnd      int            `json:"pause_end"`
	PauseOptional bool           `json:"pause_optional"`
	Shifts        []ShiftSpec    `json:"shifts"`
	BlockedTimes  []IntervalSpec `json:"blocked_times"`
	Home          LocationSpec   `json:"home"`
}

// OrderSpec is one work order of the request.
type OrderSpec struct {
	ID       string       `json:"id"`
	Skill    string       `json:"skill"`
	Priority int          `json:"priority"`
	Location LocationSpec `json:"location"`

	Duration float64 `json:"work_duration"`

	EarliestStart      *time.Time `json:"earliest_start,omitempty"`
	LatestEnd          *time.Time `json:"latest_end,omitempty"`
	MustStart          *time.Time `json:"must_start,omitempty"`
	MustEnd            *time.Time `json:"must_end,omitempty"`
	MachineEarliest    *time.Time `json:"machine_earliest,omitempty"`
	MachineLatest      *time.Time `json:"machine_latest,omitempty"`
	SparePartAvailable *time.Time `json:"spare_part_available,omitempty"`

	PreferredStart    *time.Time `json:"preferred_start,omitempty"`
	PreferredEnd      *time.Time `json:"preferred_end,omitempty"`
	SoftWindowPenalty int64      `json:"soft_window_penalty,omitempty"`

	VisitingHourStart  int            `json:"visiting_hour_start"`
	VisitingHourEnd    int            `json:"visiting_hour_end"`
	VisitsSchedule     []IntervalSpec `json:"visits_schedule,omitempty"`
	RequiredAssignment bool           `json:"required_assignment,omitempty"`
}

// Request is the normalized optimization request for one job, covering all
// skills. Splitting into per-skill instances happens in Normalize.
type Request struct {
	Language    string    `json:"language"`
	PeriodStart time.Time `json:"period_start"`
	Horizon     int       `json:"optimization_horizon"`
	StartAt     string    `json:"start_at"`
	EndAt       string    `json:"end_at"`
	TimeUnit    string    `json:"time_unit"`
	Target      string    `json:"optimization_target"`
	Quality     string    `json:"result_quality"`

	RandomizeResponse bool  `json:"randomize_response"`
	Seed              int64 `json:"seed,omitempty"`
	TimeLimitSeconds  int   `json:"time_limit_seconds,omitempty"`

	Depot   *LocationSpec `json:"depot,omitempty"`
	Workers []WorkerSpec  `json:"workers"`
	Orders  []OrderSpec   `json:"work_orders"`

	DistanceMatrix [][]float64 `json:"distance_matrix,omitempty"`
	TimeMatrix     [][]int     `json:"time_matrix,omitempty"`

	Dependencies     []model.Dependency      `json:"task_dependencies,omitempty"`
	ZoneRestrictions []model.ZoneRestriction `json:"zone_restrictions,omitempty"`

	AllowSoftWindows  bool `json:"allow_soft_time_windows"`
	PredictiveTraffic bool `json:"predictive_traffic"`
	HistoricalTraffic bool `json:"historical_traffic"`
}

// Deterministic reports whether strategy draws and seeds must be
// reproducible.
func (r *Request) Deterministic() bool { return !r.RandomizeResponse }

// PeriodEnd is the last day of the optimization period.
func (r *Request) PeriodEnd() time.Time {
	return r.PeriodStart.AddDate(0, 0, r.Horizon-1)
}

// Validate checks the required fields. Any failure is an input error that
// aborts the request.
func (r *Request) Validate() error {
	if r.PeriodStart.IsZero() {
		return fmt.Errorf("%w: period_start is required", ErrInvalidRequest)
	}
	if r.Horizon < 1 {
		return fmt.Errorf("%w: optimization_horizon must be at least 1", ErrInvalidRequest)
	}
	switch r.StartAt {
	case "", StartAtDepot, StartAtHome:
	default:
		return fmt.Errorf("%w: start_at must be %q or %q", ErrInvalidRequest, StartAtDepot, StartAtHome)
	}
	switch r.EndAt {
	case "", StartAtDepot, StartAtHome:
	default:
		return fmt.Errorf("%w: end_at must be %q or %q", ErrInvalidRequest, StartAtDepot, StartAtHome)
	}
	switch r.TimeUnit {
	case "", "minutes", "min", "hours", "h", "seconds", "s":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidRequest,
			fmt.Sprintf(model.Translate(model.MsgUnsupportedTimeUnit, r.Language), r.TimeUnit))
	}
	switch r.Target {
	case "", TargetDuration, TargetDistance, TargetHaversine:
	default:
		return fmt.Errorf("%w: unknown optimization_target %q", ErrInvalidRequest, r.Target)
	}
	if (r.StartAt == StartAtDepot || r.EndAt == StartAtDepot || r.StartAt == "" || r.EndAt == "") && r.Depot == nil {
		return fmt.Errorf("%w: depot location is required when routing from the depot", ErrInvalidRequest)
	}
	if len(r.Workers) == 0 {
		return fmt.Errorf("%w: at least one worker is required", ErrInvalidRequest)
	}
	return nil
}

// Normalize validates the request and splits it into one instance per
// distinct order skill, each carrying the workers that hold that skill.
// Per-order issues (like an unsupported duration) are collected as strings
// and do not abort sibling orders.
func (r *Request) Normalize() ([]*model.Instance, []string, error) {
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}

	var inputErrors []string
	bySkill := map[string][]*model.WorkOrder{}
	for _, spec := range r.Orders {
		o, err := r.buildOrder(spec)
		if err != nil {
			inputErrors = append(inputErrors, fmt.Sprintf("%s: %v", spec.ID, err))
			continue
		}
		bySkill[o.Skill] = append(bySkill[o.Skill], o)
	}

	skills := make([]string, 0, len(bySkill))
	for s := range bySkill {
		skills = append(skills, s)
	}
	sort.Strings(skills)

	var instances []*model.Instance
	for _, skill := range skills {
		var workers []*model.Worker
		for _, spec := range r.Workers {
			w := r.buildWorker(spec)
			if w.HasSkill(skill) {
				workers = append(workers, w)
			}
		}
		inst := model.NewInstance(skill, workers, bySkill[skill])
		inst.Language = r.Language
		inst.PeriodStart = r.PeriodStart
		inst.PeriodEnd = r.PeriodEnd()
		inst.DistanceMatrix = r.DistanceMatrix
		inst.TimeMatrix = r.TimeMatrix
		inst.AllowSoftWindows = r.AllowSoftWindows
		inst.PredictiveTraffic = r.PredictiveTraffic
		inst.HistoricalTraffic = r.HistoricalTraffic
		inst.Dependencies = r.Dependencies
		inst.ZoneRestrictions = r.ZoneRestrictions
		instances = append(instances, inst)
	}
	return instances, inputErrors, nil
}

func (r *Request) buildWorker(spec WorkerSpec) *model.Worker {
	w := &model.Worker{
		ID:            spec.ID,
		Name:          spec.Name,
		Skills:        append([]string(nil), spec.Skills...),
		DayStart:      spec.DayStart,
		DayEnd:        spec.DayEnd,
		PauseStart:    spec.PauseStart,
		PauseEnd:      spec.PauseEnd,
		PauseOptional: spec.PauseOptional,
	}
	if w.DayEnd == 0 {
		w.DayEnd = model.DayEndMinutes
	}
	for _, s := range spec.Shifts {
		w.Shifts = append(w.Shifts, model.ShiftTime{
			Date:          s.Date,
			DayStart:      s.DayStart,
			DayEnd:        s.DayEnd,
			PauseStart:    s.PauseStart,
			PauseEnd:      s.PauseEnd,
			PauseOptional: s.PauseOptional,
		})
	}
	for _, b := range spec.BlockedTimes {
		w.BlockedTimes = append(w.BlockedTimes, model.IntervalTime{Date: b.Date, Start: b.Start, End: b.End})
	}

	home := model.Location{Address: spec.Home.Address, Lat: spec.Home.Lat, Lng: spec.Home.Lng}
	if home.Address == "" {
		home.Address = "Home " + spec.ID
	}
	var depot model.Location
	if r.Depot != nil {
		depot = model.Location{Address: r.Depot.Address, Lat: r.Depot.Lat, Lng: r.Depot.Lng}
	}
	if r.StartAt == StartAtHome {
		w.StartAddress = home
	} else {
		w.StartAddress = depot
	}
	if r.EndAt == StartAtHome {
		w.EndAddress = home
	} else {
		w.EndAddress = depot
	}
	return w
}

func (r *Request) buildOrder(spec OrderSpec) (*model.WorkOrder, error) {
	duration, err := model.ConvertDuration(spec.Duration, r.TimeUnit)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("work_duration must be positive, got %v %s", spec.Duration, r.TimeUnit)
	}
	o := &model.WorkOrder{
		ID:                 spec.ID,
		Skill:              spec.Skill,
		Priority:           spec.Priority,
		Duration:           duration,
		EarliestStart:      spec.EarliestStart,
		LatestEnd:          spec.LatestEnd,
		MustStart:          spec.MustStart,
		MustEnd:            spec.MustEnd,
		MachineEarliest:    spec.MachineEarliest,
		MachineLatest:      spec.MachineLatest,
		SparePartDate:      spec.SparePartAvailable,
		PreferredStart:     spec.PreferredStart,
		PreferredEnd:       spec.PreferredEnd,
		SoftWindowPenalty:  spec.SoftWindowPenalty,
		VisitingHourStart:  spec.VisitingHourStart,
		VisitingHourEnd:    spec.VisitingHourEnd,
		RequiredAssignment: spec.RequiredAssignment,
	}
	if o.Priority < 1 {
		o.Priority = 3
	}
	if o.VisitingHourEnd == 0 {
		o.VisitingHourEnd = model.DayEndMinutes
	}
	if o.EarliestStart == nil && o.MustStart == nil {
		start := r.PeriodStart
		o.EarliestStart = &start
	}
	if o.LatestEnd == nil && o.MustEnd == nil {
		// end of the last day, not its midnight, or the last day's window
		// collapses to [start, 0] and the order is never eligible
		end := r.PeriodEnd().Add(23*time.Hour + 59*time.Minute)
		o.LatestEnd = &end
	}
	for _, v := range spec.VisitsSchedule {
		o.VisitsSchedule = append(o.VisitsSchedule, model.IntervalTime{Date: v.Date, Start: v.Start, End: v.End})
	}
	o.SetAddress(spec.Location.Address, spec.Location.Lat, spec.Location.Lng)
	return o, nil
}
