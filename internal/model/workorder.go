package model

import (
	"fmt"
	"time"
)

// Drop-penalty tiers. Orders with a hard must-start are practically pinned;
// orders flagged as required assignments sit one tier above even that.
const (
	mustStartPenalty          = int64(1e10)
	requiredAssignmentPenalty = int64(1e12)
)

// WorkOrder is a schedulable task. All optional date bounds narrow the
// effective [earliest, latest] interval; visiting hours bound the intra-day
// window on the days the interval spans.
type WorkOrder struct {
	ID       string
	Skill    string
	Priority int // 1 (highest) .. 5

	EarliestStart   *time.Time
	LatestEnd       *time.Time
	MustStart       *time.Time
	MustEnd         *time.Time
	MachineEarliest *time.Time
	MachineLatest   *time.Time
	SparePartDate   *time.Time

	PreferredStart    *time.Time
	PreferredEnd      *time.Time
	SoftWindowPenalty int64

	// Default intra-day visiting hours, overridden per day by VisitsSchedule.
	VisitingHourStart int
	VisitingHourEnd   int
	VisitsSchedule    []IntervalTime

	// Duration is the on-site work time in minutes once the owning instance
	// has converted it from the request's time unit.
	Duration int

	RequiredAssignment bool

	Scheduled        bool
	HasBeenScheduled bool
	Errors           []string
	AssignedWorker   string

	visit   Visit
	address orderAddress
}

func (o *WorkOrder) NodeID() string { return o.ID }
func (o *WorkOrder) NodeAddress() string { return o.address.Address }
func (o *WorkOrder) LatLng() (float64, float64) { return o.address.Lat, o.address.Lng }
func (o *WorkOrder) ServiceDuration() int { return o.Duration }
func (o *WorkOrder) Visit() *Visit { return &o.visit }

// address is embedded separately so the struct literal sites stay readable.
type orderAddress struct {
	Address string
	Lat     float64
	Lng     float64
}

func (o *WorkOrder) ServiceEndClock() string {
	start, ok := o.visit.Start()
	if !ok {
		return ""
	}
	return FormatClock(start + o.Duration)
}

// EffectiveEarliest is the tightest lower date bound: a must-start wins
// outright, otherwise the latest of the provided earliest bounds.
func (o *WorkOrder) EffectiveEarliest() *time.Time {
	if o.MustStart != nil {
		return o.MustStart
	}
	var out *time.Time
	for _, t := range []*time.Time{o.EarliestStart, o.MachineEarliest, o.SparePartDate} {
		if t == nil {
			continue
		}
		if out == nil || t.After(*out) {
			out = t
		}
	}
	return out
}

// EffectiveLatest is the tightest upper date bound: a must-end wins outright,
// otherwise the earliest of the provided latest bounds.
func (o *WorkOrder) EffectiveLatest() *time.Time {
	if o.MustEnd != nil {
		return o.MustEnd
	}
	var out *time.Time
	for _, t := range []*time.Time{o.LatestEnd, o.MachineLatest} {
		if t == nil {
			continue
		}
		if out == nil || t.Before(*out) {
			out = t
		}
	}
	return out
}

// VisitingHoursOn returns the intra-day visiting window for the given day,
// preferring a per-day schedule entry over the defaults.
func (o *WorkOrder) VisitingHoursOn(date time.Time) (start, end int) {
	for _, v := range o.VisitsSchedule {
		if SameDay(v.Date, date) {
			return v.Start, v.End
		}
	}
	return o.VisitingHourStart, o.VisitingHourEnd
}

// EligibleOn reports whether the order can be scheduled on the given day:
// its effective bounds span the day, it is not yet scheduled and it carries
// no blocking validation errors. Seeing the day inside its bounds marks the
// order as having been schedulable at least once, which later distinguishes
// "dropped" from "outside period".
func (o *WorkOrder) EligibleOn(date time.Time, language string) bool {
	earliest, latest := o.EffectiveEarliest(), o.EffectiveLatest()
	if earliest == nil || latest == nil || date.IsZero() {
		return false
	}
	day := date.Truncate(24 * time.Hour)
	inRange := !day.Before(earliest.Truncate(24*time.Hour)) && !day.After(latest.Truncate(24*time.Hour))
	if inRange {
		o.HasBeenScheduled = true
	}
	return inRange && !o.Scheduled && len(o.ValidationErrors(date, language)) == 0
}

// TimeConstraint returns the intra-day [start, end] window in minutes for
// the given day: effective bounds clamp the visiting hours only on the days
// they actually fall on.
func (o *WorkOrder) TimeConstraint(date time.Time) (int, int) {
	dayStart, dayEnd := o.VisitingHoursOn(date)
	start, end := dayStart, dayEnd

	if earliest := o.EffectiveEarliest(); earliest != nil && SameDay(*earliest, date) {
		if c := ClockOf(*earliest); c > start {
			start = c
		}
	}
	if latest := o.EffectiveLatest(); latest != nil && SameDay(*latest, date) {
		if c := ClockOf(*latest); c < end {
			end = c
		}
	}
	return start, end
}

// PreferredWindow returns the soft time window for the given day, or nil if
// the order has none there or it collapses against the visiting hours.
func (o *WorkOrder) PreferredWindow(date time.Time) *SoftWindow {
	if o.PreferredStart == nil || o.PreferredEnd == nil || o.SoftWindowPenalty <= 0 {
		return nil
	}
	if !SameDay(*o.PreferredStart, date) {
		return nil
	}
	dayStart, dayEnd := o.VisitingHoursOn(date)
	start, end := ClockOf(*o.PreferredStart), ClockOf(*o.PreferredEnd)
	if start < dayStart {
		start = dayStart
	}
	if end > dayEnd {
		end = dayEnd
	}
	if start > end {
		return nil
	}
	return &SoftWindow{Start: start, End: end, Penalty: o.SoftWindowPenalty}
}

// ValidationErrors checks the order's own constraints for the given day:
// inverted windows, durations that cannot fit, and spare parts arriving after
// a hard must-start.
func (o *WorkOrder) ValidationErrors(date time.Time, language string) []string {
	var msgs []string
	start, end := o.TimeConstraint(date)
	if start > end {
		msgs = append(msgs, Translate(MsgBadTimeConstraint, language))
	}
	if end-start < o.Duration {
		msgs = append(msgs, Translate(MsgLargeWorkDuration, language))
	}
	if o.MustStart != nil && o.SparePartDate != nil && o.MustStart.Before(*o.SparePartDate) {
		msgs = append(msgs, Translate(MsgSparePartConflict, language))
	}
	return msgs
}

// ValidatePeriod returns a message when the order's bounds fall outside the
// optimization period.
func (o *WorkOrder) ValidatePeriod(periodStart, periodEnd time.Time, language string) string {
	earliest, latest := o.EffectiveEarliest(), o.EffectiveLatest()
	if earliest == nil || latest == nil {
		return Translate(MsgOutsidePeriod, language)
	}
	if earliest.Before(periodStart) || earliest.After(periodEnd) ||
		latest.Before(periodStart) || latest.After(periodEnd) {
		return Translate(MsgOutsidePeriod, language)
	}
	return ""
}

// DropPenalty is the cost of leaving the order unscheduled on the current
// day. Pinned orders get the hard tiers; otherwise urgency grows as the
// deadline nears relative to the remaining optimization days.
func (o *WorkOrder) DropPenalty(current, periodEnd time.Time, base int64) int64 {
	if o.RequiredAssignment {
		return requiredAssignmentPenalty
	}
	if o.MustStart != nil {
		return mustStartPenalty
	}
	latest := o.EffectiveLatest()
	if latest == nil {
		return base
	}
	available := int64(periodEnd.Sub(current).Hours()/24) + 1
	remaining := int64(latest.Sub(current).Hours()/24) + 1
	if remaining < 1 {
		remaining = 1
	}
	return available * base / remaining
}

// SetAddress sets the order's routed location.
func (o *WorkOrder) SetAddress(address string, lat, lng float64) {
	o.address = orderAddress{Address: address, Lat: lat, Lng: lng}
}

func (o *WorkOrder) String() string {
	return fmt.Sprintf("WorkOrder(%s)", o.ID)
}

// ResetVisit clears the per-day visit state ahead of a new day's solve.
func (o *WorkOrder) ResetVisit() {
	o.visit.reset()
}
