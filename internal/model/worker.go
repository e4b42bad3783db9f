package model

import "time"

// Worker is a mobile field worker with a default shift, optional per-day
// shift overrides, blocked times, a skill set and the routed start/end
// addresses of their day.
type Worker struct {
	ID     string
	Name   string
	Skills []string

	// Defaults, in minutes since midnight, used on days without an override.
	DayStart      int
	DayEnd        int
	PauseStart    int
	PauseEnd      int
	PauseOptional bool

	// Shifts, when present, whitelist the working days: a worker with shifts
	// only works on the listed dates. A worker with no shifts works every day.
	Shifts       []ShiftTime
	BlockedTimes []IntervalTime

	StartAddress Location
	EndAddress   Location

	FixedCost int64

	// Per-day tour state, reset by ResetDay.
	Tour             []TourStep
	TotalDistance    float64
	TotalTourTime    int
	TotalDrivingTime int
	TotalSlack       int
}

// shiftOn returns the shift override for the given day, if any.
func (w *Worker) shiftOn(date time.Time) (ShiftTime, bool) {
	for _, s := range w.Shifts {
		if SameDay(s.Date, date) {
			return s, true
		}
	}
	return ShiftTime{}, false
}

// IsWorking reports whether the worker is on duty for the given day.
func (w *Worker) IsWorking(date time.Time) bool {
	if len(w.Shifts) == 0 {
		return true
	}
	_, ok := w.shiftOn(date)
	return ok
}

// DayTimes returns the working interval for the given day, preferring a
// per-day shift over the defaults.
func (w *Worker) DayTimes(date time.Time) (start, end int) {
	if s, ok := w.shiftOn(date); ok {
		return s.DayStart, s.DayEnd
	}
	return w.DayStart, w.DayEnd
}

// PauseTimes returns the pause interval and whether it may be skipped.
func (w *Worker) PauseTimes(date time.Time) (start, end int, optional bool) {
	if s, ok := w.shiftOn(date); ok {
		return s.PauseStart, s.PauseEnd, s.PauseOptional
	}
	return w.PauseStart, w.PauseEnd, w.PauseOptional
}

// Breaks returns the full set of non-working intervals for the given day:
// everything before the shift, the pause, date-matching blocked times and
// everything after the shift. Only the pause can be optional.
func (w *Worker) Breaks(date time.Time) []BreakWindow {
	dayStart, dayEnd := w.DayTimes(date)
	pauseStart, pauseEnd, pauseOptional := w.PauseTimes(date)

	breaks := []BreakWindow{
		{Start: 0, Duration: dayStart, Optional: false},
	}
	if pauseEnd > pauseStart {
		breaks = append(breaks, BreakWindow{
			Start:    pauseStart,
			Duration: pauseEnd - pauseStart,
			Optional: pauseOptional,
		})
	}
	for _, b := range w.BlockedTimes {
		if SameDay(b.Date, date) && b.End > b.Start {
			breaks = append(breaks, BreakWindow{Start: b.Start, Duration: b.End - b.Start})
		}
	}
	breaks = append(breaks, BreakWindow{
		Start:    dayEnd,
		Duration: DayEndMinutes - dayEnd,
		Optional: false,
	})
	return breaks
}

// HasSkill reports whether the worker carries the given skill. An empty skill
// matches every worker.
func (w *Worker) HasSkill(skill string) bool {
	if skill == "" {
		return true
	}
	for _, s := range w.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// AddTourStep appends a reconstructed stop to the worker's tour and folds its
// travel figures into the running totals.
func (w *Worker) AddTourStep(node Node) {
	v := node.Visit()
	w.TotalDistance += v.TravelDistance
	w.TotalDrivingTime += v.TravelTime
	w.TotalSlack += v.SlackTime
	w.Tour = append(w.Tour, TourStep{
		Node:            node,
		DistanceSoFar:   w.TotalDistance,
		TravelTimeSoFar: w.TotalDrivingTime,
		SlackSoFar:      w.TotalSlack,
	})
}

// ResetDay clears the per-day tour state ahead of a new day's solve.
func (w *Worker) ResetDay() {
	w.Tour = nil
	w.TotalDistance = 0
	w.TotalTourTime = 0
	w.TotalDrivingTime = 0
	w.TotalSlack = 0
}
