// Package model holds the planning domain: workers, work orders, the per-day
// problem instance and the small value types shared by the solver layers.
//
// All intra-day times are minutes since local midnight. Dates are time.Time
// values truncated to midnight; only their calendar day is significant.
package model

import (
	"fmt"
	"time"
)

const (
	// MinutesPerDay is the planning resolution of one day.
	MinutesPerDay = 24 * 60
	// DayEndMinutes is the last schedulable minute of a day.
	DayEndMinutes = MinutesPerDay - 1
)

// ClockOf returns the minutes since midnight of t.
func ClockOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatClock renders minutes since midnight as HH:MM. Values beyond the day
// boundary wrap, matching how tour end times past midnight are displayed.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	minutes %= MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DayKey renders the calendar day of t as an ISO date string.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IntervalTime is a date-scoped intra-day interval, used for ad hoc blocked
// times and per-day visit schedules.
type IntervalTime struct {
	Date  time.Time
	Start int
	End   int
}

// ShiftTime is one calendar day of a worker's shift plan: working interval
// plus an optional pause.
type ShiftTime struct {
	Date          time.Time
	DayStart      int
	DayEnd        int
	PauseStart    int
	PauseEnd      int
	PauseOptional bool
}

// BreakWindow is a non-working interval handed to the solver as a break:
// start minute, duration and whether the break may be skipped.
type BreakWindow struct {
	Start    int
	Duration int
	Optional bool
}

// SoftWindow is a preferred visit window with a per-minute lateness penalty.
type SoftWindow struct {
	Start   int
	End     int
	Penalty int64
}

// TourStep is one stop of a worker's reconstructed tour together with the
// running totals up to and including that stop.
type TourStep struct {
	Node            Node
	DistanceSoFar   float64
	TravelTimeSoFar int
	SlackSoFar      int
}

// Location is a deduplicated routing location.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// NodePriority pairs a node index (depot-offset already applied) with the
// order priority at that node.
type NodePriority struct {
	Node     int
	Priority int
}

// Dependency expresses that TaskID must be visited before each task in
// MustBeBefore, on the same tour.
type Dependency struct {
	TaskID       string   `json:"task_id"`
	MustBeBefore []string `json:"must_be_before"`
}

// ZoneRestriction limits which workers may serve a set of tasks.
type ZoneRestriction struct {
	TaskIDs        []string `json:"task_ids"`
	AllowedWorkers []string `json:"allowed_vehicles"`
}
