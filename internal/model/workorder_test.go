package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func TestEffectiveBounds(t *testing.T) {
	o := &WorkOrder{
		EarliestStart:   tp(date(2026, 3, 2, 8, 0)),
		MachineEarliest: tp(date(2026, 3, 4, 0, 0)),
		SparePartDate:   tp(date(2026, 3, 3, 0, 0)),
		LatestEnd:       tp(date(2026, 3, 10, 17, 0)),
		MachineLatest:   tp(date(2026, 3, 8, 0, 0)),
	}
	require.NotNil(t, o.EffectiveEarliest())
	assert.Equal(t, date(2026, 3, 4, 0, 0), *o.EffectiveEarliest())
	assert.Equal(t, date(2026, 3, 8, 0, 0), *o.EffectiveLatest())

	o.MustStart = tp(date(2026, 3, 1, 9, 0))
	o.MustEnd = tp(date(2026, 3, 20, 0, 0))
	assert.Equal(t, date(2026, 3, 1, 9, 0), *o.EffectiveEarliest())
	assert.Equal(t, date(2026, 3, 20, 0, 0), *o.EffectiveLatest())
}

func TestTimeConstraintClampsOnBoundaryDaysOnly(t *testing.T) {
	o := &WorkOrder{
		VisitingHourStart: 8 * 60,
		VisitingHourEnd:   18 * 60,
		EarliestStart:     tp(date(2026, 3, 2, 10, 30)),
		LatestEnd:         tp(date(2026, 3, 4, 15, 0)),
	}

	start, end := o.TimeConstraint(date(2026, 3, 2, 0, 0))
	assert.Equal(t, 10*60+30, start)
	assert.Equal(t, 18*60, end)

	start, end = o.TimeConstraint(date(2026, 3, 3, 0, 0))
	assert.Equal(t, 8*60, start)
	assert.Equal(t, 18*60, end)

	start, end = o.TimeConstraint(date(2026, 3, 4, 0, 0))
	assert.Equal(t, 8*60, start)
	assert.Equal(t, 15*60, end)
}

func TestVisitsScheduleOverridesDefaults(t *testing.T) {
	o := &WorkOrder{
		VisitingHourStart: 8 * 60,
		VisitingHourEnd:   18 * 60,
		VisitsSchedule: []IntervalTime{
			{Date: date(2026, 3, 3, 0, 0), Start: 13 * 60, End: 16 * 60},
		},
	}
	start, end := o.TimeConstraint(date(2026, 3, 3, 0, 0))
	assert.Equal(t, 13*60, start)
	assert.Equal(t, 16*60, end)

	start, end = o.TimeConstraint(date(2026, 3, 4, 0, 0))
	assert.Equal(t, 8*60, start)
	assert.Equal(t, 18*60, end)
}

func TestEligibilityMarksHasBeenScheduled(t *testing.T) {
	o := &WorkOrder{
		VisitingHourEnd: DayEndMinutes,
		EarliestStart:   tp(date(2026, 3, 2, 0, 0)),
		LatestEnd:       tp(date(2026, 3, 4, 0, 0)),
		Duration:        60,
	}

	assert.False(t, o.EligibleOn(date(2026, 3, 1, 0, 0), "en"))
	assert.False(t, o.HasBeenScheduled)

	assert.True(t, o.EligibleOn(date(2026, 3, 3, 0, 0), "en"))
	assert.True(t, o.HasBeenScheduled)

	o.Scheduled = true
	assert.False(t, o.EligibleOn(date(2026, 3, 3, 0, 0), "en"))
	assert.True(t, o.HasBeenScheduled)
}

func TestWorkOrderRoutedLocation(t *testing.T) {
	o := &WorkOrder{ID: "wo-1", Duration: 45}
	o.SetAddress("Hauptstr. 12", 52.51, 13.4)

	assert.Equal(t, "wo-1", o.NodeID())
	assert.Equal(t, "Hauptstr. 12", o.NodeAddress())
	lat, lng := o.LatLng()
	assert.Equal(t, 52.51, lat)
	assert.Equal(t, 13.4, lng)
	assert.Equal(t, 45, o.ServiceDuration())
}

func TestValidationErrors(t *testing.T) {
	o := &WorkOrder{
		VisitingHourStart: 9 * 60,
		VisitingHourEnd:   11 * 60,
		Duration:          180,
	}
	msgs := o.ValidationErrors(date(2026, 3, 2, 0, 0), "en")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "larger than available")

	o.MustStart = tp(date(2026, 3, 2, 9, 0))
	o.SparePartDate = tp(date(2026, 3, 5, 0, 0))
	msgs = o.ValidationErrors(date(2026, 3, 2, 0, 0), "en")
	assert.Len(t, msgs, 2)
}

func TestDropPenaltyTiers(t *testing.T) {
	current := date(2026, 3, 2, 0, 0)
	periodEnd := date(2026, 3, 6, 0, 0)

	urgent := &WorkOrder{LatestEnd: tp(date(2026, 3, 2, 23, 0))}
	relaxed := &WorkOrder{LatestEnd: tp(date(2026, 3, 6, 23, 0))}
	assert.Greater(t, urgent.DropPenalty(current, periodEnd, DefaultDropPenalty),
		relaxed.DropPenalty(current, periodEnd, DefaultDropPenalty))

	pinned := &WorkOrder{MustStart: tp(current)}
	assert.Equal(t, int64(1e10), pinned.DropPenalty(current, periodEnd, DefaultDropPenalty))

	required := &WorkOrder{RequiredAssignment: true, MustStart: tp(current)}
	assert.Equal(t, int64(1e12), required.DropPenalty(current, periodEnd, DefaultDropPenalty))
}

func TestPreferredWindowOnlyOnItsDay(t *testing.T) {
	o := &WorkOrder{
		VisitingHourStart: 8 * 60,
		VisitingHourEnd:   18 * 60,
		PreferredStart:    tp(date(2026, 3, 3, 7, 0)),
		PreferredEnd:      tp(date(2026, 3, 3, 12, 0)),
		SoftWindowPenalty: 100,
	}

	assert.Nil(t, o.PreferredWindow(date(2026, 3, 4, 0, 0)))

	sw := o.PreferredWindow(date(2026, 3, 3, 0, 0))
	require.NotNil(t, sw)
	assert.Equal(t, 8*60, sw.Start)
	assert.Equal(t, 12*60, sw.End)
	assert.Equal(t, int64(100), sw.Penalty)
}

func TestConvertDuration(t *testing.T) {
	v, err := ConvertDuration(90, "minutes")
	require.NoError(t, err)
	assert.Equal(t, 90, v)

	v, err = ConvertDuration(1.5, "hours")
	require.NoError(t, err)
	assert.Equal(t, 90, v)

	v, err = ConvertDuration(3600, "seconds")
	require.NoError(t, err)
	assert.Equal(t, 60, v)

	_, err = ConvertDuration(1, "days")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:05", FormatClock(8*60+5))
	assert.Equal(t, "00:30", FormatClock(MinutesPerDay+30))
	assert.Equal(t, "00:00", FormatClock(-10))
}
