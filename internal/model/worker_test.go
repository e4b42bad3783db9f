package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(id string) *Worker {
	return &Worker{
		ID:         id,
		Skills:     []string{"electric"},
		DayStart:   8 * 60,
		DayEnd:     17 * 60,
		PauseStart: 12 * 60,
		PauseEnd:   12*60 + 30,
	}
}

func TestWorkerIsWorking(t *testing.T) {
	w := newTestWorker("w1")
	day := date(2026, 3, 2, 0, 0)

	assert.True(t, w.IsWorking(day), "no shifts means every day is a working day")

	w.Shifts = []ShiftTime{{Date: day, DayStart: 9 * 60, DayEnd: 16 * 60}}
	assert.True(t, w.IsWorking(day))
	assert.False(t, w.IsWorking(day.AddDate(0, 0, 1)))
}

func TestWorkerShiftOverridesDefaults(t *testing.T) {
	w := newTestWorker("w1")
	day := date(2026, 3, 2, 0, 0)
	w.Shifts = []ShiftTime{{
		Date: day, DayStart: 10 * 60, DayEnd: 15 * 60,
		PauseStart: 12 * 60, PauseEnd: 13 * 60, PauseOptional: true,
	}}

	start, end := w.DayTimes(day)
	assert.Equal(t, 10*60, start)
	assert.Equal(t, 15*60, end)

	ps, pe, opt := w.PauseTimes(day)
	assert.Equal(t, 12*60, ps)
	assert.Equal(t, 13*60, pe)
	assert.True(t, opt)

	start, end = w.DayTimes(day.AddDate(0, 0, 1))
	assert.Equal(t, 8*60, start)
	assert.Equal(t, 17*60, end)
}

func TestWorkerBreaks(t *testing.T) {
	w := newTestWorker("w1")
	day := date(2026, 3, 2, 0, 0)
	w.BlockedTimes = []IntervalTime{
		{Date: day, Start: 14 * 60, End: 15 * 60},
		{Date: day.AddDate(0, 0, 1), Start: 9 * 60, End: 10 * 60},
	}

	breaks := w.Breaks(day)
	require.Len(t, breaks, 4)

	assert.Equal(t, BreakWindow{Start: 0, Duration: 8 * 60}, breaks[0])
	assert.Equal(t, BreakWindow{Start: 12 * 60, Duration: 30}, breaks[1])
	assert.Equal(t, BreakWindow{Start: 14 * 60, Duration: 60}, breaks[2])
	assert.Equal(t, BreakWindow{Start: 17 * 60, Duration: DayEndMinutes - 17*60}, breaks[3])
}

func TestWorkerHasSkill(t *testing.T) {
	w := newTestWorker("w1")
	assert.True(t, w.HasSkill("electric"))
	assert.False(t, w.HasSkill("plumbing"))
	assert.True(t, w.HasSkill(""), "empty skill matches everyone")
}

func TestWorkerTourTotals(t *testing.T) {
	w := newTestWorker("w1")
	a := &WorkOrder{ID: "a", Duration: 30}
	a.Visit().TravelDistance = 1000
	a.Visit().TravelTime = 10
	a.Visit().SlackTime = 5
	b := &WorkOrder{ID: "b", Duration: 45}
	b.Visit().TravelDistance = 2500
	b.Visit().TravelTime = 20

	w.AddTourStep(a)
	w.AddTourStep(b)

	require.Len(t, w.Tour, 2)
	assert.Equal(t, 3500.0, w.TotalDistance)
	assert.Equal(t, 30, w.TotalDrivingTime)
	assert.Equal(t, 5, w.TotalSlack)
	assert.Equal(t, 3500.0, w.Tour[1].DistanceSoFar)
	assert.Equal(t, 10, w.Tour[0].TravelTimeSoFar)

	w.ResetDay()
	assert.Empty(t, w.Tour)
	assert.Zero(t, w.TotalDistance)
}

func TestWorkerBreaksAll(t *testing.T) {
	w := newTestWorker("w1")
	w.PauseStart, w.PauseEnd = 0, 0
	breaks := w.Breaks(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.Len(t, breaks, 2, "no pause configured leaves only the shift edges")
}
