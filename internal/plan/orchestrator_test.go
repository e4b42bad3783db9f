package plan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldroute/internal/broker"
	"fieldroute/internal/config"
	"fieldroute/internal/model"
	"fieldroute/internal/store"
)

func testSolverConfig() config.SolverConfig {
	cfg := &config.Config{}
	cfg.Normalize()
	s := cfg.Solver
	s.TimeLimit = 300 * time.Millisecond
	s.NoImprovementLimit = 30
	return s
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *store.Memory, *broker.Memory) {
	t.Helper()
	st := store.NewMemory()
	br := broker.NewMemory()
	return NewOrchestrator(st, br, testSolverConfig(), zerolog.Nop()), st, br
}

// scheduledIDs collects the order ids present on any tour of the response.
func scheduledIDs(resp *Response) map[string]int {
	out := map[string]int{}
	for _, tours := range resp.Message {
		for _, tour := range tours {
			for _, step := range tour.TourSteps {
				if step.StepNumber == 0 || step.StepNumber == len(tour.TourSteps)-1 {
					continue
				}
				out[step.ID]++
			}
		}
	}
	return out
}

func TestOrchestratorEndToEnd(t *testing.T) {
	o, st, br := newTestOrchestrator(t)
	ctx := context.Background()

	jobID, err := o.NewJob(ctx)
	require.NoError(t, err)
	updates := br.Subscribe(jobID)
	defer br.Unsubscribe(jobID, updates)

	req := &Request{
		PeriodStart: day(0),
		Horizon:     1,
		Seed:        7,
		Depot:       &LocationSpec{Address: "Depot", Lat: 52.5, Lng: 13.4},
		Workers: []WorkerSpec{
			{ID: "w1", Skills: []string{"electric"}, DayStart: 480, DayEnd: 1020},
		},
		Orders: []OrderSpec{
			{ID: "o1", Skill: "electric", Duration: 30, Location: LocationSpec{Address: "A", Lat: 52.51, Lng: 13.40}},
			{ID: "o2", Skill: "electric", Duration: 45, Location: LocationSpec{Address: "B", Lat: 52.52, Lng: 13.41}},
			{ID: "o3", Skill: "electric", Duration: 20, Location: LocationSpec{Address: "C", Lat: 52.51, Lng: 13.42}},
		},
	}

	resp, err := o.Run(ctx, jobID, req)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Empty(t, resp.Dropped)
	assert.Empty(t, resp.Errors)

	tours := resp.Message["2026-03-01"]
	require.Len(t, tours, 1)
	// depot start + three orders + depot end
	assert.Len(t, tours[0].TourSteps, 5)

	ids := scheduledIDs(resp)
	assert.Equal(t, map[string]int{"o1": 1, "o2": 1, "o3": 1}, ids)
	assert.Greater(t, resp.Performance.ObjectiveValue, int64(0))

	job, err := st.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, job.Status)
	var saved Response
	require.NoError(t, json.Unmarshal(job.Response, &saved))
	assert.Equal(t, resp.Performance, saved.Performance)

	assert.NotEmpty(t, updates)
}

func TestOrchestratorServesHighPriorityFirst(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	req := &Request{
		PeriodStart: day(0),
		Horizon:     1,
		Seed:        11,
		Depot:       &LocationSpec{Address: "Depot", Lat: 52.5, Lng: 13.4},
		Workers: []WorkerSpec{
			{ID: "w1", Skills: []string{"electric"}, DayStart: 480, DayEnd: 1020},
		},
		Orders: []OrderSpec{
			{ID: "low", Skill: "electric", Priority: 5, Duration: 30, Location: LocationSpec{Address: "Site", Lat: 52.51, Lng: 13.41}},
			{ID: "high", Skill: "electric", Priority: 1, Duration: 30, Location: LocationSpec{Address: "Site", Lat: 52.51, Lng: 13.41}},
		},
	}

	jobID, err := o.NewJob(context.Background())
	require.NoError(t, err)
	resp, err := o.Run(context.Background(), jobID, req)
	require.NoError(t, err)

	steps := map[string]int{}
	for _, tour := range resp.Message["2026-03-01"] {
		for _, step := range tour.TourSteps {
			steps[step.ID] = step.StepNumber
		}
	}
	require.Contains(t, steps, "high")
	require.Contains(t, steps, "low")
	assert.Less(t, steps["high"], steps["low"])
}

func TestOrchestratorReportsImpossibleOrder(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	req := &Request{
		PeriodStart: day(0),
		Horizon:     1,
		Seed:        5,
		Depot:       &LocationSpec{Address: "Depot", Lat: 52.5, Lng: 13.4},
		Workers: []WorkerSpec{
			{ID: "w1", Skills: []string{"electric"}, DayStart: 480, DayEnd: 1020},
		},
		Orders: []OrderSpec{
			{ID: "ok", Skill: "electric", Duration: 30, Location: LocationSpec{Address: "A", Lat: 52.51, Lng: 13.40}},
			{
				ID: "tight", Skill: "electric", Duration: 120,
				VisitingHourStart: 600, VisitingHourEnd: 630,
				Location: LocationSpec{Address: "B", Lat: 52.52, Lng: 13.41},
			},
		},
	}

	jobID, err := o.NewJob(context.Background())
	require.NoError(t, err)
	resp, err := o.Run(context.Background(), jobID, req)
	require.NoError(t, err)

	ids := scheduledIDs(resp)
	assert.Equal(t, map[string]int{"ok": 1}, ids)

	require.Len(t, resp.Dropped, 1)
	assert.Equal(t, "tight", resp.Dropped[0].ID)
	assert.Contains(t, resp.Dropped[0].Reason, "larger than available")
}

func TestOrchestratorDropReasons(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	mustStart := day(0).Add(10 * time.Hour)
	future := day(30)
	futureEnd := day(31)
	req := &Request{
		PeriodStart: day(0),
		Horizon:     2,
		Seed:        5,
		Depot:       &LocationSpec{Address: "Depot", Lat: 52.5, Lng: 13.4},
		Workers: []WorkerSpec{
			{ID: "w1", Skills: []string{"electric"}, DayStart: 480, DayEnd: 1020},
		},
		Orders: []OrderSpec{
			// pinned inside the period but no worker carries the skill
			{ID: "orphan", Skill: "hvac", Duration: 30, MustStart: &mustStart, Location: LocationSpec{Address: "A", Lat: 52.51, Lng: 13.40}},
			// bounds entirely after the period
			{ID: "late", Skill: "electric", Duration: 30, EarliestStart: &future, LatestEnd: &futureEnd, Location: LocationSpec{Address: "B", Lat: 52.52, Lng: 13.41}},
		},
	}

	jobID, err := o.NewJob(context.Background())
	require.NoError(t, err)
	resp, err := o.Run(context.Background(), jobID, req)
	require.NoError(t, err)

	reasons := map[string]string{}
	for _, d := range resp.Dropped {
		reasons[d.ID] = d.Reason
	}
	require.Contains(t, reasons, "orphan")
	require.Contains(t, reasons, "late")

	outside := model.Translate(model.MsgOutsidePeriod, "")
	assert.Contains(t, reasons["orphan"], "skill match")
	assert.NotEqual(t, outside, reasons["orphan"])
	assert.Equal(t, outside, reasons["late"])
}

func TestOrchestratorDeterministicResponses(t *testing.T) {
	req := &Request{
		PeriodStart: day(0),
		Horizon:     1,
		Seed:        3,
		Depot:       &LocationSpec{Address: "Depot", Lat: 52.5, Lng: 13.4},
		Workers: []WorkerSpec{
			{ID: "w1", Skills: []string{"electric"}, DayStart: 480, DayEnd: 1020},
		},
		Orders: []OrderSpec{
			{ID: "o1", Skill: "electric", Duration: 30, Location: LocationSpec{Address: "A", Lat: 52.51, Lng: 13.40}},
			{ID: "o2", Skill: "electric", Duration: 45, Location: LocationSpec{Address: "B", Lat: 52.52, Lng: 13.41}},
			{ID: "o3", Skill: "electric", Duration: 20, Location: LocationSpec{Address: "C", Lat: 52.51, Lng: 13.42}},
		},
	}

	run := func() []byte {
		o, _, _ := newTestOrchestrator(t)
		jobID, err := o.NewJob(context.Background())
		require.NoError(t, err)
		resp, err := o.Run(context.Background(), jobID, req)
		require.NoError(t, err)
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		return data
	}

	assert.JSONEq(t, string(run()), string(run()))
}

func TestMergeResultIsolatesInstanceError(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	resp := &Response{Message: map[string][]WorkerTour{}}

	o.mergeResult(resp, &RunResult{
		Skill: "electric",
		Err:   errors.New("model build failed: apply time_window: missing time window for node 3"),
	}, zerolog.Nop())
	o.mergeResult(resp, &RunResult{
		Skill:     "plumbing",
		Tours:     map[string][]WorkerTour{"2026-03-01": {{ID: "w2"}}},
		Summaries: map[string]Summary{"2026-03-01": {ObjectiveValue: 42}},
	}, zerolog.Nop())

	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "electric")
	assert.Contains(t, resp.Errors[0], "model build failed")
	// the errored instance does not block its sibling
	assert.Len(t, resp.Message["2026-03-01"], 1)
	assert.Equal(t, int64(42), resp.Performance.ObjectiveValue)
}

func TestOrchestratorRejectsInvalidRequest(t *testing.T) {
	o, st, _ := newTestOrchestrator(t)
	ctx := context.Background()

	jobID, err := o.NewJob(ctx)
	require.NoError(t, err)

	_, err = o.Run(ctx, jobID, &Request{Horizon: 1})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	job, err := st.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
}
