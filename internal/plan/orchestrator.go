package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldroute/internal/broker"
	"fieldroute/internal/config"
	"fieldroute/internal/metrics"
	"fieldroute/internal/model"
	"fieldroute/internal/solver"
	"fieldroute/internal/store"
)

// Job statuses written to the store.
const (
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Orchestrator runs optimization jobs end to end: normalize the request into
// per-skill instances, fan out parallel runs, merge the best run per skill
// into one response, and persist it. Status updates go to the store and the
// broker at coarse checkpoints; both channels are best-effort.
type Orchestrator struct {
	store  store.Store
	broker broker.Broker
	cfg    config.SolverConfig
	log    zerolog.Logger
}

func NewOrchestrator(st store.Store, br broker.Broker, cfg config.SolverConfig, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: st, broker: br, cfg: cfg, log: log}
}

// NewJob registers a fresh job and returns its id.
func (o *Orchestrator) NewJob(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := o.store.CreateJob(ctx, &store.Job{ID: id, Status: StatusQueued}); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return id, nil
}

// Run executes one optimization job. Input errors abort the whole request;
// a failed skill instance only loses that skill and is reported in the
// response errors.
func (o *Orchestrator) Run(ctx context.Context, jobID string, req *Request) (*Response, error) {
	log := o.log.With().Str("job_id", jobID).Logger()
	status := store.NewStatusWriter(o.store, jobID, 5)

	o.checkpoint(ctx, status, jobID, req.Language, model.MsgStarted, log)
	o.checkpoint(ctx, status, jobID, req.Language, model.MsgPreprocessing, log)

	instances, inputErrors, err := req.Normalize()
	if err != nil {
		if serr := o.store.UpdateStatus(ctx, jobID, StatusFailed); serr != nil {
			log.Warn().Err(serr).Msg("status update failed")
		}
		return nil, err
	}
	for _, inst := range instances {
		o.applyConfig(inst)
	}

	profile := o.profileFor(req)
	for _, inst := range instances {
		msg := fmt.Sprintf(model.Translate(model.MsgOptimizingSkill, req.Language), inst.Skill)
		o.checkpoint(ctx, status, jobID, req.Language, msg, log)
	}

	started := time.Now()
	results := RunParallel(instances, profile, log)

	resp := &Response{Message: map[string][]WorkerTour{}, Errors: inputErrors}
	for _, res := range results {
		metrics.SolveDuration.WithLabelValues(res.Skill).Observe(time.Since(started).Seconds())
		o.mergeResult(resp, res, log)
	}

	if err := o.persist(ctx, jobID, resp); err != nil {
		log.Warn().Err(err).Msg("response persistence failed")
	}
	o.checkpoint(ctx, status, jobID, req.Language, model.MsgFinished, log)
	if err := o.store.UpdateStatus(ctx, jobID, StatusFinished); err != nil {
		log.Warn().Err(err).Msg("status update failed")
	}
	return resp, nil
}

// mergeResult folds one skill instance's best run into the response. An
// errored instance contributes only an error line; its siblings are
// unaffected.
func (o *Orchestrator) mergeResult(resp *Response, res *RunResult, log zerolog.Logger) {
	if res.Err != nil {
		metrics.SolveRuns.WithLabelValues(res.Skill, "error").Inc()
		log.Error().Err(res.Err).Str("skill", res.Skill).Msg("skill solve failed")
		resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", res.Skill, res.Err))
		return
	}
	metrics.SolveRuns.WithLabelValues(res.Skill, "ok").Inc()

	scheduled := 0
	for day, tours := range res.Tours {
		resp.Message[day] = append(resp.Message[day], tours...)
		for _, t := range tours {
			for _, step := range t.TourSteps {
				// steps 0 and last are the start/end pseudo-stops
				if step.StepNumber > 0 && step.StepNumber < len(t.TourSteps)-1 {
					scheduled++
				}
			}
		}
	}
	for _, s := range res.Summaries {
		resp.Performance.Add(s)
	}
	resp.Dropped = append(resp.Dropped, res.Dropped...)

	metrics.ScheduledOrders.WithLabelValues(res.Skill).Add(float64(scheduled))
	for _, d := range res.Dropped {
		metrics.DroppedOrders.WithLabelValues(res.Skill, d.Reason).Inc()
	}
}

// checkpoint writes a status update to both channels; failures are logged,
// never raised.
func (o *Orchestrator) checkpoint(ctx context.Context, w *store.StatusWriter, jobID, lang, msg string, log zerolog.Logger) {
	text := model.Translate(msg, lang)
	if err := w.Write(ctx, text); err != nil {
		log.Warn().Err(err).Str("status", text).Msg("status write failed")
	}
	if o.broker != nil {
		o.broker.Publish(broker.StatusUpdate{JobID: jobID, Message: text, At: time.Now()})
	}
	log.Info().Msg(text)
}

func (o *Orchestrator) persist(ctx context.Context, jobID string, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return o.store.SaveResponse(ctx, jobID, data)
}

// applyConfig pushes the configured tunables onto a normalized instance.
func (o *Orchestrator) applyConfig(inst *model.Instance) {
	inst.SlackAllow = o.cfg.SlackAllow
	inst.Tolerance = o.cfg.Tolerance
	inst.DrivingSpeedKmh = o.cfg.DrivingSpeedKmh
	inst.DropPenaltyBase = o.cfg.DropPenaltyBase
	if len(inst.TimeMatrix) > 0 || len(inst.DistanceMatrix) > 0 {
		inst.DistanceMethod = model.MethodMatrix
	}
}

// profileFor maps the request's quality and target onto a solve profile.
func (o *Orchestrator) profileFor(req *Request) solver.SolveProfile {
	p := solver.SolveProfile{
		TimeLimit:          o.cfg.TimeLimit,
		NoImprovementLimit: o.cfg.NoImprovementLimit,
		Deterministic:      req.Deterministic(),
		Seed:               req.Seed,
		NumRuns:            o.cfg.NumRuns,
		MaxWorkers:         o.cfg.MaxWorkers,
	}
	// reproducible runs need a pinned seed even when the caller gave none
	if p.Deterministic && p.Seed == 0 {
		p.Seed = 1
	}
	switch req.Quality {
	case solver.TierFast, solver.TierOptimized, solver.TierBest:
		p.Tier = req.Quality
	}
	if req.TimeLimitSeconds > 0 {
		p.TimeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}

	p.Options = solver.Options{
		DistanceObjective: req.Target == TargetDistance || req.Target == TargetHaversine,
		UseVehicleCost:    o.cfg.FixedVehicleCost > 0,
		UsePrioritySoft:   true,
		WalkingThresholdM: o.cfg.WalkingMaxM,
		WalkingSpeedKmh:   o.cfg.WalkingSpeedKmh,
		FixedVehicleCost:  o.cfg.FixedVehicleCost,
	}
	return p
}
