package plan

import (
	"sync"

	"github.com/rs/zerolog"

	"fieldroute/internal/model"
	"fieldroute/internal/solver"
)

// RunParallel fans each instance out to profile.Runs() independent runs over
// deep copies, executed by a bounded worker pool, and keeps the
// lowest-total-objective run per instance. Completion order never affects
// the selection.
func RunParallel(instances []*model.Instance, profile solver.SolveProfile, log zerolog.Logger) []*RunResult {
	runs := profile.Runs()

	type job struct {
		instIdx int
		run     int
		inst    *model.Instance
	}
	jobs := make([]job, 0, len(instances)*runs)
	for i, inst := range instances {
		for r := 0; r < runs; r++ {
			jobs = append(jobs, job{instIdx: i, run: r, inst: inst.Clone()})
		}
	}

	type outcome struct {
		instIdx int
		run     int
		result  *RunResult
	}
	results := make([]outcome, len(jobs))

	workers := profile.Workers(len(jobs))
	jobCh := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				j := jobs[idx]
				runProfile := profile
				if runProfile.Seed != 0 {
					runProfile.Seed += int64(j.run)
				}
				runLog := log.With().Int("run", j.run).Logger()
				results[idx] = outcome{
					instIdx: j.instIdx,
					run:     j.run,
					result:  RunSequential(j.inst, runProfile, solver.NewHistory(), runLog),
				}
			}
		}()
	}
	for idx := range jobs {
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	best := make([]*outcome, len(instances))
	for i := range results {
		o := results[i]
		cur := best[o.instIdx]
		if cur == nil || better(o.result, o.run, cur.result, cur.run) {
			best[o.instIdx] = &results[i]
		}
	}

	out := make([]*RunResult, len(instances))
	for i, o := range best {
		out[i] = o.result
	}
	return out
}

// better prefers runs that solved at least one day, then the lower summed
// objective, then the lower run index so ties break deterministically.
func better(a *RunResult, runA int, b *RunResult, runB int) bool {
	solvedA, solvedB := len(a.Summaries) > 0, len(b.Summaries) > 0
	if solvedA != solvedB {
		return solvedA
	}
	if a.Objective != b.Objective {
		return a.Objective < b.Objective
	}
	return runA < runB
}
