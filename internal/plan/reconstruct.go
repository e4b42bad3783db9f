// Package plan drives whole solves: request normalization into per-skill
// instances, the sequential per-day loop, parallel best-of-N orchestration,
// solution reconstruction and response assembly.
package plan

import (
	"fmt"
	"strings"

	"fieldroute/internal/engine"
	"fieldroute/internal/model"
	"fieldroute/internal/solver/constraint"
)

// Solution is the reconstructed outcome of one day's solve for one
// instance: per-worker tours plus day totals. It is the single writer of the
// visit state on the workers and orders it touches.
type Solution struct {
	Date      string
	Objective int64
	Workers   []*model.Worker

	TotalTourDistance float64
	TotalTourTime     int
	TotalWorkingTime  int
	TotalDrivingTime  int
}

// Reconstruct walks every vehicle route of an assignment, fills per-node
// visit state (start, travel, wait, slack), accumulates worker totals and
// marks the served orders scheduled.
func Reconstruct(inst *model.Instance, a *engine.Assignment) *Solution {
	sol := &Solution{
		Date:      model.DayKey(inst.CurrentDate),
		Objective: a.ObjectiveValue(),
	}
	mgrStart := func(v int) int64 { return int64(inst.NumNodes() + 2*v) }
	mgrEnd := func(v int) int64 { return int64(inst.NumNodes() + 2*v + 1) }

	for v, worker := range inst.Workers() {
		route := a.Route(v)
		if len(route) == 0 {
			continue
		}
		dayStart, dayEnd := worker.DayTimes(inst.CurrentDate)

		// the shared depot stop is copied per worker so visit state does
		// not bleed between tours
		startNode := copyStop(inst, inst.Starts[v], worker.ID)
		leave := int(a.Cumul(constraint.TimeDimension, mgrStart(v)))
		sv := startNode.Visit()
		sv.Date = sol.Date
		sv.StepNumber = 0
		if leave <= dayStart {
			sv.SetStart(leave)
		} else {
			sv.SetStart(dayStart)
			sv.WaitMinutes = leave - dayStart
		}
		worker.AddTourStep(startNode)

		prevIdx := inst.Starts[v]
		prevLeave := leave
		prevService := 0
		for i, nodeIdx := range route {
			node := inst.Node(int(nodeIdx))
			visit := node.Visit()
			start := int(a.Cumul(constraint.TimeDimension, nodeIdx))

			visit.Date = sol.Date
			visit.StepNumber = i + 1
			visit.SetStart(start)
			visit.TravelDistance = inst.Distances[prevIdx][nodeIdx]
			visit.TravelTime = inst.Times[prevIdx][nodeIdx]
			slack := start - prevLeave - visit.TravelTime - prevService
			if slack < 0 {
				slack = 0
			}
			visit.SlackTime = slack

			worker.AddTourStep(node)

			if o, ok := node.(*model.WorkOrder); ok {
				o.Scheduled = true
				o.AssignedWorker = worker.ID
			}
			prevIdx = int(nodeIdx)
			prevLeave = start
			prevService = node.ServiceDuration()
		}

		endNode := copyStop(inst, inst.Ends[v], worker.ID)
		endArrive := int(a.Cumul(constraint.TimeDimension, mgrEnd(v)))
		evisit := endNode.Visit()
		evisit.Date = sol.Date
		evisit.StepNumber = len(route) + 1
		evisit.SetStart(endArrive)
		evisit.TravelDistance = inst.Distances[prevIdx][inst.Ends[v]]
		evisit.TravelTime = inst.Times[prevIdx][inst.Ends[v]]
		if endArrive < dayEnd {
			evisit.WaitMinutes = dayEnd - endArrive
		}
		worker.AddTourStep(endNode)

		worker.TotalTourTime = endArrive - leave
		sol.TotalTourDistance += worker.TotalDistance
		sol.TotalTourTime += worker.TotalTourTime
		sol.TotalDrivingTime += worker.TotalDrivingTime
		sol.TotalWorkingTime += worker.TotalTourTime - worker.TotalDrivingTime

		sol.Workers = append(sol.Workers, worker)
	}
	return sol
}

func copyStop(inst *model.Instance, locIdx int, workerID string) *model.Stop {
	orig, ok := inst.Node(locIdx).(*model.Stop)
	loc := inst.Locations[locIdx]
	if ok && orig.Kind == model.KindHome {
		return model.NewHome(workerID, loc.Address, loc.Lat, loc.Lng)
	}
	return model.NewDepot(loc.Address, loc.Address, loc.Lat, loc.Lng)
}

// Visualize renders the day's tours as a compact log string.
func (s *Solution) Visualize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s objective=%d\n", s.Date, s.Objective)
	for _, w := range s.Workers {
		fmt.Fprintf(&b, "  %s:", w.ID)
		for _, step := range w.Tour {
			fmt.Fprintf(&b, " %s(%s)", step.Node.NodeID(), step.Node.Visit().StartClock())
		}
		fmt.Fprintf(&b, " dist=%.0fm drive=%dmin\n", w.TotalDistance, w.TotalDrivingTime)
	}
	return b.String()
}

// DiagnoseDropped attaches a human-readable reason to every order the whole
// period failed to schedule: never eligible in the period, blocked by its
// own validation errors, or genuinely dropped by the search.
func DiagnoseDropped(inst *model.Instance) []*model.WorkOrder {
	dropped := inst.DroppedOrders()
	for _, o := range dropped {
		switch {
		case len(o.Errors) > 0:
			o.Visit().DropReason = strings.Join(o.Errors, " | ")
		case !o.HasBeenScheduled:
			o.Visit().DropReason = model.Translate(model.MsgOutsidePeriod, inst.Language)
		default:
			o.Visit().DropReason = model.Translate(model.MsgDropped, inst.Language)
		}
	}
	return dropped
}
