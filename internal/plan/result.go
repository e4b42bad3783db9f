package plan

import (
	"fieldroute/internal/model"
)

// TourStep is one serialized stop of a worker's tour.
type TourStep struct {
	StepNumber     int     `json:"step_number"`
	ID             string  `json:"id"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	ServiceStart   string  `json:"service_start"`
	ServiceEnd     string  `json:"service_end"`
	TravelDistance float64 `json:"travel_distance"`
	TravelTime     int     `json:"travel_time"`
	WaitTime       int     `json:"wait_time"`
	SlackTime      int     `json:"slack_time"`
}

// WorkerTour is one worker's serialized day.
type WorkerTour struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	Address          string     `json:"address"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	TotalDistance    float64    `json:"total_distance"`
	TotalTourTime    int        `json:"total_tour_time"`
	TotalWorkingTime int        `json:"total_working_time"`
	TotalDrivingTime int        `json:"total_driving_time"`
	TourSteps        []TourStep `json:"tour_steps"`
}

// DroppedOrder is an unscheduled order with its diagnosed reason.
type DroppedOrder struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Summary is one day's numeric totals; Performance sums them across days.
type Summary struct {
	TotalTourDistance float64 `json:"total_tour_distance"`
	TotalTourTime     int     `json:"total_tour_time"`
	TotalWorkingTime  int     `json:"total_working_time"`
	TotalDrivingTime  int     `json:"total_driving_time"`
	ObjectiveValue    int64   `json:"objective_value"`
}

// Performance is the summed counters of every solved day.
type Performance struct {
	TotalTourDistance float64 `json:"total_tour_distance"`
	TotalTourTime     int     `json:"total_tour_time"`
	TotalWorkingTime  int     `json:"total_working_time"`
	TotalDrivingTime  int     `json:"total_driving_time"`
	ObjectiveValue    int64   `json:"objective_value"`
}

// Add folds a day summary into the running totals.
func (p *Performance) Add(s Summary) {
	p.TotalTourDistance += s.TotalTourDistance
	p.TotalTourTime += s.TotalTourTime
	p.TotalWorkingTime += s.TotalWorkingTime
	p.TotalDrivingTime += s.TotalDrivingTime
	p.ObjectiveValue += s.ObjectiveValue
}

// Response is the externally visible result: day-keyed tours, dropped
// orders with reasons, accumulated errors, summed performance counters.
type Response struct {
	Message     map[string][]WorkerTour `json:"message"`
	Dropped     []DroppedOrder          `json:"dropped"`
	Errors      []string                `json:"errors"`
	Performance Performance             `json:"performance"`
}

// snapshotTours serializes a day solution while the workers still carry
// their tours; InitDay wipes them the next day.
func snapshotTours(sol *Solution) []WorkerTour {
	var out []WorkerTour
	for _, w := range sol.Workers {
		wt := WorkerTour{
			ID:               w.ID,
			Name:             w.Name,
			Address:          w.StartAddress.Address,
			Lat:              w.StartAddress.Lat,
			Lng:              w.StartAddress.Lng,
			TotalDistance:    w.TotalDistance,
			TotalTourTime:    w.TotalTourTime,
			TotalWorkingTime: w.TotalTourTime - w.TotalDrivingTime,
			TotalDrivingTime: w.TotalDrivingTime,
		}
		for _, step := range w.Tour {
			node := step.Node
			visit := node.Visit()
			lat, lng := node.LatLng()
			wt.TourSteps = append(wt.TourSteps, TourStep{
				StepNumber:     visit.StepNumber,
				ID:             node.NodeID(),
				Address:        node.NodeAddress(),
				Lat:            lat,
				Lng:            lng,
				ServiceStart:   visit.StartClock(),
				ServiceEnd:     node.ServiceEndClock(),
				TravelDistance: visit.TravelDistance,
				TravelTime:     visit.TravelTime,
				WaitTime:       visit.WaitMinutes,
				SlackTime:      visit.SlackTime,
			})
		}
		out = append(out, wt)
	}
	return out
}

func (s *Solution) summary() Summary {
	return Summary{
		TotalTourDistance: s.TotalTourDistance,
		TotalTourTime:     s.TotalTourTime,
		TotalWorkingTime:  s.TotalWorkingTime,
		TotalDrivingTime:  s.TotalDrivingTime,
		ObjectiveValue:    s.Objective,
	}
}

func droppedDTOs(orders []*model.WorkOrder) []DroppedOrder {
	var out []DroppedOrder
	for _, o := range orders {
		out = append(out, DroppedOrder{ID: o.ID, Reason: o.Visit().DropReason})
	}
	return out
}
