package model

// Node is any stop in the routing graph: a depot or home pseudo-stop used as
// a route start/end, or a schedulable work order. Reconstruction writes the
// per-day visit state through Visit.
type Node interface {
	NodeID() string
	NodeAddress() string
	LatLng() (lat, lng float64)
	// ServiceDuration is the on-site minutes at this stop; zero for
	// depot/home pseudo-stops.
	ServiceDuration() int
	Visit() *Visit
	// ServiceEndClock renders the HH:MM at which the stop is left.
	ServiceEndClock() string
}

// Visit is the mutable per-day state of a node within a tour. It is reset
// when the owning instance is initialized for a new day.
type Visit struct {
	StepNumber     int
	Date           string
	TravelDistance float64
	TravelTime     int
	WaitMinutes    int
	SlackTime      int
	DropReason     string

	startSet bool
	start    int
}

// SetStart records the assigned visit start in minutes since midnight.
func (v *Visit) SetStart(minutes int) {
	v.start = minutes
	v.startSet = true
}

// Start returns the assigned visit start and whether one has been set.
func (v *Visit) Start() (int, bool) {
	return v.start, v.startSet
}

// StartClock renders the assigned visit start as HH:MM, or "" when unset.
func (v *Visit) StartClock() string {
	if !v.startSet {
		return ""
	}
	return FormatClock(v.start)
}

func (v *Visit) reset() {
	*v = Visit{}
}

// StopKind discriminates the pseudo-stop variants.
type StopKind string

const (
	KindDepot StopKind = "depot"
	KindHome  StopKind = "home"
)

// Stop is a route start/end pseudo-stop with zero service duration. The
// planner waits at a stop when the tour starts after the shift begins or
// ends before the shift is over.
type Stop struct {
	Kind    StopKind
	ID      string
	Address string
	Lat     float64
	Lng     float64

	visit Visit
}

// NewDepot builds a depot pseudo-stop.
func NewDepot(id, address string, lat, lng float64) *Stop {
	return &Stop{Kind: KindDepot, ID: id, Address: address, Lat: lat, Lng: lng}
}

// NewHome builds a home pseudo-stop for a worker. The id is prefixed so home
// stops never collide with depot ids in the response.
func NewHome(workerID, address string, lat, lng float64) *Stop {
	return &Stop{Kind: KindHome, ID: "Home-" + workerID, Address: address, Lat: lat, Lng: lng}
}

func (s *Stop) NodeID() string { return s.ID }
func (s *Stop) NodeAddress() string { return s.Address }
func (s *Stop) LatLng() (float64, float64) { return s.Lat, s.Lng }
func (s *Stop) ServiceDuration() int { return 0 }
func (s *Stop) Visit() *Visit { return &s.visit }

func (s *Stop) ServiceEndClock() string {
	start, ok := s.visit.Start()
	if !ok {
		return ""
	}
	return FormatClock(start + s.visit.WaitMinutes)
}
