// Package engine is a self-contained vehicle routing solver. A Model is
// declared through callbacks, dimensions, disjunctions and per-index vehicle
// restrictions, then solved with a named construction strategy and a
// metaheuristic improvement loop under a time limit.
//
// Internal indices follow the usual routing convention: problem nodes occupy
// [0, numNodes); vehicle v starts at numNodes+2v and ends at numNodes+2v+1.
// Callbacks receive internal indices and translate them back through the
// IndexManager.
package engine

// IndexManager translates between problem node numbers and the solver's
// internal indices.
type IndexManager struct {
	numNodes    int
	numVehicles int
	starts      []int
	ends        []int
}

// NewIndexManager builds a manager for numNodes problem nodes and one
// start/end node number per vehicle.
func NewIndexManager(numNodes, numVehicles int, starts, ends []int) *IndexManager {
	return &IndexManager{
		numNodes:    numNodes,
		numVehicles: numVehicles,
		starts:      starts,
		ends:        ends,
	}
}

func (m *IndexManager) NumNodes() int    { return m.numNodes }
func (m *IndexManager) NumVehicles() int { return m.numVehicles }

// Size is the count of internal indices.
func (m *IndexManager) Size() int { return m.numNodes + 2*m.numVehicles }

// NodeToIndex maps a problem node to its internal index.
func (m *IndexManager) NodeToIndex(node int) int64 { return int64(node) }

// IndexToNode maps an internal index back to the problem node it visits.
// Start and end indices resolve to the vehicle's start/end node numbers.
func (m *IndexManager) IndexToNode(index int64) int {
	if index < int64(m.numNodes) {
		return int(index)
	}
	v := (int(index) - m.numNodes) / 2
	if (int(index)-m.numNodes)%2 == 0 {
		return m.starts[v]
	}
	return m.ends[v]
}

// Start returns the internal index of vehicle v's route start.
func (m *IndexManager) Start(v int) int64 { return int64(m.numNodes + 2*v) }

// End returns the internal index of vehicle v's route end.
func (m *IndexManager) End(v int) int64 { return int64(m.numNodes + 2*v + 1) }

// IsStart reports whether index is some vehicle's route start.
func (m *IndexManager) IsStart(index int64) bool {
	return index >= int64(m.numNodes) && (int(index)-m.numNodes)%2 == 0
}

// IsEnd reports whether index is some vehicle's route end.
func (m *IndexManager) IsEnd(index int64) bool {
	return index >= int64(m.numNodes) && (int(index)-m.numNodes)%2 == 1
}

// VehicleOf returns the vehicle owning a start or end index, or -1 for a
// plain node index.
func (m *IndexManager) VehicleOf(index int64) int {
	if index < int64(m.numNodes) {
		return -1
	}
	return (int(index) - m.numNodes) / 2
}
