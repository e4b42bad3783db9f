package solver

// Monitor tuning defaults.
const (
	DefaultNoImprovementLimit = 100
	fixedPointTolerance       = 10
	maxCycleLength            = 10
	cycleTolerance            = 1
)

// NoImprovementMonitor watches the stream of objective values the search
// reports and decides when to cut it short: too many steps without a strict
// improvement, the best value repeating itself, or the recent history
// settling into a cycle. Termination is advisory; the caller wires it to the
// engine's stop flag.
type NoImprovementMonitor struct {
	limit int

	best          int64
	hasBest       bool
	noImprovement int
	fixedPoint    int
	history       []int64
}

// NewNoImprovementMonitor builds a monitor stopping after limit steps
// without improvement. A non-positive limit selects the default.
func NewNoImprovementMonitor(limit int) *NoImprovementMonitor {
	if limit <= 0 {
		limit = DefaultNoImprovementLimit
	}
	return &NoImprovementMonitor{limit: limit}
}

// BestCost returns the lowest objective observed so far.
func (m *NoImprovementMonitor) BestCost() (int64, bool) { return m.best, m.hasBest }

// Observe records one reported objective and returns true when the search
// should stop.
func (m *NoImprovementMonitor) Observe(objective int64) bool {
	m.history = append(m.history, objective)
	if keep := 3 * maxCycleLength; len(m.history) > keep {
		m.history = m.history[len(m.history)-keep:]
	}

	switch {
	case !m.hasBest || objective < m.best:
		m.best = objective
		m.hasBest = true
		m.noImprovement = 0
		m.fixedPoint = 0
	default:
		m.noImprovement++
		if objective == m.best {
			m.fixedPoint++
		} else {
			// only consecutive repeats of the best count as a fixed point
			m.fixedPoint = 0
		}
	}

	return m.noImprovement >= m.limit ||
		m.fixedPoint >= fixedPointTolerance ||
		m.cycleDetected()
}

// cycleDetected scans the history for a repeating pattern: three consecutive
// segments of the same length that match element-wise within the tolerance.
func (m *NoImprovementMonitor) cycleDetected() bool {
	n := len(m.history)
	maxLen := maxCycleLength
	if n/3 < maxLen {
		maxLen = n / 3
	}
	for k := 2; k <= maxLen; k++ {
		if m.segmentsSimilar(n, k) {
			return true
		}
	}
	return false
}

func (m *NoImprovementMonitor) segmentsSimilar(n, k int) bool {
	for i := 0; i < k; i++ {
		a := m.history[n-3*k+i]
		b := m.history[n-2*k+i]
		c := m.history[n-k+i]
		if abs64(a-b) > cycleTolerance || abs64(b-c) > cycleTolerance {
			return false
		}
	}
	return true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
