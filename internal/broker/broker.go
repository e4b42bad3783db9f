// Package broker is the status side channel: the orchestrator publishes
// job status updates, interested consumers subscribe per job. Delivery is
// best-effort and last-write-wins.
package broker

import (
	"sync"
	"time"
)

// StatusUpdate is one status message for a job.
type StatusUpdate struct {
	JobID   string    `json:"job_id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Broker fans status updates out to per-job subscribers.
type Broker interface {
	Subscribe(jobID string) chan StatusUpdate
	Unsubscribe(jobID string, ch chan StatusUpdate)
	Publish(update StatusUpdate)
}

// Memory is the in-process broker.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[chan StatusUpdate]struct{}
}

func NewMemory() *Memory {
	return &Memory{subs: map[string]map[chan StatusUpdate]struct{}{}}
}

func (b *Memory) Subscribe(jobID string) chan StatusUpdate {
	ch := make(chan StatusUpdate, 8)
	b.mu.Lock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = map[chan StatusUpdate]struct{}{}
	}
	b.subs[jobID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Memory) Unsubscribe(jobID string, ch chan StatusUpdate) {
	b.mu.Lock()
	if m := b.subs[jobID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, jobID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish delivers to every subscriber that can take the update without
// blocking; slow consumers miss intermediate states.
func (b *Memory) Publish(update StatusUpdate) {
	b.mu.Lock()
	for ch := range b.subs[update.JobID] {
		select {
		case ch <- update:
		default:
		}
	}
	b.mu.Unlock()
}
