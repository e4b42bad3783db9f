package store

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process store used when no database is configured.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewMemory() *Memory {
	return &Memory{jobs: map[string]*Job{}}
}

func (m *Memory) CreateJob(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	cp := *job
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.jobs[job.ID] = &cp
	return nil
}

func (m *Memory) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SaveResponse(_ context.Context, id string, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Response = append([]byte(nil), response...)
	job.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *Memory) Close() error { return nil }
