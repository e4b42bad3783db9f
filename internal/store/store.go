// Package store persists optimization jobs and their status messages. The
// solve pipeline writes status at coarse checkpoints; persistence failures
// are logged by callers, never raised into the solve.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// Job is one optimization request's persisted record.
type Job struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Response  json.RawMessage `json:"response,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store is the persistence collaborator used by the orchestrator.
type Store interface {
	CreateJob(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id, status string) error
	SaveResponse(ctx context.Context, id string, response []byte) error
	GetJob(ctx context.Context, id string) (*Job, error)
	Close() error
}
