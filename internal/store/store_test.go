package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJobLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateJob(ctx, &Job{ID: "j1", Status: "queued"}))
	require.NoError(t, m.UpdateStatus(ctx, "j1", "optimizing"))
	require.NoError(t, m.SaveResponse(ctx, "j1", []byte(`{"ok":true}`)))

	job, err := m.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "optimizing", job.Status)
	assert.JSONEq(t, `{"ok":true}`, string(job.Response))
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}

func TestMemoryUnknownJob(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.UpdateStatus(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, m.SaveResponse(ctx, "missing", nil), ErrNotFound)
}

func TestStatusWriterThrottles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateJob(ctx, &Job{ID: "j1"}))

	w := NewStatusWriter(m, "j1", 1)
	require.NoError(t, w.Write(ctx, "first"))
	// burst is one; an immediate second write is dropped, not an error
	require.NoError(t, w.Write(ctx, "second"))

	job, err := m.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "first", job.Status)
}
