package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres persists jobs in a single table. Schema:
//
//	CREATE TABLE IF NOT EXISTS jobs (
//	    id         TEXT PRIMARY KEY,
//	    status     TEXT NOT NULL DEFAULT '',
//	    response   JSONB,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, created_at, updated_at) VALUES ($1, $2, $3, $3)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		job.ID, job.Status, now)
	return err
}

func (p *Postgres) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveResponse(ctx context.Context, id string, response []byte) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE jobs SET response = $2, updated_at = $3 WHERE id = $1`,
		id, response, time.Now())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	var response sql.NullString
	err := p.db.QueryRowContext(ctx,
		`SELECT id, status, response, created_at, updated_at FROM jobs WHERE id = $1`, id).
		Scan(&job.ID, &job.Status, &response, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if response.Valid {
		job.Response = []byte(response.String)
	}
	return &job, nil
}

func (p *Postgres) Close() error { return p.db.Close() }
