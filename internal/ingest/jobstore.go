package ingest

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

// MemoryJobStore is an in-process JobStore used by tests and local dry
// runs.
type MemoryJobStore struct {
	mu   sync.Mutex
	jobs map[string]model.Job
}

// NewMemoryJobStore builds an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]model.Job)}
}

func (m *MemoryJobStore) Save(_ context.Context, job model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *MemoryJobStore) Load(_ context.Context, jobID string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return model.Job{}, correrr.NotFound(jobID, errJobNotFound{id: jobID})
	}
	return job, nil
}

type errJobNotFound struct{ id string }

func (e errJobNotFound) Error() string { return "job not found: " + e.id }

var _ JobStore = (*MemoryJobStore)(nil)

// PostgresJobStore persists Job records to the small Job table spec.md §6
// names as the core's only first-class persisted state beyond the two
// indices (id, phase, counters, timestamps, last error).
type PostgresJobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresJobStore builds a PostgresJobStore over an already-connected
// pool; the caller owns the pool's lifecycle.
func NewPostgresJobStore(pool *pgxpool.Pool) *PostgresJobStore {
	return &PostgresJobStore{pool: pool}
}

const jobUpsertSQL = `
INSERT INTO jobs (
	id, archive_id, phase, documents_total, documents_parsed, documents_chunked,
	documents_indexed, documents_failed, chunks_written, last_error, started_at,
	updated_at, finished_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
	phase = EXCLUDED.phase,
	documents_total = EXCLUDED.documents_total,
	documents_parsed = EXCLUDED.documents_parsed,
	documents_chunked = EXCLUDED.documents_chunked,
	documents_indexed = EXCLUDED.documents_indexed,
	documents_failed = EXCLUDED.documents_failed,
	chunks_written = EXCLUDED.chunks_written,
	last_error = EXCLUDED.last_error,
	updated_at = EXCLUDED.updated_at,
	finished_at = EXCLUDED.finished_at
`

func (p *PostgresJobStore) Save(ctx context.Context, job model.Job) error {
	var lastErr string
	if len(job.Failed) > 0 {
		lastErr = job.Failed[len(job.Failed)-1].Reason
	}
	_, err := p.pool.Exec(ctx, jobUpsertSQL,
		job.ID, job.ArchiveID, string(job.Phase),
		job.Counters.DocumentsTotal, job.Counters.DocumentsParsed, job.Counters.DocumentsChunked,
		job.Counters.DocumentsIndexed, job.Counters.DocumentsFailed, job.Counters.ChunksWritten,
		lastErr, job.StartedAt, job.UpdatedAt, job.FinishedAt,
	)
	if err != nil {
		return correrr.Transient(err)
	}
	return nil
}

const jobSelectSQL = `
SELECT id, archive_id, phase, documents_total, documents_parsed, documents_chunked,
	documents_indexed, documents_failed, chunks_written, last_error, started_at,
	updated_at, finished_at
FROM jobs WHERE id = $1
`

func (p *PostgresJobStore) Load(ctx context.Context, jobID string) (model.Job, error) {
	row := p.pool.QueryRow(ctx, jobSelectSQL, jobID)

	var job model.Job
	var phase, lastErr string
	err := row.Scan(
		&job.ID, &job.ArchiveID, &phase,
		&job.Counters.DocumentsTotal, &job.Counters.DocumentsParsed, &job.Counters.DocumentsChunked,
		&job.Counters.DocumentsIndexed, &job.Counters.DocumentsFailed, &job.Counters.ChunksWritten,
		&lastErr, &job.StartedAt, &job.UpdatedAt, &job.FinishedAt,
	)
	if err != nil {
		return model.Job{}, correrr.NotFound(jobID, err)
	}
	job.Phase = model.JobPhase(phase)
	if lastErr != "" {
		job.Failed = append(job.Failed, model.FailedFile{Reason: lastErr})
	}
	return job, nil
}

var _ JobStore = (*PostgresJobStore)(nil)
