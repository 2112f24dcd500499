package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aedocs/internal/correrr"
)

// ReingestPolicy controls what happens when an archive with the same
// content hash is uploaded again.
type ReingestPolicy string

const (
	ReingestSkipIfUnchanged ReingestPolicy = "skip_if_unchanged"
	ReingestOverwrite       ReingestPolicy = "overwrite"
	ReingestNewVersion      ReingestPolicy = "new_version"
)

// ArchiveLookup finds a prior archive by content hash.
type ArchiveLookup interface {
	FindByContentHash(ctx context.Context, hash string) (archiveID string, found bool, err error)
}

// ArchiveStore extends ArchiveLookup with the write side: recording the
// content hash an accepted archive was ingested under, so the next upload
// of the same bytes can be resolved against it.
type ArchiveStore interface {
	ArchiveLookup
	Record(ctx context.Context, archiveID, contentHash string) error
}

// IdempotencyDecision is the outcome of resolving a re-upload.
type IdempotencyDecision struct {
	Skip         bool
	PriorID      string // the matching prior archive's id, set whenever found is true
	ReplaceID    string // set when Overwrite and a prior archive exists
	NewVersionOf string // set when NewVersion and a prior archive exists
}

// ResolveIdempotency decides how to handle an incoming archive given its
// content hash and the configured policy, mirroring the teacher's
// ResolveIdempotency shape in internal/rag/ingest/idempotency.go.
func ResolveIdempotency(ctx context.Context, lookup ArchiveLookup, contentHash string, policy ReingestPolicy) (IdempotencyDecision, error) {
	priorID, found, err := lookup.FindByContentHash(ctx, contentHash)
	if err != nil {
		return IdempotencyDecision{}, err
	}
	if !found {
		return IdempotencyDecision{}, nil
	}

	switch policy {
	case ReingestOverwrite:
		return IdempotencyDecision{PriorID: priorID, ReplaceID: priorID}, nil
	case ReingestNewVersion:
		return IdempotencyDecision{PriorID: priorID, NewVersionOf: priorID}, nil
	default: // ReingestSkipIfUnchanged
		return IdempotencyDecision{Skip: true, PriorID: priorID}, nil
	}
}

// MemoryArchiveStore is an in-process ArchiveStore used by tests and local
// dry runs.
type MemoryArchiveStore struct {
	mu     sync.Mutex
	byHash map[string]string
}

// NewMemoryArchiveStore builds an empty MemoryArchiveStore.
func NewMemoryArchiveStore() *MemoryArchiveStore {
	return &MemoryArchiveStore{byHash: make(map[string]string)}
}

func (m *MemoryArchiveStore) FindByContentHash(_ context.Context, hash string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byHash[hash]
	return id, ok, nil
}

func (m *MemoryArchiveStore) Record(_ context.Context, archiveID, contentHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[contentHash] = archiveID
	return nil
}

var _ ArchiveStore = (*MemoryArchiveStore)(nil)

// PostgresArchiveStore persists the archive content-hash index spec.md §3's
// dedupe invariant needs, in the same Postgres instance as the job table
// (internal/ingest/jobstore.go).
type PostgresArchiveStore struct {
	pool *pgxpool.Pool
}

// NewPostgresArchiveStore builds a PostgresArchiveStore over an
// already-connected pool; the caller owns the pool's lifecycle.
func NewPostgresArchiveStore(pool *pgxpool.Pool) *PostgresArchiveStore {
	return &PostgresArchiveStore{pool: pool}
}

func (p *PostgresArchiveStore) FindByContentHash(ctx context.Context, hash string) (string, bool, error) {
	var id string
	err := p.pool.QueryRow(ctx, `SELECT id FROM archives WHERE content_hash = $1`, hash).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, correrr.Transient(err)
	}
	return id, true, nil
}

func (p *PostgresArchiveStore) Record(ctx context.Context, archiveID, contentHash string) error {
	const upsertSQL = `
		INSERT INTO archives (id, content_hash) VALUES ($1, $2)
		ON CONFLICT (content_hash) DO UPDATE SET id = EXCLUDED.id
	`
	if _, err := p.pool.Exec(ctx, upsertSQL, archiveID, contentHash); err != nil {
		return correrr.Transient(err)
	}
	return nil
}

var _ ArchiveStore = (*PostgresArchiveStore)(nil)
