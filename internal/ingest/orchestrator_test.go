package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/model"
)

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]model.Job
}

func newMemJobStore() *memJobStore { return &memJobStore{jobs: make(map[string]model.Job)} }

func (s *memJobStore) Save(ctx context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *memJobStore) Load(ctx context.Context, id string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id], nil
}

func TestOrchestratorRunCountsSuccessAndFailure(t *testing.T) {
	store := newMemJobStore()
	process := func(ctx context.Context, job *model.Job, path string) error {
		if path == "bad.txt" {
			return errors.New("parse failed")
		}
		return nil
	}
	o := New(2, store, nil, nil, process)

	job := model.Job{ID: "job-1", ArchiveID: "arc-1", Phase: model.JobPhaseQueued}
	result, err := o.Run(context.Background(), job, []string{"good1.txt", "bad.txt", "good2.txt"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Counters.DocumentsIndexed)
	assert.Equal(t, 1, result.Counters.DocumentsFailed)
	assert.Equal(t, model.JobPhaseDone, result.Phase)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.txt", result.Failed[0].LogicalPath)
}

func TestOrchestratorAllDocumentsFailMarksJobFailed(t *testing.T) {
	process := func(ctx context.Context, job *model.Job, path string) error {
		return errors.New("boom")
	}
	o := New(1, nil, nil, nil, process)

	job := model.Job{ID: "job-2"}
	result, err := o.Run(context.Background(), job, []string{"a.txt"})
	require.NoError(t, err)
	assert.Equal(t, model.JobPhaseFailed, result.Phase)
}

type fakeLookup struct {
	hash  string
	found bool
	id    string
}

func (f fakeLookup) FindByContentHash(ctx context.Context, hash string) (string, bool, error) {
	if hash == f.hash {
		return f.id, f.found, nil
	}
	return "", false, nil
}

func TestResolveIdempotencySkipsUnchanged(t *testing.T) {
	lookup := fakeLookup{hash: "h1", found: true, id: "arc-1"}
	decision, err := ResolveIdempotency(context.Background(), lookup, "h1", ReingestSkipIfUnchanged)
	require.NoError(t, err)
	assert.True(t, decision.Skip)
}

func TestResolveIdempotencyOverwrite(t *testing.T) {
	lookup := fakeLookup{hash: "h1", found: true, id: "arc-1"}
	decision, err := ResolveIdempotency(context.Background(), lookup, "h1", ReingestOverwrite)
	require.NoError(t, err)
	assert.Equal(t, "arc-1", decision.ReplaceID)
}
