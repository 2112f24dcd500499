// Package ingest implements C7: the job orchestrator driving C1-C6 on a
// bounded worker pool, with a phase pointer and monotonic
// counters per archive.
package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"aedocs/internal/correrr"
	"aedocs/internal/corelog"
	"aedocs/internal/model"
)

// DefaultWorkers is the fixed-size worker pool default (spec.md §4.7).
const DefaultWorkers = 4

// JobStore persists Job records at each phase change and on completion.
// The orchestrator does not read them back: a job is not resumed from a
// stored phase.
type JobStore interface {
	Save(ctx context.Context, job model.Job) error
	Load(ctx context.Context, jobID string) (model.Job, error)
}

// DocumentProcessor runs one document through parse->normalise->chunk->
// embed->index for a single logical path. It is supplied by the service
// layer, which wires C2-C6 together; the orchestrator only sequences calls
// to it across the worker pool and tracks counters.
type DocumentProcessor func(ctx context.Context, job *model.Job, logicalPath string) error

// Orchestrator drives one archive's ingestion job.
type Orchestrator struct {
	workers   int
	store     JobStore
	log       corelog.Logger
	events    EventPublisher
	process   DocumentProcessor
}

// EventPublisher optionally announces job-phase transitions (e.g. over
// Kafka); a no-op implementation is used when no event bus is configured.
type EventPublisher interface {
	PublishPhaseAdvanced(ctx context.Context, job model.Job)
	PublishCompleted(ctx context.Context, job model.Job)
}

// NoopEvents discards every event.
type NoopEvents struct{}

func (NoopEvents) PublishPhaseAdvanced(context.Context, model.Job) {}
func (NoopEvents) PublishCompleted(context.Context, model.Job)     {}

// New builds an Orchestrator. workers<=0 uses DefaultWorkers.
func New(workers int, store JobStore, log corelog.Logger, events EventPublisher, process DocumentProcessor) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if events == nil {
		events = NoopEvents{}
	}
	if log == nil {
		log = corelog.Noop{}
	}
	return &Orchestrator{workers: workers, store: store, log: log, events: events, process: process}
}

// Run processes every logical path and leaves job in JobPhaseDone, or in
// JobPhaseFailed when every document failed. A job already in a terminal
// phase is returned unchanged; any other job is restarted at
// JobPhaseUnpacking and all paths are processed again, whatever its
// earlier phase.
func (o *Orchestrator) Run(ctx context.Context, job model.Job, logicalPaths []string) (model.Job, error) {
	if job.Phase.Terminal() {
		return job, nil
	}
	job.Phase = model.JobPhaseUnpacking
	job.Counters.DocumentsTotal = len(logicalPaths)
	job.StartedAt = timeNow()
	o.advance(ctx, &job, model.JobPhaseParsing)

	sem := semaphore.NewWeighted(int64(o.workers))
	resultCh := make(chan docOutcome, len(logicalPaths))

	for _, path := range logicalPaths {
		path := path
		if err := sem.Acquire(ctx, 1); err != nil {
			return job, correrr.Timeout(err)
		}
		go func() {
			defer sem.Release(1)
			err := o.process(ctx, &job, path)
			resultCh <- docOutcome{path: path, err: err}
		}()
	}

	for range logicalPaths {
		outcome := <-resultCh
		if outcome.err != nil {
			job.Counters.DocumentsFailed++
			job.Failed = append(job.Failed, model.FailedFile{LogicalPath: outcome.path, Reason: outcome.err.Error()})
			o.log.Error("document_failed", corelog.Fields{"job_id": job.ID, "path": outcome.path, "error": outcome.err.Error()})
			continue
		}
		job.Counters.DocumentsParsed++
		job.Counters.DocumentsChunked++
		job.Counters.DocumentsIndexed++
	}

	job.UpdatedAt = timeNow()
	if job.Counters.DocumentsFailed == len(logicalPaths) && len(logicalPaths) > 0 {
		job.Phase = model.JobPhaseFailed
	} else {
		job.Phase = model.JobPhaseDone
		job.FinishedAt = timeNow()
	}

	if o.store != nil {
		if err := o.store.Save(ctx, job); err != nil {
			return job, correrr.Transient(fmt.Errorf("save job: %w", err))
		}
	}
	o.events.PublishCompleted(ctx, job)
	return job, nil
}

type docOutcome struct {
	path string
	err  error
}

func (o *Orchestrator) advance(ctx context.Context, job *model.Job, phase model.JobPhase) {
	job.Phase = phase
	job.UpdatedAt = timeNow()
	if o.store != nil {
		_ = o.store.Save(ctx, *job)
	}
	o.events.PublishPhaseAdvanced(ctx, *job)
}

// timeNow is a thin wrapper so tests can't accidentally depend on wall
// clock ordering across goroutines; kept as a var for future injection.
var timeNow = func() time.Time { return time.Now().UTC() }
