package model

import "time"

// JobPhase is the ingestion phase pointer (spec.md §4.7).
type JobPhase string

const (
	JobPhaseQueued    JobPhase = "queued"
	JobPhaseUnpacking JobPhase = "unpacking"
	JobPhaseParsing   JobPhase = "parsing"
	JobPhaseChunking  JobPhase = "chunking"
	JobPhaseEmbedding JobPhase = "embedding"
	JobPhaseIndexing  JobPhase = "indexing"
	JobPhaseDone      JobPhase = "done"
	JobPhaseFailed    JobPhase = "failed"
)

// Terminal reports whether the phase is a final state the orchestrator will
// not advance past.
func (p JobPhase) Terminal() bool { return p == JobPhaseDone || p == JobPhaseFailed }

// JobCounters are the monotonic progress counters a Job accumulates. They
// only ever increase for the lifetime of a job.
type JobCounters struct {
	DocumentsTotal    int
	DocumentsParsed   int
	DocumentsChunked  int
	DocumentsIndexed  int
	DocumentsFailed   int
	ChunksWritten     int
}

// FailedFile records one document that failed irrecoverably during a job,
// keyed by its logical path inside the archive.
type FailedFile struct {
	LogicalPath string
	Reason      string
}

// Job tracks one archive's ingestion run end to end. Phase and Counters
// record progress; the orchestrator does not resume a job from them (see
// ingest.Orchestrator.Run).
type Job struct {
	ID         string
	ArchiveID  string
	Phase      JobPhase
	Counters   JobCounters
	Failed     []FailedFile
	StartedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt time.Time
}

// VectorPoint is one dense-vector upsert unit: a chunk id, its embedding,
// the collection it targets, and the filterable payload fields mirrored
// from CommonPayload.
type VectorPoint struct {
	ID         string
	Collection string
	Vector     []float32
	Payload    CommonPayload
}

// Collection describes one of the four canonical dense collections
// (spec.md §3 "Canonical collections").
type Collection struct {
	Name       string
	ModelName  string
	Dimensions int
	Metric     string
}

// CanonicalCollections is the fixed set of dense collections every deployment
// provisions on startup.
var CanonicalCollections = []Collection{
	{Name: "ae_text_m3", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
	{Name: "ae_tables", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
	{Name: "ae_drawings_clip", ModelName: "clip", Dimensions: 768, Metric: "cosine"},
	{Name: "ae_ifc", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
}
