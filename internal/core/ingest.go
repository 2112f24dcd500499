package core

import (
	"context"
	"path"
	"time"

	"aedocs/internal/chunk"
	"aedocs/internal/corelog"
	"aedocs/internal/correrr"
	"aedocs/internal/ingest"
	"aedocs/internal/model"
	"aedocs/internal/normalize"
	"aedocs/internal/obs"
	"aedocs/internal/parse"
	"aedocs/internal/query/intent"
)

// IngestDocument is one caller-declared document inside an archive upload.
// A manifest alone (spec.md §6 "ingest(archive_ref, manifest)") does not
// carry per-document metadata; SPEC_FULL.md's ingestion supplement has the
// caller supply it here, mirroring the original's per-document record.
type IngestDocument struct {
	LogicalPath string
	MediaType   string
	Discipline  model.Discipline
	RevisionTag string
	IssuedAt    time.Time
	Vendor      string
	Language    string
	Title       string
	ContentHash string
	Permissions []string
}

// jobContext is the per-archive state processDocument needs that the
// orchestrator's DocumentProcessor signature doesn't carry: the archive
// manifest and each document's declared metadata, keyed by logical path.
type jobContext struct {
	archive model.Archive
	docs    map[string]IngestDocument
}

// Ingest runs an archive's documents through C1-C6 under one job, returning
// the job's terminal (or failed) state once the orchestrator's worker pool
// has processed every document (spec.md §6, §4.7). When archive.ContentHash
// matches an archive already ingested, the configured ReingestPolicy
// resolves the re-upload (spec.md §3's "archive hash uniquely dedupes
// re-uploads" invariant) before any document is touched.
func (c *Core) Ingest(ctx context.Context, archive model.Archive, documents []IngestDocument) (model.Job, error) {
	if err := archive.Manifest.Validate(); err != nil {
		return model.Job{}, correrr.InvalidInput("%v", err)
	}

	if c.archives != nil && archive.ContentHash != "" {
		decision, err := ingest.ResolveIdempotency(ctx, c.archives, archive.ContentHash, c.reingestPolicy)
		if err != nil {
			return model.Job{}, err
		}
		if decision.Skip {
			now := time.Now().UTC()
			return model.Job{
				ID:         newJobID(),
				ArchiveID:  decision.PriorID,
				Phase:      model.JobPhaseDone,
				StartedAt:  now,
				UpdatedAt:  now,
				FinishedAt: now,
			}, nil
		}
	}

	jobID := newJobID()
	paths := make([]string, len(documents))
	docsByPath := make(map[string]IngestDocument, len(documents))
	for i, d := range documents {
		paths[i] = d.LogicalPath
		docsByPath[d.LogicalPath] = d
	}
	c.jobContexts.Store(jobID, jobContext{archive: archive, docs: docsByPath})
	defer c.jobContexts.Delete(jobID)

	job := model.Job{ID: jobID, ArchiveID: archive.ID, Phase: model.JobPhaseQueued}
	result, err := c.orch.Run(ctx, job, paths)
	if err != nil {
		return result, err
	}
	if c.archives != nil && archive.ContentHash != "" {
		if recErr := c.archives.Record(ctx, archive.ID, archive.ContentHash); recErr != nil {
			c.log.Error("record_archive_hash_failed", corelog.Fields{"archive_id": archive.ID, "error": recErr.Error()})
		}
	}
	return result, nil
}

// processDocument is the ingest.DocumentProcessor wired into Core's
// Orchestrator: fetch -> parse -> normalise/chunk (dispatched by the
// document's dominant block kind) -> dual-index write.
func (c *Core) processDocument(ctx context.Context, job *model.Job, logicalPath string) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveHistogram(obs.MetricIngestStageLatency, float64(time.Since(start).Milliseconds()), map[string]string{"job_id": job.ID})
		if err != nil {
			c.metrics.IncCounter(obs.MetricDocumentsFailed, map[string]string{"job_id": job.ID})
		}
	}()

	jcRaw, ok := c.jobContexts.Load(job.ID)
	if !ok {
		return correrr.InvalidInput("no ingest context for job %q", job.ID)
	}
	jc := jcRaw.(jobContext)

	meta, ok := jc.docs[logicalPath]
	if !ok {
		return correrr.InvalidInput("no document metadata for path %q", logicalPath)
	}

	data, err := c.objects.Fetch(ctx, logicalPath)
	if err != nil {
		return err
	}

	res, ok, err := c.parsers.Parse(ctx, meta.MediaType, data)
	if err != nil {
		return err
	}
	if !ok {
		return correrr.InvalidInput("no parser registered for media type %q", meta.MediaType)
	}

	title := meta.Title
	if title == "" {
		title = res.TitleGuess
	}
	docFamily, docNo := documentIdentity(title, logicalPath)

	docCtx := chunk.DocumentContext{
		ProjectID:       jc.archive.ProjectID,
		ObjectID:        jc.archive.ObjectID,
		Discipline:      meta.Discipline,
		DocNo:           docNo,
		Revision:        meta.RevisionTag,
		SourcePath:      logicalPath,
		SourceHash:      meta.ContentHash,
		IssuedAt:        meta.IssuedAt.Format(time.RFC3339),
		Vendor:          meta.Vendor,
		Confidentiality: jc.archive.Manifest.Confidentiality,
		DocFamily:       docFamily,
		DocTitle:        title,
		Permissions:     meta.Permissions,
	}

	chunks := c.chunksFor(docCtx, res.Blocks)
	if len(chunks) == 0 {
		return nil
	}
	if err := c.writer.WriteBatch(ctx, chunks); err != nil {
		return err
	}
	c.metrics.IncCounter(obs.MetricDocumentsIndexed, map[string]string{"job_id": job.ID})
	c.metrics.ObserveHistogram(obs.MetricChunksWritten, float64(len(chunks)), map[string]string{"job_id": job.ID})
	return nil
}

// documentIdentity derives a document's family/number identity from its
// title via the same standard-citation scan the query path uses on raw
// queries; a title with no recognisable citation falls back to the
// archive-relative path's base name, which is still stable and unique
// within one archive.
func documentIdentity(title, logicalPath string) (family, docNo string) {
	if refs := intent.ExtractReferences(title); len(refs) > 0 {
		return refs[0].Family, refs[0].Number
	}
	return "", path.Base(logicalPath)
}

// chunksFor dispatches a parsed document's blocks to the chunker matching
// their dominant kind. Every parser in this corpus emits a single block
// kind per document (paragraphs, table rows, drawing regions or IFC
// entities never mix within one ParseResult), so inspecting the first
// block is sufficient to pick the right chunker.
func (c *Core) chunksFor(doc chunk.DocumentContext, blocks []parse.Block) []model.Chunk {
	if len(blocks) == 0 {
		return nil
	}

	switch blocks[0].Kind {
	case parse.BlockTable:
		chunks, _ := chunk.ChunkTable(doc, 0, blocks)
		return chunks
	case parse.BlockDrawing:
		chunks, _ := chunk.ChunkDrawing(doc, 0, blocks)
		return chunks
	case parse.BlockIFCEntity:
		chunks, _ := chunk.ChunkIFC(doc, 0, blocks)
		return chunks
	default:
		normBlocks := make([]normalize.Block, 0, len(blocks))
		for _, b := range blocks {
			if b.Kind != parse.BlockParagraph {
				continue
			}
			normBlocks = append(normBlocks, normalize.Normalize(b.Text, c.units))
		}
		return chunk.ChunkText(doc, normBlocks, chunk.ExtractNumericFacts)
	}
}
