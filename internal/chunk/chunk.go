// Package chunk implements C4: type-dispatching chunking of normalised
// blocks into the Chunk tagged union, bounded by token count, with
// deterministic ids and advisory importance/keyword tagging.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"aedocs/internal/model"
	"aedocs/internal/normalize"
	"aedocs/internal/parse"
)

// Version is the chunker algorithm version folded into every chunk id; a
// change here changes every id in the corpus on re-ingest, by design.
const Version = "chunker-v1"

// Token-count bounds (spec.md §4.4).
const (
	TargetTokens = 800
	MinTokens    = TargetTokens / 8
	MaxTokens    = TargetTokens * 5 / 4 // T * 1.25
	OverlapToken = 200
)

// charsPerToken is the same coarse heuristic the teacher's chunker uses to
// avoid a real tokenizer dependency in the hot chunking path.
const charsPerToken = 4

func tokenCount(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && s != "" {
		n = 1
	}
	return n
}

func charBudget(tokens int) int { return tokens * charsPerToken }

var structuralBoundary = regexp.MustCompile(`(?m)^(\d+(\.\d+)*\.?\s+\S|[A-ZА-Я0-9 ]{6,}\s*$)`)

// Options configures a chunking pass.
type Options struct {
	Units normalize.UnitTable
}

// ChunkID computes the deterministic id for the chunk at position within a
// document identified by docContentHash.
func ChunkID(docContentHash string, position int) string {
	sum := sha256.Sum256([]byte(docContentHash + Version + fmt.Sprintf("%d", position)))
	return hex.EncodeToString(sum[:])[:16]
}

// DocumentContext carries the common-payload fields shared by every chunk
// produced from one document, filled in by the caller (orchestrator) ahead
// of chunking.
type DocumentContext struct {
	ProjectID       string
	ObjectID        string
	Discipline      model.Discipline
	DocNo           string
	Revision        string
	SourcePath      string
	SourceHash      string
	IssuedAt        string
	Vendor          string
	Confidentiality model.Confidentiality
	DocFamily       string
	DocTitle        string
	Permissions     []string
}

func (d DocumentContext) payload(position int, numeric map[string]model.NumericFact) model.CommonPayload {
	return model.CommonPayload{
		ChunkID:         ChunkID(d.SourceHash, position),
		ProjectID:       d.ProjectID,
		ObjectID:        d.ObjectID,
		Discipline:      d.Discipline,
		DocNo:           d.DocNo,
		Revision:        d.Revision,
		SourcePath:      d.SourcePath,
		SourceHash:      d.SourceHash,
		IssuedAt:        d.IssuedAt,
		Vendor:          d.Vendor,
		Confidentiality: d.Confidentiality,
		DocFamily:       d.DocFamily,
		DocTitle:        d.DocTitle,
		Permissions:     d.Permissions,
		Numeric:         numeric,
	}
}

// textSegment is one structural/target-size-bounded slice of a document's
// text, before overlap carry and chunk ids are assigned.
type textSegment struct {
	body string
	lang normalize.Lang
	refs []normalize.Reference
}

// ChunkText splits normalised text blocks into overlapping, bounded text
// chunks, forcing a boundary at structural headings even below target size.
// A structural boundary immediately after a short paragraph can still close
// an undersized segment, so mergeSmallSegments folds every non-terminal
// segment under MinTokens into a neighbour before overlap/ids are assigned,
// enforcing spec.md §8's "no non-terminal chunk has token count < T/8"
// (ported from the original pipeline's _optimize_chunk_sizes merge pass).
func ChunkText(doc DocumentContext, blocks []normalize.Block, numeric func(string) map[string]model.NumericFact) []model.Chunk {
	var segments []textSegment
	var acc strings.Builder
	var accLang normalize.Lang
	var accRefs []normalize.Reference

	closeSegment := func() {
		if acc.Len() == 0 {
			return
		}
		segments = append(segments, textSegment{body: acc.String(), lang: accLang, refs: accRefs})
		acc.Reset()
		accRefs = nil
	}

	for _, b := range blocks {
		if structuralBoundary.MatchString(b.Text) && acc.Len() > 0 {
			closeSegment()
		}
		acc.WriteString(b.Text)
		acc.WriteString("\n\n")
		accLang = b.Lang
		accRefs = append(accRefs, b.References...)

		if tokenCount(acc.String()) >= TargetTokens {
			closeSegment()
		}
	}
	closeSegment()

	segments = mergeSmallSegments(segments)

	var out []model.Chunk
	position := 0
	var carry string // tail overlap prepended to the next chunk
	for _, seg := range segments {
		if strings.TrimSpace(seg.body) == "" {
			continue
		}
		full := carry + seg.body
		nf := map[string]model.NumericFact{}
		if numeric != nil {
			nf = numeric(full)
		}
		payload := doc.payload(position, nf)
		payload.Language = string(seg.lang)
		payload.Content = full
		payload.Tags = referenceTags(seg.refs)
		payload.Importance = importanceScore(full, nf, seg.refs)
		payload.Keywords = topKeywords(full, 10)

		out = append(out, model.NewTextChunk(model.TextChunk{
			CommonPayload: payload,
			TokenCount:    tokenCount(full),
			OverlapSize:   tokenCount(carry),
		}))
		position++
		carry = tailOverlap(full)
	}
	return out
}

// mergeSmallSegments folds every segment but the last whose token count
// falls under MinTokens into a neighbour: into the previous segment when one
// has already been kept, otherwise forward into the next segment (the case
// of a short leading paragraph followed immediately by a structural
// boundary, with nothing yet to fold backward into).
func mergeSmallSegments(segs []textSegment) []textSegment {
	if len(segs) <= 1 {
		return segs
	}
	merged := make([]textSegment, 0, len(segs))
	for i := 0; i < len(segs); i++ {
		s := segs[i]
		isLast := i == len(segs)-1
		if !isLast && tokenCount(s.body) < MinTokens {
			if len(merged) > 0 {
				prev := &merged[len(merged)-1]
				prev.body += s.body
				prev.refs = append(prev.refs, s.refs...)
				continue
			}
			if i+1 < len(segs) {
				segs[i+1].body = s.body + segs[i+1].body
				segs[i+1].refs = append(append([]normalize.Reference{}, s.refs...), segs[i+1].refs...)
				continue
			}
		}
		merged = append(merged, s)
	}
	return merged
}

// tailOverlap returns the trailing OverlapToken-sized slice of body, used
// as the overlap prefix for the next chunk.
func tailOverlap(body string) string {
	budget := charBudget(OverlapToken)
	if len(body) <= budget {
		return body
	}
	return body[len(body)-budget:]
}

func referenceTags(refs []normalize.Reference) []string {
	tags := make([]string, 0, len(refs))
	for _, r := range refs {
		tags = append(tags, r.Family+":"+r.Raw)
	}
	return tags
}

// ChunkTable turns table blocks into one chunk per row; rows are never
// merged across rows and the row hash is a stable digest of the ordered
// cell strings.
func ChunkTable(doc DocumentContext, position int, blocks []parse.Block) ([]model.Chunk, int) {
	var out []model.Chunk
	for _, b := range blocks {
		if b.Kind != parse.BlockTable {
			continue
		}
		for _, row := range b.Cells {
			payload := doc.payload(position, nil)
			payload.Content = strings.Join(row, " | ")
			payload.Importance = 0.4
			out = append(out, model.NewTableChunk(model.TableChunk{
				CommonPayload: payload,
				Cells:         row,
				RowHash:       rowHash(row),
			}))
			position++
		}
	}
	return out, position
}

func rowHash(cells []string) string {
	sum := sha256.Sum256([]byte(strings.Join(cells, "\x1f")))
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkDrawing emits one chunk per OCR'd drawing region.
func ChunkDrawing(doc DocumentContext, position int, blocks []parse.Block) ([]model.Chunk, int) {
	var out []model.Chunk
	for _, b := range blocks {
		if b.Kind != parse.BlockDrawing || strings.TrimSpace(b.Text) == "" {
			continue
		}
		payload := doc.payload(position, nil)
		payload.Content = b.Text
		payload.Importance = 0.3
		out = append(out, model.NewDrawingChunk(model.DrawingChunk{CommonPayload: payload}))
		position++
	}
	return out, position
}

// ChunkIFC aggregates entities by type: one chunk per entity type, carrying
// the entity count and one representative's properties.
func ChunkIFC(doc DocumentContext, position int, blocks []parse.Block) ([]model.Chunk, int) {
	byType := map[string][]parse.Block{}
	var order []string
	for _, b := range blocks {
		if b.Kind != parse.BlockIFCEntity {
			continue
		}
		if _, ok := byType[b.EntityType]; !ok {
			order = append(order, b.EntityType)
		}
		byType[b.EntityType] = append(byType[b.EntityType], b)
	}

	var out []model.Chunk
	for _, et := range order {
		entities := byType[et]
		rep := entities[0]
		payload := doc.payload(position, nil)
		payload.Content = fmt.Sprintf("%s (%d instances): %s", et, len(entities), rep.EntityName)
		payload.Importance = 0.5
		out = append(out, model.NewIFCChunk(model.IFCChunk{
			CommonPayload:      payload,
			EntityType:         et,
			EntityCount:        len(entities),
			RepresentativeGUID: rep.EntityGUID,
			Properties:         rep.Properties,
		}))
		position++
	}
	return out, position
}
