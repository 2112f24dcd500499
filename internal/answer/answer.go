// Package answer implements C11: intent-shaped structured answer assembly
// with mandatory source citations, per spec.md §4.11.
package answer

import (
	"fmt"
	"strings"

	"aedocs/internal/query/intent"
	"aedocs/internal/retrieve/rerank"
)

// Confidence bounds (spec.md §4.11).
const (
	MinConfidence = 0.1
	MaxConfidence = 0.95
)

// Source is one citation entry; answers never carry free-form source text.
type Source struct {
	DocID      string
	DocFamily  string
	DocTitle   string
	Section    string
	Clause     string
	Relevance  float64
}

// Answer is the intent-shaped structured response.
type Answer struct {
	Intent     intent.Intent
	Text       string
	Bullets    []string // used by the "comparison" shape
	Sources    []Source
	Confidence float64
}

// noEvidence is the canned response returned when the similarity floor
// filters every candidate (spec.md §4.11): never an uncited answer.
func noEvidence(i intent.Intent) Answer {
	return Answer{
		Intent:     i,
		Text:       "Недостаточно релевантных данных для ответа.",
		Sources:    nil,
		Confidence: 0.0,
	}
}

// Assemble builds the answer for one intent from its re-ranked, floor-
// filtered results, following the per-intent shape table in spec.md §4.11.
// results must already be sorted by Final score descending (rerank.Run's
// contract); an empty slice produces the canned no-evidence answer.
func Assemble(i intent.Intent, results []rerank.Result) Answer {
	if len(results) == 0 {
		return noEvidence(i)
	}

	switch i {
	case intent.Definition:
		return shapeLead("Определение:", results, 1, "")
	case intent.Scope:
		return shapeLead("Область применения:", results, 1, "")
	case intent.Requirement:
		return shapeRequirement(results)
	case intent.Reference:
		return shapeReference(results)
	case intent.Comparison:
		return shapeComparison(results)
	case intent.Relevance:
		return shapeRelevance(results)
	default: // General, Analog (analog builds its own shape in internal/analog)
		return shapeLead("", results, 3, "Дополнительная информация")
	}
}

func shapeLead(prefix string, results []rerank.Result, supportCount int, excerptLabel string) Answer {
	top := results[0]
	text := top.Payload.Content
	if prefix != "" {
		text = prefix + " " + text
	}
	if supportCount > len(results) {
		supportCount = len(results)
	}
	excerptSources := results[:supportCount]
	if excerptLabel != "" {
		text += supportingExcerpts(excerptSources[1:], excerptLabel)
	}
	return Answer{
		Text:       text,
		Sources:    sourcesOf(excerptSources),
		Confidence: confidenceOf(excerptSources),
	}
}

func shapeRequirement(results []rerank.Result) Answer {
	top := results[0]
	support := results
	if len(support) > 3 {
		support = support[:3]
	}
	text := top.Payload.Content + supportingExcerpts(support[1:], "Дополнительные требования")
	return Answer{
		Text:       text,
		Sources:    sourcesOf(support),
		Confidence: confidenceOf(support),
	}
}

// excerptMaxRunes bounds each supporting excerpt folded into an answer body.
const excerptMaxRunes = 200

// supportingExcerpts renders up to 2 supplementary chunks as a bulleted list
// under label, appended to the lead chunk's text. Ported from the original
// pipeline's requirement/general answer builders, which append the next 1-2
// chunks' truncated content rather than leaving them uncited in Sources only.
func supportingExcerpts(extra []rerank.Result, label string) string {
	if len(extra) > 2 {
		extra = extra[:2]
	}
	if len(extra) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(label)
	b.WriteString(":\n")
	for _, r := range extra {
		b.WriteString("- ")
		b.WriteString(truncateRunes(r.Payload.Content, excerptMaxRunes))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// shapeReference always returns exactly one primary citation: a direct
// quote from the cited clause (spec.md §4.11 "reference" row).
func shapeReference(results []rerank.Result) Answer {
	top := results[0]
	p := top.Payload
	header := strings.TrimSpace(p.DocNo + ", " + p.Clause)
	text := header
	if p.Content != "" {
		text = header + ": " + p.Content
	}
	single := results[:1]
	return Answer{
		Text:       text,
		Sources:    sourcesOf(single),
		Confidence: confidenceOf(single),
	}
}

func shapeComparison(results []rerank.Result) Answer {
	top := results
	if len(top) > 3 {
		top = top[:3]
	}
	bullets := make([]string, 0, len(top))
	for _, r := range top {
		title := r.Payload.DocTitle
		if title == "" {
			title = r.Payload.DocNo
		}
		bullets = append(bullets, fmt.Sprintf("%s: %s", title, r.Payload.Content))
	}
	return Answer{
		Bullets:    bullets,
		Sources:    sourcesOf(top),
		Confidence: confidenceOf(top),
	}
}

// shapeRelevance reports status metadata (effective_from, canceled_by,
// is_current) from the top chunk's payload, supplemented with
// superseded_by from original_source (spec.md §4.11 + SPEC_FULL C11).
func shapeRelevance(results []rerank.Result) Answer {
	top := results[0]
	p := top.Payload
	status := "действует"
	if !p.IsCurrent {
		status = "не действует"
	}
	var parts []string
	parts = append(parts, status)
	if p.EffectiveFrom != "" {
		parts = append(parts, "действует с "+p.EffectiveFrom)
	}
	if p.CanceledBy != "" {
		parts = append(parts, "отменён "+p.CanceledBy)
	}
	if p.SupersededBy != "" {
		parts = append(parts, "заменён "+p.SupersededBy)
	}
	single := results[:1]
	return Answer{
		Text:       strings.Join(parts, "; "),
		Sources:    sourcesOf(single),
		Confidence: confidenceOf(single),
	}
}

func sourcesOf(results []rerank.Result) []Source {
	out := make([]Source, 0, len(results))
	for _, r := range results {
		out = append(out, Source{
			DocID:     r.Payload.DocNo,
			DocFamily: r.Payload.DocFamily,
			DocTitle:  r.Payload.DocTitle,
			Section:   r.Payload.Section,
			Clause:    r.Payload.Clause,
			Relevance: r.Final,
		})
	}
	return out
}

// confidenceOf is the mean Final score of the cited chunks, clamped to
// [MinConfidence, MaxConfidence] (spec.md §4.11).
func confidenceOf(results []rerank.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Final
	}
	mean := sum / float64(len(results))
	if mean < MinConfidence {
		return MinConfidence
	}
	if mean > MaxConfidence {
		return MaxConfidence
	}
	return mean
}

// DowngradeForFailedCollections applies spec.md §7's partial-retrieval
// confidence penalty (0.2 per failed collection out of four) and annotates
// the answer rather than aborting the query.
func DowngradeForFailedCollections(a Answer, failedCollections int) Answer {
	if failedCollections <= 0 {
		return a
	}
	penalty := 0.2 * float64(failedCollections)
	a.Confidence -= penalty
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	a.Text = a.Text + fmt.Sprintf(" (неполный результат: %d из 4 коллекций недоступны)", failedCollections)
	return a
}
