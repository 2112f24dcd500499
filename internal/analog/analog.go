// Package analog implements C12: parameter-tolerant analog search over
// engineering equipment, specialising C9/C10 with a numeric-fact range
// filter and a parameter-similarity score (spec.md §4.12).
package analog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"aedocs/internal/index"
	"aedocs/internal/model"
	"aedocs/internal/query/rewrite"
	"aedocs/internal/retrieve"
	"aedocs/internal/retrieve/rerank"
	"aedocs/internal/units"
)

// DefaultTolerance is tau, the default relative tolerance on numeric
// parameters (spec.md §4.12).
const DefaultTolerance = 0.20

// textBearingCollections are the collections analog search runs over; the
// drawings collection is excluded (spec.md §4.12 step 3).
var textBearingCollections = []string{"ae_text_m3", "ae_tables", "ae_ifc"}

// keywordSuppressionFloor is the "final < 0.3" threshold in the
// equipment-keyword suppression gate (spec.md §4.12).
const keywordSuppressionFloor = 0.3

// equipmentKeywords is the curated bilingual equipment term list, seeded
// from original_source's hybrid_search.py analog query construction.
var equipmentKeywords = []string{
	"насос", "pump",
	"компрессор", "compressor",
	"теплообменник", "heat exchanger",
	"вентилятор", "fan",
	"клапан", "valve",
}

// Param is one numeric query parameter: a raw value in a caller-supplied
// (possibly non-canonical) unit.
type Param struct {
	Value decimal.Decimal
	Unit  string
}

// Request is the analog_search input (spec.md §6 public API).
type Request struct {
	EquipmentType string
	NumericParams map[string]Param
	Filters       map[string]string
	Limit         int
	Tolerance     decimal.Decimal // zero means DefaultTolerance
}

// Hit is one analog result: the re-ranked candidate plus its parameter
// similarity and combined analog score.
type Hit struct {
	rerank.Result
	ParamSimilarity float64
	AnalogScore     float64
}

// Searcher runs analog search over an already-wired hybrid retriever and
// re-ranker.
type Searcher struct {
	retriever *retrieve.Retriever
	reranker  rerank.Reranker
}

// New builds a Searcher over the given retriever and re-ranker.
func New(retriever *retrieve.Retriever, reranker rerank.Reranker) *Searcher {
	return &Searcher{retriever: retriever, reranker: reranker}
}

// Search executes the five analog-search steps of spec.md §4.12: build
// query text, build numeric-fact range filters, run the hybrid retriever
// restricted to text/table/IFC collections, re-rank, then score and sort by
// the combined analog score.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Hit, error) {
	tau := req.Tolerance
	if tau.IsZero() {
		tau = decimal.NewFromFloat(DefaultTolerance)
	}

	canonical := make(map[string]model.NumericFact, len(req.NumericParams))
	var ranges []index.RangeFilter
	for name, p := range req.NumericParams {
		fact := units.Normalize(p.Value, p.Unit)
		canonical[name] = fact
		v, _ := fact.Value.Float64()
		tauF, _ := tau.Float64()
		ranges = append(ranges, index.RangeFilter{
			Key: name,
			Min: v * (1 - tauF),
			Max: v * (1 + tauF),
		})
	}

	queryText := buildQueryText(req.EquipmentType, canonical)
	rewrites := []rewrite.Candidate{{Text: queryText, Confidence: 1.0, Source: "original"}}

	candidates, err := s.retriever.Run(ctx, rewrites, nil, retrieve.Options{
		Collections:     textBearingCollections,
		EqualityFilters: req.Filters,
		Ranges:          ranges,
	})
	if err != nil {
		return nil, err
	}

	reranked, err := rerank.Run(ctx, s.reranker, queryText, candidates, 0)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(reranked))
	for _, r := range reranked {
		paramSim := paramSimilarity(canonical, r.Payload.Numeric, tau)
		if suppress(r.Payload.Content, r.Final) {
			continue
		}
		hits = append(hits, Hit{
			Result:          r,
			ParamSimilarity: paramSim,
			AnalogScore:     (r.Final + paramSim) / 2,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].AnalogScore != hits[j].AnalogScore {
			return hits[i].AnalogScore > hits[j].AnalogScore
		}
		if hits[i].DocID != hits[j].DocID {
			return hits[i].DocID < hits[j].DocID
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	limit := req.Limit
	if limit <= 0 || limit > len(hits) {
		limit = len(hits)
	}
	return hits[:limit], nil
}

func buildQueryText(equipmentType string, params map[string]model.NumericFact) string {
	var b strings.Builder
	b.WriteString(equipmentType)
	for name, fact := range params {
		b.WriteString(fmt.Sprintf(" %s %s %s", name, fact.Value.String(), fact.Unit))
	}
	return b.String()
}

// paramSimilarity averages units.ParamSimilarity over every query parameter
// present in both the query and the candidate's numeric facts, matching
// canonical units (spec.md §4.12 step 5). A candidate matching none of the
// query's parameters scores 0.
func paramSimilarity(query map[string]model.NumericFact, candidate map[string]model.NumericFact, tau decimal.Decimal) float64 {
	if len(query) == 0 {
		return 0
	}
	var sum decimal.Decimal
	var matched int
	for name, target := range query {
		got, ok := candidate[name]
		if !ok || got.Unit != target.Unit {
			continue
		}
		sum = sum.Add(units.ParamSimilarity(target.Value, got.Value, tau))
		matched++
	}
	if matched == 0 {
		return 0
	}
	mean, _ := sum.Div(decimal.NewFromInt(int64(matched))).Float64()
	return mean
}

// suppress reports whether a candidate should be dropped by the
// equipment-keyword suppression gate: no equipment keyword in its content
// AND final < keywordSuppressionFloor (spec.md §4.12).
func suppress(content string, final float64) bool {
	if final >= keywordSuppressionFloor {
		return false
	}
	lower := strings.ToLower(content)
	for _, kw := range equipmentKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}
