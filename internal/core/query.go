package core

import (
	"context"
	"sort"
	"time"

	"aedocs/internal/analog"
	"aedocs/internal/answer"
	"aedocs/internal/corelog"
	"aedocs/internal/correrr"
	"aedocs/internal/obs"
	"aedocs/internal/query/intent"
	"aedocs/internal/query/rewrite"
	"aedocs/internal/retrieve"
	"aedocs/internal/retrieve/rerank"
)

// Search runs one query through C8-C11: rewrite/classify, hybrid retrieval
// per collection, cross-encoder re-rank, and intent-shaped answer assembly
// (spec.md §6 "search(query, filters, limit)").
//
// Retrieval runs one collection at a time rather than across all four in a
// single retrieve.Run call, so that a transient failure in one collection
// only downgrades the answer's confidence (spec.md §7) instead of
// discarding every candidate already gathered from the others. Exceeding
// the query deadline still aborts the whole call with a timeout error,
// since the fan-out's context is shared across every collection.
func (c *Core) Search(ctx context.Context, rawQuery string, filters map[string]string, limit int) (answer.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryDeadline)
	defer cancel()

	start := time.Now()
	defer func() {
		c.metrics.ObserveHistogram(obs.MetricQueryStageLatency, float64(time.Since(start).Milliseconds()), nil)
	}()

	rewrites := c.rewriter.Rewrite(rawQuery)
	normalizedQuery := rawQuery
	if len(rewrites) > 0 {
		normalizedQuery = rewrites[0].Text
	}
	classification, refs := rewrite.ClassifyAndExtract(rawQuery, normalizedQuery)

	candidates, failedCollections, err := c.searchPerCollection(ctx, rewrites, refs, filters)
	if err != nil {
		return answer.Answer{}, err
	}

	reranked, err := rerank.Run(ctx, c.reranker, normalizedQuery, candidates, 0)
	if err != nil {
		return answer.Answer{}, err
	}
	if dropped := len(candidates) - len(reranked); dropped > 0 {
		c.metrics.ObserveHistogram(obs.MetricRerankFloorDrops, float64(dropped), nil)
	}
	if limit > 0 && limit < len(reranked) {
		reranked = reranked[:limit]
	}

	ans := answer.Assemble(classification.Intent, reranked)
	ans = answer.DowngradeForFailedCollections(ans, failedCollections)
	return ans, nil
}

func (c *Core) searchPerCollection(ctx context.Context, rewrites []rewrite.Candidate, refs []intent.DocReference, filters map[string]string) ([]retrieve.Candidate, int, error) {
	collections := c.collectionNames()

	var candidates []retrieve.Candidate
	var failed int
	for i, collection := range collections {
		var collRefs []intent.DocReference
		if i == 0 {
			// Direct reference lookup runs once, not once per collection,
			// since it already searches across the shared lexical index
			// and would otherwise inflate reference-hit contributions by
			// len(collections).
			collRefs = refs
		}

		res, err := c.retriever.Run(ctx, rewrites, collRefs, retrieve.Options{
			Collections:     []string{collection},
			EqualityFilters: filters,
		})
		if err != nil {
			if correrr.IsTimeout(err) {
				return nil, 0, err
			}
			failed++
			c.log.Error("collection_search_failed", corelog.Fields{"collection": collection, "error": err.Error()})
			continue
		}
		candidates = append(candidates, res...)
		c.metrics.ObserveHistogram(obs.MetricQueryCandidates, float64(len(res)), map[string]string{"collection": collection})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Fused != candidates[j].Fused {
			return candidates[i].Fused > candidates[j].Fused
		}
		if candidates[i].DocID != candidates[j].DocID {
			return candidates[i].DocID < candidates[j].DocID
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
	if len(candidates) > retrieve.RerankTopK {
		candidates = candidates[:retrieve.RerankTopK]
	}
	return candidates, failed, nil
}

func (c *Core) collectionNames() []string {
	out := make([]string, 0, len(c.vectors))
	for name := range c.vectors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AnalogSearch runs C12 over an already-wired retriever/re-ranker (spec.md
// §6 "analog_search(equipment_type, params, filters, limit)").
func (c *Core) AnalogSearch(ctx context.Context, req analog.Request) ([]analog.Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryDeadline)
	defer cancel()
	return c.analogs.Search(ctx, req)
}
