package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/model"
	"aedocs/internal/query/intent"
	"aedocs/internal/retrieve"
	"aedocs/internal/retrieve/rerank"
)

func result(docNo, clause, content string, final float64) rerank.Result {
	return rerank.Result{
		Candidate: retrieve.Candidate{
			ChunkID: docNo + clause,
			DocID:   docNo,
			Payload: model.CommonPayload{DocNo: docNo, Clause: clause, Content: content},
		},
		Final: final,
	}
}

func TestAssembleNoEvidence(t *testing.T) {
	a := Assemble(intent.General, nil)
	assert.Equal(t, 0.0, a.Confidence)
	assert.Empty(t, a.Sources)
}

func TestAssembleReferenceIsSinglePrimaryCitation(t *testing.T) {
	results := []rerank.Result{
		result("21.201-2011", "4.2", "требования к изоляции", 0.9),
		result("other", "1", "unrelated", 0.8),
	}
	a := Assemble(intent.Reference, results)
	require.Len(t, a.Sources, 1)
	assert.Equal(t, "21.201-2011", a.Sources[0].DocID)
	assert.Contains(t, a.Text, "21.201-2011, 4.2")
}

func TestAssembleComparisonBullets(t *testing.T) {
	results := []rerank.Result{
		result("a", "1", "текст a", 0.9),
		result("b", "1", "текст b", 0.85),
	}
	a := Assemble(intent.Comparison, results)
	assert.Len(t, a.Bullets, 2)
}

func TestAssembleRelevanceReportsStatus(t *testing.T) {
	r := result("a", "1", "текст", 0.9)
	r.Payload.IsCurrent = false
	r.Payload.CanceledBy = "ГОСТ 99-2020"
	a := Assemble(intent.Relevance, []rerank.Result{r})
	assert.Contains(t, a.Text, "не действует")
	assert.Contains(t, a.Text, "ГОСТ 99-2020")
}

func TestConfidenceClampedToRange(t *testing.T) {
	results := []rerank.Result{result("a", "1", "текст", 0.99)}
	a := Assemble(intent.Definition, results)
	assert.LessOrEqual(t, a.Confidence, MaxConfidence)
	assert.GreaterOrEqual(t, a.Confidence, MinConfidence)
}

func TestDowngradeForFailedCollections(t *testing.T) {
	a := Answer{Confidence: 0.9, Text: "ok"}
	down := DowngradeForFailedCollections(a, 2)
	assert.InDelta(t, 0.5, down.Confidence, 1e-9)
	assert.Contains(t, down.Text, "неполный результат")
}
