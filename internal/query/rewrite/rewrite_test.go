package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteAlwaysKeepsOriginalAsFirstCandidate(t *testing.T) {
	r := New(nil)
	candidates := r.Rewrite("какая температура в цехе")
	require.NotEmpty(t, candidates)
	assert.Equal(t, "original", candidates[0].Source)
	assert.Equal(t, 1.0, candidates[0].Confidence)
}

func TestRewriteNormalizesCitationSpacing(t *testing.T) {
	r := New(nil)
	candidates := r.Rewrite("см. ГОСТ  21.201 - 2011")
	assert.Equal(t, "см. ГОСТ 21.201-2011", candidates[0].Text)
}

func TestRewriteExpandsSynonyms(t *testing.T) {
	r := New(SynonymMap{"насос": {"pump"}})
	candidates := r.Rewrite("подобрать насос для контура")
	var found bool
	for _, c := range candidates {
		if c.Source == "synonym" {
			found = true
			assert.Less(t, c.Confidence, 1.0)
		}
	}
	assert.True(t, found, "expected at least one synonym expansion candidate")
}

func TestRewriteAddsIntentHintForDefinitionQuery(t *testing.T) {
	r := New(nil)
	candidates := r.Rewrite("что такое рабочее давление")
	var found bool
	for _, c := range candidates {
		if c.Source == "intent_hint" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRewriteCachesByQueryHash(t *testing.T) {
	r := New(nil)
	first := r.Rewrite("температура воздуха")
	second := r.Rewrite("температура воздуха")
	require.Len(t, first, len(second))
	assert.Equal(t, first[0].Text, second[0].Text)
}

func TestClassifyAndExtractOrdersPipelineCorrectly(t *testing.T) {
	classification, refs := ClassifyAndExtract("см. ГОСТ 21.201-2011, п. 4.2", "см. ГОСТ 21.201-2011, п. 4.2")
	assert.Equal(t, "reference", string(classification.Intent))
	require.Len(t, refs, 1)
	assert.Equal(t, "ГОСТ", refs[0].Family)
}

func TestLoadSynonymsFromLinesSkipsBlankAndCommentLines(t *testing.T) {
	src := "# comment\n\nнасос=pump,pumps\nклапан = valve\n"
	loaded, err := LoadSynonymsFromLines(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"pump", "pumps"}, loaded["насос"])
	assert.Equal(t, []string{"valve"}, loaded["клапан"])
}

func TestLoadSynonymsFromLinesIgnoresMalformedLines(t *testing.T) {
	loaded, err := LoadSynonymsFromLines(strings.NewReader("no-equals-sign\nнасос=\n"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
