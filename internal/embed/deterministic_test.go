package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicIsStableAndDimensioned(t *testing.T) {
	e := NewDeterministic("bge-m3", 1024, true, 7)
	ctx := context.Background()

	v1, err := e.EmbedBatch(ctx, []string{"centrifugal pump"})
	require.NoError(t, err)
	v2, err := e.EmbedBatch(ctx, []string{"centrifugal pump"})
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1[0], 1024)
}

func TestDeterministicDiffersByDimension(t *testing.T) {
	text := NewDeterministic("bge-m3", 1024, false, 1)
	clip := NewDeterministic("clip", 768, false, 2)
	ctx := context.Background()

	vt, _ := text.EmbedBatch(ctx, []string{"pump"})
	vc, _ := clip.EmbedBatch(ctx, []string{"pump"})
	assert.NotEqual(t, len(vt[0]), len(vc[0]))
}
