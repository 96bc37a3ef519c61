package reranker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"built", "payment", "platform", "c++"},
		Keywords("I built the payment platform in C++ and the PAYMENT platform"))
	assert.Empty(t, Keywords("it is what it is"))
}

func TestOverlapAndJaccard(t *testing.T) {
	assert.InDelta(t, 0.5, Overlap([]string{"go", "rust"}, []string{"go", "java"}), 1e-6)
	assert.Zero(t, Overlap(nil, []string{"go"}))

	assert.InDelta(t, 1.0/3.0, Jaccard([]string{"go", "rust"}, []string{"go", "java"}), 1e-9)
	assert.InDelta(t, 1.0, Jaccard([]string{"go"}, []string{"go", "go"}), 1e-9)
	assert.Zero(t, Jaccard(nil, []string{"go"}))
}

func TestRerank(t *testing.T) {
	r := New()
	docs := []Document{
		{ID: "semantic", Content: "cloud infrastructure work", Score: 0.6},
		{ID: "keyword", Content: "kubernetes operator for postgres failover", Score: 0.5},
	}
	got, err := r.Rerank(context.Background(), "postgres failover operator", docs, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keyword", got[0].ID)
	assert.Equal(t, 1, got[0].OriginalRank)
	assert.InDelta(t, 1.0, got[0].Overlap, 1e-6)

	got, err = r.Rerank(context.Background(), "the", docs, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "semantic", got[0].ID, "no keywords keeps first-stage order")

	//nolint:staticcheck // nil context is the case under test
	_, err = r.Rerank(nil, "x", docs, 1)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestTopTerms(t *testing.T) {
	text := "Kafka pipelines. Kafka consumers and Kafka producers; pipelines scale."
	assert.Equal(t, []string{"kafka", "pipelines", "consumers"}, TopTerms(text, 3))
}
