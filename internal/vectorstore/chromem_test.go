package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/embeddings"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

func newStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	emb, err := embeddings.NewLocal(128)
	require.NoError(t, err)
	s, err := vectorstore.New(config.VectorStoreConfig{InMemory: true}, emb, zap.NewNop())
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *vectorstore.Store) {
	t.Helper()
	err := s.AddDocuments(context.Background(), "knowledge", []vectorstore.Document{
		{ID: "a-0", Content: "Designed a Kafka event pipeline processing billions of messages", Metadata: map[string]string{"document_id": "a"}},
		{ID: "a-1", Content: "Led migration from monolith to Go microservices", Metadata: map[string]string{"document_id": "a"}},
		{ID: "b-0", Content: "Baked sourdough bread and pastries for the farmers market", Metadata: map[string]string{"document_id": "b"}},
	})
	require.NoError(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := vectorstore.New(config.VectorStoreConfig{InMemory: true}, nil, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)

	emb, err := embeddings.NewLocal(32)
	require.NoError(t, err)
	_, err = vectorstore.New(config.VectorStoreConfig{}, emb, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
}

func TestSearch_RanksRelevantFirst(t *testing.T) {
	s := newStore(t)
	seed(t, s)

	res, err := s.Search(context.Background(), "knowledge", "Kafka event pipeline", 10, nil)
	require.NoError(t, err)
	require.Len(t, res, 3, "k is capped at the collection size")
	assert.Equal(t, "a-0", res[0].ID)
	assert.Equal(t, "a", res[0].Metadata["document_id"])
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
}

func TestSearch_WhereFilter(t *testing.T) {
	s := newStore(t)
	seed(t, s)

	res, err := s.Search(context.Background(), "knowledge", "Kafka", 3, map[string]string{"document_id": "b"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b-0", res[0].ID)
}

func TestSearch_Errors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	res, err := s.Search(ctx, "missing", "anything", 3, nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = s.Search(ctx, "knowledge", "", 3, nil)
	assert.Error(t, err)
	_, err = s.Search(ctx, "knowledge", "q", 0, nil)
	assert.Error(t, err)
	_, err = s.Search(ctx, "Bad-Name", "q", 1, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidCollectionName)
}

func TestAddDocuments_Errors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	assert.ErrorIs(t, s.AddDocuments(ctx, "knowledge", nil), vectorstore.ErrEmptyDocuments)
	assert.Error(t, s.AddDocuments(ctx, "knowledge", []vectorstore.Document{{Content: "no id"}}))
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("down")
}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("down")
}

func TestAddDocuments_EmbeddingFailure(t *testing.T) {
	s, err := vectorstore.New(config.VectorStoreConfig{InMemory: true}, failingEmbedder{}, nil)
	require.NoError(t, err)
	err = s.AddDocuments(context.Background(), "knowledge", []vectorstore.Document{{ID: "x", Content: "x"}})
	assert.ErrorIs(t, err, vectorstore.ErrEmbeddingFailed)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteDocuments(ctx, "knowledge", []string{"b-0", "unknown"}))
	assert.Equal(t, 2, s.Count("knowledge"))

	require.NoError(t, s.DeleteWhere(ctx, "knowledge", map[string]string{"document_id": "a"}))
	assert.Equal(t, 0, s.Count("knowledge"))

	assert.Error(t, s.DeleteWhere(ctx, "knowledge", nil))
	assert.NoError(t, s.DeleteDocuments(ctx, "missing", []string{"x"}))
}

func TestUpsertReplacesByID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddDocuments(ctx, "memories", []vectorstore.Document{{ID: "m1", Content: "likes Go"}}))
	require.NoError(t, s.AddDocuments(ctx, "memories", []vectorstore.Document{{ID: "m1", Content: "likes Rust"}}))
	assert.Equal(t, 1, s.Count("memories"))

	doc, err := s.Get(ctx, "memories", "m1")
	require.NoError(t, err)
	assert.Equal(t, "likes Rust", doc.Content)
}

func TestCollections(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.AddDocuments(ctx, "memories", []vectorstore.Document{{ID: "m1", Content: "prefers remote work"}}))

	infos, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "knowledge", infos[0].Name)
	assert.Equal(t, 3, infos[0].Documents)
	assert.Equal(t, 128, infos[0].VectorSize)

	require.NoError(t, s.DeleteCollection(ctx, "memories"))
	assert.ErrorIs(t, s.DeleteCollection(ctx, "memories"), vectorstore.ErrCollectionNotFound)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	emb, err := embeddings.NewLocal(64)
	require.NoError(t, err)
	ctx := context.Background()

	s, err := vectorstore.New(config.VectorStoreConfig{Path: dir}, emb, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddDocuments(ctx, "knowledge", []vectorstore.Document{{ID: "p1", Content: "persisted chunk"}}))
	require.NoError(t, s.Close())

	reopened, err := vectorstore.New(config.VectorStoreConfig{Path: dir}, emb, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count("knowledge"))
}

func TestValidateCollectionName(t *testing.T) {
	assert.NoError(t, vectorstore.ValidateCollectionName("knowledge_v2"))
	assert.Error(t, vectorstore.ValidateCollectionName(""))
	assert.Error(t, vectorstore.ValidateCollectionName("has space"))
	assert.Error(t, vectorstore.ValidateCollectionName("UPPER"))
}
