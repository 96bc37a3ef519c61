package embeddings

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.EmbeddingsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())
	assert.Equal(t, defaultLocalDimension, p.Dimension())

	_, err = NewProvider(config.EmbeddingsConfig{Provider: "tei"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewProvider(config.EmbeddingsConfig{Provider: "openai"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewProvider(config.EmbeddingsConfig{Provider: "word2vec"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewProvider(config.EmbeddingsConfig{Provider: "local", Dimension: 4}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLocal_Similarity(t *testing.T) {
	l, err := NewLocal(256)
	require.NoError(t, err)
	ctx := context.Background()

	vecs, err := l.EmbedDocuments(ctx, []string{
		"Built a Kubernetes operator in Go for database failover",
		"Painted watercolor landscapes of coastal villages",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	q, err := l.EmbedQuery(ctx, "kubernetes operators written in Go")
	require.NoError(t, err)
	assert.Len(t, q, 256)
	assert.Greater(t, cosine(q, vecs[0]), cosine(q, vecs[1]))
	assert.InDelta(t, 1.0, cosine(q, q), 1e-5)
}

func TestLocal_Deterministic(t *testing.T) {
	l, err := NewLocal(64)
	require.NoError(t, err)
	a, err := l.EmbedQuery(context.Background(), "same text")
	require.NoError(t, err)
	b, err := l.EmbedQuery(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLocal_NonWordTextIsUnitVector(t *testing.T) {
	l, err := NewLocal(32)
	require.NoError(t, err)
	vecs, err := l.EmbedDocuments(context.Background(), []string{"!!! ???"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cosine(vecs[0], vecs[0]), 1e-6)
}

func TestLocal_EmptyInput(t *testing.T) {
	l, err := NewLocal(32)
	require.NoError(t, err)
	_, err = l.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = l.EmbedQuery(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"build", "distribut", "system"}, Tokenize("Building the distributed systems!"))
	assert.Empty(t, Tokenize("a I of the"))
	assert.Equal(t, []string{"go", "k8s"}, Tokenize("Go, k8s"))
}

func TestTEI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req struct {
			Inputs   any  `json:"inputs"`
			Truncate bool `json:"truncate"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Truncate)
		switch in := req.Inputs.(type) {
		case string:
			_, _ = w.Write([]byte(`[[0.1,0.2,0.3]]`))
		case []any:
			out := make([][]float32, len(in))
			for i := range in {
				out[i] = []float32{float32(i), 1, 0}
			}
			_ = json.NewEncoder(w).Encode(out)
		}
	}))
	defer srv.Close()

	p, err := NewTEI(config.EmbeddingsConfig{BaseURL: srv.URL + "/", Dimension: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Dimension())

	q, err := p.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, q)

	docs, err := p.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1, 0}, {1, 1, 0}}, docs)
}

func TestTEI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewTEI(config.EmbeddingsConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.EmbedQuery(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "503")
}

func TestOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, defaultOpenAIModel, body["model"])
		assert.EqualValues(t, 2, body["dimensions"])
		w.Header().Set("Content-Type", "application/json")
		// Out of order on purpose.
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(config.EmbeddingsConfig{APIKey: config.Secret("sk-test"), BaseURL: srv.URL + "/v1/", Dimension: 2})
	require.NoError(t, err)
	vecs, err := p.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}
