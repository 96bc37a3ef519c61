package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fyrsmithlabs/folio/internal/config"
)

// OpenAI embeds text through the OpenAI embeddings API.
type OpenAI struct {
	client  openai.Client
	model   string
	dim     int
	metrics *Metrics
}

// NewOpenAI returns an OpenAI embeddings client. BaseURL may point at any
// compatible endpoint.
func NewOpenAI(cfg config.EmbeddingsConfig) (*OpenAI, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("%w: api key required for openai embeddings", ErrInvalidConfig)
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey.Value()),
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model, dim: cfg.Dimension}, nil
}

// EmbedDocuments embeds texts in one request.
func (o *OpenAI) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	var err error
	defer func() { o.metrics.Record(ctx, "openai", "embed_documents", time.Since(start), len(texts), err) }()

	if len(texts) == 0 {
		err = fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
		return nil, err
	}
	var out [][]float32
	out, err = o.embed(ctx, texts)
	return out, err
}

// EmbedQuery embeds a single query.
func (o *OpenAI) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var err error
	defer func() { o.metrics.Record(ctx, "openai", "embed_query", time.Since(start), 1, err) }()

	if text == "" {
		err = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return nil, err
	}
	var out [][]float32
	out, err = o.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (o *OpenAI) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: o.model,
	}
	if o.dim > 0 {
		params.Dimensions = openai.Int(int64(o.dim))
	}
	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: status %d: %v", ErrEmbeddingFailed, apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingFailed, len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

func (o *OpenAI) Dimension() int { return o.dim }
func (o *OpenAI) Name() string   { return "openai" }
func (o *OpenAI) Close() error   { return nil }
