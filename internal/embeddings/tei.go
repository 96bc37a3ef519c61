package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/folio/internal/config"
)

// TEI calls a Text Embeddings Inference server's /embed endpoint.
type TEI struct {
	baseURL string
	model   string
	apiKey  string
	dim     int
	client  *http.Client
	metrics *Metrics
}

// teiRequest is the request body for TEI embed endpoint.
type teiRequest struct {
	Inputs   any  `json:"inputs"`
	Truncate bool `json:"truncate"`
}

// NewTEI validates cfg and returns a TEI client.
func NewTEI(cfg config.EmbeddingsConfig) (*TEI, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required for tei", ErrInvalidConfig)
	}
	model := cfg.Model
	if model == "" {
		model = defaultTEIModel
	}
	return &TEI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   model,
		apiKey:  cfg.APIKey.Value(),
		dim:     cfg.Dimension,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (s *TEI) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	var err error
	defer func() { s.metrics.Record(ctx, "tei", "embed_documents", time.Since(start), len(texts), err) }()

	if len(texts) == 0 {
		err = fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
		return nil, err
	}
	var vectors [][]float32
	vectors, err = s.post(ctx, teiRequest{Inputs: texts, Truncate: true})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		err = fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingFailed, len(texts), len(vectors))
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (s *TEI) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var err error
	defer func() { s.metrics.Record(ctx, "tei", "embed_query", time.Since(start), 1, err) }()

	if text == "" {
		err = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return nil, err
	}
	var vectors [][]float32
	vectors, err = s.post(ctx, teiRequest{Inputs: text, Truncate: true})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		err = fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
		return nil, err
	}
	return vectors[0], nil
}

func (s *TEI) post(ctx context.Context, req teiRequest) ([][]float32, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return vectors, nil
}

func (s *TEI) Dimension() int { return s.dim }
func (s *TEI) Name() string   { return "tei" }
func (s *TEI) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
