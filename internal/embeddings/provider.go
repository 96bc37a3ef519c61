// Package embeddings turns text into vectors for the knowledge base.
//
// Three providers are available. "local" hashes tokens into a fixed-size
// vector and needs no network. "tei" calls a Text Embeddings Inference
// server. "openai" calls the OpenAI embeddings API (or any compatible
// endpoint).
package embeddings

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

var (
	// ErrEmptyInput indicates empty or nil input texts
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

const (
	defaultLocalDimension = 384
	defaultTEIModel       = "BAAI/bge-small-en-v1.5"
	defaultOpenAIModel    = "text-embedding-3-small"
)

// Provider is the interface for embedding providers.
type Provider interface {
	vectorstore.Embedder
	// Dimension returns the vector size, or 0 if it is not known until the
	// first call.
	Dimension() int
	// Name identifies the provider in logs and metrics.
	Name() string
	Close() error
}

// NewProvider creates an embedding provider from configuration.
func NewProvider(cfg config.EmbeddingsConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := NewMetrics(logger)

	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		dim := cfg.Dimension
		if dim == 0 {
			dim = defaultLocalDimension
		}
		p, err := NewLocal(dim)
		if err != nil {
			return nil, err
		}
		p.metrics = metrics
		logger.Info("embeddings provider ready", zap.String("provider", "local"), zap.Int("dimension", dim))
		return p, nil
	case "tei":
		p, err := NewTEI(cfg)
		if err != nil {
			return nil, err
		}
		p.metrics = metrics
		logger.Info("embeddings provider ready", zap.String("provider", "tei"),
			zap.String("base_url", p.baseURL), zap.String("model", p.model))
		return p, nil
	case "openai":
		p, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		p.metrics = metrics
		logger.Info("embeddings provider ready", zap.String("provider", "openai"), zap.String("model", p.model))
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unsupported embeddings provider %q (use local, tei or openai)", ErrInvalidConfig, cfg.Provider)
	}
}
