package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/assistant"
	"github.com/fyrsmithlabs/folio/internal/auth"
	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/embeddings"
	"github.com/fyrsmithlabs/folio/internal/extraction"
	"github.com/fyrsmithlabs/folio/internal/http"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/mcp"
	"github.com/fyrsmithlabs/folio/internal/secrets"
	"github.com/fyrsmithlabs/folio/internal/storage/sqlite"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

// Registry holds the wired services.
type Registry struct {
	store         *sqlite.Store
	embedder      embeddings.Provider
	vectors       *vectorstore.Store
	llm           llm.Client
	scrubber      *secrets.Scrubber
	cms           *cms.Service
	knowledge     *knowledge.Processor
	conversations *conversation.Manager
	assistant     *assistant.Assistant
	auth          *auth.Authenticator
	logger        *zap.Logger
}

// Open opens storage and builds every service in dependency order. On error
// everything opened so far is closed.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Registry, err error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{logger: logger}
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()

	if r.store, err = sqlite.Open(cfg.Storage.Path); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err = r.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging store: %w", err)
	}
	logger.Info("store ready", zap.String("path", cfg.Storage.Path))

	if r.embedder, err = embeddings.NewProvider(cfg.Embeddings, logger); err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	if r.vectors, err = vectorstore.New(cfg.VectorStore, r.embedder, logger); err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if r.llm, err = llm.New(cfg.LLM, logger); err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	if r.scrubber, err = secrets.New(cfg.Secrets); err != nil {
		return nil, fmt.Errorf("creating scrubber: %w", err)
	}

	tokenizer := llm.NewTokenizer(llm.DefaultEncoding)
	if loadErr := tokenizer.LoadError(); loadErr != nil {
		logger.Warn("token encoding unavailable, estimating from length", zap.Error(loadErr))
	}

	if r.cms, err = cms.NewService(r.store, logger); err != nil {
		return nil, err
	}
	if r.knowledge, err = knowledge.NewProcessor(cfg.Knowledge, r.store, r.vectors, logger,
		knowledge.WithLLM(r.llm),
		knowledge.WithScrubber(r.scrubber),
		knowledge.WithTokenizer(tokenizer),
	); err != nil {
		return nil, err
	}

	extractor, err := extraction.NewExtractor()
	if err != nil {
		return nil, fmt.Errorf("creating memory extractor: %w", err)
	}
	if r.conversations, err = conversation.NewManager(cfg.Memory, r.store, logger,
		conversation.WithLLM(r.llm),
		conversation.WithTokenizer(tokenizer),
		conversation.WithExtractor(extractor),
	); err != nil {
		return nil, err
	}
	if r.assistant, err = assistant.New(r.cms, r.knowledge, r.conversations, logger,
		assistant.WithLLM(r.llm),
		assistant.WithScrubber(r.scrubber),
	); err != nil {
		return nil, err
	}
	if r.auth, err = auth.New(cfg.Auth); err != nil {
		return nil, fmt.Errorf("creating authenticator: %w", err)
	}

	logger.Info("services ready",
		zap.String("embeddings", r.embedder.Name()),
		zap.String("llm", r.llm.Provider()),
		zap.Bool("llm_available", r.llm.Available()),
		zap.Bool("secret_scrubbing", r.scrubber.Enabled()),
	)
	return r, nil
}

func (r *Registry) Store() *sqlite.Store                 { return r.store }
func (r *Registry) Vectors() *vectorstore.Store          { return r.vectors }
func (r *Registry) LLM() llm.Client                      { return r.llm }
func (r *Registry) CMS() *cms.Service                    { return r.cms }
func (r *Registry) Knowledge() *knowledge.Processor      { return r.knowledge }
func (r *Registry) Conversations() *conversation.Manager { return r.conversations }
func (r *Registry) Assistant() *assistant.Assistant      { return r.assistant }
func (r *Registry) Auth() *auth.Authenticator            { return r.auth }

// HTTPDeps returns the dependencies of the REST API.
func (r *Registry) HTTPDeps(version string) http.Deps {
	return http.Deps{
		CMS:           r.cms,
		Knowledge:     r.knowledge,
		Conversations: r.conversations,
		Assistant:     r.assistant,
		Auth:          r.auth,
		Status:        r.store,
		Vectors:       r.vectors,
		Version:       version,
	}
}

// MCPServices returns the backends of the MCP tools.
func (r *Registry) MCPServices() mcp.Services {
	return mcp.Services{
		Content:   r.cms,
		Knowledge: r.knowledge,
		Memory:    r.conversations,
		Scrubber:  r.scrubber,
	}
}

// Close releases resources in reverse order of Open.
func (r *Registry) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.vectors != nil {
		if err := r.vectors.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing vector store: %w", err))
		}
	}
	if r.embedder != nil {
		if err := r.embedder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing embedder: %w", err))
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	return errors.Join(errs...)
}
