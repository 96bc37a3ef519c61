package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/secrets"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Content lists published portfolio content.
type Content interface {
	ListCaseStudies(ctx context.Context, publishedOnly bool) ([]storage.CaseStudy, error)
	ListExperience(ctx context.Context) ([]storage.ExperienceEntry, error)
}

// Knowledge searches uploaded documents.
type Knowledge interface {
	Search(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
}

// Memory recalls what chat visitors have shared.
type Memory interface {
	GetSession(ctx context.Context, id string) (storage.ConversationSession, error)
	RelevantMemories(ctx context.Context, sessionID, query string, limit int) ([]conversation.ScoredMemory, error)
	Profile(ctx context.Context, visitorID string) (storage.UserProfile, error)
}

// Services are the backends behind the tools.
type Services struct {
	Content   Content
	Knowledge Knowledge
	Memory    Memory
	Scrubber  *secrets.Scrubber
}

// Config configures the MCP server.
type Config struct {
	// Name is the implementation name reported to clients (default "folio").
	Name    string
	Version string
	Logger  *zap.Logger
	// MeterProvider receives tool metrics; nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultConfig returns the default server identity.
func DefaultConfig() *Config {
	return &Config{
		Name:    "folio",
		Version: "dev",
		Logger:  zap.NewNop(),
	}
}

// Server is an MCP server backed by the folio services.
type Server struct {
	mcp       *mcp.Server
	content   Content
	knowledge Knowledge
	memory    Memory
	scrubber  *secrets.Scrubber
	validate  *validator.Validate
	registry  *ToolRegistry
	metrics   *Metrics
	logger    *zap.Logger
}

// NewServer creates the server and registers every tool.
func NewServer(cfg *Config, svc Services) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "folio"
	}
	switch {
	case svc.Content == nil:
		return nil, errors.New("content service is required")
	case svc.Knowledge == nil:
		return nil, errors.New("knowledge service is required")
	case svc.Memory == nil:
		return nil, errors.New("memory service is required")
	}
	v, err := cms.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		content:   svc.Content,
		knowledge: svc.Knowledge,
		memory:    svc.Memory,
		scrubber:  svc.Scrubber,
		validate:  v,
		registry:  NewToolRegistry(),
		metrics:   NewMetrics(cfg.MeterProvider, cfg.Logger),
		logger:    cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// Registry returns the metadata of the registered tools.
func (s *Server) Registry() *ToolRegistry {
	return s.registry
}

// Run serves on the stdio transport until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport", zap.Int("tools", s.registry.Count()))
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves on t.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	if err := s.mcp.Run(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// check validates a tool input against its validate tags.
func (s *Server) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return cms.ValidationFailure(err)
	}
	return nil
}
