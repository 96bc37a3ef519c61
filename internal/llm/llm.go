// Package llm is the language model layer used for document analysis,
// session summaries and chat replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
)

// ErrDisabled is returned by the disabled client.
var ErrDisabled = errors.New("language model is disabled")

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion call. Zero MaxTokens and Temperature use
// the client's configured defaults.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Response is the model output.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client completes prompts.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	// Available reports whether Complete can succeed at all.
	Available() bool
	Provider() string
}

// Func adapts a function to Client.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Complete(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }
func (f Func) Available() bool                                             { return true }
func (f Func) Provider() string                                            { return "func" }

// Disabled is the client used when no provider is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, Request) (Response, error) { return Response{}, ErrDisabled }
func (Disabled) Available() bool                                    { return false }
func (Disabled) Provider() string                                   { return "disabled" }

const (
	defaultAnthropicModel   = "claude-3-5-haiku-latest"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultTimeout          = 60 * time.Second
	defaultMaxTokens        = 1024
	defaultTemperature      = 0.3
	defaultRateLimit        = 2.0
	defaultBurst            = 4
	defaultBaseBackoff      = 500 * time.Millisecond
)

// New builds the client selected by cfg.Provider, wrapped with metrics and
// logging.
func New(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		c   Client
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "disabled":
		return Disabled{}, nil
	case "anthropic":
		c, err = newAnthropicClient(cfg)
	case "openai":
		c, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c, logger), nil
}

func (r Request) maxTokens(fallback int) int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	if fallback > 0 {
		return fallback
	}
	return defaultMaxTokens
}

func (r Request) temperature(fallback float64) float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return fallback
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
