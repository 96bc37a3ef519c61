// Package config loads folio configuration from YAML and environment variables.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Config holds the complete folio configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Storage     StorageConfig     `koanf:"storage"`
	Auth        AuthConfig        `koanf:"auth"`
	LLM         LLMConfig         `koanf:"llm"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Knowledge   KnowledgeConfig   `koanf:"knowledge"`
	Memory      MemoryConfig      `koanf:"memory"`
	Contact     ContactConfig     `koanf:"contact"`
	Logging     LoggingConfig     `koanf:"logging"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
	Secrets     SecretsConfig     `koanf:"secrets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	BodyLimit       string   `koanf:"body_limit"`
	CORSOrigins     []string `koanf:"cors_origins"`
}

// StorageConfig points at the SQLite database file.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig configures admin login and token issuance.
type AuthConfig struct {
	AdminPassword Secret   `koanf:"admin_password"`
	JWTSecret     Secret   `koanf:"jwt_secret"`
	TokenTTL      Duration `koanf:"token_ttl"`
	Issuer        string   `koanf:"issuer"`
}

// LLMConfig selects the language model provider used for document analysis,
// session summaries and chat replies.
type LLMConfig struct {
	Provider    string   `koanf:"provider"` // disabled, anthropic, openai
	Model       string   `koanf:"model"`
	APIKey      Secret   `koanf:"api_key"`
	BaseURL     string   `koanf:"base_url"`
	MaxTokens   int      `koanf:"max_tokens"`
	Temperature float64  `koanf:"temperature"`
	Timeout     Duration `koanf:"timeout"`
	MaxRetries  int      `koanf:"max_retries"`
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `koanf:"provider"` // local, tei, openai
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url"`
	APIKey    Secret `koanf:"api_key"`
	Dimension int    `koanf:"dimension"`
}

// VectorStoreConfig configures the embedded chromem store.
type VectorStoreConfig struct {
	Path     string `koanf:"path"`
	Compress bool   `koanf:"compress"`
	InMemory bool   `koanf:"in_memory"`
}

// KnowledgeConfig configures document ingestion.
type KnowledgeConfig struct {
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
	ChunkSize      int    `koanf:"chunk_size"`
	ChunkOverlap   int    `koanf:"chunk_overlap"`
	InboxDir       string `koanf:"inbox_dir"`
	ContextTokens  int    `koanf:"context_tokens"`
}

// MemoryConfig tunes conversation memory extraction and retrieval.
type MemoryConfig struct {
	MaxMemoriesPerSession int      `koanf:"max_memories_per_session"`
	MinImportance         float64  `koanf:"min_importance"`
	RecencyHalfLife       Duration `koanf:"recency_half_life"`
	ContextTokenBudget    int      `koanf:"context_token_budget"`
	HistoryTurns          int      `koanf:"history_turns"`
}

// ContactConfig rate limits the public contact form per client IP.
type ContactConfig struct {
	RatePerMinute float64 `koanf:"rate_per_minute"`
	Burst         int     `koanf:"burst"`
}

// LoggingConfig holds logger settings. The logging package turns this into
// a zap core.
type LoggingConfig struct {
	Level      string            `koanf:"level"`
	Format     string            `koanf:"format"`
	Stdout     bool              `koanf:"stdout"`
	File       LogFileConfig     `koanf:"file"`
	Sampling   bool              `koanf:"sampling"`
	Caller     bool              `koanf:"caller"`
	Fields     map[string]string `koanf:"fields"`
	Redaction  RedactionConfig   `koanf:"redaction"`
	Stacktrace string            `koanf:"stacktrace"`
}

// LogFileConfig enables a rotating log file.
type LogFileConfig struct {
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// RedactionConfig lists log field names and value patterns to mask.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Endpoint        string   `koanf:"endpoint"`
	Protocol        string   `koanf:"protocol"` // grpc, http/protobuf
	ServiceName     string   `koanf:"service_name"`
	ServiceVersion  string   `koanf:"service_version"`
	Insecure        bool     `koanf:"insecure"`
	TLSSkipVerify   bool     `koanf:"tls_skip_verify"`
	SampleRate      float64  `koanf:"sample_rate"`
	ExportInterval  Duration `koanf:"export_interval"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// SecretsConfig controls scrubbing of credentials from ingested documents
// and chat messages.
type SecretsConfig struct {
	Enabled   bool     `koanf:"enabled"`
	AllowList []string `koanf:"allow_list"`
}

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	bodyLimitPattern = regexp.MustCompile(`^[0-9]+[KMG]?$`)
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.http_port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		add("server.shutdown_timeout must be positive")
	}
	if c.Server.BodyLimit != "" && !bodyLimitPattern.MatchString(c.Server.BodyLimit) {
		add("server.body_limit %q must look like 10M", c.Server.BodyLimit)
	}
	if c.Storage.Path == "" {
		add("storage.path is required")
	}

	if !c.Auth.JWTSecret.IsSet() {
		add("auth.jwt_secret is required")
	} else if len(c.Auth.JWTSecret.Value()) < 32 {
		add("auth.jwt_secret must be at least 32 bytes")
	}
	if c.Auth.TokenTTL.Duration() <= 0 {
		add("auth.token_ttl must be positive")
	}

	switch c.LLM.Provider {
	case "disabled":
	case "anthropic", "openai":
		if !c.LLM.APIKey.IsSet() {
			add("llm.api_key is required for provider %q", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			add("llm.model is required for provider %q", c.LLM.Provider)
		}
	default:
		add("llm.provider must be disabled, anthropic or openai, got %q", c.LLM.Provider)
	}
	if c.LLM.Timeout.Duration() <= 0 {
		add("llm.timeout must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		add("llm.temperature must be between 0 and 2")
	}

	switch c.Embeddings.Provider {
	case "local":
	case "tei":
		if c.Embeddings.BaseURL == "" {
			add("embeddings.base_url is required for provider tei")
		}
	case "openai":
		if !c.Embeddings.APIKey.IsSet() && !c.LLM.APIKey.IsSet() {
			add("embeddings.api_key is required for provider openai")
		}
	default:
		add("embeddings.provider must be local, tei or openai, got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimension <= 0 {
		add("embeddings.dimension must be positive")
	}

	if !c.VectorStore.InMemory && c.VectorStore.Path == "" {
		add("vectorstore.path is required unless vectorstore.in_memory is set")
	}

	if c.Knowledge.MaxUploadBytes <= 0 {
		add("knowledge.max_upload_bytes must be positive")
	}
	if c.Knowledge.ChunkSize <= 0 {
		add("knowledge.chunk_size must be positive")
	}
	if c.Knowledge.ChunkOverlap < 0 || c.Knowledge.ChunkOverlap >= c.Knowledge.ChunkSize {
		add("knowledge.chunk_overlap must be in [0, chunk_size)")
	}

	if c.Memory.MinImportance < 0 || c.Memory.MinImportance > 1 {
		add("memory.min_importance must be between 0 and 1")
	}
	if c.Memory.MaxMemoriesPerSession <= 0 {
		add("memory.max_memories_per_session must be positive")
	}
	if c.Memory.ContextTokenBudget <= 0 {
		add("memory.context_token_budget must be positive")
	}

	if c.Contact.RatePerMinute <= 0 || c.Contact.Burst <= 0 {
		add("contact.rate_per_minute and contact.burst must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		add("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if !c.Logging.Stdout && c.Logging.File.Path == "" {
		add("logging needs stdout or a file path")
	}
	for _, p := range c.Logging.Redaction.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			add("logging.redaction pattern %q: %v", p, err)
		}
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			add("telemetry.endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			add("telemetry.sample_rate must be between 0 and 1")
		}
	}

	return errors.Join(errs...)
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a configuration with every default applied. It is not valid
// on its own: auth.jwt_secret has no default.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8420,
			ShutdownTimeout: Duration(10 * time.Second),
			BodyLimit:       "25M",
		},
		Storage: StorageConfig{Path: "~/.local/share/folio/folio.db"},
		Auth: AuthConfig{
			TokenTTL: Duration(12 * time.Hour),
			Issuer:   "folio",
		},
		LLM: LLMConfig{
			Provider:    "disabled",
			MaxTokens:   1024,
			Temperature: 0.3,
			Timeout:     Duration(60 * time.Second),
			MaxRetries:  3,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "local",
			Model:     "hashing-v1",
			Dimension: 384,
		},
		VectorStore: VectorStoreConfig{
			Path:     "~/.local/share/folio/vectorstore",
			Compress: true,
		},
		Knowledge: KnowledgeConfig{
			MaxUploadBytes: 20 << 20,
			ChunkSize:      1200,
			ChunkOverlap:   150,
			ContextTokens:  1500,
		},
		Memory: MemoryConfig{
			MaxMemoriesPerSession: 200,
			MinImportance:         0.4,
			RecencyHalfLife:       Duration(72 * time.Hour),
			ContextTokenBudget:    1200,
			HistoryTurns:          8,
		},
		Contact: ContactConfig{
			RatePerMinute: 3,
			Burst:         3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Stdout: true,
			File: LogFileConfig{
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 28,
				Compress:   true,
			},
			Sampling:   true,
			Caller:     true,
			Stacktrace: "error",
			Fields:     map[string]string{"service": "folio"},
			Redaction:  RedactionConfig{Enabled: true},
		},
		Telemetry: TelemetryConfig{
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			ServiceName:     "folio",
			ServiceVersion:  "0.1.0",
			Insecure:        true,
			SampleRate:      1.0,
			ExportInterval:  Duration(15 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Secrets: SecretsConfig{Enabled: true},
	}
	applyDefaults(cfg)
	return cfg
}
