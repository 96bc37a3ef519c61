package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setupTestHome points HOME at a temp dir and returns it.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, home, content string, perm os.FileMode) string {
	t.Helper()
	dir := filepath.Join(home, ".config", "folio")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)
	path := writeConfig(t, home, `
server:
  http_port: 9191
  shutdown_timeout: 3s
auth:
  jwt_secret: `+testSecret+`
  token_ttl: 1h
llm:
  provider: openai
  api_key: sk-test
memory:
  min_importance: 0.5
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL.Duration())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey.Value())
	assert.Equal(t, 0.5, cfg.Memory.MinImportance)

	// Untouched sections keep their defaults.
	assert.Equal(t, "local", cfg.Embeddings.Provider)
	assert.Equal(t, 1200, cfg.Knowledge.ChunkSize)
	assert.True(t, cfg.Logging.Stdout)
	assert.Equal(t, filepath.Join(home, ".local", "share", "folio", "folio.db"), cfg.Storage.Path)
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	home := setupTestHome(t)
	path := writeConfig(t, home, "server:\n  http_port: 9191\n", 0600)

	t.Setenv("FOLIO_SERVER_HTTP_PORT", "7000")
	t.Setenv("FOLIO_AUTH_JWT_SECRET", testSecret)
	t.Setenv("FOLIO_VECTORSTORE_IN_MEMORY", "true")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret.Value())
	assert.True(t, cfg.VectorStore.InMemory)
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	home := setupTestHome(t)
	t.Setenv("FOLIO_AUTH_JWT_SECRET", testSecret)

	cfg, err := LoadWithFile(filepath.Join(home, ".config", "folio", "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8420, cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.LLM.Provider)
}

func TestLoadWithFile_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	home := setupTestHome(t)
	path := writeConfig(t, home, "auth:\n  jwt_secret: "+testSecret+"\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path validation failed")
}

func TestValidateConfigPath(t *testing.T) {
	home := setupTestHome(t)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"user config dir", filepath.Join(home, ".config", "folio", "config.yaml"), false},
		{"nested user dir", filepath.Join(home, ".config", "folio", "prod", "config.yaml"), false},
		{"system dir", "/etc/folio/config.yaml", false},
		{"sibling prefix", "/etc/folio-evil/config.yaml", true},
		{"traversal", filepath.Join(home, ".config", "folio", "..", "..", "secrets.yaml"), true},
		{"tmp", "/tmp/config.yaml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadBytes_ValidationErrors(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing jwt secret",
			yaml: "server:\n  http_port: 8080\n",
			want: "auth.jwt_secret is required",
		},
		{
			name: "short jwt secret",
			yaml: "auth:\n  jwt_secret: short\n",
			want: "at least 32 bytes",
		},
		{
			name: "unknown llm provider",
			yaml: "auth:\n  jwt_secret: " + testSecret + "\nllm:\n  provider: cohere\n",
			want: "llm.provider",
		},
		{
			name: "anthropic without key",
			yaml: "auth:\n  jwt_secret: " + testSecret + "\nllm:\n  provider: anthropic\n",
			want: "llm.api_key is required",
		},
		{
			name: "overlap larger than chunk",
			yaml: "auth:\n  jwt_secret: " + testSecret + "\nknowledge:\n  chunk_size: 100\n  chunk_overlap: 200\n",
			want: "knowledge.chunk_overlap",
		},
		{
			name: "bad port",
			yaml: "auth:\n  jwt_secret: " + testSecret + "\nserver:\n  http_port: 70000\n",
			want: "server.http_port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.http_port", envKey("FOLIO_SERVER_HTTP_PORT"))
	assert.Equal(t, "llm.api_key", envKey("FOLIO_LLM_API_KEY"))
	assert.Equal(t, "debug", envKey("FOLIO_DEBUG"))
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.NotContains(t, strings.ToLower(s.GoString()), "hunter2")

	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(b))
	assert.Equal(t, "hunter2", s.Value())

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())
	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
