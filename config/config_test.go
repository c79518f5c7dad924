package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "documents", cfg.Collection)
	assert.Equal(t, 2, cfg.TopK)
	assert.Equal(t, 3, cfg.MaxCritiqueCycles)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	dir := t.TempDir()
	yaml := []byte("provider: anthropic\nmodel: claude-sonnet-4-0\ntop_k: 5\nredis_addr: localhost:6379\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-0", cfg.Model)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	// File values must not disturb untouched defaults.
	assert.Equal(t, 3, cfg.MaxCritiqueCycles)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("AGENTHUB_MODEL", "gpt-4o")

	dir := t.TempDir()
	yaml := []byte("model: gpt-4o-mini\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Provider:     ProviderOpenAI,
		OpenAIAPIKey: "k",
		TopK:         2, MaxCritiqueCycles: 3,
		PostgresPort: 5432,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"bad provider", func(c *Config) { c.Provider = "cohere" }, ErrInvalidProvider},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"excess cycles", func(c *Config) { c.MaxCritiqueCycles = 99 }, ErrInvalidCritiqueCycles},
		{"bad port", func(c *Config) { c.PostgresPort = 0 }, ErrInvalidPostgresPort},
		{"anthropic without key", func(c *Config) { c.Provider = ProviderAnthropic }, ErrMissingAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{
		PostgresHost: "db", PostgresPort: 5433,
		PostgresUser: "u", PostgresPassword: "p",
		PostgresDBName: "app", PostgresSSLMode: "require",
	}
	assert.Equal(t, "postgres://u:p@db:5433/app?sslmode=require", cfg.PostgresDSN())
}
