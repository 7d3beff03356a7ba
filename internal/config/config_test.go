package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(models.MaxFileBytes), cfg.Extract.MaxFileBytes)
	assert.Equal(t, 10000, cfg.Extract.MaxChars)
	assert.Equal(t, 5, cfg.Extract.AlternatePageLimit)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
llm:
  provider: openai
  model: gpt-4o-mini
  timeout: 15s
cache:
  backend: file
  dir: /tmp/cache
  ttl: 1h
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.Key)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	// defaults survive a partial file
	assert.Equal(t, 10000, cfg.Extract.MaxChars)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [\n"), 0o600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "gemini without key")

	cfg.LLM.Key = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Cache.Backend = BackendSQLite
	assert.Error(t, cfg.Validate())
	cfg.Database.DSN = "file:test.db"
	assert.NoError(t, cfg.Validate())

	cfg.Cache.Backend = "tape"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Provider = ProviderOllama
	assert.NoError(t, cfg.Validate())
	cfg.LLM.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}
