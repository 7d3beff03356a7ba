package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"legal-lens/internal/models"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Extract  ExtractConfig  `yaml:"extract"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Mode           string   `yaml:"mode"` // gin mode: debug, release, test
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type ExtractConfig struct {
	MaxFileBytes       int64 `yaml:"max_file_bytes"`
	MaxChars           int   `yaml:"max_chars"`
	MinChars           int   `yaml:"min_chars"`
	AlternatePageLimit int   `yaml:"alternate_page_limit"`
	HeuristicMinTotal  int   `yaml:"heuristic_min_total"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"` // gemini, openai, ollama
	BaseURL           string        `yaml:"base_url"`
	Key               string        `yaml:"key"`
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	DisableThinking   bool          `yaml:"disable_thinking"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend"` // memory, file, redis, postgres, sqlite
	Dir        string        `yaml:"dir"`
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // pgdriver, pq or sqlite
	DSN    string `yaml:"dsn"`
	Debug  bool   `yaml:"debug"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Default returns a config with every limit set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			Mode:           "release",
		},
		Log: LogConfig{Level: "info", Format: "console"},
		Extract: ExtractConfig{
			MaxFileBytes:       models.MaxFileBytes,
			MaxChars:           models.MaxTextChars,
			MinChars:           models.MinTextChars,
			AlternatePageLimit: models.AlternatePageLimit,
			HeuristicMinTotal:  models.HeuristicMinTotal,
		},
		LLM: LLMConfig{
			Provider:        ProviderGemini,
			Model:           "gemini-2.0-flash",
			DisableThinking: true,
			Timeout:         60 * time.Second,
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
			Dir:     os.TempDir(),
		},
		Database: DatabaseConfig{Driver: "pgdriver"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	if c.LLM.Key == "" {
		switch c.LLM.Provider {
		case ProviderGemini:
			setString(&c.LLM.Key, "GEMINI_API_KEY")
		case ProviderOpenAI:
			setString(&c.LLM.Key, "OPENAI_API_KEY")
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.Key == "" {
			return fmt.Errorf("llm.key is required for provider %q", c.LLM.Provider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file backend")
		}
	case BackendPostgres, BackendSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the %s backend", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Extract.MaxFileBytes <= 0 || c.Extract.MaxChars <= 0 {
		return fmt.Errorf("extract limits must be positive")
	}
	return nil
}
