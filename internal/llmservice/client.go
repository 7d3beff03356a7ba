package llmservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"legal-lens/internal/config"
)

// Request is a single-prompt, non-streaming completion.
type Request struct {
	Prompt          string
	Temperature     float64
	DisableThinking bool
}

// Backend sends a prompt to a model and returns its text.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New returns the backend named by cfg.Provider, rate limited when
// cfg.RequestsPerSecond is set.
func New(cfg *config.LLMConfig) (Backend, error) {
	log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Creating llm backend")

	var (
		backend Backend
		err     error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		backend = NewGemini(cfg, &http.Client{Timeout: cfg.Timeout})
	case config.ProviderOpenAI:
		backend, err = newOpenAI(cfg)
	case config.ProviderOllama:
		backend, err = newOllama(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond > 0 {
		backend = WithRateLimit(backend, cfg.RequestsPerSecond, cfg.Burst)
	}
	return backend, nil
}

// LangChain adapts any langchaingo model to Backend.
type LangChain struct {
	llm     llms.Model
	cfg     config.LLMConfig
}

func NewLangChain(llm llms.Model, cfg *config.LLMConfig) *LangChain {
	return &LangChain{llm: llm, cfg: *cfg}
}

func newOpenAI(cfg *config.LLMConfig) (*LangChain, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangChain(llm, cfg), nil
}

func newOllama(cfg *config.LLMConfig) (*LangChain, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangChain(llm, cfg), nil
}

func (l *LangChain) Generate(ctx context.Context, req Request) (string, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}
	return llms.GenerateFromSinglePrompt(ctx, l.llm, req.Prompt, llms.WithTemperature(req.Temperature))
}
