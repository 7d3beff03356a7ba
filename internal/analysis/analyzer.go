package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/apierr"
	"legal-lens/internal/config"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/models"
)

// BuildPrompt returns the analysis prompt for the extracted document text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(models.AnalysisPromptTemplate, text)
}

// Analyzer asks the model for a summary and risk assessment of a document.
type Analyzer struct {
	backend         llmservice.Backend
	temperature     float64
	disableThinking bool
}

func NewAnalyzer(backend llmservice.Backend, cfg *config.LLMConfig) *Analyzer {
	return &Analyzer{
		backend:         backend,
		temperature:     cfg.Temperature,
		disableThinking: cfg.DisableThinking,
	}
}

// Analyze returns the raw model text for text. Any transport or API failure
// is returned as an AnalysisUnavailable error; there is no retry.
func (a *Analyzer) Analyze(ctx context.Context, text string) (string, error) {
	start := time.Now()
	raw, err := a.backend.Generate(ctx, llmservice.Request{
		Prompt:          BuildPrompt(text),
		Temperature:     a.temperature,
		DisableThinking: a.disableThinking,
	})
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Analysis request failed")
		return "", apierr.AnalysisUnavailable(err)
	}
	log.Debug().Int("chars", len(raw)).Dur("elapsed", time.Since(start)).Msg("Analysis response received")
	return raw, nil
}

// Run analyzes text and normalizes the answer into a record.
func (a *Analyzer) Run(ctx context.Context, text string) (*models.AnalysisRecord, error) {
	raw, err := a.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}
