package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/apierr"
	"legal-lens/internal/cache"
	"legal-lens/internal/config"
	"legal-lens/internal/helper"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/models"
)

// BuildPrompt returns the grounding prompt for one question.
func BuildPrompt(grounding, question string) string {
	return fmt.Sprintf(models.ChatPromptTemplate, grounding, question, models.ChatRefusal)
}

// Responder answers questions about a cached analysis or supplied context.
// It keeps no state between calls.
type Responder struct {
	cache           cache.Cache
	backend         llmservice.Backend
	temperature     float64
	disableThinking bool
}

func NewResponder(c cache.Cache, backend llmservice.Backend, cfg *config.LLMConfig) *Responder {
	return &Responder{
		cache:           c,
		backend:         backend,
		temperature:     cfg.Temperature,
		disableThinking: cfg.DisableThinking,
	}
}

// Answer resolves the context for req and asks the model.
func (r *Responder) Answer(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(req.Message)
	}
	if question == "" {
		return nil, apierr.InvalidRequest("Question is required")
	}

	grounding, err := r.resolveContext(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := r.backend.Generate(ctx, llmservice.Request{
		Prompt:          BuildPrompt(grounding, question),
		Temperature:     r.temperature,
		DisableThinking: r.disableThinking,
	})
	if err != nil {
		log.Error().Err(err).Str("hash", req.DocHash).Msg("Chat request failed")
		return nil, apierr.ChatUnavailable(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = models.NoAnswerFromModel
	}
	return &models.ChatResponse{Answer: answer}, nil
}

// resolveContext prefers the cached summary for req.DocHash and falls back
// to req.Context. The cache is only consulted when a hash is given.
func (r *Responder) resolveContext(ctx context.Context, req models.ChatRequest) (string, error) {
	if req.DocHash != "" && r.cache != nil {
		rec, ok, err := r.cache.Get(ctx, req.DocHash)
		if err != nil {
			log.Warn().Err(err).Str("hash", req.DocHash).Msg("Cache lookup failed, using supplied context")
		}
		if ok && rec != nil {
			if text := strings.Join(rec.Summary, models.ContextSeparator); strings.TrimSpace(text) != "" {
				return text, nil
			}
			if rec.RawModelText != "" {
				return rec.RawModelText, nil
			}
		}
	}

	if text := strings.TrimSpace(req.Context); text != "" {
		bounded, _ := helper.TruncateRunes(text, models.MaxChatContextChars)
		return bounded, nil
	}
	return "", apierr.MissingAnalysisContext()
}
