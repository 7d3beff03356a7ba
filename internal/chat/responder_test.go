package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/apierr"
	"legal-lens/internal/cache"
	"legal-lens/internal/config"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/models"
)

type scriptedBackend struct {
	answer  string
	err     error
	prompts []string
}

func (s *scriptedBackend) Generate(_ context.Context, req llmservice.Request) (string, error) {
	s.prompts = append(s.prompts, req.Prompt)
	return s.answer, s.err
}

// forbiddenCache fails the test if it is touched.
type forbiddenCache struct{ t *testing.T }

func (f forbiddenCache) Get(context.Context, string) (*models.AnalysisRecord, bool, error) {
	f.t.Fatal("cache lookup without a document hash")
	return nil, false, nil
}

func (f forbiddenCache) Put(context.Context, string, *models.AnalysisRecord) error {
	f.t.Fatal("cache write from chat")
	return nil
}

func (f forbiddenCache) Close() error { return nil }

const hash = "4f9d7c7a0e4c1b2a3d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4"

func TestAnswerUsesCachedSummary(t *testing.T) {
	c := cache.NewMemory(0, 0)
	require.NoError(t, c.Put(context.Background(), hash, &models.AnalysisRecord{
		Summary:   []string{"Lease runs 12 months.", "Auto-renews yearly."},
		RiskLevel: models.RiskModerate,
		Risks:     []models.Risk{},
	}))
	backend := &scriptedBackend{answer: "  It renews every year.  "}
	r := NewResponder(c, backend, &config.LLMConfig{})

	resp, err := r.Answer(context.Background(), models.ChatRequest{DocHash: hash, Question: "Does it renew?", Context: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "It renews every year.", resp.Answer)
	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "Lease runs 12 months.\nAuto-renews yearly.")
	assert.NotContains(t, backend.prompts[0], "ignored")
	assert.Contains(t, backend.prompts[0], models.ChatRefusal)
	assert.Contains(t, backend.prompts[0], "Does it renew?")
}

func TestAnswerFallsBackToRawModelText(t *testing.T) {
	c := cache.NewMemory(0, 0)
	require.NoError(t, c.Put(context.Background(), hash, &models.AnalysisRecord{
		Summary:      []string{""},
		RiskLevel:    models.RiskUnknown,
		RawModelText: "raw model output",
	}))
	backend := &scriptedBackend{answer: "ok"}

	_, err := NewResponder(c, backend, &config.LLMConfig{}).Answer(context.Background(), models.ChatRequest{DocHash: hash, Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, backend.prompts[0], "raw model output")
}

func TestAnswerWithoutHashNeverTouchesCache(t *testing.T) {
	backend := &scriptedBackend{answer: "Rent is due on the 1st."}
	r := NewResponder(forbiddenCache{t}, backend, &config.LLMConfig{})

	resp, err := r.Answer(context.Background(), models.ChatRequest{Question: "When is rent due?", Context: "Rent is due on the first day."})
	require.NoError(t, err)
	assert.Equal(t, "Rent is due on the 1st.", resp.Answer)
	assert.Contains(t, backend.prompts[0], "Rent is due on the first day.")
}

func TestAnswerBoundsSuppliedContext(t *testing.T) {
	backend := &scriptedBackend{answer: "ok"}
	r := NewResponder(nil, backend, &config.LLMConfig{})

	long := strings.Repeat("x", models.MaxChatContextChars+500)
	_, err := r.Answer(context.Background(), models.ChatRequest{Question: "q", Context: long})
	require.NoError(t, err)
	assert.Contains(t, backend.prompts[0], strings.Repeat("x", models.MaxChatContextChars))
	assert.NotContains(t, backend.prompts[0], strings.Repeat("x", models.MaxChatContextChars+1))
}

func TestAnswerMissingContext(t *testing.T) {
	backend := &scriptedBackend{answer: "ok"}
	r := NewResponder(cache.NewMemory(0, 0), backend, &config.LLMConfig{})

	_, err := r.Answer(context.Background(), models.ChatRequest{DocHash: hash, Question: "q"})
	assert.True(t, apierr.IsKind(err, apierr.KindMissingAnalysisContext))
	assert.Empty(t, backend.prompts)
}

func TestAnswerRequiresQuestion(t *testing.T) {
	r := NewResponder(nil, &scriptedBackend{}, &config.LLMConfig{})
	_, err := r.Answer(context.Background(), models.ChatRequest{Context: "c", Question: "   "})
	assert.True(t, apierr.IsKind(err, apierr.KindInvalidRequest))
}

func TestAnswerAcceptsMessageAlias(t *testing.T) {
	backend := &scriptedBackend{answer: "yes"}
	r := NewResponder(nil, backend, &config.LLMConfig{})
	_, err := r.Answer(context.Background(), models.ChatRequest{Message: "Is there a deposit?", Context: "Deposit: $500"})
	require.NoError(t, err)
	assert.Contains(t, backend.prompts[0], "Is there a deposit?")
}

func TestAnswerEmptyModelReply(t *testing.T) {
	r := NewResponder(nil, &scriptedBackend{answer: "   "}, &config.LLMConfig{})
	resp, err := r.Answer(context.Background(), models.ChatRequest{Question: "q", Context: "c"})
	require.NoError(t, err)
	assert.Equal(t, models.NoAnswerFromModel, resp.Answer)
}

func TestAnswerBackendFailure(t *testing.T) {
	r := NewResponder(nil, &scriptedBackend{err: errors.New("503")}, &config.LLMConfig{})
	_, err := r.Answer(context.Background(), models.ChatRequest{Question: "q", Context: "c"})
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, 500, e.Status)
	assert.Equal(t, apierr.KindAnalysisUnavailable, e.Kind)
}
