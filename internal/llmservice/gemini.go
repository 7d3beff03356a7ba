package llmservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/config"
)

// DefaultGeminiBaseURL is used when no base URL is configured.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent REST endpoint directly.
type Gemini struct {
	baseURL string
	key     string
	model   string
	client  *http.Client
}

func NewGemini(cfg *config.LLMConfig, client *http.Client) *Gemini {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &Gemini{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     cfg.Key,
		model:   cfg.Model,
		client:  client,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature    float64 `json:"temperature"`
		ThinkingConfig *struct {
			ThinkingBudget int `json:"thinkingBudget"`
		} `json:"thinkingConfig,omitempty"`
	} `json:"generationConfig"`
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	payload.GenerationConfig.Temperature = req.Temperature
	if req.DisableThinking {
		payload.GenerationConfig.ThinkingConfig = &struct {
			ThinkingBudget int `json:"thinkingBudget"`
		}{ThinkingBudget: 0}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.key)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("request failed: %d, %s", resp.StatusCode, string(body))
	}

	log.Debug().Int("bytes", len(body)).Str("model", g.model).Msg("Gemini response received")
	return FindText(body), nil
}

// FindText pulls the model text out of a response body. It looks in
// candidates[0].content.parts, candidates[0].content[0].parts and a
// top-level content[0].parts, and falls back to the whole body.
func FindText(body []byte) string {
	var resp struct {
		Candidates []struct {
			Content json.RawMessage `json:"content"`
		} `json:"candidates"`
		Content []geminiContent `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return string(body)
	}

	if len(resp.Candidates) > 0 {
		if text := partsText(resp.Candidates[0].Content); text != "" {
			return text
		}
	}
	if len(resp.Content) > 0 {
		if text := joinParts(resp.Content[0].Parts); text != "" {
			return text
		}
	}
	return string(body)
}

func partsText(raw json.RawMessage) string {
	var single geminiContent
	if err := json.Unmarshal(raw, &single); err == nil {
		return joinParts(single.Parts)
	}
	var list []geminiContent
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return joinParts(list[0].Parts)
	}
	return ""
}

func joinParts(parts []geminiPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
