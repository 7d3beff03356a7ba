package analysis

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/helper"
	"legal-lens/internal/models"
)

type field int

const (
	fieldSummary field = iota
	fieldRiskLevel
	fieldRisks
	fieldDisclaimer
)

// fieldAliases maps each canonical field to the keys model answers have
// used for it, in lookup order. Dotted keys walk nested objects.
var fieldAliases = map[field][]string{
	fieldSummary:    {"summary", "summaryPoints", "summaryText", "analysis.summary", "analysis.summaryPoints", "analysis.summaryText"},
	fieldRiskLevel:  {"riskLevel", "risk", "risk_level", "analysis.riskLevel", "analysis.risk", "analysis.risk_level"},
	fieldRisks:      {"risks", "riskyLines", "riskyClauses", "analysis.risks", "analysis.riskyLines", "analysis.riskyClauses"},
	fieldDisclaimer: {"disclaimer", "analysis.disclaimer"},
}

// riskAliases does the same for the keys of a single risk item.
var riskAliases = struct {
	label, excerpt, reason []string
}{
	label:   []string{"label", "title", "name", "clause", "type"},
	excerpt: []string{"excerpt", "quote", "text"},
	reason:  []string{"reason", "explanation", "why", "summary"},
}

// Normalize turns raw model output into an AnalysisRecord. It never fails:
// output without a parsable object becomes a degraded record carrying the
// raw text.
func Normalize(raw string) *models.AnalysisRecord {
	obj, ok := extractObject(raw)
	if !ok {
		log.Warn().Int("chars", len(raw)).Msg("Model output has no JSON object, returning degraded analysis")
		return degraded(raw)
	}

	rec := &models.AnalysisRecord{
		RiskLevel:  models.RiskUnknown,
		Risks:      []models.Risk{},
		Disclaimer: models.DefaultDisclaimer,
	}

	for _, key := range fieldAliases[fieldSummary] {
		if s := toSummary(lookup(obj, key)); len(s) > 0 {
			rec.Summary = s
			break
		}
	}
	for _, key := range fieldAliases[fieldRiskLevel] {
		if s, ok := lookup(obj, key).(string); ok && strings.TrimSpace(s) != "" {
			rec.RiskLevel = CanonicalRiskLevel(s)
			break
		}
	}
	for _, key := range fieldAliases[fieldRisks] {
		if items, ok := lookup(obj, key).([]any); ok {
			rec.Risks = toRisks(items)
			break
		}
	}
	for _, key := range fieldAliases[fieldDisclaimer] {
		if s, ok := lookup(obj, key).(string); ok && strings.TrimSpace(s) != "" {
			rec.Disclaimer = strings.TrimSpace(s)
			break
		}
	}

	if len(rec.Summary) == 0 {
		rec.Summary = []string{prefix(raw)}
		rec.RawModelText = raw
	}
	return rec
}

// extractObject parses the text between the first "{" and the last "}".
func extractObject(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func degraded(raw string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		Summary:      []string{prefix(raw)},
		RiskLevel:    models.RiskUnknown,
		Risks:        []models.Risk{},
		Disclaimer:   models.DegradedDisclaimer,
		RawModelText: raw,
	}
}

func prefix(raw string) string {
	s, _ := helper.TruncateRunes(raw, models.DegradedSummaryChars)
	return s
}

func lookup(obj map[string]any, key string) any {
	var cur any = obj
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func toSummary(v any) []string {
	var out []string
	switch s := v.(type) {
	case string:
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	case []any:
		for _, item := range s {
			if t, ok := item.(string); ok && strings.TrimSpace(t) != "" {
				out = append(out, strings.TrimSpace(t))
			}
		}
	}
	if len(out) > models.MaxSummaryItems {
		out = out[:models.MaxSummaryItems]
	}
	return out
}

func toRisks(items []any) []models.Risk {
	risks := make([]models.Risk, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			empty := ""
			risks = append(risks, models.Risk{Label: v, Excerpt: &empty})
		case map[string]any:
			risk := models.Risk{
				Label:  firstString(v, riskAliases.label),
				Reason: firstString(v, riskAliases.reason),
			}
			for _, key := range riskAliases.excerpt {
				if s, ok := v[key].(string); ok {
					risk.Excerpt = &s
					break
				}
			}
			risks = append(risks, risk)
		}
	}
	return risks
}

func firstString(m map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// CanonicalRiskLevel maps free-form risk labels onto the four levels.
func CanonicalRiskLevel(s string) models.RiskLevel {
	words := strings.Fields(strings.ToLower(s))
	if len(words) == 0 {
		return models.RiskUnknown
	}
	switch words[0] {
	case "safe", "low":
		return models.RiskSafe
	case "moderate", "medium":
		return models.RiskModerate
	case "high":
		return models.RiskHigh
	default:
		return models.RiskUnknown
	}
}
