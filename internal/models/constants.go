package models

const (
	MaxFileBytes           = 2 * 1024 * 1024
	MaxTextChars           = 10000
	MinTextChars           = 10
	AlternatePageLimit     = 5
	HeuristicMinRun        = 20
	HeuristicMinTotal      = 50
	DegradedSummaryChars   = 400
	MaxChatContextChars    = 8000
	MaxSummaryItems        = 5
	CacheKeyPrefix         = "analysis_"
	TruncationMarker       = "\n\n[TRUNCATED]"
	DegradedDisclaimer     = "This is an AI-generated summary for demo only."
	DefaultDisclaimer      = "This is an AI-generated summary, not legal advice."
	ChatRefusal            = "I can't find that in the document."
	NoAnswerFromModel      = "No answer from model."
	HeuristicRegex         = `[a-zA-Z\s]{20,}`
	ContextSeparator       = "\n"
	AnalysisPromptTemplate = `You are a plain-language legal assistant. Use ONLY the DOCUMENT text below. Do not use outside knowledge.
Return a valid JSON object ONLY (no commentary) with exactly these keys:
{
  "summary": ["short sentence bullet 1", "short sentence bullet 2", "short sentence bullet 3"],
  "riskLevel": "Safe" | "Moderate Risk" | "High Risk",
  "risks": [
    { "label": "Auto-renewal", "excerpt": "<short quote from doc if present>", "reason": "one-line reason" }
  ],
  "disclaimer": "a short single-line disclaimer"
}

DOCUMENT:
---
%s
---

Rules:
- If you cannot find evidence in the document, do NOT invent it. Omit that risk or set excerpt to null and reason to "not found in document".
- Never quote an excerpt that does not appear word for word in the DOCUMENT.
- Keep each summary item to one short sentence.
- If no risks found, set risks to an empty array.
- RETURN ONLY JSON (no surrounding text).`
	ChatPromptTemplate = `You are a plain-language legal assistant. Use ONLY the CONTEXT below (do not assume facts beyond it).
Context:
%s

User question:
%s

Answer in simple, short sentences (2-4 sentences). If the information isn't present in the context, say "%s"`
)

// CacheKey is the storage key of an analysis.
func CacheKey(hash string) string {
	return CacheKeyPrefix + hash
}
