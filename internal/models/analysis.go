package models

// RiskLevel is the overall verdict of an analysis.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "Safe"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskHigh     RiskLevel = "High Risk"
	RiskUnknown  RiskLevel = "Unknown"
)

// Risk is a single flagged clause. Excerpt is nil when the model reported
// no supporting quote.
type Risk struct {
	Label   string  `json:"label"`
	Excerpt *string `json:"excerpt"`
	Reason  string  `json:"reason"`
}

// AnalysisRecord is the canonical analysis of one document. It is immutable
// once written to the cache.
type AnalysisRecord struct {
	Summary      []string  `json:"summary"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	Risks        []Risk    `json:"risks"`
	Disclaimer   string    `json:"disclaimer"`
	RawModelText string    `json:"rawModelText,omitempty"`
}

// Degraded reports whether the record was built without a parsable model object.
func (r *AnalysisRecord) Degraded() bool {
	return r.RawModelText != ""
}

// Clone returns a deep copy of r.
func (r *AnalysisRecord) Clone() *AnalysisRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Summary != nil {
		out.Summary = append([]string(nil), r.Summary...)
	}
	if r.Risks != nil {
		out.Risks = make([]Risk, len(r.Risks))
		for i, risk := range r.Risks {
			if risk.Excerpt != nil {
				excerpt := *risk.Excerpt
				risk.Excerpt = &excerpt
			}
			out.Risks[i] = risk
		}
	}
	return &out
}

// ExtractionMethod names the strategy that produced a document's text.
type ExtractionMethod string

const (
	MethodStructured          ExtractionMethod = "structured"
	MethodAlternateStructured ExtractionMethod = "alternate-structured"
	MethodHeuristic           ExtractionMethod = "heuristic"
)

// ExtractedText is the plain text of a document after truncation.
type ExtractedText struct {
	Text      string           `json:"text"`
	Method    ExtractionMethod `json:"method"`
	Truncated bool             `json:"truncated"`
	Length    int              `json:"length"`
	MediaType string           `json:"mediaType,omitempty"`
}

// RawDocument is an uploaded file. It lives for one request only.
type RawDocument struct {
	Data      []byte
	MediaType string
	Filename  string
	Size      int64
	// ClientHash is the advisory digest computed by the uploader over Data.
	ClientHash string
}

// ProcessResult is returned by the extraction entrypoint.
type ProcessResult struct {
	DocHash          string           `json:"docHash"`
	Truncated        bool             `json:"truncated"`
	Analysis         *AnalysisRecord  `json:"analysis"`
	Cached           bool             `json:"cached"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod,omitempty"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a session transcript.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatRequest asks a question about a cached analysis or ad-hoc context.
type ChatRequest struct {
	DocHash  string `json:"docHash,omitempty"`
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
	// Message is accepted as an alias for Question.
	Message string `json:"message,omitempty"`
}

// ChatResponse carries the model's plain-text answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}
