package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/apierr"
	"legal-lens/internal/models"
)

// multipartSlack covers the form framing around the file itself.
const multipartSlack = 64 * 1024

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Extract handles POST /api/extract and /api/process.
func (h *Handler) Extract(c *gin.Context) {
	doc, err := h.readUpload(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	res, err := h.svc.Process(c.Request.Context(), doc)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, res)
}

type legacyAnalyzeResponse struct {
	Success    bool             `json:"success"`
	DocHash    string           `json:"docHash"`
	Cached     bool             `json:"cached"`
	Truncated  bool             `json:"truncated"`
	Summary    []string         `json:"summary"`
	RiskLevel  models.RiskLevel `json:"riskLevel"`
	Risks      []models.Risk    `json:"risks"`
	Disclaimer string           `json:"disclaimer"`
}

// Analyze handles POST /api/analyze, returning the analysis fields flattened.
func (h *Handler) Analyze(c *gin.Context) {
	doc, err := h.readUpload(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	res, err := h.svc.Process(c.Request.Context(), doc)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, legacyAnalyzeResponse{
		Success:    true,
		DocHash:    res.DocHash,
		Cached:     res.Cached,
		Truncated:  res.Truncated,
		Summary:    res.Analysis.Summary,
		RiskLevel:  res.Analysis.RiskLevel,
		Risks:      res.Analysis.Risks,
		Disclaimer: res.Analysis.Disclaimer,
	})
}

func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidRequest("Request body must be JSON with a question"))
		return
	}
	resp, err := h.svc.Chat(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

func (h *Handler) readUpload(c *gin.Context) (*models.RawDocument, error) {
	limit := h.svc.MaxFileBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apierr.FileTooLarge(limit)
		case errors.Is(err, http.ErrMissingFile):
			return nil, apierr.NoFileProvided()
		case strings.Contains(c.ContentType(), "multipart/form-data"):
			return nil, apierr.UnsupportedInput("Could not read the uploaded file", err)
		default:
			return nil, apierr.NoFileProvided()
		}
	}
	if fh.Size > limit {
		return nil, apierr.FileTooLarge(limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apierr.UnsupportedInput("Could not read the uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apierr.UnsupportedInput("Could not read the uploaded file", err)
	}

	clientHash := c.PostForm("clientHash")
	if clientHash == "" {
		clientHash = c.PostForm("hash")
	}
	return &models.RawDocument{
		Data:       data,
		MediaType:  fh.Header.Get("Content-Type"),
		Filename:   fh.Filename,
		Size:       fh.Size,
		ClientHash: clientHash,
	}, nil
}
