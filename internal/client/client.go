package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/apierr"
	"legal-lens/internal/models"
)

// Client talks to a running server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxFileBytes int64
	guard        *DedupGuard
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   httpClient,
		maxFileBytes: models.MaxFileBytes,
		guard:        NewDedupGuard(),
	}
}

// Upload sends a file for analysis. The second return value is true when
// the result was reused from an earlier upload of the same bytes.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*models.ProcessResult, bool, error) {
	if len(data) == 0 {
		return nil, false, apierr.NoFileProvided()
	}
	if int64(len(data)) > c.maxFileBytes {
		return nil, false, apierr.FileTooLarge(c.maxFileBytes)
	}

	hash, prev, ok := c.guard.Check(data)
	if ok {
		log.Debug().Str("client_hash", hash).Msg("File unchanged, reusing previous result")
		return prev, true, nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, false, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, false, err
	}
	if err := w.WriteField("clientHash", hash); err != nil {
		return nil, false, err
	}
	if err := w.Close(); err != nil {
		return nil, false, err
	}

	var res models.ProcessResult
	if err := c.do(ctx, "/api/extract", w.FormDataContentType(), &body, &res); err != nil {
		return nil, false, err
	}
	c.guard.Remember(hash, &res)
	return &res, false, nil
}

// Chat asks a question about an uploaded document.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var resp models.ChatResponse
	if err := c.do(ctx, "/api/chat", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do posts body to path and decodes a 200 response into out. Error
// responses come back as *apierr.Error.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string      `json:"error"`
			Code  apierr.Kind `json:"code"`
		}
		if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
			return fmt.Errorf("request failed: %d, %s", resp.StatusCode, string(data))
		}
		return apierr.New(e.Code, resp.StatusCode, e.Error, nil)
	}
	return json.Unmarshal(data, out)
}
