package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/apierr"
	"legal-lens/internal/cache"
	"legal-lens/internal/config"
	"legal-lens/internal/helper"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/models"
)

const lease = "This lease auto-renews unless cancelled 60 days prior."

const validAnswer = `{"summary":["The lease renews automatically.","Cancel 60 days before the end."],
"riskLevel":"Moderate Risk",
"risks":[{"label":"Auto-renewal","excerpt":"auto-renews unless cancelled 60 days prior","reason":"Easy to miss the deadline."}],
"disclaimer":"Not legal advice."}`

type scriptedBackend struct {
	answer string
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (s *scriptedBackend) Generate(ctx context.Context, _ llmservice.Request) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.answer, s.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*models.AnalysisRecord, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (brokenCache) Put(context.Context, string, *models.AnalysisRecord) error {
	return errors.New("disk on fire")
}

func (brokenCache) Close() error { return nil }

func newPipeline(t *testing.T, c cache.Cache, backend llmservice.Backend) *Pipeline {
	t.Helper()
	p, err := New(config.Default(), c, backend)
	require.NoError(t, err)
	return p
}

func upload(text string) *models.RawDocument {
	return &models.RawDocument{Data: []byte(text), MediaType: "text/plain", Filename: "lease.txt", Size: int64(len(text))}
}

func TestProcessIsIdempotent(t *testing.T) {
	backend := &scriptedBackend{answer: validAnswer}
	p := newPipeline(t, cache.NewMemory(0, 0), backend)

	first, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, helper.HashText(lease), first.DocHash)
	assert.Equal(t, models.RiskModerate, first.Analysis.RiskLevel)
	require.Len(t, first.Analysis.Risks, 1)
	assert.Contains(t, strings.ToLower(first.Analysis.Risks[0].Label), "auto-renew")

	second, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.DocHash, second.DocHash)
	assert.Equal(t, first.Analysis, second.Analysis)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestProcessSharesEntryAcrossEncodings(t *testing.T) {
	backend := &scriptedBackend{answer: validAnswer}
	p := newPipeline(t, cache.NewMemory(0, 0), backend)

	_, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)

	html := &models.RawDocument{Data: []byte("<html><body><p>" + lease + "</p></body></html>"), MediaType: "text/html", Filename: "lease.html"}
	res, err := p.Process(context.Background(), html)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestProcessConcurrentUploadsShareOneCall(t *testing.T) {
	backend := &scriptedBackend{answer: validAnswer, delay: 50 * time.Millisecond}
	p := newPipeline(t, cache.NewMemory(0, 0), backend)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Process(context.Background(), upload(lease))
			assert.NoError(t, err)
			assert.Equal(t, models.RiskModerate, res.Analysis.RiskLevel)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestProcessTruncationPropagates(t *testing.T) {
	p := newPipeline(t, cache.NewMemory(0, 0), &scriptedBackend{answer: validAnswer})
	res, err := p.Process(context.Background(), upload(strings.Repeat("word ", 3000)))
	require.NoError(t, err)
	assert.True(t, res.Truncated)
}

func TestProcessDegradedAnswerIsCached(t *testing.T) {
	c := cache.NewMemory(0, 0)
	p := newPipeline(t, c, &scriptedBackend{answer: "Sorry, I cannot produce JSON today."})

	res, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)
	assert.Equal(t, models.RiskUnknown, res.Analysis.RiskLevel)
	assert.Equal(t, []string{"Sorry, I cannot produce JSON today."}, res.Analysis.Summary)

	_, ok, _ := c.Get(context.Background(), res.DocHash)
	assert.True(t, ok)
}

func TestProcessAnalysisFailureLeavesCacheUntouched(t *testing.T) {
	c := cache.NewMemory(0, 0)
	p := newPipeline(t, c, &scriptedBackend{err: errors.New("upstream 500")})

	_, err := p.Process(context.Background(), upload(lease))
	assert.True(t, apierr.IsKind(err, apierr.KindAnalysisUnavailable))
	assert.Equal(t, 0, c.Len())
}

func TestProcessSurvivesBrokenCache(t *testing.T) {
	backend := &scriptedBackend{answer: validAnswer}
	p := newPipeline(t, brokenCache{}, backend)

	res, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, models.RiskModerate, res.Analysis.RiskLevel)
}

func TestProcessRejectsBadUploads(t *testing.T) {
	p := newPipeline(t, cache.NewMemory(0, 0), &scriptedBackend{answer: validAnswer})

	_, err := p.Process(context.Background(), &models.RawDocument{})
	assert.True(t, apierr.IsKind(err, apierr.KindNoFileProvided))

	big := make([]byte, models.MaxFileBytes+1)
	_, err = p.Process(context.Background(), &models.RawDocument{Data: big})
	assert.True(t, apierr.IsKind(err, apierr.KindFileTooLarge))

	_, err = p.Process(context.Background(), &models.RawDocument{Data: []byte("%PDF-1.4\n%%EOF"), MediaType: "application/pdf"})
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindExtractionFailed, e.Kind)
	assert.Contains(t, e.Message, "scanned")
}

func TestChatAfterProcess(t *testing.T) {
	backend := &scriptedBackend{answer: validAnswer}
	p := newPipeline(t, cache.NewMemory(0, 0), backend)

	res, err := p.Process(context.Background(), upload(lease))
	require.NoError(t, err)

	backend.answer = "Yes, it renews automatically."
	reply, err := p.Chat(context.Background(), models.ChatRequest{DocHash: res.DocHash, Question: "Does it renew?"})
	require.NoError(t, err)
	assert.Equal(t, "Yes, it renews automatically.", reply.Answer)
}

// slowBackend answers after delay unless ctx ends first.
type slowBackend struct {
	delay time.Duration
	calls atomic.Int32
}

func (s *slowBackend) Generate(ctx context.Context, _ llmservice.Request) (string, error) {
	s.calls.Add(1)
	select {
	case <-time.After(s.delay):
		return validAnswer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestProcessCancelledCallerDoesNotFailOthers(t *testing.T) {
	backend := &slowBackend{delay: 100 * time.Millisecond}
	c := cache.NewMemory(0, 0)
	p := newPipeline(t, c, backend)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Process(firstCtx, upload(lease))
		firstErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	secondDone := make(chan struct{})
	var (
		second    *models.ProcessResult
		secondErr error
	)
	go func() {
		defer close(secondDone)
		second, secondErr = p.Process(context.Background(), upload(lease))
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	assert.ErrorIs(t, <-firstErr, context.Canceled)
	<-secondDone
	require.NoError(t, secondErr)
	assert.Equal(t, models.RiskModerate, second.Analysis.RiskLevel)
	assert.Equal(t, int32(1), backend.calls.Load())

	_, ok, _ := c.Get(context.Background(), helper.HashText(lease))
	assert.True(t, ok)
}
