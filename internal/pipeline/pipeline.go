package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"legal-lens/internal/analysis"
	"legal-lens/internal/apierr"
	"legal-lens/internal/cache"
	"legal-lens/internal/chat"
	"legal-lens/internal/config"
	"legal-lens/internal/helper"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/models"
	"legal-lens/internal/parser"
)

// Pipeline turns uploads into cached analyses and answers follow-up
// questions about them.
type Pipeline struct {
	extractor    *parser.Extractor
	cache        cache.Cache
	analyzer     *analysis.Analyzer
	validator    *analysis.Validator
	responder    *chat.Responder
	maxFileBytes int64
	flights      singleflight.Group
}

func New(cfg *config.Config, c cache.Cache, backend llmservice.Backend) (*Pipeline, error) {
	validator, err := analysis.NewValidator()
	if err != nil {
		return nil, err
	}
	maxFileBytes := cfg.Extract.MaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = models.MaxFileBytes
	}
	return &Pipeline{
		extractor:    parser.NewExtractor(cfg.Extract),
		cache:        c,
		analyzer:     analysis.NewAnalyzer(backend, &cfg.LLM),
		validator:    validator,
		responder:    chat.NewResponder(c, backend, &cfg.LLM),
		maxFileBytes: maxFileBytes,
	}, nil
}

// MaxFileBytes is the upload ceiling.
func (p *Pipeline) MaxFileBytes() int64 {
	return p.maxFileBytes
}

// Extract checks the upload, extracts its text and computes the content hash.
func (p *Pipeline) Extract(ctx context.Context, doc *models.RawDocument) (*models.ExtractedText, string, error) {
	if doc == nil || len(doc.Data) == 0 {
		return nil, "", apierr.NoFileProvided()
	}
	if int64(len(doc.Data)) > p.maxFileBytes || doc.Size > p.maxFileBytes {
		return nil, "", apierr.FileTooLarge(p.maxFileBytes)
	}

	extracted, err := p.extractor.Extract(ctx, doc.Data, doc.MediaType, doc.Filename)
	if err != nil {
		var failure *parser.ExtractionFailure
		if errors.As(err, &failure) {
			return nil, "", apierr.ExtractionFailed(failure.Message, failure)
		}
		return nil, "", err
	}
	return extracted, helper.HashText(extracted.Text), nil
}

type flightResult struct {
	record *models.AnalysisRecord
	cached bool
}

// Process runs extract, hash, cache lookup and, on a miss, analysis,
// normalization and the cache write.
func (p *Pipeline) Process(ctx context.Context, doc *models.RawDocument) (*models.ProcessResult, error) {
	start := time.Now()
	extracted, hash, err := p.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str("hash", hash).Str("method", string(extracted.Method)).Logger()
	if doc.ClientHash != "" {
		logger.Debug().Str("client_hash", doc.ClientHash).Msg("Upload carries client hash")
	}

	result := &models.ProcessResult{
		DocHash:          hash,
		Truncated:        extracted.Truncated,
		ExtractionMethod: extracted.Method,
	}

	if rec, ok := p.lookup(ctx, hash); ok {
		logger.Info().Msg("Analysis served from cache")
		result.Analysis, result.Cached = rec, true
		return result, nil
	}

	// The flight outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := p.flights.DoChan(hash, func() (any, error) {
		if rec, ok := p.lookup(flightCtx, hash); ok {
			return flightResult{record: rec, cached: true}, nil
		}
		rec, err := p.analyzer.Run(flightCtx, extracted.Text)
		if err != nil {
			return nil, err
		}
		p.store(flightCtx, hash, rec)
		return flightResult{record: rec}, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		fr := res.Val.(flightResult)
		result.Analysis = fr.record
		result.Cached = fr.cached
	}

	logger.Info().Bool("cached", result.Cached).Bool("truncated", result.Truncated).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("Document processed")
	return result, nil
}

// Chat answers a question about a processed document or ad-hoc context.
func (p *Pipeline) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return p.responder.Answer(ctx, req)
}

// lookup treats backend errors as misses.
func (p *Pipeline) lookup(ctx context.Context, hash string) (*models.AnalysisRecord, bool) {
	rec, ok, err := p.cache.Get(ctx, hash)
	if err != nil {
		log.Warn().Err(err).Str("hash", hash).Msg("Cache lookup failed")
		return nil, false
	}
	return rec, ok && rec != nil
}

// store writes only records that match the canonical shape. Write errors
// are logged; the caller still gets its analysis.
func (p *Pipeline) store(ctx context.Context, hash string, rec *models.AnalysisRecord) {
	if err := p.validator.Validate(rec); err != nil {
		log.Error().Err(err).Str("hash", hash).Msg("Refusing to cache invalid analysis")
		return
	}
	if err := p.cache.Put(ctx, hash, rec); err != nil {
		log.Error().Err(err).Str("hash", hash).Msg("Cache write failed")
	}
}
