package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"legal-lens/internal/config"
	"legal-lens/internal/helper"
	"legal-lens/internal/models"
)

// StrategyFunc turns document bytes into text. An error or text shorter
// than the minimum hands over to the next strategy.
type StrategyFunc func(data []byte, kind Kind) (string, error)

// Strategy is one step of the fallback chain.
type Strategy struct {
	Method  models.ExtractionMethod
	Extract StrategyFunc
}

// Extractor runs the strategy chain and truncates the result.
type Extractor struct {
	cfg        config.ExtractConfig
	strategies []Strategy
}

// NewExtractor builds the default chain: structured, alternate structured,
// heuristic. Zero config values fall back to the package defaults.
func NewExtractor(cfg config.ExtractConfig) *Extractor {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = models.MaxTextChars
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = models.MinTextChars
	}
	if cfg.AlternatePageLimit <= 0 {
		cfg.AlternatePageLimit = models.AlternatePageLimit
	}
	if cfg.HeuristicMinTotal <= 0 {
		cfg.HeuristicMinTotal = models.HeuristicMinTotal
	}

	e := &Extractor{cfg: cfg}
	e.strategies = []Strategy{
		{Method: models.MethodStructured, Extract: structured},
		{Method: models.MethodAlternateStructured, Extract: e.alternateStructured},
		{Method: models.MethodHeuristic, Extract: e.heuristic},
	}
	return e
}

// WithStrategies replaces the chain. Used to append or reorder strategies.
func (e *Extractor) WithStrategies(strategies ...Strategy) *Extractor {
	e.strategies = strategies
	return e
}

// Extract returns the text of data or an *ExtractionFailure. It never
// modifies data.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType, filename string) (*models.ExtractedText, error) {
	kind := DetectKind(data, mediaType, filename)
	logger := log.With().Str("kind", string(kind)).Str("filename", filename).Logger()

	var attempts []error
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := run(s.Extract, data, kind)
		if err != nil {
			logger.Debug().Err(err).Str("method", string(s.Method)).Msg("Extraction strategy failed")
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Method, err))
			continue
		}
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) < e.cfg.MinChars {
			logger.Debug().Str("method", string(s.Method)).Int("chars", len(text)).Msg("Extraction strategy found too little text")
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Method, errNoText))
			continue
		}

		logger.Info().Str("method", string(s.Method)).Int("chars", utf8.RuneCountInString(text)).Msg("Extracted text")
		return e.finish(text, s.Method, kind), nil
	}

	logger.Warn().Int("attempts", len(attempts)).Msg("All extraction methods failed")
	return nil, newFailure(kind, kind == KindPDF && isEncryptedPDF(data), attempts)
}

func (e *Extractor) finish(text string, method models.ExtractionMethod, kind Kind) *models.ExtractedText {
	text, truncated := helper.TruncateRunes(text, e.cfg.MaxChars)
	if truncated {
		text += models.TruncationMarker
	}
	return &models.ExtractedText{
		Text:      text,
		Method:    method,
		Truncated: truncated,
		Length:    utf8.RuneCountInString(text),
		MediaType: string(kind),
	}
}

// run converts parser panics on malformed input into errors.
func run(fn StrategyFunc, data []byte, kind Kind) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(data, kind)
}

func structured(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return parsePDF(data)
	case KindDOCX:
		return parseDOCX(data)
	case KindPPTX:
		return parsePPTX(data)
	case KindXLSX:
		return parseXLSX(data)
	case KindHTML:
		return parseHTML(data)
	case KindMarkdown:
		return parseMarkdown(data)
	case KindText:
		return parseText(data)
	default:
		return "", errUnsupported
	}
}

func (e *Extractor) alternateStructured(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return parsePDFAlternate(data, e.cfg.AlternatePageLimit)
	case KindDOCX:
		return parseOpenXML(data, "word/document.xml")
	case KindPPTX:
		return parseOpenXML(data, "ppt/slides/")
	case KindXLSX:
		return parseXLSXAlternate(data)
	case KindHTML:
		return parseHTMLAlternate(data)
	case KindMarkdown:
		return parseText(data)
	default:
		return "", errUnsupported
	}
}

// collapseWhitespace squeezes runs of blanks inside lines and drops empty lines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
