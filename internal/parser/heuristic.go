package parser

import (
	"regexp"
	"strings"

	"legal-lens/internal/models"
)

var heuristicRe = regexp.MustCompile(models.HeuristicRegex)

// heuristic scans the raw bytes for long runs of letters and whitespace.
// It only helps with simple, unencrypted files.
func (e *Extractor) heuristic(data []byte, _ Kind) (string, error) {
	matches := heuristicRe.FindAllString(string(data), -1)
	if len(matches) == 0 {
		return "", errNoText
	}
	text := strings.TrimSpace(strings.Join(matches, " "))
	if len(text) <= e.cfg.HeuristicMinTotal {
		return "", errNoText
	}
	return collapseWhitespace(text), nil
}
