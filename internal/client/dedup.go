package client

import (
	"sync"

	"legal-lens/internal/helper"
	"legal-lens/internal/models"
)

// DedupGuard remembers results by the digest of the raw file bytes so an
// unchanged file is not uploaded twice in one session. It is advisory: the
// server caches on extracted text, not on file bytes.
type DedupGuard struct {
	mu      sync.Mutex
	results map[string]*models.ProcessResult
}

func NewDedupGuard() *DedupGuard {
	return &DedupGuard{results: make(map[string]*models.ProcessResult)}
}

// Check hashes data and returns the result seen for it, if any.
func (g *DedupGuard) Check(data []byte) (string, *models.ProcessResult, bool) {
	hash := helper.HashBytes(data)
	g.mu.Lock()
	defer g.mu.Unlock()
	res, ok := g.results[hash]
	return hash, res, ok
}

func (g *DedupGuard) Remember(hash string, res *models.ProcessResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results[hash] = res
}

// Forget drops every remembered result.
func (g *DedupGuard) Forget() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.results)
}
