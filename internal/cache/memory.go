package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"legal-lens/internal/models"
)

// Memory keeps records in process. maxEntries and ttl of zero mean no
// bound and no expiry. Records are copied in and out so callers never share
// the stored value.
type Memory struct {
	lru *expirable.LRU[string, *models.AnalysisRecord]
}

func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Memory{lru: expirable.NewLRU[string, *models.AnalysisRecord](maxEntries, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, hash string) (*models.AnalysisRecord, bool, error) {
	rec, ok := m.lru.Get(hash)
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (m *Memory) Put(_ context.Context, hash string, rec *models.AnalysisRecord) error {
	if m.lru.Contains(hash) {
		return nil
	}
	m.lru.Add(hash, rec.Clone())
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
