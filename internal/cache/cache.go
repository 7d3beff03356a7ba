// Package cache stores analysis records keyed by the content hash of the
// extracted text.
package cache

import (
	"context"
	"fmt"
	"regexp"

	"legal-lens/internal/config"
	"legal-lens/internal/db"
	"legal-lens/internal/models"
)

// Cache is safe for concurrent use. Put is idempotent: the first record
// written for a hash wins. Records returned by Get are the caller's own
// copy; changing them never changes the stored entry.
type Cache interface {
	Get(ctx context.Context, hash string) (*models.AnalysisRecord, bool, error)
	Put(ctx context.Context, hash string, rec *models.AnalysisRecord) error
	Close() error
}

var hashRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidHash reports whether hash looks like a content hash.
func ValidHash(hash string) bool {
	return hashRe.MatchString(hash)
}

// New opens the backend named by cfg.Cache.Backend.
func New(ctx context.Context, cfg *config.Config) (Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory, "":
		return NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL), nil
	case config.BackendFile:
		return NewFile(cfg.Cache.Dir, cfg.Cache.TTL)
	case config.BackendRedis:
		return NewRedis(ctx, &cfg.Redis, cfg.Cache.TTL)
	case config.BackendPostgres, config.BackendSQLite:
		dbCfg := cfg.Database
		if cfg.Cache.Backend == config.BackendSQLite {
			dbCfg.Driver = db.DriverSQLite
		}
		return NewSQL(ctx, &dbCfg, cfg.Cache.TTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
