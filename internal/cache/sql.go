package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"legal-lens/internal/config"
	"legal-lens/internal/db"
	"legal-lens/internal/models"
)

// SQL stores records in the analyses table.
type SQL struct {
	db  *bun.DB
	ttl time.Duration
}

func NewSQL(ctx context.Context, cfg *config.DatabaseConfig, ttl time.Duration) (*SQL, error) {
	sqldb, err := db.ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	bdb := db.NewDB(sqldb, cfg)
	if err := db.InitDB(ctx, bdb); err != nil {
		bdb.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return NewSQLFromDB(bdb, ttl), nil
}

// NewSQLFromDB wraps a database whose analyses table already exists.
func NewSQLFromDB(bdb *bun.DB, ttl time.Duration) *SQL {
	return &SQL{db: bdb, ttl: ttl}
}

func (s *SQL) notBefore() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-s.ttl)
}

func (s *SQL) Get(ctx context.Context, hash string) (*models.AnalysisRecord, bool, error) {
	row, err := db.FindAnalysis(ctx, s.db, hash, s.notBefore())
	if err != nil || row == nil {
		return nil, false, err
	}
	var rec models.AnalysisRecord
	if err := json.Unmarshal([]byte(row.Record), &rec); err != nil {
		return nil, false, fmt.Errorf("decode analysis %s: %w", hash, err)
	}
	return &rec, true, nil
}

func (s *SQL) Put(ctx context.Context, hash string, rec *models.AnalysisRecord) error {
	if s.ttl > 0 {
		n, err := db.PruneAnalyses(ctx, s.db, s.notBefore())
		if err != nil {
			return fmt.Errorf("prune analyses: %w", err)
		}
		if n > 0 {
			log.Debug().Int64("rows", n).Msg("Pruned expired analyses")
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return db.StoreAnalysis(ctx, s.db, hash, string(data))
}

func (s *SQL) Close() error {
	return s.db.Close()
}
