package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"legal-lens/internal/config"
)

const (
	DriverPG     = "pgdriver"
	DriverPQ     = "pq"
	DriverSQLite = "sqlite"
)

// Analysis is one cached analysis record, stored as JSON text.
type Analysis struct {
	bun.BaseModel `bun:"table:analyses,alias:a"`
	Hash          string    `bun:"hash,pk"`
	Record        string    `bun:"record,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func NewDB(sqldb *sql.DB, cfg *config.DatabaseConfig) *bun.DB {
	var db *bun.DB
	if cfg.Driver == DriverSQLite {
		db = bun.NewDB(sqldb, sqlitedialect.New())
	} else {
		db = bun.NewDB(sqldb, pgdialect.New())
	}
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverPG, "":
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), nil
	case DriverPQ:
		return sql.Open("postgres", cfg.DSN)
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, err
		}
		// modernc sqlite allows one writer at a time
		sqldb.SetMaxOpenConns(1)
		return sqldb, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Analysis)(nil)).IfNotExists().Exec(ctx)
	return err
}

// StoreAnalysis inserts the record unless the hash is already present.
func StoreAnalysis(ctx context.Context, db *bun.DB, hash, record string) error {
	a := &Analysis{
		Hash:      hash,
		Record:    record,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().Model(a).On("CONFLICT (hash) DO NOTHING").Exec(ctx)
	return err
}

// FindAnalysis returns the record stored for hash, or nil when there is
// none. Rows older than notBefore are ignored when it is set.
func FindAnalysis(ctx context.Context, db *bun.DB, hash string, notBefore time.Time) (*Analysis, error) {
	a := new(Analysis)
	q := db.NewSelect().Model(a).Where("hash = ?", hash)
	if !notBefore.IsZero() {
		q = q.Where("created_at >= ?", notBefore.UTC())
	}
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// PruneAnalyses deletes rows created before cutoff.
func PruneAnalyses(ctx context.Context, db *bun.DB, cutoff time.Time) (int64, error) {
	res, err := db.NewDelete().Model((*Analysis)(nil)).Where("created_at < ?", cutoff.UTC()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func DropAnalyses(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Analysis)(nil)).IfExists().Exec(ctx)
	return err
}
