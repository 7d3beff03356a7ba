package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legal-lens/internal/models"
)

// File stores each record as <dir>/analysis_<hash>.json.
type File struct {
	dir string
	ttl time.Duration
}

func NewFile(dir string, ttl time.Duration) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &File{dir: dir, ttl: ttl}, nil
}

func (f *File) path(hash string) string {
	return filepath.Join(f.dir, models.CacheKey(hash)+".json")
}

func (f *File) Get(_ context.Context, hash string) (*models.AnalysisRecord, bool, error) {
	if !ValidHash(hash) {
		return nil, false, nil
	}
	p := f.path(hash)
	if f.ttl > 0 {
		info, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if time.Since(info.ModTime()) > f.ttl {
			return nil, false, nil
		}
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec models.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", p, err)
	}
	return &rec, true, nil
}

// Put writes to a temp file and renames it so readers never see a
// partial record.
func (f *File) Put(_ context.Context, hash string, rec *models.AnalysisRecord) error {
	if !ValidHash(hash) {
		return fmt.Errorf("invalid content hash %q", hash)
	}
	p := f.path(hash)
	if info, err := os.Stat(p); err == nil && (f.ttl <= 0 || time.Since(info.ModTime()) <= f.ttl) {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".analysis-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *File) Close() error { return nil }
