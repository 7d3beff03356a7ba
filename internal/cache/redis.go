package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"legal-lens/internal/config"
	"legal-lens/internal/models"
)

// Redis stores records under analysis_<hash> keys.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, cfg *config.RedisConfig, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, hash string) (*models.AnalysisRecord, bool, error) {
	data, err := r.client.Get(ctx, models.CacheKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec models.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", models.CacheKey(hash), err)
	}
	return &rec, true, nil
}

// Put uses SETNX so an existing entry is left as is.
func (r *Redis) Put(ctx context.Context, hash string, rec *models.AnalysisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.SetNX(ctx, models.CacheKey(hash), data, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
