package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

const statisticsCacheKey = "statistics:overview"

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheObserver interface {
	RecordCacheOperation(operation, outcome string)
	ObserveCacheWrite(size int)
}

// CacheService fronts the cache store with miss handling and metrics. A nil
// store disables caching entirely and every lookup reports a miss.
type CacheService struct {
	store   cacheStore
	metrics cacheObserver
	logger  *zap.Logger
	ttl     time.Duration
}

// NewCacheService constructs a CacheService. metrics may be nil.
func NewCacheService(store cacheStore, metrics cacheObserver, logger *zap.Logger, ttl time.Duration) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheService{store: store, metrics: metrics, logger: logger, ttl: ttl}
}

// Get loads a cached value into dest. The boolean reports whether the key was
// present; store failures are logged and treated as misses so the caller can
// always fall through to the source of truth.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.store == nil {
		return false
	}
	if err := s.store.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		s.recordOperation("get", "miss")
		return false
	}
	s.recordOperation("get", "hit")
	return true
}

// Set stores a value under key. Failures are logged, never returned, since a
// cold cache is not an application error.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		s.recordOperation("set", "error")
		return
	}
	s.recordOperation("set", "ok")
	if s.metrics != nil {
		if payload, err := json.Marshal(value); err == nil {
			s.metrics.ObserveCacheWrite(len(payload))
		}
	}
}

// InvalidateStatistics drops every cached statistics entry. Called after any
// write that changes what the overview reports.
func (s *CacheService) InvalidateStatistics(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.DeleteByPattern(ctx, "statistics:*"); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
		s.recordOperation("invalidate", "error")
		return
	}
	s.recordOperation("invalidate", "ok")
}

func (s *CacheService) recordOperation(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(operation, outcome)
	}
}
