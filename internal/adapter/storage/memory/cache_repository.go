package memory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain/entity"
	domainRepo "chainlist-rpcs/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.CacheRepository = (*CacheRepository)(nil)

// Cache keys
const (
	allChainsKey         = "all_chains"
	chainReportKeyPrefix = "chain_report_"
)

// CacheRepository implements domainRepo.CacheRepository using the go-cache in-memory library.
// Only the latest report per chain is held; a newer one replaces it.
type CacheRepository struct {
	cache       *cache.Cache
	logger      *zap.Logger
	fallbackTTL time.Duration
}

// NewCacheRepository creates a new in-memory cache repository instance.
func NewCacheRepository(cfg config.Config, logger *zap.Logger) *CacheRepository {
	defaultExpiration := cfg.Cache.GetDefaultExpiration()
	cleanupInterval := cfg.Cache.GetCleanupInterval()

	c := cache.New(defaultExpiration, cleanupInterval)
	logger.Info(
		"Initialized go-cache for memory storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	fallbackTTL := cfg.Checker.GetRefetchInterval()
	if fallbackTTL <= 0 {
		fallbackTTL = defaultExpiration
	}

	return &CacheRepository{
		cache:       c,
		logger:      logger.Named("MemoryCacheStorage"),
		fallbackTTL: fallbackTTL,
	}
}

// GetChains retrieves the cached full list of chains, returning found status.
func (r *CacheRepository) GetChains(_ context.Context) ([]entity.Chain, bool, error) {
	return getTyped[[]entity.Chain](r, allChainsKey)
}

// SetChains caches the full list of chains with a given TTL.
func (r *CacheRepository) SetChains(_ context.Context, chains []entity.Chain, ttl time.Duration) error {
	r.set(allChainsKey, chains, ttl)
	return nil
}

// GetChainReport retrieves the latest cached report for a chain, returning found status.
func (r *CacheRepository) GetChainReport(_ context.Context, chainID int64) (entity.ProbeReport, bool, error) {
	return getTyped[entity.ProbeReport](r, chainReportKey(chainID))
}

// SetChainReport caches the latest report for a specific chain with a given TTL.
func (r *CacheRepository) SetChainReport(
	_ context.Context,
	chainID int64,
	report entity.ProbeReport,
	ttl time.Duration,
) error {
	r.set(chainReportKey(chainID), report, ttl)
	return nil
}

func (r *CacheRepository) set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.fallbackTTL
	}
	r.cache.Set(key, value, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
}

func getTyped[T any](r *CacheRepository, key string) (T, bool, error) {
	var zero T
	x, found := r.cache.Get(key)
	if !found {
		r.logger.Debug("Memory cache miss", zap.String("key", key))
		return zero, false, nil
	}
	value, ok := x.(T)
	if !ok {
		r.logger.Warn(
			"Memory cache data type mismatch for key",
			zap.String("key", key), zap.String("type", fmt.Sprintf("%T", x)),
		)
		return zero, false, nil
	}
	r.logger.Debug("Memory cache hit", zap.String("key", key))
	return value, true, nil
}

// chainReportKey generates the cache key for a specific chain's report.
func chainReportKey(chainID int64) string {
	return chainReportKeyPrefix + strconv.FormatInt(chainID, 10)
}
