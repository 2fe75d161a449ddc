package repository

import (
	"context"
	"time"

	"chainlist-rpcs/internal/domain/entity"
)

// CacheRepository defines the interface for caching chain metadata and the latest probe reports.
type CacheRepository interface {
	// GetChains retrieves the cached list of all chains.
	GetChains(ctx context.Context) ([]entity.Chain, bool, error)

	// SetChains stores the list of all chains in the cache with a specified TTL.
	SetChains(ctx context.Context, chains []entity.Chain, ttl time.Duration) error

	// GetChainReport retrieves the latest cached probe report for a specific chain ID.
	GetChainReport(ctx context.Context, chainID int64) (entity.ProbeReport, bool, error)

	// SetChainReport stores the latest probe report for a specific chain ID with a specified TTL.
	SetChainReport(ctx context.Context, chainID int64, report entity.ProbeReport, ttl time.Duration) error
}
