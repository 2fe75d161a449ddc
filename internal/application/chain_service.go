package application

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"chainlist-rpcs/internal/application/port"
	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain"
	"chainlist-rpcs/internal/domain/entity"
	domainRepo "chainlist-rpcs/internal/domain/repository"

	"go.uber.org/zap"
)

// Compile-time check to ensure chainService implements ChainService
var _ port.ChainService = (*chainService)(nil)

// chainService implements the port.ChainService interface orchestrating chain lookup and probing.
type chainService struct {
	chainRepo    domainRepo.ChainRepository
	cacheRepo    domainRepo.CacheRepository
	aggregator   *Aggregator
	logger       *zap.Logger
	cfg          config.Config
	rootCtx      context.Context
	isRefreshing *atomic.Bool
}

// NewChainService creates a new instance of the chain service and starts the chain metadata refresher.
func NewChainService(
	rootCtx context.Context,
	chainRepo domainRepo.ChainRepository,
	cacheRepo domainRepo.CacheRepository,
	aggregator *Aggregator,
	logger *zap.Logger,
	cfg config.Config,
) port.ChainService {
	uc := &chainService{
		chainRepo:    chainRepo,
		cacheRepo:    cacheRepo,
		aggregator:   aggregator,
		logger:       logger.Named("ChainService"),
		cfg:          cfg,
		rootCtx:      rootCtx,
		isRefreshing: new(atomic.Bool),
	}

	go uc.startBackgroundRefresher()

	return uc
}

// ListChains returns chain summaries in chainlist order.
func (uc *chainService) ListChains(ctx context.Context) ([]entity.ChainSummary, error) {
	chains, err := uc.getChains(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]entity.ChainSummary, len(chains))
	for i, chain := range chains {
		summaries[i] = chain.Summary()
	}
	return summaries, nil
}

// ProbeChain probes a chain with the configured timeout, serving a fresh cached report when there is one.
func (uc *chainService) ProbeChain(ctx context.Context, chainIDOrName string) (entity.ProbeReport, error) {
	chain, err := uc.findChain(ctx, chainIDOrName)
	if err != nil {
		return entity.ProbeReport{}, err
	}

	report, found, err := uc.cacheRepo.GetChainReport(ctx, chain.ChainID)
	if err != nil {
		uc.logger.Warn("Cache error when getting chain report",
			zap.Int64("chainId", chain.ChainID), zap.Error(err),
		)
	}
	if found {
		uc.logger.Debug("Cache hit for chain report", zap.Int64("chainId", chain.ChainID))
		return report, nil
	}

	report = uc.probe(ctx, chain, uc.cfg.Checker.GetTimeout())

	if ctx.Err() != nil {
		// results of a cancelled run are not cached
		return report, nil
	}
	ttl := uc.cfg.Checker.GetRefetchInterval()
	if cacheErr := uc.cacheRepo.SetChainReport(ctx, chain.ChainID, report, ttl); cacheErr != nil {
		uc.logger.Error("Failed to cache chain report",
			zap.Int64("chainId", chain.ChainID), zap.Error(cacheErr),
		)
	}
	return report, nil
}

// ProbeChainWithTimeout always probes and never touches the report cache.
func (uc *chainService) ProbeChainWithTimeout(
	ctx context.Context,
	chainIDOrName string,
	timeout time.Duration,
) (entity.ProbeReport, error) {
	chain, err := uc.findChain(ctx, chainIDOrName)
	if err != nil {
		return entity.ProbeReport{}, err
	}
	return uc.probe(ctx, chain, timeout), nil
}

// ProbeEndpoints probes endpoints that did not come from chainlist.
func (uc *chainService) ProbeEndpoints(ctx context.Context, endpoints []entity.Endpoint, timeout time.Duration) entity.ProbeReport {
	return uc.aggregator.Run(ctx, endpoints, timeout)
}

func (uc *chainService) probe(ctx context.Context, chain *entity.Chain, timeout time.Duration) entity.ProbeReport {
	endpoints := chain.RPC
	if preferred, ok := uc.cfg.PreferredRPC(chain.ChainID); ok {
		endpoints = moveToFront(endpoints, entity.RPCURL(preferred))
	}

	uc.logger.Debug("Probing chain RPCs",
		zap.Int64("chainId", chain.ChainID),
		zap.String("shortName", chain.ShortName),
		zap.Int("rpcCount", len(endpoints)),
		zap.Duration("timeout", timeout),
	)
	return uc.aggregator.Run(ctx, endpoints, timeout)
}

// findChain matches chainIDOrName against the decimal chain id or the exact short name.
// The first chain in chainlist order that matches wins.
func (uc *chainService) findChain(ctx context.Context, chainIDOrName string) (*entity.Chain, error) {
	chains, err := uc.getChains(ctx)
	if err != nil {
		return nil, err
	}

	for i := range chains {
		if strconv.FormatInt(chains[i].ChainID, 10) == chainIDOrName || chains[i].ShortName == chainIDOrName {
			return &chains[i], nil
		}
	}

	uc.logger.Debug("Chain not found", zap.String("chain", chainIDOrName))
	return nil, fmt.Errorf("%w: no chain with id or short name %q", domain.ErrChainNotFound, chainIDOrName)
}

// getChains retrieves all chains, prioritizing cache, and falls back to the repository.
func (uc *chainService) getChains(ctx context.Context) ([]entity.Chain, error) {
	cachedChains, found, err := uc.cacheRepo.GetChains(ctx)
	if err != nil {
		uc.logger.Warn("Cache error when getting all chains", zap.Error(err))
	}
	if found {
		return cachedChains, nil
	}

	uc.logger.Debug("Cache miss for all chains, fetching from repository")
	return uc.refreshChains(ctx)
}

func (uc *chainService) refreshChains(ctx context.Context) ([]entity.Chain, error) {
	chains, err := uc.chainRepo.GetAllChains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all chains from repository: %w", err)
	}

	if cacheErr := uc.cacheRepo.SetChains(ctx, chains, uc.chainsTTL()); cacheErr != nil {
		uc.logger.Error("Failed to cache chains", zap.Error(cacheErr))
	}
	return chains, nil
}

// chainsTTL outlives one refresh period so readers never see a gap between refreshes.
func (uc *chainService) chainsTTL() time.Duration {
	if interval := uc.cfg.Chainlist.RefreshInterval; interval > 0 {
		return 2 * interval
	}
	return uc.cfg.Cache.GetDefaultExpiration()
}

// startBackgroundRefresher initializes a ticker to periodically reload chain metadata into the cache.
func (uc *chainService) startBackgroundRefresher() {
	interval := uc.cfg.Chainlist.RefreshInterval
	if interval <= 0 {
		uc.logger.Info("Background chain refresher disabled (interval <= 0)")
		return
	}

	uc.logger.Info("Starting background chain refresher", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !uc.isRefreshing.CompareAndSwap(false, true) {
				uc.logger.Debug("Background refresher tick: refresh already in progress.")
				continue
			}
			go func() {
				defer uc.isRefreshing.Store(false)
				chains, err := uc.refreshChains(uc.rootCtx)
				if err != nil {
					if uc.rootCtx.Err() != nil {
						uc.logger.Warn("Periodic chain refresh cancelled due to application shutdown")
					} else {
						uc.logger.Error("Error refreshing chains", zap.Error(err))
					}
					return
				}
				uc.logger.Info("Refreshed chain metadata", zap.Int("count", len(chains)))
			}()

		case <-uc.rootCtx.Done():
			uc.logger.Info("Background chain refresher stopping due to context cancellation.")
			return
		}
	}
}

// moveToFront puts the endpoint at url first and keeps the order of the rest. endpoints is never modified.
func moveToFront(endpoints []entity.Endpoint, url entity.RPCURL) []entity.Endpoint {
	index := -1
	for i, ep := range endpoints {
		if ep.URL == url {
			index = i
			break
		}
	}
	if index <= 0 {
		return endpoints
	}

	reordered := make([]entity.Endpoint, 0, len(endpoints))
	reordered = append(reordered, endpoints[index])
	reordered = append(reordered, endpoints[:index]...)
	reordered = append(reordered, endpoints[index+1:]...)
	return reordered
}
