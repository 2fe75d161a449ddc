package port

import (
	"context"
	"time"

	"chainlist-rpcs/internal/domain/entity"
)

// ChainService defines the interface for looking up chains and probing their RPC endpoints.
type ChainService interface {
	// ListChains returns a summary of every known chain.
	ListChains(ctx context.Context) ([]entity.ChainSummary, error)

	// ProbeChain probes the endpoints of the chain whose id or short name is chainIDOrName,
	// using the configured timeout. The report may come from cache.
	ProbeChain(ctx context.Context, chainIDOrName string) (entity.ProbeReport, error)

	// ProbeChainWithTimeout is ProbeChain with a caller-chosen per-probe timeout. It always probes.
	ProbeChainWithTimeout(ctx context.Context, chainIDOrName string, timeout time.Duration) (entity.ProbeReport, error)

	// ProbeEndpoints probes an arbitrary endpoint list.
	ProbeEndpoints(ctx context.Context, endpoints []entity.Endpoint, timeout time.Duration) entity.ProbeReport
}
