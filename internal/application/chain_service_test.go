package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chainlist-rpcs/internal/adapter/storage/memory"
	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain"
	"chainlist-rpcs/internal/domain/entity"
	"chainlist-rpcs/internal/pkg/apperrors"
)

type fakeChainRepo struct {
	chains []entity.Chain
	err    error
	calls  atomic.Int32
}

func (r *fakeChainRepo) GetAllChains(_ context.Context) ([]entity.Chain, error) {
	r.calls.Add(1)
	return r.chains, r.err
}

func testConfig() config.Config {
	return config.Config{
		Checker: config.CheckerConfig{Timeout: time.Second, RefetchInterval: time.Minute},
		Cache:   config.CacheConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute},
		PreferredRPCs: map[string]string{
			"1": "https://eth.llamarpc.com",
		},
	}
}

func testChains(t *testing.T) []entity.Chain {
	return []entity.Chain{
		{
			Name:      "Ethereum Mainnet",
			ShortName: "eth",
			ChainID:   1,
			RPC: mustEndpoints(t,
				"https://mainnet.infura.io/v3/${INFURA_API_KEY}",
				"https://cloudflare-eth.com",
				"https://eth.llamarpc.com",
				"wss://ethereum-rpc.publicnode.com",
			),
		},
		{
			Name:      "Gnosis",
			Chain:     "GNO",
			ShortName: "gno",
			ChainID:   100,
			NetworkID: 100,
			Currency:  entity.Currency{Name: "xDAI", Symbol: "XDAI", Decimals: 18},
			InfoURL:   "https://docs.gnosischain.com",
			RedFlags:  []string{"reusedChainId"},
			RPC:       mustEndpoints(t, "https://rpc.gnosischain.com"),
		},
	}
}

func newTestService(t *testing.T, repo *fakeChainRepo, prober *scriptedProber) *chainService {
	t.Helper()
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := NewChainService(
		ctx,
		repo,
		memory.NewCacheRepository(cfg, zap.NewNop()),
		newTestAggregator(prober, prober),
		zap.NewNop(),
		cfg,
	)
	return svc.(*chainService)
}

func TestChainService_ProbeChain_ByIDAndShortName(t *testing.T) {
	prober := newScriptedProber(map[string]entity.ProbeOutcome{
		"https://cloudflare-eth.com":        blockOutcome("0x10", 40*time.Millisecond),
		"https://eth.llamarpc.com":          blockOutcome("0x11", 30*time.Millisecond),
		"wss://ethereum-rpc.publicnode.com": blockOutcome("0x11", 20*time.Millisecond),
	})
	svc := newTestService(t, &fakeChainRepo{chains: testChains(t)}, prober)

	report, err := svc.ProbeChainWithTimeout(context.Background(), "eth", time.Second)
	require.NoError(t, err)

	urls := make([]string, len(report.All))
	for i, r := range report.All {
		urls[i] = r.Endpoint.String()
	}
	assert.Equal(t, []string{
		"https://eth.llamarpc.com",
		"https://mainnet.infura.io/v3/${INFURA_API_KEY}",
		"https://cloudflare-eth.com",
		"wss://ethereum-rpc.publicnode.com",
	}, urls)
	assert.Len(t, report.Working, 3)
	assert.Len(t, report.NotWorking, 1)

	byID, err := svc.ProbeChainWithTimeout(context.Background(), "1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, report, byID)
}

func TestChainService_ProbeChain_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeChainRepo{chains: testChains(t)}, newScriptedProber(nil))

	for _, query := range []string{"42", "ETH", "", "Ethereum Mainnet"} {
		_, err := svc.ProbeChain(context.Background(), query)
		require.Error(t, err, query)
		assert.ErrorIs(t, err, domain.ErrChainNotFound, query)
	}
}

func TestChainService_ProbeChain_UpstreamFailure(t *testing.T) {
	upstreamErr := errors.Join(domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure)
	svc := newTestService(t, &fakeChainRepo{err: upstreamErr}, newScriptedProber(nil))

	_, err := svc.ProbeChain(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamSourceFailure)
	assert.NotErrorIs(t, err, domain.ErrChainNotFound)
}

func TestChainService_ProbeChain_CachesReport(t *testing.T) {
	repo := &fakeChainRepo{chains: testChains(t)}
	prober := newScriptedProber(map[string]entity.ProbeOutcome{
		"https://rpc.gnosischain.com": blockOutcome("0x1", time.Millisecond),
	})
	svc := newTestService(t, repo, prober)

	first, err := svc.ProbeChain(context.Background(), "gno")
	require.NoError(t, err)
	second, err := svc.ProbeChain(context.Background(), "100")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, prober.totalCalls(), "second request is served from cache")
	assert.Equal(t, int32(1), repo.calls.Load(), "chain list is fetched once")

	_, err = svc.ProbeChainWithTimeout(context.Background(), "gno", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, prober.totalCalls(), "custom timeouts bypass the report cache")
}

func TestChainService_ProbeChain_CancelledRunNotCached(t *testing.T) {
	prober := newScriptedProber(map[string]entity.ProbeOutcome{
		"https://rpc.gnosischain.com": blockOutcome("0x1", time.Millisecond),
	})
	prober.delay = 200 * time.Millisecond
	svc := newTestService(t, &fakeChainRepo{chains: testChains(t)}, prober)
	_, err := svc.getChains(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	report, err := svc.ProbeChain(ctx, "gno")
	require.NoError(t, err)
	assert.Len(t, report.NotWorking, 1)

	prober.delay = 0
	report, err = svc.ProbeChain(context.Background(), "gno")
	require.NoError(t, err)
	assert.Len(t, report.Working, 1)
}

func TestChainService_ListChains(t *testing.T) {
	svc := newTestService(t, &fakeChainRepo{chains: testChains(t)}, newScriptedProber(nil))

	summaries, err := svc.ListChains(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entity.ChainSummary{
		{ChainID: 1, Name: "Ethereum Mainnet", ShortName: "eth", RPCCount: 4},
		{
			ChainID:        100,
			Name:           "Gnosis",
			ShortName:      "gno",
			RPCCount:       1,
			Chain:          "GNO",
			NetworkID:      100,
			NativeCurrency: &entity.Currency{Name: "xDAI", Symbol: "XDAI", Decimals: 18},
			InfoURL:        "https://docs.gnosischain.com",
			RedFlags:       []string{"reusedChainId"},
		},
	}, summaries)
}

func TestChainService_ProbeEndpoints(t *testing.T) {
	prober := newScriptedProber(map[string]entity.ProbeOutcome{"http://127.0.0.1:8545": blockOutcome("0x0", 0)})
	svc := newTestService(t, &fakeChainRepo{}, prober)

	report := svc.ProbeEndpoints(context.Background(), mustEndpoints(t, "http://127.0.0.1:8545"), 0)

	require.Len(t, report.Working, 1)
	assert.Equal(t, uint64(0), *report.Working[0].Height)
}

func TestMoveToFront(t *testing.T) {
	endpoints := mustEndpoints(t, "https://a", "https://b", "https://c")

	moved := moveToFront(endpoints, "https://c")
	assert.Equal(t, mustEndpoints(t, "https://c", "https://a", "https://b"), moved)
	assert.Equal(t, mustEndpoints(t, "https://a", "https://b", "https://c"), endpoints, "input is not mutated")

	assert.Equal(t, endpoints, moveToFront(endpoints, "https://a"))
	assert.Equal(t, endpoints, moveToFront(endpoints, "https://missing"))
	assert.Empty(t, moveToFront(nil, "https://a"))
}
