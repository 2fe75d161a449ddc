package application

import (
	"context"
	"sync"
	"time"

	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"

	"go.uber.org/zap"
)

// Aggregator fans a liveness probe out over a chain's endpoints and collects the report.
type Aggregator struct {
	probers        map[entity.Transport]domainService.TransportProber
	normalizer     domainService.ResultNormalizer
	recorder       domainService.ProbeRecorder
	maxConcurrency int
	logger         *zap.Logger
}

// AggregatorOption customises an Aggregator.
type AggregatorOption func(*Aggregator)

// WithMaxConcurrency caps the number of probes in flight. Zero or less means one worker per endpoint.
func WithMaxConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) { a.maxConcurrency = n }
}

// WithRecorder registers a recorder that sees every result.
func WithRecorder(r domainService.ProbeRecorder) AggregatorOption {
	return func(a *Aggregator) { a.recorder = r }
}

// NewAggregator creates a new aggregator. probers maps each transport to the prober that speaks it.
func NewAggregator(
	probers map[entity.Transport]domainService.TransportProber,
	normalizer domainService.ResultNormalizer,
	logger *zap.Logger,
	opts ...AggregatorOption,
) *Aggregator {
	a := &Aggregator{
		probers:    probers,
		normalizer: normalizer,
		logger:     logger.Named("Aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run probes every endpoint and waits for all of them. The report keeps the input order.
func (a *Aggregator) Run(ctx context.Context, endpoints []entity.Endpoint, timeout time.Duration) entity.ProbeReport {
	if len(endpoints) == 0 {
		return entity.NewProbeReport(nil)
	}

	startTime := time.Now()
	results := make([]entity.ProbeResult, len(endpoints))

	numWorkers := a.maxConcurrency
	if numWorkers <= 0 || numWorkers > len(endpoints) {
		numWorkers = len(endpoints)
	}

	jobChan := make(chan int, len(endpoints))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobChan {
				results[index] = a.probeOne(ctx, endpoints[index], timeout)
			}
		}()
	}

	for i := range endpoints {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()

	report := entity.NewProbeReport(results)
	stats := NewReportStats(report)

	a.logger.Debug("Probe run finished",
		zap.Int("total", len(report.All)),
		zap.Int("working", len(report.Working)),
		zap.Int("notWorking", len(report.NotWorking)),
		zap.Int("workers", numWorkers),
		zap.Float64("latencyP50Ms", stats.MedianMs),
		zap.Float64("latencyP90Ms", stats.P90Ms),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return report
}

func (a *Aggregator) probeOne(ctx context.Context, endpoint entity.Endpoint, timeout time.Duration) entity.ProbeResult {
	var (
		outcome entity.ProbeOutcome
		ok      bool
	)

	switch prober, found := a.probers[endpoint.Transport]; {
	case endpoint.RequiresSecret():
		a.logger.Debug("Skipping RPC with unresolved credential placeholder", zap.String("url", endpoint.String()))
	case !found:
		a.logger.Warn("No prober registered for transport",
			zap.String("url", endpoint.String()), zap.String("transport", string(endpoint.Transport)),
		)
	default:
		outcome, ok = prober.Probe(ctx, endpoint, timeout)
	}

	result := a.normalizer.Normalize(endpoint, outcome, ok)
	if a.recorder != nil {
		a.recorder.RecordProbe(result)
	}
	return result
}
