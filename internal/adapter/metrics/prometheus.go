package metrics

import (
	"time"

	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Compile-time check
var _ domainService.ProbeRecorder = (*Recorder)(nil)

// Probe outcome label values.
const (
	outcomeWorking    = "working"
	outcomeNotWorking = "not_working"
	outcomeSkipped    = "skipped"
)

// Recorder exports probe results as Prometheus metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	probesTotal  *prometheus.CounterVec
	probeLatency *prometheus.HistogramVec
	lastHeight   *prometheus.GaugeVec
}

// NewRecorder creates the probe metrics and registers them together with the Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainlist_rpcs_probes_total",
				Help: "Total number of RPC liveness probes by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		probeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainlist_rpcs_probe_latency_seconds",
				Help:    "Round-trip latency of successful probes that reported a block height",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"transport"},
		),
		lastHeight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chainlist_rpcs_last_block_height",
				Help: "Block height reported by the most recent successful probe of an RPC endpoint",
			},
			[]string{"transport", "rpc"},
		),
	}

	r.registry.MustRegister(
		r.probesTotal,
		r.probeLatency,
		r.lastHeight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RecordProbe counts result and observes its latency when one was measured.
func (r *Recorder) RecordProbe(result entity.ProbeResult) {
	transport := string(result.Endpoint.Transport)

	switch {
	case result.Success:
		r.probesTotal.WithLabelValues(transport, outcomeWorking).Inc()
	case result.Endpoint.RequiresSecret():
		r.probesTotal.WithLabelValues(transport, outcomeSkipped).Inc()
	default:
		r.probesTotal.WithLabelValues(transport, outcomeNotWorking).Inc()
	}

	if result.LatencyMs != nil {
		latency := time.Duration(*result.LatencyMs) * time.Millisecond
		r.probeLatency.WithLabelValues(transport).Observe(latency.Seconds())
	}
	if result.Height != nil {
		r.lastHeight.WithLabelValues(transport, result.Endpoint.String()).Set(float64(*result.Height))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}),
	)
}
