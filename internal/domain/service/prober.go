package service

import (
	"context"
	"time"

	"chainlist-rpcs/internal/domain/entity"
)

// TransportProber sends the liveness probe to one endpoint over a single transport.
// Failures of any kind are absorbed and reported as ok == false.
// A zero timeout leaves the transport default in place.
type TransportProber interface {
	Probe(ctx context.Context, endpoint entity.Endpoint, timeout time.Duration) (outcome entity.ProbeOutcome, ok bool)
}

// ResultNormalizer turns a raw probe outcome into a comparable result.
type ResultNormalizer interface {
	Normalize(endpoint entity.Endpoint, outcome entity.ProbeOutcome, ok bool) entity.ProbeResult
}

// ProbeRecorder observes every finished probe, e.g. to export metrics.
type ProbeRecorder interface {
	RecordProbe(result entity.ProbeResult)
}
