package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"
	"chainlist-rpcs/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.TransportProber = (*HTTPProber)(nil)

// HTTPProber posts the probe payload to HTTP(S) endpoints.
type HTTPProber struct {
	client          *fasthttp.Client
	fallbackTimeout time.Duration
	logger          *zap.Logger
}

// NewHTTPProber creates a new HTTP prober instance.
func NewHTTPProber(logger *zap.Logger) *HTTPProber {
	return &HTTPProber{
		client: &fasthttp.Client{
			ReadTimeout: defaultTransportTimeout,
		},
		fallbackTimeout: defaultTransportTimeout,
		logger:          logger.Named("HTTPProber"),
	}
}

// Probe sends one POST of the probe payload and measures the round trip.
func (p *HTTPProber) Probe(ctx context.Context, endpoint entity.Endpoint, timeout time.Duration) (entity.ProbeOutcome, bool) {
	rpcURL := endpoint.String()
	if endpoint.RequiresSecret() {
		p.logger.Debug("Skipping RPC with unresolved credential placeholder", zap.String("url", rpcURL))
		return entity.ProbeOutcome{}, false
	}

	ctx, cancel := withProbeTimeout(ctx, timeout, p.fallbackTimeout)
	defer cancel()

	result := newPending[entity.ProbeOutcome]()
	go func() {
		outcome, err := p.post(ctx, rpcURL)
		if err != nil {
			result.reject(err)
			return
		}
		result.resolve(outcome)
	}()

	outcome, err := result.wait(ctx)
	if err != nil {
		p.logger.Debug("HTTP RPC probe failed", zap.String("url", rpcURL), zap.Error(err))
		return entity.ProbeOutcome{}, false
	}
	return outcome, true
}

func (p *HTTPProber) post(ctx context.Context, rpcURL string) (entity.ProbeOutcome, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(probePayload)

	startTime := time.Now()

	var requestErr error
	if deadline, ok := ctx.Deadline(); ok {
		requestErr = p.client.DoDeadline(req, resp, deadline)
	} else {
		requestErr = p.client.Do(req, resp)
	}

	latency := time.Since(startTime)

	if requestErr != nil {
		if errors.Is(requestErr, fasthttp.ErrTimeout) {
			return entity.ProbeOutcome{}, fmt.Errorf("%w: http request to %s timed out after %v: %v",
				apperrors.ErrTimeout, rpcURL, latency, requestErr,
			)
		}
		return entity.ProbeOutcome{}, fmt.Errorf("%w: http request to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, requestErr,
		)
	}

	if status := resp.StatusCode(); status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return entity.ProbeOutcome{}, fmt.Errorf("%w: rpc %s returned non-2xx http status: %d",
			apperrors.ErrExternalServiceFailure, rpcURL, status,
		)
	}

	body := resp.Body()
	if !json.Valid(body) {
		return entity.ProbeOutcome{}, fmt.Errorf("%w: rpc %s returned a body that is not JSON",
			apperrors.ErrExternalServiceFailure, rpcURL,
		)
	}

	// resp goes back to the pool on return, so the body has to be copied out.
	payload := make(json.RawMessage, len(body))
	copy(payload, body)

	return entity.ProbeOutcome{Payload: payload, Latency: latency}, nil
}
