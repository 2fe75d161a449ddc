package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"
	"chainlist-rpcs/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.TransportProber = (*WSProber)(nil)

// WSProber sends the probe payload over a WebSocket and waits for the first reply.
type WSProber struct {
	dialer          *websocket.Dialer
	fallbackTimeout time.Duration
	logger          *zap.Logger
}

// NewWSProber creates a new WebSocket prober instance.
func NewWSProber(logger *zap.Logger) *WSProber {
	return &WSProber{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultTransportTimeout,
		},
		fallbackTimeout: defaultTransportTimeout,
		logger:          logger.Named("WSProber"),
	}
}

// Probe opens a connection, sends the payload once it is open and resolves on the first message.
// Latency is measured from the send, not from the dial.
func (p *WSProber) Probe(ctx context.Context, endpoint entity.Endpoint, timeout time.Duration) (entity.ProbeOutcome, bool) {
	rpcURL := endpoint.String()
	if endpoint.RequiresSecret() {
		p.logger.Debug("Skipping RPC with unresolved credential placeholder", zap.String("url", rpcURL))
		return entity.ProbeOutcome{}, false
	}

	ctx, cancel := withProbeTimeout(ctx, timeout, p.fallbackTimeout)
	defer cancel()

	result := newPending[entity.ProbeOutcome]()
	go func() {
		outcome, err := p.exchange(ctx, rpcURL)
		if err != nil {
			result.reject(err)
			return
		}
		result.resolve(outcome)
	}()

	outcome, err := result.wait(ctx)
	if err != nil {
		p.logger.Debug("WSS RPC probe failed", zap.String("url", rpcURL), zap.Error(err))
		return entity.ProbeOutcome{}, false
	}
	return outcome, true
}

func (p *WSProber) exchange(ctx context.Context, rpcURL string) (entity.ProbeOutcome, error) {
	conn, _, err := p.dialer.DialContext(ctx, rpcURL, nil)
	if err != nil {
		return entity.ProbeOutcome{}, fmt.Errorf("%w: wss dial to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}
	// Unblocks ReadMessage when the parent is cancelled and no deadline is set.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	p.logger.Debug("WSS connection open, sending probe payload", zap.String("url", rpcURL))

	sentAt := time.Now()
	if err := conn.WriteMessage(websocket.TextMessage, probePayload); err != nil {
		return entity.ProbeOutcome{}, fmt.Errorf("%w: wss write to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	_, message, err := conn.ReadMessage()
	latency := time.Since(sentAt)
	if err != nil {
		if ctx.Err() != nil {
			return entity.ProbeOutcome{}, contextError(ctx)
		}
		return entity.ProbeOutcome{}, fmt.Errorf("%w: wss read from %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	if !json.Valid(message) {
		return entity.ProbeOutcome{}, fmt.Errorf("%w: rpc %s sent a message that is not JSON",
			apperrors.ErrExternalServiceFailure, rpcURL,
		)
	}

	return entity.ProbeOutcome{Payload: json.RawMessage(message), Latency: latency}, nil
}
