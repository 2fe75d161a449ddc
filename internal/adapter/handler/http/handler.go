package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"chainlist-rpcs/internal/application/port"
	"chainlist-rpcs/internal/domain"
	"chainlist-rpcs/internal/domain/entity"
	"chainlist-rpcs/internal/pkg/apperrors"
)

// rpcsCacheControl lets a CDN keep a report for an hour and serve it stale while it refreshes.
const rpcsCacheControl = "s-maxage=3600, stale-while-revalidate"

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Message string `json:"message"`
}

// ChainHandler serves chain listings and probe reports.
type ChainHandler struct {
	service port.ChainService
	logger  *zap.Logger
}

// NewChainHandler creates a new chain handler.
func NewChainHandler(service port.ChainService, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{
		service: service,
		logger:  logger.Named("ChainHandler"),
	}
}

// ListChains handles requests for the summary of every known chain.
func (h *ChainHandler) ListChains(ctx *fasthttp.RequestCtx) {
	chains, err := h.service.ListChains(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, chains)
}

// GetChainRPCs probes the RPCs of the chain named by the {chain} path segment, a chain id or short name.
// An optional timeoutMs query parameter overrides the per-probe timeout; 0 disables it.
func (h *ChainHandler) GetChainRPCs(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, rpcsCacheControl)

	chainIDOrName, ok := ctx.UserValue("chain").(string)
	if !ok || chainIDOrName == "" {
		h.writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Message: "chain is required"})
		return
	}

	timeout, hasTimeout, err := parseTimeoutMs(ctx.QueryArgs().Peek("timeoutMs"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	var report entity.ProbeReport
	if hasTimeout {
		report, err = h.service.ProbeChainWithTimeout(ctx, chainIDOrName, timeout)
	} else {
		report, err = h.service.ProbeChain(ctx, chainIDOrName)
	}
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, report)
}

// Health reports that the process is serving.
func (h *ChainHandler) Health(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("OK")
}

func parseTimeoutMs(raw []byte) (time.Duration, bool, error) {
	if len(raw) == 0 {
		return 0, false, nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms < 0 {
		return 0, false, fmt.Errorf("%w: timeoutMs must be a non-negative integer", apperrors.ErrInvalidInput)
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// writeError maps service errors to status codes.
func (h *ChainHandler) writeError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, domain.ErrChainNotFound):
		h.writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Message: "chain not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		h.logger.Debug("Rejected request", zap.Error(err))
		h.writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Message: invalidInputMessage(err)})
	case errors.Is(err, domain.ErrUpstreamSourceFailure):
		h.logger.Error("Chain metadata unavailable", zap.Error(err))
		h.writeJSON(ctx, fasthttp.StatusBadGateway, errorResponse{Message: "chain metadata unavailable"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		h.writeJSON(ctx, fasthttp.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// invalidInputMessage is the detail an ErrInvalidInput error carries, without the sentinel prefix.
func invalidInputMessage(err error) string {
	return strings.TrimPrefix(err.Error(), apperrors.ErrInvalidInput.Error()+": ")
}

func (h *ChainHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
