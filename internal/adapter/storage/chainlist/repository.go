package chainlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	dto "chainlist-rpcs/internal/adapter/storage/chainlist/dto"
	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain"
	"chainlist-rpcs/internal/domain/entity"
	domainRepo "chainlist-rpcs/internal/domain/repository"
	"chainlist-rpcs/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 15 * time.Second

// Compile-time check
var _ domainRepo.ChainRepository = (*Repository)(nil)

// Repository implements ChainRepository for fetching data from the Chainlist source.
type Repository struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRepository creates a new Chainlist repository instance. It configures the HTTP client and stores the Chainlist URL.
func NewRepository(cfg config.ChainlistConfig, logger *zap.Logger) *Repository {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Repository{
		client:  &fasthttp.Client{},
		url:     cfg.URL,
		timeout: timeout,
		logger:  logger.Named("ChainlistStorage"),
	}
}

// GetAllChains fetches the full list of chains from the configured Chainlist URL.
func (r *Repository) GetAllChains(ctx context.Context) ([]entity.Chain, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := r.timeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		if requestTimeout := time.Until(deadline); requestTimeout < timeout {
			timeout = requestTimeout
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %w: no time left to fetch chainlist",
			domain.ErrUpstreamSourceFailure, apperrors.ErrTimeout,
		)
	}

	r.logger.Debug(
		"Fetching chains from Chainlist",
		zap.String("url", r.url),
		zap.Duration("timeout", timeout),
	)

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		r.logger.Error("Failed to execute request to Chainlist", zap.Error(err))
		return nil, fmt.Errorf("%w: %w: failed to execute request to Chainlist: %v",
			domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure, err,
		)
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		r.logger.Warn("Chainlist source reported not found", zap.String("url", r.url))
		return nil, fmt.Errorf("%w: %w: chainlist source reported not found (%s)",
			domain.ErrUpstreamSourceFailure, apperrors.ErrNotFound, r.url,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error(
			"Chainlist returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()[:min(512, len(resp.Body()))]),
		)
		return nil, fmt.Errorf("%w: %w: chainlist returned status %d",
			domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure, resp.StatusCode(),
		)
	}

	var body []byte
	contentEncoding := resp.Header.Peek(fasthttp.HeaderContentEncoding)
	if bytes.EqualFold(contentEncoding, []byte("gzip")) {
		r.logger.Debug("Received gzipped response from Chainlist")
		var err error
		body, err = resp.BodyGunzip()
		if err != nil {
			r.logger.Error("Failed to gunzip Chainlist response body", zap.Error(err))
			return nil, fmt.Errorf("%w: %w: failed to decompress chainlist response: %v",
				domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure, err,
			)
		}
	} else {
		body = resp.Body()
	}

	var rawChains []dto.ChainRaw
	if err := json.Unmarshal(body, &rawChains); err != nil {
		r.logger.Error("Failed to unmarshal Chainlist response into raw DTOs",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: %w: failed to parse chainlist response into raw DTOs: %v",
			domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure, err,
		)
	}

	domainChains := toDomainChains(rawChains, r.logger)
	r.logger.Info("Fetched chains from Chainlist", zap.Int("count", len(domainChains)))

	return domainChains, nil
}
