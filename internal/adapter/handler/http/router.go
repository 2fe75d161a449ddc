package http

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// NewRouter registers the API routes. metrics may be nil.
func NewRouter(h *ChainHandler, metrics fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/chains", h.ListChains)
	r.GET("/chains/{chain}/rpcs", h.GetChainRPCs)
	r.GET("/health", h.Health)
	if metrics != nil {
		r.GET("/metrics", metrics)
	}

	return r
}
