package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderRequestID carries the id that ties a response to its log line.
const HeaderRequestID = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new one, and echoes it on the response.
func RequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := string(ctx.Request.Header.Peek(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetUserValue(HeaderRequestID, id)
		ctx.Response.Header.Set(HeaderRequestID, id)
		next(ctx)
	}
}

// Logging logs one line per request once the handler has returned.
func Logging(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	logger = logger.Named("HTTP")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)

			id, _ := ctx.UserValue(HeaderRequestID).(string)
			logger.Info("Request handled",
				zap.String("requestId", id),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("uri", ctx.RequestURI()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}
}

// Chain wraps h so that the first middleware listed runs outermost.
func Chain(h fasthttp.RequestHandler, middleware ...func(fasthttp.RequestHandler) fasthttp.RequestHandler) fasthttp.RequestHandler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
