package httpserver

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/yndnr/reqguard/internal/core/domain"
	"github.com/yndnr/reqguard/internal/core/service"
	"github.com/yndnr/reqguard/internal/server/httpserver/handler"
	"github.com/yndnr/reqguard/internal/telemetry/logger"
	"github.com/yndnr/reqguard/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Validator checks every guarded request.
	Validator *service.RequestValidator

	// Limiter applies per-IP rate limiting. Nil or disabled means no limit.
	Limiter *service.ClientLimiter

	// ClientIP resolves the rate-limit key. Nil keys on the peer address.
	ClientIP *ClientIPResolver

	// Metrics enables /metrics and request metrics when non-nil.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// Upstream receives accepted requests. When nil the acceptance
	// envelope is returned instead.
	Upstream *url.URL

	// UpstreamTransport is used for upstream requests. Nil means
	// http.DefaultTransport.
	UpstreamTransport http.RoundTripper

	// MaxBodyBytes bounds the body read for non-GET requests.
	MaxBodyBytes int64

	// EnableAudit enables audit logging for guarded requests.
	EnableAudit bool

	// Version is reported by /health.
	Version string

	// Ready is consulted by /ready. Nil always reports ready.
	Ready func() bool
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Guarded chain: Recover -> RequestID -> ClientIP -> Metrics -> Audit ->
// RateLimit -> Validate -> upstream or acceptance.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()

	// Operational endpoints - no authentication required
	mux.Handle("GET /health", Chain(handler.Health(cfg.Version), Recover(log), RequestID()))
	mux.Handle("GET /ready", Chain(handler.Ready(cfg.Ready), Recover(log), RequestID()))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log), RequestID()))
	}

	var target http.Handler = http.HandlerFunc(accept)
	if cfg.Upstream != nil {
		target = newUpstreamProxy(cfg.Upstream, cfg.UpstreamTransport, log)
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		ClientIP(cfg.ClientIP),
		Metrics(cfg.Metrics),
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	middlewares = append(middlewares, RateLimit(cfg.Limiter, cfg.Metrics), Validate(&ValidateConfig{
		Validator:    cfg.Validator,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Metrics:      cfg.Metrics,
	}))

	// Everything else is guarded
	mux.Handle("/", Chain(target, middlewares...))

	return mux
}

// accept answers a validated request with the acceptance envelope.
func accept(w http.ResponseWriter, r *http.Request) {
	body, ok := BodyFromContext(r.Context())
	handler.WriteAcceptance(w, GetRequestIDFromContext(r.Context()), body, ok)
}

// newUpstreamProxy forwards validated requests to target. Transport
// failures are answered with the rejection envelope.
func newUpstreamProxy(target *url.URL, transport http.RoundTripper, log *slog.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = transport
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.L(r.Context()).Error("upstream request failed",
			"upstream", target.Host,
			"path", r.URL.Path,
			"error", err,
		)
		handler.WriteRejection(w, GetRequestIDFromContext(r.Context()), domain.ErrUpstreamUnavailable.WithCause(err))
	}
	proxy.ErrorLog = slog.NewLogLogger(log.Handler(), slog.LevelError)
	return proxy
}
