package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/reqguard/internal/core/domain"
	"github.com/yndnr/reqguard/internal/core/service"
	"github.com/yndnr/reqguard/internal/server/httpserver/handler"
	"github.com/yndnr/reqguard/internal/telemetry/logger"
	"github.com/yndnr/reqguard/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

const (
	// ContextKeyBody is the context key for the accepted request body.
	ContextKeyBody contextKey = "body"

	// ContextKeyStartTime is the context key for request start time.
	ContextKeyStartTime contextKey = "start_time"

	// ContextKeyClientIP is the context key for the resolved client address.
	ContextKeyClientIP contextKey = "client_ip"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is
// the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a request ID to each request, reusing an incoming
// X-Request-ID when present.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(handler.HeaderRequestID)
			if requestID == "" {
				requestID = "req-" + ulid.Make().String()
				r.Header.Set(handler.HeaderRequestID, requestID)
			}

			w.Header().Set(handler.HeaderRequestID, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP resolves the client address once per request and stores it
// in the context for RateLimit and Audit.
func ClientIP(resolver *ClientIPResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyClientIP, resolver.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Metrics records request counts and latency. Methods outside the
// standard set are recorded as "OTHER".
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		if reg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			reg.RecordHTTPRequest(methodLabel(r.Method), wrapped.statusCode, time.Since(start))
		})
	}
}

// methodLabel bounds the method label set.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return method
	default:
		return "OTHER"
	}
}

// RateLimit applies per-client-IP rate limiting. The key is the address
// stored by ClientIP, or the peer address when ClientIP is not in the
// chain.
func RateLimit(limiter *service.ClientLimiter, reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		if !limiter.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIPFromRequest(r)) {
				if reg != nil {
					reg.RecordValidation(metric.OutcomeRateLimited)
				}
				w.Header().Set("Retry-After", "1")
				handler.WriteRejection(w, GetRequestIDFromContext(r.Context()), domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidateConfig holds dependencies of the Validate middleware.
type ValidateConfig struct {
	Validator *service.RequestValidator

	// MaxBodyBytes bounds the body read for non-GET requests.
	MaxBodyBytes int64

	// Metrics is optional.
	Metrics *metric.Registry
}

// Validate runs the RequestValidator. Rejected requests get the
// rejection envelope and never reach next. For accepted requests the
// parsed body is stored in the context and the raw body is re-attached
// so next can read it again.
func Validate(cfg *ValidateConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := service.FromHTTP(r, cfg.MaxBodyBytes)
			result := cfg.Validator.Validate(req)

			if !result.OK() {
				rejection := result.Err()
				if cfg.Metrics != nil {
					cfg.Metrics.RecordValidation(outcomeFor(rejection))
				}
				attrs := []any{
					"code", rejection.Code,
					"method", r.Method,
					"path", r.URL.Path,
				}
				if rejection.Details != "" {
					attrs = append(attrs, "details", rejection.Details)
				}
				if cause := errors.Unwrap(rejection); cause != nil {
					attrs = append(attrs, "error", cause)
				}
				logger.L(ctx).Debug("request rejected", attrs...)
				handler.WriteRejection(w, GetRequestIDFromContext(ctx), rejection)
				return
			}

			if cfg.Metrics != nil {
				cfg.Metrics.RecordValidation(metric.OutcomeAccepted)
			}
			if body, ok := result.Body(); ok {
				ctx = context.WithValue(ctx, ContextKeyBody, body)
			}

			r = r.WithContext(ctx)
			if req.RawBody != nil {
				r.Body = io.NopCloser(bytes.NewReader(req.RawBody))
				r.ContentLength = int64(len(req.RawBody))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// outcomeFor maps a rejection to its metric outcome label.
func outcomeFor(err *domain.DomainError) string {
	switch {
	case errors.Is(err, domain.ErrAuthHeaderFormat):
		return metric.OutcomeMissingAuth
	case errors.Is(err, domain.ErrBadToken):
		return metric.OutcomeInvalidToken
	case errors.Is(err, domain.ErrUnparsableBody):
		return metric.OutcomeUnparsableBody
	default:
		return "error"
	}
}

// Audit logs request/response for audit trail. The Auth header is never
// logged.
func Audit(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			startTime, _ := r.Context().Value(ContextKeyStartTime).(time.Time)
			if startTime.IsZero() {
				startTime = time.Now()
			}

			attrs := []any{
				"request_id", GetRequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(startTime).Milliseconds(),
				"client_ip", clientIPFromRequest(r),
			}
			if code := wrapped.Header().Get(handler.HeaderErrorCode); code != "" {
				attrs = append(attrs, "error_code", code)
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", GetRequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					handler.WriteRejection(w, GetRequestIDFromContext(r.Context()), domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// BodyFromContext returns the parsed JSON body of an accepted non-GET
// request.
func BodyFromContext(ctx context.Context) (any, bool) {
	body := ctx.Value(ContextKeyBody)
	return body, body != nil
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// clientIPFromRequest returns the address stored by ClientIP, falling
// back to the peer address.
func clientIPFromRequest(r *http.Request) string {
	if ip, ok := r.Context().Value(ContextKeyClientIP).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r.RemoteAddr)
}
