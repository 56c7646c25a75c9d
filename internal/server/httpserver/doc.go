// Package httpserver provides the HTTP/HTTPS front of reqguard.
//
// Every request outside /health, /ready and /metrics passes the
// middleware chain
//
//	Recover -> RequestID -> ClientIP -> Metrics -> Audit -> RateLimit -> Validate
//
// and is then forwarded to the configured upstream, or answered with the
// acceptance envelope when no upstream is set. Accepted bodies are
// available to downstream handlers through BodyFromContext.
//
// The client address used for rate limiting is the peer address unless
// the peer is one of the configured trusted proxies.
package httpserver
