// Package service provides the request validation services.
//
// This package contains:
//
//   - TokenValidator: window token check for the current and next window
//   - RequestValidator: Auth header, token and body checks in order
//   - FromHTTP: adapter from *http.Request to IncomingRequest
//   - ClientLimiter: per-client token buckets with idle eviction
//
// Validators hold no mutable state after construction and are safe for
// concurrent use.
package service
