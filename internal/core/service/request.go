package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yndnr/reqguard/internal/core/domain"
	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// AuthHeader is the header carrying the window token.
const AuthHeader = "Auth"

// DefaultMaxBodyBytes bounds the body read by FromHTTP.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrEmptyBody marks a non-GET request whose body is empty, JSON null,
// or an empty object or array.
var ErrEmptyBody = errors.New("service: empty body")

// ErrBodyNotContainer marks a body that decodes to a JSON scalar.
var ErrBodyNotContainer = errors.New("service: body is not an object or array")

// ErrBodyTooLarge marks a body larger than the configured limit.
var ErrBodyTooLarge = errors.New("service: body too large")

// IncomingRequest is the request shape the RequestValidator inspects.
type IncomingRequest struct {
	// AuthValues holds every value of the Auth header, in order.
	AuthValues []string

	// Method is the HTTP method.
	Method string

	// Body is the parsed JSON body. Unused for GET.
	Body any

	// BodyErr is set when parsing the body failed.
	BodyErr error

	// RawBody holds the bytes the body was parsed from, so callers can
	// forward the request unchanged.
	RawBody []byte
}

// FromHTTP builds an IncomingRequest from an HTTP request. For non-GET
// methods the body is read (at most maxBody bytes, DefaultMaxBodyBytes
// when maxBody <= 0) and decoded as JSON.
func FromHTTP(r *http.Request, maxBody int64) *IncomingRequest {
	req := &IncomingRequest{
		AuthValues: r.Header.Values(AuthHeader),
		Method:     r.Method,
	}
	if r.Method == http.MethodGet {
		return req
	}

	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if r.Body == nil {
		req.BodyErr = ErrEmptyBody
		return req
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		req.BodyErr = fmt.Errorf("read body: %w", err)
		return req
	}
	if int64(len(raw)) > maxBody {
		req.BodyErr = ErrBodyTooLarge
		return req
	}
	req.RawBody = raw
	req.Body, req.BodyErr = parseJSON(raw)
	return req
}

// parseJSON decodes raw and accepts only a non-empty object or array.
func parseJSON(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBody
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	switch body := v.(type) {
	case nil:
		return nil, ErrEmptyBody
	case map[string]any:
		if len(body) == 0 {
			return nil, ErrEmptyBody
		}
	case []any:
		if len(body) == 0 {
			return nil, ErrEmptyBody
		}
	default:
		return nil, ErrBodyNotContainer
	}
	return v, nil
}

// RequestValidator checks the Auth token and, for non-GET methods, the
// presence of a parsed JSON body.
//
// A RequestValidator holds no mutable state and is safe for concurrent use.
type RequestValidator struct {
	tokens TokenChecker
	clock  Clock
}

// NewRequestValidator creates a RequestValidator. A nil clock uses
// SystemClock.
func NewRequestValidator(tokens TokenChecker, clock Clock) *RequestValidator {
	if clock == nil {
		clock = SystemClock
	}
	return &RequestValidator{
		tokens: tokens,
		clock:  clock,
	}
}

// Validate runs the checks in order: Auth header presence, token
// validity, then body presence for non-GET methods.
func (v *RequestValidator) Validate(req *IncomingRequest) domain.ValidationResult {
	if req == nil || len(req.AuthValues) == 0 {
		return domain.Rejected(domain.ErrAuthHeaderFormat)
	}

	now := v.clock.Now().Unix()
	if !v.tokens.IsValid(req.AuthValues[0], now) {
		// The server window helps diagnose client clock skew in logs.
		return domain.Rejected(domain.ErrBadToken.WithDetails(fmt.Sprintf("server window %d", windowtoken.Window(now))))
	}

	if req.Method != http.MethodGet {
		if req.BodyErr != nil {
			return domain.Rejected(domain.ErrUnparsableBody.WithCause(req.BodyErr))
		}
		if req.Body == nil {
			return domain.Rejected(domain.ErrUnparsableBody)
		}
		return domain.Accepted(req.Body)
	}

	return domain.AcceptedWithoutBody()
}
