package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/reqguard/internal/core/domain"
)

const testSecret = "k"

// validAt100 is md5("100k"), valid for now in [80, 120).
const validAt100 = "12277132c4446ec03bdb8b55891b24d4"

func newTestRequestValidator(t *testing.T, now int64) *RequestValidator {
	t.Helper()
	tokens := newTestTokenValidator(t, testSecret, false)
	return NewRequestValidator(tokens, FixedClock(time.Unix(now, 0)))
}

func assertRejected(t *testing.T, got domain.ValidationResult, want *domain.DomainError) {
	t.Helper()
	if got.OK() {
		t.Fatalf("result accepted, want rejection %s", want.Code)
	}
	if !errors.Is(got.Err(), want) {
		t.Errorf("Err() = %v, want %v", got.Err(), want)
	}
	if got.StatusCode() != want.StatusCode() {
		t.Errorf("StatusCode() = %d, want %d", got.StatusCode(), want.StatusCode())
	}
	if got.Message() != want.Message {
		t.Errorf("Message() = %q, want %q", got.Message(), want.Message)
	}
}

func TestRequestValidator_Validate(t *testing.T) {
	v := newTestRequestValidator(t, 100)

	t.Run("GET with valid token is accepted without body", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100},
			Method:     http.MethodGet,
		})
		if !res.OK() {
			t.Fatalf("rejected: %v", res.Err())
		}
		if _, ok := res.Body(); ok {
			t.Error("GET result should not carry a body")
		}
	})

	t.Run("GET ignores a broken body", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100},
			Method:     http.MethodGet,
			BodyErr:    errors.New("broken"),
		})
		if !res.OK() {
			t.Fatalf("rejected: %v", res.Err())
		}
	})

	t.Run("POST with parsed body is accepted", func(t *testing.T) {
		body := map[string]any{"name": "x"}
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100},
			Method:     http.MethodPost,
			Body:       body,
		})
		if !res.OK() {
			t.Fatalf("rejected: %v", res.Err())
		}
		got, ok := res.Body()
		if !ok || !reflect.DeepEqual(got, body) {
			t.Errorf("Body() = %v, %v; want %v", got, ok, body)
		}
	})

	t.Run("POST with unparsable body", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100},
			Method:     http.MethodPost,
			BodyErr:    errors.New("invalid character"),
		})
		assertRejected(t, res, domain.ErrUnparsableBody)
	})

	t.Run("PUT with no body value", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100},
			Method:     http.MethodPut,
		})
		assertRejected(t, res, domain.ErrUnparsableBody)
	})

	t.Run("missing Auth header", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			res := v.Validate(&IncomingRequest{
				Method:  method,
				BodyErr: errors.New("also broken"),
			})
			assertRejected(t, res, domain.ErrAuthHeaderFormat)
		}
	})

	t.Run("nil request", func(t *testing.T) {
		assertRejected(t, v.Validate(nil), domain.ErrAuthHeaderFormat)
	})

	t.Run("bad token wins over bad body", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{"nope"},
			Method:     http.MethodPost,
			BodyErr:    errors.New("broken"),
		})
		assertRejected(t, res, domain.ErrBadToken)
	})

	t.Run("only the first Auth value counts", func(t *testing.T) {
		res := v.Validate(&IncomingRequest{
			AuthValues: []string{"nope", validAt100},
			Method:     http.MethodGet,
		})
		assertRejected(t, res, domain.ErrBadToken)

		res = v.Validate(&IncomingRequest{
			AuthValues: []string{validAt100, "nope"},
			Method:     http.MethodGet,
		})
		if !res.OK() {
			t.Errorf("rejected: %v", res.Err())
		}
	})
}

func TestRequestValidator_UsesClock(t *testing.T) {
	req := &IncomingRequest{AuthValues: []string{validAt100}, Method: http.MethodGet}

	if res := newTestRequestValidator(t, 119).Validate(req); !res.OK() {
		t.Errorf("now=119: rejected: %v", res.Err())
	}
	if res := newTestRequestValidator(t, 139).Validate(req); res.OK() {
		t.Error("now=139: token for window 100 should be stale")
	}
}

func TestRequestValidator_Idempotent(t *testing.T) {
	v := newTestRequestValidator(t, 100)
	reqs := []*IncomingRequest{
		{AuthValues: []string{validAt100}, Method: http.MethodGet},
		{AuthValues: []string{validAt100}, Method: http.MethodPost, Body: []any{1.0}},
		{AuthValues: []string{validAt100}, Method: http.MethodPost, BodyErr: ErrEmptyBody},
		{AuthValues: []string{"bad"}, Method: http.MethodGet},
		{Method: http.MethodDelete},
	}

	for i, req := range reqs {
		a, b := v.Validate(req), v.Validate(req)
		bodyA, okA := a.Body()
		bodyB, okB := b.Body()
		if a.OK() != b.OK() || a.StatusCode() != b.StatusCode() || a.Message() != b.Message() ||
			okA != okB || !reflect.DeepEqual(bodyA, bodyB) {
			t.Errorf("request %d: results differ between calls", i)
		}
	}
}

func TestFromHTTP(t *testing.T) {
	t.Run("GET does not read the body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", strings.NewReader("not json"))
		r.Header.Add("Auth", "a")
		r.Header.Add("Auth", "b")

		req := FromHTTP(r, 0)
		if !reflect.DeepEqual(req.AuthValues, []string{"a", "b"}) {
			t.Errorf("AuthValues = %v", req.AuthValues)
		}
		if req.Body != nil || req.BodyErr != nil || req.RawBody != nil {
			t.Errorf("GET body fields should be empty: %+v", req)
		}
	})

	tests := []struct {
		name    string
		body    string
		maxBody int64
		wantErr error
		wantAny bool
	}{
		{"object", `{"a":1}`, 0, nil, false},
		{"array", `[1,2]`, 0, nil, false},
		{"string", `"text"`, 0, ErrBodyNotContainer, false},
		{"zero", `0`, 0, ErrBodyNotContainer, false},
		{"false", `false`, 0, ErrBodyNotContainer, false},
		{"empty object", `{}`, 0, ErrEmptyBody, false},
		{"empty array", `[]`, 0, ErrEmptyBody, false},
		{"empty", ``, 0, ErrEmptyBody, false},
		{"null", `null`, 0, ErrEmptyBody, false},
		{"malformed", `{"a":`, 0, nil, true},
		{"trailing data", `{"a":1} x`, 0, nil, true},
		{"too large", `{"a":"0123456789"}`, 8, ErrBodyTooLarge, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req := FromHTTP(r, tt.maxBody)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(req.BodyErr, tt.wantErr) {
					t.Errorf("BodyErr = %v, want %v", req.BodyErr, tt.wantErr)
				}
			case tt.wantAny:
				if req.BodyErr == nil {
					t.Error("BodyErr = nil, want parse error")
				}
			default:
				if req.BodyErr != nil {
					t.Errorf("BodyErr = %v, want nil", req.BodyErr)
				}
				if req.Body == nil {
					t.Error("Body = nil, want parsed value")
				}
				if string(req.RawBody) != tt.body {
					t.Errorf("RawBody = %q, want %q", req.RawBody, tt.body)
				}
			}
		})
	}

	t.Run("missing Auth header yields no values", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if req := FromHTTP(r, 0); len(req.AuthValues) != 0 {
			t.Errorf("AuthValues = %v, want empty", req.AuthValues)
		}
	})
}

func TestRequestValidator_BadTokenDetails(t *testing.T) {
	v := newTestRequestValidator(t, 113)
	res := v.Validate(&IncomingRequest{AuthValues: []string{"nope"}, Method: http.MethodGet})

	if got := res.Err().Details; got != "server window 100" {
		t.Errorf("Details = %q, want the server window", got)
	}
	if res.Message() != "Bad authentication token" {
		t.Errorf("Message() = %q, details must not reach the client", res.Message())
	}
}

func TestRequestValidator_RejectsEmptyAndScalarBodies(t *testing.T) {
	v := newTestRequestValidator(t, 100)

	for _, body := range []string{`{}`, `[]`, `"text"`, `0`, `false`, `1`, `null`} {
		t.Run(body, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			r.Header.Set(AuthHeader, validAt100)

			assertRejected(t, v.Validate(FromHTTP(r, 0)), domain.ErrUnparsableBody)
		})
	}

	for _, body := range []string{`{"a":1}`, `[0]`, `[null]`} {
		t.Run(body, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			r.Header.Set(AuthHeader, validAt100)

			if res := v.Validate(FromHTTP(r, 0)); !res.OK() {
				t.Errorf("rejected: %v", res.Err())
			}
		})
	}
}
