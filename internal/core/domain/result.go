package domain

// ValidationResult is the outcome of validating one inbound request.
//
// A result is either accepted, optionally carrying the parsed JSON body,
// or rejected with the DomainError that caused it. Results are values and
// are never mutated after construction.
type ValidationResult struct {
	body    any
	hasBody bool
	err     *DomainError
}

// Accepted returns an accepted result carrying a parsed body.
func Accepted(body any) ValidationResult {
	return ValidationResult{body: body, hasBody: true}
}

// AcceptedWithoutBody returns an accepted result for body-less requests.
func AcceptedWithoutBody() ValidationResult {
	return ValidationResult{}
}

// Rejected returns a rejected result.
func Rejected(err *DomainError) ValidationResult {
	if err == nil {
		err = ErrInternalServer
	}
	return ValidationResult{err: err}
}

// OK reports whether the request was accepted.
func (r ValidationResult) OK() bool {
	return r.err == nil
}

// Body returns the parsed body and whether one is present.
func (r ValidationResult) Body() (any, bool) {
	return r.body, r.hasBody
}

// Err returns the rejection reason, or nil for accepted results.
func (r ValidationResult) Err() *DomainError {
	return r.err
}

// StatusCode returns the HTTP status of a rejection, or 200 when accepted.
func (r ValidationResult) StatusCode() int {
	if r.err == nil {
		return 200
	}
	return r.err.StatusCode()
}

// Message returns the client-facing rejection message, or "" when accepted.
func (r ValidationResult) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Message
}
