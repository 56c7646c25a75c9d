package handler

// Rejection is the body written when a request is refused.
//
//	{"success": false, "code": 401, "response": {"msg": "Bad authentication token"}}
type Rejection struct {
	Success  bool         `json:"success"`
	Code     int          `json:"code"`
	Response RejectionMsg `json:"response"`
}

// RejectionMsg carries the client-facing message of a Rejection.
type RejectionMsg struct {
	Msg string `json:"msg"`
}

// Acceptance is the body written when no upstream is configured and the
// request passed validation. Body is omitted for GET requests.
type Acceptance struct {
	Success bool `json:"success"`
	Body    any  `json:"body,omitempty"`
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}
