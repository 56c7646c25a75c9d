package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/reqguard/internal/core/domain"
)

// Header names shared by every response.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderErrorCode = "X-Error-Code"
)

// WriteRejection writes the rejection envelope for err.
func WriteRejection(w http.ResponseWriter, requestID string, err *domain.DomainError) {
	if err == nil {
		err = domain.ErrInternalServer
	}
	status := err.StatusCode()

	w.Header().Set(HeaderErrorCode, err.Code)
	writeJSON(w, requestID, status, Rejection{
		Success:  false,
		Code:     status,
		Response: RejectionMsg{Msg: err.Message},
	})
}

// WriteAcceptance writes the acceptance envelope. The body field is only
// present when hasBody is true.
func WriteAcceptance(w http.ResponseWriter, requestID string, body any, hasBody bool) {
	resp := Acceptance{Success: true}
	if hasBody {
		resp.Body = body
	}
	writeJSON(w, requestID, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, requestID string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(HeaderRequestID, requestID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
