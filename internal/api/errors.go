package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorCode represents machine-readable error codes
type ErrorCode string

const (
	// General error codes
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidJSON  ErrorCode = "INVALID_JSON"

	// Validation error codes, one per rejected rule invariant
	ErrCodeTypeMismatch         ErrorCode = "TYPE_MISMATCH"
	ErrCodeDuplicatePriority    ErrorCode = "DUPLICATE_PRIORITY"
	ErrCodeInvalidCountryCode   ErrorCode = "INVALID_COUNTRY_CODE"
	ErrCodeInvalidDateRange     ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidVersionFormat ErrorCode = "INVALID_VERSION_FORMAT"
	ErrCodeRuleNotFound         ErrorCode = "RULE_NOT_FOUND"
	ErrCodeInvalidDataType      ErrorCode = "INVALID_DATA_TYPE"
	ErrCodeDebugInstantDisabled ErrorCode = "DEBUG_INSTANT_DISABLED"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error     string    `json:"error"`                // HTTP status text
	Message   string    `json:"message"`              // Human-readable description
	Code      ErrorCode `json:"code"`                 // Machine-readable error code
	RequestID string    `json:"request_id,omitempty"` // Request ID for debugging
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response, attaching the chi request ID
// when available.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code ErrorCode, message string) {
	resp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    code,
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		resp.RequestID = reqID
	}
	writeJSON(w, statusCode, resp)
}
