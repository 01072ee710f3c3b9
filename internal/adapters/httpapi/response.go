package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/grievd/internal/core/grievance"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope. Kind is the machine-readable
// classification; Rule names the violated policy when there is one.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps an engine error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Kind: grievance.ErrorKind(err)}

	var policy *grievance.PolicyViolation
	if errors.As(err, &policy) {
		resp.Rule = policy.Rule
	}
	writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case grievance.IsConflict(err):
		return http.StatusConflict
	case grievance.IsPolicyViolation(err):
		return http.StatusUnprocessableEntity
	case grievance.IsUnauthorized(err):
		return http.StatusForbidden
	case errors.Is(err, grievance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, grievance.ErrLockTimeout), grievance.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
