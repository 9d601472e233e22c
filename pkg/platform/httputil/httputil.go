// Package httputil writes JSON responses in the service's wire format.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Issues any    `json:"issues,omitempty"`
}

// OKResponse is the body of a successful submission.
type OKResponse struct {
	OK bool `json:"ok"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {error} and, when issues is non-nil, {issues}.
func WriteError(w http.ResponseWriter, status int, message string, issues any) {
	WriteJSON(w, status, ErrorResponse{Error: message, Issues: issues})
}
