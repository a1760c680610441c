package httpx

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse is the envelope every successful API call returns.
type SuccessResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ErrorResponse is the envelope every failed API call returns.
type ErrorResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// WriteJSON writes v with the given status code. Responses are never cached
// since most of them carry tokens or user data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(w http.ResponseWriter, code int, data any, message string) {
	WriteJSON(w, code, SuccessResponse{
		Status:  code,
		Data:    data,
		Message: message,
		Success: true,
	})
}

// WriteFailure wraps message in the failure envelope. errs is always encoded
// as a list, never null.
func WriteFailure(w http.ResponseWriter, code int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	WriteJSON(w, code, ErrorResponse{
		Status:  code,
		Message: message,
		Success: false,
		Errors:  errs,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
