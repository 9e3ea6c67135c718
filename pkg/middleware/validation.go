package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the standard shape for request-level validation errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidateRequest rejects malformed requests before they reach a handler:
// wrong content type, empty body on POST/PUT, oversized body.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				errResp := ErrorResponse{Error: "Invalid Content-Type, expected application/json"}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(errResp)
				return
			}

			if r.ContentLength == 0 {
				errResp := ErrorResponse{Error: "Request body cannot be empty"}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(errResp)
				return
			}
		}

		// 1MB is plenty for an alert payload
		const maxSize = 1 << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}
