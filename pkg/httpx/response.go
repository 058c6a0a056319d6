// Package httpx collects small HTTP helpers shared by the handlers:
// JSON response writing, cache suppression for token material, scope-string
// parsing and token-bucket rate limiting.
package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware is the standard net/http middleware shape used across the
// service's router.
type Middleware func(http.Handler) http.Handler

// Chain wraps h in the given middlewares. The first middleware is the
// outermost one.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WriteJSON writes a JSON response with the given status code. Content-Type
// and cache-suppression headers are set automatically.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
// RFC 6749 requires this on any response carrying tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ParseSpaceDelimitedFields splits a space-delimited string into fields.
// Scope strings arrive in this shape. Returns nil for empty input.
func ParseSpaceDelimitedFields(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
