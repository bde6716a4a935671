package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "x-api-key"

// ErrUnauthorized is returned when a request carries no valid API key.
var ErrUnauthorized = errors.New("unauthorized")

// APIKeyMiddleware rejects requests whose API key header does not match one
// of keys.
func APIKeyMiddleware(keys []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validKey(keys, r.Header.Get(APIKeyHeader)) {
				Error(w, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validKey(keys []string, got string) bool {
	if got == "" {
		return false
	}
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(got)) == 1 {
			valid = true
		}
	}
	return valid
}
