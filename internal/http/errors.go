package http

import (
	"errors"
	"net/http"

	"github.com/arcanaland/spellbook/internal/store"
)

// HTTPError is an error carrying its own status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// BadRequest returns an HTTPError with status 400.
func BadRequest(msg string) error {
	return &HTTPError{Code: http.StatusBadRequest, Message: msg}
}

var codes = map[error]int{
	store.ErrNotFound:      http.StatusNotFound,
	store.ErrAlreadyExists: http.StatusConflict,
	store.ErrInvalidRecord: http.StatusBadRequest,
	ErrUnauthorized:        http.StatusUnauthorized,
}

// StatusCode maps an error to a http status code
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	for target, code := range codes {
		if errors.Is(err, target) {
			return code
		}
	}
	return http.StatusInternalServerError
}

// Error writes an HTTP response with a JSON encoded error.
func Error(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
