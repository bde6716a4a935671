package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures.
type Kind string

const (
	KindMalformedData Kind = "malformed_data"
	KindIOFailure     Kind = "io_failure"
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindInvalidRecord Kind = "invalid_record"
)

// Sentinel errors, one per kind. A *Error matches the sentinel of its kind
// with errors.Is.
var (
	ErrMalformedData = errors.New("malformed card document")
	ErrIOFailure     = errors.New("card document i/o failure")
	ErrNotFound      = errors.New("card not found")
	ErrAlreadyExists = errors.New("card already exists")
	ErrInvalidRecord = errors.New("invalid card")
)

var sentinels = map[Kind]error{
	KindMalformedData: ErrMalformedData,
	KindIOFailure:     ErrIOFailure,
	KindNotFound:      ErrNotFound,
	KindAlreadyExists: ErrAlreadyExists,
	KindInvalidRecord: ErrInvalidRecord,
}

// Error is returned by every store operation that fails.
type Error struct {
	Op   string
	Kind Kind
	Name string // card name, if relevant
	Path string // document path, if relevant
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("card '%s' not found", e.Name)
	case KindAlreadyExists:
		return fmt.Sprintf("card '%s' already exists", e.Name)
	}
	msg := fmt.Sprintf("%s: %s", e.Op, sentinels[e.Kind])
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel error for the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// IsKind reports whether err is a store error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func notFound(op, name string) error {
	return &Error{Op: op, Kind: KindNotFound, Name: name}
}
