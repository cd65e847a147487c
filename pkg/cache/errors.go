package cache

import "fmt"

// ErrorKind classifies a cache store failure.
type ErrorKind string

const (
	// ErrorKindSerialize indicates the record could not be serialized or deserialized.
	ErrorKindSerialize ErrorKind = "serialize"
	// ErrorKindBackendUnavailable indicates the backing store could not be reached.
	ErrorKindBackendUnavailable ErrorKind = "backend-unavailable"
)

// Error is the typed failure surfaced by cache store implementations.
type Error struct {
	Kind ErrorKind
	Op   string
	Key  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %q: %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}
