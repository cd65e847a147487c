package normalize

import "fmt"

// ErrorKind classifies a normalization failure.
type ErrorKind string

const (
	// ErrorKindMissingField indicates a required field was absent from every payload.
	ErrorKindMissingField ErrorKind = "missing-required-field"
	// ErrorKindAllContributorsFailed indicates no contributor delivered a usable payload.
	ErrorKindAllContributorsFailed ErrorKind = "all-contributors-failed"
)

// Error is the typed failure surfaced by normalizers.
type Error struct {
	Kind    ErrorKind
	Dataset string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s: %s: %s", e.Dataset, e.Kind, e.Message)
}

func newError(kind ErrorKind, dataset, message string) *Error {
	return &Error{Kind: kind, Dataset: dataset, Message: message}
}
