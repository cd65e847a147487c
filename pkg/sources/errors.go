// Package sources provides upstream adapter interfaces and implementations.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// FetchKind classifies an adapter failure.
type FetchKind string

const (
	// FetchKindNetwork indicates a transport-level failure.
	FetchKindNetwork FetchKind = "network"
	// FetchKindTimeout indicates the call exceeded its deadline.
	FetchKindTimeout FetchKind = "timeout"
	// FetchKindHTTPStatus indicates a non-success HTTP status.
	FetchKindHTTPStatus FetchKind = "http-status"
	// FetchKindDecode indicates an undecodable response body.
	FetchKindDecode FetchKind = "decode"
)

// FetchError is the typed failure surfaced by every adapter.
type FetchError struct {
	Kind    FetchKind
	Adapter string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Adapter, e.Message, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Adapter, e.Message, e.Kind)
}

// Unwrap returns the underlying error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError of the given kind.
func NewFetchError(kind FetchKind, adapter, message string, err error) *FetchError {
	return &FetchError{Kind: kind, Adapter: adapter, Message: message, Err: err}
}

// ClassifyFetchError converts an arbitrary adapter error into a FetchError.
// Context deadline and cancellation map to the timeout kind, JSON decoding
// failures to decode, everything else to network.
func ClassifyFetchError(adapter string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewFetchError(FetchKindTimeout, adapter, "request deadline exceeded", err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return NewFetchError(FetchKindDecode, adapter, "undecodable response body", err)
	}
	return NewFetchError(FetchKindNetwork, adapter, "request failed", err)
}
