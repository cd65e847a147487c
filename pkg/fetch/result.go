package fetch

import "github.com/Chip777-coder/mirrorx-backend/pkg/sources"

// Result is the outcome of one adapter call within one refresh cycle.
// Exactly one of Payload or Err is set.
type Result struct {
	Adapter string
	Dataset string
	Payload sources.RawPayload
	Err     *sources.FetchError
}

// OK reports whether the adapter produced a usable payload.
func (r Result) OK() bool {
	return r.Err == nil
}
