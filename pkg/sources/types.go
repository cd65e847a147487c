package sources

import (
	"context"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
)

// AdapterType represents the category of an upstream adapter
type AdapterType string

const (
	AdapterTypeMarket AdapterType = "market"
	AdapterTypeOracle AdapterType = "oracle"
	AdapterTypeSocial AdapterType = "social"
)

// RawPayload is the undecoded JSON body returned by one upstream call.
// Decoding into dataset-specific shapes happens in the normalizers.
type RawPayload []byte

// Adapter wraps one upstream API call. Implementations must complete or
// fail within the deadline of the supplied context and must not retry
// internally; retry and failure accounting belong to the fan-out fetcher.
type Adapter interface {
	// Name returns the unique name of this adapter
	Name() string

	// Type returns the category of this adapter
	Type() AdapterType

	// Dataset returns the dataset key this adapter contributes to
	Dataset() string

	// Fetch performs one upstream call and returns the raw payload.
	// Failures are always *FetchError values.
	Fetch(ctx context.Context) (RawPayload, error)
}

// Factory is a function that creates a new Adapter instance
type Factory func(cfg *config.AdapterConfig, logger *logging.Logger) (Adapter, error)
