package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/version"
)

// BaseAdapter provides common functionality for HTTP-backed adapters:
// a shared client, optional rate limiting and uniform error classification.
type BaseAdapter struct {
	name        string
	adapterType AdapterType
	dataset     string
	client      *resty.Client
	limiter     *rate.Limiter
	logger      *logging.Logger
}

// NewBaseAdapter creates a new base adapter. ratePerSec <= 0 disables rate
// limiting. The client carries no retry policy: a single upstream call either
// succeeds or fails, and the fan-out fetcher accounts for the failure.
func NewBaseAdapter(name string, adapterType AdapterType, dataset, baseURL string, ratePerSec float64, logger *logging.Logger) *BaseAdapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.AgentString())

	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}

	return &BaseAdapter{
		name:        name,
		adapterType: adapterType,
		dataset:     dataset,
		client:      client,
		limiter:     limiter,
		logger:      logger.With("adapter", name),
	}
}

// Name returns the adapter name
func (b *BaseAdapter) Name() string {
	return b.name
}

// Type returns the adapter category
func (b *BaseAdapter) Type() AdapterType {
	return b.adapterType
}

// Dataset returns the dataset key this adapter contributes to
func (b *BaseAdapter) Dataset() string {
	return b.dataset
}

// Logger returns the adapter logger
func (b *BaseAdapter) Logger() *logging.Logger {
	return b.logger
}

// GetJSON performs a GET request against the adapter base URL and returns
// the validated JSON body. All failures come back as *FetchError.
func (b *BaseAdapter) GetJSON(ctx context.Context, path string, params, headers map[string]string) (RawPayload, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, NewFetchError(FetchKindTimeout, b.name, "deadline exceeded waiting for rate limiter", err)
		}
	}

	var body json.RawMessage
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeaders(headers).
		SetResult(&body).
		Get(path)
	if err != nil {
		return nil, ClassifyFetchError(b.name, err)
	}

	if !resp.IsSuccess() {
		return nil, NewFetchError(FetchKindHTTPStatus, b.name,
			fmt.Sprintf("unexpected status %d", resp.StatusCode()), nil)
	}

	if len(body) == 0 {
		return nil, NewFetchError(FetchKindDecode, b.name, "empty response body", nil)
	}

	return RawPayload(body), nil
}
