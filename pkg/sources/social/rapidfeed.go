// Package social provides adapters for social-metrics providers.
package social

import (
	"context"
	"errors"
	"strconv"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// ErrHostRequired indicates that the RapidAPI host is not configured.
var ErrHostRequired = errors.New("rapidapi host must be configured")

// RapidFeedAdapter fetches post engagement data from a RapidAPI social feed.
type RapidFeedAdapter struct {
	*sources.BaseAdapter
	host      string
	apiKey    string
	profileID string
	count     int
}

// NewRapidFeedAdapter creates a new RapidAPI feed adapter from configuration.
func NewRapidFeedAdapter(cfg *config.AdapterConfig, logger *logging.Logger) (sources.Adapter, error) {
	host := cfg.GetString("host", "")
	if host == "" {
		return nil, ErrHostRequired
	}

	base := sources.NewBaseAdapter(
		"rapidfeed",
		sources.AdapterTypeSocial,
		cfg.Dataset,
		cfg.GetString("base_url", "https://"+host),
		cfg.GetFloat("rate_limit", 1),
		logger,
	)

	return &RapidFeedAdapter{
		BaseAdapter: base,
		host:        host,
		apiKey:      cfg.GetString("api_key", ""),
		profileID:   cfg.GetString("profile_id", ""),
		count:       cfg.GetInt("count", 20),
	}, nil
}

// Fetch retrieves the latest liked posts for the configured profile.
func (a *RapidFeedAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	params := map[string]string{
		"pid":   a.profileID,
		"count": strconv.Itoa(a.count),
	}
	headers := map[string]string{
		"x-rapidapi-host": a.host,
		"x-rapidapi-key":  a.apiKey,
	}

	return a.GetJSON(ctx, "/likes", params, headers)
}

func init() {
	sources.Register("social.rapidfeed", NewRapidFeedAdapter)
}
