package market

import (
	"context"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const dexscreenerBaseURL = "https://api.dexscreener.com"

// DexScreenerAdapter fetches on-chain pair data from the DexScreener search endpoint.
type DexScreenerAdapter struct {
	*sources.BaseAdapter
	query string
}

// NewDexScreenerAdapter creates a new DexScreener adapter from configuration.
func NewDexScreenerAdapter(cfg *config.AdapterConfig, logger *logging.Logger) (sources.Adapter, error) {
	base := sources.NewBaseAdapter(
		"dexscreener",
		sources.AdapterTypeMarket,
		cfg.Dataset,
		cfg.GetString("base_url", dexscreenerBaseURL),
		cfg.GetFloat("rate_limit", 0),
		logger,
	)

	return &DexScreenerAdapter{
		BaseAdapter: base,
		query:       cfg.GetString("query", "SOL"),
	}, nil
}

// Fetch retrieves pairs matching the configured search query.
func (a *DexScreenerAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	params := map[string]string{"q": a.query}
	return a.GetJSON(ctx, "/latest/dex/search", params, nil)
}

func init() {
	sources.Register("market.dexscreener", NewDexScreenerAdapter)
}
