// Package oracle provides adapters for token-price oracles.
package oracle

import (
	"context"
	"strings"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const birdeyeBaseURL = "https://public-api.birdeye.so"

// BirdeyeAdapter fetches token prices from the Birdeye multi-price endpoint.
type BirdeyeAdapter struct {
	*sources.BaseAdapter
	addresses []string
	chain     string
	apiKey    string
}

// NewBirdeyeAdapter creates a new Birdeye adapter from configuration.
// The adapter needs at least one token address to price.
func NewBirdeyeAdapter(cfg *config.AdapterConfig, logger *logging.Logger) (sources.Adapter, error) {
	addresses := cfg.GetStringSlice("addresses")
	if len(addresses) == 0 {
		return nil, ErrNoAddressesConfigured
	}

	base := sources.NewBaseAdapter(
		"birdeye",
		sources.AdapterTypeOracle,
		cfg.Dataset,
		cfg.GetString("base_url", birdeyeBaseURL),
		cfg.GetFloat("rate_limit", 1),
		logger,
	)

	return &BirdeyeAdapter{
		BaseAdapter: base,
		addresses:   addresses,
		chain:       cfg.GetString("chain", "solana"),
		apiKey:      cfg.GetString("api_key", ""),
	}, nil
}

// Fetch retrieves current prices for the configured token addresses.
func (a *BirdeyeAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	params := map[string]string{
		"list_address": strings.Join(a.addresses, ","),
	}
	headers := map[string]string{
		"x-chain": a.chain,
	}
	if a.apiKey != "" {
		headers["X-API-KEY"] = a.apiKey
	}

	return a.GetJSON(ctx, "/defi/multi_price", params, headers)
}

func init() {
	sources.Register("oracle.birdeye", NewBirdeyeAdapter)
}
