// Package market provides adapters for market-data providers.
package market

import (
	"context"
	"strconv"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const (
	coingeckoBaseURL    = "https://api.coingecko.com/api/v3"
	coingeckoRatePerSec = 0.5 // free tier allows ~30 calls/min
)

// CoinGeckoAdapter fetches token market data from the CoinGecko markets endpoint.
type CoinGeckoAdapter struct {
	*sources.BaseAdapter
	vsCurrency string
	category   string
	perPage    int
	apiKey     string
}

// NewCoinGeckoAdapter creates a new CoinGecko adapter from configuration.
func NewCoinGeckoAdapter(cfg *config.AdapterConfig, logger *logging.Logger) (sources.Adapter, error) {
	base := sources.NewBaseAdapter(
		"coingecko",
		sources.AdapterTypeMarket,
		cfg.Dataset,
		cfg.GetString("base_url", coingeckoBaseURL),
		cfg.GetFloat("rate_limit", coingeckoRatePerSec),
		logger,
	)

	return &CoinGeckoAdapter{
		BaseAdapter: base,
		vsCurrency:  cfg.GetString("vs_currency", "usd"),
		category:    cfg.GetString("category", "solana-ecosystem"),
		perPage:     cfg.GetInt("per_page", 50),
		apiKey:      cfg.GetString("api_key", ""),
	}, nil
}

// Fetch retrieves the current token markets page.
func (a *CoinGeckoAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	params := map[string]string{
		"vs_currency": a.vsCurrency,
		"per_page":    strconv.Itoa(a.perPage),
		"page":        "1",
	}
	if a.category != "" {
		params["category"] = a.category
	}

	headers := map[string]string{}
	if a.apiKey != "" {
		headers["x-cg-demo-api-key"] = a.apiKey
	}

	return a.GetJSON(ctx, "/coins/markets", params, headers)
}

func init() {
	sources.Register("market.coingecko", NewCoinGeckoAdapter)
}
