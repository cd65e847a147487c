package market

import (
	"context"
	"strconv"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const cryptocompareBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareAdapter fetches top-volume coin data from CryptoCompare.
type CryptoCompareAdapter struct {
	*sources.BaseAdapter
	tsym   string
	limit  int
	apiKey string
}

// NewCryptoCompareAdapter creates a new CryptoCompare adapter from configuration.
func NewCryptoCompareAdapter(cfg *config.AdapterConfig, logger *logging.Logger) (sources.Adapter, error) {
	base := sources.NewBaseAdapter(
		"cryptocompare",
		sources.AdapterTypeMarket,
		cfg.Dataset,
		cfg.GetString("base_url", cryptocompareBaseURL),
		cfg.GetFloat("rate_limit", 0),
		logger,
	)

	return &CryptoCompareAdapter{
		BaseAdapter: base,
		tsym:        cfg.GetString("tsym", "USD"),
		limit:       cfg.GetInt("limit", 50),
		apiKey:      cfg.GetString("api_key", ""),
	}, nil
}

// Fetch retrieves the coins with the highest full trading volume.
func (a *CryptoCompareAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	params := map[string]string{
		"tsym":  a.tsym,
		"limit": strconv.Itoa(a.limit),
	}

	headers := map[string]string{}
	if a.apiKey != "" {
		headers["Authorization"] = "Apikey " + a.apiKey
	}

	return a.GetJSON(ctx, "/data/top/totalvolfull", params, headers)
}

func init() {
	sources.Register("market.cryptocompare", NewCryptoCompareAdapter)
}
