// Package normalize maps raw upstream payloads into canonical dataset records.
// Normalizers are pure functions: no I/O, no clocks, no shared state.
package normalize

import (
	"fmt"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// Known dataset keys.
const (
	DatasetCryptoMarket  = "crypto-market"
	DatasetTokenPrices   = "token-prices"
	DatasetSocialMetrics = "social-metrics"
)

// Func normalizes the successful payloads of one refresh cycle into a
// canonical record for its dataset. inputs is keyed by adapter name and
// contains only payloads that fetched successfully; contributors missing
// from the map failed this cycle.
type Func func(inputs map[string]sources.RawPayload) (cache.Record, error)

// ForDataset returns the normalizer for a dataset key. contributors is the
// full set of adapter names expected to feed the dataset; composite
// normalizers use it to mark records partial when some contributors are
// missing.
func ForDataset(dataset string, contributors []string) (Func, error) {
	switch dataset {
	case DatasetCryptoMarket:
		return NewMarketNormalizer(contributors, defaultTopN), nil
	case DatasetTokenPrices:
		return NewTokenPriceNormalizer(), nil
	case DatasetSocialMetrics:
		return NewSocialNormalizer(), nil
	default:
		return nil, fmt.Errorf("no normalizer registered for dataset %q", dataset)
	}
}
