package normalize

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// TokenPriceRecord is the canonical shape of the token-prices dataset:
// on-chain token address to USD price.
type TokenPriceRecord struct {
	Prices map[string]TokenPrice `json:"prices"`
	Count  int                   `json:"count"`
}

// TokenPrice is the quote for one token address.
type TokenPrice struct {
	PriceUSD  string `json:"price_usd"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

// NewTokenPriceNormalizer builds the normalizer for the token-prices dataset.
// The dataset has a single contributor, so any usable payload yields a full
// record and no payload fails the cycle.
func NewTokenPriceNormalizer() Func {
	return func(inputs map[string]sources.RawPayload) (cache.Record, error) {
		if len(inputs) == 0 {
			return nil, newError(ErrorKindAllContributorsFailed, DatasetTokenPrices,
				"no contributor delivered a payload this cycle")
		}

		var body struct {
			Data map[string]struct {
				Value          *float64 `json:"value"`
				UpdateUnixTime int64    `json:"updateUnixTime"`
			} `json:"data"`
			Success bool `json:"success"`
		}
		for _, payload := range inputs {
			if err := json.Unmarshal(payload, &body); err != nil {
				return nil, newError(ErrorKindMissingField, DatasetTokenPrices, err.Error())
			}
			break
		}

		if !body.Success || len(body.Data) == 0 {
			return nil, newError(ErrorKindMissingField, DatasetTokenPrices,
				"payload carried no price data")
		}

		prices := make(map[string]TokenPrice, len(body.Data))
		for address, quote := range body.Data {
			if quote.Value == nil {
				continue
			}
			prices[address] = TokenPrice{
				PriceUSD:  decimal.NewFromFloat(*quote.Value).String(),
				UpdatedAt: quote.UpdateUnixTime,
			}
		}
		if len(prices) == 0 {
			return nil, newError(ErrorKindMissingField, DatasetTokenPrices,
				"every quoted address was missing a value")
		}

		record := TokenPriceRecord{Prices: prices, Count: len(prices)}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, newError(ErrorKindMissingField, DatasetTokenPrices, err.Error())
		}
		return cache.Record(data), nil
	}
}
