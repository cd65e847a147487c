package normalize

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const defaultTopN = 10

// MarketRecord is the canonical shape of the crypto-market dataset.
type MarketRecord struct {
	Tokens    []MarketToken `json:"tokens"`
	Partial   bool          `json:"partial"`
	Providers []string      `json:"providers"`
}

// MarketToken is one token within a MarketRecord. Prices are the median
// across all providers that quoted the token this cycle.
type MarketToken struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name,omitempty"`
	PriceUSD     string `json:"price_usd"`
	Sources      int    `json:"sources"`
	MarketCapUSD string `json:"market_cap_usd,omitempty"`
	Volume24hUSD string `json:"volume_24h_usd,omitempty"`
	Change24hPct string `json:"change_24h_pct,omitempty"`
}

// tokenQuote is one provider's view of one token.
type tokenQuote struct {
	symbol    string
	name      string
	price     decimal.Decimal
	marketCap decimal.Decimal
	volume24h decimal.Decimal
	change24h decimal.Decimal
	hasCap    bool
	hasVolume bool
	hasChange bool
}

// NewMarketNormalizer builds the composite normalizer for the crypto-market
// dataset. A missing or unparsable contributor degrades the record to
// partial; only the loss of every contributor fails the cycle.
func NewMarketNormalizer(contributors []string, topN int) Func {
	if topN <= 0 {
		topN = defaultTopN
	}
	expected := len(contributors)

	return func(inputs map[string]sources.RawPayload) (cache.Record, error) {
		if len(inputs) == 0 {
			return nil, newError(ErrorKindAllContributorsFailed, DatasetCryptoMarket,
				"no contributor delivered a payload this cycle")
		}

		quotesBySymbol := make(map[string][]tokenQuote)
		var providers []string
		for _, name := range contributors {
			payload, ok := inputs[name]
			if !ok {
				continue
			}
			quotes, err := parseMarketPayload(name, payload)
			if err != nil || len(quotes) == 0 {
				// An unparsable contributor counts as missing
				continue
			}
			providers = append(providers, name)
			for _, q := range quotes {
				symbol := strings.ToUpper(q.symbol)
				if symbol == "" {
					continue
				}
				quotesBySymbol[symbol] = append(quotesBySymbol[symbol], q)
			}
		}

		if len(providers) == 0 {
			return nil, newError(ErrorKindAllContributorsFailed, DatasetCryptoMarket,
				"every contributor payload was empty or unparsable")
		}
		if len(quotesBySymbol) == 0 {
			return nil, newError(ErrorKindMissingField, DatasetCryptoMarket,
				"no token symbols extracted from contributor payloads")
		}

		ranked := make([]rankedToken, 0, len(quotesBySymbol))
		for symbol, quotes := range quotesBySymbol {
			ranked = append(ranked, mergeQuotes(symbol, quotes))
		}

		// Rank by market cap, volume as tiebreaker, then symbol for stability
		sort.Slice(ranked, func(i, j int) bool {
			if !ranked[i].cap.Equal(ranked[j].cap) {
				return ranked[i].cap.GreaterThan(ranked[j].cap)
			}
			if !ranked[i].vol.Equal(ranked[j].vol) {
				return ranked[i].vol.GreaterThan(ranked[j].vol)
			}
			return ranked[i].token.Symbol < ranked[j].token.Symbol
		})
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		tokens := make([]MarketToken, 0, len(ranked))
		for _, r := range ranked {
			tokens = append(tokens, r.token)
		}

		record := MarketRecord{
			Tokens:    tokens,
			Partial:   len(providers) < expected,
			Providers: providers,
		}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, newError(ErrorKindMissingField, DatasetCryptoMarket, err.Error())
		}
		return cache.Record(data), nil
	}
}

// rankedToken pairs a token with the decimal keys used for ranking.
type rankedToken struct {
	token MarketToken
	cap   decimal.Decimal
	vol   decimal.Decimal
}

// mergeQuotes combines all provider quotes for one symbol into a token entry.
func mergeQuotes(symbol string, quotes []tokenQuote) rankedToken {
	prices := make([]decimal.Decimal, 0, len(quotes))
	for _, q := range quotes {
		prices = append(prices, q.price)
	}

	token := MarketToken{
		Symbol:   symbol,
		PriceUSD: medianDecimal(prices).String(),
		Sources:  len(quotes),
	}
	ranked := rankedToken{cap: decimal.Zero, vol: decimal.Zero}
	for _, q := range quotes {
		if token.Name == "" && q.name != "" {
			token.Name = q.name
		}
		if token.MarketCapUSD == "" && q.hasCap {
			token.MarketCapUSD = q.marketCap.String()
			ranked.cap = q.marketCap
		}
		if token.Volume24hUSD == "" && q.hasVolume {
			token.Volume24hUSD = q.volume24h.String()
			ranked.vol = q.volume24h
		}
		if token.Change24hPct == "" && q.hasChange {
			token.Change24hPct = q.change24h.String()
		}
	}
	ranked.token = token
	return ranked
}

// medianDecimal returns the median of a non-empty price list.
func medianDecimal(prices []decimal.Decimal) decimal.Decimal {
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LessThan(prices[j])
	})
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return prices[n/2-1].Add(prices[n/2]).Div(decimal.NewFromInt(2))
}

// parseMarketPayload dispatches to the provider-specific parser.
func parseMarketPayload(adapter string, payload sources.RawPayload) ([]tokenQuote, error) {
	switch adapter {
	case "coingecko":
		return parseCoinGecko(payload)
	case "dexscreener":
		return parseDexScreener(payload)
	case "cryptocompare":
		return parseCryptoCompare(payload)
	default:
		return nil, newError(ErrorKindMissingField, DatasetCryptoMarket,
			"unknown market contributor "+adapter)
	}
}

func parseCoinGecko(payload sources.RawPayload) ([]tokenQuote, error) {
	var entries []struct {
		Symbol       string   `json:"symbol"`
		Name         string   `json:"name"`
		CurrentPrice *float64 `json:"current_price"`
		MarketCap    *float64 `json:"market_cap"`
		TotalVolume  *float64 `json:"total_volume"`
		Change24h    *float64 `json:"price_change_percentage_24h"`
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}

	quotes := make([]tokenQuote, 0, len(entries))
	for _, e := range entries {
		if e.Symbol == "" || e.CurrentPrice == nil {
			continue
		}
		q := tokenQuote{
			symbol: e.Symbol,
			name:   e.Name,
			price:  decimal.NewFromFloat(*e.CurrentPrice),
		}
		if e.MarketCap != nil {
			q.marketCap = decimal.NewFromFloat(*e.MarketCap)
			q.hasCap = true
		}
		if e.TotalVolume != nil {
			q.volume24h = decimal.NewFromFloat(*e.TotalVolume)
			q.hasVolume = true
		}
		if e.Change24h != nil {
			q.change24h = decimal.NewFromFloat(*e.Change24h)
			q.hasChange = true
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseDexScreener(payload sources.RawPayload) ([]tokenQuote, error) {
	var body struct {
		Pairs []struct {
			BaseToken struct {
				Symbol string `json:"symbol"`
				Name   string `json:"name"`
			} `json:"baseToken"`
			PriceUSD string `json:"priceUsd"`
			Volume   struct {
				H24 *float64 `json:"h24"`
			} `json:"volume"`
			PriceChange struct {
				H24 *float64 `json:"h24"`
			} `json:"priceChange"`
		} `json:"pairs"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	// One pair per base token: DexScreener lists every pool, keep the first
	// (highest ranked) quote per symbol
	seen := make(map[string]bool)
	var quotes []tokenQuote
	for _, p := range body.Pairs {
		symbol := strings.ToUpper(p.BaseToken.Symbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		price, err := decimal.NewFromString(p.PriceUSD)
		if err != nil {
			continue
		}
		seen[symbol] = true
		q := tokenQuote{
			symbol: symbol,
			name:   p.BaseToken.Name,
			price:  price,
		}
		if p.Volume.H24 != nil {
			q.volume24h = decimal.NewFromFloat(*p.Volume.H24)
			q.hasVolume = true
		}
		if p.PriceChange.H24 != nil {
			q.change24h = decimal.NewFromFloat(*p.PriceChange.H24)
			q.hasChange = true
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseCryptoCompare(payload sources.RawPayload) ([]tokenQuote, error) {
	var body struct {
		Data []struct {
			CoinInfo struct {
				Name     string `json:"Name"`
				FullName string `json:"FullName"`
			} `json:"CoinInfo"`
			Raw struct {
				USD struct {
					Price     *float64 `json:"PRICE"`
					MktCap    *float64 `json:"MKTCAP"`
					Volume24h *float64 `json:"TOTALVOLUME24HTO"`
					Change24h *float64 `json:"CHANGEPCT24HOUR"`
				} `json:"USD"`
			} `json:"RAW"`
		} `json:"Data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	quotes := make([]tokenQuote, 0, len(body.Data))
	for _, e := range body.Data {
		usd := e.Raw.USD
		if e.CoinInfo.Name == "" || usd.Price == nil {
			continue
		}
		q := tokenQuote{
			symbol: e.CoinInfo.Name,
			name:   e.CoinInfo.FullName,
			price:  decimal.NewFromFloat(*usd.Price),
		}
		if usd.MktCap != nil {
			q.marketCap = decimal.NewFromFloat(*usd.MktCap)
			q.hasCap = true
		}
		if usd.Volume24h != nil {
			q.volume24h = decimal.NewFromFloat(*usd.Volume24h)
			q.hasVolume = true
		}
		if usd.Change24h != nil {
			q.change24h = decimal.NewFromFloat(*usd.Change24h)
			q.hasChange = true
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
