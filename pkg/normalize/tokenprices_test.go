package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

func TestTokenPriceNormalizer_Success(t *testing.T) {
	payload := sources.RawPayload(`{
		"data": {
			"So11111111111111111111111111111111111111112": {"value": 142.37, "updateUnixTime": 1718000000},
			"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {"value": 0.9998, "updateUnixTime": 1718000010}
		},
		"success": true
	}`)

	norm := NewTokenPriceNormalizer()
	record, err := norm(map[string]sources.RawPayload{"birdeye": payload})
	require.NoError(t, err)

	var parsed TokenPriceRecord
	require.NoError(t, json.Unmarshal(record, &parsed))

	assert.Equal(t, 2, parsed.Count)
	sol := parsed.Prices["So11111111111111111111111111111111111111112"]
	assert.Equal(t, "142.37", sol.PriceUSD)
	assert.Equal(t, int64(1718000000), sol.UpdatedAt)
}

func TestTokenPriceNormalizer_NoInputs(t *testing.T) {
	norm := NewTokenPriceNormalizer()

	_, err := norm(nil)
	require.Error(t, err)

	var normErr *Error
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, ErrorKindAllContributorsFailed, normErr.Kind)
}

func TestTokenPriceNormalizer_EmptyData(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"success false", `{"data": {"addr": {"value": 1.0}}, "success": false}`},
		{"empty data", `{"data": {}, "success": true}`},
		{"values missing", `{"data": {"addr": {"updateUnixTime": 1}}, "success": true}`},
	}

	norm := NewTokenPriceNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := norm(map[string]sources.RawPayload{
				"birdeye": sources.RawPayload(tt.payload),
			})
			require.Error(t, err)

			var normErr *Error
			require.True(t, errors.As(err, &normErr))
			assert.Equal(t, ErrorKindMissingField, normErr.Kind)
		})
	}
}
