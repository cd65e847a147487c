package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

func TestSocialNormalizer_BareArray(t *testing.T) {
	payload := sources.RawPayload(`[
		{"like_count": 10},
		{"like_count": 20},
		{"like_count": 33}
	]`)

	norm := NewSocialNormalizer()
	record, err := norm(map[string]sources.RawPayload{"rapidfeed": payload})
	require.NoError(t, err)

	var parsed SocialRecord
	require.NoError(t, json.Unmarshal(record, &parsed))

	assert.Equal(t, 3, parsed.SampleSize)
	assert.Equal(t, int64(63), parsed.LikesTotal)
	assert.Equal(t, "21", parsed.LikesAvg)
}

func TestSocialNormalizer_WrappedAndLegacyFields(t *testing.T) {
	// Older endpoint versions wrap posts under "data" and use favorite_count
	payload := sources.RawPayload(`{
		"data": [
			{"favorite_count": 7},
			{"favorite_count": 8},
			{"retweet_count": 99}
		]
	}`)

	norm := NewSocialNormalizer()
	record, err := norm(map[string]sources.RawPayload{"rapidfeed": payload})
	require.NoError(t, err)

	var parsed SocialRecord
	require.NoError(t, json.Unmarshal(record, &parsed))

	// The post without any like field is excluded from the sample
	assert.Equal(t, 2, parsed.SampleSize)
	assert.Equal(t, int64(15), parsed.LikesTotal)
	assert.Equal(t, "7.5", parsed.LikesAvg)
}

func TestSocialNormalizer_NoUsablePosts(t *testing.T) {
	norm := NewSocialNormalizer()

	_, err := norm(map[string]sources.RawPayload{
		"rapidfeed": sources.RawPayload(`[]`),
	})
	require.Error(t, err)

	var normErr *Error
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, ErrorKindMissingField, normErr.Kind)
}

func TestSocialNormalizer_NoInputs(t *testing.T) {
	norm := NewSocialNormalizer()

	_, err := norm(nil)
	require.Error(t, err)

	var normErr *Error
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, ErrorKindAllContributorsFailed, normErr.Kind)
}

func TestForDataset(t *testing.T) {
	for _, dataset := range []string{DatasetCryptoMarket, DatasetTokenPrices, DatasetSocialMetrics} {
		norm, err := ForDataset(dataset, []string{"a"})
		require.NoError(t, err, dataset)
		require.NotNil(t, norm, dataset)
	}

	_, err := ForDataset("unknown-dataset", nil)
	require.Error(t, err)
}
