package normalize

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// SocialRecord is the canonical shape of the social-metrics dataset:
// engagement totals over the sampled posts.
type SocialRecord struct {
	SampleSize int    `json:"sample_size"`
	LikesTotal int64  `json:"likes_total"`
	LikesAvg   string `json:"likes_avg"`
}

// socialPost tolerates the field drift of the upstream feed: like counts
// appear as like_count or favorite_count depending on the endpoint version.
type socialPost struct {
	LikeCount     *int64 `json:"like_count"`
	FavoriteCount *int64 `json:"favorite_count"`
}

func (p socialPost) likes() (int64, bool) {
	if p.LikeCount != nil {
		return *p.LikeCount, true
	}
	if p.FavoriteCount != nil {
		return *p.FavoriteCount, true
	}
	return 0, false
}

// NewSocialNormalizer builds the normalizer for the social-metrics dataset.
// The feed returns either a bare array of posts or an object wrapping one
// under "data" or "results".
func NewSocialNormalizer() Func {
	return func(inputs map[string]sources.RawPayload) (cache.Record, error) {
		if len(inputs) == 0 {
			return nil, newError(ErrorKindAllContributorsFailed, DatasetSocialMetrics,
				"no contributor delivered a payload this cycle")
		}

		var posts []socialPost
		for _, payload := range inputs {
			parsed, err := parseSocialPosts(payload)
			if err != nil {
				return nil, newError(ErrorKindMissingField, DatasetSocialMetrics, err.Error())
			}
			posts = parsed
			break
		}

		var total int64
		counted := 0
		for _, post := range posts {
			likes, ok := post.likes()
			if !ok {
				continue
			}
			total += likes
			counted++
		}
		if counted == 0 {
			return nil, newError(ErrorKindMissingField, DatasetSocialMetrics,
				"no post in the sample carried a like count")
		}

		avg := decimal.NewFromInt(total).
			Div(decimal.NewFromInt(int64(counted))).
			Round(2)

		record := SocialRecord{
			SampleSize: counted,
			LikesTotal: total,
			LikesAvg:   avg.String(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, newError(ErrorKindMissingField, DatasetSocialMetrics, err.Error())
		}
		return cache.Record(data), nil
	}
}

func parseSocialPosts(payload sources.RawPayload) ([]socialPost, error) {
	var posts []socialPost
	if err := json.Unmarshal(payload, &posts); err == nil {
		return posts, nil
	}

	var wrapped struct {
		Data    []socialPost `json:"data"`
		Results []socialPost `json:"results"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Data) > 0 {
		return wrapped.Data, nil
	}
	return wrapped.Results, nil
}
