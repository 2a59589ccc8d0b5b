package youtube

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubepulse/internal/retry"
)

// SimulatedChannelID marks statistics produced without an API key.
const SimulatedChannelID = "SIMULATED_CHANNEL"

// Stats is one sampled set of video statistics. Fields are pointers because a
// failed fetch leaves them missing; the tracker forward-fills gaps later.
type Stats struct {
	Views       *int64
	Likes       *int64
	Subscribers *int64
	ChannelID   string
}

// StatsSource fetches the current statistics for a video.
type StatsSource interface {
	Fetch(ctx context.Context, videoID string) (Stats, error)
}

// APIStatsSource fetches live statistics: one videos.list call and, when the
// video exposes its channel, one channels.list call for the subscriber count.
type APIStatsSource struct {
	service *youtube.Service
	policy  retry.Policy
}

// NewAPIStatsSource builds a live stats source, or ErrServiceUnavailable when
// no API key is configured.
func NewAPIStatsSource(ctx context.Context, apiKey string) (*APIStatsSource, error) {
	if apiKey == "" {
		return nil, ErrServiceUnavailable
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return &APIStatsSource{service: service, policy: retry.DefaultPolicy()}, nil
}

// Fetch returns the video's current view/like counts and its channel's
// subscriber count.
func (s *APIStatsSource) Fetch(ctx context.Context, videoID string) (Stats, error) {
	var stats Stats
	err := retry.Do(ctx, s.policy, apiRetryable, func(ctx context.Context) error {
		resp, err := s.service.Videos.List([]string{"snippet", "statistics"}).
			Id(videoID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("youtube: video %s not found", videoID)
		}

		item := resp.Items[0]
		if item.Statistics != nil {
			views := int64(item.Statistics.ViewCount)
			likes := int64(item.Statistics.LikeCount)
			stats.Views = &views
			stats.Likes = &likes
		}
		if item.Snippet != nil {
			stats.ChannelID = item.Snippet.ChannelId
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	if stats.ChannelID != "" {
		// Best effort: a failed channel lookup only loses the subscriber count.
		err := retry.Do(ctx, s.policy, apiRetryable, func(ctx context.Context) error {
			resp, err := s.service.Channels.List([]string{"statistics"}).
				Id(stats.ChannelID).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			if len(resp.Items) > 0 && resp.Items[0].Statistics != nil {
				subs := int64(resp.Items[0].Statistics.SubscriberCount)
				stats.Subscribers = &subs
			}
			return nil
		})
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// SimulatedStatsSource derives pseudo-random statistics from a time-based
// seed, so repeated fetches within the same clock minute are stable.
type SimulatedStatsSource struct {
	// Now is the clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

// Fetch generates deterministic statistics for the current minute.
func (s *SimulatedStatsSource) Fetch(_ context.Context, videoID string) (Stats, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	seed := now().Unix() / 60
	for _, c := range []byte(videoID) {
		seed += int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	views := seed%1000 + 100 + rng.Int63n(301)
	likes := int64(float64(views) * (0.01 + rng.Float64()*0.06))
	if likes < 0 {
		likes = 0
	}
	subs := 500 + rng.Int63n(51)

	return Stats{
		Views:       &views,
		Likes:       &likes,
		Subscribers: &subs,
		ChannelID:   SimulatedChannelID,
	}, nil
}
