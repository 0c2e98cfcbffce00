package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const summaryCacheKey = "dashboard:summary"

// Service computes and caches the dashboard summary. Concurrent cache misses
// collapse into a single database query via singleflight.
type Service struct {
	repo   RepositoryPort
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, client: client, ttl: ttl, logger: logger}
}

// Summary returns the cached summary, computing it on a miss. Cache failures
// degrade to a direct read instead of failing the request.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, summaryCacheKey).Result()
		if err == nil {
			var cached Summary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	result := s.group.DoChan(summaryCacheKey, func() (any, error) {
		return s.Refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

// Refresh recomputes the summary and stores it in the cache. Called by the
// request path on a miss and by the background warmup job.
func (s *Service) Refresh(ctx context.Context) (Summary, error) {
	summary, err := s.repo.CollectSummary(ctx)
	if err != nil {
		return Summary{}, err
	}
	if s.client != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.client.Set(ctx, summaryCacheKey, payload, s.ttl).Err(); err != nil && s.logger != nil {
				s.logger.Warn("dashboard cache set", slog.Any("error", err))
			}
		}
	}
	return summary, nil
}
