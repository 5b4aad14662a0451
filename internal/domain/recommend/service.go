package recommend

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service serves per-user recommendations with a cache in front of the
// provider and a static fallback behind it. Provider calls for the same user
// are collapsed through a singleflight group so a cold cache does not fan
// out duplicate upstream requests.
type Service struct {
	provider Provider
	cache    Cache
	group    singleflight.Group
}

// NewService creates a recommendation Service.
func NewService(provider Provider, cache Cache) *Service {
	return &Service{provider: provider, cache: cache}
}

// For returns recommendations for the user. Resolution order: cache, then
// provider, then the static default list. Provider and cache failures are
// logged and absorbed; the call itself never fails.
func (s *Service) For(ctx context.Context, userID string) []Item {
	lg := zctx.From(ctx)

	if items, ok, err := s.cache.Get(ctx, userID); err != nil {
		lg.Warn("Recommendation cache read failed", zap.Error(err))
	} else if ok {
		return items
	}

	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		return s.provider.Recommend(ctx, userID)
	})
	if err != nil {
		lg.Warn("Recommendation provider failed, serving defaults",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return DefaultItems()
	}

	items := v.([]Item)
	if len(items) == 0 {
		return DefaultItems()
	}

	if err := s.cache.Set(ctx, userID, items); err != nil {
		lg.Warn("Recommendation cache write failed", zap.Error(err))
	}
	return items
}
