package onboarding

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var ErrNoStore = errors.New("onboarding store not configured")

// Service keeps the per-user "has seen tutorial" flag that gates the first-run flow.
type Service struct {
	redis *redis.Client
}

func NewService(redisClient *redis.Client) *Service {
	return &Service{redis: redisClient}
}

func (s *Service) HasSeenTutorial(ctx context.Context, userID string) (bool, error) {
	if s.redis == nil {
		return false, ErrNoStore
	}
	v, err := s.redis.Get(ctx, tutorialKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *Service) SetTutorialSeen(ctx context.Context, userID string, seen bool) error {
	if s.redis == nil {
		return ErrNoStore
	}
	if !seen {
		return s.redis.Del(ctx, tutorialKey(userID)).Err()
	}
	return s.redis.Set(ctx, tutorialKey(userID), "1", 0).Err()
}

func tutorialKey(userID string) string {
	return "onboarding:" + userID + ":tutorial_seen"
}
