package onboarding

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestTutorialFlagRoundTrip(t *testing.T) {
	s, client := newRedis(t)
	svc := NewService(client)
	ctx := context.Background()

	seen, err := svc.HasSeenTutorial(ctx, "user-1")
	if err != nil || seen {
		t.Fatalf("expected unseen tutorial, got %v %v", seen, err)
	}

	if err := svc.SetTutorialSeen(ctx, "user-1", true); err != nil {
		t.Fatalf("set seen: %v", err)
	}
	if v, _ := s.Get("onboarding:user-1:tutorial_seen"); v != "1" {
		t.Fatalf("expected flag stored, got %q", v)
	}
	seen, err = svc.HasSeenTutorial(ctx, "user-1")
	if err != nil || !seen {
		t.Fatalf("expected seen tutorial")
	}

	if err := svc.SetTutorialSeen(ctx, "user-1", false); err != nil {
		t.Fatalf("reset seen: %v", err)
	}
	if seen, _ := svc.HasSeenTutorial(ctx, "user-1"); seen {
		t.Fatalf("expected flag cleared")
	}
}

func TestTutorialFlagWithoutStore(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.HasSeenTutorial(context.Background(), "user-1"); err != ErrNoStore {
		t.Fatalf("expected ErrNoStore")
	}
	if err := svc.SetTutorialSeen(context.Background(), "user-1", true); err != ErrNoStore {
		t.Fatalf("expected ErrNoStore")
	}
}

func TestTutorialFlagRedisDown(t *testing.T) {
	s, client := newRedis(t)
	s.Close()

	svc := NewService(client)
	if _, err := svc.HasSeenTutorial(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected redis error")
	}
}
