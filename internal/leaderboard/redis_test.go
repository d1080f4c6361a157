package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBoard(t *testing.T) (*RedisBoard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBoard(client), mr
}

func TestRedisBoardOrdering(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBoard(t)
	_ = b.Update(ctx, "ada@example.com", 35, 1)
	_ = b.Update(ctx, "bob@example.com", 50, 0)
	_ = b.Update(ctx, "cy@example.com", 35, 4)

	top, err := b.Top(ctx, ByCredits, 2)
	if err != nil {
		t.Fatal(err)
	}
	// equal scores fall back to reverse lexical order, same as MemoryBoard
	if len(top) != 2 || top[0].Email != "bob@example.com" || top[1].Email != "cy@example.com" {
		t.Fatalf("unexpected credits order: %+v", top)
	}
	if top[1].Rank != 2 || top[1].Score != 35 {
		t.Errorf("unexpected entry %+v", top[1])
	}

	streak, err := b.Top(ctx, ByStreak, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(streak) != 3 || streak[0].Email != "cy@example.com" || streak[0].Score != 4 {
		t.Fatalf("unexpected streak order: %+v", streak)
	}

	if r, err := b.Rank(ctx, ByCredits, "ada@example.com"); err != nil || r != 3 {
		t.Errorf("expected rank 3, got %d (%v)", r, err)
	}
	if r, err := b.Rank(ctx, ByCredits, "ghost@example.com"); err != nil || r != 0 {
		t.Errorf("expected rank 0 for absent user, got %d (%v)", r, err)
	}
	if top, _ := b.Top(ctx, ByCredits, 0); len(top) != 0 {
		t.Errorf("expected empty page for limit 0, got %+v", top)
	}
}

func TestRedisBoardUpdateOverwritesBothKeys(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBoard(t)
	_ = b.Update(ctx, "ada@example.com", 10, 2)
	if err := b.Update(ctx, "ada@example.com", 60, 0); err != nil {
		t.Fatalf("update: %v", err)
	}

	if s, err := mr.ZScore(CreditsKey, "ada@example.com"); err != nil || s != 60 {
		t.Errorf("credits score %v (%v)", s, err)
	}
	if s, err := mr.ZScore(StreakKey, "ada@example.com"); err != nil || s != 0 {
		t.Errorf("streak score %v (%v)", s, err)
	}
	if members, _ := mr.ZMembers(CreditsKey); len(members) != 1 {
		t.Errorf("expected a single member, got %v", members)
	}
}

func TestRedisBoardSurfacesConnectionErrors(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBoard(t)
	mr.Close()
	if err := b.Update(ctx, "ada@example.com", 1, 1); err == nil {
		t.Error("expected error from closed server")
	}
	if _, err := b.Rank(ctx, ByStreak, "ada@example.com"); err == nil {
		t.Error("expected error from closed server")
	}
}
