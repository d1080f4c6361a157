package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/account"
	"github.com/mind-engage/mindengage-prep/internal/leaderboard"
	syncx "github.com/mind-engage/mindengage-prep/internal/sync"
)

type fakeSink struct {
	mu     sync.Mutex
	types  []string
	failed bool
}

func (f *fakeSink) Emit(_ context.Context, typ, _ string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, typ)
	if f.failed {
		return errors.New("sink down")
	}
	return nil
}

type failingBoard struct{ leaderboard.Board }

func (failingBoard) Update(context.Context, string, int, int) error { return errors.New("redis down") }

func newTestService(t *testing.T, opts ...Option) (*Service, account.Store) {
	t.Helper()
	store := account.NewMemoryStore()
	if err := store.CreateUser(context.Background(), account.User{Email: "ada@example.com", FullName: "Ada", CreatedAt: t0}); err != nil {
		t.Fatal(err)
	}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return t0 }),
	}
	return NewService(store, append(base, opts...)...), store
}

func TestServiceApplyResultPersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	board := leaderboard.NewMemoryBoard()
	sink := &fakeSink{}
	svc, store := newTestService(t, WithLeaderboard(board), WithEvents(sink))

	u, err := svc.ApplyResult(ctx, "Ada@Example.com", "dsa", "easy", Result{Score: 80, CreditsEarned: 10})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if u.Credits != 10 || u.Streak != 1 || u.Accuracy != 80 || u.InterviewsCompleted != 1 {
		t.Fatalf("unexpected user %+v", u)
	}

	stored, _ := store.FindByEmail(ctx, "ada@example.com")
	if stored.Credits != 10 {
		t.Errorf("user not persisted: %+v", stored)
	}
	p, _ := store.GetProgress(ctx, "ada@example.com")
	if p["dsa"].Completed != 1 || p["dsa"].Interviews[0].Score != 80 {
		t.Errorf("attempt not appended: %+v", p)
	}
	if r, _ := board.Rank(ctx, leaderboard.ByCredits, "ada@example.com"); r != 1 {
		t.Errorf("leaderboard not updated, rank %d", r)
	}
	if len(sink.types) != 1 || sink.types[0] != syncx.TypeAttemptRecorded {
		t.Errorf("unexpected events %v", sink.types)
	}
}

func TestServiceApplyResultUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ApplyResult(context.Background(), "ghost@example.com", "dsa", "easy", Result{Score: 80})
	if !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceSideEffectFailuresDoNotFail(t *testing.T) {
	sink := &fakeSink{failed: true}
	svc, _ := newTestService(t, WithLeaderboard(failingBoard{}), WithEvents(sink))
	if _, err := svc.ApplyResult(context.Background(), "ada@example.com", "dsa", "easy", Result{Score: 90}); err != nil {
		t.Fatalf("side-effect failure leaked: %v", err)
	}
}

func TestServiceSyncRebuildsFromHistory(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	for _, r := range []Result{{80, 10}, {50, 5}, {90, 20}} {
		if _, err := svc.ApplyResult(ctx, "ada@example.com", "dsa", "easy", r); err != nil {
			t.Fatal(err)
		}
	}
	// corrupt the stored aggregates; sync must restore them from the log
	u, _ := store.FindByEmail(ctx, "ada@example.com")
	u.Credits, u.Accuracy, u.Streak = 0, 3, 9
	_ = store.UpdateUser(ctx, u)

	got, sum, err := svc.Sync(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.Credits != 35 || got.InterviewsCompleted != 3 || got.Accuracy != 73 || got.Streak != 1 || sum.BestStreak != 1 {
		t.Fatalf("unexpected synced user %+v / %+v", got, sum)
	}
	stored, _ := store.FindByEmail(ctx, "ada@example.com")
	if stored.Credits != 35 || stored.Accuracy != 73 {
		t.Errorf("sync not persisted: %+v", stored)
	}

	if _, _, err := svc.Sync(ctx, "ghost@example.com"); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApplyResult(ctx, "ada@example.com", "dsa", "easy", Result{Score: 100, CreditsEarned: 1}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	u, _ := store.FindByEmail(ctx, "ada@example.com")
	if u.Credits != n || u.InterviewsCompleted != n || u.Streak != n {
		t.Fatalf("lost updates: %+v", u)
	}
	list, _ := store.ListAttempts(ctx, "ada@example.com")
	if len(list) != n {
		t.Fatalf("expected %d attempts, got %d", n, len(list))
	}
}

func TestServiceHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	h, err := svc.History(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if h.Attempts == nil || len(h.Attempts) != 0 {
		t.Errorf("expected empty non-nil attempts, got %#v", h.Attempts)
	}
	_, _ = svc.ApplyResult(ctx, "ada@example.com", "dsa", "easy", Result{Score: 90})
	_, _ = svc.ApplyResult(ctx, "ada@example.com", "dsa", "easy", Result{Score: 95})
	h, _ = svc.History(ctx, "ada@example.com")
	if len(h.Attempts) != 2 || h.CurrentStreak != 2 || h.BestStreak != 2 {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestServiceWarmLeaderboardFromStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	if _, err := svc.ApplyResult(ctx, "ada@example.com", "dsa", "easy", Result{Score: 90, CreditsEarned: 30}); err != nil {
		t.Fatal(err)
	}
	_ = store.CreateUser(ctx, account.User{Email: "bob@example.com", FullName: "Bob", CreatedAt: t0})

	// a fresh process: same store, empty board
	board := leaderboard.NewMemoryBoard()
	restarted := NewService(store, WithLeaderboard(board))
	n, err := restarted.WarmLeaderboard(ctx)
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 users loaded, got %d", n)
	}
	top, _ := board.Top(ctx, leaderboard.ByCredits, 10)
	if len(top) != 2 || top[0].Email != "ada@example.com" || top[0].Score != 30 {
		t.Fatalf("unexpected board after warm-up: %+v", top)
	}
	if r, _ := board.Rank(ctx, leaderboard.ByStreak, "ada@example.com"); r != 1 {
		t.Errorf("expected ada first by streak, got rank %d", r)
	}
}
