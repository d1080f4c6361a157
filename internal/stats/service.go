package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/account"
	"github.com/mind-engage/mindengage-prep/internal/leaderboard"
	syncx "github.com/mind-engage/mindengage-prep/internal/sync"
)

// EventSink receives audit events. Failures are logged, never returned.
type EventSink interface {
	Emit(ctx context.Context, typ, key string, payload any) error
}

type Service struct {
	store  account.Store
	locks  *account.KeyedMutex
	board  leaderboard.Board
	events EventSink
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLeaderboard(b leaderboard.Board) Option { return func(s *Service) { s.board = b } }
func WithEvents(e EventSink) Option              { return func(s *Service) { s.events = e } }
func WithLogger(l *slog.Logger) Option           { return func(s *Service) { s.log = l } }
func WithClock(fn func() time.Time) Option       { return func(s *Service) { s.now = fn } }

func NewService(store account.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: account.NewKeyedMutex(),
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WarmLeaderboard loads every stored user's credits and streak into the
// board. An in-process board starts empty after a restart.
func (s *Service) WarmLeaderboard(ctx context.Context) (int, error) {
	if s.board == nil {
		return 0, nil
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := s.board.Update(ctx, u.Email, u.Credits, u.Streak); err != nil {
			return 0, fmt.Errorf("leaderboard %s: %w", u.Email, err)
		}
	}
	return len(users), nil
}

// ApplyResult folds one interview result into the user's stats and appends it
// to the attempt log in a single store write.
func (s *Service) ApplyResult(ctx context.Context, email, topic, difficulty string, r Result) (account.User, error) {
	email = account.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return account.User{}, err
	}
	a := ApplyResult(&u, topic, difficulty, r, s.now())
	if err := s.store.RecordAttempt(ctx, u, a); err != nil {
		return account.User{}, fmt.Errorf("record attempt: %w", err)
	}
	s.log.Info("stats updated",
		"email", u.Email, "topic", topic, "difficulty", difficulty,
		"credits", u.Credits, "streak", u.Streak, "accuracy", u.Accuracy, "interviews", u.InterviewsCompleted)

	s.publish(ctx, u)
	s.emit(ctx, syncx.TypeAttemptRecorded, u.Email, a)
	return u, nil
}

// Sync rebuilds the user's stats from the full attempt history and stores them.
func (s *Service) Sync(ctx context.Context, email string) (account.User, Summary, error) {
	email = account.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return account.User{}, Summary{}, err
	}
	history, err := s.store.ListAttempts(ctx, email)
	if err != nil {
		return account.User{}, Summary{}, fmt.Errorf("list attempts: %w", err)
	}
	sum := Recompute(&u, history)
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return account.User{}, Summary{}, fmt.Errorf("update user: %w", err)
	}
	s.log.Info("stats synced",
		"email", u.Email, "credits", u.Credits, "streak", u.Streak,
		"accuracy", u.Accuracy, "interviews", u.InterviewsCompleted, "best_streak", sum.BestStreak)

	s.publish(ctx, u)
	s.emit(ctx, syncx.TypeStatsSynced, u.Email, u)
	return u, sum, nil
}

type History struct {
	Attempts      []account.Attempt `json:"attempts"`
	CurrentStreak int               `json:"currentStreak"`
	BestStreak    int               `json:"bestStreak"`
}

func (s *Service) History(ctx context.Context, email string) (History, error) {
	list, err := s.store.ListAttempts(ctx, email)
	if err != nil {
		return History{}, err
	}
	if list == nil {
		list = []account.Attempt{}
	}
	cur, best := Streaks(list)
	return History{Attempts: list, CurrentStreak: cur, BestStreak: best}, nil
}

func (s *Service) publish(ctx context.Context, u account.User) {
	if s.board == nil {
		return
	}
	if err := s.board.Update(ctx, u.Email, u.Credits, u.Streak); err != nil {
		s.log.Warn("leaderboard update failed", "email", u.Email, "err", err)
	}
}

func (s *Service) emit(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, typ, key, payload); err != nil {
		s.log.Warn("event append failed", "type", typ, "key", key, "err", err)
	}
}
