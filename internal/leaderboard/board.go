package leaderboard

import (
	"context"
	"fmt"
)

type Metric string

const (
	ByCredits Metric = "credits"
	ByStreak  Metric = "streak"
)

// ParseMetric maps a query value onto a Metric; empty means credits.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", ByCredits:
		return ByCredits, nil
	case ByStreak:
		return ByStreak, nil
	default:
		return "", fmt.Errorf("unknown leaderboard metric %q", s)
	}
}

type Entry struct {
	Email string `json:"email"`
	Score int64  `json:"score"`
	Rank  int64  `json:"rank"`
}

// Board ranks users by their current credits and streak.
// Rank is 1-based; 0 means the user is not on the board.
type Board interface {
	Update(ctx context.Context, email string, credits, streak int) error
	Top(ctx context.Context, m Metric, limit int) ([]Entry, error)
	Rank(ctx context.Context, m Metric, email string) (int64, error)
}
