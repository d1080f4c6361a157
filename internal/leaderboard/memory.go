package leaderboard

import (
	"context"
	"sort"
	"sync"
)

// MemoryBoard is the in-process Board used when no Redis address is configured.
// Ties are broken by email descending, matching ZREVRANGE.
type MemoryBoard struct {
	mu     sync.RWMutex
	scores map[Metric]map[string]int64
}

func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{scores: map[Metric]map[string]int64{
		ByCredits: {},
		ByStreak:  {},
	}}
}

func (b *MemoryBoard) Update(_ context.Context, email string, credits, streak int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores[ByCredits][email] = int64(credits)
	b.scores[ByStreak][email] = int64(streak)
	return nil
}

func (b *MemoryBoard) ranked(m Metric) []Entry {
	set := b.scores[m]
	if set == nil {
		set = b.scores[ByCredits]
	}
	out := make([]Entry, 0, len(set))
	for email, s := range set {
		out = append(out, Entry{Email: email, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Email > out[j].Email
	})
	for i := range out {
		out[i].Rank = int64(i) + 1
	}
	return out
}

func (b *MemoryBoard) Top(_ context.Context, m Metric, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	all := b.ranked(m)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (b *MemoryBoard) Rank(_ context.Context, m Metric, email string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.ranked(m) {
		if e.Email == email {
			return e.Rank, nil
		}
	}
	return 0, nil
}
