package leaderboard

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	CreditsKey = "leaderboard:credits"
	StreakKey  = "leaderboard:streak"
)

type RedisBoard struct {
	client *redis.Client
}

func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func keyFor(m Metric) string {
	if m == ByStreak {
		return StreakKey
	}
	return CreditsKey
}

func (b *RedisBoard) Update(ctx context.Context, email string, credits, streak int) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, CreditsKey, redis.Z{Score: float64(credits), Member: email})
		p.ZAdd(ctx, StreakKey, redis.Z{Score: float64(streak), Member: email})
		return nil
	})
	return err
}

func (b *RedisBoard) Top(ctx context.Context, m Metric, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	// ZREVRANGE: highest score first
	res, err := b.client.ZRevRangeWithScores(ctx, keyFor(m), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(res))
	for i, z := range res {
		member, _ := z.Member.(string)
		out[i] = Entry{Email: member, Score: int64(z.Score), Rank: int64(i) + 1}
	}
	return out, nil
}

func (b *RedisBoard) Rank(ctx context.Context, m Metric, email string) (int64, error) {
	r, err := b.client.ZRevRank(ctx, keyFor(m), email).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return r + 1, nil
}
