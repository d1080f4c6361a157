// Package stats maintains a user's aggregate practice statistics.
//
// Two update paths exist and are kept distinct: ApplyResult folds one new
// result into the stored aggregates (float running mean for accuracy), while
// Recompute rebuilds every aggregate from the attempt log (rounded mean).
package stats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-prep/internal/account"
	"github.com/mind-engage/mindengage-prep/internal/grading"
)

// StreakThreshold is the minimum score that extends a streak.
const StreakThreshold = 70

// MaxCreditsPerInterview caps a single result at what a perfect interview earns.
const MaxCreditsPerInterview = grading.CreditsPerInterview

// MaxCredits is the largest credit total a user can hold; it fits the
// 32-bit credits columns of every supported database.
const MaxCredits = math.MaxInt32

type Result struct {
	Score         float64 `json:"accuracy"`
	CreditsEarned int     `json:"creditsEarned"`
}

type Summary struct {
	BestStreak int `json:"bestStreak"`
}

// ApplyResult mutates u in place and returns the attempt to append to its log.
func ApplyResult(u *account.User, topic, difficulty string, r Result, at time.Time) account.Attempt {
	r = r.clamped()
	before := u.InterviewsCompleted
	after := before + 1

	u.Credits = addCredits(u.Credits, r.CreditsEarned)
	u.InterviewsCompleted = after
	if r.Score >= StreakThreshold {
		u.Streak++
	} else {
		u.Streak = 0
	}
	if after > 1 {
		u.Accuracy = (u.Accuracy*float64(before) + r.Score) / float64(after)
	} else {
		u.Accuracy = r.Score
	}

	return account.Attempt{
		ID:            uuid.NewString(),
		Topic:         topic,
		Difficulty:    difficulty,
		Score:         r.Score,
		CreditsEarned: r.CreditsEarned,
		Timestamp:     at.UTC(),
	}
}

// Recompute overwrites credits, interviews, accuracy and streak of u from the
// chronological attempt history.
func Recompute(u *account.User, history []account.Attempt) Summary {
	credits := 0
	sum := 0.0
	for _, a := range history {
		credits = addCredits(credits, a.CreditsEarned)
		sum += a.Score
	}
	u.Credits = credits
	u.InterviewsCompleted = len(history)
	if len(history) > 0 {
		// half-to-even, the rounding the stored history was produced with
		u.Accuracy = math.RoundToEven(sum / float64(len(history)))
	} else {
		u.Accuracy = 0
	}
	current, best := Streaks(history)
	u.Streak = current
	return Summary{BestStreak: best}
}

// Streaks returns the run of qualifying attempts ending at the last one and
// the longest such run.
func Streaks(history []account.Attempt) (current, best int) {
	for _, a := range history {
		if a.Score >= StreakThreshold {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return current, best
}

// ResultFromFields reads a loosely typed results object. Missing or
// malformed values count as zero.
func ResultFromFields(m map[string]any) Result {
	r := Result{
		Score:         number(m["accuracy"]),
		CreditsEarned: int(math.Round(clampFloat(number(m["creditsEarned"]), 0, MaxCreditsPerInterview))),
	}
	return r.clamped()
}

func clampFloat(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}

// addCredits saturates at MaxCredits and never drops below zero.
func addCredits(total, earned int) int {
	if earned < 0 {
		earned = 0
	}
	if total < 0 {
		total = 0
	}
	if earned > MaxCredits-total {
		return MaxCredits
	}
	return total + earned
}

func (r Result) clamped() Result {
	if r.Score < 0 || math.IsNaN(r.Score) {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	if r.CreditsEarned < 0 {
		r.CreditsEarned = 0
	}
	if r.CreditsEarned > MaxCreditsPerInterview {
		r.CreditsEarned = MaxCreditsPerInterview
	}
	return r
}

func number(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
