package account

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("user already exists")
)

// User is the account record. PasswordHash never leaves the server.
type User struct {
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	FullName            string    `json:"fullName"`
	Credits             int       `json:"credits"`
	Streak              int       `json:"streak"`
	Accuracy            float64   `json:"accuracy"`
	CreatedAt           time.Time `json:"created_at"`
	InterviewsCompleted int       `json:"interviewsCompleted"`
}

// Attempt is one submitted interview. Attempts are append-only.
type Attempt struct {
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	Difficulty    string    `json:"difficulty"`
	Score         float64   `json:"score"`
	CreditsEarned int       `json:"creditsEarned"`
	Timestamp     time.Time `json:"timestamp"`
}

type AttemptSummary struct {
	Difficulty string    `json:"difficulty"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProgressEntry is the per-topic view of a user's attempts.
type ProgressEntry struct {
	Completed  int              `json:"completed"`
	Interviews []AttemptSummary `json:"interviews"`
}

// BuildProgress groups a chronological attempt log by topic.
func BuildProgress(attempts []Attempt) map[string]ProgressEntry {
	out := map[string]ProgressEntry{}
	for _, a := range attempts {
		e := out[a.Topic]
		e.Completed++
		e.Interviews = append(e.Interviews, AttemptSummary{
			Difficulty: a.Difficulty,
			Score:      a.Score,
			Timestamp:  a.Timestamp,
		})
		out[a.Topic] = e
	}
	return out
}

// NormalizeEmail is applied to every email before it is used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
