package account

import "context"

// Store owns users and their attempt logs. Progress is derived from the
// attempt log, so the two can never disagree.
type Store interface {
	CreateUser(ctx context.Context, u User) error // ErrConflict on duplicate email
	FindByEmail(ctx context.Context, email string) (User, error)
	// ListUsers returns every user ordered by email.
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) error
	AppendAttempt(ctx context.Context, email string, a Attempt) error

	// RecordAttempt writes the updated user and appends the attempt as one unit.
	RecordAttempt(ctx context.Context, u User, a Attempt) error

	// ListAttempts returns the user's attempts oldest first.
	ListAttempts(ctx context.Context, email string) ([]Attempt, error)
	GetProgress(ctx context.Context, email string) (map[string]ProgressEntry, error)
	AllProgress(ctx context.Context) (map[string]map[string]ProgressEntry, error)
}
