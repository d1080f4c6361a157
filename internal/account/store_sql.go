package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/db"
)

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(h *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: h, driver: driver}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) q(query string) string { return db.Rebind(s.driver, query) }

func (s *SQLStore) CreateUser(ctx context.Context, u User) error {
	u.Email = NormalizeEmail(u.Email)
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM users WHERE email=$1`), u.Email).Scan(&one)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO users
			(email,password_hash,full_name,credits,streak,accuracy,interviews_completed,created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`),
			u.Email, u.PasswordHash, u.FullName, u.Credits, u.Streak, u.Accuracy, u.InterviewsCompleted,
			u.CreatedAt.UnixMilli())
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	})
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.findByEmail(ctx, s.db, email)
}

func (s *SQLStore) findByEmail(ctx context.Context, qr querier, email string) (User, error) {
	row := qr.QueryRowContext(ctx, s.q(`SELECT email,password_hash,full_name,credits,streak,accuracy,interviews_completed,created_at
		FROM users WHERE email=$1`), NormalizeEmail(email))
	var u User
	var created int64
	if err := row.Scan(&u.Email, &u.PasswordHash, &u.FullName, &u.Credits, &u.Streak, &u.Accuracy,
		&u.InterviewsCompleted, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email,password_hash,full_name,credits,streak,accuracy,interviews_completed,created_at
		FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		var created int64
		if err := rows.Scan(&u.Email, &u.PasswordHash, &u.FullName, &u.Credits, &u.Streak, &u.Accuracy,
			&u.InterviewsCompleted, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateUser(ctx context.Context, u User) error {
	return s.updateUser(ctx, s.db, u)
}

func (s *SQLStore) updateUser(ctx context.Context, qr querier, u User) error {
	res, err := qr.ExecContext(ctx, s.q(`UPDATE users
		SET full_name=$1, credits=$2, streak=$3, accuracy=$4, interviews_completed=$5
		WHERE email=$6`),
		u.FullName, u.Credits, u.Streak, u.Accuracy, u.InterviewsCompleted, NormalizeEmail(u.Email))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 for rows matched but unchanged; tell that apart from a missing user.
		if s.driver == db.DriverMySQL {
			if _, ferr := s.findByEmail(ctx, qr, u.Email); ferr == nil {
				return nil
			}
		}
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AppendAttempt(ctx context.Context, email string, a Attempt) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.findByEmail(ctx, tx, email); err != nil {
			return err
		}
		return s.insertAttempt(ctx, tx, email, a)
	})
}

func (s *SQLStore) insertAttempt(ctx context.Context, qr querier, email string, a Attempt) error {
	_, err := qr.ExecContext(ctx, s.q(`INSERT INTO attempts
		(id,email,topic,difficulty,score,credits_earned,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`),
		a.ID, NormalizeEmail(email), a.Topic, a.Difficulty, a.Score, a.CreditsEarned, a.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *SQLStore) RecordAttempt(ctx context.Context, u User, a Attempt) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.updateUser(ctx, tx, u); err != nil {
			return err
		}
		return s.insertAttempt(ctx, tx, u.Email, a)
	})
}

func (s *SQLStore) ListAttempts(ctx context.Context, email string) ([]Attempt, error) {
	email = NormalizeEmail(email)
	if _, err := s.FindByEmail(ctx, email); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id,topic,difficulty,score,credits_earned,created_at
		FROM attempts WHERE email=$1 ORDER BY seq`), email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetProgress(ctx context.Context, email string) (map[string]ProgressEntry, error) {
	list, err := s.ListAttempts(ctx, email)
	if err != nil {
		return nil, err
	}
	return BuildProgress(list), nil
}

func (s *SQLStore) AllProgress(ctx context.Context) (map[string]map[string]ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email,id,topic,difficulty,score,credits_earned,created_at
		FROM attempts ORDER BY email, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byUser := map[string][]Attempt{}
	for rows.Next() {
		var email string
		var a Attempt
		var ts int64
		if err := rows.Scan(&email, &a.ID, &a.Topic, &a.Difficulty, &a.Score, &a.CreditsEarned, &ts); err != nil {
			return nil, err
		}
		a.Timestamp = time.UnixMilli(ts).UTC()
		byUser[email] = append(byUser[email], a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]map[string]ProgressEntry, len(byUser))
	for email, list := range byUser {
		out[email] = BuildProgress(list)
	}
	return out, nil
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var ts int64
	if err := rows.Scan(&a.ID, &a.Topic, &a.Difficulty, &a.Score, &a.CreditsEarned, &ts); err != nil {
		return Attempt{}, err
	}
	a.Timestamp = time.UnixMilli(ts).UTC()
	return a, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "sqlstate 23505") || // postgres
		strings.Contains(msg, "duplicate entry") // mysql
}
