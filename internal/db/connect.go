package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // driver: mysql
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:prep.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/prep?sslmode=disable"
		}
	case DriverMySQL:
		drvName = "mysql"
		if dsn == "" {
			dsn = "root@tcp(localhost:3306)/prep?charset=utf8mb4"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	tunePool(driver, db)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: schema: %w", err)
	}
	return db, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil and rolling
// back otherwise (including on panic).
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("db: commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}

// Rebind rewrites $1-style placeholders for drivers that only know "?".
// Queries must reference their arguments in ascending order.
func Rebind(driver Driver, query string) string {
	if driver != DriverMySQL {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
		i = j - 1
	}
	return b.String()
}

func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		// single writer: keep the pool tiny to avoid busy errors
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var stmts []string
	switch driver {
	case DriverSQLite:
		stmts = schemaSQLite
	case DriverPostgres:
		stmts = schemaPostgres
	case DriverMySQL:
		stmts = schemaMySQL
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

var schemaSQLite = []string{
	`PRAGMA foreign_keys=ON`,
	`CREATE TABLE IF NOT EXISTS users (
  email TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  credits INTEGER NOT NULL DEFAULT 0,
  streak INTEGER NOT NULL DEFAULT 0,
  accuracy REAL NOT NULL DEFAULT 0,
  interviews_completed INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS attempts (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  score REAL NOT NULL DEFAULT 0,
  credits_earned INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS attempts_email_idx ON attempts(email, seq)`,
	`CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  event_type TEXT NOT NULL,
  event_key TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS users (
  email TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  credits INTEGER NOT NULL DEFAULT 0,
  streak INTEGER NOT NULL DEFAULT 0,
  accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
  interviews_completed INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS attempts (
  seq BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  credits_earned INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS attempts_email_idx ON attempts(email, seq)`,
	`CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  event_type TEXT NOT NULL,
  event_key TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
}

var schemaMySQL = []string{
	`CREATE TABLE IF NOT EXISTS users (
  email VARCHAR(255) PRIMARY KEY,
  password_hash VARCHAR(255) NOT NULL,
  full_name VARCHAR(255) NOT NULL,
  credits INT NOT NULL DEFAULT 0,
  streak INT NOT NULL DEFAULT 0,
  accuracy DOUBLE NOT NULL DEFAULT 0,
  interviews_completed INT NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS attempts (
  seq BIGINT AUTO_INCREMENT PRIMARY KEY,
  id VARCHAR(64) NOT NULL UNIQUE,
  email VARCHAR(255) NOT NULL,
  topic VARCHAR(128) NOT NULL,
  difficulty VARCHAR(32) NOT NULL,
  score DOUBLE NOT NULL DEFAULT 0,
  credits_earned INT NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  INDEX attempts_email_idx (email, seq),
  FOREIGN KEY (email) REFERENCES users(email) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS event_log (
  seq BIGINT AUTO_INCREMENT PRIMARY KEY,
  site_id VARCHAR(64) NOT NULL DEFAULT 'local',
  event_type VARCHAR(64) NOT NULL,
  event_key VARCHAR(255) NOT NULL,
  payload TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
}
