package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mindengage-prep/internal/api/http"
	"github.com/mind-engage/mindengage-prep/internal/account"
	auth "github.com/mind-engage/mindengage-prep/internal/auth/middleware"
	"github.com/mind-engage/mindengage-prep/internal/bank"
	"github.com/mind-engage/mindengage-prep/internal/config"
	"github.com/mind-engage/mindengage-prep/internal/db"
	"github.com/mind-engage/mindengage-prep/internal/grading"
	"github.com/mind-engage/mindengage-prep/internal/leaderboard"
	"github.com/mind-engage/mindengage-prep/internal/sampler"
	"github.com/mind-engage/mindengage-prep/internal/stats"
	"github.com/mind-engage/mindengage-prep/internal/storage"
	syncx "github.com/mind-engage/mindengage-prep/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Question bank ---
	qb, err := loadBank(cfg.BankFile)
	if err != nil {
		logger.Error("question bank", "error", err)
		os.Exit(1)
	}

	// --- Stores ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		accounts account.Store
		events   stats.EventSink
		dbh      *sql.DB
	)
	if cfg.DBDriver == "memory" {
		accounts = account.NewMemoryStore()
	} else {
		dbh, err = db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "error", err)
			os.Exit(1)
		}
		defer dbh.Close()
		accounts = account.NewSQLStore(dbh, db.Driver(cfg.DBDriver))
		events = syncx.NewEventRepo(dbh, db.Driver(cfg.DBDriver), "")
	}

	// --- Leaderboard ---
	var (
		board leaderboard.Board = leaderboard.NewMemoryBoard()
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		board = leaderboard.NewRedisBoard(rdb)
	}

	statsSvc := stats.NewService(accounts,
		stats.WithLeaderboard(board),
		stats.WithEvents(events),
		stats.WithLogger(logger),
	)
	if rdb == nil {
		if n, err := statsSvc.WarmLeaderboard(ctx); err != nil {
			logger.Warn("leaderboard warm-up failed", "error", err)
		} else {
			logger.Info("leaderboard warmed from store", "users", n)
		}
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Bank:         qb,
		Sampler:      sampler.New(qb, sampler.WithQuantum(cfg.SampleQuantum)),
		Grader:       grading.NewGrader(),
		Accounts:     accounts,
		Stats:        statsSvc,
		Board:        board,
		Events:       events,
		Auth:         auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL),
		Assets:       storage.NewFSStore(cfg.AssetsPath),
		Log:          logger,
		StrictTokens: cfg.StrictTokens,
		Ready: func(ctx context.Context) error {
			if dbh != nil {
				if err := dbh.PingContext(ctx); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	// --- Server ---
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		sctx, scancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer scancel()
		logger.Info("shutting down server")
		if err := server.Shutdown(sctx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("listening",
		"addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver,
		"redis", cfg.RedisAddr != "", "strict_tokens", cfg.StrictTokens)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}

func loadBank(path string) (*bank.Bank, error) {
	if path == "" {
		return bank.Default()
	}
	return bank.LoadFile(path)
}
