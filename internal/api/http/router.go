package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-prep/internal/account"
	authmw "github.com/mind-engage/mindengage-prep/internal/auth/middleware"
	"github.com/mind-engage/mindengage-prep/internal/bank"
	"github.com/mind-engage/mindengage-prep/internal/grading"
	"github.com/mind-engage/mindengage-prep/internal/leaderboard"
	"github.com/mind-engage/mindengage-prep/internal/sampler"
	"github.com/mind-engage/mindengage-prep/internal/stats"
	"github.com/mind-engage/mindengage-prep/internal/storage"
)

type Deps struct {
	Bank     *bank.Bank
	Sampler  *sampler.Sampler
	Grader   *grading.Grader
	Accounts account.Store
	Stats    *stats.Service
	Board    leaderboard.Board
	Events   stats.EventSink
	Auth     *authmw.AuthService
	Assets   storage.AssetStore
	Log      *slog.Logger

	// StrictTokens turns on JWT validation and protects the stats routes.
	StrictTokens bool
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Grader == nil {
		d.Grader = grading.NewGrader()
	}
}

// Mount registers the API under /api plus health and static routes on r.
func Mount(r chi.Router, d Deps) {
	d.defaults()
	bearer := authmw.BearerMiddleware(d.Auth, d.StrictTokens)
	guard := func(next http.Handler) http.Handler { return next }
	if d.StrictTokens {
		guard = bearer
	}

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/test", StatusHandler(d.Now))
		ar.Post("/signup", SignupHandler(d.Accounts, d.Events, d.Now, d.Log))
		ar.Post("/login", LoginHandler(d.Accounts, d.Auth, d.Log))
		ar.With(bearer).Get("/verify-token", VerifyTokenHandler(d.Accounts, d.Log))

		ar.Get("/topics", TopicsHandler(d.Bank))
		ar.Get("/questions/{topic}/{difficulty}", QuestionsHandler(d.Sampler, d.Log))
		ar.Post("/questions/{topic}/{difficulty}/grade", GradeHandler(d.Bank, d.Grader, d.Log))

		ar.Get("/user-progress", UserProgressHandler(d.Accounts, d.Log))
		ar.Get("/leaderboard", LeaderboardHandler(d.Board, d.Log))

		ar.Group(func(pr chi.Router) {
			pr.Use(guard)
			pr.Post("/update-stats", UpdateStatsHandler(d.Stats, d.Log))
			pr.Get("/sync-user-stats", SyncUserStatsHandler(d.Stats, d.Log))
			pr.Get("/interviews", InterviewsHandler(d.Stats, d.Log))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", ReadyHandler(d.Ready, d.Log))

	MountAssets(r, d.Assets)
}

// GET /api/test
func StatusHandler(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "Server is working",
			"timestamp": now().Format(time.RFC3339),
		})
	}
}

// GET /readyz
func ReadyHandler(ready func(ctx context.Context) error, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				log.Warn("not ready", "err", err)
				writeMessage(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
