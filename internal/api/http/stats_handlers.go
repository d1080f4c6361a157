package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-prep/internal/account"
	authmw "github.com/mind-engage/mindengage-prep/internal/auth/middleware"
	"github.com/mind-engage/mindengage-prep/internal/leaderboard"
	"github.com/mind-engage/mindengage-prep/internal/stats"
)

// requestEmail prefers the email query parameter and falls back to the
// authenticated subject.
func requestEmail(r *http.Request) string {
	if e := account.NormalizeEmail(r.URL.Query().Get("email")); e != "" {
		return e
	}
	return authmw.SubjectFromContext(r.Context())
}

// GET /api/user-progress
func UserProgressHandler(store account.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.AllProgress(r.Context())
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// POST /api/update-stats?email= {topic|domain, difficulty, results:{accuracy, creditsEarned}}
func UpdateStatsHandler(svc *stats.Service, log *slog.Logger) http.HandlerFunc {
	type req struct {
		Topic      string         `json:"topic"`
		Domain     string         `json:"domain"`
		Difficulty string         `json:"difficulty"`
		Results    map[string]any `json:"results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		email := requestEmail(r)
		if email == "" {
			writeMessage(w, http.StatusBadRequest, "Email is required")
			return
		}
		var in req
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		topic := strings.TrimSpace(in.Topic)
		if topic == "" {
			topic = strings.TrimSpace(in.Domain)
		}
		if topic == "" {
			writeMessage(w, http.StatusBadRequest, "Topic is required")
			return
		}
		u, err := svc.ApplyResult(r.Context(), email, topic, in.Difficulty, stats.ResultFromFields(in.Results))
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
	}
}

// GET /api/sync-user-stats?email=
func SyncUserStatsHandler(svc *stats.Service, log *slog.Logger) http.HandlerFunc {
	type out struct {
		account.User
		BestStreak int `json:"bestStreak"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		email := requestEmail(r)
		if email == "" {
			writeMessage(w, http.StatusBadRequest, "Email is required")
			return
		}
		u, sum, err := svc.Sync(r.Context(), email)
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, out{User: u, BestStreak: sum.BestStreak})
	}
}

// GET /api/interviews?email=
func InterviewsHandler(svc *stats.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := requestEmail(r)
		if email == "" {
			writeMessage(w, http.StatusBadRequest, "Email is required")
			return
		}
		h, err := svc.History(r.Context(), email)
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

// GET /api/leaderboard?by=credits|streak&limit=10
func LeaderboardHandler(board leaderboard.Board, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := leaderboard.ParseMetric(r.URL.Query().Get("by"))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				writeMessage(w, http.StatusBadRequest, "limit must be between 1 and 100")
				return
			}
			limit = n
		}
		entries, err := board.Top(r.Context(), m, limit)
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		out := map[string]any{"by": m, "entries": entries}
		if email := account.NormalizeEmail(r.URL.Query().Get("email")); email != "" {
			rank, err := board.Rank(r.Context(), m, email)
			if err != nil {
				writeError(w, log, r, err, http.StatusNotFound)
				return
			}
			out["email"] = email
			out["rank"] = rank
		}
		writeJSON(w, http.StatusOK, out)
	}
}
