package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/account"
	"github.com/mind-engage/mindengage-prep/internal/auth"
	authmw "github.com/mind-engage/mindengage-prep/internal/auth/middleware"
	"github.com/mind-engage/mindengage-prep/internal/stats"
	syncx "github.com/mind-engage/mindengage-prep/internal/sync"
)

// POST /api/signup {email, password, fullName}
func SignupHandler(store account.Store, events stats.EventSink, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	type req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in req
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		email := account.NormalizeEmail(in.Email)
		name := strings.TrimSpace(in.FullName)
		if email == "" || in.Password == "" || name == "" {
			writeMessage(w, http.StatusBadRequest, "All fields are required")
			return
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		u := account.User{
			Email:        email,
			PasswordHash: hash,
			FullName:     name,
			CreatedAt:    now().UTC(),
		}
		if err := store.CreateUser(r.Context(), u); err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		log.Info("user created", "email", email)
		emit(r.Context(), events, log, syncx.TypeUserCreated, email, u)
		writeMessage(w, http.StatusCreated, "User created successfully")
	}
}

// POST /api/login {email, password}
func LoginHandler(store account.Store, a *authmw.AuthService, log *slog.Logger) http.HandlerFunc {
	type req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in req
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, log, r, err, http.StatusUnauthorized)
			return
		}
		if strings.TrimSpace(in.Email) == "" || in.Password == "" {
			writeMessage(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		u, err := store.FindByEmail(r.Context(), in.Email)
		if errors.Is(err, account.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			writeError(w, log, r, err, http.StatusUnauthorized)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		tok, err := a.IssueJWT(u.Email)
		if err != nil {
			writeError(w, log, r, err, http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"token":   tok,
			"user":    u,
		})
	}
}

// GET /api/verify-token?email=
func VerifyTokenHandler(store account.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := authmw.SubjectFromContext(r.Context())
		if email == "" {
			writeMessage(w, http.StatusUnauthorized, "User not found")
			return
		}
		u, err := store.FindByEmail(r.Context(), email)
		if err != nil {
			writeError(w, log, r, err, http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
	}
}

func emit(ctx context.Context, sink stats.EventSink, log *slog.Logger, typ, key string, payload any) {
	if sink == nil {
		return
	}
	if err := sink.Emit(ctx, typ, key, payload); err != nil {
		log.Warn("event append failed", "type", typ, "key", key, "err", err)
	}
}
