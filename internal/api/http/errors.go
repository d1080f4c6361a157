package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mind-engage/mindengage-prep/internal/account"
	"github.com/mind-engage/mindengage-prep/internal/bank"
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct{ Msg string }

func (e ValidationError) Error() string { return e.Msg }

func badRequest(msg string) error { return ValidationError{Msg: msg} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps domain errors onto status codes. notFound overrides the
// status used for unknown users and topics (401 on the auth endpoints).
func writeError(w http.ResponseWriter, log *slog.Logger, r *http.Request, err error, notFound int) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, account.ErrConflict):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, account.ErrNotFound):
		writeMessage(w, notFound, "User not found")
	case errors.Is(err, bank.ErrNotFound):
		writeMessage(w, notFound, "Domain or difficulty not found")
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into v; any failure is a ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return badRequest("Invalid request data")
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return badRequest("Invalid request data")
	}
	return nil
}
