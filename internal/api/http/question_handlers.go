package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-prep/internal/bank"
	"github.com/mind-engage/mindengage-prep/internal/grading"
	"github.com/mind-engage/mindengage-prep/internal/sampler"
)

// GET /api/topics
func TopicsHandler(b *bank.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"topics": b.Topics()})
	}
}

// GET /api/questions/{topic}/{difficulty}
func QuestionsHandler(s *sampler.Sampler, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		d := bank.Difficulty(chi.URLParam(r, "difficulty"))
		out, err := s.Sample(topic, d)
		if err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		log.Debug("questions sampled", "topic", topic, "difficulty", d,
			"total", out.Total, "seed", out.Seed)
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/questions/{topic}/{difficulty}/grade {answers:[{id, answer}]}
func GradeHandler(b *bank.Bank, g *grading.Grader, log *slog.Logger) http.HandlerFunc {
	type req struct {
		Answers []grading.Answer `json:"answers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		d := bank.Difficulty(chi.URLParam(r, "difficulty"))
		var in req
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, log, r, err, http.StatusNotFound)
			return
		}
		if len(in.Answers) == 0 {
			writeMessage(w, http.StatusBadRequest, "answers are required")
			return
		}
		qs := make([]bank.Question, 0, len(in.Answers))
		responses := make([]string, 0, len(in.Answers))
		for _, a := range in.Answers {
			q, err := b.Find(topic, d, a.ID)
			if err != nil {
				writeError(w, log, r, err, http.StatusNotFound)
				return
			}
			qs = append(qs, q)
			responses = append(responses, a.Answer)
		}
		writeJSON(w, http.StatusOK, g.Grade(qs, responses))
	}
}
