package grading

import (
	"fmt"
	"math"
	"strings"

	"github.com/mind-engage/mindengage-prep/internal/bank"
)

// KeywordPassRatio is the share of a free-text question's keywords an answer
// must mention to count as correct.
const KeywordPassRatio = 0.5

// CreditsPerInterview is awarded for a perfect interview; partial results earn
// a proportional share.
const CreditsPerInterview = 200

type Answer struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}

// Item is the outcome of grading a single response.
type Item struct {
	ID              int      `json:"id"`
	Correct         bool     `json:"correct"`
	CorrectAnswer   string   `json:"correct_answer,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Feedback        []string `json:"feedback,omitempty"`
}

type Outcome struct {
	Total         int    `json:"total"`
	Correct       int    `json:"correct"`
	Accuracy      int    `json:"accuracy"`
	CreditsEarned int    `json:"creditsEarned"`
	Items         []Item `json:"items"`
}

// Strategy grades a single question.
type Strategy interface {
	Grade(q bank.Question, response string) Item
}

// Grader routes by question kind to the correct Strategy.
type Grader struct {
	strategies map[bank.Kind]Strategy
}

func NewGrader() *Grader {
	return &Grader{
		strategies: map[bank.Kind]Strategy{
			bank.KindSingleChoice: singleChoiceStrategy{},
			bank.KindFreeText:     keywordStrategy{ratio: KeywordPassRatio},
		},
	}
}

// Grade scores responses against their questions. questions[i] pairs with
// responses[i]; a missing response is graded as blank.
func (g *Grader) Grade(questions []bank.Question, responses []string) Outcome {
	out := Outcome{Total: len(questions), Items: make([]Item, 0, len(questions))}
	for i, q := range questions {
		resp := ""
		if i < len(responses) {
			resp = responses[i]
		}
		var it Item
		if s, ok := g.strategies[q.Kind]; ok {
			it = s.Grade(q, resp)
		} else {
			it = Item{Feedback: []string{fmt.Sprintf("no strategy for type %q", q.Kind)}}
		}
		it.ID = q.ID
		if it.Correct {
			out.Correct++
		}
		out.Items = append(out.Items, it)
	}
	if out.Total > 0 {
		ratio := float64(out.Correct) / float64(out.Total)
		out.Accuracy = roundHalfUp(ratio * 100)
		out.CreditsEarned = roundHalfUp(ratio * CreditsPerInterview)
	}
	return out
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q bank.Question, response string) Item {
	it := Item{CorrectAnswer: q.CorrectAnswer}
	if response == q.CorrectAnswer {
		it.Correct = true
	}
	return it
}

type keywordStrategy struct{ ratio float64 }

func (s keywordStrategy) Grade(q bank.Question, response string) Item {
	it := Item{}
	text := normalize(response)
	if text == "" {
		it.Feedback = []string{"empty answer"}
		return it
	}
	if len(q.Keywords) == 0 {
		it.Correct = true
		return it
	}
	for _, k := range q.Keywords {
		nk := normalize(k)
		if nk != "" && strings.Contains(text, nk) {
			it.MatchedKeywords = append(it.MatchedKeywords, k)
		}
	}
	found := len(it.MatchedKeywords)
	it.Correct = float64(found) >= float64(len(q.Keywords))*s.ratio
	it.Feedback = []string{fmt.Sprintf("keyword hits: %d/%d", found, len(q.Keywords))}
	return it
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
