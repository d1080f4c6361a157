package bank_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-prep/internal/bank"
)

func TestDefaultBankIsPaddedToTargets(t *testing.T) {
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("default bank: %v", err)
	}
	topics := b.Topics()
	if len(topics) != 6 {
		t.Fatalf("expected 6 topics, got %d", len(topics))
	}
	for _, ts := range topics {
		for d, want := range bank.Targets {
			if got := ts.Counts[d]; got != want {
				t.Errorf("%s/%s: expected %d questions, got %d", ts.Topic, d, want, got)
			}
		}
	}
}

func TestPaddedIDsAreUnique(t *testing.T) {
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("default bank: %v", err)
	}
	seen := map[int]string{}
	for _, ts := range b.Topics() {
		for d := range ts.Counts {
			qs, err := b.Slice(ts.Topic, d)
			if err != nil {
				t.Fatalf("slice %s/%s: %v", ts.Topic, d, err)
			}
			for _, q := range qs {
				if prev, dup := seen[q.ID]; dup {
					t.Fatalf("id %d used by %s and %s/%s", q.ID, prev, ts.Topic, d)
				}
				seen[q.ID] = ts.Topic + "/" + string(d)
			}
		}
	}
}

func TestPadCyclesAuthoredQuestions(t *testing.T) {
	b := bank.New(map[string]map[bank.Difficulty][]bank.Question{
		"dsa": {
			bank.Hard: {
				{ID: 1, Prompt: "A", Kind: bank.KindFreeText},
				{ID: 2, Prompt: "B", Kind: bank.KindFreeText},
			},
		},
	})
	b.Pad()

	qs, err := b.Slice("dsa", bank.Hard)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(qs) != 15 {
		t.Fatalf("expected 15 questions, got %d", len(qs))
	}
	if qs[2].Prompt != "A" || qs[3].Prompt != "B" {
		t.Errorf("expected cycling copies, got %q %q", qs[2].Prompt, qs[3].Prompt)
	}
	if qs[2].ID != 3 {
		t.Errorf("expected first padded id 3, got %d", qs[2].ID)
	}
}

func TestSliceReturnsIndependentCopy(t *testing.T) {
	b := bank.New(map[string]map[bank.Difficulty][]bank.Question{
		"web": {bank.Easy: {{ID: 1, Prompt: "Q", Kind: bank.KindSingleChoice, Options: []string{"a", "b"}, CorrectAnswer: "a"}}},
	})
	qs, _ := b.Slice("web", bank.Easy)
	qs[0].Options[0] = "mutated"

	again, _ := b.Slice("web", bank.Easy)
	if again[0].Options[0] != "a" {
		t.Errorf("bank was mutated through a returned slice: %v", again[0].Options)
	}
}

func TestSliceUnknown(t *testing.T) {
	b, _ := bank.Default()
	cases := []struct{ topic, diff string }{
		{"unknown-topic", "easy"},
		{"dsa", "impossible"},
	}
	for _, c := range cases {
		_, err := b.Slice(c.topic, bank.Difficulty(c.diff))
		if !errors.Is(err, bank.ErrNotFound) {
			t.Errorf("%s/%s: expected ErrNotFound, got %v", c.topic, c.diff, err)
		}
	}
}

func TestLoadRejectsCorrectAnswerOutsideOptions(t *testing.T) {
	src := `
dsa:
  easy:
    - id: 1
      question: Pick one
      type: mcq
      options: [a, b]
      correct_answer: c
`
	_, err := bank.Load(strings.NewReader(src))
	if err == nil || !strings.Contains(err.Error(), "not one of the options") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	src := `
dsa:
  easy:
    - id: 1
      question: Pick one
      type: essay
`
	if _, err := bank.Load(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestFind(t *testing.T) {
	b, _ := bank.Default()
	q, err := b.Find("dsa", bank.Easy, 17)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if q.CorrectAnswer != "O(log n)" {
		t.Errorf("unexpected question %+v", q)
	}
	if _, err := b.Find("dsa", bank.Easy, 9999); !errors.Is(err, bank.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTargetForUnknownDefaultsToHard(t *testing.T) {
	if got := bank.TargetFor("legendary"); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
}
