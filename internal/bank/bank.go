package bank

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a topic/difficulty pair has no questions.
var ErrNotFound = errors.New("topic or difficulty not found")

// Kind is the answer format of a question. Values match the wire names the
// web client already understands.
type Kind string

const (
	KindSingleChoice Kind = "mcq"
	KindFreeText     Kind = "text"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Targets is the number of questions served per difficulty tier.
var Targets = map[Difficulty]int{
	Easy:   45,
	Medium: 30,
	Hard:   15,
}

// TargetFor returns the sample size for d. Unknown tiers get the hard tier's count.
func TargetFor(d Difficulty) int {
	if n, ok := Targets[d]; ok {
		return n
	}
	return Targets[Hard]
}

type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Prompt        string   `json:"question" yaml:"question"`
	Kind          Kind     `json:"type" yaml:"type"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// Clone returns a copy that shares no slices with q.
func (q Question) Clone() Question {
	c := q
	c.Options = append([]string{}, q.Options...)
	c.Keywords = append([]string{}, q.Keywords...)
	return c
}

// Bank maps topic -> difficulty -> questions. It is read-only once built;
// callers always receive copies.
type Bank struct {
	topics map[string]map[Difficulty][]Question
}

//go:embed default_bank.yaml
var defaultBank []byte

// Default returns the embedded bank, validated and padded to Targets.
func Default() (*Bank, error) {
	return build(defaultBank)
}

// LoadFile reads a YAML bank from path, validates and pads it.
func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bank: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML bank, validates and pads it.
func Load(r io.Reader) (*Bank, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bank: read: %w", err)
	}
	return build(raw)
}

func build(raw []byte) (*Bank, error) {
	var topics map[string]map[Difficulty][]Question
	if err := yaml.Unmarshal(raw, &topics); err != nil {
		return nil, fmt.Errorf("bank: parse yaml: %w", err)
	}
	b := &Bank{topics: topics}
	if b.topics == nil {
		b.topics = map[string]map[Difficulty][]Question{}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.Pad()
	return b, nil
}

// New builds a bank from an in-memory map without padding. Mostly useful in tests.
func New(topics map[string]map[Difficulty][]Question) *Bank {
	b := &Bank{topics: map[string]map[Difficulty][]Question{}}
	for t, byDiff := range topics {
		b.topics[t] = map[Difficulty][]Question{}
		for d, qs := range byDiff {
			b.topics[t][d] = cloneAll(qs)
		}
	}
	return b
}

// Validate checks every question against its kind.
func (b *Bank) Validate() error {
	for topic, byDiff := range b.topics {
		for diff, qs := range byDiff {
			for _, q := range qs {
				if err := validateQuestion(q); err != nil {
					return fmt.Errorf("bank: %s/%s question %d: %w", topic, diff, q.ID, err)
				}
			}
		}
	}
	return nil
}

func validateQuestion(q Question) error {
	if q.Prompt == "" {
		return errors.New("empty prompt")
	}
	switch q.Kind {
	case KindSingleChoice:
		if len(q.Options) == 0 {
			return errors.New("single-choice question without options")
		}
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				return nil
			}
		}
		return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
	case KindFreeText:
		if len(q.Options) != 0 {
			return errors.New("free-text question with options")
		}
		return nil
	default:
		return fmt.Errorf("unknown question type %q", q.Kind)
	}
}

// Pad grows every slice shorter than its tier target by cycling through the
// authored questions. Copies get ids above the largest id in the bank so ids
// stay unique.
func (b *Bank) Pad() {
	next := b.maxID() + 1
	for _, topic := range b.sortedTopics() {
		byDiff := b.topics[topic]
		for _, diff := range sortedDifficulties(byDiff) {
			qs := byDiff[diff]
			authored := len(qs)
			if authored == 0 {
				continue
			}
			target := TargetFor(diff)
			for i := authored; i < target; i++ {
				q := qs[i%authored].Clone()
				q.ID = next
				next++
				qs = append(qs, q)
			}
			byDiff[diff] = qs
		}
	}
}

// Slice returns a deep copy of the questions for topic/difficulty.
func (b *Bank) Slice(topic string, d Difficulty) ([]Question, error) {
	qs := b.topics[topic][d]
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", topic, d, ErrNotFound)
	}
	return cloneAll(qs), nil
}

// Find looks up a single question by id inside topic/difficulty.
func (b *Bank) Find(topic string, d Difficulty, id int) (Question, error) {
	for _, q := range b.topics[topic][d] {
		if q.ID == id {
			return q.Clone(), nil
		}
	}
	return Question{}, fmt.Errorf("%s/%s question %d: %w", topic, d, id, ErrNotFound)
}

type TopicSummary struct {
	Topic  string             `json:"topic"`
	Counts map[Difficulty]int `json:"counts"`
}

// Topics lists every topic with the number of questions per tier.
func (b *Bank) Topics() []TopicSummary {
	out := make([]TopicSummary, 0, len(b.topics))
	for _, t := range b.sortedTopics() {
		s := TopicSummary{Topic: t, Counts: map[Difficulty]int{}}
		for d, qs := range b.topics[t] {
			s.Counts[d] = len(qs)
		}
		out = append(out, s)
	}
	return out
}

func (b *Bank) maxID() int {
	max := 0
	for _, byDiff := range b.topics {
		for _, qs := range byDiff {
			for _, q := range qs {
				if q.ID > max {
					max = q.ID
				}
			}
		}
	}
	return max
}

func (b *Bank) sortedTopics() []string {
	out := make([]string, 0, len(b.topics))
	for t := range b.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func sortedDifficulties(m map[Difficulty][]Question) []Difficulty {
	out := make([]Difficulty, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func cloneAll(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
