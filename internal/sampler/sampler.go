package sampler

import (
	"math/rand/v2"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/bank"
)

// Source is the read side of the question bank the sampler draws from.
type Source interface {
	Slice(topic string, d bank.Difficulty) ([]bank.Question, error)
}

// Sample is one randomized question set, with counts for the client and the
// seed that produced it so a set can be reproduced when debugging.
type Sample struct {
	Questions    []bank.Question `json:"questions"`
	Total        int             `json:"total_questions"`
	SingleChoice int             `json:"mcq_count"`
	FreeText     int             `json:"text_count"`
	Seed         int64           `json:"randomization_timestamp"`
}

type Sampler struct {
	src     Source
	now     func() time.Time
	quantum time.Duration
}

type Option func(*Sampler)

// WithClock overrides the wall clock used to derive seeds.
func WithClock(now func() time.Time) Option { return func(s *Sampler) { s.now = now } }

// WithQuantum sets the seed granularity. Calls within the same quantum return
// identical samples.
func WithQuantum(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.quantum = d
		}
	}
}

func New(src Source, opts ...Option) *Sampler {
	s := &Sampler{src: src, now: time.Now, quantum: time.Second}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SeedAt maps a wall-clock instant to the seed of its quantum. With the default
// one-second quantum this is the Unix timestamp in seconds.
func (s *Sampler) SeedAt(t time.Time) int64 {
	return t.UnixNano() / int64(s.quantum)
}

// Sample draws a question set seeded from the current time quantum.
func (s *Sampler) Sample(topic string, d bank.Difficulty) (Sample, error) {
	return s.SampleSeed(topic, d, s.SeedAt(s.now()))
}

// SampleSeed shuffles a copy of the topic/difficulty slice with a generator
// private to this call, keeps the first TargetFor(d) questions and shuffles the
// options of each single-choice question. The correct answer is matched by text,
// so reordering options never changes which one is correct.
func (s *Sampler) SampleSeed(topic string, d bank.Difficulty, seed int64) (Sample, error) {
	qs, err := s.src.Slice(topic, d)
	if err != nil {
		return Sample{}, err
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	if n := bank.TargetFor(d); len(qs) > n {
		qs = qs[:n]
	}

	out := Sample{Questions: qs, Total: len(qs), Seed: seed}
	for i := range qs {
		switch qs[i].Kind {
		case bank.KindSingleChoice:
			opts := qs[i].Options
			rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
			out.SingleChoice++
		case bank.KindFreeText:
			out.FreeText++
		}
	}
	return out, nil
}
