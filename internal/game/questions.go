package game

import (
	"context"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// Difficulty is the room-level difficulty preference. Each level maps to a
// numeric target; questions within ±0.5 of the target qualify. Mixed disables
// the filter entirely.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
	DifficultyMixed  Difficulty = "mixed"
)

// difficultyTolerance is the half-width of the window around the numeric
// difficulty target.
const difficultyTolerance = 0.5

var difficultyTargets = map[Difficulty]float64{
	DifficultyEasy:   1.5,
	DifficultyMedium: 2.5,
	DifficultyHard:   3.5,
	DifficultyExpert: 4.5,
}

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	if d == DifficultyMixed {
		return true
	}
	_, ok := difficultyTargets[d]
	return ok
}

// Range returns the inclusive numeric difficulty window for d. The second
// return is false for mixed, which matches any difficulty.
func (d Difficulty) Range() (min, max float64, ok bool) {
	target, found := difficultyTargets[d]
	if !found {
		return 0, 0, false
	}
	return target - difficultyTolerance, target + difficultyTolerance, true
}

// Question is the main personal-trivia question everyone but the imposter
// receives.
type Question struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Category   string    `json:"category"`
	MinAnswer  int       `json:"min_answer"`
	MaxAnswer  int       `json:"max_answer"`
	Difficulty float64   `json:"difficulty"`
}

// DecoyQuestion is the generic question secretly handed to the imposter.
type DecoyQuestion struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	MinAnswer int       `json:"min_answer"`
	MaxAnswer int       `json:"max_answer"`
}

// QuestionFilter narrows a draw by category and numeric difficulty window.
// Zero values disable the corresponding constraint.
type QuestionFilter struct {
	Category      string
	MinDifficulty float64
	MaxDifficulty float64
}

// QuestionPool supplies a question pair for a new round. Implementations
// return ErrNoQuestions when the filter cannot be satisfied; the caller
// surfaces that instead of silently degrading.
type QuestionPool interface {
	Draw(ctx context.Context, filter QuestionFilter) (Question, DecoyQuestion, error)
}

// StaticPool is an in-memory QuestionPool backed by fixed slices. It serves
// development setups without a database and deterministic tests (a seeded rng
// makes draws reproducible).
type StaticPool struct {
	mu        sync.Mutex
	questions []Question
	decoys    []DecoyQuestion
	rng       *rand.Rand
}

// NewStaticPool builds a pool over the given questions. rng may not be nil.
func NewStaticPool(questions []Question, decoys []DecoyQuestion, rng *rand.Rand) *StaticPool {
	return &StaticPool{questions: questions, decoys: decoys, rng: rng}
}

// Draw picks a uniformly random qualifying main question and a random decoy.
func (p *StaticPool) Draw(_ context.Context, filter QuestionFilter) (Question, DecoyQuestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var candidates []Question
	for _, q := range p.questions {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.MaxDifficulty > 0 && (q.Difficulty < filter.MinDifficulty || q.Difficulty > filter.MaxDifficulty) {
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 || len(p.decoys) == 0 {
		return Question{}, DecoyQuestion{}, ErrNoQuestions
	}

	q := candidates[p.rng.Intn(len(candidates))]
	d := p.decoys[p.rng.Intn(len(p.decoys))]
	return q, d, nil
}
