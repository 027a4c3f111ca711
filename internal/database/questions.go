package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/numberhunt/server/internal/game"
)

// QuestionStore is the Postgres-backed question pool. It implements
// game.QuestionPool over the questions and decoy_questions tables.
type QuestionStore struct {
	Pool *pgxpool.Pool
}

// NewQuestionStore wraps an existing pgx pool.
func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{Pool: pool}
}

// Draw selects one random active main question matching the filter and one
// random active decoy question. Returns game.ErrNoQuestions when either
// query comes back empty.
func (s *QuestionStore) Draw(ctx context.Context, filter game.QuestionFilter) (game.Question, game.DecoyQuestion, error) {
	query := `
		SELECT id, text, category, min_answer, max_answer, difficulty
		FROM questions
		WHERE is_active
		  AND ($1 = '' OR category = $1)
		  AND ($2::float8 = 0 OR difficulty BETWEEN $3 AND $2)
		ORDER BY random()
		LIMIT 1`

	var q game.Question
	row := s.Pool.QueryRow(ctx, query, filter.Category, filter.MaxDifficulty, filter.MinDifficulty)
	err := row.Scan(&q.ID, &q.Text, &q.Category, &q.MinAnswer, &q.MaxAnswer, &q.Difficulty)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Question{}, game.DecoyQuestion{}, game.ErrNoQuestions
	}
	if err != nil {
		return game.Question{}, game.DecoyQuestion{}, fmt.Errorf("draw question: %w", err)
	}

	var d game.DecoyQuestion
	row = s.Pool.QueryRow(ctx, `
		SELECT id, text, min_answer, max_answer
		FROM decoy_questions
		WHERE is_active
		ORDER BY random()
		LIMIT 1`)
	err = row.Scan(&d.ID, &d.Text, &d.MinAnswer, &d.MaxAnswer)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Question{}, game.DecoyQuestion{}, game.ErrNoQuestions
	}
	if err != nil {
		return game.Question{}, game.DecoyQuestion{}, fmt.Errorf("draw decoy question: %w", err)
	}

	return q, d, nil
}
