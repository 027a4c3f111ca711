// internal/game/questions_test.go
package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticPoolDrawUnfiltered(t *testing.T) {
	p := testPool(7)
	q, d, err := p.Draw(context.Background(), QuestionFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, q.Text)
	require.NotEmpty(t, d.Text)
}

func TestStaticPoolCategoryFilter(t *testing.T) {
	p := testPool(7)
	for i := 0; i < 20; i++ {
		q, _, err := p.Draw(context.Background(), QuestionFilter{Category: "habits"})
		require.NoError(t, err)
		require.Equal(t, "habits", q.Category)
	}
}

func TestStaticPoolDifficultyWindow(t *testing.T) {
	p := testPool(7)
	min, max, ok := DifficultyEasy.Range()
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		q, _, err := p.Draw(context.Background(), QuestionFilter{MinDifficulty: min, MaxDifficulty: max})
		require.NoError(t, err)
		require.GreaterOrEqual(t, q.Difficulty, min)
		require.LessOrEqual(t, q.Difficulty, max)
	}
}

func TestStaticPoolExhausted(t *testing.T) {
	p := testPool(7)
	_, _, err := p.Draw(context.Background(), QuestionFilter{Category: "astrophysics"})
	require.ErrorIs(t, err, ErrNoQuestions)

	empty := NewStaticPool(nil, nil, rand.New(rand.NewSource(1)))
	_, _, err = empty.Draw(context.Background(), QuestionFilter{})
	require.ErrorIs(t, err, ErrNoQuestions)
}

func TestDifficultyRanges(t *testing.T) {
	_, _, ok := DifficultyMixed.Range()
	require.False(t, ok)

	min, max, ok := DifficultyExpert.Range()
	require.True(t, ok)
	require.InDelta(t, 4.0, min, 1e-9)
	require.InDelta(t, 5.0, max, 1e-9)

	require.True(t, DifficultyMedium.Valid())
	require.False(t, Difficulty("nightmare").Valid())
}
