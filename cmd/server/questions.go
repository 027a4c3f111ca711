// cmd/server/questions.go
package main

import (
	"github.com/google/uuid"

	"github.com/numberhunt/server/internal/game"
)

// builtinQuestions is the development fallback set served when no Postgres
// connection is configured. Answers are capped at sensible everyday ranges.
func builtinQuestions() []game.Question {
	qs := []struct {
		text       string
		category   string
		min, max   int
		difficulty float64
	}{
		{"How many cups of coffee do you drink on a typical day?", "habits", 0, 20, 1.2},
		{"How many hours did you sleep last night?", "habits", 0, 24, 1.0},
		{"How many countries have you visited?", "travel", 0, 200, 1.8},
		{"How many pairs of shoes do you own?", "lifestyle", 0, 100, 1.5},
		{"How many times have you moved house in your life?", "life", 0, 50, 2.2},
		{"How many books did you finish in the last year?", "culture", 0, 200, 2.0},
		{"At what age did you learn to ride a bicycle?", "life", 0, 80, 2.4},
		{"How many minutes is your usual commute?", "habits", 0, 300, 1.6},
		{"How many siblings do you have?", "life", 0, 20, 1.1},
		{"How many languages can you hold a conversation in?", "culture", 0, 15, 1.9},
		{"How many hours per week do you spend exercising?", "habits", 0, 60, 2.1},
		{"How many different jobs have you had?", "life", 0, 40, 2.6},
		{"How many concerts have you been to in your life?", "culture", 0, 500, 3.0},
		{"How many first cousins do you have?", "life", 0, 60, 2.8},
		{"How many keys are on your keychain right now?", "lifestyle", 0, 30, 2.3},
		{"How many weddings have you attended?", "life", 0, 100, 2.7},
		{"How many apps are on your phone home screen?", "lifestyle", 0, 50, 2.5},
		{"How many time zones away is the farthest place you have been?", "travel", 0, 12, 3.4},
		{"How many nights did you spend in a hospital as a patient?", "life", 0, 365, 3.2},
		{"How many digits of pi can you recite from memory?", "culture", 0, 100, 3.6},
		{"How many years have you lived at your current address?", "life", 0, 80, 1.4},
		{"How many plants are in your home?", "lifestyle", 0, 200, 2.0},
		{"How many flights did you take last year?", "travel", 0, 100, 2.9},
		{"How many items are in your email inbox right now, in hundreds?", "lifestyle", 0, 1000, 3.8},
		{"How many bones have you broken in your life?", "life", 0, 30, 3.1},
		{"How old were you when you got your first phone?", "life", 0, 80, 2.2},
		{"How many board games do you own?", "culture", 0, 150, 2.6},
		{"How many cups of water do you drink on a typical day?", "habits", 0, 30, 1.3},
		{"How many different countries' cuisines have you cooked at home?", "culture", 0, 50, 3.5},
		{"How many marathons or organized races have you entered?", "habits", 0, 100, 4.2},
		{"How many years ago did you last change careers?", "life", 0, 60, 4.0},
		{"How many streaming services do you pay for?", "lifestyle", 0, 20, 1.7},
	}

	out := make([]game.Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, game.Question{
			ID:         uuid.New(),
			Text:       q.text,
			Category:   q.category,
			MinAnswer:  q.min,
			MaxAnswer:  q.max,
			Difficulty: q.difficulty,
		})
	}
	return out
}

// builtinDecoys are the generic questions secretly handed to the imposter.
// Their answer ranges overlap the main set so a decoy answer is not an
// instant giveaway.
func builtinDecoys() []game.DecoyQuestion {
	ds := []struct {
		text     string
		min, max int
	}{
		{"Pick a number you feel lucky about today.", 0, 100},
		{"How many hours of daylight do you wish a day had?", 0, 24},
		{"Name a small number that describes your week so far.", 0, 20},
		{"How many slices of pizza could you eat right now?", 0, 30},
		{"Pick a number between zero and fifty.", 0, 50},
		{"How many stars would you give this week out of ten?", 0, 10},
		{"How many minutes could you stay silent if you tried?", 0, 300},
		{"Pick a number that feels ordinary.", 0, 40},
	}

	out := make([]game.DecoyQuestion, 0, len(ds))
	for _, d := range ds {
		out = append(out, game.DecoyQuestion{
			ID:        uuid.New(),
			Text:      d.text,
			MinAnswer: d.min,
			MaxAnswer: d.max,
		})
	}
	return out
}
