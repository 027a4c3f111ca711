// internal/game/scoring_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScoresImposterCaught(t *testing.T) {
	imposter := uuid.New()
	right1 := uuid.New()
	right2 := uuid.New()
	wrong := uuid.New()
	innocent := uuid.New()

	votes := []Vote{
		{VoterID: right1, AccusedID: imposter},
		{VoterID: right2, AccusedID: imposter},
		{VoterID: wrong, AccusedID: innocent},
		{VoterID: imposter, AccusedID: right1}, // imposter's own vote scores nothing
	}

	deltas := ResolveScores(imposter, votes, true)

	assert.Equal(t, DetectionBonus, deltas[right1])
	assert.Equal(t, DetectionBonus, deltas[right2])
	assert.Zero(t, deltas[wrong])
	assert.Zero(t, deltas[imposter])
	assert.Zero(t, deltas[innocent])
}

func TestResolveScoresImposterEscaped(t *testing.T) {
	imposter := uuid.New()
	voter1 := uuid.New()
	voter2 := uuid.New()
	scapegoat := uuid.New()

	votes := []Vote{
		{VoterID: voter1, AccusedID: scapegoat},
		{VoterID: voter2, AccusedID: scapegoat},
		{VoterID: scapegoat, AccusedID: voter1},
		{VoterID: imposter, AccusedID: voter2},
	}

	deltas := ResolveScores(imposter, votes, false)

	assert.Equal(t, DeceptionBonus, deltas[imposter])
	assert.Equal(t, AbstainBonus, deltas[voter1])
	assert.Equal(t, AbstainBonus, deltas[voter2])
	assert.Equal(t, AbstainBonus, deltas[scapegoat])
}

func TestResolveScoresNoVotes(t *testing.T) {
	deltas := ResolveScores(uuid.New(), nil, false)
	require.Empty(t, deltas)
}

func TestResolveScoresEscapedVoterWhoPickedImposterGetsNothing(t *testing.T) {
	// The imposter escaped on the tally, but one voter still picked them.
	// That vote is not an abstain pick and the imposter was not caught, so
	// it earns nothing.
	imposter := uuid.New()
	lone := uuid.New()
	other1 := uuid.New()
	other2 := uuid.New()

	votes := []Vote{
		{VoterID: lone, AccusedID: imposter},
		{VoterID: other1, AccusedID: other2},
		{VoterID: other2, AccusedID: other1},
	}

	deltas := ResolveScores(imposter, votes, false)

	assert.Equal(t, DeceptionBonus, deltas[imposter])
	assert.Zero(t, deltas[lone])
	assert.Equal(t, AbstainBonus, deltas[other1])
	assert.Equal(t, AbstainBonus, deltas[other2])
}
