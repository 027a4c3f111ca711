package game

import "github.com/google/uuid"

// Score deltas awarded at round resolution.
const (
	// DeceptionBonus goes to an imposter who escaped detection.
	DeceptionBonus = 3
	// DetectionBonus goes to each detective who voted for a caught imposter.
	DetectionBonus = 2
	// AbstainBonus goes to each detective who voted, but not for the
	// imposter, when the imposter escaped.
	AbstainBonus = 1
)

// ResolveScores computes per-player score deltas for a resolved round. It is
// a pure function: deltas are commutative and independent, and identical
// inputs always yield identical outputs. Idempotence against double
// resolution is the state machine's responsibility, not this function's.
//
// With no votes cast, no points are awarded at all: the deception bonus
// requires the imposter to have survived an actual vote.
func ResolveScores(imposterID uuid.UUID, votes []Vote, caught bool) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int)
	if len(votes) == 0 {
		return deltas
	}

	if !caught {
		deltas[imposterID] += DeceptionBonus
	}
	for _, v := range votes {
		if v.VoterID == imposterID {
			continue
		}
		if caught && v.AccusedID == imposterID {
			deltas[v.VoterID] += DetectionBonus
		} else if !caught && v.AccusedID != imposterID {
			deltas[v.VoterID] += AbstainBonus
		}
	}
	return deltas
}
