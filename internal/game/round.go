package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RoundPhase drives the per-round state machine:
// setup -> answering -> discussion -> voting -> results -> finished.
// Setup exists only transiently: a round is committed together with its
// question pair and imposter, entering answering immediately.
type RoundPhase string

const (
	PhaseSetup      RoundPhase = "setup"
	PhaseAnswering  RoundPhase = "answering"
	PhaseDiscussion RoundPhase = "discussion"
	PhaseVoting     RoundPhase = "voting"
	PhaseResults    RoundPhase = "results"
	PhaseFinished   RoundPhase = "finished"
)

// Answer submission bounds. Resubmission before the phase closes upserts.
const (
	minAnswerValue = 0
	maxAnswerValue = 10000
)

// Answer is one member's numeric answer for a round.
type Answer struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Value       int       `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Vote is one member's accusation for a round. Self-votes are rejected.
type Vote struct {
	VoterID     uuid.UUID `json:"voter_id"`
	AccusedID   uuid.UUID `json:"accused_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RoundResult is computed exactly once, at voting-quorum closure.
type RoundResult struct {
	ImposterID    uuid.UUID         `json:"imposter_id"`
	Caught        bool              `json:"imposter_caught"`
	MostAccusedID uuid.UUID         `json:"most_accused_id,omitempty"` // Nil when no votes were cast
	Tally         map[uuid.UUID]int `json:"tally"`
	Deltas        map[uuid.UUID]int `json:"deltas"`
}

// Round is one cycle of the game within a room, keyed by (room, number).
// Numbers are dense and start at 1. The imposter reference is immutable once
// set and was a connected slot at selection time.
type Round struct {
	Number     int           `json:"number"`
	Question   Question      `json:"-"`
	Decoy      DecoyQuestion `json:"-"`
	ImposterID uuid.UUID     `json:"-"`
	Phase      RoundPhase    `json:"phase"`

	StartedAt           time.Time `json:"started_at"`
	DiscussionStartedAt time.Time `json:"discussion_started_at,omitempty"`
	VotingStartedAt     time.Time `json:"voting_started_at,omitempty"`
	FinishedAt          time.Time `json:"finished_at,omitempty"`

	answers map[uuid.UUID]Answer
	votes   map[uuid.UUID]Vote
	result  *RoundResult
}

// Start validates the start quorum and launches round 1. Host-only. The
// question draw happens outside the lock; the quorum and status are
// re-validated before commit, so a failed draw leaves the room untouched.
func (r *Room) Start(ctx context.Context, actorID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	if err := r.requireHostLocked(actorID); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if r.Status != StatusWaiting {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "room is %s, not waiting", r.Status)
	}
	if !r.canStartLocked() {
		r.mu.Unlock()
		return Snapshot{}, newError(CodePreconditionFailed, "start quorum not met")
	}
	filter := r.Config.questionFilter()
	r.mu.Unlock()

	q, d, err := r.pool.Draw(ctx, filter)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	// The room may have changed while the draw was in flight.
	if r.Status != StatusWaiting || !r.canStartLocked() {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "room changed during start")
	}

	r.Status = StatusInProgress
	r.StartedAt = r.now()
	r.CurrentRound = 1
	r.record(EventGameStarted, actorID, map[string]interface{}{
		"player_count": r.connectedCountLocked(),
	})
	if err := r.beginRoundLocked(q, d); err != nil {
		// Unreachable once canStart held: beginRound only fails with zero
		// connected members.
		r.mu.Unlock()
		return Snapshot{}, err
	}

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// beginRoundLocked commits a new round: selects the imposter uniformly at
// random among connected slots and enters answering. Lock must be held.
func (r *Room) beginRoundLocked(q Question, d DecoyQuestion) error {
	var connected []*PlayerSlot
	for _, s := range r.slotsBySeatLocked() {
		if s.Connected {
			connected = append(connected, s)
		}
	}
	if len(connected) == 0 {
		return newError(CodePreconditionFailed, "no connected players to select an imposter from")
	}
	imposter := connected[r.rng.Intn(len(connected))]

	round := &Round{
		Number:     r.CurrentRound,
		Question:   q,
		Decoy:      d,
		ImposterID: imposter.AccountID,
		Phase:      PhaseAnswering,
		StartedAt:  r.now(),
		answers:    make(map[uuid.UUID]Answer),
		votes:      make(map[uuid.UUID]Vote),
	}
	r.rounds = append(r.rounds, round)

	for _, s := range connected {
		if s.AccountID == imposter.AccountID {
			s.RoundsAsImposter++
		} else {
			s.RoundsAsDetective++
		}
	}
	r.touch()
	// The event stream is readable by every member, so the imposter identity
	// stays out of it until round_ended reveals it.
	r.record(EventRoundStarted, uuid.Nil, map[string]interface{}{
		"round_number":      round.Number,
		"question_id":       q.ID.String(),
		"question_category": q.Category,
	})
	return nil
}

// SubmitAnswer upserts the member's answer during the answering phase. The
// quorum check runs atomically with the submission: once every connected
// member has answered, the round advances to discussion exactly once.
func (r *Room) SubmitAnswer(playerID uuid.UUID, value int) (Snapshot, error) {
	r.mu.Lock()
	slot, err := r.slotLocked(playerID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	round, err := r.currentRoundLocked()
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if round.Phase != PhaseAnswering {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "round is in %s, not answering", round.Phase)
	}
	if value < minAnswerValue || value > maxAnswerValue {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "answer must be within %d..%d", minAnswerValue, maxAnswerValue)
	}

	round.answers[playerID] = Answer{PlayerID: playerID, Value: value, SubmittedAt: r.now()}
	slot.LastSeen = r.now()
	r.touch()
	r.record(EventAnswerSubmitted, playerID, map[string]interface{}{
		"round_number": round.Number,
		"answer":       value,
	})

	if r.answerQuorumLocked(round) {
		round.Phase = PhaseDiscussion
		round.DiscussionStartedAt = r.now()
		r.record(EventDiscussionStarted, uuid.Nil, map[string]interface{}{
			"round_number":  round.Number,
			"total_answers": len(round.answers),
		})
	}

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// answerQuorumLocked reports whether every connected member has answered.
func (r *Room) answerQuorumLocked(round *Round) bool {
	connected, answered := 0, 0
	for _, s := range r.slots {
		if !s.Connected {
			continue
		}
		connected++
		if _, ok := round.answers[s.AccountID]; ok {
			answered++
		}
	}
	return connected > 0 && answered >= connected
}

// StartVoting moves discussion to voting. Any member may trigger it:
// discussion length is time-bounded by the caller, not input-bounded.
func (r *Room) StartVoting(actorID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	if _, err := r.slotLocked(actorID); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	round, err := r.currentRoundLocked()
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if round.Phase != PhaseDiscussion {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "round is in %s, not discussion", round.Phase)
	}

	round.Phase = PhaseVoting
	round.VotingStartedAt = r.now()
	r.touch()
	r.record(EventVotingStarted, actorID, map[string]interface{}{
		"round_number": round.Number,
	})

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// SubmitVote upserts the voter's accusation during the voting phase. Once
// every connected member has voted, the round resolves and enters results;
// resolution happens at most once per round.
func (r *Room) SubmitVote(voterID, accusedID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	voter, err := r.slotLocked(voterID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if voterID == accusedID {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "cannot vote for yourself")
	}
	if _, ok := r.slots[accusedID]; !ok {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeNotFound, "accused player is not a member of this room")
	}
	round, err := r.currentRoundLocked()
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if round.Phase != PhaseVoting {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "round is in %s, not voting", round.Phase)
	}

	round.votes[voterID] = Vote{VoterID: voterID, AccusedID: accusedID, SubmittedAt: r.now()}
	voter.LastSeen = r.now()
	r.touch()
	r.record(EventVoteSubmitted, voterID, map[string]interface{}{
		"round_number": round.Number,
		"accused_id":   accusedID.String(),
	})

	if r.voteQuorumLocked(round) {
		r.resolveLocked(round)
	}

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// voteQuorumLocked reports whether every connected member has voted.
func (r *Room) voteQuorumLocked(round *Round) bool {
	connected, voted := 0, 0
	for _, s := range r.slots {
		if !s.Connected {
			continue
		}
		connected++
		if _, ok := round.votes[s.AccountID]; ok {
			voted++
		}
	}
	return connected > 0 && voted >= connected
}

// resolveLocked closes voting: computes the tally, decides whether the
// imposter was caught, applies score deltas and session counters, and enters
// results. Guarded so a round resolves at most once.
func (r *Room) resolveLocked(round *Round) {
	if round.result != nil {
		return
	}

	tally := make(map[uuid.UUID]int)
	for _, v := range round.votes {
		tally[v.AccusedID]++
	}

	// Highest vote count wins; ties break to the lowest seat among the tied.
	// Scanning current slots means accusations against a member who has
	// since left stay in the tally but can never win: a departed player
	// cannot be caught.
	var mostAccused uuid.UUID
	best := -1
	for _, s := range r.slotsBySeatLocked() {
		if n, ok := tally[s.AccountID]; ok && n > best {
			best = n
			mostAccused = s.AccountID
		}
	}

	caught := mostAccused != uuid.Nil && mostAccused == round.ImposterID
	votes := make([]Vote, 0, len(round.votes))
	for _, v := range round.votes {
		votes = append(votes, v)
	}
	deltas := ResolveScores(round.ImposterID, votes, caught)

	for id, delta := range deltas {
		if s, ok := r.slots[id]; ok {
			s.Score += delta
		}
	}
	for _, v := range round.votes {
		if s, ok := r.slots[v.VoterID]; ok {
			s.VotesCast++
			if v.AccusedID == round.ImposterID {
				s.CorrectVotes++
			}
		}
	}

	round.result = &RoundResult{
		ImposterID:    round.ImposterID,
		Caught:        caught,
		MostAccusedID: mostAccused,
		Tally:         tally,
		Deltas:        deltas,
	}
	round.Phase = PhaseResults
	round.FinishedAt = r.now()

	tallyPayload := make(map[string]interface{}, len(tally))
	for id, n := range tally {
		tallyPayload[id.String()] = n
	}
	payload := map[string]interface{}{
		"round_number":    round.Number,
		"imposter_id":     round.ImposterID.String(),
		"imposter_caught": caught,
		"vote_counts":     tallyPayload,
		"total_votes":     len(round.votes),
	}
	if mostAccused != uuid.Nil {
		payload["most_voted_id"] = mostAccused.String()
	}
	r.record(EventRoundEnded, uuid.Nil, payload)
}

// Advance moves past results into the next round, or ends the game at room
// level after the final round. Any member may call it. A failed
// question draw for the next round leaves the room in results so the caller
// can retry once content is available.
func (r *Room) Advance(ctx context.Context, actorID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	if _, err := r.slotLocked(actorID); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if r.Status != StatusInProgress {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "room is %s, not in progress", r.Status)
	}
	round, err := r.currentRoundLocked()
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if round.Phase != PhaseResults {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "round is in %s, not results", round.Phase)
	}

	if r.CurrentRound >= r.Config.TotalRounds {
		round.Phase = PhaseFinished
		r.Status = StatusFinished
		r.FinishedAt = r.now()
		r.touch()

		finalScores := make(map[string]interface{}, len(r.slots))
		for _, s := range r.slots {
			finalScores[s.Nickname] = s.Score
		}
		r.record(EventGameEnded, uuid.Nil, map[string]interface{}{
			"final_scores": finalScores,
		})

		snap := r.snapshotLocked()
		pending := r.takePending()
		r.mu.Unlock()
		r.emit(pending)
		return snap, nil
	}

	finishedNumber := round.Number
	filter := r.Config.questionFilter()
	r.mu.Unlock()

	q, d, err := r.pool.Draw(ctx, filter)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	// Re-validate: another caller may have advanced or cancelled meanwhile.
	if r.Status != StatusInProgress || r.CurrentRound != finishedNumber {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "room changed during advance")
	}
	if cur, err := r.currentRoundLocked(); err != nil || cur.Phase != PhaseResults {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "room changed during advance")
	}

	r.rounds[r.CurrentRound-1].Phase = PhaseFinished
	r.CurrentRound++
	if err := r.beginRoundLocked(q, d); err != nil {
		r.CurrentRound--
		r.rounds[r.CurrentRound-1].Phase = PhaseResults
		r.mu.Unlock()
		return Snapshot{}, err
	}

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}
