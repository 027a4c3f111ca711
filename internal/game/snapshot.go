package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the read-only view of a room returned by every operation.
// It is derived from current state on each call, never cached.
type Snapshot struct {
	ID     uuid.UUID  `json:"id"`
	Code   string     `json:"code"`
	Status RoomStatus `json:"status"`
	HostID uuid.UUID  `json:"host_id"`
	Config RoomConfig `json:"config"`

	CurrentRound   int  `json:"current_round"`
	PlayerCount    int  `json:"player_count"`
	ConnectedCount int  `json:"connected_count"`
	CanJoin        bool `json:"can_join"`
	CanStart       bool `json:"can_start"`

	Players []PlayerView `json:"players"`
	Round   *RoundView   `json:"round,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// PlayerView is the public view of a slot, ordered by seat.
type PlayerView struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	Seat      int       `json:"seat"`
	Score     int       `json:"score"`
	Connected bool      `json:"connected"`
	Ready     bool      `json:"ready"`
	Host      bool      `json:"host"`

	RoundsAsImposter  int `json:"rounds_as_imposter"`
	RoundsAsDetective int `json:"rounds_as_detective"`
	VotesCast         int `json:"votes_cast"`
	CorrectVotes      int `json:"correct_votes"`
}

// RoundView is the public view of the current round. The imposter identity
// and the result are withheld until the round has resolved.
type RoundView struct {
	Number      int        `json:"number"`
	Phase       RoundPhase `json:"phase"`
	AnswerCount int        `json:"answer_count"`
	VoteCount   int        `json:"vote_count"`

	StartedAt           time.Time `json:"started_at"`
	DiscussionStartedAt time.Time `json:"discussion_started_at,omitempty"`
	VotingStartedAt     time.Time `json:"voting_started_at,omitempty"`
	FinishedAt          time.Time `json:"finished_at,omitempty"`

	Result *RoundResult `json:"result,omitempty"`
}

// Snapshot returns the room's current read-only view.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             r.ID,
		Code:           r.Code,
		Status:         r.Status,
		HostID:         r.HostID,
		Config:         r.Config,
		CurrentRound:   r.CurrentRound,
		PlayerCount:    len(r.slots),
		ConnectedCount: r.connectedCountLocked(),
		CanJoin:        r.Status == StatusWaiting && len(r.slots) < r.Config.MaxPlayers,
		CanStart:       r.canStartLocked(),
		CreatedAt:      r.CreatedAt,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		LastActivity:   r.LastActivity,
	}
	for _, s := range r.slotsBySeatLocked() {
		snap.Players = append(snap.Players, PlayerView{
			ID:                s.AccountID,
			Nickname:          s.Nickname,
			Seat:              s.Seat,
			Score:             s.Score,
			Connected:         s.Connected,
			Ready:             s.Ready,
			Host:              s.Host,
			RoundsAsImposter:  s.RoundsAsImposter,
			RoundsAsDetective: s.RoundsAsDetective,
			VotesCast:         s.VotesCast,
			CorrectVotes:      s.CorrectVotes,
		})
	}
	if round, err := r.currentRoundLocked(); err == nil {
		view := &RoundView{
			Number:              round.Number,
			Phase:               round.Phase,
			AnswerCount:         len(round.answers),
			VoteCount:           len(round.votes),
			StartedAt:           round.StartedAt,
			DiscussionStartedAt: round.DiscussionStartedAt,
			VotingStartedAt:     round.VotingStartedAt,
			FinishedAt:          round.FinishedAt,
		}
		if round.Phase == PhaseResults || round.Phase == PhaseFinished {
			view.Result = round.result
		}
		snap.Round = view
	}
	return snap
}

// PlayerRound is the per-player view of the current round: the imposter sees
// the decoy question and their role, everyone else sees the main question.
type PlayerRound struct {
	Number     int        `json:"number"`
	Phase      RoundPhase `json:"phase"`
	IsImposter bool       `json:"is_imposter"`
	Question   Question   `json:"question"`
	Answered   bool       `json:"answered"`
	Voted      bool       `json:"voted"`
}

// PlayerRoundInfo returns the acting member's private view of the current
// round. The decoy question is disguised as a regular question so the
// imposter's client renders it identically.
func (r *Room) PlayerRoundInfo(playerID uuid.UUID) (PlayerRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.slotLocked(playerID); err != nil {
		return PlayerRound{}, err
	}
	round, err := r.currentRoundLocked()
	if err != nil {
		return PlayerRound{}, err
	}

	info := PlayerRound{
		Number:     round.Number,
		Phase:      round.Phase,
		IsImposter: playerID == round.ImposterID,
	}
	if info.IsImposter {
		info.Question = Question{
			ID:        round.Decoy.ID,
			Text:      round.Decoy.Text,
			MinAnswer: round.Decoy.MinAnswer,
			MaxAnswer: round.Decoy.MaxAnswer,
		}
	} else {
		info.Question = round.Question
	}
	_, info.Answered = round.answers[playerID]
	_, info.Voted = round.votes[playerID]
	return info, nil
}

// RevealedAnswer is one member's answer as shown on the results screen.
type RevealedAnswer struct {
	PlayerID   uuid.UUID `json:"player_id"`
	Nickname   string    `json:"nickname"`
	Value      int       `json:"value"`
	IsImposter bool      `json:"is_imposter"`
}

// RoundResults is the full reveal for a round in results (or finished) phase.
type RoundResults struct {
	Number    int              `json:"number"`
	Question  Question         `json:"question"`
	Decoy     DecoyQuestion    `json:"decoy_question"`
	Answers   []RevealedAnswer `json:"answers"`
	Result    RoundResult      `json:"result"`
	Scores    map[string]int    `json:"current_scores"`
	VoterPick map[string]string `json:"voter_choices"` // voter id -> accused id
}

// Results returns the reveal for the current round once it has resolved.
func (r *Room) Results() (RoundResults, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	round, err := r.currentRoundLocked()
	if err != nil {
		return RoundResults{}, err
	}
	if round.Phase != PhaseResults && round.Phase != PhaseFinished {
		return RoundResults{}, newError(CodeInvalidPhase, "round is in %s, results are not available", round.Phase)
	}
	// A cancelled room finishes its round without resolving it.
	if round.result == nil {
		return RoundResults{}, newError(CodeInvalidPhase, "round ended without a resolution")
	}

	out := RoundResults{
		Number:    round.Number,
		Question:  round.Question,
		Decoy:     round.Decoy,
		Result:    *round.result,
		Scores:    make(map[string]int, len(r.slots)),
		VoterPick: make(map[string]string, len(round.votes)),
	}
	for _, a := range round.answers {
		nickname := ""
		if s, ok := r.slots[a.PlayerID]; ok {
			nickname = s.Nickname
		}
		out.Answers = append(out.Answers, RevealedAnswer{
			PlayerID:   a.PlayerID,
			Nickname:   nickname,
			Value:      a.Value,
			IsImposter: a.PlayerID == round.ImposterID,
		})
	}
	sort.Slice(out.Answers, func(i, j int) bool { return out.Answers[i].Value < out.Answers[j].Value })
	for _, s := range r.slots {
		out.Scores[s.Nickname] = s.Score
	}
	for _, v := range round.votes {
		out.VoterPick[v.VoterID.String()] = v.AccusedID.String()
	}
	return out, nil
}
