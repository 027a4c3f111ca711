package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RoomStatus is the room lifecycle state. Transitions are monotonic
// (waiting -> in_progress -> finished) except for cancellation, which is
// reachable from any non-terminal status.
type RoomStatus string

const (
	StatusWaiting    RoomStatus = "waiting"
	StatusInProgress RoomStatus = "in_progress"
	StatusPaused     RoomStatus = "paused"
	StatusFinished   RoomStatus = "finished"
	StatusCancelled  RoomStatus = "cancelled"
)

// terminal reports whether no further transitions are possible.
func (s RoomStatus) terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// RoomConfig is the host-chosen configuration, fixed at start time.
type RoomConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	MinPlayers  int `json:"min_players"`
	MaxPlayers  int `json:"max_players"`
	TotalRounds int `json:"total_rounds"`

	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category,omitempty"` // empty = any

	Private        bool   `json:"private"`
	PassphraseHash string `json:"-"`

	AutoStart   bool `json:"auto_start"`
	AllowRejoin bool `json:"allow_rejoin"`

	DiscussionSeconds int `json:"discussion_seconds"`
	VotingSeconds     int `json:"voting_seconds"`
	ResultsSeconds    int `json:"results_seconds"`
}

// DefaultConfig mirrors the defaults hosts see when creating a room.
func DefaultConfig() RoomConfig {
	return RoomConfig{
		MinPlayers:        3,
		MaxPlayers:        8,
		TotalRounds:       5,
		Difficulty:        DifficultyMixed,
		AllowRejoin:       true,
		DiscussionSeconds: 180,
		VotingSeconds:     60,
		ResultsSeconds:    30,
	}
}

// Validate checks configuration bounds before a room is created or updated.
func (c *RoomConfig) Validate() error {
	switch {
	case c.Name == "":
		return newError(CodePreconditionFailed, "room name is required")
	case c.MinPlayers < 3:
		return newError(CodePreconditionFailed, "min_players must be at least 3")
	case c.MaxPlayers > 12:
		return newError(CodePreconditionFailed, "max_players must be at most 12")
	case c.MinPlayers > c.MaxPlayers:
		return newError(CodePreconditionFailed, "min_players exceeds max_players")
	case c.TotalRounds < 1 || c.TotalRounds > 20:
		return newError(CodePreconditionFailed, "total_rounds must be within 1..20")
	case !c.Difficulty.Valid():
		return newError(CodePreconditionFailed, "unknown difficulty %q", c.Difficulty)
	}
	return nil
}

// questionFilter translates the room preferences into a pool filter.
func (c *RoomConfig) questionFilter() QuestionFilter {
	f := QuestionFilter{Category: c.Category}
	if min, max, ok := c.Difficulty.Range(); ok {
		f.MinDifficulty = min
		f.MaxDifficulty = max
	}
	return f
}

// PassphraseVerifier checks a join passphrase against the stored hash. The
// concrete implementation lives outside the core (argon2id in production,
// plain comparison in tests).
type PassphraseVerifier func(passphrase, hash string) (bool, error)

// Room holds the entire state for a single game room in memory. Every
// state-mutating operation serializes on mu; operations against different
// rooms never block one another. No network call happens while mu is held:
// question draws run in a two-phase commit around the lock and event sinks
// fire after unlock.
type Room struct {
	ID   uuid.UUID
	Code string

	Config RoomConfig
	Status RoomStatus
	HostID uuid.UUID

	// CurrentRound is 1-based; 0 until the game starts.
	// Invariant: 0 <= CurrentRound <= Config.TotalRounds.
	CurrentRound int

	CreatedAt    time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
	LastActivity time.Time

	// Sink receives every appended event, outside the room lock. Optional.
	Sink EventSink

	// OnEmpty is invoked (outside the lock) after the last slot leaves,
	// typically wired to registry teardown.
	OnEmpty func(roomID uuid.UUID)

	mu       sync.Mutex
	slots    map[uuid.UUID]*PlayerSlot // keyed by account id
	nextSeat int
	rounds   []*Round
	events   []Event
	pending  []Event
	pool     QuestionPool
	verify   PassphraseVerifier
	rng      *rand.Rand
	now      func() time.Time
}

// NewRoom builds a room with its host already seated (connected, ready,
// host flag set). The rng drives imposter selection; pass a seeded rand for
// deterministic behavior in tests.
func NewRoom(cfg RoomConfig, hostID uuid.UUID, hostNickname string, pool QuestionPool, verify PassphraseVerifier, rng *rand.Rand) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	r := &Room{
		ID:     id,
		Config: cfg,
		Status: StatusWaiting,
		HostID: hostID,
		slots:  make(map[uuid.UUID]*PlayerSlot),
		pool:   pool,
		verify: verify,
		rng:    rng,
		now:    time.Now,
	}
	r.CreatedAt = r.now()
	r.LastActivity = r.CreatedAt

	host := r.newSlotLocked(hostID, hostNickname)
	host.Host = true
	host.Ready = true

	r.record(EventRoomCreated, hostID, map[string]interface{}{
		"room_name": cfg.Name,
		"host":      hostNickname,
	})
	return r, nil
}

// touch refreshes the inactivity timestamp. Lock must be held.
func (r *Room) touch() {
	r.LastActivity = r.now()
}

// currentRoundLocked returns the active round or a NotFound error.
func (r *Room) currentRoundLocked() (*Round, error) {
	if r.CurrentRound == 0 || r.CurrentRound > len(r.rounds) {
		return nil, newError(CodeNotFound, "no active round")
	}
	return r.rounds[r.CurrentRound-1], nil
}

// slotLocked resolves a member slot or a NotFound error.
func (r *Room) slotLocked(accountID uuid.UUID) (*PlayerSlot, error) {
	slot, ok := r.slots[accountID]
	if !ok {
		return nil, newError(CodeNotFound, "player is not a member of this room")
	}
	return slot, nil
}

// requireHostLocked rejects non-host actors on host-only operations.
func (r *Room) requireHostLocked(accountID uuid.UUID) error {
	if accountID != r.HostID {
		return newError(CodeUnauthorized, "only the host may perform this operation")
	}
	return nil
}

// Cancel terminates the room from any non-terminal status, short-circuiting
// an in-flight round. Host-only.
func (r *Room) Cancel(actorID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	if err := r.requireHostLocked(actorID); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if r.Status.terminal() {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "room is already %s", r.Status)
	}

	r.Status = StatusCancelled
	r.FinishedAt = r.now()
	r.touch()
	if round, err := r.currentRoundLocked(); err == nil && round.Phase != PhaseFinished {
		round.Phase = PhaseFinished
		round.FinishedAt = r.now()
	}
	r.record(EventGameCancelled, actorID, nil)

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()

	r.emit(pending)
	return snap, nil
}

// SettingsUpdate carries a partial room-settings change. Nil fields are left
// untouched.
type SettingsUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	MinPlayers  *int        `json:"min_players,omitempty"`
	MaxPlayers  *int        `json:"max_players,omitempty"`
	TotalRounds *int        `json:"total_rounds,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	Category    *string     `json:"category,omitempty"`
	AutoStart   *bool       `json:"auto_start,omitempty"`
	AllowRejoin *bool       `json:"allow_rejoin,omitempty"`

	DiscussionSeconds *int `json:"discussion_seconds,omitempty"`
	VotingSeconds     *int `json:"voting_seconds,omitempty"`
	ResultsSeconds    *int `json:"results_seconds,omitempty"`
}

// UpdateSettings applies a partial configuration change. Host-only and legal
// only while the room is still waiting. The update is all-or-nothing: an
// invalid result leaves the previous configuration in place.
func (r *Room) UpdateSettings(actorID uuid.UUID, upd SettingsUpdate) (Snapshot, error) {
	r.mu.Lock()
	if err := r.requireHostLocked(actorID); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if r.Status != StatusWaiting {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeInvalidPhase, "settings are frozen once the game has started")
	}

	next := r.Config
	changed := []string{}
	setStr := func(field *string, v *string, name string) {
		if v != nil && *v != *field {
			*field = *v
			changed = append(changed, name)
		}
	}
	setInt := func(field *int, v *int, name string) {
		if v != nil && *v != *field {
			*field = *v
			changed = append(changed, name)
		}
	}
	setBool := func(field *bool, v *bool, name string) {
		if v != nil && *v != *field {
			*field = *v
			changed = append(changed, name)
		}
	}
	setStr(&next.Name, upd.Name, "name")
	setStr(&next.Description, upd.Description, "description")
	setInt(&next.MinPlayers, upd.MinPlayers, "min_players")
	setInt(&next.MaxPlayers, upd.MaxPlayers, "max_players")
	setInt(&next.TotalRounds, upd.TotalRounds, "total_rounds")
	setStr(&next.Category, upd.Category, "category")
	setBool(&next.AutoStart, upd.AutoStart, "auto_start")
	setBool(&next.AllowRejoin, upd.AllowRejoin, "allow_rejoin")
	setInt(&next.DiscussionSeconds, upd.DiscussionSeconds, "discussion_seconds")
	setInt(&next.VotingSeconds, upd.VotingSeconds, "voting_seconds")
	setInt(&next.ResultsSeconds, upd.ResultsSeconds, "results_seconds")
	if upd.Difficulty != nil && *upd.Difficulty != next.Difficulty {
		next.Difficulty = *upd.Difficulty
		changed = append(changed, "difficulty")
	}

	if err := next.Validate(); err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	r.Config = next
	r.touch()
	if len(changed) > 0 {
		r.record(EventSettingsUpdated, actorID, map[string]interface{}{
			"updated_fields": changed,
		})
	}

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()

	r.emit(pending)
	return snap, nil
}
