package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// rejoinWindow bounds how long after last-seen a disconnected member may
// reclaim their slot.
const rejoinWindow = time.Hour

// PlayerSlot is one member of one room: a unique (account, room) pair,
// owned exclusively by its Room and never shared across rooms.
type PlayerSlot struct {
	AccountID uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`

	// Seat is the monotonic join sequence within the room. It provides the
	// deterministic ordering used for host transfer and vote tie-breaks.
	Seat int `json:"seat"`

	Score     int  `json:"score"`
	Connected bool `json:"connected"`
	Ready     bool `json:"ready"`
	Host      bool `json:"host"`

	// Session counters.
	RoundsAsImposter  int `json:"rounds_as_imposter"`
	RoundsAsDetective int `json:"rounds_as_detective"`
	VotesCast         int `json:"votes_cast"`
	CorrectVotes      int `json:"correct_votes"`

	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}

// newSlotLocked seats a new member. Lock must be held.
func (r *Room) newSlotLocked(accountID uuid.UUID, nickname string) *PlayerSlot {
	slot := &PlayerSlot{
		AccountID: accountID,
		Nickname:  nickname,
		Seat:      r.nextSeat,
		Connected: true,
		JoinedAt:  r.now(),
		LastSeen:  r.now(),
	}
	r.nextSeat++
	r.slots[accountID] = slot
	return slot
}

// connectedCountLocked counts currently connected members.
func (r *Room) connectedCountLocked() int {
	n := 0
	for _, s := range r.slots {
		if s.Connected {
			n++
		}
	}
	return n
}

// slotsBySeatLocked returns all slots ordered by seat.
func (r *Room) slotsBySeatLocked() []*PlayerSlot {
	out := make([]*PlayerSlot, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// canRejoinLocked applies the rejoin policy to an existing slot: the room
// must allow rejoining, be in a live status, and the slot's last-seen must be
// within the rejoin window.
func (r *Room) canRejoinLocked(slot *PlayerSlot) bool {
	if !r.Config.AllowRejoin {
		return false
	}
	switch r.Status {
	case StatusWaiting, StatusInProgress, StatusPaused:
	default:
		return false
	}
	return r.now().Sub(slot.LastSeen) < rejoinWindow
}

// Join seats a new member, or reconnects an existing one under the rejoin
// policy. New members are admitted only while the room is waiting; rejoining
// members reuse their slot (score preserved) and never change membership
// uniqueness.
func (r *Room) Join(accountID uuid.UUID, nickname, passphrase string) (Snapshot, error) {
	r.mu.Lock()

	if slot, ok := r.slots[accountID]; ok {
		if slot.Connected {
			r.mu.Unlock()
			return Snapshot{}, newError(CodeConflict, "already a member of this room")
		}
		if !r.canRejoinLocked(slot) {
			r.mu.Unlock()
			return Snapshot{}, newError(CodeConflict, "rejoin window has expired")
		}
		slot.Connected = true
		slot.LastSeen = r.now()
		r.touch()
		r.record(EventPlayerReconnected, accountID, map[string]interface{}{
			"nickname": slot.Nickname,
		})
		snap := r.snapshotLocked()
		pending := r.takePending()
		r.mu.Unlock()
		r.emit(pending)
		return snap, nil
	}

	if r.Status != StatusWaiting {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "room is not accepting new players")
	}
	if len(r.slots) >= r.Config.MaxPlayers {
		r.mu.Unlock()
		return Snapshot{}, newError(CodeConflict, "room is full")
	}
	if r.Config.PassphraseHash != "" {
		ok, err := r.checkPassphrase(passphrase)
		if err != nil || !ok {
			r.mu.Unlock()
			return Snapshot{}, newError(CodeUnauthorized, "invalid room passphrase")
		}
	}

	slot := r.newSlotLocked(accountID, nickname)
	r.touch()
	r.record(EventPlayerJoined, accountID, map[string]interface{}{
		"nickname": slot.Nickname,
	})

	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

func (r *Room) checkPassphrase(passphrase string) (bool, error) {
	if r.verify == nil {
		return passphrase == r.Config.PassphraseHash, nil
	}
	return r.verify(passphrase, r.Config.PassphraseHash)
}

// Leave removes the member's slot. A departing host hands privilege to the
// earliest-seated remaining member; the last member leaving marks the room
// for teardown via OnEmpty.
func (r *Room) Leave(accountID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	slot, err := r.slotLocked(accountID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}

	r.record(EventPlayerLeft, accountID, map[string]interface{}{
		"nickname": slot.Nickname,
	})
	delete(r.slots, accountID)

	if slot.Host {
		if remaining := r.slotsBySeatLocked(); len(remaining) > 0 {
			next := remaining[0]
			next.Host = true
			r.HostID = next.AccountID
			r.record(EventHostTransferred, next.AccountID, map[string]interface{}{
				"nickname": next.Nickname,
			})
		}
	}
	r.touch()

	empty := len(r.slots) == 0
	onEmpty := r.OnEmpty
	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()

	r.emit(pending)
	if empty && onEmpty != nil {
		onEmpty(r.ID)
	}
	return snap, nil
}

// Disconnect flags the member as away and stamps last-seen, opening the
// rejoin window. Quorum checks only run on submissions, so a disconnect
// never triggers a phase transition by itself.
func (r *Room) Disconnect(accountID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	slot, err := r.slotLocked(accountID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if slot.Connected {
		slot.Connected = false
		slot.LastSeen = r.now()
		r.touch()
		r.record(EventPlayerDisconnected, accountID, map[string]interface{}{
			"nickname": slot.Nickname,
		})
	}
	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// Reconnect restores a disconnected member within the rejoin policy. The
// same slot is reused; membership uniqueness never changes.
func (r *Room) Reconnect(accountID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	slot, err := r.slotLocked(accountID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	if !slot.Connected {
		if !r.canRejoinLocked(slot) {
			r.mu.Unlock()
			return Snapshot{}, newError(CodeConflict, "rejoin window has expired")
		}
		slot.Connected = true
		slot.LastSeen = r.now()
		r.touch()
		r.record(EventPlayerReconnected, accountID, map[string]interface{}{
			"nickname": slot.Nickname,
		})
	}
	snap := r.snapshotLocked()
	pending := r.takePending()
	r.mu.Unlock()
	r.emit(pending)
	return snap, nil
}

// ToggleReady flips the member's ready flag. Readiness feeds the can-start
// check but never advances a phase by itself.
func (r *Room) ToggleReady(accountID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	slot, err := r.slotLocked(accountID)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	slot.Ready = !slot.Ready
	slot.LastSeen = r.now()
	r.touch()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	return snap, nil
}

// canStartLocked is the start quorum: waiting status, connected count within
// [min, max], and (unless auto-start) every connected member ready.
func (r *Room) canStartLocked() bool {
	if r.Status != StatusWaiting {
		return false
	}
	connected := r.connectedCountLocked()
	if connected == 0 || connected < r.Config.MinPlayers || connected > r.Config.MaxPlayers {
		return false
	}
	if r.Config.AutoStart {
		return true
	}
	for _, s := range r.slots {
		if s.Connected && !s.Ready {
			return false
		}
	}
	return true
}

// CanStart reports whether the start quorum is currently met.
func (r *Room) CanStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canStartLocked()
}

// CanJoin reports whether a new member would currently be admitted.
func (r *Room) CanJoin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status == StatusWaiting && len(r.slots) < r.Config.MaxPlayers
}
