package game

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags an entry in the per-room event log.
type EventType string

const (
	EventRoomCreated        EventType = "room_created"
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerLeft         EventType = "player_left"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventPlayerReconnected  EventType = "player_reconnected"
	EventHostTransferred    EventType = "host_transferred"
	EventSettingsUpdated    EventType = "settings_updated"
	EventGameStarted        EventType = "game_started"
	EventRoundStarted       EventType = "round_started"
	EventAnswerSubmitted    EventType = "answer_submitted"
	EventDiscussionStarted  EventType = "discussion_started"
	EventVotingStarted      EventType = "voting_started"
	EventVoteSubmitted      EventType = "vote_submitted"
	EventRoundEnded         EventType = "round_ended"
	EventGameEnded          EventType = "game_ended"
	EventGameCancelled      EventType = "game_cancelled"
)

// Event is one immutable entry in a room's append-only log. Sequence numbers
// are dense and start at 1; ordering is total within a room only. The state
// machine never reads the log back to make decisions.
type Event struct {
	Seq       uint64                 `json:"seq"`
	RoomID    uuid.UUID              `json:"room_id"`
	Type      EventType              `json:"type"`
	ActorID   uuid.UUID              `json:"actor_id,omitempty"` // Nil for system events
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventSink receives every event appended to a room's log, after the room
// lock has been released. Sinks must not block; slow consumers buffer or drop
// on their side.
type EventSink func(Event)

// record appends an event to the room log and queues it for sink delivery.
// Caller must hold the room lock.
func (r *Room) record(t EventType, actor uuid.UUID, payload map[string]interface{}) {
	ev := Event{
		Seq:       uint64(len(r.events) + 1),
		RoomID:    r.ID,
		Type:      t,
		ActorID:   actor,
		Payload:   payload,
		Timestamp: r.now(),
	}
	r.events = append(r.events, ev)
	r.pending = append(r.pending, ev)
}

// takePending returns and clears the queued events. Caller must hold the
// room lock; the returned slice is delivered after unlocking.
func (r *Room) takePending() []Event {
	out := r.pending
	r.pending = nil
	return out
}

// emit delivers events to the configured sink. Must be called without the
// room lock held: sinks may fan out to the network.
func (r *Room) emit(events []Event) {
	if r.Sink == nil {
		return
	}
	for _, ev := range events {
		r.Sink(ev)
	}
}

// EventsSince returns up to limit events with Seq > after, oldest first.
// A limit of 0 means no cap.
func (r *Room) EventsSince(after uint64, limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if after >= uint64(len(r.events)) {
		return nil
	}
	tail := r.events[after:]
	if limit > 0 && len(tail) > limit {
		tail = tail[:limit]
	}
	out := make([]Event, len(tail))
	copy(out, tail)
	return out
}
