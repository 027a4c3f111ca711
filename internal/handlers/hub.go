// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/numberhunt/server/internal/game"
)

// Subscriber is one WebSocket client listening to a room's event stream.
type Subscriber struct {
	playerID uuid.UUID
	events   chan game.Event
}

// Hub fans room events out to WebSocket subscribers. Sends never block: a
// subscriber whose buffer is full misses the event and is expected to
// resynchronize via the events endpoint using sequence numbers.
type Hub struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*Subscriber]struct{})}
}

// Subscribe registers a client for a room's events and returns the handle
// used to unsubscribe.
func (h *Hub) Subscribe(roomID, playerID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		playerID: playerID,
		events:   make(chan game.Event, 32),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Subscriber]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the client and closes its channel.
func (h *Hub) Unsubscribe(roomID uuid.UUID, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.events)
	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast delivers an event to every subscriber of its room without
// blocking the caller.
func (h *Hub) Broadcast(ev game.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.rooms[ev.RoomID] {
		select {
		case sub.events <- ev:
		default:
		}
	}
}

// SubscriberCount reports how many sockets are attached to a room.
func (h *Hub) SubscriberCount(roomID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
