// internal/handlers/hub_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/numberhunt/server/internal/game"
)

func TestHubBroadcastReachesRoomSubscribersOnly(t *testing.T) {
	h := NewHub()
	roomA := uuid.New()
	roomB := uuid.New()

	subA := h.Subscribe(roomA, uuid.New())
	subB := h.Subscribe(roomB, uuid.New())

	h.Broadcast(game.Event{Seq: 1, RoomID: roomA, Type: game.EventPlayerJoined})

	select {
	case ev := <-subA.events:
		require.Equal(t, roomA, ev.RoomID)
	default:
		t.Fatal("room A subscriber got no event")
	}
	select {
	case <-subB.events:
		t.Fatal("room B subscriber got an event for room A")
	default:
	}
}

func TestHubSlowSubscriberNeverBlocksBroadcast(t *testing.T) {
	h := NewHub()
	roomID := uuid.New()
	sub := h.Subscribe(roomID, uuid.New())

	// Overflow the buffer; broadcasts must drop rather than block.
	for i := 0; i < 100; i++ {
		h.Broadcast(game.Event{Seq: uint64(i + 1), RoomID: roomID})
	}
	require.Equal(t, cap(sub.events), len(sub.events))
}

func TestHubUnsubscribeClosesChannelAndForgetsRoom(t *testing.T) {
	h := NewHub()
	roomID := uuid.New()
	sub := h.Subscribe(roomID, uuid.New())
	require.Equal(t, 1, h.SubscriberCount(roomID))

	h.Unsubscribe(roomID, sub)
	require.Equal(t, 0, h.SubscriberCount(roomID))
	_, open := <-sub.events
	require.False(t, open)

	// Double unsubscribe is a no-op, not a panic.
	h.Unsubscribe(roomID, sub)
}
