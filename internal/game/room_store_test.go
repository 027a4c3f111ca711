// internal/game/room_store_test.go
package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStore(sink EventSink) *RoomStore {
	return NewRoomStore(testPool(1), nil, sink, rand.New(rand.NewSource(11)))
}

func TestCreateRoomAssignsUniqueCodes(t *testing.T) {
	s := newTestStore(nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := s.CreateRoom(testConfig(), uuid.New(), "host")
		require.NoError(t, err)
		require.Len(t, room.Code, codeLength)
		require.Equal(t, strings.ToUpper(room.Code), room.Code)
		require.False(t, seen[room.Code])
		seen[room.Code] = true
	}
}

func TestGetByCodeIsCaseInsensitive(t *testing.T) {
	s := newTestStore(nil)
	room, err := s.CreateRoom(testConfig(), uuid.New(), "host")
	require.NoError(t, err)

	got, ok := s.GetByCode(strings.ToLower(room.Code))
	require.True(t, ok)
	require.Equal(t, room.ID, got.ID)

	_, ok = s.GetByCode("ZZZZZZ")
	require.False(t, ok)
}

func TestDeleteReleasesCode(t *testing.T) {
	s := newTestStore(nil)
	room, err := s.CreateRoom(testConfig(), uuid.New(), "host")
	require.NoError(t, err)

	s.Delete(room.ID)
	_, ok := s.Get(room.ID)
	require.False(t, ok)
	_, ok = s.GetByCode(room.Code)
	require.False(t, ok)
}

func TestLastLeaverTearsDownRoom(t *testing.T) {
	s := newTestStore(nil)
	hostID := uuid.New()
	room, err := s.CreateRoom(testConfig(), hostID, "host")
	require.NoError(t, err)

	_, err = room.Leave(hostID)
	require.NoError(t, err)

	_, ok := s.Get(room.ID)
	require.False(t, ok)
}

func TestListFiltersPrivateAndTerminalRooms(t *testing.T) {
	s := newTestStore(nil)

	public, err := s.CreateRoom(testConfig(), uuid.New(), "host")
	require.NoError(t, err)

	privCfg := testConfig()
	privCfg.Private = true
	_, err = s.CreateRoom(privCfg, uuid.New(), "host")
	require.NoError(t, err)

	cancelHost := uuid.New()
	cancelled, err := s.CreateRoom(testConfig(), cancelHost, "host")
	require.NoError(t, err)
	_, err = cancelled.Cancel(cancelHost)
	require.NoError(t, err)

	listed := s.List(false)
	require.Len(t, listed, 1)
	require.Equal(t, public.ID, listed[0].ID)

	require.Len(t, s.List(true), 2)
}

func TestStoreWiresSinkIntoRooms(t *testing.T) {
	sink := &mockSink{}
	s := newTestStore(sink.sinkFn)

	room, err := s.CreateRoom(testConfig(), uuid.New(), "host")
	require.NoError(t, err)
	_, err = room.Join(uuid.New(), "guest", "")
	require.NoError(t, err)

	require.Len(t, sink.byType(EventPlayerJoined), 1)
	joined := sink.byType(EventPlayerJoined)[0]
	require.Equal(t, room.ID, joined.RoomID)
}
