// internal/game/room_test.go
package game

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mockSink collects emitted events instead of pushing them to sockets.
type mockSink struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockSink) sinkFn(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockSink) byType(t EventType) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func testQuestions() []Question {
	return []Question{
		{ID: uuid.New(), Text: "How many cups of coffee do you drink a day?", Category: "habits", MinAnswer: 0, MaxAnswer: 20, Difficulty: 1.2},
		{ID: uuid.New(), Text: "How many countries have you visited?", Category: "travel", MinAnswer: 0, MaxAnswer: 200, Difficulty: 1.8},
		{ID: uuid.New(), Text: "How many concerts have you been to?", Category: "culture", MinAnswer: 0, MaxAnswer: 500, Difficulty: 3.0},
		{ID: uuid.New(), Text: "How many marathons have you entered?", Category: "habits", MinAnswer: 0, MaxAnswer: 100, Difficulty: 4.2},
	}
}

func testDecoys() []DecoyQuestion {
	return []DecoyQuestion{
		{ID: uuid.New(), Text: "Pick a number you like.", MinAnswer: 0, MaxAnswer: 100},
		{ID: uuid.New(), Text: "How many slices of pizza could you eat?", MinAnswer: 0, MaxAnswer: 30},
	}
}

func testPool(seed int64) *StaticPool {
	return NewStaticPool(testQuestions(), testDecoys(), rand.New(rand.NewSource(seed)))
}

// newTestRoom creates a room with numPlayers seated and ready members.
// Returned ids are in seat order; ids[0] is the host.
func newTestRoom(t *testing.T, cfg RoomConfig, numPlayers int) (*Room, []uuid.UUID, *mockSink) {
	t.Helper()
	sink := &mockSink{}
	hostID := uuid.New()
	r, err := NewRoom(cfg, hostID, "host", testPool(1), nil, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	r.Sink = sink.sinkFn

	ids := []uuid.UUID{hostID}
	for i := 1; i < numPlayers; i++ {
		id := uuid.New()
		_, err := r.Join(id, "player", "")
		require.NoError(t, err)
		_, err = r.ToggleReady(id)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return r, ids, sink
}

func testConfig() RoomConfig {
	cfg := DefaultConfig()
	cfg.Name = "test room"
	return cfg
}

func TestNewRoomSeatsHost(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 1)

	snap := r.Snapshot()
	require.Equal(t, StatusWaiting, snap.Status)
	require.Equal(t, ids[0], snap.HostID)
	require.Len(t, snap.Players, 1)
	require.True(t, snap.Players[0].Host)
	require.True(t, snap.Players[0].Ready)
	require.True(t, snap.Players[0].Connected)
	require.Equal(t, 0, snap.Players[0].Seat)
	require.Equal(t, 0, snap.CurrentRound)
}

func TestNewRoomValidatesConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RoomConfig)
	}{
		{"missing name", func(c *RoomConfig) { c.Name = "" }},
		{"min too low", func(c *RoomConfig) { c.MinPlayers = 2 }},
		{"max too high", func(c *RoomConfig) { c.MaxPlayers = 13 }},
		{"min above max", func(c *RoomConfig) { c.MinPlayers = 9; c.MaxPlayers = 8 }},
		{"zero rounds", func(c *RoomConfig) { c.TotalRounds = 0 }},
		{"too many rounds", func(c *RoomConfig) { c.TotalRounds = 21 }},
		{"bad difficulty", func(c *RoomConfig) { c.Difficulty = "nightmare" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := NewRoom(cfg, uuid.New(), "host", testPool(1), nil, rand.New(rand.NewSource(1)))
			require.Error(t, err)
			require.True(t, IsCode(err, CodePreconditionFailed))
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	r, ids, sink := newTestRoom(t, testConfig(), 2)

	rounds := 7
	name := "renamed"
	snap, err := r.UpdateSettings(ids[0], SettingsUpdate{TotalRounds: &rounds, Name: &name})
	require.NoError(t, err)
	require.Equal(t, 7, snap.Config.TotalRounds)
	require.Equal(t, "renamed", snap.Config.Name)
	require.Len(t, sink.byType(EventSettingsUpdated), 1)

	// Non-host cannot edit settings.
	_, err = r.UpdateSettings(ids[1], SettingsUpdate{TotalRounds: &rounds})
	require.True(t, IsCode(err, CodeUnauthorized))

	// Invalid values leave the previous configuration untouched.
	bad := 99
	_, err = r.UpdateSettings(ids[0], SettingsUpdate{TotalRounds: &bad})
	require.True(t, IsCode(err, CodePreconditionFailed))
	require.Equal(t, 7, r.Snapshot().Config.TotalRounds)
}

func TestCancel(t *testing.T) {
	r, ids, sink := newTestRoom(t, testConfig(), 3)

	_, err := r.Cancel(ids[1])
	require.True(t, IsCode(err, CodeUnauthorized))

	snap, err := r.Cancel(ids[0])
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, snap.Status)
	require.Len(t, sink.byType(EventGameCancelled), 1)

	// Terminal: no further cancel, join or start.
	_, err = r.Cancel(ids[0])
	require.True(t, IsCode(err, CodeInvalidPhase))
	_, err = r.Join(uuid.New(), "late", "")
	require.True(t, IsCode(err, CodeConflict))
}

func TestCancelMidRoundLeavesNoResults(t *testing.T) {
	r, ids, _ := startedRoom(t, 3)

	snap, err := r.Cancel(ids[0])
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, snap.Status)
	require.Equal(t, PhaseFinished, snap.Round.Phase)
	require.Nil(t, snap.Round.Result)

	// The round was never resolved, so the reveal is a typed error.
	_, err = r.Results()
	require.True(t, IsCode(err, CodeInvalidPhase))
}
