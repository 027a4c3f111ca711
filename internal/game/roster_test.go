// internal/game/roster_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAssignsMonotonicSeats(t *testing.T) {
	r, ids, sink := newTestRoom(t, testConfig(), 4)

	snap := r.Snapshot()
	require.Len(t, snap.Players, 4)
	for i, p := range snap.Players {
		assert.Equal(t, i, p.Seat)
		assert.Equal(t, ids[i], p.ID)
	}
	require.Len(t, sink.byType(EventPlayerJoined), 3)
}

func TestJoinDuplicateRejected(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 2)

	_, err := r.Join(ids[1], "again", "")
	require.True(t, IsCode(err, CodeConflict))
}

func TestJoinFullRoomRejected(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 3
	r, _, _ := newTestRoom(t, cfg, 3)

	_, err := r.Join(uuid.New(), "fourth", "")
	require.True(t, IsCode(err, CodeConflict))
}

func TestJoinWithPassphrase(t *testing.T) {
	cfg := testConfig()
	cfg.Private = true
	cfg.PassphraseHash = "hunter2" // nil verifier compares plainly
	r, _, _ := newTestRoom(t, cfg, 1)

	_, err := r.Join(uuid.New(), "guesser", "wrong")
	require.True(t, IsCode(err, CodeUnauthorized))

	_, err = r.Join(uuid.New(), "friend", "hunter2")
	require.NoError(t, err)
}

func TestLeaveTransfersHostToEarliestSeat(t *testing.T) {
	r, ids, sink := newTestRoom(t, testConfig(), 3)

	snap, err := r.Leave(ids[0])
	require.NoError(t, err)
	require.Equal(t, ids[1], snap.HostID)
	require.Len(t, snap.Players, 2)
	require.True(t, snap.Players[0].Host)
	require.Len(t, sink.byType(EventHostTransferred), 1)
}

func TestLeaveLastMemberFiresOnEmpty(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 2)

	var emptied []uuid.UUID
	r.OnEmpty = func(id uuid.UUID) { emptied = append(emptied, id) }

	_, err := r.Leave(ids[1])
	require.NoError(t, err)
	require.Empty(t, emptied)

	_, err = r.Leave(ids[0])
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{r.ID}, emptied)
}

func TestLeaveIsPermanent(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 3)

	_, err := r.Leave(ids[2])
	require.NoError(t, err)

	// The slot is gone entirely, so acting on the room fails as not-found.
	_, err = r.ToggleReady(ids[2])
	require.True(t, IsCode(err, CodeNotFound))

	// While waiting, the player can come back, but as a brand-new member.
	snap, err := r.Join(ids[2], "fresh", "")
	require.NoError(t, err)
	require.Equal(t, 3, snap.PlayerCount)
	require.Equal(t, 3, snap.Players[2].Seat) // seats are never reused
}

func TestDisconnectKeepsSlotAndReconnectRestoresIt(t *testing.T) {
	r, ids, sink := newTestRoom(t, testConfig(), 3)

	snap, err := r.Disconnect(ids[1])
	require.NoError(t, err)
	require.Equal(t, 3, snap.PlayerCount)
	require.Equal(t, 2, snap.ConnectedCount)

	snap, err = r.Reconnect(ids[1])
	require.NoError(t, err)
	require.Equal(t, 3, snap.ConnectedCount)
	require.Len(t, sink.byType(EventPlayerDisconnected), 1)
	require.Len(t, sink.byType(EventPlayerReconnected), 1)
}

func TestReconnectAfterRejoinWindowRejected(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 3)

	_, err := r.Disconnect(ids[1])
	require.NoError(t, err)

	// Move the clock past the rejoin window.
	r.now = func() time.Time { return time.Now().Add(rejoinWindow + time.Minute) }

	_, err = r.Reconnect(ids[1])
	require.True(t, IsCode(err, CodeConflict))

	// Join takes the same rejoin path for a kept slot.
	_, err = r.Join(ids[1], "", "")
	require.True(t, IsCode(err, CodeConflict))
}

func TestRejoinDisabledByConfig(t *testing.T) {
	cfg := testConfig()
	cfg.AllowRejoin = false
	r, ids, _ := newTestRoom(t, cfg, 3)

	_, err := r.Disconnect(ids[2])
	require.NoError(t, err)
	_, err = r.Reconnect(ids[2])
	require.True(t, IsCode(err, CodeConflict))
}

func TestCanStartQuorum(t *testing.T) {
	r, ids, _ := newTestRoom(t, testConfig(), 3)
	require.True(t, r.CanStart())

	// An unready member blocks the start.
	_, err := r.ToggleReady(ids[1])
	require.NoError(t, err)
	require.False(t, r.CanStart())
	_, err = r.ToggleReady(ids[1])
	require.NoError(t, err)
	require.True(t, r.CanStart())

	// Dropping below min connected blocks the start.
	_, err = r.Disconnect(ids[2])
	require.NoError(t, err)
	require.False(t, r.CanStart())
}

func TestAutoStartSkipsReadyChecks(t *testing.T) {
	cfg := testConfig()
	cfg.AutoStart = true
	r, ids, _ := newTestRoom(t, cfg, 3)

	_, err := r.ToggleReady(ids[1])
	require.NoError(t, err)
	require.True(t, r.CanStart())
}
