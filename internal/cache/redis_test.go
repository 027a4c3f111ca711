// internal/cache/redis_test.go
package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/numberhunt/server/internal/game"
)

func TestRoomEventRecordWireFormat(t *testing.T) {
	roomID := uuid.New()
	actorID := uuid.New()
	ev := game.Event{
		Seq:       7,
		RoomID:    roomID,
		Type:      game.EventVoteSubmitted,
		ActorID:   actorID,
		Payload:   map[string]interface{}{"round_number": 2},
		Timestamp: time.Unix(1700000000, 0),
	}

	record := RoomEventRecord{
		RoomID:    ev.RoomID.String(),
		Seq:       ev.Seq,
		EventType: string(ev.Type),
		ActorID:   ev.ActorID.String(),
		Payload:   ev.Payload,
		Timestamp: ev.Timestamp.Unix(),
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, roomID.String(), decoded["room_id"])
	require.Equal(t, "vote_submitted", decoded["event_type"])
	require.Equal(t, actorID.String(), decoded["actor_id"])
	require.EqualValues(t, 1700000000, decoded["timestamp"])
}

// Integration path; needs a reachable Redis instance.
func TestPublishRoomEvent(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("requires a running redis; set REDIS_ADDR")
	}
	require.NoError(t, ConnectRedis())
	defer Rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ev := game.Event{
		Seq:       1,
		RoomID:    uuid.New(),
		Type:      game.EventRoomCreated,
		Timestamp: time.Now(),
	}
	require.NoError(t, PublishRoomEvent(ctx, ev))

	data, err := Rdb.RPop(ctx, DefaultQueueName).Bytes()
	require.NoError(t, err)
	var record RoomEventRecord
	require.NoError(t, json.Unmarshal(data, &record))
	require.Equal(t, ev.RoomID.String(), record.RoomID)
	require.Empty(t, record.ActorID)
}
