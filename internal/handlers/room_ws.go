// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/numberhunt/server/internal/game"
	"github.com/numberhunt/server/internal/middleware"
)

// RoomWSHandler streams a room's event log to the client over a WebSocket.
// Connecting marks a seated member as reconnected; the socket closing marks
// them disconnected (their slot is kept for the rejoin window). Missed
// events can be recovered via GET /rooms/{id}/events using sequence numbers.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rooms/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing room_id", http.StatusBadRequest)
			return
		}
		roomID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid room_id", http.StatusBadRequest)
			return
		}

		playerID, err := playerFromRequest(r)
		if err != nil {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}

		room, exists := rs.Rooms.Get(roomID)
		if !exists {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"numberhunt"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "numberhunt" {
			c.Close(BadSubprotocolError, "client must speak the numberhunt subprotocol")
			return
		}

		middleware.LogWebSocketConnect(logger, remoteAddr, roomID.String())

		// A seated member opening the socket counts as presence.
		if _, err := room.Reconnect(playerID); err != nil && !game.IsCode(err, game.CodeConflict) {
			logger.Warnf("reconnect for %v in room %v: %v", playerID, roomID, err)
		}

		sub := rs.Hub.Subscribe(roomID, playerID)
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go roomEventWritePump(ctx, c, sub, logger)

		// Block reading until the client goes away. Clients send nothing of
		// consequence on this socket; all mutations go over HTTP.
		var readErr error
		for {
			if _, _, readErr = c.Read(ctx); readErr != nil {
				break
			}
		}
		cancel()

		rs.Hub.Unsubscribe(roomID, sub)
		if _, err := room.Disconnect(playerID); err != nil && !game.IsCode(err, game.CodeNotFound) {
			logger.Warnf("disconnect for %v in room %v: %v", playerID, roomID, err)
		}
		middleware.LogWebSocketDisconnect(logger, remoteAddr, roomID.String(), readErr)
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}

// roomEventWritePump pushes hub events to one socket until the context ends
// or the subscriber channel closes.
func roomEventWritePump(ctx context.Context, c *websocket.Conn, sub *Subscriber, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal event %d: %v", ev.Seq, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Debugf("ws write failed: %v", err)
				return
			}
		}
	}
}
