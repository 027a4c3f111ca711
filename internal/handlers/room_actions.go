// internal/handlers/room_actions.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/numberhunt/server/internal/game"
)

// RoomActionHandler dispatches everything under /rooms/{room_id}[/{action}].
//
//	GET  /rooms/{id}           room snapshot
//	GET  /rooms/{id}/round     requesting player's view of the live round
//	GET  /rooms/{id}/results   revealed answers and scores of the latest round
//	GET  /rooms/{id}/events    event log slice (?after=N&limit=M)
//	POST /rooms/{id}/join      seat the player (or rejoin a kept slot)
//	POST /rooms/{id}/leave     give up the seat permanently
//	POST /rooms/{id}/ready     toggle the ready flag
//	POST /rooms/{id}/start     host starts the game (draws round one)
//	POST /rooms/{id}/answer    submit a numeric answer
//	POST /rooms/{id}/voting    cut discussion short, open voting
//	POST /rooms/{id}/vote      accuse a player
//	POST /rooms/{id}/advance   leave results, begin next round or finish
//	POST /rooms/{id}/cancel    host aborts the session
//	PUT  /rooms/{id}/settings  host edits configuration while waiting
func RoomActionHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := playerFromRequest(r)
		if err != nil {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rooms/"), "/")
		if len(parts) < 1 || parts[0] == "" {
			http.Error(w, "missing room_id", http.StatusBadRequest)
			return
		}
		roomID, err := uuid.Parse(parts[0])
		if err != nil {
			http.Error(w, "invalid room_id", http.StatusBadRequest)
			return
		}
		room, ok := rs.Rooms.Get(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		action := ""
		if len(parts) > 1 {
			action = parts[1]
		}

		if r.Method == http.MethodGet {
			handleRoomGet(w, r, room, playerID, action)
			return
		}
		if r.Method == http.MethodPut && action == "settings" {
			var upd game.SettingsUpdate
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				http.Error(w, "bad settings payload", http.StatusBadRequest)
				return
			}
			snap, err := room.UpdateSettings(playerID, upd)
			respond(w, snap, err)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		switch action {
		case "join":
			var req struct {
				Nickname   string `json:"nickname"`
				Passphrase string `json:"passphrase"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
				http.Error(w, "bad join payload", http.StatusBadRequest)
				return
			}
			snap, err := room.Join(playerID, strings.TrimSpace(req.Nickname), req.Passphrase)
			respond(w, snap, err)
		case "leave":
			snap, err := room.Leave(playerID)
			respond(w, snap, err)
		case "ready":
			snap, err := room.ToggleReady(playerID)
			respond(w, snap, err)
		case "start":
			snap, err := room.Start(r.Context(), playerID)
			respond(w, snap, err)
		case "answer":
			var req struct {
				Value int `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad answer payload", http.StatusBadRequest)
				return
			}
			snap, err := room.SubmitAnswer(playerID, req.Value)
			respond(w, snap, err)
		case "voting":
			snap, err := room.StartVoting(playerID)
			respond(w, snap, err)
		case "vote":
			var req struct {
				AccusedID uuid.UUID `json:"accused_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad vote payload", http.StatusBadRequest)
				return
			}
			snap, err := room.SubmitVote(playerID, req.AccusedID)
			respond(w, snap, err)
		case "advance":
			snap, err := room.Advance(r.Context(), playerID)
			respond(w, snap, err)
		case "cancel":
			snap, err := room.Cancel(playerID)
			respond(w, snap, err)
		default:
			http.Error(w, "unknown room action", http.StatusNotFound)
		}
	}
}

// handleRoomGet serves the read-only room views.
func handleRoomGet(w http.ResponseWriter, r *http.Request, room *game.Room, playerID uuid.UUID, view string) {
	switch view {
	case "":
		writeJSON(w, http.StatusOK, room.Snapshot())
	case "round":
		info, err := room.PlayerRoundInfo(playerID)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	case "results":
		res, err := room.Results()
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "events":
		after, _ := strconv.ParseUint(r.URL.Query().Get("after"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, room.EventsSince(after, limit))
	default:
		http.Error(w, "unknown room view", http.StatusNotFound)
	}
}

// respond writes either the snapshot or the mapped game error.
func respond(w http.ResponseWriter, snap game.Snapshot, err error) {
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
