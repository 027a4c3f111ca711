// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/numberhunt/server/internal/auth"
	"github.com/numberhunt/server/internal/game"
)

// CreateRoomHandler ephemeral: no DB writes, just an in-memory room. The
// creator becomes host and is seated immediately.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostID, err := playerFromRequest(r)
		if err != nil {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}

		req := struct {
			game.RoomConfig
			Nickname   string `json:"nickname"`
			Passphrase string `json:"passphrase"`
		}{RoomConfig: game.DefaultConfig()}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad room request payload", http.StatusBadRequest)
			return
		}
		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" {
			http.Error(w, "nickname is required", http.StatusBadRequest)
			return
		}

		cfg := req.RoomConfig
		if req.Passphrase != "" {
			hash, err := auth.CreateHash(req.Passphrase, auth.Params)
			if err != nil {
				http.Error(w, "failed to hash passphrase", http.StatusInternalServerError)
				return
			}
			cfg.Private = true
			cfg.PassphraseHash = hash
		}

		room, err := rs.Rooms.CreateRoom(cfg, hostID, req.Nickname)
		if err != nil {
			writeGameError(w, err)
			return
		}

		rs.Logf("room %v created by %v (code %s)", room.ID, hostID, room.Code)
		writeJSON(w, http.StatusOK, room.Snapshot())
	}
}

// ListRoomsHandler returns snapshots of joinable public rooms.
func ListRoomsHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := playerFromRequest(r); err != nil {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, rs.Rooms.List(false))
	}
}

// JoinByCodeHandler resolves a six-character join code and seats the player.
func JoinByCodeHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := playerFromRequest(r)
		if err != nil {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}

		var req struct {
			Code       string `json:"code"`
			Nickname   string `json:"nickname"`
			Passphrase string `json:"passphrase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad join request payload", http.StatusBadRequest)
			return
		}

		room, ok := rs.Rooms.GetByCode(req.Code)
		if !ok {
			http.Error(w, "unknown room code", http.StatusNotFound)
			return
		}

		snap, err := room.Join(playerID, strings.TrimSpace(req.Nickname), req.Passphrase)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
