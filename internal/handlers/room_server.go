// internal/handlers/room_server.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/numberhunt/server/internal/auth"
	"github.com/numberhunt/server/internal/game"
)

// RoomServer is the high-level struct behind every HTTP and WebSocket
// handler. It holds the in-memory room registry and the hub that fans
// room events out to subscribed sockets.
type RoomServer struct {
	Rooms *game.RoomStore
	Hub   *Hub
	Logf  func(f string, v ...interface{})
}

// NewRoomServer wires a registry around the given question pool. The
// registry's event sink pushes every event into the hub; callers can chain
// additional sinks (e.g. the queue publisher) via extra.
func NewRoomServer(pool game.QuestionPool, extra game.EventSink) *RoomServer {
	hub := NewHub()
	sink := func(ev game.Event) {
		hub.Broadcast(ev)
		if extra != nil {
			extra(ev)
		}
	}
	verify := game.PassphraseVerifier(auth.ComparePassphraseAndHash)
	return &RoomServer{
		Rooms: game.NewRoomStore(pool, verify, sink, nil),
		Hub:   hub,
		Logf:  log.Printf,
	}
}

// playerFromRequest authenticates the session_token cookie and returns the
// player id embedded in it.
func playerFromRequest(r *http.Request) (uuid.UUID, error) {
	cookie := r.Header.Get("Cookie")
	if !strings.Contains(cookie, "session_token=") {
		return uuid.Nil, errMissingSession
	}
	token := extractCookieToken(cookie, "session_token")
	playerIDStr, err := auth.AuthenticateSessionToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(playerIDStr)
}

var errMissingSession = &sessionError{"missing session_token"}

type sessionError struct{ msg string }

func (e *sessionError) Error() string { return e.msg }

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeGameError maps a typed game error to its HTTP status and emits a
// JSON body carrying the machine-readable code.
func writeGameError(w http.ResponseWriter, err error) {
	code := game.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case game.CodeNotFound:
		status = http.StatusNotFound
	case game.CodeInvalidPhase, game.CodeConflict:
		status = http.StatusConflict
	case game.CodePreconditionFailed:
		status = http.StatusPreconditionFailed
	case game.CodeResourceExhausted:
		status = http.StatusServiceUnavailable
	case game.CodeUnauthorized:
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}
