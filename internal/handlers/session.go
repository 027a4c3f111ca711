// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/numberhunt/server/internal/auth"
)

// GuestSessionHandler mints an ephemeral player identity. No account, no DB
// write: the response carries a fresh player id and a signed session token,
// which is also set as a cookie for subsequent requests.
func GuestSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Nickname string `json:"nickname"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			http.Error(w, "bad session request payload", http.StatusBadRequest)
			return
		}
		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" || len(req.Nickname) > 32 {
			http.Error(w, "nickname must be 1-32 characters", http.StatusBadRequest)
			return
		}

		playerID := uuid.New()
		token, err := auth.CreateSessionToken(playerID.String())
		if err != nil {
			http.Error(w, "failed to create session token", http.StatusInternalServerError)
			return
		}

		cookie := fmt.Sprintf("session_token=%s; Path=/; HttpOnly; SameSite=Lax", token)
		if auth.TOKEN_EXPIRE_TIME_SEC > 0 {
			cookie += fmt.Sprintf("; Max-Age=%d", auth.TOKEN_EXPIRE_TIME_SEC)
		}
		w.Header().Set("Set-Cookie", cookie)

		writeJSON(w, http.StatusOK, map[string]string{
			"player_id":     playerID.String(),
			"nickname":      req.Nickname,
			"session_token": token,
		})
	}
}
