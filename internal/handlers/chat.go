// internal/handlers/chat.go
package handlers

import (
	"net/http"

	"github.com/linguahub/backend/internal/apperr"
)

// handleChatToken mints an access token for the external chat/video provider
// so the client widgets can connect as the caller.
func (s *Server) handleChatToken(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	token, err := s.Tokens.MintToken(user.ID.String())
	if err != nil {
		s.writeError(w, apperr.Internal(err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
