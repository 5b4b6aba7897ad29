// internal/handlers/friend.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linguahub/backend/internal/apperr"
)

// handleSendRequest sends a friend request from the caller to the user named
// in the path.
func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperr.Invalid("Invalid recipient id"))
		return
	}

	req, err := s.Engine.SendRequest(r.Context(), user.ID, recipientID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, req)
}

// handleAcceptRequest accepts the friend request named in the path. Only the
// request's recipient may accept it.
func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperr.Invalid("Invalid request id"))
		return
	}

	if err := s.Engine.AcceptRequest(r.Context(), requestID, user.ID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Friend request accepted",
	})
}
