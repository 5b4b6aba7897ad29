// internal/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/linguahub/backend/internal/models"
)

// handleRecommend returns onboarded users the caller could befriend.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	users, err := s.Directory.Recommend(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

// handleFriends returns the caller's friends as public profiles.
func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	friends, err := s.Directory.Friends(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if friends == nil {
		friends = []models.PublicProfile{}
	}
	s.writeJSON(w, http.StatusOK, friends)
}

// handleFriendRequests returns pending requests addressed to the caller and
// accepted requests the caller sent.
func (s *Server) handleFriendRequests(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	incoming, accepted, err := s.Engine.IncomingAndAccepted(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if incoming == nil {
		incoming = []models.FriendRequestView{}
	}
	if accepted == nil {
		accepted = []models.FriendRequestView{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"incomingReqs": incoming,
		"acceptedReqs": accepted,
	})
}

// handleOutgoing returns the caller's pending sent requests.
func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	outgoing, err := s.Engine.Outgoing(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if outgoing == nil {
		outgoing = []models.FriendRequestView{}
	}
	s.writeJSON(w, http.StatusOK, outgoing)
}
