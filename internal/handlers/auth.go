// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/auth"
	"github.com/linguahub/backend/internal/models"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignup creates a user with a generated placeholder avatar, queues a
// provider registry sync, and starts a session.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.Invalid("Invalid request payload"))
		return
	}

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		s.writeError(w, apperr.Invalid("All fields are required"))
		return
	}
	if len(req.Password) < 8 {
		s.writeError(w, apperr.Invalid("Password must be at least 8 characters long"))
		return
	}
	if !emailRegex.MatchString(req.Email) {
		s.writeError(w, apperr.Invalid("Invalid email format"))
		return
	}

	user := models.User{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		ProfilePic: randomAvatar(),
	}
	if err := s.Accounts.CreateUser(r.Context(), &user); err != nil {
		s.writeError(w, err)
		return
	}

	// Best-effort: signup succeeds whether or not the provider sync lands.
	s.Directory.EnqueueSync(r.Context(), &user)

	if err := s.startSession(w, &user); err != nil {
		s.writeError(w, apperr.Internal(err))
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    user,
		"message": "User created successfully",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.Invalid("Invalid request payload"))
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, apperr.Invalid("All fields are required"))
		return
	}

	user, err := s.Accounts.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.startSession(w, user); err != nil {
		s.writeError(w, apperr.Internal(err))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"message": "User logged in successfully",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User logged out successfully",
	})
}

// handleOnboarding completes the caller's profile.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var attrs models.OnboardingAttrs
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		s.writeError(w, apperr.Invalid("Invalid request payload"))
		return
	}

	updated, err := s.Directory.Onboard(r.Context(), user.ID, attrs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile onboarded successfully",
		"user":    updated,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    currentUser(r),
	})
}

// startSession mints a session JWT and sets it as an HttpOnly cookie.
func (s *Server) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := auth.CreateJWT(user.ID.String())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   auth.TokenExpireSec,
	})
	return nil
}

// randomAvatar picks one of the hosted placeholder portraits.
func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1)
}
