// internal/handlers/api_server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/auth"
	"github.com/linguahub/backend/internal/directory"
	"github.com/linguahub/backend/internal/middleware"
	"github.com/linguahub/backend/internal/models"
	"github.com/linguahub/backend/internal/relationship"
)

// AccountStore covers the user operations the auth handlers and the session
// guard call directly.
type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenMinter issues provider access tokens for the chat/video widgets.
type TokenMinter interface {
	MintToken(userID string) (string, error)
}

// Server holds every collaborator the HTTP layer needs, constructed once in
// main and injected here.
type Server struct {
	Log        *logrus.Logger
	Accounts   AccountStore
	Engine     *relationship.Engine
	Directory  *directory.Directory
	Tokens     TokenMinter
	CORSOrigin string
}

// Routes builds the chi router: open auth endpoints, then the
// credential-guarded user and chat groups.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(s.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireUser)
			r.Post("/onboarding", s.handleOnboarding)
			r.Get("/me", s.handleMe)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(s.RequireUser)
		r.Get("/", s.handleRecommend)
		r.Get("/friends", s.handleFriends)
		r.Get("/friend-requests", s.handleFriendRequests)
		r.Get("/outgoing-friend-requests", s.handleOutgoing)
		r.Post("/friend-request/{id}", s.handleSendRequest)
		r.Put("/friend-request/{id}/accept", s.handleAcceptRequest)
	})

	r.Route("/chat", func(r chi.Router) {
		r.Use(s.RequireUser)
		r.Get("/token", s.handleChatToken)
	})

	return r
}

type ctxKey int

const userKey ctxKey = 0

// RequireUser is the session guard: it verifies the session cookie, resolves
// it to a directory entry, and stores the user on the request context.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			s.writeError(w, apperr.New(apperr.CodeUnauthorized, "Unauthorized - No token provided"))
			return
		}

		userIDStr, err := auth.AuthenticateJWT(c.Value)
		if err != nil {
			s.writeError(w, apperr.New(apperr.CodeUnauthorized, "Unauthorized - Invalid token"))
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			s.writeError(w, apperr.New(apperr.CodeUnauthorized, "Unauthorized - Invalid token"))
			return
		}

		user, err := s.Accounts.GetUserByID(r.Context(), userID)
		if err != nil {
			s.writeError(w, apperr.New(apperr.CodeUnauthorized, "Unauthorized - User not found"))
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the user the session guard resolved.
func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.WithError(err).Error("failed to write response")
	}
}

// writeError translates a taxonomy error into its response. Anything outside
// the taxonomy is logged and surfaced as a generic 500 so internals never
// leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)

	body := map[string]any{"message": "Internal Server Error"}
	if ae, ok := apperr.AsError(err); ok && ae.Code != apperr.CodeInternal {
		body["message"] = ae.Message
		if len(ae.Missing) > 0 {
			body["missingFields"] = ae.Missing
		}
	}
	if status >= 500 {
		s.Log.WithError(err).Error("request failed")
	}

	s.writeJSON(w, status, body)
}
