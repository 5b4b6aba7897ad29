// Package memstore is an in-memory implementation of the storage interfaces,
// used as a test double for the engine, directory, and HTTP handlers. It
// mirrors the database semantics that matter to callers: the unordered-pair
// uniqueness constraint on requests and the atomic symmetric friendship
// insert on acceptance.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/models"
)

type pairKey struct{ lo, hi uuid.UUID }

func keyFor(a, b uuid.UUID) pairKey {
	if a.String() < b.String() {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	friends  map[uuid.UUID]map[uuid.UUID]bool
	requests map[uuid.UUID]*models.FriendRequest
	pairs    map[pairKey]uuid.UUID
}

func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*models.User),
		friends:  make(map[uuid.UUID]map[uuid.UUID]bool),
		requests: make(map[uuid.UUID]*models.FriendRequest),
		pairs:    make(map[pairKey]uuid.UUID),
	}
}

// CreateUser stores the user as-is; unlike the database store it does not
// hash the password, so AuthenticateUser compares plaintext.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.Conflict("Email already exists, please use another email")
		}
		if u.FullName == user.FullName {
			return apperr.Conflict("A user with this name already exists")
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *Store) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeUnauthorized, "Invalid email or password")
}

func (s *Store) UpdateOnboarding(ctx context.Context, id uuid.UUID, attrs models.OnboardingAttrs) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	u.FullName = attrs.FullName
	u.Bio = attrs.Bio
	u.NativeLanguage = attrs.NativeLanguage
	u.LearningLanguage = attrs.LearningLanguage
	u.Location = attrs.Location
	u.IsOnboarded = true
	cp := *u
	return &cp, nil
}

func (s *Store) Recommend(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.User
	for id, u := range s.users {
		if id == userID || !u.IsOnboarded || s.friends[userID][id] {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.PublicProfile
	for id := range s.friends[userID] {
		if u, ok := s.users[id]; ok {
			out = append(out, u.Public())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Store) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends[a][b], nil
}

func (s *Store) InsertFriendRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(sender, recipient)
	if _, exists := s.pairs[key]; exists {
		return nil, apperr.Conflict("A friend request already exists between you and this user")
	}

	req := &models.FriendRequest{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Status:      models.RequestPending,
	}
	s.requests[req.ID] = req
	s.pairs[key] = req.ID
	cp := *req
	return &cp, nil
}

func (s *Store) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("Friend request not found")
	}
	cp := *r
	return &cp, nil
}

func (s *Store) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.pairs[keyFor(a, b)]
	if !ok {
		return nil, nil
	}
	cp := *s.requests[id]
	return &cp, nil
}

func (s *Store) AcceptFriendRequest(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return apperr.NotFound("Friend request not found")
	}
	r.Status = models.RequestAccepted

	if s.friends[r.SenderID] == nil {
		s.friends[r.SenderID] = make(map[uuid.UUID]bool)
	}
	if s.friends[r.RecipientID] == nil {
		s.friends[r.RecipientID] = make(map[uuid.UUID]bool)
	}
	s.friends[r.SenderID][r.RecipientID] = true
	s.friends[r.RecipientID][r.SenderID] = true
	return nil
}

func (s *Store) listViews(userID uuid.UUID, status string, incoming bool) []models.FriendRequestView {
	var out []models.FriendRequestView
	for _, r := range s.requests {
		if r.Status != status {
			continue
		}
		var counterpart uuid.UUID
		if incoming {
			if r.RecipientID != userID {
				continue
			}
			counterpart = r.SenderID
		} else {
			if r.SenderID != userID {
				continue
			}
			counterpart = r.RecipientID
		}

		v := models.FriendRequestView{
			ID:        r.ID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		if u, ok := s.users[counterpart]; ok {
			p := u.Public()
			if incoming {
				v.Sender = &p
			} else {
				v.Recipient = &p
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *Store) ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(userID, models.RequestPending, true), nil
}

func (s *Store) ListAcceptedFrom(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(userID, models.RequestAccepted, false), nil
}

func (s *Store) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(userID, models.RequestPending, false), nil
}
