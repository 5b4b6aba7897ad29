// Package relationship mediates the friend-request lifecycle between exactly
// two users: request validity, the single pending -> accepted transition, and
// the symmetric friends update on acceptance.
package relationship

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/models"
)

// UserStore is the slice of the user directory the engine needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// RequestStore persists friend requests. InsertFriendRequest must enforce
// at-most-one request per unordered pair (a duplicate insert fails with
// Conflict), and AcceptFriendRequest must apply the status change and both
// friendship rows atomically.
type RequestStore interface {
	InsertFriendRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error)
	GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error)
	FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, id uuid.UUID) error
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error)
	ListAcceptedFrom(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error)
}

type Engine struct {
	users    UserStore
	requests RequestStore
	log      *logrus.Logger
}

func NewEngine(users UserStore, requests RequestStore, log *logrus.Logger) *Engine {
	return &Engine{users: users, requests: requests, log: log}
}

// SendRequest creates a pending request from sender to recipient.
//
// The early guards (already friends, request already exists) give callers a
// precise error message; the storage-level pair constraint is what actually
// closes the race between two concurrent sends.
func (e *Engine) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, apperr.Invalid("You can't send a friend request to yourself")
	}

	recipient, err := e.users.GetUserByID(ctx, recipientID)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.NotFound("Recipient not found")
		}
		return nil, err
	}

	friends, err := e.users.AreFriends(ctx, recipientID, senderID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperr.Conflict("You are already friends with this user")
	}

	existing, err := e.requests.FindRequestBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("A friend request already exists between you and this user")
	}

	req, err := e.requests.InsertFriendRequest(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"request":   req.ID,
		"sender":    senderID,
		"recipient": recipient.ID,
	}).Info("friend request sent")
	return req, nil
}

// AcceptRequest transitions a request to accepted and makes the friendship
// mutual. Only the recipient may accept. Accepting an already-accepted
// request is tolerated: the status write is redundant and the friendship
// inserts are idempotent.
func (e *Engine) AcceptRequest(ctx context.Context, requestID, actingUserID uuid.UUID) error {
	req, err := e.requests.GetFriendRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if req.RecipientID != actingUserID {
		return apperr.Forbidden("You are not authorized to accept this request")
	}

	if err := e.requests.AcceptFriendRequest(ctx, requestID); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"request":   requestID,
		"sender":    req.SenderID,
		"recipient": req.RecipientID,
	}).Info("friend request accepted")
	return nil
}

// IncomingAndAccepted returns pending requests addressed to the user (with
// sender profiles) and accepted requests the user originally sent (with
// recipient profiles).
func (e *Engine) IncomingAndAccepted(ctx context.Context, userID uuid.UUID) (incoming, accepted []models.FriendRequestView, err error) {
	incoming, err = e.requests.ListIncoming(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	accepted, err = e.requests.ListAcceptedFrom(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return incoming, accepted, nil
}

// Outgoing returns the user's pending sent requests with recipient profiles.
func (e *Engine) Outgoing(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	return e.requests.ListOutgoing(ctx, userID)
}
