// internal/database/friend.go
package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/models"
)

// canonicalPair orders two user ids so the same unordered pair always maps
// to the same (lo, hi) key. The unique constraint rides on these columns.
func canonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

// InsertFriendRequest creates a pending request. A unique violation on the
// canonical pair means a request already exists in either direction,
// including one inserted by a concurrent call that won the race.
func (s *Store) InsertFriendRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request id: %w", err)
	}
	lo, hi := canonicalPair(sender, recipient)

	req := &models.FriendRequest{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Status:      models.RequestPending,
	}

	q := `INSERT INTO friend_requests (id, sender_id, recipient_id, status, pair_lo, pair_hi)
	      VALUES ($1, $2, $3, $4, $5, $6)
	      RETURNING created_at, updated_at`

	err = s.tx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, req.ID, sender, recipient, req.Status, lo, hi).
			Scan(&req.CreatedAt, &req.UpdatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("A friend request already exists between you and this user")
		}
		return nil, fmt.Errorf("failed to insert friend request: %w", err)
	}
	return req, nil
}

func (s *Store) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	q := `SELECT id, sender_id, recipient_id, status, created_at, updated_at
	      FROM friend_requests WHERE id=$1`

	var r models.FriendRequest
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Friend request not found")
		}
		return nil, fmt.Errorf("failed to query friend request: %w", err)
	}
	return &r, nil
}

// FindRequestBetween returns the request for the unordered pair (a, b) in
// either direction and any status, or nil when none exists.
func (s *Store) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error) {
	lo, hi := canonicalPair(a, b)
	q := `SELECT id, sender_id, recipient_id, status, created_at, updated_at
	      FROM friend_requests WHERE pair_lo=$1 AND pair_hi=$2`

	var r models.FriendRequest
	err := s.pool.QueryRow(ctx, q, lo, hi).Scan(
		&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query friend request pair: %w", err)
	}
	return &r, nil
}

// AcceptFriendRequest marks the request accepted and inserts both friendship
// rows in a single transaction, so the symmetry invariant holds even across
// a crash. The inserts are idempotent; re-accepting is a harmless no-op.
func (s *Store) AcceptFriendRequest(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(tx pgx.Tx) error {
		var sender, recipient uuid.UUID
		q := `UPDATE friend_requests
		      SET status=$2, updated_at=NOW()
		      WHERE id=$1
		      RETURNING sender_id, recipient_id`
		err := tx.QueryRow(ctx, q, id, models.RequestAccepted).Scan(&sender, &recipient)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Friend request not found")
			}
			return fmt.Errorf("failed to accept friend request: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO friendships (user_id, friend_id)
			VALUES ($1, $2), ($2, $1)
			ON CONFLICT DO NOTHING
		`, sender, recipient)
		if err != nil {
			return fmt.Errorf("failed to insert friendship rows: %w", err)
		}
		return nil
	})
}

// request list queries differ only in the filter and which side gets
// expanded; queryRequestViews handles the shared shape.
func (s *Store) queryRequestViews(ctx context.Context, q string, userID uuid.UUID, senderSide bool) ([]models.FriendRequestView, error) {
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	defer rows.Close()

	var views []models.FriendRequestView
	for rows.Next() {
		var v models.FriendRequestView
		var p models.PublicProfile
		err := rows.Scan(
			&v.ID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&p.ID, &p.FullName, &p.ProfilePic, &p.NativeLanguage, &p.LearningLanguage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request view: %w", err)
		}
		if senderSide {
			v.Sender = &p
		} else {
			v.Recipient = &p
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ListIncoming returns pending requests addressed to userID, expanded with
// the sender's profile.
func (s *Store) ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	q := `
		SELECT r.id, r.status, r.created_at, r.updated_at,
		       u.id, u.full_name, u.profile_pic, u.native_language, u.learning_language
		FROM friend_requests r
		JOIN users u ON u.id = r.sender_id
		WHERE r.recipient_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at
	`
	return s.queryRequestViews(ctx, q, userID, true)
}

// ListAcceptedFrom returns accepted requests that userID originally sent,
// expanded with the recipient's profile. Accepted requests where the user
// was the recipient are not surfaced here; the one-directional view mirrors
// the product behavior.
func (s *Store) ListAcceptedFrom(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	q := `
		SELECT r.id, r.status, r.created_at, r.updated_at,
		       u.id, u.full_name, u.profile_pic, u.native_language, u.learning_language
		FROM friend_requests r
		JOIN users u ON u.id = r.recipient_id
		WHERE r.sender_id = $1 AND r.status = 'accepted'
		ORDER BY r.updated_at
	`
	return s.queryRequestViews(ctx, q, userID, false)
}

// ListOutgoing returns pending requests userID has sent, expanded with the
// recipient's profile.
func (s *Store) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestView, error) {
	q := `
		SELECT r.id, r.status, r.created_at, r.updated_at,
		       u.id, u.full_name, u.profile_pic, u.native_language, u.learning_language
		FROM friend_requests r
		JOIN users u ON u.id = r.recipient_id
		WHERE r.sender_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at
	`
	return s.queryRequestViews(ctx, q, userID, false)
}
