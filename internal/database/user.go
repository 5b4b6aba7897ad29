// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/auth"
	"github.com/linguahub/backend/internal/models"
)

const userColumns = `id, full_name, email, password, bio, profile_pic,
	native_language, learning_language, location, is_onboarded,
	created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Password, &u.Bio, &u.ProfilePic,
		&u.NativeLanguage, &u.LearningLanguage, &u.Location, &u.IsOnboarded,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreateUser hashes the password and inserts the user, generating an id when
// none is set. Duplicate email or full name surfaces as Conflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.HashPassword(user.Password, auth.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, full_name, email, password, bio, profile_pic,
	        native_language, learning_language, location, is_onboarded)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	      RETURNING created_at, updated_at`

	err = s.tx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q,
			user.ID, user.FullName, user.Email, user.Password, user.Bio,
			user.ProfilePic, user.NativeLanguage, user.LearningLanguage,
			user.Location, user.IsOnboarded,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return apperr.Conflict("Email already exists, please use another email")
			}
			return apperr.Conflict("A user with this name already exists")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

// AuthenticateUser verifies the credentials and returns the user. The same
// Unauthorized error covers an unknown email and a wrong password.
func (s *Store) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	invalid := apperr.New(apperr.CodeUnauthorized, "Invalid email or password")

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, invalid
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return nil, invalid
	}
	return user, nil
}

// UpdateOnboarding writes the profile attributes and flips the onboarded
// flag, returning the updated record.
func (s *Store) UpdateOnboarding(ctx context.Context, id uuid.UUID, attrs models.OnboardingAttrs) (*models.User, error) {
	q := `UPDATE users
	      SET full_name=$2, bio=$3, native_language=$4, learning_language=$5,
	          location=$6, is_onboarded=TRUE, updated_at=NOW()
	      WHERE id=$1
	      RETURNING ` + userColumns

	var user *models.User
	err := s.tx(ctx, func(tx pgx.Tx) error {
		var scanErr error
		user, scanErr = scanUser(tx.QueryRow(ctx, q,
			id, attrs.FullName, attrs.Bio, attrs.NativeLanguage,
			attrs.LearningLanguage, attrs.Location,
		))
		return scanErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("A user with this name already exists")
		}
		return nil, err
	}
	return user, nil
}

// Recommend returns all onboarded users except the caller and the caller's
// friends. Filter only; no ranking.
func (s *Store) Recommend(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	q := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id <> $1
		  AND u.is_onboarded
		  AND NOT EXISTS (
		      SELECT 1 FROM friendships f
		      WHERE f.user_id = $1 AND f.friend_id = u.id
		  )
		ORDER BY u.created_at
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListFriends expands the caller's friends set to public profiles.
func (s *Store) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicProfile, error) {
	q := `
		SELECT u.id, u.full_name, u.profile_pic, u.native_language, u.learning_language
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.full_name
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	var friends []models.PublicProfile
	for rows.Next() {
		var p models.PublicProfile
		if err := rows.Scan(&p.ID, &p.FullName, &p.ProfilePic, &p.NativeLanguage, &p.LearningLanguage); err != nil {
			return nil, fmt.Errorf("failed to scan friend profile: %w", err)
		}
		friends = append(friends, p)
	}
	return friends, rows.Err()
}

// AreFriends reports whether b is in a's friends set. Friendship rows are
// written symmetrically, so one direction suffices.
func (s *Store) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2)`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query friendship: %w", err)
	}
	return exists, nil
}
