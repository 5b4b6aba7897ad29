// Package directory owns user profile operations: discovery, friend listing,
// and onboarding. Onboarding also pushes the updated profile toward the chat
// provider, best-effort.
package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/bridge"
	"github.com/linguahub/backend/internal/models"
)

// Store is the slice of storage the directory needs.
type Store interface {
	Recommend(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicProfile, error)
	UpdateOnboarding(ctx context.Context, id uuid.UUID, attrs models.OnboardingAttrs) (*models.User, error)
}

// SyncQueue enqueues provider registry updates.
type SyncQueue interface {
	EnqueueUpsert(ctx context.Context, job bridge.UpsertJob) error
}

type Directory struct {
	store Store
	sync  SyncQueue
	log   *logrus.Logger
}

func New(store Store, sync SyncQueue, log *logrus.Logger) *Directory {
	return &Directory{store: store, sync: sync, log: log}
}

// Recommend returns every onboarded user except the caller and the caller's
// friends. No ranking beyond the exclusion filter.
func (d *Directory) Recommend(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	return d.store.Recommend(ctx, userID)
}

// Friends returns the caller's friends as public profiles.
func (d *Directory) Friends(ctx context.Context, userID uuid.UUID) ([]models.PublicProfile, error) {
	return d.store.ListFriends(ctx, userID)
}

// Onboard validates and writes the profile attributes, flips the onboarded
// flag, and queues a provider sync. A sync enqueue failure is logged but
// does not fail the onboarding.
func (d *Directory) Onboard(ctx context.Context, userID uuid.UUID, attrs models.OnboardingAttrs) (*models.User, error) {
	var missing []string
	if attrs.FullName == "" {
		missing = append(missing, "fullName")
	}
	if attrs.Bio == "" {
		missing = append(missing, "bio")
	}
	if attrs.NativeLanguage == "" {
		missing = append(missing, "nativeLanguage")
	}
	if attrs.LearningLanguage == "" {
		missing = append(missing, "learningLanguage")
	}
	if attrs.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, apperr.Invalid("All fields are required", missing...)
	}

	user, err := d.store.UpdateOnboarding(ctx, userID, attrs)
	if err != nil {
		return nil, err
	}

	d.EnqueueSync(ctx, user)
	return user, nil
}

// EnqueueSync pushes the user's current profile toward the provider
// registry. Fire-and-forget with a logged failure.
func (d *Directory) EnqueueSync(ctx context.Context, user *models.User) {
	job := bridge.UpsertJob{
		User: bridge.UserUpsert{
			ID:    user.ID.String(),
			Name:  user.FullName,
			Image: user.ProfilePic,
		},
	}
	if err := d.sync.EnqueueUpsert(ctx, job); err != nil {
		d.log.WithError(err).WithField("user", user.ID).
			Warn("failed to queue provider sync")
	}
}
