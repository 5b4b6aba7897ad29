package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory entry for one learner. Password holds the encoded
// Argon2id hash and is never serialized.
type User struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Password string    `json:"-"`

	Bio              string `json:"bio"`
	ProfilePic       string `json:"profilePic"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
	IsOnboarded      bool   `json:"isOnboarded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OnboardingAttrs are the profile fields a user must complete before they
// appear in recommendations. All five are required.
type OnboardingAttrs struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

// PublicProfile is the subset of user fields exposed to other users
// (friend lists, request expansions, recommendations).
type PublicProfile struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"fullName"`
	ProfilePic       string    `json:"profilePic"`
	NativeLanguage   string    `json:"nativeLanguage"`
	LearningLanguage string    `json:"learningLanguage"`
}

// Public projects a full user record down to its shareable fields.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
	}
}
