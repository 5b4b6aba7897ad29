package models

import (
	"time"

	"github.com/google/uuid"
)

// Friend request lifecycle. A request is created pending and transitions
// once, irreversibly, to accepted. There is no reject or withdraw.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// FriendRequest is a proposed relationship edge between two users.
type FriendRequest struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender"`
	RecipientID uuid.UUID `json:"recipient"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FriendRequestView is a request expanded with the counterpart's public
// profile. Incoming requests carry the sender, outgoing and accepted
// requests carry the recipient.
type FriendRequestView struct {
	ID        uuid.UUID      `json:"id"`
	Status    string         `json:"status"`
	Sender    *PublicProfile `json:"sender,omitempty"`
	Recipient *PublicProfile `json:"recipient,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
