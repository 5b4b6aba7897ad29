// internal/relationship/engine_test.go
package relationship

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguahub/backend/internal/apperr"
	"github.com/linguahub/backend/internal/memstore"
	"github.com/linguahub/backend/internal/models"
)

func newTestEngine() (*Engine, *memstore.Store) {
	store := memstore.New()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewEngine(store, store, log), store
}

func addUser(t *testing.T, store *memstore.Store, name string) *models.User {
	t.Helper()
	u := &models.User{
		FullName:    name,
		Email:       name + "@example.com",
		Password:    "password123",
		IsOnboarded: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestSendRequestToSelf(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")

	_, err := e.SendRequest(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestSendRequestRecipientMissing(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")

	_, err := e.SendRequest(context.Background(), alice.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")

	req, err := e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, e.AcceptRequest(context.Background(), req.ID, bob.ID))

	// also exercises the existing-request guard ordering: already-friends
	// is checked first
	_, err = e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestSendRequestDuplicatePair(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")

	_, err := e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	// same direction
	_, err = e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	// reverse direction: Bob requesting Alice while Alice's request is
	// still pending must also conflict
	_, err = e.SendRequest(context.Background(), bob.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestAcceptRequestUnknownID(t *testing.T) {
	e, store := newTestEngine()
	addUser(t, store, "alice")

	err := e.AcceptRequest(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAcceptRequestOnlyRecipient(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")
	carol := addUser(t, store, "carol")

	req, err := e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	// neither the sender nor a third party may accept
	for _, id := range []uuid.UUID{alice.ID, carol.ID} {
		err := e.AcceptRequest(context.Background(), req.ID, id)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
	}
}

func TestAcceptRequestSymmetry(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")

	req, err := e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, e.AcceptRequest(context.Background(), req.ID, bob.ID))

	ab, err := store.AreFriends(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := store.AreFriends(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ab, "bob should be in alice's friends")
	assert.True(t, ba, "alice should be in bob's friends")

	stored, err := store.GetFriendRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, stored.Status)
}

func TestAcceptRequestIdempotent(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")

	req, err := e.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, e.AcceptRequest(context.Background(), req.ID, bob.ID))

	before, err := store.ListFriends(context.Background(), alice.ID)
	require.NoError(t, err)

	// re-accepting is a harmless no-op
	require.NoError(t, e.AcceptRequest(context.Background(), req.ID, bob.ID))

	after, err := store.ListFriends(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestRequestLifecycle walks the full Alice/Bob scenario: send, list
// incoming, accept, then verify the post-accept views.
func TestRequestLifecycle(t *testing.T) {
	e, store := newTestEngine()
	alice := addUser(t, store, "alice")
	bob := addUser(t, store, "bob")
	ctx := context.Background()

	req, err := e.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	outgoing, err := e.Outgoing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	require.NotNil(t, outgoing[0].Recipient)
	assert.Equal(t, "bob", outgoing[0].Recipient.FullName)

	incoming, accepted, err := e.IncomingAndAccepted(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Empty(t, accepted)
	require.NotNil(t, incoming[0].Sender)
	assert.Equal(t, "alice", incoming[0].Sender.FullName)

	require.NoError(t, e.AcceptRequest(ctx, req.ID, bob.ID))

	// request is no longer pending, so alice's outgoing view is empty
	outgoing, err = e.Outgoing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	// accepted requests surface for the original sender only
	_, accepted, err = e.IncomingAndAccepted(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.NotNil(t, accepted[0].Recipient)
	assert.Equal(t, "bob", accepted[0].Recipient.FullName)

	incoming, accepted, err = e.IncomingAndAccepted(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
	assert.Empty(t, accepted)

	friends, err := store.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].FullName)
}
