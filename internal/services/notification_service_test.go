package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitLikeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")

	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))
	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))

	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRetractLikeAbsentIsNoError(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	bob := createTestUser(t, db, "bob")

	assert.NoError(t, svc.RetractLike(bob.ID, uuid.New()))
}

func TestEmitLikeDeliversToConnectedRecipient(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")
	svc, publisher := newTestNotificationService(db, alice.ID)

	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].RecipientID)
	assert.Equal(t, models.NotificationLike, events[0].Event.Type)
	assert.Equal(t, bob.ID, events[0].Event.ActorID)
}

func TestEmitLikeSkipsOfflineRecipient(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")
	svc, publisher := newTestNotificationService(db)

	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))

	// No live push, but the record still persists.
	assert.Empty(t, publisher.published())
	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEmitCommentAllowsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")

	require.NoError(t, svc.EmitComment(context.Background(), bob.ID, alice.ID, thread.ID))
	require.NoError(t, svc.EmitComment(context.Background(), bob.ID, alice.ID, thread.ID))

	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFollowNotificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, svc.EmitFollow(context.Background(), bob.ID, alice.ID))
	require.NoError(t, svc.EmitFollow(context.Background(), bob.ID, alice.ID))

	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFollow, got[0].Type)

	require.NoError(t, svc.RetractFollow(bob.ID, alice.ID))
	got, err = svc.ListForUser(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnreadCountAndSetRead(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")

	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))
	require.NoError(t, svc.EmitComment(context.Background(), bob.ID, alice.ID, thread.ID))

	count, err := svc.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	updated, err := svc.SetRead(alice.ID, got[0].ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsRead)

	count, err = svc.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSetReadScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, alice.ID, "post")

	require.NoError(t, svc.EmitLike(context.Background(), bob.ID, alice.ID, thread.ID))
	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Bob cannot mark Alice's notification.
	_, err = svc.SetRead(bob.ID, got[0].ID, true)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestSelfActionsEmitNothing(t *testing.T) {
	db := newTestDB(t)
	svc, publisher := newTestNotificationService(db)
	alice := createTestUser(t, db, "alice")
	thread := createTestThread(t, db, alice.ID, "post")

	require.NoError(t, svc.EmitLike(context.Background(), alice.ID, alice.ID, thread.ID))
	require.NoError(t, svc.EmitComment(context.Background(), alice.ID, alice.ID, thread.ID))
	require.NoError(t, svc.EmitFollow(context.Background(), alice.ID, alice.ID))

	got, err := svc.ListForUser(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, publisher.published())
}
