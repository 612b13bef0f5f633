package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatmodel "chatapp/module/chat/model"
	"chatapp/module/chat/store"
	usermodel "chatapp/module/user/model"
	"chatapp/tools/errs"
)

func mustUser(t *testing.T, s *store.MemStore, id, name string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), &usermodel.User{
		ID: id, Username: name, CreateTime: time.Now().UTC(),
	}))
}

func msgAt(id, sender, recipient, content string, at time.Time) *chatmodel.Message {
	return &chatmodel.Message{ID: id, SenderID: sender, RecipientID: recipient, Content: content, CreatedAt: at}
}

func TestMemStoreUsernameConflict(t *testing.T) {
	s := store.NewMemStore()
	mustUser(t, s, "u1", "alice")

	err := s.CreateUser(context.Background(), &usermodel.User{ID: "u2", Username: "alice"})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestMemStoreGetUserByUsername(t *testing.T) {
	s := store.NewMemStore()
	mustUser(t, s, "u1", "alice")

	u, err := s.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemStoreListUsersExcludesSelf(t *testing.T) {
	s := store.NewMemStore()
	mustUser(t, s, "u1", "alice")
	mustUser(t, s, "u2", "bob")
	mustUser(t, s, "u3", "carol")

	users, err := s.ListUsers(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
}

func TestMemStoreFriendshipSymmetric(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	mustUser(t, s, "u1", "alice")
	mustUser(t, s, "u2", "bob")

	require.NoError(t, s.AddFriendship(ctx, "u1", "u2"))
	// second add must not duplicate
	require.NoError(t, s.AddFriendship(ctx, "u2", "u1"))

	ab, _ := s.AreFriends(ctx, "u1", "u2")
	ba, _ := s.AreFriends(ctx, "u2", "u1")
	assert.True(t, ab)
	assert.True(t, ba)

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, u.Friends)

	require.NoError(t, s.RemoveFriendship(ctx, "u2", "u1"))
	ab, _ = s.AreFriends(ctx, "u1", "u2")
	ba, _ = s.AreFriends(ctx, "u2", "u1")
	assert.False(t, ab)
	assert.False(t, ba)
}

func TestMemStoreListByPairSortedBothDirections(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, msgAt("m2", "bob", "alice", "two", base.Add(time.Second))))
	require.NoError(t, s.Insert(ctx, msgAt("m1", "alice", "bob", "one", base)))
	require.NoError(t, s.Insert(ctx, msgAt("m3", "alice", "carol", "other pair", base)))

	msgs, err := s.ListByPair(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)

	// argument order must not matter
	rev, err := s.ListByPair(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, msgs, rev)
}

func TestMemStoreUpdateContentSetsEdited(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, msgAt("m1", "alice", "bob", "draft", time.Now().UTC())))

	updated, err := s.UpdateContent(ctx, "m1", "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.True(t, updated.Edited)

	_, err = s.UpdateContent(ctx, "missing", "x")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemStoreDeleteByPair(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, s.Insert(ctx, msgAt("m1", "alice", "bob", "a", base)))
	require.NoError(t, s.Insert(ctx, msgAt("m2", "bob", "alice", "b", base)))
	require.NoError(t, s.Insert(ctx, msgAt("m3", "alice", "carol", "c", base)))

	require.NoError(t, s.DeleteByPair(ctx, "alice", "bob"))

	gone, err := s.ListByPair(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := s.ListByPair(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	// deleting an already-empty conversation is fine
	require.NoError(t, s.DeleteByPair(ctx, "alice", "bob"))
}

func TestMemStoreFriendRequestPairConflict(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	now := time.Now().UTC()

	first := &chatmodel.FriendRequest{ID: "r1", SenderID: "u1", RecipientID: "u2", Status: chatmodel.RequestPending, CreateTime: now}
	require.NoError(t, s.CreateFriendRequest(ctx, first))

	// same pair, either direction, still live
	dup := &chatmodel.FriendRequest{ID: "r2", SenderID: "u2", RecipientID: "u1", Status: chatmodel.RequestPending, CreateTime: now}
	assert.ErrorIs(t, s.CreateFriendRequest(ctx, dup), errs.ErrConflict)

	// a declined request frees the pair for a retry
	require.NoError(t, s.SetRequestStatus(ctx, "r1", chatmodel.RequestDeclined))
	retry := &chatmodel.FriendRequest{ID: "r3", SenderID: "u1", RecipientID: "u2", Status: chatmodel.RequestPending, CreateTime: now}
	assert.NoError(t, s.CreateFriendRequest(ctx, retry))
}

func TestMemStoreListPendingRequests(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.CreateFriendRequest(ctx, &chatmodel.FriendRequest{
		ID: "r1", SenderID: "u1", RecipientID: "u3", Status: chatmodel.RequestPending, CreateTime: base.Add(time.Second)}))
	require.NoError(t, s.CreateFriendRequest(ctx, &chatmodel.FriendRequest{
		ID: "r2", SenderID: "u2", RecipientID: "u3", Status: chatmodel.RequestPending, CreateTime: base}))
	require.NoError(t, s.CreateFriendRequest(ctx, &chatmodel.FriendRequest{
		ID: "r3", SenderID: "u4", RecipientID: "u5", Status: chatmodel.RequestPending, CreateTime: base}))
	require.NoError(t, s.SetRequestStatus(ctx, "r3", chatmodel.RequestAccepted))

	reqs, err := s.ListPendingRequests(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "r2", reqs[0].ID)
	assert.Equal(t, "r1", reqs[1].ID)
}

func TestMemStoreDeleteRequestByPair(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.CreateFriendRequest(ctx, &chatmodel.FriendRequest{
		ID: "r1", SenderID: "u1", RecipientID: "u2", Status: chatmodel.RequestAccepted, CreateTime: time.Now().UTC()}))

	require.NoError(t, s.DeleteRequestByPair(ctx, "u2", "u1"))
	_, err := s.GetFriendRequest(ctx, "r1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
