package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Client {
	t.Helper()
	c := store.New(memory.New())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFriendRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	repo := NewFriendRepository(s)

	req, err := repo.CreateRequest(ctx, &models.FriendRequest{SenderID: "a", ReceiverID: "b", Status: models.StatusPending})
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)

	raw, err := s.Get(ctx, "friendRequests/"+req.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"senderId": "a", "receiverId": "b", "status": "pending"}, raw.Value())

	got, err := repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got)

	require.NoError(t, repo.AcceptRequest(ctx, req.ID, "a", "b"))
	_, err = repo.GetRequestByID(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.AreFriends(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ids, err := repo.GetFriendIDs(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, repo.RemoveFriendship(ctx, "b", "a"))
	ok, err = repo.AreFriends(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFriendRepositoryRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	repo := NewFriendRepository(s)

	req, err := repo.CreateRequest(ctx, &models.FriendRequest{SenderID: "a", ReceiverID: "b", Status: models.StatusPending})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "users/a/friends/c", true))

	assert.ErrorIs(t, repo.DeleteRequest(ctx, ""), ErrInvalidKey)
	assert.ErrorIs(t, repo.DeleteRequests(ctx, []string{req.ID, ""}), ErrInvalidKey)
	assert.ErrorIs(t, repo.AcceptRequest(ctx, req.ID, "a", ""), ErrInvalidKey)
	assert.ErrorIs(t, repo.RemoveFriendship(ctx, "a", ""), ErrInvalidKey)
	_, err = repo.GetRequestByID(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = repo.GetFriendIDs(ctx, "a/friends")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	ok, err := repo.AreFriends(ctx, "a", "c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecodeRequestsSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Update(ctx, map[string]any{
		"friendRequests/good":   map[string]any{"senderId": "a", "receiverId": "b", "status": "pending"},
		"friendRequests/nobody": map[string]any{"senderId": "a", "status": "pending"},
		"friendRequests/scalar": "junk",
	}))

	snap, err := s.Get(ctx, "friendRequests")
	require.NoError(t, err)
	reqs, malformed := DecodeRequests(snap)
	require.Len(t, reqs, 1)
	assert.Equal(t, "good", reqs[0].ID)
	assert.Equal(t, []string{"nobody", "scalar"}, malformed)

	require.NoError(t, NewFriendRepository(s).DeleteRequests(ctx, malformed))
	snap, err = s.Get(ctx, "friendRequests")
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, snap.Keys())
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	repo := NewUserRepository(s)

	require.NoError(t, s.Set(ctx, "users/u1/friends/u2", true))
	_, err := repo.CreateUser(ctx, &models.User{ID: "u1", Username: "ann", Email: "ann@example.com", AvatarColor: "#4CAF50"})
	require.NoError(t, err)

	user, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Equal(t, map[string]bool{"u2": true}, user.Friends)

	bio := "hoppy"
	require.NoError(t, repo.UpdateProfile(ctx, "u1", models.ProfileUpdate{Bio: &bio}))
	got, err := repo.GetField(ctx, "u1", "bio")
	require.NoError(t, err)
	assert.Equal(t, "hoppy", got)

	_, err = repo.GetUserByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(newStore(t))

	r, err := repo.CreateReview(ctx, "u1", &models.Review{BeerName: "Duvel", Rating: 4, Review: "good", Bar: "Kroeg",
		Location: &models.Location{Latitude: 1, Longitude: 2}, Timestamp: 10})
	require.NoError(t, err)

	reviews, err := repo.GetReviewsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, r.ID, reviews[0].ID)
	assert.Equal(t, 2.0, reviews[0].Location.Longitude)

	ok, err := repo.ReviewExists(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, repo.DeleteReview(ctx, "u1", r.ID))
	ok, err = repo.ReviewExists(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newStore(t))

	require.NoError(t, repo.CreateAccount(ctx, &models.Account{UserID: "u1", Email: "Ann@Example.com", PasswordHash: "h"}))
	acc, err := repo.GetAccountByEmail(ctx, " ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", acc.UserID)
	assert.Equal(t, "h", acc.PasswordHash)

	_, err = repo.GetAccountByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Unix(1000, 0)
	require.NoError(t, repo.SaveSession(ctx, "u1", "s1", now.Add(time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, "u1", "s2", now.Add(-time.Minute)))

	active, err := repo.SessionActive(ctx, "u1", "s1", now)
	require.NoError(t, err)
	assert.True(t, active)
	active, err = repo.SessionActive(ctx, "u1", "s2", now)
	require.NoError(t, err)
	assert.False(t, active)

	n, err := repo.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.DeleteSession(ctx, "u1", "s1"))
	active, err = repo.SessionActive(ctx, "u1", "s1", now)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestEmailKey(t *testing.T) {
	assert.Equal(t, EmailKey("A@B.c"), EmailKey(" a@b.C "))
	require.NoError(t, store.ValidateKey(EmailKey("ann.o'neil+beer@example.com")))
}
