package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenance(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	t.Cleanup(func() { s.Close() })

	accounts := repository.NewAccountRepository(s)
	friends := services.NewFriendService(repository.NewFriendRepository(s), repository.NewUserRepository(s))
	m := NewMaintenance(friends, accounts)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, s.Update(ctx, map[string]any{
		"friendRequests/r1": map[string]any{"senderId": "a", "receiverId": "b", "status": "pending"},
		"friendRequests/r2": map[string]any{"senderId": "a", "receiverId": "c", "status": "accepted"},
	}))
	require.NoError(t, accounts.SaveSession(ctx, "a", "old", now.Add(-time.Minute)))
	require.NoError(t, accounts.SaveSession(ctx, "a", "live", now.Add(time.Hour)))

	require.NoError(t, m.SweepFriendRequests(ctx))
	require.NoError(t, m.PurgeSessions(ctx))

	snap, err := s.Get(ctx, "friendRequests")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, snap.Keys())

	snap, err = s.Get(ctx, "sessions/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, snap.Keys())
}

func TestPurgeSessionsWithoutAccounts(t *testing.T) {
	m := NewMaintenance(nil, nil)
	assert.NoError(t, m.PurgeSessions(context.Background()))
}
