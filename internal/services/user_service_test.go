package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/auth"
	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, f *fixture) *UserService {
	t.Helper()
	provider := auth.NewLocalProvider(repository.NewAccountRepository(f.store), "secret", time.Hour)
	svc := NewUserService(f.users, f.friends, provider, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func ptr(s string) *string { return &s }

func TestRegisterAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)

	user, err := svc.Register(ctx, models.Registration{Email: " dee@example.com ", Password: "hunter22", Username: " dee "})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dee", profile.Username)
	assert.Equal(t, "dee@example.com", profile.Email)
	assert.Equal(t, models.DefaultAvatarColor, profile.AvatarColor)
	assert.Equal(t, "2024-05-01T12:00:00Z", profile.CreatedAt)

	_, err = svc.Register(ctx, models.Registration{Email: "DEE@example.com", Password: "hunter22", Username: "other"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	token, identity, err := svc.SignIn(ctx, "dee@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, identity.UserID)

	_, _, err = svc.SignIn(ctx, "dee@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.SignOut(ctx, identity))
	assert.ErrorIs(t, svc.SignOut(ctx, nil), ErrNotAuthenticated)
}

type recordingMailer struct {
	to, subject string
}

func (m *recordingMailer) SendEmail(to, subject, _ string) error {
	m.to, m.subject = to, subject
	return nil
}

func TestRegisterSendsWelcomeEmail(t *testing.T) {
	svc := newUserService(t, newFixture(t))
	mailer := &recordingMailer{}
	svc.mailer = mailer

	_, err := svc.Register(context.Background(), models.Registration{Email: "eve@example.com", Password: "hunter22", Username: "eve"})
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", mailer.to)
	assert.Equal(t, "Welcome to Beer Rating", mailer.subject)
}

func TestRegisterValidates(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t, newFixture(t))

	tests := []struct {
		name string
		reg  models.Registration
	}{
		{"bad email", models.Registration{Email: "nope", Password: "hunter22", Username: "x"}},
		{"short password", models.Registration{Email: "x@example.com", Password: "123", Username: "x"}},
		{"blank username", models.Registration{Email: "x@example.com", Password: "hunter22", Username: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.reg)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)

	user, err := svc.UpdateProfile(ctx, "a", models.ProfileUpdate{Bio: ptr("Stouts only"), AvatarColor: ptr("#123abc")})
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Equal(t, "Stouts only", user.Bio)
	assert.Equal(t, "#123abc", user.AvatarColor)

	_, err = svc.UpdateProfile(ctx, "a", models.ProfileUpdate{Username: ptr("  ")})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = svc.UpdateProfile(ctx, "a", models.ProfileUpdate{AvatarColor: ptr("red")})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = svc.UpdateProfile(ctx, "", models.ProfileUpdate{Bio: ptr("x")})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPublicProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	f.makeFriends(t, "a", "c")
	f.makeFriends(t, "b", "c")
	require.NoError(t, svc.UpdateLastActive(ctx, "b"))

	profile, err := svc.GetPublicProfile(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, models.RelationNone, profile.Relation)
	assert.Equal(t, 1, profile.Mutual.Count)
	assert.Equal(t, "2024-05-01T12:00:00Z", profile.LastActive)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	require.NoError(t, f.store.Set(ctx, "users/d/username", "Dan"))
	f.makeFriends(t, "a", "b")
	_, err := f.friends.SendFriendRequest(ctx, "c", "a")
	require.NoError(t, err)

	entries, err := svc.Directory(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cat", entries[0].Username)
	assert.Equal(t, models.RelationPendingOutgoing, entries[0].Relation)
	assert.Equal(t, "Dan", entries[1].Username)
	assert.Equal(t, models.RelationNone, entries[1].Relation)

	_, err = svc.Directory(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
