package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalProvider {
	t.Helper()
	s := store.New(memory.New())
	t.Cleanup(func() { s.Close() })
	return NewLocalProvider(repository.NewAccountRepository(s), "test-secret", time.Hour)
}

func TestLocalProviderFlow(t *testing.T) {
	ctx := context.Background()
	p := newLocal(t)

	uid, err := p.Register(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	_, err = p.Register(ctx, "ANN@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = p.SignIn(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = p.SignIn(ctx, "bob@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, id, err := p.SignIn(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, uid, id.UserID)

	got, err := p.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uid, got.UserID)
	assert.Equal(t, id.SessionID, got.SessionID)

	require.NoError(t, p.SignOut(ctx, got))
	_, err = p.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalProviderRejectsGarbage(t *testing.T) {
	_, err := newLocal(t).Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalProviderSessionExpiry(t *testing.T) {
	ctx := context.Background()
	p := newLocal(t)
	_, err := p.Register(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	token, _, err := p.SignIn(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type fakeFirebase struct {
	revoked  []string
	tokens   map[string]*fbauth.Token
	createFn func(*fbauth.UserToCreate) (*fbauth.UserRecord, error)
}

func (f *fakeFirebase) CreateUser(ctx context.Context, u *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	return f.createFn(u)
}

func (f *fakeFirebase) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("id token has invalid signature")
	}
	return tok, nil
}

func (f *fakeFirebase) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestFirebaseProvider(t *testing.T) {
	ctx := context.Background()
	fake := &fakeFirebase{
		tokens: map[string]*fbauth.Token{
			"good": {UID: "fb1", Expires: 2000, Claims: map[string]interface{}{"email": "ann@example.com"}},
		},
		createFn: func(*fbauth.UserToCreate) (*fbauth.UserRecord, error) {
			return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "fb1"}}, nil
		},
	}
	p := &FirebaseProvider{client: fake}

	uid, err := p.Register(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "fb1", uid)

	_, _, err = p.SignIn(ctx, "ann@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrUnsupported)

	id, err := p.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "fb1", id.UserID)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.Equal(t, time.Unix(2000, 0), id.ExpiresAt)

	_, err = p.Authenticate(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, p.SignOut(ctx, id))
	assert.Equal(t, []string{"fb1"}, fake.revoked)
}
