package auth

import (
	"context"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"
)

// firebaseClient is the part of *fbauth.Client the provider uses.
type firebaseClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider delegates identity to Firebase Authentication. Clients
// sign in against Firebase directly and present the ID token.
type FirebaseProvider struct {
	client firebaseClient
}

func NewFirebaseProvider(client *fbauth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

// Register implements Provider.
func (p *FirebaseProvider) Register(ctx context.Context, email, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	user, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return user.UID, nil
}

// SignIn is not offered: Firebase sign-in happens on the client.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (string, *Identity, error) {
	return "", nil, ErrUnsupported
}

// Authenticate implements Provider.
func (p *FirebaseProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	tok, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		log.WithError(err).Debug("Firebase token rejected")
		return nil, ErrInvalidToken
	}
	email, _ := tok.Claims["email"].(string)
	return &Identity{
		UserID:    tok.UID,
		Email:     email,
		Role:      defaultRole,
		ExpiresAt: time.Unix(tok.Expires, 0),
	}, nil
}

// SignOut revokes every refresh token of the user.
func (p *FirebaseProvider) SignOut(ctx context.Context, id *Identity) error {
	return p.client.RevokeRefreshTokens(ctx, id.UserID)
}
