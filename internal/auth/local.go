package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	jwtutil "github.com/Dias221467/Beer_Rating/pkg/jwt"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const defaultRole = "user"

// LocalProvider keeps bcrypt password hashes in the record store and issues
// HS256 tokens. Each token is a session recorded in the store, so signing
// out takes effect immediately.
type LocalProvider struct {
	accounts *repository.AccountRepository
	secret   string
	expiry   time.Duration
	now      func() time.Time
}

func NewLocalProvider(accounts *repository.AccountRepository, secret string, expiry time.Duration) *LocalProvider {
	return &LocalProvider{accounts: accounts, secret: secret, expiry: expiry, now: time.Now}
}

// Register implements Provider.
func (p *LocalProvider) Register(ctx context.Context, email, password string) (string, error) {
	_, err := p.accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return "", ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         defaultRole,
	}
	if err := p.accounts.CreateAccount(ctx, account); err != nil {
		return "", err
	}
	return account.UserID, nil
}

// SignIn implements Provider.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, *Identity, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role := account.Role
	if role == "" {
		role = defaultRole
	}
	token, claims, err := jwtutil.GenerateToken(account.UserID, account.Email, role, p.secret, p.expiry)
	if err != nil {
		return "", nil, err
	}
	if err := p.accounts.SaveSession(ctx, account.UserID, claims.ID, claims.ExpiresAt.Time); err != nil {
		return "", nil, err
	}

	log.WithField("userID", account.UserID).Info("Session started")
	return token, identityFromClaims(claims), nil
}

func identityFromClaims(c *jwtutil.Claims) *Identity {
	id := &Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		SessionID: c.ID,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// Authenticate implements Provider.
func (p *LocalProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := jwtutil.ValidateToken(token, p.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	active, err := p.accounts.SessionActive(ctx, claims.UserID, claims.ID, p.now())
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrInvalidToken
	}
	return identityFromClaims(claims), nil
}

// SignOut implements Provider.
func (p *LocalProvider) SignOut(ctx context.Context, id *Identity) error {
	return p.accounts.DeleteSession(ctx, id.UserID, id.SessionID)
}
