// Package auth resolves who is calling. A Provider registers accounts,
// issues and verifies bearer tokens and revokes them on sign-out.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnsupported        = errors.New("operation not supported by this identity provider")
)

// Identity is an authenticated caller.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
	ExpiresAt time.Time
}

// Provider is an identity provider.
type Provider interface {
	// Register creates an account and returns the new user id.
	Register(ctx context.Context, email, password string) (string, error)

	// SignIn checks credentials and returns a bearer token.
	SignIn(ctx context.Context, email, password string) (string, *Identity, error)

	// Authenticate resolves a bearer token to the caller.
	Authenticate(ctx context.Context, token string) (*Identity, error)

	// SignOut revokes the session behind id.
	SignOut(ctx context.Context, id *Identity) error
}
