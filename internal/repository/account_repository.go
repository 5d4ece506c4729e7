package repository

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	accountsPath = "accounts"
	emailsPath   = "emails"
	sessionsPath = "sessions"
)

// EmailKey maps an address to a store-safe key. Addresses compare
// case-insensitively.
func EmailKey(email string) string {
	return hex.EncodeToString([]byte(strings.ToLower(strings.TrimSpace(email))))
}

// AccountRepository stores local sign-in credentials and sessions.
type AccountRepository struct {
	store *store.Client
}

func NewAccountRepository(s *store.Client) *AccountRepository {
	return &AccountRepository{store: s}
}

// CreateAccount writes the account and its email index in one update.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	err := r.store.Update(ctx, map[string]any{
		store.Join(accountsPath, account.UserID):        account,
		store.Join(emailsPath, EmailKey(account.Email)): account.UserID,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to insert account")
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByEmail returns ErrNotFound for unknown addresses.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	idx, err := r.store.Get(ctx, store.Join(emailsPath, EmailKey(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to read email index: %w", err)
	}
	userID := idx.String()
	if userID == "" {
		return nil, fmt.Errorf("account for %s: %w", email, ErrNotFound)
	}
	return r.GetAccount(ctx, userID)
}

// GetAccount returns ErrNotFound when userID has no local account.
func (r *AccountRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	snap, err := r.store.Get(ctx, store.Join(accountsPath, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("account %s: %w", userID, ErrNotFound)
	}
	var account models.Account
	if err := snap.Decode(&account); err != nil {
		return nil, err
	}
	account.UserID = userID
	return &account, nil
}

func sessionPath(userID, sessionID string) string {
	return store.Join(sessionsPath, userID, sessionID)
}

// SaveSession records a signed-in session until expiresAt.
func (r *AccountRepository) SaveSession(ctx context.Context, userID, sessionID string, expiresAt time.Time) error {
	if err := r.store.Set(ctx, sessionPath(userID, sessionID), expiresAt.Unix()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SessionActive reports whether the session exists and has not expired.
func (r *AccountRepository) SessionActive(ctx context.Context, userID, sessionID string, now time.Time) (bool, error) {
	snap, err := r.store.Get(ctx, sessionPath(userID, sessionID))
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	var expiresAt int64
	if err := snap.Decode(&expiresAt); err != nil {
		return false, nil
	}
	return snap.Exists() && now.Unix() < expiresAt, nil
}

// DeleteSession revokes one session.
func (r *AccountRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := r.store.Delete(ctx, sessionPath(userID, sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired before now and
// returns how many it removed.
func (r *AccountRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	snap, err := r.store.Get(ctx, sessionsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read sessions: %w", err)
	}

	updates := make(map[string]any)
	for _, user := range snap.Children() {
		for _, session := range user.Children() {
			var expiresAt int64
			if err := session.Decode(&expiresAt); err != nil || now.Unix() >= expiresAt {
				updates[sessionPath(user.Key(), session.Key())] = nil
			}
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := r.store.Update(ctx, updates); err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	logrus.WithField("count", len(updates)).Info("Expired sessions removed")
	return len(updates), nil
}
