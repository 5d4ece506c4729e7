package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/sirupsen/logrus"
)

type Maintenance struct {
	FriendService *services.FriendService
	Accounts      *repository.AccountRepository
	now           func() time.Time
}

// NewMaintenance creates a new instance of Maintenance. accounts may be nil
// when sessions are not kept in the store.
func NewMaintenance(friendService *services.FriendService, accounts *repository.AccountRepository) *Maintenance {
	return &Maintenance{
		FriendService: friendService,
		Accounts:      accounts,
		now:           time.Now,
	}
}

// SweepFriendRequests removes friend request records that are no longer
// pending or cannot be read.
func (m *Maintenance) SweepFriendRequests(ctx context.Context) error {
	n, err := m.FriendService.SweepStaleRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep friend requests: %w", err)
	}
	logrus.WithField("removed", n).Info("Friend request sweep completed")
	return nil
}

// PurgeSessions removes expired sign-in sessions.
func (m *Maintenance) PurgeSessions(ctx context.Context) error {
	if m.Accounts == nil {
		return nil
	}
	n, err := m.Accounts.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}
	logrus.WithField("removed", n).Info("Expired session purge completed")
	return nil
}
