package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

const usersPath = "users"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidKey is returned for an id that cannot be a path segment.
	ErrInvalidKey = errors.New("invalid record key")
)

// validKeys checks the ids that become path segments. store.Join skips empty
// segments, so an unchecked empty id would address the parent node.
func validKeys(ids ...string) error {
	for _, id := range ids {
		if err := store.ValidateKey(id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
	}
	return nil
}

func userPath(id string, fields ...string) string {
	return store.Join(append([]string{usersPath, id}, fields...)...)
}

// UserRepository handles store operations related to user profiles.
type UserRepository struct {
	store *store.Client
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(s *store.Client) *UserRepository {
	return &UserRepository{store: s}
}

// CreateUser writes the profile fields of a new user. Existing friends and
// reviews under the same node are left alone.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	updates := map[string]any{
		userPath(user.ID, "username"):    user.Username,
		userPath(user.ID, "avatarColor"): user.AvatarColor,
		userPath(user.ID, "createdAt"):   user.CreatedAt,
	}
	if user.Email != "" {
		updates[userPath(user.ID, "email")] = user.Email
	}
	if err := r.store.Update(ctx, updates); err != nil {
		logrus.WithError(err).Error("Failed to write user profile")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	logrus.WithField("userID", user.ID).Info("User inserted successfully")
	return user, nil
}

// GetUserByID returns ErrNotFound when nothing is stored for id.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := r.store.Get(ctx, userPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return decodeUser(snap)
}

func decodeUser(snap store.Snapshot) (*models.User, error) {
	var user models.User
	if err := snap.Decode(&user); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": snap.Key(),
			"error":  err,
		}).Warn("Failed to decode user")
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	user.ID = snap.Key()
	return &user, nil
}

// GetField reads one string field of a user profile. Missing fields and
// fields that are not strings yield "".
func (r *UserRepository) GetField(ctx context.Context, id, field string) (string, error) {
	snap, err := r.store.Get(ctx, userPath(id, field))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return snap.String(), nil
}

// GetAllUsers reads every user node. Nodes that fail to decode are skipped.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	snap, err := r.store.Get(ctx, usersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]*models.User, 0, len(snap.Keys()))
	for _, child := range snap.Children() {
		user, err := decodeUser(child)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateProfile writes the fields set in upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) error {
	updates := make(map[string]any, 3)
	if upd.Username != nil {
		updates[userPath(id, "username")] = *upd.Username
	}
	if upd.Bio != nil {
		updates[userPath(id, "bio")] = *upd.Bio
	}
	if upd.AvatarColor != nil {
		updates[userPath(id, "avatarColor")] = *upd.AvatarColor
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.store.Update(ctx, updates); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id,
			"error":  err,
		}).Error("Failed to update profile")
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetLastActive stamps when the user was last seen.
func (r *UserRepository) SetLastActive(ctx context.Context, id string, at time.Time) error {
	if err := r.store.Set(ctx, userPath(id, "lastActive"), at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}
