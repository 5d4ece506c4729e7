package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/auth"
	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

// Mailer sends plain text email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo     *repository.UserRepository
	friends  *FriendService
	provider auth.Provider
	mailer   Mailer
	now      func() time.Time
}

// NewUserService creates a new instance of UserService. mailer may be nil.
func NewUserService(repo *repository.UserRepository, friends *FriendService, provider auth.Provider, mailer Mailer) *UserService {
	return &UserService{
		repo:     repo,
		friends:  friends,
		provider: provider,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Register creates the account with the identity provider and then writes
// the initial profile.
func (s *UserService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	logrus.Info("Registering new user")

	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if err := reg.Validate(); err != nil {
		logrus.WithError(err).Warn("Invalid registration")
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	uid, err := s.provider.Register(ctx, reg.Email, reg.Password)
	if err != nil {
		logrus.WithError(err).Warn("Account registration failed")
		return nil, err
	}

	user := &models.User{
		ID:          uid,
		Username:    reg.Username,
		Email:       reg.Email,
		AvatarColor: models.DefaultAvatarColor,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": uid,
			"error":  err,
		}).Error("Account created but profile write failed")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if s.mailer != nil {
		body := fmt.Sprintf("Welcome to Beer Rating, %s!\n\nAdd your friends and rate your first beer.", user.Username)
		if err := s.mailer.SendEmail(user.Email, "Welcome to Beer Rating", body); err != nil {
			logrus.WithError(err).Warn("Failed to send welcome email")
		}
	}

	logrus.WithField("userID", uid).Info("User registered successfully")
	return user, nil
}

// SignIn returns a bearer token for the credentials.
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, *auth.Identity, error) {
	token, identity, err := s.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		logrus.WithField("email", email).Warn("Sign in failed")
		return "", nil, err
	}
	logrus.WithField("userID", identity.UserID).Info("User signed in")
	return token, identity, nil
}

// SignOut revokes the caller's session.
func (s *UserService) SignOut(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return ErrNotAuthenticated
	}
	if err := s.provider.SignOut(ctx, identity); err != nil {
		logrus.WithError(err).Error("Sign out failed")
		return err
	}
	return nil
}

// GetProfile returns the full profile of userID with display defaults
// applied.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if err := store.ValidateKey(userID); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logrus.WithError(err).Warn("Failed to retrieve user")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	user.ApplyDefaults()
	return user, nil
}

// UpdateProfile writes the fields present in upd and returns the new
// profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be blank", ErrInvalidProfile)
		}
		upd.Username = &name
	}
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	if err := s.repo.UpdateProfile(ctx, userID, upd); err != nil {
		return nil, err
	}
	logrus.WithField("userID", userID).Info("Profile updated")
	return s.GetProfile(ctx, userID)
}

// GetPublicProfile returns what currentUserID may see of otherID, including
// their relation and the friends they share.
func (s *UserService) GetPublicProfile(ctx context.Context, currentUserID, otherID string) (*models.PublicProfile, error) {
	if currentUserID == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.GetProfile(ctx, otherID)
	if err != nil {
		return nil, err
	}
	relation, err := s.friends.RelationStatus(ctx, currentUserID, otherID)
	if err != nil {
		return nil, err
	}
	mutual, err := s.friends.MutualFriends(ctx, currentUserID, otherID)
	if err != nil {
		return nil, err
	}
	return &models.PublicProfile{
		PublicUser: user.Public(),
		LastActive: user.LastActive,
		Relation:   relation,
		Mutual:     *mutual,
	}, nil
}

// Directory lists every user except currentUserID and its friends, ordered
// by username, each with its relation to the caller.
func (s *UserService) Directory(ctx context.Context, currentUserID string) ([]models.DirectoryEntry, error) {
	if currentUserID == "" {
		return nil, ErrNotAuthenticated
	}
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to read users")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	rel, err := s.friends.Relations(ctx, currentUserID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.DirectoryEntry, 0, len(users))
	for _, u := range users {
		status, ok := rel[u.ID]
		if !ok {
			status = models.RelationNone
		}
		if status == models.RelationSelf || status == models.RelationFriends {
			continue
		}
		u.ApplyDefaults()
		entries = append(entries, models.DirectoryEntry{PublicUser: u.Public(), Relation: status})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Username) < strings.ToLower(entries[j].Username)
	})
	return entries, nil
}

// UpdateLastActive stamps userID as seen now. Failures are logged only.
func (s *UserService) UpdateLastActive(ctx context.Context, userID string) error {
	if store.ValidateKey(userID) != nil {
		return nil
	}
	if err := s.repo.SetLastActive(ctx, userID, s.now()); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"error":  err,
		}).Warn("Failed to update last active")
		return err
	}
	return nil
}
