package services

import (
	"errors"

	"github.com/Dias221467/Beer_Rating/internal/auth"
)

// Friendship lifecycle errors. Each names the coarse category a caller
// reports to the user; the underlying cause is wrapped and logged.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrDuplicateRequest = errors.New("friend request already sent")
	ErrSendFailed       = errors.New("could not send friend request")
	ErrUpdateFailed     = errors.New("could not accept friend request")
	ErrDeleteFailed     = errors.New("could not reject friend request")
	ErrRemoveFailed     = errors.New("could not remove friend")
	ErrReadFailed       = errors.New("could not load data")
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrRequestMismatch  = errors.New("friend request does not belong to these users")
	ErrInvalidUser      = errors.New("invalid user id")
)

// Profile and review errors.
var (
	ErrInvalidReview  = errors.New("invalid review")
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotFriends     = errors.New("not friends")
)

// IsClientError reports whether err stems from bad input rather than a
// failed dependency.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrNotAuthenticated, ErrInvalidReview, ErrInvalidProfile, ErrReviewNotFound,
		ErrUserNotFound, ErrSelfRequest, ErrAlreadyFriends, ErrDuplicateRequest,
		ErrRequestNotFound, ErrRequestMismatch, ErrInvalidUser, ErrNotFriends,
		auth.ErrEmailTaken, auth.ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
