package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Beer_Rating/internal/auth"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeMessage sends the static user-facing message for a failure.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// errorResponse maps a service error onto an HTTP status and the message
// shown to the user. fallback is used for failures of a dependency.
func errorResponse(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized, "You need to sign in first."
	case errors.Is(err, services.ErrDuplicateRequest):
		return http.StatusConflict, "Friend request already sent."
	case errors.Is(err, services.ErrSelfRequest):
		return http.StatusBadRequest, "You cannot send a friend request to yourself."
	case errors.Is(err, services.ErrAlreadyFriends):
		return http.StatusConflict, "You are already friends."
	case errors.Is(err, services.ErrRequestNotFound):
		return http.StatusNotFound, "Friend request not found."
	case errors.Is(err, services.ErrRequestMismatch):
		return http.StatusForbidden, "This friend request is not yours."
	case errors.Is(err, services.ErrInvalidUser):
		return http.StatusBadRequest, "Invalid user."
	case errors.Is(err, services.ErrNotFriends):
		return http.StatusForbidden, "Only friends can see these reviews."
	case errors.Is(err, services.ErrSendFailed):
		return http.StatusInternalServerError, "Could not send friend request."
	case errors.Is(err, services.ErrUpdateFailed):
		return http.StatusInternalServerError, "Could not accept friend request."
	case errors.Is(err, services.ErrDeleteFailed):
		return http.StatusInternalServerError, "Could not reject friend request."
	case errors.Is(err, services.ErrRemoveFailed):
		return http.StatusInternalServerError, "Could not remove friend."
	case errors.Is(err, services.ErrInvalidReview):
		return http.StatusBadRequest, "Please fill in every field with a rating between 0 and 5."
	case errors.Is(err, services.ErrReviewNotFound):
		return http.StatusNotFound, "Review not found."
	case errors.Is(err, services.ErrInvalidProfile):
		return http.StatusBadRequest, "Invalid profile details."
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "An account with this email already exists."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Wrong email or password."
	case errors.Is(err, auth.ErrUnsupported):
		return http.StatusNotImplemented, "Sign in with the mobile app."
	}
	return http.StatusInternalServerError, fallback
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	status, message := errorResponse(err, fallback)
	if services.IsClientError(err) {
		logger.Log.WithError(err).Warn(message)
	} else {
		logger.Log.WithError(err).Error(message)
	}
	writeMessage(w, status, message)
}
