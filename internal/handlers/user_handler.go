package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), reg)
	if err != nil {
		writeError(w, err, "Could not create your account.")
		return
	}

	log.WithField("userID", user.ID).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, map[string]string{"uid": user.ID})
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	token, identity, err := h.Service.SignIn(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, err, "Could not sign you in.")
		return
	}

	log.WithField("userID", identity.UserID).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"uid":       identity.UserID,
		"expiresAt": identity.ExpiresAt,
	})
}

// LogoutUserHandler revokes the session of the calling token.
func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LogoutUserHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if err := h.Service.SignOut(r.Context(), claims); err != nil {
		writeError(w, err, "Could not sign you out.")
		return
	}
	writeMessage(w, http.StatusOK, "Signed out")
}

// GetMeHandler returns the caller's own profile.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("GetMeHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to GetMeHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load your profile.")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMeHandler handles updating the caller's profile.
func (h *UserHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("UpdateMeHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to UpdateMeHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.WithError(err).Warn("Failed to decode profile update")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), claims.UserID, upd)
	if err != nil {
		writeError(w, err, "Could not update your profile.")
		return
	}

	log.WithField("userID", claims.UserID).Info("User profile updated")
	writeJSON(w, http.StatusOK, user)
}

// DirectoryHandler lists the users the caller may add as friends.
func (h *UserHandler) DirectoryHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("DirectoryHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.Service.Directory(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load users.")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetUserHandler handles fetching another user's public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("GetUserHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to GetUserHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedUserID := mux.Vars(r)["id"]
	profile, err := h.Service.GetPublicProfile(r.Context(), claims.UserID, requestedUserID)
	if err != nil {
		writeError(w, err, "Could not load this profile.")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
