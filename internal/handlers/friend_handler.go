package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/pkg/logger"
	"github.com/Dias221467/Beer_Rating/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler allows a user to send a friend request.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to send friend request")
		return
	}

	receiverID := mux.Vars(r)["id"]
	request, err := h.Service.SendFriendRequest(r.Context(), receiverID, claims.UserID)
	if err != nil {
		writeError(w, err, "Could not send friend request.")
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", claims.UserID, receiverID)
	writeJSON(w, http.StatusCreated, request)
}

// GetPendingRequestsHandler shows all incoming friend requests.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to get pending requests")
		return
	}

	requests, err := h.Service.ListPendingRequests(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load friend requests.")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// AcceptFriendRequestHandler accepts a pending request addressed to the
// caller.
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized request to accept a friend request")
		return
	}
	requestID := mux.Vars(r)["id"]

	var body struct {
		SenderID string `json:"senderId"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SenderID == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		logger.Log.Warnf("Invalid accept payload for request %s: %v", requestID, err)
		return
	}

	if err := h.Service.AcceptRequest(r.Context(), requestID, body.SenderID, claims.UserID); err != nil {
		writeError(w, err, "Could not accept friend request.")
		return
	}

	logger.Log.Infof("User %s accepted friend request %s", claims.UserID, requestID)
	writeMessage(w, http.StatusOK, "Friend request accepted")
}

// RejectFriendRequestHandler rejects an incoming request or cancels an
// outgoing one.
func (h *FriendHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized request to reject a friend request")
		return
	}
	requestID := mux.Vars(r)["id"]

	if err := h.Service.DeclineRequest(r.Context(), requestID, claims.UserID); err != nil {
		writeError(w, err, "Could not reject friend request.")
		return
	}

	logger.Log.Infof("User %s rejected friend request %s", claims.UserID, requestID)
	writeMessage(w, http.StatusOK, "Friend request rejected")
}

// GetFriendsHandler returns a list of user's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to get friends")
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load friends.")
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// RemoveFriendHandler ends a friendship on both sides.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to remove friend")
		return
	}
	friendID := mux.Vars(r)["id"]

	if err := h.Service.RemoveFriend(r.Context(), friendID, claims.UserID); err != nil {
		writeError(w, err, "Could not remove friend.")
		return
	}

	logger.Log.Infof("User %s removed friend %s", claims.UserID, friendID)
	writeMessage(w, http.StatusOK, "Friend removed")
}

// MutualFriendsHandler lists the friends the caller shares with another user.
func (h *FriendHandler) MutualFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	mutual, err := h.Service.MutualFriends(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Could not load mutual friends.")
		return
	}
	writeJSON(w, http.StatusOK, mutual)
}
