package handlers

import (
	"net/http"

	"github.com/Dias221467/Beer_Rating/internal/services"
	log "github.com/sirupsen/logrus"
)

// AdminHandler exposes maintenance operations to admins.
type AdminHandler struct {
	FriendService *services.FriendService
}

func NewAdminHandler(friendService *services.FriendService) *AdminHandler {
	return &AdminHandler{FriendService: friendService}
}

// SweepRequestsHandler runs the stale friend request sweep now.
func (h *AdminHandler) SweepRequestsHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("SweepRequestsHandler called")
	removed, err := h.FriendService.SweepStaleRequests(r.Context())
	if err != nil {
		writeError(w, err, "Could not sweep friend requests.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
