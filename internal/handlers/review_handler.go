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

// ReviewHandler serves the rating endpoints.
type ReviewHandler struct {
	Service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

// CreateReviewHandler stores a new rating for the caller.
func (h *ReviewHandler) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("CreateReviewHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		log.WithError(err).Warn("Failed to decode review")
		writeMessage(w, http.StatusBadRequest, "Rating must be a number between 0 and 5.")
		return
	}

	created, err := h.Service.CreateReview(r.Context(), claims.UserID, review)
	if err != nil {
		writeError(w, err, "Could not save your review.")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetReviewsHandler lists the caller's reviews.
func (h *ReviewHandler) GetReviewsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reviews, err := h.Service.ListReviews(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load reviews.")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// FriendReviewsHandler lists the reviews of a friend, or the caller's own.
func (h *ReviewHandler) FriendReviewsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reviews, err := h.Service.FriendReviews(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Could not load reviews.")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// DeleteReviewHandler removes one of the caller's reviews.
func (h *ReviewHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reviewID := mux.Vars(r)["id"]
	if err := h.Service.DeleteReview(r.Context(), claims.UserID, reviewID); err != nil {
		writeError(w, err, "Could not delete review.")
		return
	}

	log.WithFields(log.Fields{
		"userID":   claims.UserID,
		"reviewID": reviewID,
	}).Info("Review deleted")
	writeMessage(w, http.StatusOK, "Review deleted")
}

// FeedHandler returns the caller's and their friends' reviews.
func (h *ReviewHandler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	feed, err := h.Service.Feed(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load the feed.")
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// MapHandler returns the feed grouped into map markers.
func (h *ReviewHandler) MapHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	markers, err := h.Service.MapMarkers(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load the map.")
		return
	}
	if markers == nil {
		markers = []models.Marker{}
	}
	writeJSON(w, http.StatusOK, markers)
}

// OverviewHandler groups the caller's reviews by letter, optionally for one
// bar given as ?bar=.
func (h *ReviewHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.Service.Overview(r.Context(), claims.UserID, r.URL.Query().Get("bar"))
	if err != nil {
		writeError(w, err, "Could not load your overview.")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// BarsHandler lists the bars the caller has reviewed at.
func (h *ReviewHandler) BarsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bars, err := h.Service.Bars(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "Could not load bars.")
		return
	}
	writeJSON(w, http.StatusOK, bars)
}
