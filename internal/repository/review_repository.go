package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

func reviewsPath(userID string) string {
	return userPath(userID, "reviews")
}

// ReviewRepository stores the reviews a user wrote under their own node.
type ReviewRepository struct {
	store *store.Client
}

func NewReviewRepository(s *store.Client) *ReviewRepository {
	return &ReviewRepository{store: s}
}

// CreateReview pushes review under userID and sets its ID.
func (r *ReviewRepository) CreateReview(ctx context.Context, userID string, review *models.Review) (*models.Review, error) {
	record := *review
	record.ID = ""

	id, err := r.store.Push(ctx, reviewsPath(userID), record)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"error":  err,
		}).Error("Failed to insert review")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	review.ID = id
	return review, nil
}

// GetReviewsByUser returns the reviews of userID in key order. Records that
// fail to decode are skipped.
func (r *ReviewRepository) GetReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	snap, err := r.store.Get(ctx, reviewsPath(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	reviews := make([]models.Review, 0, len(snap.Keys()))
	for _, child := range snap.Children() {
		var review models.Review
		if err := child.Decode(&review); err != nil {
			logrus.WithFields(logrus.Fields{
				"userID":   userID,
				"reviewID": child.Key(),
				"error":    err,
			}).Warn("Skipping undecodable review")
			continue
		}
		review.ID = child.Key()
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// ReviewExists reports whether userID has a review with id.
func (r *ReviewRepository) ReviewExists(ctx context.Context, userID, id string) (bool, error) {
	snap, err := r.store.Get(ctx, store.Join(reviewsPath(userID), id))
	if err != nil {
		return false, fmt.Errorf("failed to read review: %w", err)
	}
	return snap.Exists(), nil
}

// DeleteReview removes one review.
func (r *ReviewRepository) DeleteReview(ctx context.Context, userID, id string) error {
	if err := r.store.Delete(ctx, store.Join(reviewsPath(userID), id)); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
