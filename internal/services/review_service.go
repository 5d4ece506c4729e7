package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Dias221467/Beer_Rating/internal/metrics"
	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// feedConcurrency bounds how many friends' reviews are read at once.
const feedConcurrency = 8

// ReviewService handles drink ratings and the views built from them.
type ReviewService struct {
	reviews *repository.ReviewRepository
	friends *FriendService
	now     func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews *repository.ReviewRepository, friends *FriendService) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		friends: friends,
		now:     time.Now,
	}
}

// CreateReview validates review and stores it under userID with the
// current time in milliseconds.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, review models.Review) (*models.Review, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	review.BeerName = strings.TrimSpace(review.BeerName)
	review.Review = strings.TrimSpace(review.Review)
	review.Bar = strings.TrimSpace(review.Bar)
	if err := review.Validate(); err != nil {
		logrus.WithError(err).Warn("Invalid review input")
		return nil, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}
	review.ID = ""
	review.Timestamp = s.now().UnixMilli()

	created, err := s.reviews.CreateReview(ctx, userID, &review)
	if err != nil {
		return nil, err
	}
	metrics.ReviewsCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"userID":   userID,
		"reviewID": created.ID,
	}).Info("Review created")
	return created, nil
}

func newestFirst(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Timestamp > reviews[j].Timestamp
	})
}

// ListReviews returns the reviews of userID, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, userID string) ([]models.Review, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	reviews, err := s.reviews.GetReviewsByUser(ctx, userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to read reviews")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	newestFirst(reviews)
	return reviews, nil
}

// FriendReviews returns the reviews of otherID, newest first. Only otherID
// and its friends may read them.
func (s *ReviewService) FriendReviews(ctx context.Context, currentUserID, otherID string) ([]models.Review, error) {
	if !signedIn(currentUserID) {
		return nil, ErrNotAuthenticated
	}
	if store.ValidateKey(otherID) != nil {
		return nil, ErrUserNotFound
	}
	if otherID != currentUserID {
		relation, err := s.friends.RelationStatus(ctx, currentUserID, otherID)
		if err != nil {
			return nil, err
		}
		if relation != models.RelationFriends {
			logrus.WithFields(logrus.Fields{
				"userID":  currentUserID,
				"otherID": otherID,
			}).Warn("Reviews requested by a non-friend")
			return nil, ErrNotFriends
		}
	}
	return s.ListReviews(ctx, otherID)
}

// DeleteReview removes one of userID's reviews.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if store.ValidateKey(reviewID) != nil {
		return ErrReviewNotFound
	}
	exists, err := s.reviews.ReviewExists(ctx, userID, reviewID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if !exists {
		return ErrReviewNotFound
	}
	if err := s.reviews.DeleteReview(ctx, userID, reviewID); err != nil {
		logrus.WithError(err).Error("Failed to delete review")
		return err
	}
	return nil
}

func tag(reviews []models.Review, author models.PublicUser, own bool) []models.FeedItem {
	out := make([]models.FeedItem, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, models.FeedItem{
			Review:         r,
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			Own:            own,
		})
	}
	return out
}

// Feed returns the caller's reviews and those of all their friends, newest
// first. Friends are read concurrently.
func (s *ReviewService) Feed(ctx context.Context, userID string) ([]models.FeedItem, error) {
	own, err := s.ListReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.friends.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	perFriend := make([][]models.FeedItem, len(friends))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedConcurrency)
	for i, friend := range friends {
		i, friend := i, friend
		g.Go(func() error {
			reviews, err := s.reviews.GetReviewsByUser(gctx, friend.ID)
			if err != nil {
				return err
			}
			perFriend[i] = tag(reviews, friend, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Failed to read friends' reviews")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	me := models.PublicUser{ID: userID, Username: s.friends.FetchUsername(ctx, userID)}
	feed := tag(own, me, true)
	for _, items := range perFriend {
		feed = append(feed, items...)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp > feed[j].Timestamp
	})
	return feed, nil
}

// coordinateKey identifies a map position as "lat,lng".
func coordinateKey(loc models.Location) string {
	return strconv.FormatFloat(loc.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Longitude, 'f', -1, 64)
}

// MapMarkers groups the feed by review location. Markers keep the order of
// their newest review and take that review's bar name.
func (s *ReviewService) MapMarkers(ctx context.Context, userID string) ([]models.Marker, error) {
	feed, err := s.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var markers []models.Marker
	for _, item := range feed {
		if item.Location == nil {
			continue
		}
		key := coordinateKey(*item.Location)
		i, ok := index[key]
		if !ok {
			i = len(markers)
			index[key] = i
			markers = append(markers, models.Marker{
				Key:       key,
				Latitude:  item.Location.Latitude,
				Longitude: item.Location.Longitude,
				Bar:       item.Bar,
			})
		}
		markers[i].Reviews = append(markers[i].Reviews, item)
	}
	return markers, nil
}

// overviewLetter is the upper-cased first letter of name, or "#" when it
// does not start with a letter.
func overviewLetter(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(r) {
		return "#"
	}
	return string(unicode.ToUpper(r))
}

// Overview groups the caller's reviews by the first letter of the beer name.
// A non-empty bar keeps only reviews from that bar.
func (s *ReviewService) Overview(ctx context.Context, userID, bar string) ([]models.OverviewGroup, error) {
	reviews, err := s.ListReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	bar = strings.TrimSpace(bar)

	groups := make(map[string][]models.Review)
	for _, r := range reviews {
		if bar != "" && !strings.EqualFold(r.Bar, bar) {
			continue
		}
		letter := overviewLetter(r.BeerName)
		groups[letter] = append(groups[letter], r)
	}

	out := make([]models.OverviewGroup, 0, len(groups))
	for letter, rs := range groups {
		out = append(out, models.OverviewGroup{Letter: letter, Reviews: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out, nil
}

// Bars returns the distinct bar names in the caller's reviews, sorted.
func (s *ReviewService) Bars(ctx context.Context, userID string) ([]string, error) {
	reviews, err := s.ListReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	bars := make([]string, 0)
	for _, r := range reviews {
		if r.Bar == "" || seen[r.Bar] {
			continue
		}
		seen[r.Bar] = true
		bars = append(bars, r.Bar)
	}
	sort.Strings(bars)
	return bars, nil
}
