package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewService(f *fixture) *ReviewService {
	svc := NewReviewService(repository.NewReviewRepository(f.store), f.friends)
	clock := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func sampleReview(beer, bar string, lat, lng float64) models.Review {
	return models.Review{
		BeerName: beer,
		Rating:   4.5,
		Review:   "Crisp",
		Bar:      bar,
		Location: &models.Location{Latitude: lat, Longitude: lng},
	}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(newFixture(t))

	created, err := svc.CreateReview(ctx, "a", sampleReview(" Pilsner ", "Hop Inn", 51.5, -0.12))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Pilsner", created.BeerName)
	assert.Equal(t, int64(1_700_000_001_000), created.Timestamp)

	reviews, err := svc.ListReviews(ctx, "a")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, created.ID, reviews[0].ID)
	assert.Equal(t, 4.5, reviews[0].Rating)
}

func TestCreateReviewValidates(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(newFixture(t))

	tooHigh := sampleReview("IPA", "Bar", 0, 0)
	tooHigh.Rating = 5.5
	noLocation := sampleReview("IPA", "Bar", 0, 0)
	noLocation.Location = nil
	badLatitude := sampleReview("IPA", "Bar", 95, 0)

	tests := []struct {
		name   string
		review models.Review
	}{
		{"missing beer", sampleReview("  ", "Bar", 0, 0)},
		{"missing bar", sampleReview("IPA", "", 0, 0)},
		{"rating above five", tooHigh},
		{"no location", noLocation},
		{"latitude out of range", badLatitude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReview(ctx, "a", tt.review)
			assert.ErrorIs(t, err, ErrInvalidReview)
		})
	}

	_, err := svc.CreateReview(ctx, "", sampleReview("IPA", "Bar", 0, 0))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(newFixture(t))

	created, err := svc.CreateReview(ctx, "a", sampleReview("IPA", "Bar", 1, 1))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteReview(ctx, "b", created.ID), ErrReviewNotFound)
	require.NoError(t, svc.DeleteReview(ctx, "a", created.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, "a", created.ID), ErrReviewNotFound)

	reviews, err := svc.ListReviews(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestFriendReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newReviewService(f)
	f.makeFriends(t, "a", "b")

	first, err := svc.CreateReview(ctx, "b", sampleReview("Lager", "Hop Inn", 51.5, -0.12))
	require.NoError(t, err)
	second, err := svc.CreateReview(ctx, "b", sampleReview("Bock", "Corner", 40, -3.7))
	require.NoError(t, err)

	reviews, err := svc.FriendReviews(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)

	own, err := svc.FriendReviews(ctx, "b", "b")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.FriendReviews(ctx, "c", "b")
	assert.ErrorIs(t, err, ErrNotFriends)
	_, err = svc.FriendReviews(ctx, "a", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.FriendReviews(ctx, "", "b")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFeedAndMarkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newReviewService(f)
	f.makeFriends(t, "a", "b")

	_, err := svc.CreateReview(ctx, "a", sampleReview("Stout", "Hop Inn", 51.5, -0.12))
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, "b", sampleReview("Lager", "Hop Inn", 51.5, -0.12))
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, "c", sampleReview("Porter", "Elsewhere", 48.8, 2.35))
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, "b", sampleReview("Bock", "Corner", 40, -3.7))
	require.NoError(t, err)

	feed, err := svc.Feed(ctx, "a")
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "Bock", feed[0].BeerName)
	assert.Equal(t, "bob", feed[0].AuthorUsername)
	assert.False(t, feed[0].Own)
	assert.Equal(t, "Stout", feed[2].BeerName)
	assert.Equal(t, "ann", feed[2].AuthorUsername)
	assert.True(t, feed[2].Own)

	markers, err := svc.MapMarkers(ctx, "a")
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, "40,-3.7", markers[0].Key)
	assert.Equal(t, "51.5,-0.12", markers[1].Key)
	assert.Equal(t, "Hop Inn", markers[1].Bar)
	assert.Len(t, markers[1].Reviews, 2)
}

func TestOverviewAndBars(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(newFixture(t))

	for _, r := range []models.Review{
		sampleReview("amber", "Hop Inn", 0, 0),
		sampleReview("Ale", "Corner", 0, 0),
		sampleReview("Bock", "Hop Inn", 0, 0),
		sampleReview("1664", "Corner", 0, 0),
	} {
		_, err := svc.CreateReview(ctx, "a", r)
		require.NoError(t, err)
	}

	groups, err := svc.Overview(ctx, "a", "")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "#", groups[0].Letter)
	assert.Equal(t, "A", groups[1].Letter)
	assert.Len(t, groups[1].Reviews, 2)
	assert.Equal(t, "B", groups[2].Letter)

	groups, err = svc.Overview(ctx, "a", "hop inn")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "amber", groups[0].Reviews[0].BeerName)

	bars, err := svc.Bars(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Corner", "Hop Inn"}, bars)
}
