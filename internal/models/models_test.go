package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReview() Review {
	return Review{
		BeerName: "Duvel",
		Rating:   4.5,
		Review:   "Strong and crisp",
		Bar:      "De Kroeg",
		Location: &Location{Latitude: 51.05, Longitude: 3.72},
	}
}

func TestReviewValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Review)
		field  string
	}{
		{"valid", func(r *Review) {}, ""},
		{"zero rating allowed", func(r *Review) { r.Rating = 0 }, ""},
		{"rating above five", func(r *Review) { r.Rating = 5.5 }, "rating"},
		{"negative rating", func(r *Review) { r.Rating = -1 }, "rating"},
		{"missing beer", func(r *Review) { r.BeerName = "" }, "beerName"},
		{"missing text", func(r *Review) { r.Review = "" }, "review"},
		{"missing bar", func(r *Review) { r.Bar = "" }, "bar"},
		{"missing location", func(r *Review) { r.Location = nil }, "location"},
		{"bad latitude", func(r *Review) { r.Location.Latitude = 91 }, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReview()
			tt.mutate(&r)
			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestProfileUpdateValidate(t *testing.T) {
	color := "#12abEF"
	assert.NoError(t, (&ProfileUpdate{AvatarColor: &color}).Validate())

	bad := "green"
	assert.Error(t, (&ProfileUpdate{AvatarColor: &bad}).Validate())

	empty := ""
	assert.NoError(t, (&ProfileUpdate{Bio: &empty}).Validate())
	assert.True(t, ProfileUpdate{}.Empty())
}

func TestFriendRequestValidate(t *testing.T) {
	ok := FriendRequest{SenderID: "a", ReceiverID: "b", Status: StatusPending}
	assert.NoError(t, ok.Validate())
	assert.True(t, ok.IsPending())
	assert.True(t, ok.Between("a", "b"))
	assert.False(t, ok.Between("b", "a"))

	assert.Error(t, (&FriendRequest{SenderID: "a", Status: StatusPending}).Validate())
	assert.Error(t, (&FriendRequest{SenderID: "a", ReceiverID: "b", Status: "maybe"}).Validate())
}

func TestUserDefaults(t *testing.T) {
	u := User{ID: "u1"}
	u.ApplyDefaults()
	assert.Equal(t, UnknownUsername, u.Username)
	assert.Equal(t, DefaultAvatarColor, u.AvatarColor)
}
