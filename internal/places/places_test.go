package places

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeSearcher struct {
	got  *maps.NearbySearchRequest
	resp maps.PlacesSearchResponse
	err  error
}

func (f *fakeSearcher) NearbySearch(_ context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error) {
	f.got = r
	return f.resp, f.err
}

func TestNearbyBars(t *testing.T) {
	fake := &fakeSearcher{resp: maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{{
		Name:     "Hop Inn",
		Vicinity: "1 High St",
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 51.5, Lng: -0.12}},
	}}}}
	f := &Finder{client: fake}

	bars, err := f.NearbyBars(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "Hop Inn", bars[0].Name)
	assert.Equal(t, -0.12, bars[0].Longitude)

	assert.Equal(t, uint(SearchRadius), fake.got.Radius)
	assert.Equal(t, maps.PlaceTypeBar, fake.got.Type)
	assert.Equal(t, 51.5, fake.got.Location.Lat)
}

func TestNearbyBarsErrors(t *testing.T) {
	ctx := context.Background()

	disabled, err := NewFinder("")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	_, err = disabled.NearbyBars(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrDisabled)

	f := &Finder{client: &fakeSearcher{err: errors.New("quota")}}
	_, err = f.NearbyBars(ctx, 91, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.NearbyBars(ctx, 10, 10)
	assert.Error(t, err)
}
