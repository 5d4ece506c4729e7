// Package places finds bars around a coordinate with the Google Places API.
package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"
)

// SearchRadius is the nearby search radius in meters.
const SearchRadius = 1500

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("nearby search is not configured")

// ErrInvalidCoordinates is returned for a latitude or longitude out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

type nearbySearcher interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// Finder looks up bars near a point.
type Finder struct {
	client nearbySearcher
}

// NewFinder creates a Finder. An empty apiKey yields a Finder whose searches
// fail with ErrDisabled.
func NewFinder(apiKey string) (*Finder, error) {
	if apiKey == "" {
		logrus.Warn("Google Maps API key not set, nearby bars disabled")
		return &Finder{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Finder{client: client}, nil
}

// Enabled reports whether searches can run.
func (f *Finder) Enabled() bool {
	return f.client != nil
}

// NearbyBars returns the bars within SearchRadius of lat, lng.
func (f *Finder) NearbyBars(ctx context.Context, lat, lng float64) ([]models.Place, error) {
	if !f.Enabled() {
		return nil, ErrDisabled
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}

	resp, err := f.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Radius:   SearchRadius,
		Type:     maps.PlaceTypeBar,
	})
	if err != nil {
		logrus.WithError(err).Error("Nearby search failed")
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	out := make([]models.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, models.Place{
			Name:      r.Name,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
			Vicinity:  r.Vicinity,
		})
	}
	return out, nil
}
