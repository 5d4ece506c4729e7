package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/places"
	log "github.com/sirupsen/logrus"
)

// BarFinder looks up bars around a coordinate.
type BarFinder interface {
	NearbyBars(ctx context.Context, lat, lng float64) ([]models.Place, error)
}

type BarsHandler struct {
	Finder BarFinder
}

func NewBarsHandler(finder BarFinder) *BarsHandler {
	return &BarsHandler{Finder: finder}
}

// NearbyBarsHandler serves GET /bars/nearby?lat=&lng=.
func (h *BarsHandler) NearbyBarsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeMessage(w, http.StatusBadRequest, "lat and lng must be numbers.")
		return
	}

	bars, err := h.Finder.NearbyBars(r.Context(), lat, lng)
	switch {
	case errors.Is(err, places.ErrDisabled):
		writeMessage(w, http.StatusServiceUnavailable, "Nearby search is not available.")
		return
	case errors.Is(err, places.ErrInvalidCoordinates):
		writeMessage(w, http.StatusBadRequest, "Coordinates are out of range.")
		return
	case err != nil:
		log.WithError(err).Error("Nearby bar search failed")
		writeMessage(w, http.StatusBadGateway, "Could not search for bars.")
		return
	}
	writeJSON(w, http.StatusOK, bars)
}
