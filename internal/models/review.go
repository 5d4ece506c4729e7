package models

// Location is a coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Review is one drink rating stored under users/{uid}/reviews/{id}.
type Review struct {
	ID            string    `json:"id,omitempty"`
	BeerName      string    `json:"beerName" validate:"required,max=100"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
	Review        string    `json:"review" validate:"required,max=2000"`
	Bar           string    `json:"bar" validate:"required,max=100"`
	Location      *Location `json:"location" validate:"required"`
	SpotLatitude  float64   `json:"spotLatitude,omitempty" validate:"gte=-90,lte=90"`
	SpotLongitude float64   `json:"spotLongitude,omitempty" validate:"gte=-180,lte=180"`
	Timestamp     int64     `json:"timestamp"`
}

// FeedItem is a review tagged with its author.
type FeedItem struct {
	Review
	AuthorID       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	Own            bool   `json:"own"`
}

// Marker groups the feed reviews written at one coordinate.
type Marker struct {
	Key       string     `json:"key"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Bar       string     `json:"bar"`
	Reviews   []FeedItem `json:"reviews"`
}

// OverviewGroup holds reviews whose beer name starts with Letter.
type OverviewGroup struct {
	Letter  string   `json:"letter"`
	Reviews []Review `json:"reviews"`
}

// Place is a venue returned by the nearby search.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Vicinity  string  `json:"vicinity,omitempty"`
}
