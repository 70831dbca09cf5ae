package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidInput is returned when the address is empty after normalization.
var ErrInvalidInput = errors.New("address is required")

// ProviderError reports a transport-level failure from the geocoding
// provider. It aborts the whole resolution.
type ProviderError struct {
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("geocoding provider returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("geocoding provider unavailable: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Candidate is one match returned by a geocoding provider.
type Candidate struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Provider looks up free-text queries. An empty slice with a nil error means
// the provider has no match for the query.
type Provider interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// mapLinkBase is the map URL template; coordinates are appended as "lat,lng".
const mapLinkBase = "https://www.google.com/maps?q="

// MapLink builds the map URL for a coordinate pair.
func MapLink(lat, lng float64) string {
	return mapLinkBase + formatCoord(lat) + "," + formatCoord(lng)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GeocodeResult is the outcome of a resolution: either Found with a complete
// coordinate pair, or not found with a Reason.
type GeocodeResult struct {
	Found       bool
	Latitude    float64
	Longitude   float64
	MapLink     string
	DisplayName string
	Reason      string

	// Diagnostics: which strategy matched and the query it sent.
	Strategy string
	Query    string
}

func foundResult(c Candidate, strategy, query string) GeocodeResult {
	return GeocodeResult{
		Found:       true,
		Latitude:    c.Lat,
		Longitude:   c.Lon,
		MapLink:     MapLink(c.Lat, c.Lon),
		DisplayName: c.DisplayName,
		Strategy:    strategy,
		Query:       query,
	}
}

func notFoundResult(reason string) GeocodeResult {
	return GeocodeResult{Reason: reason}
}
