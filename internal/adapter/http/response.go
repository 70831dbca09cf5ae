package http

import "github.com/couchcryptid/relief-geocoder-service/internal/domain"

// GeocodeResponse is the JSON body returned for a completed resolution.
// Coordinates and map link are null when the address was not found.
type GeocodeResponse struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	MapLink     *string  `json:"map_link"`
	DisplayName string   `json:"display_name,omitempty"`
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
}

// NewGeocodeResponse converts a resolver result into its wire form.
func NewGeocodeResponse(r domain.GeocodeResult) GeocodeResponse {
	if !r.Found {
		return GeocodeResponse{Success: false, Message: r.Reason}
	}
	lat, lng, link := r.Latitude, r.Longitude, r.MapLink
	return GeocodeResponse{
		Lat:         &lat,
		Lng:         &lng,
		MapLink:     &link,
		DisplayName: r.DisplayName,
		Success:     true,
	}
}
