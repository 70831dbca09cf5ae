package domain

import (
	"context"
	"time"
)

// Report statuses set by the field team; the service only defaults them.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusRescued    = "rescued"
	StatusClosed     = "closed"
)

// Urgency bounds, 1 = can wait, 5 = life-threatening.
const (
	MinUrgency = 1
	MaxUrgency = 5
)

// GeoStatus values describing how a report's coordinates were obtained.
const (
	GeoStatusProvided = "provided"  // coordinates came with the report
	GeoStatusFound    = "found"     // resolved from the address
	GeoStatusNotFound = "not_found" // no strategy matched; manual entry needed
	GeoStatusSkipped  = "skipped"   // no address to resolve
	GeoStatusFailed   = "failed"    // provider error
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Household counts the people at the reported address.
type Household struct {
	Total     int `json:"total"`
	Children  int `json:"children,omitempty"`
	Elderly   int `json:"elderly,omitempty"`
	Bedridden int `json:"bedridden,omitempty"`
}

// Report is a flood-victim report after extraction and human review.
type Report struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phones    []string  `json:"phones,omitempty"`
	Household Household `json:"household"`
	Urgency   int       `json:"urgency"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`

	// Geocoding fields. Lat/Lng are nil until coordinates are known.
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	MapLink     string    `json:"map_link,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	GeoStatus   string    `json:"geo_status,omitempty"`
	GeoStrategy string    `json:"geo_strategy,omitempty"`
	GeocodedAt  time.Time `json:"geocoded_at,omitzero"`

	ProcessedAt time.Time `json:"processed_at"`
}

// HasCoordinates reports whether both coordinates are set.
func (r Report) HasCoordinates() bool {
	return r.Lat != nil && r.Lng != nil
}
