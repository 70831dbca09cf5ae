package domain

import (
	"context"
	"errors"
	"log/slog"
)

// AddressResolver resolves a free-text address. *Resolver implements it.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (GeocodeResult, error)
}

// Outcomes of a single Resolve call, as counted per caller.
const (
	ResolveFound    = "found"
	ResolveNotFound = "not_found"
	ResolveInvalid  = "invalid"
	ResolveError    = "error"
)

// ResolveOutcome classifies what a Resolve call returned.
func ResolveOutcome(result GeocodeResult, err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ResolveInvalid
	case err != nil:
		return ResolveError
	case result.Found:
		return ResolveFound
	default:
		return ResolveNotFound
	}
}

// GeocodeReport fills in a report's coordinates from its address when they
// are missing. Provider failures never drop the report: GeoStatus records
// what happened so the review workflow can fall back to manual entry.
func GeocodeReport(ctx context.Context, report Report, resolver AddressResolver, logger *slog.Logger) Report {
	if report.HasCoordinates() {
		report.GeoStatus = GeoStatusProvided
		if report.MapLink == "" {
			report.MapLink = MapLink(*report.Lat, *report.Lng)
		}
		return report
	}

	// Partial coordinates are discarded rather than half-trusted.
	report.Lat, report.Lng = nil, nil

	if resolver == nil {
		report.GeoStatus = GeoStatusSkipped
		return report
	}

	result, err := resolver.Resolve(ctx, report.Address)
	switch {
	case errors.Is(err, ErrInvalidInput):
		report.GeoStatus = GeoStatusSkipped
		return report
	case err != nil:
		logger.Warn("report geocoding failed",
			"report_id", report.ID,
			"address", report.Address,
			"error", err,
		)
		report.GeoStatus = GeoStatusFailed
		return report
	}

	if !result.Found {
		report.GeoStatus = GeoStatusNotFound
		return report
	}

	lat, lng := result.Latitude, result.Longitude
	report.Lat = &lat
	report.Lng = &lng
	report.MapLink = result.MapLink
	report.DisplayName = result.DisplayName
	report.GeoStatus = GeoStatusFound
	report.GeoStrategy = result.Strategy
	report.GeocodedAt = clock.Now().UTC()
	return report
}
