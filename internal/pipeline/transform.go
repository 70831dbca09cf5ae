package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

// ReportTransformer implements Transformer using the domain report functions
// with optional address geocoding.
type ReportTransformer struct {
	resolver domain.AddressResolver
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewTransformer creates a ReportTransformer. Pass a nil resolver to disable
// geocoding; reports then leave with geo_status "skipped" unless they carry coordinates.
func NewTransformer(resolver domain.AddressResolver, metrics *observability.Metrics, logger *slog.Logger) *ReportTransformer {
	if resolver != nil {
		resolver = countingResolver{inner: resolver, metrics: metrics}
	}
	return &ReportTransformer{
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Report, error) {
	report, err := domain.ParseReport(raw)
	if err != nil {
		return domain.Report{}, err
	}

	report = domain.NormalizeReport(report)
	report = domain.GeocodeReport(ctx, report, t.resolver, t.logger)
	t.metrics.ReportsGeocoded.WithLabelValues(report.GeoStatus).Inc()

	return report, nil
}

// countingResolver records every pipeline resolution under source "pipeline".
type countingResolver struct {
	inner   domain.AddressResolver
	metrics *observability.Metrics
}

func (c countingResolver) Resolve(ctx context.Context, address string) (domain.GeocodeResult, error) {
	result, err := c.inner.Resolve(ctx, address)
	c.metrics.ResolveRequests.WithLabelValues("pipeline", domain.ResolveOutcome(result, err)).Inc()
	return result, err
}
