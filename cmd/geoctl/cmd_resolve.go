package main

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/relief-geocoder-service/internal/adapter/http"
	"github.com/couchcryptid/relief-geocoder-service/internal/adapter/nominatim"
	"github.com/couchcryptid/relief-geocoder-service/internal/config"
	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

// resolveOutput is the API response plus the diagnostics the API hides.
type resolveOutput struct {
	httpadapter.GeocodeResponse
	Strategy string `json:"strategy,omitempty"`
	Query    string `json:"query,omitempty"`
}

// newCLIMetrics keeps one-shot runs out of the default registry.
var newCLIMetrics = func() *observability.Metrics {
	return observability.NewMetricsWithRegistry(prometheus.NewRegistry())
}

func newResolveCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <address>",
		Short: "geocode an address through the fallback chain and print the result as JSON",
		Long: `
resolve reads the same environment as the service (NOMINATIM_URL,
NOMINATIM_USER_AGENT, GEOCODE_COUNTRY, ...), loading .env when present.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger(cmd)
			metrics := newCLIMetrics()
			resolver := domain.NewResolver(nominatim.NewProvider(cfg, metrics, log), log,
				domain.WithObserver(metrics),
				domain.WithCallTimeout(cfg.NominatimTimeout),
			)

			result, err := resolver.Resolve(cmd.Context(), strings.Join(args, " "))
			outcome := domain.ResolveOutcome(result, err)
			metrics.ResolveRequests.WithLabelValues("cli", outcome).Inc()
			log.Debug("resolve finished", "outcome", outcome)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(resolveOutput{
				GeocodeResponse: httpadapter.NewGeocodeResponse(result),
				Strategy:        result.Strategy,
				Query:           result.Query,
			})
		},
	}
}
