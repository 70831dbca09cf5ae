package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/relief-geocoder-service/internal/config"
	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

// maxCandidates is how many matches are requested per query; only the first is used.
const maxCandidates = 3

// Options configures a Client.
type Options struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Language    string
	Timeout     time.Duration
	RateLimit   float64 // requests per second
}

// Client implements domain.Provider using the Nominatim search API.
type Client struct {
	baseURL     string
	userAgent   string
	countryCode string
	language    string
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a Nominatim client. Requests are paced to opts.RateLimit
// per second, as the public instance's usage policy requires.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		userAgent:   opts.UserAgent,
		countryCode: opts.CountryCode,
		language:    opts.Language,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Search queries Nominatim for up to three candidates restricted to the
// configured country and language. Any failure is a *domain.ProviderError.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	params := url.Values{
		"q":               {query},
		"format":          {"json"},
		"limit":           {strconv.Itoa(maxCandidates)},
		"countrycodes":    {c.countryCode},
		"accept-language": {c.language},
	}

	start := time.Now()
	candidates, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode())
	c.metrics.ProviderDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.ProviderRequests.WithLabelValues("error").Inc()
	case len(candidates) == 0:
		c.metrics.ProviderRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.ProviderRequests.WithLabelValues("success").Inc()
	}
	return candidates, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.ProviderError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.ProviderError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Err: fmt.Errorf("search request: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("nominatim upstream error", "status", resp.StatusCode)
		return nil, &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("nominatim API error: %s", strings.TrimSpace(string(body))),
		}
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &domain.ProviderError{Err: fmt.Errorf("decode response: %w", err)}
	}

	candidates := make([]domain.Candidate, 0, len(places))
	for _, p := range places {
		cand, err := p.candidate()
		if err != nil {
			c.logger.Warn("skipping malformed nominatim place", "display_name", p.DisplayName, "error", err)
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// place mirrors the relevant parts of a Nominatim search result. Coordinates
// are string-encoded decimal degrees.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

var errMissingCoordinates = errors.New("missing coordinates")

func (p place) candidate() (domain.Candidate, error) {
	if p.Lat == "" || p.Lon == "" {
		return domain.Candidate{}, errMissingCoordinates
	}
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("lon: %w", err)
	}
	return domain.Candidate{Lat: lat, Lon: lon, DisplayName: p.DisplayName}, nil
}

// NewProvider builds the cached Nominatim provider described by cfg.
func NewProvider(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *CachedProvider {
	client := NewClient(Options{
		BaseURL:     cfg.NominatimURL,
		UserAgent:   cfg.UserAgent,
		CountryCode: cfg.CountryCode,
		Language:    cfg.Language,
		Timeout:     cfg.NominatimTimeout,
		RateLimit:   cfg.NominatimRateLimit,
	}, metrics, logger)
	return NewCachedProvider(client, cfg.CacheSize, metrics)
}
