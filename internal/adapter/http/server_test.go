package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/relief-geocoder-service/internal/adapter/http"
	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockResolver struct {
	result    domain.GeocodeResult
	err       error
	addresses []string
}

func (m *mockResolver) Resolve(_ context.Context, address string) (domain.GeocodeResult, error) {
	m.addresses = append(m.addresses, address)
	if strings.TrimSpace(address) == "" {
		return domain.GeocodeResult{}, domain.ErrInvalidInput
	}
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(resolver domain.AddressResolver, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return httpadapter.NewServer(":0", resolver, &mockReadiness{err: readyErr}, metrics, discardLogger()), metrics
}

func postGeocode(srv http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/geocode", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGeocode_Found(t *testing.T) {
	resolver := &mockResolver{result: domain.GeocodeResult{
		Found:       true,
		Latitude:    7.0086,
		Longitude:   100.4747,
		MapLink:     "https://www.google.com/maps?q=7.0086,100.4747",
		DisplayName: "หาดใหญ่, สงขลา",
		Strategy:    domain.StrategyExact,
	}}
	srv, metrics := newTestServer(resolver, nil)

	rec := postGeocode(srv, `{"address":"อ.หาดใหญ่ จ.สงขลา"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 7.0086, body["lat"], 1e-9)
	assert.InDelta(t, 100.4747, body["lng"], 1e-9)
	assert.Equal(t, "https://www.google.com/maps?q=7.0086,100.4747", body["map_link"])
	assert.Equal(t, "หาดใหญ่, สงขลา", body["display_name"])
	assert.NotContains(t, body, "message")
	assert.Equal(t, []string{"อ.หาดใหญ่ จ.สงขลา"}, resolver.addresses)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ResolveRequests.WithLabelValues("api", "found")), 0)
}

func TestGeocode_NotFound(t *testing.T) {
	resolver := &mockResolver{result: domain.GeocodeResult{Reason: domain.NotFoundReason}}
	srv, _ := newTestServer(resolver, nil)

	rec := postGeocode(srv, `{"address":"ที่ไหนสักแห่ง"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, domain.NotFoundReason, body["message"])
	for _, key := range []string{"lat", "lng", "map_link"} {
		v, ok := body[key]
		assert.True(t, ok, "%s must be present", key)
		assert.Nil(t, v, "%s must be null", key)
	}
}

func TestGeocode_BlankAddress(t *testing.T) {
	srv, metrics := newTestServer(&mockResolver{}, nil)

	rec := postGeocode(srv, `{"address":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrInvalidInput.Error(), decode(t, rec)["error"])
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ResolveRequests.WithLabelValues("api", "invalid")), 0)
}

func TestGeocode_MalformedBody(t *testing.T) {
	resolver := &mockResolver{}
	srv, _ := newTestServer(resolver, nil)

	rec := postGeocode(srv, `{"address":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["error"])
	assert.Empty(t, resolver.addresses)
}

func TestGeocode_ProviderFailure(t *testing.T) {
	resolver := &mockResolver{err: fmt.Errorf("strategy exact: %w",
		&domain.ProviderError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("overloaded")})}
	srv, metrics := newTestServer(resolver, nil)

	rec := postGeocode(srv, `{"address":"อ.หาดใหญ่"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["error"])
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ResolveRequests.WithLabelValues("api", "error")), 0)
}

func TestRequestID_Generated(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRequestID_Propagated(t *testing.T) {
	srv, _ := newTestServer(&mockResolver{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestNewGeocodeResponse(t *testing.T) {
	found := httpadapter.NewGeocodeResponse(domain.GeocodeResult{
		Found: true, Latitude: 13.75, Longitude: 100.5, MapLink: "https://www.google.com/maps?q=13.75,100.5",
	})
	require.NotNil(t, found.Lat)
	require.NotNil(t, found.MapLink)
	assert.InDelta(t, 13.75, *found.Lat, 0)
	assert.True(t, found.Success)

	missing := httpadapter.NewGeocodeResponse(domain.GeocodeResult{Reason: "nope"})
	assert.Nil(t, missing.Lat)
	assert.Nil(t, missing.Lng)
	assert.Nil(t, missing.MapLink)
	assert.False(t, missing.Success)
	assert.Equal(t, "nope", missing.Message)
}
