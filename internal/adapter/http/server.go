package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// Server exposes the geocoding API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	resolver   domain.AddressResolver
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/geocode, /healthz, /readyz, and /metrics routes.
func NewServer(
	addr string,
	resolver domain.AddressResolver,
	ready sharedobs.ReadinessChecker,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     engine,
			ReadTimeout: 10 * time.Second,
			// A full fallback chain against a rate-limited provider can take a while.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}

	engine.Use(gin.Recovery(), requestID(), s.requestLogger())

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/geocode", s.handleGeocode)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type geocodeRequest struct {
	Address string `json:"address"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGeocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ResolveRequests.WithLabelValues("api", domain.ResolveInvalid).Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON with an address field"})
		return
	}

	result, err := s.resolver.Resolve(c.Request.Context(), req.Address)
	s.metrics.ResolveRequests.WithLabelValues("api", domain.ResolveOutcome(result, err)).Inc()
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("geocode failed",
			"request_id", c.GetString(ctxRequestID),
			"error", err,
		)
		c.JSON(statusForError(err), errorResponse{Error: "geocoding provider unavailable, try again later"})
		return
	}

	c.JSON(http.StatusOK, NewGeocodeResponse(result))
}

func statusForError(err error) int {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// requestID propagates an incoming X-Request-ID or assigns a fresh one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxRequestID),
		)
	}
}
