// Package api exposes the trip comparison, place lookup and saved home over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/UnknownOlympus/homebound/internal/report"
	"github.com/UnknownOlympus/homebound/internal/repository"
	"github.com/UnknownOlympus/homebound/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trips is the part of the trip service the HTTP layer drives.
type Trips interface {
	Compare(ctx context.Context, origin, destination models.Place) (models.TripComparison, error)
	CurrentPlace(ctx context.Context, locator service.Locator) (models.Place, error)
	SearchPlaces(ctx context.Context, keyword string) ([]models.Place, error)
	SaveHome(ctx context.Context, place models.Place) error
	LoadHome(ctx context.Context) (*models.Place, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log      *slog.Logger
	trips    Trips
	health   repository.Pinger
	gatherer prometheus.Gatherer
	validate *validator.Validate
}

// NewServer creates a Server. health is pinged by /healthz and gatherer backs /metrics.
func NewServer(log *slog.Logger, trips Trips, health repository.Pinger, gatherer prometheus.Gatherer) *Server {
	return &Server{
		log:      log,
		trips:    trips,
		health:   health,
		gatherer: gatherer,
		validate: validator.New(),
	}
}

// Routes registers every endpoint on a new router and wraps it with error reporting.
func (s *Server) Routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/trip", s.tripHandler)
	router.HandlerFunc(http.MethodGet, "/v1/location", s.locationHandler)
	router.HandlerFunc(http.MethodGet, "/v1/places", s.placesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/home", s.loadHomeHandler)
	router.HandlerFunc(http.MethodPut, "/v1/home", s.saveHomeHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", s.healthHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return report.Middleware(router)
}
