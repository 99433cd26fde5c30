// Package service compares the ways home and resolves the places the comparison runs between.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/homebound/internal/fare"
	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/geocoding"
	"github.com/UnknownOlympus/homebound/internal/metrics"
	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/UnknownOlympus/homebound/internal/report"
	"github.com/UnknownOlympus/homebound/internal/routing"
)

var (
	errNoProviders    = errors.New("no routing providers configured")
	errNotConfigured  = fmt.Errorf("%w: not configured", routing.ErrProviderUnavailable)
	errCompareAborted = errors.New("trip comparison aborted")
)

// HomeStore persists the single saved home place.
type HomeStore interface {
	Save(ctx context.Context, place models.Place) error
	Load(ctx context.Context) (*models.Place, error)
}

// TripService compares public transit and taxi between two places,
// locates the user and manages the saved home.
type TripService struct {
	log         *slog.Logger       // Logger for logging service activities
	transit     routing.Provider   // Public transit provider, may be nil
	taxi        routing.Provider   // Taxi provider, may be nil
	geocoder    geocoding.Geocoder // Geocoder for place names and search
	homes       HomeStore          // Saved home persistence
	metrics     *metrics.Metrics   // Metrics for tracking service performance
	transitFare int                // Fare used when the transit provider reports none
}

// NewTripService creates a new instance of TripService. A transitFare of zero or less
// selects DefaultTransitFare.
func NewTripService(
	log *slog.Logger,
	transit routing.Provider,
	taxi routing.Provider,
	geocoder geocoding.Geocoder,
	homes HomeStore,
	metrics *metrics.Metrics,
	transitFare int,
) *TripService {
	if transitFare <= 0 {
		transitFare = DefaultTransitFare
	}
	return &TripService{
		log:         log,
		transit:     transit,
		taxi:        taxi,
		geocoder:    geocoder,
		homes:       homes,
		metrics:     metrics,
		transitFare: transitFare,
	}
}

// providerResult is what one routing call produced.
type providerResult struct {
	leg *models.TripLeg
	err error
}

// Compare quotes public transit and taxi from origin to destination.
// The only error is geo.ErrInvalidInput for unparseable coordinates; provider failures
// degrade the comparison instead. Legs come PUBLIC first, then TAXI.
func (ts *TripService) Compare(ctx context.Context, origin, destination models.Place) (models.TripComparison, error) {
	from, err := geo.ParseCoordinate(origin.Coordinate)
	if err != nil {
		return models.TripComparison{}, fmt.Errorf("origin: %w", err)
	}
	to, err := geo.ParseCoordinate(destination.Coordinate)
	if err != nil {
		return models.TripComparison{}, fmt.Errorf("destination: %w", err)
	}

	ts.metrics.ActiveComparisons.Inc()
	defer ts.metrics.ActiveComparisons.Dec()

	estimate := fare.Estimate(geo.Distance(from, to))

	legs, err := ts.gather(ctx, origin.Coordinate, destination.Coordinate, estimate)
	status := comparisonStatus(len(legs))
	if err != nil {
		ts.log.ErrorContext(ctx, "Trip comparison failed, using taxi estimate",
			"origin", origin.Name, "destination", destination.Name, "error", err)
		report.ReportErrorWithOptions(err, report.Options{
			ExtraContext: map[string]interface{}{"origin": origin.Name, "destination": destination.Name},
		})
		legs = []models.TripLeg{estimate.Leg()}
		status = metrics.StatusFallback
	}

	ts.metrics.Comparisons.WithLabelValues(status).Inc()
	ts.log.InfoContext(ctx, "Trip comparison finished",
		"origin", origin.Name, "destination", destination.Name, "legs", len(legs), "status", status)

	return models.TripComparison{Legs: legs}, nil
}

func comparisonStatus(legs int) string {
	switch legs {
	case 0:
		return metrics.StatusEmpty
	case 1:
		return metrics.StatusPartial
	default:
		return metrics.StatusComplete
	}
}

// gather calls both providers concurrently and applies the fallback policy.
// Any panic outside a provider call aborts the comparison with an error.
func (ts *TripService) gather(
	ctx context.Context,
	origin, destination models.Coordinate,
	estimate fare.Quote,
) (legs []models.TripLeg, err error) {
	defer func() {
		if r := recover(); r != nil {
			legs, err = nil, fmt.Errorf("%w: %v", errCompareAborted, r)
		}
	}()

	if ts.transit == nil && ts.taxi == nil {
		return nil, errNoProviders
	}

	// Names are read before any goroutine starts so a failure here leaves nothing running.
	var transitName, taxiName string
	if ts.transit != nil {
		transitName = ts.transit.Name()
	}
	if ts.taxi != nil {
		taxiName = ts.taxi.Name()
	}

	public := providerResult{err: errNotConfigured}
	taxi := providerResult{err: errNotConfigured}
	var wgr sync.WaitGroup

	if ts.transit != nil {
		wgr.Add(1)
		go ts.route(ctx, &wgr, ts.transit, transitName, origin, destination, &public)
	}
	if ts.taxi != nil {
		wgr.Add(1)
		go ts.route(ctx, &wgr, ts.taxi, taxiName, origin, destination, &taxi)
	}
	wgr.Wait()

	const modes = 2
	legs = make([]models.TripLeg, 0, modes)
	if leg := resolve(models.ModePublic, public.leg, public.err, estimate, ts.transitFare); leg != nil {
		legs = append(legs, *leg)
	}
	if leg := resolve(models.ModeTaxi, taxi.leg, taxi.err, estimate, ts.transitFare); leg != nil {
		legs = append(legs, *leg)
	}

	return legs, nil
}

// route performs one provider call, recording its duration and outcome.
// A panicking provider is reported as unavailable.
func (ts *TripService) route(
	ctx context.Context,
	wg *sync.WaitGroup,
	provider routing.Provider,
	name string,
	origin, destination models.Coordinate,
	out *providerResult,
) {
	defer wg.Done()

	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.leg = nil
			out.err = fmt.Errorf("%w: provider %s panicked: %v", routing.ErrProviderUnavailable, name, r)
			ts.log.ErrorContext(ctx, "Routing provider panicked", "provider", name, "panic", r)
			report.ReportErrorWithOptions(out.err, report.Options{
				Tags:         map[string]string{"provider": name},
				ExtraContext: map[string]interface{}{"origin": origin, "destination": destination},
			})
		}

		duration := time.Since(startTime).Seconds()
		ts.metrics.RequestSeconds.WithLabelValues(name).Observe(duration)
		outcome := classify(out.leg, out.err)
		ts.metrics.ProviderOutcomes.WithLabelValues(name, outcome).Inc()

		if out.err != nil {
			ts.log.WarnContext(ctx, "Routing provider failed", "provider", name, "outcome", outcome, "error", out.err)
		} else {
			ts.log.DebugContext(ctx, "Routing provider answered", "provider", name, "outcome", outcome)
		}
	}()

	out.leg, out.err = provider.Route(ctx, origin, destination)
}
