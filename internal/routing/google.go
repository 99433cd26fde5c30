package routing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/UnknownOlympus/homebound/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleDirectionsClient is the part of the Google Maps client used for routing.
type GoogleDirectionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// Google vehicle types reported for rail lines.
var googleRailVehicles = map[string]bool{
	"RAIL":                true,
	"METRO_RAIL":          true,
	"SUBWAY":              true,
	"TRAM":                true,
	"MONORAIL":            true,
	"HEAVY_RAIL":          true,
	"COMMUTER_TRAIN":      true,
	"HIGH_SPEED_TRAIN":    true,
	"LONG_DISTANCE_TRAIN": true,
}

// GoogleProvider implements transit or taxi routing using the Google Directions API.
// The travel mode it queries is fixed at construction.
type GoogleProvider struct {
	client GoogleDirectionsClient // client is the Google Maps API client
	mode   models.Mode            // mode is the offer this provider produces
	log    *slog.Logger           // log is the logger for logging operations
}

// NewGoogleTransitProvider returns a provider quoting public transit.
func NewGoogleTransitProvider(client GoogleDirectionsClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, mode: models.ModePublic, log: log}
}

// NewGoogleTaxiProvider returns a provider quoting a car ride. Google reports no taxi fare.
func NewGoogleTaxiProvider(client GoogleDirectionsClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, mode: models.ModeTaxi, log: log}
}

// Name returns the provider name qualified by travel mode, google_transit or google_driving.
func (gp *GoogleProvider) Name() string {
	if gp.mode == models.ModePublic {
		return string(ProviderTypeGoogle) + "_transit"
	}
	return string(ProviderTypeGoogle) + "_driving"
}

// Route requests directions and normalizes the first route.
func (gp *GoogleProvider) Route(ctx context.Context, origin, destination models.Coordinate) (*models.TripLeg, error) {
	gp.log.DebugContext(ctx, "Routing using Google Maps", "mode", gp.mode, "origin", origin, "destination", destination)

	req := &maps.DirectionsRequest{
		Origin:      googleLatLng(origin),
		Destination: googleLatLng(destination),
		Mode:        maps.TravelModeDriving,
	}
	if gp.mode == models.ModePublic {
		req.Mode = maps.TravelModeTransit
	}

	routes, _, err := gp.client.Directions(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND") {
			return nil, fmt.Errorf("%w: %w", ErrNoRouteFound, err)
		}
		return nil, fmt.Errorf("%w: failed to get directions: %w", ErrProviderUnavailable, err)
	}

	if len(routes) == 0 {
		return nil, ErrNoRouteFound
	}

	route := routes[0]
	if len(route.Legs) == 0 || route.Legs[0] == nil {
		return nil, fmt.Errorf("%w: route without legs", ErrMalformedResponse)
	}

	leg := route.Legs[0]
	duration := int(math.Round(leg.Duration.Seconds()))
	result := &models.TripLeg{
		Mode:     gp.mode,
		Duration: duration,
		Summary: models.Summary{
			Distance: leg.Distance.Meters,
			Duration: duration,
		},
		Provider: gp.Name(),
	}

	if gp.mode == models.ModeTaxi {
		return result, nil
	}

	if route.Fare != nil {
		cost, err := toFigure("fare", route.Fare.Value)
		if err != nil {
			return nil, err
		}
		result.Cost = cost
		result.Summary.Fare.Transit = cost
	}

	result.Route = make([]string, 0, len(leg.Steps))
	for _, step := range leg.Steps {
		if step == nil {
			continue
		}
		minutes := roundMinutes(step.Duration.Seconds())
		if step.TravelMode == "TRANSIT" && step.TransitDetails != nil {
			details := step.TransitDetails
			label := "bus"
			if googleRailVehicles[details.Line.Vehicle.Type] {
				label = "subway"
			}
			result.Route = append(result.Route,
				transitStep(label, details.DepartureStop.Name, details.ArrivalStop.Name, minutes))
			continue
		}
		result.Route = append(result.Route, walkStep(minutes))
	}

	return result, nil
}

// googleLatLng formats a coordinate the way the Directions API expects: "lat,lng".
func googleLatLng(coord models.Coordinate) string {
	return coord.Latitude + "," + coord.Longitude
}
