package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// RouteServerProvider queries the in-house transit route server.
type RouteServerProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL of the route server
	log     *slog.Logger // Logger for logging operations
}

type routeServerResponse struct {
	Count       *int                   `json:"count"`
	Itineraries []routeServerItinerary `json:"itineraries"`
}

type routeServerItinerary struct {
	Summary *struct {
		Duration float64 `json:"duration"` // seconds
		Distance float64 `json:"distance"` // meters
	} `json:"summary"`
	Fare float64          `json:"fare"`
	Legs []routeServerLeg `json:"legs"`
}

type routeServerLeg struct {
	Type     string          `json:"type"`
	Duration float64         `json:"duration"` // seconds
	Start    routeServerStop `json:"start"`
	End      routeServerStop `json:"end"`
}

type routeServerStop struct {
	Name    string `json:"name"`
	Station string `json:"station"`
}

func (s routeServerStop) label() string {
	if s.Station != "" {
		return s.Station
	}
	return s.Name
}

// NewRouteServerProvider creates a route server provider with a default HTTP client.
func NewRouteServerProvider(baseURL string, timeout time.Duration, log *slog.Logger) *RouteServerProvider {
	return NewRouteServerProviderWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewRouteServerProviderWithClient creates a route server provider with a custom HTTP client.
func NewRouteServerProviderWithClient(client HTTPClient, baseURL string, log *slog.Logger) *RouteServerProvider {
	return &RouteServerProvider{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}
}

// Name returns the provider name.
func (rp *RouteServerProvider) Name() string { return string(ProviderTypeRouteServer) }

// Route asks the route server for transit itineraries and normalizes the first one.
func (rp *RouteServerProvider) Route(
	ctx context.Context,
	origin, destination models.Coordinate,
) (*models.TripLeg, error) {
	rp.log.DebugContext(ctx, "Routing using route server", "origin", origin, "destination", destination)

	query := url.Values{}
	query.Set("originX", origin.Longitude)
	query.Set("originY", origin.Latitude)
	query.Set("destinationX", destination.Longitude)
	query.Set("destinationY", destination.Latitude)

	var resp routeServerResponse
	if err := getJSON(ctx, rp.client, rp.log, rp.baseURL+"/route?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Count == nil && resp.Itineraries == nil {
		return nil, fmt.Errorf("%w: route server body has neither count nor itineraries", ErrMalformedResponse)
	}
	if (resp.Count != nil && *resp.Count == 0) || len(resp.Itineraries) == 0 {
		return nil, ErrNoRouteFound
	}

	itinerary := resp.Itineraries[0]
	if itinerary.Summary == nil {
		return nil, fmt.Errorf("%w: itinerary without summary", ErrMalformedResponse)
	}

	duration, err := toFigure("duration", itinerary.Summary.Duration)
	if err != nil {
		return nil, err
	}
	distance, err := toFigure("distance", itinerary.Summary.Distance)
	if err != nil {
		return nil, err
	}
	fare, err := toFigure("fare", itinerary.Fare)
	if err != nil {
		return nil, err
	}

	steps := make([]string, 0, len(itinerary.Legs))
	for _, leg := range itinerary.Legs {
		seconds, err := toFigure("leg duration", leg.Duration)
		if err != nil {
			return nil, err
		}
		minutes := roundMinutes(float64(seconds))
		switch strings.ToLower(leg.Type) {
		case "walk":
			steps = append(steps, walkStep(minutes))
		case "transit":
			label := "bus"
			if leg.Start.Station != "" || leg.End.Station != "" {
				label = "subway"
			}
			steps = append(steps, transitStep(label, leg.Start.label(), leg.End.label(), minutes))
		default:
			rp.log.WarnContext(ctx, "Skipping route server leg of unknown type", "type", leg.Type)
		}
	}

	return &models.TripLeg{
		Mode:     models.ModePublic,
		Duration: duration,
		Cost:     fare,
		Route:    steps,
		Summary: models.Summary{
			Distance: distance,
			Duration: duration,
			Fare:     models.Fare{Transit: fare},
		},
		Provider: rp.Name(),
	}, nil
}
