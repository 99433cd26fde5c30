package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding and places services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language of returned names
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// NewGoogleProvider initializes a new GoogleProvider around a Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: "ko", log: log}
}

// ReverseGeocode returns the formatted address of the first result for coord.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (*models.Place, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "coordinate", coord)

	point, err := geo.ParseCoordinate(coord)
	if err != nil {
		return nil, err
	}

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: point.Lat, Lng: point.Lon},
		Language: gp.language,
	}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode coordinate: %w", err)
	}

	if len(results) == 0 || results[0].FormattedAddress == "" {
		return nil, ErrNoAddressFound
	}

	address := results[0].FormattedAddress
	return &models.Place{Name: address, Coordinate: coord, Address: address}, nil
}

// Search runs a Places text search for keyword.
func (gp *GoogleProvider) Search(ctx context.Context, keyword string) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Searching places using Google Maps", "keyword", keyword)

	req := maps.TextSearchRequest{Query: keyword, Language: gp.language}
	resp, err := gp.client.TextSearch(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	places := make([]models.Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		location := result.Geometry.Location
		places = append(places, models.Place{
			Name: result.Name,
			Coordinate: models.Coordinate{
				Longitude: formatDegrees(location.Lng),
				Latitude:  formatDegrees(location.Lat),
			},
			Address: result.FormattedAddress,
		})
	}

	return places, nil
}
