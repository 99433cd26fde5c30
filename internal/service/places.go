package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/models"
)

// minKeywordLength is the shortest trimmed keyword worth searching for.
const minKeywordLength = 2

// Locator reports the device's current position.
// It fails with models.ErrPermissionDenied or models.ErrPositionUnavailable.
type Locator interface {
	CurrentCoordinate(ctx context.Context) (models.Coordinate, error)
}

// CurrentPlace locates the user and names the position. When reverse geocoding fails
// the place is named after its coordinates instead.
func (ts *TripService) CurrentPlace(ctx context.Context, locator Locator) (models.Place, error) {
	coord, err := locator.CurrentCoordinate(ctx)
	if err != nil {
		ts.log.WarnContext(ctx, "Failed to get current position", "error", err)
		return models.Place{}, fmt.Errorf("failed to locate: %w", err)
	}

	point, err := geo.ParseCoordinate(coord)
	if err != nil {
		return models.Place{}, fmt.Errorf("%w: %w", models.ErrPositionUnavailable, err)
	}

	place, err := ts.geocoder.ReverseGeocode(ctx, coord)
	if err != nil || place == nil {
		ts.log.WarnContext(ctx, "Reverse geocoding failed, naming place by coordinates",
			"coordinate", coord, "error", err)
		return models.Place{
			Name:       fmt.Sprintf("Latitude: %.6f, Longitude: %.6f", point.Lat, point.Lon),
			Coordinate: coord,
		}, nil
	}

	return *place, nil
}

// SearchPlaces returns the places matching keyword. Keywords shorter than two
// characters after trimming yield no places and no query.
func (ts *TripService) SearchPlaces(ctx context.Context, keyword string) ([]models.Place, error) {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) < minKeywordLength {
		return []models.Place{}, nil
	}

	places, err := ts.geocoder.Search(ctx, keyword)
	if err != nil {
		ts.log.ErrorContext(ctx, "Place search failed", "keyword", keyword, "error", err)
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	if places == nil {
		places = []models.Place{}
	}

	ts.log.DebugContext(ctx, "Place search finished", "keyword", keyword, "results", len(places))
	return places, nil
}

// SaveHome replaces the saved home after checking its coordinates.
func (ts *TripService) SaveHome(ctx context.Context, place models.Place) error {
	if _, err := geo.ParseCoordinate(place.Coordinate); err != nil {
		return err
	}
	return ts.homes.Save(ctx, place)
}

// LoadHome returns the saved home, or nil when none was saved.
func (ts *TripService) LoadHome(ctx context.Context) (*models.Place, error) {
	return ts.homes.Load(ctx)
}
