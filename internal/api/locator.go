package api

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// PermissionHeader carries the device's location permission state.
const PermissionHeader = "X-Location-Permission"

// requestLocator reads the device fix the client sent along with the request.
type requestLocator struct {
	r *http.Request
}

func (l requestLocator) CurrentCoordinate(_ context.Context) (models.Coordinate, error) {
	if l.r.Header.Get(PermissionHeader) == "denied" {
		return models.Coordinate{}, models.ErrPermissionDenied
	}

	query := l.r.URL.Query()
	coord := models.Coordinate{Longitude: query.Get("x"), Latitude: query.Get("y")}
	if coord.Longitude == "" || coord.Latitude == "" {
		return models.Coordinate{}, models.ErrPositionUnavailable
	}

	return coord, nil
}
