// Package geocoding turns coordinates into named places and keywords into candidate places.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// Geocoder resolves places. ReverseGeocode names the place at a coordinate and
// Search returns the places matching a free-text keyword, best match first.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (*models.Place, error)
	Search(ctx context.Context, keyword string) ([]models.Place, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for geocoding providers.
var (
	ErrNoAddressFound      = errors.New("no address found")
	ErrGeocoderUnavailable = errors.New("geocoding service unavailable")
	ErrUnauthorized        = errors.New("geocoding API unauthorized (invalid API key)")
)

// fetchJSON executes req and decodes a 200 JSON body into out.
func fetchJSON(ctx context.Context, client HTTPClient, log *slog.Logger, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute geocoding request: %w", ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		log.ErrorContext(ctx, "Geocoding API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: status %d: %s", ErrGeocoderUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	log.DebugContext(ctx, "Geocoding raw response", "body", string(body))

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
