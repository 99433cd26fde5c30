// Package routing queries public-transit and taxi routing services and reduces every
// vendor response to a models.TripLeg.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// Provider is a routing service able to quote a single mode between two coordinates.
// Route returns a leg whose fare fields are zero when the vendor did not report one.
type Provider interface {
	Name() string
	Route(ctx context.Context, origin, destination models.Coordinate) (*models.TripLeg, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Failure classes shared by every provider. Provider errors wrap exactly one of them.
var (
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	ErrNoRouteFound        = errors.New("no route found")
	ErrMalformedResponse   = errors.New("malformed routing response")

	// ErrUnauthorized accompanies ErrProviderUnavailable when the API key was rejected.
	ErrUnauthorized = errors.New("routing API unauthorized (invalid API key)")
)

// getJSON performs a GET request and decodes a 2xx JSON body into out.
func getJSON(ctx context.Context, client HTTPClient, log *slog.Logger, reqURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrProviderUnavailable, err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		log.ErrorContext(ctx, "Routing API rejected credentials", "status", resp.StatusCode)
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, ErrUnauthorized)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		log.ErrorContext(ctx, "Routing API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	log.DebugContext(ctx, "Routing raw response", "body", string(body))

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}

const secondsPerMinute = 60

// maxFigure bounds any duration, distance or fare a provider may report.
const maxFigure = math.MaxInt32

// toFigure converts a reported duration, distance or fare.
// NaN, infinite, negative and overflowing values make the response malformed.
func toFigure(field string, value float64) (int, error) {
	if math.IsNaN(value) || value < 0 || value > maxFigure {
		return 0, fmt.Errorf("%w: %s %v out of range", ErrMalformedResponse, field, value)
	}
	return int(math.Round(value)), nil
}

func roundMinutes(seconds float64) int {
	return int(math.Round(seconds / secondsPerMinute))
}

func walkStep(minutes int) string {
	return fmt.Sprintf("walk (%dmin)", minutes)
}

func transitStep(label, from, to string, minutes int) string {
	return fmt.Sprintf("%s (%s – %s) (%dmin)", label, from, to, minutes)
}
