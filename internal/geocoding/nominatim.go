package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// NominatimBaseURL -- public OpenStreetMap Nominatim endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

const nominatimSearchLimit = 10

// NominatimProvider implements the Geocoder interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// nominatimPlace represents one place in a Nominatim JSON (jsonv2) response.
type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"` // Latitude as string
	Lon         string `json:"lon"` // Longitude as string
	Error       string `json:"error"`
}

// ErrNominatimInvalidCoords is returned when Nominatim answers with unparseable coordinates.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NewNominatimProvider creates a new Nominatim geocoding provider.
// An empty baseURL selects the public Nominatim instance.
func NewNominatimProvider(baseURL string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	provider := NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, log)
	if baseURL != "" {
		provider.baseURL = strings.TrimRight(baseURL, "/")
	}
	return provider
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: NominatimBaseURL,
		log:     log,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Homebound/1.0 (https://github.com/UnknownOlympus/homebound)",
	}
}

// ReverseGeocode names the place at coord using /reverse.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (*models.Place, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "coordinate", coord)

	var result nominatimPlace
	err := np.get(ctx, "/reverse", url.Values{
		"lat": {coord.Latitude},
		"lon": {coord.Longitude},
	}, &result)
	if err != nil {
		return nil, err
	}

	// Nominatim answers 200 with {"error": "Unable to geocode"} over open water.
	if result.Error != "" || result.DisplayName == "" {
		return nil, ErrNoAddressFound
	}

	name := result.Name
	if name == "" {
		name = result.DisplayName
	}

	return &models.Place{Name: name, Coordinate: coord, Address: result.DisplayName}, nil
}

// Search looks keyword up using /search.
//
// Uses a progressive fallback strategy for comma-separated addresses:
// 1. Try the full keyword
// 2. Try it without the last component (usually the house number)
// 3. Try it without the last two components
// 4. Try the first component only
func (np *NominatimProvider) Search(ctx context.Context, keyword string) ([]models.Place, error) {
	np.log.DebugContext(ctx, "Searching places using Nominatim", "keyword", keyword)

	variations := np.generateAddressFallbacks(keyword)

	for idx, variation := range variations {
		places, err := np.searchSingle(ctx, variation)
		if err != nil {
			return nil, err
		}
		if len(places) > 0 {
			if idx > 0 {
				np.log.InfoContext(ctx, "Found places using fallback keyword",
					"original", keyword,
					"fallback", variation,
					"fallback_level", idx)
			}
			return places, nil
		}

		np.log.DebugContext(ctx, "Keyword variation returned no results, trying fallback",
			"variation", variation,
			"fallback_level", idx)
	}

	return []models.Place{}, nil
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func (np *NominatimProvider) generateAddressFallbacks(address string) []string {
	if address == "" {
		return []string{""}
	}

	// Use a map to track unique variations and preserve order
	seen := make(map[string]bool)
	variations := []string{}

	// Helper to add variation if not seen
	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		addVariation(parts[0])
	}

	return variations
}

// searchSingle performs a single search request without fallback logic.
func (np *NominatimProvider) searchSingle(ctx context.Context, keyword string) ([]models.Place, error) {
	var results []nominatimPlace
	err := np.get(ctx, "/search", url.Values{
		"q":     {keyword},
		"limit": {strconv.Itoa(nominatimSearchLimit)},
	}, &results)
	if err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(results))
	for _, result := range results {
		if _, err = strconv.ParseFloat(result.Lat, 64); err != nil {
			return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, result.Lat)
		}
		if _, err = strconv.ParseFloat(result.Lon, 64); err != nil {
			return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, result.Lon)
		}

		name := result.Name
		if name == "" {
			name = result.DisplayName
		}
		places = append(places, models.Place{
			Name:       name,
			Coordinate: models.Coordinate{Longitude: result.Lon, Latitude: result.Lat},
			Address:    result.DisplayName,
		})
	}

	return places, nil
}

func (np *NominatimProvider) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL, err := url.Parse(np.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}

	query.Set("format", "jsonv2")
	query.Set("accept-language", "ko,en") // Prefer Korean, fallback to English
	reqURL.RawQuery = query.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", "ko,en")

	return fetchJSON(ctx, np.client, np.log, req, out)
}
