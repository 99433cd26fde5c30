package geocoding

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeKakao represents the Kakao Local API.
	ProviderTypeKakao ProviderType = "kakao"
	// ProviderTypeGoogle represents Google Maps geocoding and places.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// ProviderConfig holds configuration for creating a geocoder.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (Kakao, Google)
	BaseURL   string       // Base URL override (self-hosted Nominatim)
	RateLimit int          // Rate limit for requests per second (Kakao, Google)
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates a geocoder based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "kakao": Kakao Local API (requires API key)
// - "google": Google Maps Geocoding and Places API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Geocoder, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Type {
	case ProviderTypeKakao:
		return newKakaoProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		// Nominatim is free and doesn't require an API key
		return NewNominatimProvider(config.BaseURL, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (Geocoder, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	// Apply rate limiting if specified
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

// newKakaoProvider creates a Kakao Local geocoding provider.
func newKakaoProvider(config ProviderConfig) (Geocoder, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Kakao provider")
	}

	if config.RateLimit == 0 {
		config.RateLimit = 5
		config.Logger.Warn("Rate limit for Kakao API not set, set a default value", "value", config.RateLimit)
	}

	return NewKakaoProvider(config.APIKey, config.RateLimit, config.Logger), nil
}
