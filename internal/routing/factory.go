package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of routing provider.
type ProviderType string

const (
	// ProviderTypeRouteServer represents the in-house transit route server.
	ProviderTypeRouteServer ProviderType = "routeserver"
	// ProviderTypeODsay represents the ODsay public transit API.
	ProviderTypeODsay ProviderType = "odsay"
	// ProviderTypeGoogle represents the Google Maps Directions API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeKakao represents Kakao Mobility directions.
	ProviderTypeKakao ProviderType = "kakao"
)

const defaultTimeout = 10 * time.Second

// DefaultRouteServerURL is where the route server listens when no base URL is configured.
const DefaultRouteServerURL = "http://127.0.0.1:3000"

// ProviderConfig holds configuration for creating a routing provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (ODsay, Google, Kakao)
	BaseURL   string        // Route server base URL, or an endpoint override for ODsay and Kakao
	RateLimit int           // Rate limit for requests per second (Google, Kakao)
	Timeout   time.Duration // HTTP timeout for a single request
	Logger    *slog.Logger  // Logger for the provider
}

// NewTransitProvider creates a public transit provider based on the provided configuration.
//
// Supported provider types:
// - "routeserver": in-house route server (DefaultRouteServerURL unless a base URL is set)
// - "odsay": ODsay public transit API (requires API key)
// - "google": Google Directions, transit mode (requires API key)
func NewTransitProvider(config ProviderConfig) (Provider, error) {
	config = withDefaults(config)

	switch config.Type {
	case ProviderTypeRouteServer:
		if config.BaseURL == "" {
			config.BaseURL = DefaultRouteServerURL
		}
		return NewRouteServerProvider(config.BaseURL, config.Timeout, config.Logger), nil
	case ProviderTypeODsay:
		if config.APIKey == "" {
			return nil, errors.New("API key is required for ODsay provider")
		}
		provider := NewODsayProvider(config.APIKey, config.Timeout, config.Logger)
		if config.BaseURL != "" {
			provider.baseURL = config.BaseURL
		}
		return provider, nil
	case ProviderTypeGoogle:
		client, err := newGoogleClient(config)
		if err != nil {
			return nil, err
		}
		return NewGoogleTransitProvider(client, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported transit provider type: %s", config.Type)
	}
}

// NewTaxiProvider creates a taxi provider based on the provided configuration.
//
// Supported provider types:
// - "kakao": Kakao Mobility directions (requires API key)
// - "google": Google Directions, driving mode (requires API key, fares come from the estimator)
func NewTaxiProvider(config ProviderConfig) (Provider, error) {
	config = withDefaults(config)

	switch config.Type {
	case ProviderTypeKakao:
		if config.APIKey == "" {
			return nil, errors.New("API key is required for Kakao provider")
		}
		if config.RateLimit == 0 {
			config.RateLimit = 5
			config.Logger.Warn("Rate limit for Kakao API not set, set a default value", "value", config.RateLimit)
		}
		provider := NewKakaoProvider(config.APIKey, config.RateLimit, config.Timeout, config.Logger)
		if config.BaseURL != "" {
			provider.baseURL = config.BaseURL
		}
		return provider, nil
	case ProviderTypeGoogle:
		client, err := newGoogleClient(config)
		if err != nil {
			return nil, err
		}
		return NewGoogleTaxiProvider(client, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported taxi provider type: %s", config.Type)
	}
}

func withDefaults(config ProviderConfig) ProviderConfig {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}

// newGoogleClient creates a Google Maps client with API key and rate limiting.
func newGoogleClient(config ProviderConfig) (*maps.Client, error) {
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

	return client, nil
}
