package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/homebound/internal/models"
	"golang.org/x/time/rate"
)

// KakaoLocalURL -- Kakao Local API base URL.
const KakaoLocalURL = "https://dapi.kakao.com/v2/local"

// kakaoSearchSize is the page size of keyword searches; 15 is the API maximum.
const kakaoSearchSize = 15

// KakaoProvider implements geocoding using the Kakao Local API.
type KakaoProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Kakao Local API
	apiKey  string        // REST API key
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

type kakaoAddressResponse struct {
	Documents []struct {
		Address *struct {
			AddressName string `json:"address_name"`
		} `json:"address"`
		RoadAddress *struct {
			AddressName  string `json:"address_name"`
			BuildingName string `json:"building_name"`
		} `json:"road_address"`
	} `json:"documents"`
}

type kakaoKeywordResponse struct {
	Documents []struct {
		PlaceName       string `json:"place_name"`
		AddressName     string `json:"address_name"`
		RoadAddressName string `json:"road_address_name"`
		X               string `json:"x"`
		Y               string `json:"y"`
	} `json:"documents"`
}

// NewKakaoProvider creates a new Kakao Local geocoding provider.
func NewKakaoProvider(apiKey string, rateLimit int, log *slog.Logger) *KakaoProvider {
	const timeout = 10

	return NewKakaoProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewKakaoProviderWithClient allows injecting custom HTTP client.
func NewKakaoProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *KakaoProvider {
	return &KakaoProvider{
		client:  client,
		baseURL: KakaoLocalURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// ReverseGeocode names the lot-number address at coord, falling back to the road address.
// The returned place keeps the coordinate text it was asked about.
func (kp *KakaoProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (*models.Place, error) {
	kp.log.DebugContext(ctx, "Reverse geocoding using Kakao", "coordinate", coord)

	var result kakaoAddressResponse
	err := kp.get(ctx, "/geo/coord2address.json", url.Values{
		"x":           {coord.Longitude},
		"y":           {coord.Latitude},
		"input_coord": {"WGS84"},
	}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Documents) == 0 {
		return nil, ErrNoAddressFound
	}

	doc := result.Documents[0]
	var name string
	switch {
	case doc.Address != nil && doc.Address.AddressName != "":
		name = doc.Address.AddressName
	case doc.RoadAddress != nil && doc.RoadAddress.AddressName != "":
		name = doc.RoadAddress.AddressName
	default:
		return nil, ErrNoAddressFound
	}

	kp.log.InfoContext(ctx, "Kakao found address", "coordinate", coord, "address", name)

	return &models.Place{Name: name, Coordinate: coord, Address: name}, nil
}

// Search looks keyword up in the Kakao place index.
func (kp *KakaoProvider) Search(ctx context.Context, keyword string) ([]models.Place, error) {
	kp.log.DebugContext(ctx, "Searching places using Kakao", "keyword", keyword)

	var result kakaoKeywordResponse
	err := kp.get(ctx, "/search/keyword.json", url.Values{
		"query": {keyword},
		"size":  {fmt.Sprint(kakaoSearchSize)},
	}, &result)
	if err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(result.Documents))
	for _, doc := range result.Documents {
		address := doc.AddressName
		if address == "" {
			address = doc.RoadAddressName
		}
		places = append(places, models.Place{
			Name:       doc.PlaceName,
			Coordinate: models.Coordinate{Longitude: doc.X, Latitude: doc.Y},
			Address:    address,
		})
	}

	return places, nil
}

func (kp *KakaoProvider) get(ctx context.Context, path string, query url.Values, out any) error {
	// Rate limit
	if err := kp.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(kp.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	reqURL.RawQuery = query.Encode()

	kp.log.DebugContext(ctx, "Kakao request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+kp.apiKey)

	return fetchJSON(ctx, kp.client, kp.log, req, out)
}
