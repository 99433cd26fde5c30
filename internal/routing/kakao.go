package routing

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

// KakaoDirectionsURL -- Kakao Mobility car directions endpoint.
const KakaoDirectionsURL = "https://apis-navi.kakaomobility.com/v1/directions"

// KakaoProvider implements taxi routing using Kakao Mobility directions.
type KakaoProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the directions API
	apiKey  string        // REST API key
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

type kakaoResponse struct {
	Routes []struct {
		ResultCode int    `json:"result_code"`
		ResultMsg  string `json:"result_msg"`
		Summary    *struct {
			Fare struct {
				Taxi float64 `json:"taxi"`
				Toll float64 `json:"toll"`
			} `json:"fare"`
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
	} `json:"routes"`
}

// NewKakaoProvider creates a new Kakao Mobility taxi provider.
func NewKakaoProvider(apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *KakaoProvider {
	return NewKakaoProviderWithClient(
		&http.Client{Timeout: timeout},
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
		baseURL: KakaoDirectionsURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Name returns the provider name.
func (kp *KakaoProvider) Name() string { return string(ProviderTypeKakao) }

// Route requests the fastest car route and reports it as a taxi offer.
func (kp *KakaoProvider) Route(ctx context.Context, origin, destination models.Coordinate) (*models.TripLeg, error) {
	// Rate limit
	if err := kp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrProviderUnavailable, err)
	}

	kp.log.DebugContext(ctx, "Routing using Kakao Mobility", "origin", origin, "destination", destination)

	reqURL, err := url.Parse(kp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse base URL: %w", ErrProviderUnavailable, err)
	}
	query := reqURL.Query()
	query.Set("origin", origin.Longitude+","+origin.Latitude)
	query.Set("destination", destination.Longitude+","+destination.Latitude)
	query.Set("priority", "TIME")
	reqURL.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("Authorization", "KakaoAK "+kp.apiKey)

	var resp kakaoResponse
	if err = getJSON(ctx, kp.client, kp.log, reqURL.String(), header, &resp); err != nil {
		return nil, err
	}

	if len(resp.Routes) == 0 {
		return nil, ErrNoRouteFound
	}

	route := resp.Routes[0]
	if route.ResultCode != 0 {
		kp.log.InfoContext(ctx, "Kakao found no route", "code", route.ResultCode, "message", route.ResultMsg)
		return nil, fmt.Errorf("%w: kakao result %d: %s", ErrNoRouteFound, route.ResultCode, route.ResultMsg)
	}
	if route.Summary == nil {
		return nil, fmt.Errorf("%w: route without summary", ErrMalformedResponse)
	}

	taxi, err := toFigure("taxi fare", route.Summary.Fare.Taxi)
	if err != nil {
		return nil, err
	}
	duration, err := toFigure("duration", route.Summary.Duration)
	if err != nil {
		return nil, err
	}
	distance, err := toFigure("distance", route.Summary.Distance)
	if err != nil {
		return nil, err
	}

	return &models.TripLeg{
		Mode:     models.ModeTaxi,
		Duration: duration,
		Cost:     taxi,
		Summary: models.Summary{
			Distance: distance,
			Duration: duration,
			Fare:     models.Fare{Taxi: taxi},
		},
		Provider: kp.Name(),
	}, nil
}
