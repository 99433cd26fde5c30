package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// ODsayBaseURL -- ODsay public transit path search endpoint.
const ODsayBaseURL = "https://api.odsay.com/v1/api/searchPubTransPathT"

// ODsay traffic types.
const (
	odsaySubway = 1
	odsayBus    = 2
	odsayWalk   = 3
)

// ODsay error codes meaning the search ran but found nothing.
var odsayNoRouteCodes = map[string]bool{
	"-98": true, // origin and destination are closer than 700m
	"-99": true, // no search result
}

// ODsayProvider implements transit routing using the ODsay API.
type ODsayProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the ODsay API
	apiKey  string       // API key
	log     *slog.Logger // Logger for logging operations
}

type odsayResponse struct {
	Result *struct {
		Path []odsayPath `json:"path"`
	} `json:"result"`
	Error json.RawMessage `json:"error"`
}

type odsayPath struct {
	Info struct {
		TotalTime     float64 `json:"totalTime"`     // minutes
		TotalDistance float64 `json:"totalDistance"` // meters
		Payment       float64 `json:"payment"`
	} `json:"info"`
	SubPath []odsaySubPath `json:"subPath"`
}

type odsaySubPath struct {
	TrafficType int     `json:"trafficType"`
	SectionTime float64 `json:"sectionTime"` // minutes
	StartName   string  `json:"startName"`
	EndName     string  `json:"endName"`
	Lane        []struct {
		Name  string `json:"name"`
		BusNo string `json:"busNo"`
	} `json:"lane"`
}

type odsayError struct {
	Code    any    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// NewODsayProvider creates a new ODsay transit provider.
func NewODsayProvider(apiKey string, timeout time.Duration, log *slog.Logger) *ODsayProvider {
	return NewODsayProviderWithClient(&http.Client{Timeout: timeout}, apiKey, log)
}

// NewODsayProviderWithClient allows injecting custom HTTP client.
func NewODsayProviderWithClient(client HTTPClient, apiKey string, log *slog.Logger) *ODsayProvider {
	return &ODsayProvider{client: client, baseURL: ODsayBaseURL, apiKey: apiKey, log: log}
}

// Name returns the provider name.
func (op *ODsayProvider) Name() string { return string(ProviderTypeODsay) }

// Route searches public transit paths and normalizes the first-ranked one.
func (op *ODsayProvider) Route(ctx context.Context, origin, destination models.Coordinate) (*models.TripLeg, error) {
	op.log.DebugContext(ctx, "Routing using ODsay", "origin", origin, "destination", destination)

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse base URL: %w", ErrProviderUnavailable, err)
	}
	query := reqURL.Query()
	query.Set("SX", origin.Longitude)
	query.Set("SY", origin.Latitude)
	query.Set("EX", destination.Longitude)
	query.Set("EY", destination.Latitude)
	query.Set("apiKey", op.apiKey)
	reqURL.RawQuery = query.Encode()

	var resp odsayResponse
	if err = getJSON(ctx, op.client, op.log, reqURL.String(), nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		return nil, op.classifyError(ctx, resp.Error)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: ODsay body has no result", ErrMalformedResponse)
	}
	if len(resp.Result.Path) == 0 {
		return nil, ErrNoRouteFound
	}

	path := resp.Result.Path[0]
	steps := make([]string, 0, len(path.SubPath))
	for _, sub := range path.SubPath {
		minutes, err := toFigure("section time", sub.SectionTime)
		if err != nil {
			return nil, err
		}
		switch sub.TrafficType {
		case odsayWalk:
			if minutes > 0 {
				steps = append(steps, walkStep(minutes))
			}
		case odsaySubway:
			steps = append(steps, transitStep(sub.label("subway"), sub.StartName, sub.EndName, minutes))
		case odsayBus:
			steps = append(steps, transitStep(sub.label("bus"), sub.StartName, sub.EndName, minutes))
		default:
			steps = append(steps, transitStep("transit", sub.StartName, sub.EndName, minutes))
		}
	}

	duration, err := toFigure("total time", path.Info.TotalTime*secondsPerMinute)
	if err != nil {
		return nil, err
	}
	distance, err := toFigure("total distance", path.Info.TotalDistance)
	if err != nil {
		return nil, err
	}
	payment, err := toFigure("payment", path.Info.Payment)
	if err != nil {
		return nil, err
	}

	return &models.TripLeg{
		Mode:     models.ModePublic,
		Duration: duration,
		Cost:     payment,
		Route:    steps,
		Summary: models.Summary{
			Distance: distance,
			Duration: duration,
			Fare:     models.Fare{Transit: payment},
		},
		Provider: op.Name(),
	}, nil
}

func (sp odsaySubPath) label(kind string) string {
	if len(sp.Lane) == 0 {
		return kind
	}
	line := sp.Lane[0].Name
	if line == "" {
		line = sp.Lane[0].BusNo
	}
	if line == "" {
		return kind
	}
	return kind + " " + line
}

// classifyError maps the ODsay error body, which is either an object or a list of objects.
func (op *ODsayProvider) classifyError(ctx context.Context, raw json.RawMessage) error {
	var apiErrs []odsayError
	var single odsayError
	if err := json.Unmarshal(raw, &single); err == nil {
		apiErrs = []odsayError{single}
	} else if err = json.Unmarshal(raw, &apiErrs); err != nil || len(apiErrs) == 0 {
		return fmt.Errorf("%w: unreadable ODsay error: %s", ErrMalformedResponse, string(raw))
	}

	apiErr := apiErrs[0]
	code := fmt.Sprint(apiErr.Code)
	msg := apiErr.Msg
	if msg == "" {
		msg = apiErr.Message
	}

	if odsayNoRouteCodes[code] {
		op.log.InfoContext(ctx, "ODsay found no route", "code", code, "message", msg)
		return fmt.Errorf("%w: ODsay code %s: %s", ErrNoRouteFound, code, msg)
	}

	op.log.ErrorContext(ctx, "ODsay API error", "code", code, "message", msg)
	return fmt.Errorf("%w: ODsay code %s: %s", ErrProviderUnavailable, code, msg)
}
