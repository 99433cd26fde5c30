package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/geocoding"
	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type mockGoogleClient struct {
	geocodeResults []maps.GeocodingResult
	searchResponse maps.PlacesSearchResponse
	err            error
	geocodeRequest *maps.GeocodingRequest
	searchRequest  *maps.TextSearchRequest
}

func (m *mockGoogleClient) ReverseGeocode(
	_ context.Context,
	r *maps.GeocodingRequest,
) ([]maps.GeocodingResult, error) {
	m.geocodeRequest = r
	return m.geocodeResults, m.err
}

func (m *mockGoogleClient) TextSearch(
	_ context.Context,
	r *maps.TextSearchRequest,
) (maps.PlacesSearchResponse, error) {
	m.searchRequest = r
	return m.searchResponse, m.err
}

func TestGoogleProvider_ReverseGeocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful reverse geocoding", func(t *testing.T) {
		client := &mockGoogleClient{geocodeResults: []maps.GeocodingResult{
			{FormattedAddress: "대한민국 서울특별시 중구 세종대로 110"},
		}}

		provider := geocoding.NewGoogleProvider(client, logger)
		place, err := provider.ReverseGeocode(ctx, cityHall)

		require.NoError(t, err)
		require.NotNil(t, client.geocodeRequest.LatLng)
		assert.InDelta(t, 37.5663, client.geocodeRequest.LatLng.Lat, 1e-9)
		assert.InDelta(t, 126.9779, client.geocodeRequest.LatLng.Lng, 1e-9)
		assert.Equal(t, "ko", client.geocodeRequest.Language)
		assert.Equal(t, "대한민국 서울특별시 중구 세종대로 110", place.Name)
		assert.Equal(t, cityHall, place.Coordinate)
	})

	t.Run("empty response", func(t *testing.T) {
		provider := geocoding.NewGoogleProvider(&mockGoogleClient{}, logger)

		_, err := provider.ReverseGeocode(ctx, cityHall)

		require.ErrorIs(t, err, geocoding.ErrNoAddressFound)
	})

	t.Run("invalid coordinate", func(t *testing.T) {
		client := &mockGoogleClient{}
		provider := geocoding.NewGoogleProvider(client, logger)

		_, err := provider.ReverseGeocode(ctx, models.Coordinate{Longitude: "east", Latitude: "37.5"})

		require.ErrorIs(t, err, geo.ErrInvalidInput)
		assert.Nil(t, client.geocodeRequest)
	})

	t.Run("API error", func(t *testing.T) {
		provider := geocoding.NewGoogleProvider(&mockGoogleClient{err: assert.AnError}, logger)

		_, err := provider.ReverseGeocode(ctx, cityHall)

		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestGoogleProvider_Search(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful search", func(t *testing.T) {
		client := &mockGoogleClient{searchResponse: maps.PlacesSearchResponse{
			Results: []maps.PlacesSearchResult{{
				Name:             "Seoul Station",
				FormattedAddress: "405 Hangang-daero, Yongsan-gu, Seoul",
				Geometry: maps.AddressGeometry{
					Location: maps.LatLng{Lat: 37.5547, Lng: 126.9707},
				},
			}},
		}}

		provider := geocoding.NewGoogleProvider(client, logger)
		places, err := provider.Search(ctx, "Seoul Station")

		require.NoError(t, err)
		assert.Equal(t, "Seoul Station", client.searchRequest.Query)
		assert.Equal(t, []models.Place{{
			Name:       "Seoul Station",
			Coordinate: models.Coordinate{Longitude: "126.9707", Latitude: "37.5547"},
			Address:    "405 Hangang-daero, Yongsan-gu, Seoul",
		}}, places)
	})

	t.Run("API error", func(t *testing.T) {
		provider := geocoding.NewGoogleProvider(&mockGoogleClient{err: assert.AnError}, logger)

		places, err := provider.Search(ctx, "Seoul Station")

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, places)
	})
}
