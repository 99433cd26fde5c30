package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/homebound/internal/fare"
	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/metrics"
	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/UnknownOlympus/homebound/internal/routing"
	"github.com/UnknownOlympus/homebound/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	gangnam = models.Place{
		Name:       "Gangnam Station",
		Coordinate: models.Coordinate{Longitude: "127.0276", Latitude: "37.4979"},
	}
	cityHall = models.Place{
		Name:       "Seoul City Hall",
		Coordinate: models.Coordinate{Longitude: "126.9779", Latitude: "37.5663"},
	}
)

func expectedEstimate(t *testing.T) fare.Quote {
	t.Helper()
	km, err := geo.DistanceBetween(gangnam.Coordinate, cityHall.Coordinate)
	require.NoError(t, err)
	return fare.Estimate(km)
}

func transitLeg(cost int) *models.TripLeg {
	return &models.TripLeg{
		Mode:     models.ModePublic,
		Duration: 2280,
		Cost:     cost,
		Route:    []string{"walk (5min)", "subway (Gangnam – City Hall) (21min)"},
		Summary:  models.Summary{Distance: 11840, Duration: 2280, Fare: models.Fare{Transit: cost}},
		Provider: "odsay",
	}
}

func taxiLeg(cost int) *models.TripLeg {
	return &models.TripLeg{
		Mode:     models.ModeTaxi,
		Duration: 1510,
		Cost:     cost,
		Summary:  models.Summary{Distance: 9876, Duration: 1510, Fare: models.Fare{Taxi: cost}},
		Provider: "kakao",
	}
}

type fixture struct {
	service *TripService
	transit *mocks.Provider
	taxi    *mocks.Provider
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	transit := mocks.NewProvider(t)
	taxi := mocks.NewProvider(t)
	transit.On("Name").Return("odsay").Maybe()
	taxi.On("Name").Return("kakao").Maybe()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := NewTripService(logger, transit, taxi, mocks.NewGeocoder(t), nil, m, 0)

	return fixture{service: svc, transit: transit, taxi: taxi, metrics: m}
}

func TestCompare(t *testing.T) {
	ctx := t.Context()
	origin, destination := gangnam.Coordinate, cityHall.Coordinate

	t.Run("both providers answer", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(1550), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(taxiLeg(15200), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 2)
		assert.Equal(t, *transitLeg(1550), result.Legs[0])
		assert.Equal(t, *taxiLeg(15200), result.Legs[1])
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Comparisons.WithLabelValues(metrics.StatusComplete)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("odsay", "ok")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("kakao", "ok")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.ActiveComparisons), 0)
	})

	t.Run("transit fare missing uses default fare", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(0), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(taxiLeg(15200), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		public, ok := result.Leg(models.ModePublic)
		require.True(t, ok)
		assert.Equal(t, DefaultTransitFare, public.Cost)
		assert.Equal(t, DefaultTransitFare, public.Summary.Fare.Transit)
		assert.True(t, public.Estimated)
	})

	t.Run("configured transit fare", func(t *testing.T) {
		f := newFixture(t)
		f.service.transitFare = 1500
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(0), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(nil, routing.ErrProviderUnavailable).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.Equal(t, 1500, result.Legs[0].Cost)
	})

	t.Run("taxi fare missing uses estimate", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(1550), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(taxiLeg(0), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		taxi, ok := result.Leg(models.ModeTaxi)
		require.True(t, ok)
		assert.Equal(t, expectedEstimate(t).Cost, taxi.Cost)
		assert.Equal(t, expectedEstimate(t).Cost, taxi.Summary.Fare.Taxi)
		assert.Equal(t, 1510, taxi.Duration, "live duration is kept")
		assert.True(t, taxi.Estimated)
	})

	t.Run("no transit route omits public leg", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(nil, routing.ErrNoRouteFound).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(taxiLeg(15200), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.Equal(t, models.ModeTaxi, result.Legs[0].Mode)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Comparisons.WithLabelValues(metrics.StatusPartial)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("odsay", "no_route")), 0)
	})

	t.Run("no taxi route falls back to estimate", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(1550), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(nil, routing.ErrNoRouteFound).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 2)
		assert.Equal(t, expectedEstimate(t).Leg(), result.Legs[1])
		assert.Equal(t, fare.ProviderName, result.Legs[1].Provider)
	})

	t.Run("failed providers leave an empty comparison", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(nil, routing.ErrMalformedResponse).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(nil, assert.AnError).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		assert.Empty(t, result.Legs)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Comparisons.WithLabelValues(metrics.StatusEmpty)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("kakao", "unavailable")), 0)
	})

	t.Run("panicking provider counts as unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(transitLeg(1550), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Panic("nil map").Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.Equal(t, models.ModePublic, result.Legs[0].Mode)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("kakao", "unavailable")), 0)
	})

	t.Run("provider answering nothing counts as malformed", func(t *testing.T) {
		f := newFixture(t)
		f.transit.On("Route", ctx, origin, destination).Return(nil, nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Return(taxiLeg(15200), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ProviderOutcomes.WithLabelValues("odsay", "malformed")), 0)
	})

	t.Run("providers are called concurrently", func(t *testing.T) {
		f := newFixture(t)
		var started sync.WaitGroup
		started.Add(2)
		bothStarted := make(chan struct{})
		go func() {
			started.Wait()
			close(bothStarted)
		}()
		rendezvous := func(mock.Arguments) {
			started.Done()
			select {
			case <-bothStarted:
			case <-time.After(time.Second):
				t.Error("providers were not called concurrently")
			}
		}
		f.transit.On("Route", ctx, origin, destination).Run(rendezvous).Return(transitLeg(1550), nil).Once()
		f.taxi.On("Route", ctx, origin, destination).Run(rendezvous).Return(taxiLeg(15200), nil).Once()

		result, err := f.service.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		assert.Len(t, result.Legs, 2)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newFixture(t)
		bad := models.Place{Name: "nowhere", Coordinate: models.Coordinate{Longitude: "abc", Latitude: "37.5"}}

		_, err := f.service.Compare(ctx, bad, cityHall)
		require.ErrorIs(t, err, geo.ErrInvalidInput)

		_, err = f.service.Compare(ctx, gangnam, models.Place{Name: "unset"})
		require.ErrorIs(t, err, geo.ErrInvalidInput)

		f.transit.AssertNotCalled(t, "Route", mock.Anything, mock.Anything, mock.Anything)
		f.taxi.AssertNotCalled(t, "Route", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCompare_Fallback(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("no providers configured", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())
		svc := NewTripService(logger, nil, nil, nil, nil, m, 0)

		result, err := svc.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		assert.Equal(t, []models.TripLeg{expectedEstimate(t).Leg()}, result.Legs)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Comparisons.WithLabelValues(metrics.StatusFallback)), 0)
	})

	t.Run("panic while assembling", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())
		transit := mocks.NewProvider(t)
		transit.On("Name").Panic("broken provider").Once()
		svc := NewTripService(logger, transit, nil, nil, nil, m, 0)

		result, err := svc.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.Equal(t, models.ModeTaxi, result.Legs[0].Mode)
		assert.True(t, result.Legs[0].Estimated)
	})

	t.Run("only a taxi provider", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())
		taxi := mocks.NewProvider(t)
		taxi.On("Name").Return("google_driving").Once()
		taxi.On("Route", ctx, gangnam.Coordinate, cityHall.Coordinate).Return(taxiLeg(0), nil).Once()
		svc := NewTripService(logger, nil, taxi, nil, nil, m, 0)

		result, err := svc.Compare(ctx, gangnam, cityHall)

		require.NoError(t, err)
		require.Len(t, result.Legs, 1)
		assert.Equal(t, expectedEstimate(t).Cost, result.Legs[0].Cost)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Comparisons.WithLabelValues(metrics.StatusPartial)), 0)
	})
}

func TestCompare_HonoursCallerContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	f.transit.On("Route", ctx, gangnam.Coordinate, cityHall.Coordinate).
		Return(nil, context.Canceled).Once()
	f.taxi.On("Route", ctx, gangnam.Coordinate, cityHall.Coordinate).
		Return(nil, context.Canceled).Once()

	result, err := f.service.Compare(ctx, gangnam, cityHall)

	require.NoError(t, err)
	assert.Empty(t, result.Legs)
}
