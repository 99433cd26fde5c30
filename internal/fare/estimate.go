// Package fare implements the distance-based taxi model used when no live quote is available.
package fare

import (
	"math"

	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/models"
)

// Model constants, in local currency units.
const (
	BaseFare     = 3800
	PerKmFare    = 1000
	fareRounding = 100

	minutesPerKm = 2.5
)

// ProviderName labels legs synthesized by this model.
const ProviderName = "estimate"

// Quote is the fallback cost and time for a trip of a given length.
type Quote struct {
	Cost       int
	Minutes    int
	DistanceKm float64
}

// Estimate prices a taxi ride of distanceKm kilometers.
func Estimate(distanceKm float64) Quote {
	cost := math.Round((BaseFare+distanceKm*PerKmFare)/fareRounding) * fareRounding

	return Quote{
		Cost:       int(cost),
		Minutes:    int(math.Round(distanceKm * minutesPerKm)),
		DistanceKm: distanceKm,
	}
}

// EstimateBetween prices a taxi ride along the great-circle distance between two coordinates.
func EstimateBetween(from, to models.Coordinate) (Quote, error) {
	km, err := geo.DistanceBetween(from, to)
	if err != nil {
		return Quote{}, err
	}

	return Estimate(km), nil
}

// Leg turns the quote into a taxi offer.
func (q Quote) Leg() models.TripLeg {
	const secondsPerMinute, metersPerKm = 60, 1000
	duration := q.Minutes * secondsPerMinute

	return models.TripLeg{
		Mode:     models.ModeTaxi,
		Duration: duration,
		Cost:     q.Cost,
		Summary: models.Summary{
			Distance: int(math.Round(q.DistanceKm * metersPerKm)),
			Duration: duration,
			Fare:     models.Fare{Taxi: q.Cost},
		},
		Provider:  ProviderName,
		Estimated: true,
	}
}
