package service

import (
	"errors"

	"github.com/UnknownOlympus/homebound/internal/fare"
	"github.com/UnknownOlympus/homebound/internal/metrics"
	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/UnknownOlympus/homebound/internal/routing"
)

// DefaultTransitFare is the basic adult transit fare used when a transit provider reports none.
const DefaultTransitFare = 1400

// classify maps a provider result to its outcome label.
// Errors outside the routing taxonomy count as unavailable.
func classify(leg *models.TripLeg, err error) string {
	switch {
	case err == nil && leg != nil:
		return metrics.OutcomeOK
	case err == nil:
		return metrics.OutcomeMalformed
	case errors.Is(err, routing.ErrNoRouteFound):
		return metrics.OutcomeNoRoute
	case errors.Is(err, routing.ErrMalformedResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeUnavailable
	}
}

// resolve decides what a provider result contributes to the comparison:
//
//	mode    ok                        no route   unavailable  malformed
//	PUBLIC  keep (fare 0 -> default)  omit       omit         omit
//	TAXI    keep (fare 0 -> estimate) estimate   omit         omit
//
// A nil return means the mode is left out.
func resolve(
	mode models.Mode,
	leg *models.TripLeg,
	err error,
	estimate fare.Quote,
	transitFare int,
) *models.TripLeg {
	outcome := classify(leg, err)

	switch {
	case outcome == metrics.OutcomeOK && mode == models.ModePublic:
		kept := *leg
		kept.Mode = models.ModePublic
		if kept.Cost <= 0 {
			kept.Cost = transitFare
			kept.Summary.Fare.Transit = transitFare
			kept.Estimated = true
		}
		return &kept
	case outcome == metrics.OutcomeOK && mode == models.ModeTaxi:
		kept := *leg
		kept.Mode = models.ModeTaxi
		if kept.Cost <= 0 {
			kept.Cost = estimate.Cost
			kept.Summary.Fare.Taxi = estimate.Cost
			kept.Estimated = true
		}
		return &kept
	case outcome == metrics.OutcomeNoRoute && mode == models.ModeTaxi:
		fallback := estimate.Leg()
		return &fallback
	default:
		return nil
	}
}
