package models

// Mode is the way of travelling a TripLeg describes.
type Mode string

const (
	ModePublic Mode = "PUBLIC"
	ModeTaxi   Mode = "TAXI"
)

// Fare holds the price of a leg broken down by mode, in local currency units.
type Fare struct {
	Transit int `json:"transit,omitempty"`
	Taxi    int `json:"taxi,omitempty"`
}

// Summary is the provider-independent digest of a route.
type Summary struct {
	Distance int  `json:"distance"` // Distance in meters.
	Duration int  `json:"duration"` // Duration in seconds.
	Fare     Fare `json:"fare"`
}

// TripLeg is one mode's offer for getting from an origin to a destination.
type TripLeg struct {
	Mode      Mode     `json:"type"`
	Duration  int      `json:"duration"` // Estimated duration in seconds.
	Cost      int      `json:"cost"`     // Estimated cost in local currency units.
	Route     []string `json:"route,omitempty"`
	Summary   Summary  `json:"summary"`
	Provider  string   `json:"provider"`  // Provider the figures came from, "estimate" for the fallback model.
	Estimated bool     `json:"estimated"` // Estimated is set when any figure comes from the fallback model.
}

// Minutes returns the leg duration rounded to whole minutes.
func (l TripLeg) Minutes() int {
	const secondsPerMinute = 60
	return (l.Duration + secondsPerMinute/2) / secondsPerMinute
}

// TripComparison is the set of offers produced for a single query, public transit first.
type TripComparison struct {
	Legs []TripLeg `json:"legs"`
}

// Leg returns the offer for the given mode, if any.
func (c TripComparison) Leg(mode Mode) (TripLeg, bool) {
	for _, leg := range c.Legs {
		if leg.Mode == mode {
			return leg, true
		}
	}

	return TripLeg{}, false
}
