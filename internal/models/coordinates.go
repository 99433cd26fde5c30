package models

import "errors"

// Coordinate represents a geographical point as sent by devices and providers.
// Both components are decimal degrees kept as text; parse them with geo.ParseCoordinate
// before doing any arithmetic.
type Coordinate struct {
	Longitude string `json:"x" validate:"required,longitude"` // Longitude of the geographical point.
	Latitude  string `json:"y" validate:"required,latitude"`  // Latitude of the geographical point.
}

// Place is a named point: a reverse-geocoded position or a selected search result.
type Place struct {
	Name string `json:"name" validate:"required"`
	Coordinate
	Address string `json:"address,omitempty"`
}

// Errors reported by a Locator.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("current position unavailable")
)
