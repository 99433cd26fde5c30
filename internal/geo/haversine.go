// Package geo parses text coordinates and measures great-circle distances between them.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// ErrInvalidInput is returned when a coordinate is not a pair of finite, in-range numbers.
var ErrInvalidInput = errors.New("invalid coordinate")

// Point is a parsed coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// ParseCoordinate converts the text components of a coordinate into a Point.
func ParseCoordinate(coord models.Coordinate) (Point, error) {
	lon, err := parseDegrees(coord.Longitude)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", ErrInvalidInput, coord.Longitude)
	}
	lat, err := parseDegrees(coord.Latitude)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", ErrInvalidInput, coord.Latitude)
	}

	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return Point{}, fmt.Errorf("%w: (%s, %s) out of range", ErrInvalidInput, coord.Longitude, coord.Latitude)
	}

	return Point{Lat: lat, Lon: lon}, nil
}

func parseDegrees(text string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrSyntax
	}

	return value, nil
}

// Distance returns the haversine distance between two points in kilometers.
func Distance(from, to Point) float64 {
	dLat := toRad(to.Lat - from.Lat)
	dLon := toRad(to.Lon - from.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just outside [0, 1] for near-antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistanceBetween parses both coordinates and returns the distance between them in kilometers.
func DistanceBetween(from, to models.Coordinate) (float64, error) {
	src, err := ParseCoordinate(from)
	if err != nil {
		return 0, err
	}
	dst, err := ParseCoordinate(to)
	if err != nil {
		return 0, err
	}

	return Distance(src, dst), nil
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
