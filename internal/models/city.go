package models

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// City is one of the jurisdictions the engine has rule tables for.
type City string

const (
	CityChicago City = "chicago"
	CitySeattle City = "seattle"
	CityAustin  City = "austin"
)

// ErrUnknownCity is returned when a city is outside the supported set.
var ErrUnknownCity = errors.New("unknown city")

// SupportedCities lists every supported city in a stable order.
var SupportedCities = []City{CityChicago, CitySeattle, CityAustin}

// ParseCity normalizes s and checks it against the supported set.
func ParseCity(s string) (City, error) {
	c := City(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCity, s)
	}
	return c, nil
}

// Valid reports whether c is a supported city.
func (c City) Valid() bool {
	for _, known := range SupportedCities {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns the title-cased city name, e.g. "Chicago".
func (c City) DisplayName() string {
	return cases.Title(language.English).String(string(c))
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultLocation returns the downtown reference point used when an address
// cannot be geocoded precisely.
func (c City) DefaultLocation() Coordinate {
	switch c {
	case CityChicago:
		return Coordinate{Lat: 41.8781, Lng: -87.6298}
	case CitySeattle:
		return Coordinate{Lat: 47.6062, Lng: -122.3321}
	case CityAustin:
		return Coordinate{Lat: 30.2672, Lng: -97.7431}
	default:
		return Coordinate{}
	}
}
