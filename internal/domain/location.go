// Package domain contains the core data types for the RideRent search backend.
// It is imported by every other internal package (calendar aside) and holds no
// I/O: the search query contract, locations, vehicles, filters and bookings.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the vehicle category the user is searching for.
type Category string

const (
	CategoryMotorcycle Category = "motorcycle"
	CategoryCar        Category = "car"
)

// DefaultCategory is pre-selected in every new session, which is why the
// vehicle step never blocks a search.
const DefaultCategory = CategoryMotorcycle

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryMotorcycle, CategoryCar:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
}

// SearchVariant selects which query contract the search flow produces.
type SearchVariant string

const (
	// VariantDated requires a city and a complete date range.
	VariantDated SearchVariant = "dated"
	// VariantCityOnly requires only a city; dates are never asked for nor sent.
	VariantCityOnly SearchVariant = "city-only"
)

// ParseSearchVariant validates a variant name.
func ParseSearchVariant(s string) (SearchVariant, error) {
	switch v := SearchVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case VariantDated, VariantCityOnly:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown search variant %q", ErrValidation, s)
	}
}

// Location is something the user can pick as the rental location.
// Catalog cities carry no coordinates; the device location does.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// CurrentLocationName labels the pseudo-location built from device coordinates.
const CurrentLocationName = "Current Location"

// AllCities is the sentinel city value meaning "search everywhere".
// It is a real, selectable value: a non-nil empty city satisfies readiness.
const AllCities = ""

// AllCitiesLabel is how the AllCities option is shown.
const AllCitiesLabel = "All Cities"

// AnywhereName is the history label for the "Anywhere" shortcut, which
// selects AllCities.
const AnywhereName = "Anywhere"

// NewCurrentLocation validates device coordinates and wraps them as a Location.
func NewCurrentLocation(lat, lng float64) (Location, error) {
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("%w: latitude %v out of range", ErrValidation, lat)
	}
	if lng < -180 || lng > 180 {
		return Location{}, fmt.Errorf("%w: longitude %v out of range", ErrValidation, lng)
	}
	return Location{Name: CurrentLocationName, Lat: lat, Lng: lng}, nil
}

// HasCoordinates reports whether l was built from a device position.
func (l Location) HasCoordinates() bool {
	return l.Name == CurrentLocationName
}

// RecentLocation is one entry of the recent-location history.
// Dates is an optional human label such as "Jan 10 - Jan 14".
type RecentLocation struct {
	Location  Location  `json:"location"`
	Dates     string    `json:"dates,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
