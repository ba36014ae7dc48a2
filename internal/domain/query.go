package domain

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkordes/riderent/backend/internal/calendar"
)

// Query-string parameter names shared by the search builder (which produces
// the navigation target) and the results loader (which consumes it and
// forwards it to the vehicles API). Both ends must use these constants; never
// spell the names out as literals.
const (
	ParamLocation  = "location"
	ParamStartDate = "startDate"
	ParamEndDate   = "endDate"
	ParamCategory  = "category"
	ParamLat       = "lat"
	ParamLng       = "lng"

	// paramLegacyCity is accepted on input only, for links built by clients
	// that still send ?city= instead of ?location=.
	paramLegacyCity = "city"
)

// ResultsPath is the client route that renders search results.
const ResultsPath = "/result-search"

// Coordinates is a device position attached to a "Current Location" search.
type Coordinates struct {
	Lat float64
	Lng float64
}

// SearchQuery is the immutable result of a completed search session.
// City may be AllCities (""). StartDate and EndDate are nil in the city-only
// variant and always set in the dated variant.
type SearchQuery struct {
	City      string
	StartDate *calendar.Date
	EndDate   *calendar.Date
	Category  Category
	Near      *Coordinates
}

// Values encodes q with the shared parameter names.
// location and category are always present (location may be empty for all
// cities); dates and coordinates are present only when set.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set(ParamLocation, q.City)
	if q.StartDate != nil {
		v.Set(ParamStartDate, q.StartDate.String())
	}
	if q.EndDate != nil {
		v.Set(ParamEndDate, q.EndDate.String())
	}
	v.Set(ParamCategory, string(q.Category))
	if q.Near != nil {
		v.Set(ParamLat, strconv.FormatFloat(q.Near.Lat, 'f', -1, 64))
		v.Set(ParamLng, strconv.FormatFloat(q.Near.Lng, 'f', -1, 64))
	}
	return v
}

// ParseSearchQuery decodes a results-page query string.
// Empty parameters are treated as absent. An empty category means "any".
func ParseSearchQuery(v url.Values) (SearchQuery, error) {
	q := SearchQuery{City: v.Get(ParamLocation)}
	if q.City == "" {
		q.City = v.Get(paramLegacyCity)
	}

	var err error
	if q.StartDate, err = parseOptionalDate(v, ParamStartDate); err != nil {
		return SearchQuery{}, err
	}
	if q.EndDate, err = parseOptionalDate(v, ParamEndDate); err != nil {
		return SearchQuery{}, err
	}
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		return SearchQuery{}, fmt.Errorf("%w: %s is before %s", ErrValidation, ParamEndDate, ParamStartDate)
	}

	if raw := v.Get(ParamCategory); raw != "" {
		if q.Category, err = ParseCategory(raw); err != nil {
			return SearchQuery{}, err
		}
	}

	latRaw, lngRaw := v.Get(ParamLat), v.Get(ParamLng)
	if latRaw != "" || lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil {
			return SearchQuery{}, fmt.Errorf("%w: %s and %s must both be numbers", ErrValidation, ParamLat, ParamLng)
		}
		q.Near = &Coordinates{Lat: lat, Lng: lng}
	}

	return q, nil
}

func parseOptionalDate(v url.Values, key string) (*calendar.Date, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, key)
	}
	return &d, nil
}

// Navigation is what the client router receives after a successful search.
type Navigation struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search"`
}

// NavigationFor builds the results-page navigation target for q.
func NavigationFor(q SearchQuery) Navigation {
	return Navigation{Pathname: ResultsPath, Search: "?" + q.Values().Encode()}
}
