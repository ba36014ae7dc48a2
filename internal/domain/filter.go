package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PaginationParams carries page/limit values from the HTTP layer to the results service.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// MaxPage is the highest page NewPaginationParams accepts. Larger values are
// clamped so Offset cannot overflow.
const MaxPage = 1_000_000

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 and the page at MaxPage.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based index of the first item on the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate returns the slice of vs that falls on page p.
// A page past the end yields an empty, non-nil slice.
func Paginate(vs []Vehicle, p PaginationParams) []Vehicle {
	if p.Page < 1 || p.Limit < 1 {
		return []Vehicle{}
	}
	// Compare page counts before multiplying so a huge page cannot overflow.
	if p.Page-1 >= (len(vs)+p.Limit-1)/p.Limit {
		return []Vehicle{}
	}
	start := p.Offset()
	end := start + p.Limit
	if end > len(vs) {
		end = len(vs)
	}
	return vs[start:end]
}

// SortOption orders a results list.
type SortOption string

const (
	SortCheapest SortOption = "cheapest"
	SortClosest  SortOption = "closest"
	SortNewest   SortOption = "newest"
)

// FilterState is what the filter sheet on the results page applies.
// Nil bounds and a nil VehicleType mean "no restriction".
type FilterState struct {
	MinPrice    *int64
	MaxPrice    *int64
	VehicleType *string
	SortBy      SortOption
}

// NewFilterState builds a FilterState from optional HTTP query params.
// Sorting defaults to closest. A vehicle type of "all" is the same as none.
func NewFilterState(minPrice, maxPrice *int64, vehicleType, sortBy *string) (FilterState, error) {
	f := FilterState{MinPrice: minPrice, MaxPrice: maxPrice, SortBy: SortClosest}

	if minPrice != nil && *minPrice < 0 {
		return FilterState{}, fmt.Errorf("%w: minPrice must not be negative", ErrValidation)
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return FilterState{}, fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrValidation)
	}

	if vehicleType != nil {
		if t := strings.ToLower(strings.TrimSpace(*vehicleType)); t != "" && t != "all" {
			f.VehicleType = &t
		}
	}

	if sortBy != nil && *sortBy != "" {
		switch s := SortOption(*sortBy); s {
		case SortCheapest, SortClosest, SortNewest:
			f.SortBy = s
		default:
			return FilterState{}, fmt.Errorf("%w: unknown sort %q", ErrValidation, *sortBy)
		}
	}

	return f, nil
}

// Apply returns the vehicles that pass f, ordered by f.SortBy.
// The input slice is not modified. Sorting is stable so vehicles that tie keep
// the order the API returned them in; "closest" puts vehicles without a known
// distance last.
func (f FilterState) Apply(vs []Vehicle) []Vehicle {
	out := make([]Vehicle, 0, len(vs))
	for _, v := range vs {
		if f.MinPrice != nil && v.PricePerDay < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && v.PricePerDay > *f.MaxPrice {
			continue
		}
		if f.VehicleType != nil && !strings.EqualFold(v.Type, *f.VehicleType) {
			continue
		}
		out = append(out, v)
	}

	switch f.SortBy {
	case SortCheapest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerDay < out[j].PricePerDay })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	case SortClosest:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].Distance, out[j].Distance
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return *di < *dj
			}
		})
	}
	return out
}
