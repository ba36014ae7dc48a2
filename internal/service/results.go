package service

import (
	"context"
	"fmt"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// VehicleSource is the slice of the remote rental API the results page needs.
// Implemented by *rentalapi.Client.
type VehicleSource interface {
	Vehicles(ctx context.Context, q domain.SearchQuery) ([]domain.Vehicle, error)
	Vehicle(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error)
}

// ResultPage is one page of filtered search results.
type ResultPage struct {
	Query    domain.SearchQuery
	Filter   domain.FilterState
	Vehicles []domain.Vehicle
	Total    int // matches after filtering, across all pages
	Page     domain.PaginationParams
}

// ResultsService loads vehicles for a submitted search and applies the
// results-page filters.
type ResultsService struct {
	api VehicleSource
}

// NewResultsService constructs a ResultsService backed by the remote API.
func NewResultsService(api VehicleSource) *ResultsService {
	return &ResultsService{api: api}
}

// Search fetches the vehicles matching q, filters and sorts them with f, and
// returns page p. Filtering happens locally; the API only sees q.
func (s *ResultsService) Search(ctx context.Context, q domain.SearchQuery, f domain.FilterState, p domain.PaginationParams) (ResultPage, error) {
	all, err := s.api.Vehicles(ctx, q)
	if err != nil {
		return ResultPage{}, fmt.Errorf("service.ResultsService.Search: %w", err)
	}

	filtered := f.Apply(all)
	return ResultPage{
		Query:    q,
		Filter:   f,
		Vehicles: domain.Paginate(filtered, p),
		Total:    len(filtered),
		Page:     p,
	}, nil
}

// Detail returns one vehicle. Returns domain.ErrNotFound if the API does not
// know it.
func (s *ResultsService) Detail(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error) {
	if companySlug == "" || vehicleSlug == "" {
		return domain.Vehicle{}, fmt.Errorf("service.ResultsService.Detail: %w: company and vehicle slugs are required", domain.ErrValidation)
	}
	v, err := s.api.Vehicle(ctx, companySlug, vehicleSlug)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.ResultsService.Detail: %w", err)
	}
	return v, nil
}
