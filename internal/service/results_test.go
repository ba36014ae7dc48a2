package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/service"
)

// mockVehicleSource is a hand-written test double for service.VehicleSource.
type mockVehicleSource struct {
	vehicles func(ctx context.Context, q domain.SearchQuery) ([]domain.Vehicle, error)
	vehicle  func(ctx context.Context, company, slug string) (domain.Vehicle, error)
}

func (m *mockVehicleSource) Vehicles(ctx context.Context, q domain.SearchQuery) ([]domain.Vehicle, error) {
	return m.vehicles(ctx, q)
}
func (m *mockVehicleSource) Vehicle(ctx context.Context, company, slug string) (domain.Vehicle, error) {
	return m.vehicle(ctx, company, slug)
}

var _ service.VehicleSource = (*mockVehicleSource)(nil)

func km(v float64) *float64 { return &v }

func fleet() []domain.Vehicle {
	return []domain.Vehicle{
		{Slug: "beat", PricePerDay: 70000, Year: 2021, Type: "scooter", Distance: km(3.2)},
		{Slug: "nmax", PricePerDay: 150000, Year: 2024, Type: "scooter", Distance: km(1.1)},
		{Slug: "klx", PricePerDay: 250000, Year: 2022, Type: "trail"},
		{Slug: "vario", PricePerDay: 90000, Year: 2023, Type: "scooter", Distance: km(0.4)},
	}
}

func slugs(vs []domain.Vehicle) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Slug
	}
	return out
}

func TestResultsService_Search_DefaultsToClosest(t *testing.T) {
	var seen domain.SearchQuery
	api := &mockVehicleSource{vehicles: func(_ context.Context, q domain.SearchQuery) ([]domain.Vehicle, error) {
		seen = q
		return fleet(), nil
	}}
	svc := service.NewResultsService(api)
	f, err := domain.NewFilterState(nil, nil, nil, nil)
	require.NoError(t, err)
	q := domain.SearchQuery{City: "Denpasar", Category: domain.CategoryMotorcycle}

	page, err := svc.Search(context.Background(), q, f, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, q, seen)
	assert.Equal(t, []string{"vario", "nmax", "beat", "klx"}, slugs(page.Vehicles))
	assert.Equal(t, 4, page.Total)
}

func TestResultsService_Search_FilterSortPaginate(t *testing.T) {
	api := &mockVehicleSource{vehicles: func(context.Context, domain.SearchQuery) ([]domain.Vehicle, error) {
		return fleet(), nil
	}}
	svc := service.NewResultsService(api)
	maxPrice := int64(200000)
	typ, sortBy := "scooter", "cheapest"
	f, err := domain.NewFilterState(nil, &maxPrice, &typ, &sortBy)
	require.NoError(t, err)
	page, limit := 2, 2

	got, err := svc.Search(context.Background(), domain.SearchQuery{}, f, domain.NewPaginationParams(&page, &limit))

	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, []string{"nmax"}, slugs(got.Vehicles))
}

func TestResultsService_Search_UpstreamError(t *testing.T) {
	boom := errors.New("boom")
	api := &mockVehicleSource{vehicles: func(context.Context, domain.SearchQuery) ([]domain.Vehicle, error) {
		return nil, boom
	}}

	_, err := service.NewResultsService(api).Search(context.Background(), domain.SearchQuery{}, domain.FilterState{}, domain.NewPaginationParams(nil, nil))

	assert.ErrorIs(t, err, boom)
}

func TestResultsService_Detail(t *testing.T) {
	api := &mockVehicleSource{vehicle: func(_ context.Context, company, slug string) (domain.Vehicle, error) {
		if company == "bali-moto" && slug == "vario" {
			return domain.Vehicle{Slug: "vario", Name: "Vario 125"}, nil
		}
		return domain.Vehicle{}, domain.ErrNotFound
	}}
	svc := service.NewResultsService(api)
	ctx := context.Background()

	v, err := svc.Detail(ctx, "bali-moto", "vario")
	require.NoError(t, err)
	assert.Equal(t, "Vario 125", v.Name)

	_, err = svc.Detail(ctx, "bali-moto", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Detail(ctx, "", "vario")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
