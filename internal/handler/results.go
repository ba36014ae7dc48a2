package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// resultsParams are the results-page controls layered on top of the search
// query: the filter sheet and pagination.
type resultsParams struct {
	MinPrice *int64
	MaxPrice *int64
	Type     *string
	SortBy   *string
	Page     *int
	Limit    *int
}

// bindResultsParams binds the optional filter and paging parameters the
// same way generated oapi-codegen servers do.
func bindResultsParams(r *http.Request) (resultsParams, error) {
	var p resultsParams
	q := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"minPrice", &p.MinPrice},
		{"maxPrice", &p.MaxPrice},
		{"type", &p.Type},
		{"sortBy", &p.SortBy},
		{"page", &p.Page},
		{"limit", &p.Limit},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return resultsParams{}, err
		}
	}
	return p, nil
}

// searchResults handles GET /result-search: the query string produced by a
// submitted search session plus optional filter and paging parameters.
func (s *Server) searchResults(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseSearchQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	params, err := bindResultsParams(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	filter, err := domain.NewFilterState(params.MinPrice, params.MaxPrice, params.Type, params.SortBy)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}

	page, err := s.results.Search(r.Context(), q, filter, domain.NewPaginationParams(params.Page, params.Limit))
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, toResultsResponse(page))
}

// getVehicle handles GET /vehicles/{company}/{slug}.
func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.results.Detail(r.Context(), chi.URLParam(r, "company"), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, "vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse{Data: v})
}
