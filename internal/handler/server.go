// Package handler implements the HTTP handlers for the RideRent search API.
// All handlers are methods on Server; they are split into per-area files
// (health.go, session.go, results.go, booking.go) and registered in Routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/search"
	"github.com/pkordes/riderent/backend/internal/service"
)

// SessionServicer is the search-session surface the handlers depend on.
// Implemented by *service.SessionService.
type SessionServicer interface {
	Open(ctx context.Context, clientID string) (service.SessionView, error)
	Get(ctx context.Context, id uuid.UUID) (service.SessionView, error)
	Close(ctx context.Context, id uuid.UUID) error
	SwitchTab(ctx context.Context, id uuid.UUID, tab search.Tab) (service.SessionView, error)
	Cities(ctx context.Context, id uuid.UUID, query string) (service.CityList, error)
	SelectCity(ctx context.Context, id uuid.UUID, city string) (service.SessionView, error)
	SelectCurrentLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (service.SessionView, error)
	SelectAnywhere(ctx context.Context, id uuid.UUID) (service.SessionView, error)
	ClickDate(ctx context.Context, id uuid.UUID, d calendar.Date) (service.SessionView, bool, error)
	QuickSelect(ctx context.Context, id uuid.UUID, n int) (service.SessionView, error)
	Calendar(ctx context.Context, id uuid.UUID, m *calendar.Month) (service.CalendarView, error)
	ShiftMonth(ctx context.Context, id uuid.UUID, n int) (service.CalendarView, error)
	SetCategory(ctx context.Context, id uuid.UUID, cat domain.Category) (service.SessionView, error)
	Submit(ctx context.Context, id uuid.UUID) (domain.Navigation, error)
}

// ResultsServicer is the results-page surface. Implemented by *service.ResultsService.
type ResultsServicer interface {
	Search(ctx context.Context, q domain.SearchQuery, f domain.FilterState, p domain.PaginationParams) (service.ResultPage, error)
	Detail(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error)
}

// BookingServicer prices a booking form. Implemented by *service.BookingService.
type BookingServicer interface {
	Quote(ctx context.Context, form domain.BookingForm) (domain.BookingQuote, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	sessions SessionServicer
	results  ResultsServicer
	bookings BookingServicer
	openapi  []byte
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies. openapi is the
// document served at /openapi.yaml.
func NewServer(sessions SessionServicer, results ResultsServicer, bookings BookingServicer, openapi []byte, log *slog.Logger) *Server {
	return &Server{sessions: sessions, results: results, bookings: bookings, openapi: openapi, log: log}
}

// Routes returns the API router. Cross-cutting middleware is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/search/sessions", func(r chi.Router) {
		r.Post("/", s.openSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)
			r.Put("/tab", s.switchTab)
			r.Get("/cities", s.listCities)
			r.Put("/city", s.selectCity)
			r.Post("/current-location", s.selectCurrentLocation)
			r.Post("/anywhere", s.selectAnywhere)
			r.Post("/dates/click", s.clickDate)
			r.Post("/dates/quick", s.quickSelect)
			r.Get("/calendar", s.getCalendar)
			r.Post("/calendar/prev", s.shiftMonth(-1))
			r.Post("/calendar/next", s.shiftMonth(1))
			r.Put("/category", s.setCategory)
			r.Post("/submit", s.submit)
		})
	})

	r.Get(domain.ResultsPath, s.searchResults)
	r.Get("/vehicles/{company}/{slug}", s.getVehicle)
	r.Post("/bookings/quote", s.quoteBooking)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})

	return r
}
