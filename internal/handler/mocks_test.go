package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/handler"
	"github.com/pkordes/riderent/backend/internal/search"
	"github.com/pkordes/riderent/backend/internal/service"
)

// mockSessionServicer is a test double for handler.SessionServicer.
// Set only the method fields your test needs.
type mockSessionServicer struct {
	open                  func(ctx context.Context, clientID string) (service.SessionView, error)
	get                   func(ctx context.Context, id uuid.UUID) (service.SessionView, error)
	close                 func(ctx context.Context, id uuid.UUID) error
	switchTab             func(ctx context.Context, id uuid.UUID, tab search.Tab) (service.SessionView, error)
	cities                func(ctx context.Context, id uuid.UUID, query string) (service.CityList, error)
	selectCity            func(ctx context.Context, id uuid.UUID, city string) (service.SessionView, error)
	selectCurrentLocation func(ctx context.Context, id uuid.UUID, lat, lng float64) (service.SessionView, error)
	selectAnywhere        func(ctx context.Context, id uuid.UUID) (service.SessionView, error)
	clickDate             func(ctx context.Context, id uuid.UUID, d calendar.Date) (service.SessionView, bool, error)
	quickSelect           func(ctx context.Context, id uuid.UUID, n int) (service.SessionView, error)
	calendar              func(ctx context.Context, id uuid.UUID, m *calendar.Month) (service.CalendarView, error)
	shiftMonth            func(ctx context.Context, id uuid.UUID, n int) (service.CalendarView, error)
	setCategory           func(ctx context.Context, id uuid.UUID, cat domain.Category) (service.SessionView, error)
	submit                func(ctx context.Context, id uuid.UUID) (domain.Navigation, error)
}

func (m *mockSessionServicer) Open(ctx context.Context, clientID string) (service.SessionView, error) {
	return m.open(ctx, clientID)
}
func (m *mockSessionServicer) Get(ctx context.Context, id uuid.UUID) (service.SessionView, error) {
	return m.get(ctx, id)
}
func (m *mockSessionServicer) Close(ctx context.Context, id uuid.UUID) error {
	return m.close(ctx, id)
}
func (m *mockSessionServicer) SwitchTab(ctx context.Context, id uuid.UUID, tab search.Tab) (service.SessionView, error) {
	return m.switchTab(ctx, id, tab)
}
func (m *mockSessionServicer) Cities(ctx context.Context, id uuid.UUID, query string) (service.CityList, error) {
	return m.cities(ctx, id, query)
}
func (m *mockSessionServicer) SelectCity(ctx context.Context, id uuid.UUID, city string) (service.SessionView, error) {
	return m.selectCity(ctx, id, city)
}
func (m *mockSessionServicer) SelectCurrentLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (service.SessionView, error) {
	return m.selectCurrentLocation(ctx, id, lat, lng)
}
func (m *mockSessionServicer) SelectAnywhere(ctx context.Context, id uuid.UUID) (service.SessionView, error) {
	return m.selectAnywhere(ctx, id)
}
func (m *mockSessionServicer) ClickDate(ctx context.Context, id uuid.UUID, d calendar.Date) (service.SessionView, bool, error) {
	return m.clickDate(ctx, id, d)
}
func (m *mockSessionServicer) QuickSelect(ctx context.Context, id uuid.UUID, n int) (service.SessionView, error) {
	return m.quickSelect(ctx, id, n)
}
func (m *mockSessionServicer) Calendar(ctx context.Context, id uuid.UUID, mo *calendar.Month) (service.CalendarView, error) {
	return m.calendar(ctx, id, mo)
}
func (m *mockSessionServicer) ShiftMonth(ctx context.Context, id uuid.UUID, n int) (service.CalendarView, error) {
	return m.shiftMonth(ctx, id, n)
}
func (m *mockSessionServicer) SetCategory(ctx context.Context, id uuid.UUID, cat domain.Category) (service.SessionView, error) {
	return m.setCategory(ctx, id, cat)
}
func (m *mockSessionServicer) Submit(ctx context.Context, id uuid.UUID) (domain.Navigation, error) {
	return m.submit(ctx, id)
}

var _ handler.SessionServicer = (*mockSessionServicer)(nil)

// mockResultsServicer is a test double for handler.ResultsServicer.
type mockResultsServicer struct {
	search func(ctx context.Context, q domain.SearchQuery, f domain.FilterState, p domain.PaginationParams) (service.ResultPage, error)
	detail func(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error)
}

func (m *mockResultsServicer) Search(ctx context.Context, q domain.SearchQuery, f domain.FilterState, p domain.PaginationParams) (service.ResultPage, error) {
	return m.search(ctx, q, f, p)
}
func (m *mockResultsServicer) Detail(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error) {
	return m.detail(ctx, companySlug, vehicleSlug)
}

var _ handler.ResultsServicer = (*mockResultsServicer)(nil)

// mockBookingServicer is a test double for handler.BookingServicer.
type mockBookingServicer struct {
	quote func(ctx context.Context, form domain.BookingForm) (domain.BookingQuote, error)
}

func (m *mockBookingServicer) Quote(ctx context.Context, form domain.BookingForm) (domain.BookingQuote, error) {
	return m.quote(ctx, form)
}

var _ handler.BookingServicer = (*mockBookingServicer)(nil)

// ---- helpers ---------------------------------------------------------------

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way main.go does. Nil mocks are fine for routes a test never hits.
func newHTTPHandler(sessions handler.SessionServicer, results handler.ResultsServicer, bookings handler.BookingServicer) http.Handler {
	return handler.NewServer(sessions, results, bookings, []byte("openapi: 3.0.3\n"), discardLog).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// errorBody is the decoded {"error": {...}} envelope.
type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, r io.Reader) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func jan(d int) calendar.Date { return calendar.NewDate(2025, time.January, d) }

func strPtr(s string) *string { return &s }

// viewFixture is a freshly opened dated-variant session.
func viewFixture(id uuid.UUID) service.SessionView {
	return service.SessionView{
		ID:       id,
		ClientID: "device-1",
		Variant:  domain.VariantDated,
		Tabs:     []search.Tab{search.TabCity, search.TabDates, search.TabVehicle},
		State: search.SelectionState{
			ActiveTab: search.TabCity,
			Category:  domain.DefaultCategory,
		},
		Month:         calendar.MonthOf(jan(8)),
		Today:         jan(8),
		CitiesLoading: true,
	}
}
