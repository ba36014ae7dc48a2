package handler

import (
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/citycatalog"
	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/search"
	"github.com/pkordes/riderent/backend/internal/service"
)

// Wire shapes for the search API. Dates on the wire are always YYYY-MM-DD.

type openSessionRequest struct {
	ClientID string `json:"clientId"`
}

type switchTabRequest struct {
	Tab string `json:"tab"`
}

// selectCityRequest.City is a pointer so that "" (All Cities) can be told
// apart from a missing field.
type selectCityRequest struct {
	City *string `json:"city"`
}

type currentLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type clickDateRequest struct {
	Date *openapi_types.Date `json:"date"`
}

type quickSelectRequest struct {
	Days int `json:"days"`
}

type setCategoryRequest struct {
	Category string `json:"category"`
}

type dateRangeDTO struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type selectionDTO struct {
	ActiveTab search.Tab       `json:"activeTab"`
	City      *string          `json:"city"`
	Location  *domain.Location `json:"location"`
	DateRange dateRangeDTO     `json:"dateRange"`
	Category  domain.Category  `json:"category"`
}

type completionDTO struct {
	City    bool `json:"city"`
	Dates   bool `json:"dates"`
	Vehicle bool `json:"vehicle"`
}

type sessionResponse struct {
	ID            uuid.UUID               `json:"id"`
	Variant       domain.SearchVariant    `json:"variant"`
	Tabs          []search.Tab            `json:"tabs"`
	Selection     selectionDTO            `json:"selection"`
	SelectingEnd  bool                    `json:"selectingEnd"`
	Completion    completionDTO           `json:"completion"`
	Ready         bool                    `json:"ready"`
	DayCount      int                     `json:"dayCount"`
	Month         string                  `json:"month"`
	Today         string                  `json:"today"`
	CitiesLoading bool                    `json:"citiesLoading"`
	Recent        []domain.RecentLocation `json:"recent"`
}

// clickDateResponse adds whether the click completed the range, which is the
// client's cue to leave the calendar.
type clickDateResponse struct {
	sessionResponse
	Completed bool `json:"completed"`
}

type cityListResponse struct {
	Loading bool                 `json:"loading"`
	Data    []citycatalog.Option `json:"data"`
}

type cellDTO struct {
	Date  *string           `json:"date"`
	Day   int               `json:"day,omitempty"`
	State calendar.DayState `json:"state,omitempty"`
}

type calendarResponse struct {
	Month    string    `json:"month"`
	Title    string    `json:"title"`
	Today    string    `json:"today"`
	Weekdays []string  `json:"weekdays"`
	Cells    []cellDTO `json:"cells"`
}

type filterDTO struct {
	MinPrice    *int64            `json:"minPrice,omitempty"`
	MaxPrice    *int64            `json:"maxPrice,omitempty"`
	VehicleType *string           `json:"type,omitempty"`
	SortBy      domain.SortOption `json:"sortBy"`
}

type queryDTO struct {
	Location  string          `json:"location"`
	StartDate *string         `json:"startDate"`
	EndDate   *string         `json:"endDate"`
	Category  domain.Category `json:"category,omitempty"`
	Lat       *float64        `json:"lat,omitempty"`
	Lng       *float64        `json:"lng,omitempty"`
}

type paginationDTO struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

type resultsResponse struct {
	Query      queryDTO         `json:"query"`
	Filter     filterDTO        `json:"filter"`
	Data       []domain.Vehicle `json:"data"`
	Pagination paginationDTO    `json:"pagination"`
}

type vehicleResponse struct {
	Data domain.Vehicle `json:"data"`
}

type idDocumentRequest struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

type bookingQuoteRequest struct {
	PricePerDay    int64               `json:"pricePerDay"`
	StartDate      *openapi_types.Date `json:"startDate"`
	EndDate        *openapi_types.Date `json:"endDate"`
	FullName       string              `json:"fullName"`
	WhatsappNumber string              `json:"whatsappNumber"`
	IDDocument     *idDocumentRequest  `json:"idDocument"`
	TermsAccepted  bool                `json:"termsAccepted"`
}

// ---- mapping ----

func dateString(d *calendar.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func fromWireDate(d *openapi_types.Date) *calendar.Date {
	if d == nil {
		return nil
	}
	cd := calendar.DateOf(d.Time)
	return &cd
}

func toSessionResponse(v service.SessionView) sessionResponse {
	recent := v.Recent
	if recent == nil {
		recent = []domain.RecentLocation{}
	}
	return sessionResponse{
		ID:      v.ID,
		Variant: v.Variant,
		Tabs:    v.Tabs,
		Selection: selectionDTO{
			ActiveTab: v.State.ActiveTab,
			City:      v.State.City,
			Location:  v.State.Location,
			DateRange: dateRangeDTO{
				StartDate: dateString(v.State.DateRange.Start),
				EndDate:   dateString(v.State.DateRange.End),
			},
			Category: v.State.Category,
		},
		SelectingEnd:  v.SelectingEnd,
		Completion:    completionDTO(v.Completion),
		Ready:         v.Ready,
		DayCount:      v.DayCount,
		Month:         v.Month.String(),
		Today:         v.Today.String(),
		CitiesLoading: v.CitiesLoading,
		Recent:        recent,
	}
}

func toCalendarResponse(v service.CalendarView) calendarResponse {
	cells := make([]cellDTO, len(v.Cells))
	for i, c := range v.Cells {
		if c.Blank {
			continue
		}
		cells[i] = cellDTO{Date: dateString(&c.Date), Day: c.Date.Day(), State: c.State}
	}
	return calendarResponse{
		Month:    v.Month.String(),
		Title:    v.Month.Title(),
		Today:    v.Today.String(),
		Weekdays: v.Weekdays,
		Cells:    cells,
	}
}

func toQueryDTO(q domain.SearchQuery) queryDTO {
	out := queryDTO{
		Location:  q.City,
		StartDate: dateString(q.StartDate),
		EndDate:   dateString(q.EndDate),
		Category:  q.Category,
	}
	if q.Near != nil {
		out.Lat, out.Lng = &q.Near.Lat, &q.Near.Lng
	}
	return out
}

func toResultsResponse(p service.ResultPage) resultsResponse {
	return resultsResponse{
		Query: toQueryDTO(p.Query),
		Filter: filterDTO{
			MinPrice:    p.Filter.MinPrice,
			MaxPrice:    p.Filter.MaxPrice,
			VehicleType: p.Filter.VehicleType,
			SortBy:      p.Filter.SortBy,
		},
		Data: p.Vehicles,
		Pagination: paginationDTO{
			Page:    p.Page.Page,
			Limit:   p.Page.Limit,
			Total:   p.Total,
			HasMore: p.Page.Offset()+len(p.Vehicles) < p.Total,
		},
	}
}

func (b bookingQuoteRequest) toDomain() domain.BookingForm {
	form := domain.BookingForm{
		PricePerDay:    b.PricePerDay,
		StartDate:      fromWireDate(b.StartDate),
		EndDate:        fromWireDate(b.EndDate),
		FullName:       b.FullName,
		WhatsappNumber: b.WhatsappNumber,
		TermsAccepted:  b.TermsAccepted,
	}
	if b.IDDocument != nil {
		form.IDDocument = &domain.IDDocument{FileName: b.IDDocument.FileName, Size: b.IDDocument.Size}
	}
	return form
}
