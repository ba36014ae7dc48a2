package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/middleware"
	"github.com/pkordes/riderent/backend/internal/search"
	"github.com/pkordes/riderent/backend/internal/service"
)

const sessionResource = "search session"

// sessionID parses the {id} path parameter. On failure it writes the 404
// itself: an unparseable ID can never name a live session.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody(sessionResource+" not found"))
		return uuid.Nil, false
	}
	return id, true
}

// decodeOrReject decodes the body into dst and writes a 422 (or 413) on failure.
func (s *Server) decodeOrReject(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst, false); err != nil {
		s.rejectBody(w, r, err)
		return false
	}
	return true
}

func (s *Server) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request body: "+err.Error()))
}

// openSession handles POST /search/sessions.
// The client ID comes from the body or, failing that, the X-Client-ID header.
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var body openSessionRequest
	if err := decodeJSON(r, &body, true); err != nil {
		s.rejectBody(w, r, err)
		return
	}
	clientID := strings.TrimSpace(body.ClientID)
	if clientID == "" {
		clientID = strings.TrimSpace(r.Header.Get(middleware.ClientIDHeader))
	}

	view, err := s.sessions.Open(r.Context(), clientID)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/search/sessions/%s", view.ID))
	writeJSON(w, http.StatusCreated, toSessionResponse(view))
}

// getSession handles GET /search/sessions/{id}.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

// closeSession handles DELETE /search/sessions/{id}. Closing discards the
// selection and cancels any in-flight city fetch.
func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Close(r.Context(), id); err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) switchTab(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body switchTabRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	tab, err := search.ParseTab(body.Tab)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	s.respondView(w, r)(s.sessions.SwitchTab(r.Context(), id, tab))
}

// listCities handles GET /search/sessions/{id}/cities?q=.
// While the catalog is still loading only the All Cities option is returned
// and loading is true.
func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	list, err := s.sessions.Cities(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	writeJSON(w, http.StatusOK, cityListResponse{Loading: list.Loading, Data: list.Options})
}

func (s *Server) selectCity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body selectCityRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	if body.City == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(`city is required (use "" for all cities)`))
		return
	}
	s.respondView(w, r)(s.sessions.SelectCity(r.Context(), id, *body.City))
}

func (s *Server) selectCurrentLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body currentLocationRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	if body.Lat == nil || body.Lng == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("lat and lng are required"))
		return
	}
	s.respondView(w, r)(s.sessions.SelectCurrentLocation(r.Context(), id, *body.Lat, *body.Lng))
}

func (s *Server) selectAnywhere(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.sessions.SelectAnywhere(r.Context(), id))
}

// clickDate handles POST /search/sessions/{id}/dates/click.
func (s *Server) clickDate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body clickDateRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	if body.Date == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("date is required"))
		return
	}
	view, completed, err := s.sessions.ClickDate(r.Context(), id, *fromWireDate(body.Date))
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	writeJSON(w, http.StatusOK, clickDateResponse{sessionResponse: toSessionResponse(view), Completed: completed})
}

func (s *Server) quickSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body quickSelectRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	s.respondView(w, r)(s.sessions.QuickSelect(r.Context(), id, body.Days))
}

// getCalendar handles GET /search/sessions/{id}/calendar?month=YYYY-MM.
// Without month the session's current month is rendered.
func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var month *calendar.Month
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := calendar.ParseMonth(raw)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("month must be YYYY-MM"))
			return
		}
		month = &m
	}
	view, err := s.sessions.Calendar(r.Context(), id, month)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(view))
}

// shiftMonth returns the handler for the previous/next month buttons.
func (s *Server) shiftMonth(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionID(w, r)
		if !ok {
			return
		}
		view, err := s.sessions.ShiftMonth(r.Context(), id, n)
		if err != nil {
			s.writeError(w, r, sessionResource, err)
			return
		}
		writeJSON(w, http.StatusOK, toCalendarResponse(view))
	}
}

func (s *Server) setCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body setCategoryRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	cat, err := domain.ParseCategory(body.Category)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	s.respondView(w, r)(s.sessions.SetCategory(r.Context(), id, cat))
}

// submit handles POST /search/sessions/{id}/submit. On success the session
// is finished and the response tells the client where to navigate.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	nav, err := s.sessions.Submit(r.Context(), id)
	if err != nil {
		s.writeError(w, r, sessionResource, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

// respondView adapts a (SessionView, error) service result into a response.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request) func(service.SessionView, error) {
	return func(view service.SessionView, err error) {
		if err != nil {
			s.writeError(w, r, sessionResource, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(view))
	}
}
