package handler

import "net/http"

// quoteBooking handles POST /bookings/quote. It validates the booking form
// and returns the rental period price; field problems come back as a 422
// with one message per field.
func (s *Server) quoteBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingQuoteRequest
	if !s.decodeOrReject(w, r, &body) {
		return
	}
	quote, err := s.bookings.Quote(r.Context(), body.toDomain())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
