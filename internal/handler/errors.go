package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/rentalapi"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message because it knows what was looked up.
func notFoundBody(message string) ErrorResponse {
	return errorBody("not_found", message)
}

// validationBody returns an ErrorResponse for a domain validation failure.
// Per-field messages are attached when err carries domain.FieldErrors.
func validationBody(err error) ErrorResponse {
	body := errorBody("validation_error", unwrapMessage(err))
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		body.Error.Message = "booking form is invalid"
		body.Error.Fields = fields
	}
	return body
}

// requestBody returns an ErrorResponse for a request rejected before it
// reaches the service layer (malformed body or parameter).
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

// unwrapMessage extracts the human-readable part of a wrapped sentinel error:
// "service.SessionService.QuickSelect: validation error: day count must be at least 1"
// becomes "day count must be at least 1".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
		return msg[i+len(marker):]
	}
	return msg
}

// writeError maps a service error onto a status code and error body.
// what names the resource for 404 messages ("search session", "vehicle").
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(what+" not found"))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrNotReady):
		writeJSON(w, http.StatusConflict, errorBody("not_ready", "choose a location and both dates before searching"))
	case errors.Is(err, rentalapi.ErrUpstream):
		s.log.WarnContext(r.Context(), "rental API call failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody("upstream_error", "rental service unavailable"))
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst. An empty body is allowed
// when optional is true.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
