package service

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/domain"
)

// phoneRegion is the default region for numbers written without a country code.
const phoneRegion = "ID"

var whatsappPattern = regexp.MustCompile(`^(\+62|62|0)[\d\s-]{9,15}$`)

var idDocumentExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true}

// bookingMessages maps "field.tag" to the message shown under the form field.
var bookingMessages = map[string]string{
	"pricePerDay.gt":                  "Price per day must be greater than zero",
	"pricePerDay.lte":                 "Price per day must not exceed Rp 100.000.000",
	"startDate.required":              "Please select start & end date",
	"endDate.required":                "Please select start & end date",
	"fullName.min":                    "Full name must be at least 3 characters",
	"fullName.max":                    "Full name must not exceed 50 characters",
	"whatsappNumber.required":         "WhatsApp number is required",
	"whatsappNumber.whatsapp_format":  "Invalid phone number format",
	"whatsappNumber.whatsapp_digits":  "WhatsApp number must be 10–13 digits",
	"idDocument.required":             "ID photo (KTP/SIM) is required",
	"idDocument.fileName.required":    "ID photo (KTP/SIM) is required",
	"idDocument.fileName.id_document": "ID photo must be a JPG, PNG or PDF file",
	"idDocument.size.gt":              "ID photo (KTP/SIM) is required",
	"idDocument.size.lte":             "File size must not exceed 5 MB",
	"termsAccepted.required":          "You must agree to the terms & conditions",
}

// BookingService validates the booking form and prices the rental.
type BookingService struct {
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

// NewBookingService constructs a BookingService. "Today" for the past-date
// check is now() observed in loc.
func NewBookingService(now func() time.Time, loc *time.Location) *BookingService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "whatsapp_format", validWhatsappFormat)
	mustRegister(v, "whatsapp_digits", validWhatsappDigits)
	mustRegister(v, "id_document", validIDDocument)

	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{validate: v, now: now, loc: loc}
}

// Quote validates form and returns the price for its rental period:
// days is the inclusive day count and the total is days × price per day.
// Validation failures are returned as domain.FieldErrors.
func (s *BookingService) Quote(_ context.Context, form domain.BookingForm) (domain.BookingQuote, error) {
	if err := s.check(form); err != nil {
		return domain.BookingQuote{}, err
	}

	days := calendar.DayCount(*form.StartDate, *form.EndDate)
	total := int64(days) * form.PricePerDay
	return domain.BookingQuote{
		Days:           days,
		PricePerDay:    form.PricePerDay,
		TotalPrice:     total,
		Formatted:      domain.FormatRupiah(total),
		WhatsappNumber: normalizeWhatsapp(form.WhatsappNumber),
	}, nil
}

func (s *BookingService) check(form domain.BookingForm) error {
	fields := domain.FieldErrors{}

	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			key := fieldKey(fe.Namespace())
			if _, seen := fields[key]; seen {
				continue
			}
			msg, ok := bookingMessages[fieldPath(fe.Namespace())+"."+fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			fields[key] = msg
		}
	}

	if form.StartDate != nil && form.EndDate != nil {
		today := calendar.DateOf(s.now().In(s.loc))
		switch {
		case form.EndDate.Before(*form.StartDate):
			fields["endDate"] = "End date must not be before start date"
		case form.StartDate.Before(today):
			fields["startDate"] = "Start date must not be in the past"
		}
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// fieldPath strips the struct name from a validator namespace:
// "BookingForm.idDocument.size" becomes "idDocument.size".
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return rest
}

// fieldKey is the top-level form field an error is reported under.
func fieldKey(ns string) string {
	key, _, _ := strings.Cut(fieldPath(ns), ".")
	return key
}

func validWhatsappFormat(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if !whatsappPattern.MatchString(raw) {
		return false
	}
	num, err := phonenumbers.Parse(e164Candidate(raw), phoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

func validWhatsappDigits(fl validator.FieldLevel) bool {
	n := len(digitsOnly(fl.Field().String()))
	return n >= 10 && n <= 13
}

func validIDDocument(fl validator.FieldLevel) bool {
	return idDocumentExtensions[strings.ToLower(filepath.Ext(fl.Field().String()))]
}

// normalizeWhatsapp formats a validated number as E.164 ("+6281234567890").
func normalizeWhatsapp(raw string) string {
	num, err := phonenumbers.Parse(e164Candidate(raw), phoneRegion)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// e164Candidate turns "62812..." into "+62812..." so it is not read as a
// national number; other shapes are returned digits-only or with their "+".
func e164Candidate(raw string) string {
	raw = strings.TrimSpace(raw)
	digits := digitsOnly(raw)
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(digits, "62") {
		return "+" + digits
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("service: register validation " + tag + ": " + err.Error())
	}
}
