package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pkordes/riderent/backend/internal/calendar"
)

// MaxIDDocumentBytes is the largest ID photo (KTP/SIM) the booking form accepts.
const MaxIDDocumentBytes = 5 * 1024 * 1024

// IDDocument describes the uploaded ID photo. The file itself goes straight to
// the remote API; only its name and size are checked here.
type IDDocument struct {
	FileName string `json:"fileName" validate:"required,id_document"`
	Size     int64  `json:"size" validate:"gt=0,lte=5242880"`
}

// BookingForm is the rental form filled in on the vehicle page before payment.
type BookingForm struct {
	PricePerDay    int64          `json:"pricePerDay" validate:"gt=0,lte=100000000"`
	StartDate      *calendar.Date `json:"startDate" validate:"required"`
	EndDate        *calendar.Date `json:"endDate" validate:"required"`
	FullName       string         `json:"fullName" validate:"min=3,max=50"`
	WhatsappNumber string         `json:"whatsappNumber" validate:"required,whatsapp_digits,whatsapp_format"`
	IDDocument     *IDDocument    `json:"idDocument" validate:"required"`
	TermsAccepted  bool           `json:"termsAccepted" validate:"required"`
}

// BookingQuote is the price summary shown under the rental period.
type BookingQuote struct {
	Days           int    `json:"days"`
	PricePerDay    int64  `json:"pricePerDay"`
	TotalPrice     int64  `json:"totalPrice"`
	Formatted      string `json:"formatted"`
	WhatsappNumber string `json:"whatsappNumber"`
}

// rupiah groups thousands with "." the way Indonesian prices are written.
var rupiah = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount as "Rp 360.000".
func FormatRupiah(amount int64) string {
	return rupiah.Sprintf("Rp %d", amount)
}
