package domain

// RentalCompany is the shop that owns a vehicle, as returned by the remote API.
type RentalCompany struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	OperatingHours string `json:"operatingHours"`
	Contact        string `json:"contact"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// Vehicle is a rentable vehicle listing, as returned by the remote API.
// Type and Distance are optional: Type is a sub-type such as "scooter" or
// "suv", Distance is kilometres from the searched location when the API
// knows it.
type Vehicle struct {
	ID                string        `json:"id"`
	Slug              string        `json:"slug"`
	RentalCompanySlug string        `json:"rentalCompanySlug"`
	EngineCapacity    string        `json:"engineCapacity"`
	ImageURL          string        `json:"imageUrl"`
	Brand             string        `json:"brand"`
	Name              string        `json:"name"`
	SeatCapacity      int           `json:"seatCapacity"`
	PricePerDay       int64         `json:"pricePerDay"`
	Year              int           `json:"year"`
	VehicleTypeSlug   Category      `json:"vehicleTypeSlug"`
	Transmission      string        `json:"transmission"`
	FuelType          string        `json:"fuelType"`
	Type              string        `json:"type,omitempty"`
	Distance          *float64      `json:"distance,omitempty"`
	RentalCompany     RentalCompany `json:"rentalCompany"`
}
