package vehicle

import (
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
)

type Vehicle struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"ownerId"`
	Name           string           `json:"name"`
	VehicleType    string           `json:"vehicleType"`
	Model          string           `json:"model"`
	Capacity       int              `json:"capacity"`
	PricePerDay    float64          `json:"pricePerDay"`
	DriverIncluded bool             `json:"driverIncluded"`
	Location       string           `json:"location"`
	Description    string           `json:"description"`
	Images         []string         `json:"images"`
	Reviews        []listing.Review `json:"reviews"`
	Rating         float64          `json:"rating"`
	NumReviews     int              `json:"numReviews"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type Input struct {
	Name           string   `json:"name"`
	VehicleType    string   `json:"vehicleType"`
	Model          string   `json:"model"`
	Capacity       int      `json:"capacity"`
	PricePerDay    *float64 `json:"pricePerDay"`
	DriverIncluded *bool    `json:"driverIncluded"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Images         []string `json:"images"`
}
