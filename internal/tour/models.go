package tour

import (
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
)

type Tour struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"ownerId"`
	Name           string           `json:"name"`
	Destination    string           `json:"destination"`
	Description    string           `json:"description"`
	DurationDays   int              `json:"durationDays"`
	PricePerPerson float64          `json:"pricePerPerson"`
	MaxGroupSize   int              `json:"maxGroupSize"`
	Includes       []string         `json:"includes"`
	Images         []string         `json:"images"`
	Reviews        []listing.Review `json:"reviews"`
	Rating         float64          `json:"rating"`
	NumReviews     int              `json:"numReviews"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type Input struct {
	Name           string   `json:"name"`
	Destination    string   `json:"destination"`
	Description    string   `json:"description"`
	DurationDays   int      `json:"durationDays"`
	PricePerPerson *float64 `json:"pricePerPerson"`
	MaxGroupSize   int      `json:"maxGroupSize"`
	Includes       []string `json:"includes"`
	Images         []string `json:"images"`
}
