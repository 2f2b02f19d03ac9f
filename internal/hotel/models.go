package hotel

import (
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
)

type Hotel struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId"`
	Name          string           `json:"name"`
	Location      string           `json:"location"`
	Address       string           `json:"address"`
	Description   string           `json:"description"`
	PricePerNight float64          `json:"pricePerNight"`
	Amenities     []string         `json:"amenities"`
	Images        []string         `json:"images"`
	RoomTypes     []string         `json:"roomTypes"`
	Reviews       []listing.Review `json:"reviews"`
	Rating        float64          `json:"rating"`
	NumReviews    int              `json:"numReviews"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Input is used for create and patch. Nil fields are left unchanged on update.
type Input struct {
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Address       string   `json:"address"`
	Description   string   `json:"description"`
	PricePerNight *float64 `json:"pricePerNight"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
	RoomTypes     []string `json:"roomTypes"`
}
