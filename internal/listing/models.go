package listing

import (
	"errors"
	"time"
)

// Kind names one of the bookable listing types.
type Kind string

const (
	KindHotel   Kind = "hotel"
	KindTour    Kind = "tour"
	KindVehicle Kind = "vehicle"
)

var ErrUnknownKind = errors.New("unknown listing type")

var kinds = map[Kind]struct {
	table    string
	priceCol string
}{
	KindHotel:   {table: "hotels", priceCol: "price_per_night"},
	KindTour:    {table: "tours", priceCol: "price_per_person"},
	KindVehicle: {table: "vehicles", priceCol: "price_per_day"},
}

// ParseKind accepts both singular and plural forms ("hotel", "hotels").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "hotel", "hotels":
		return KindHotel, nil
	case "tour", "tours":
		return KindTour, nil
	case "vehicle", "vehicles":
		return KindVehicle, nil
	}
	return "", ErrUnknownKind
}

// Table returns the backing table. Only called with kinds from ParseKind or
// the constants, so the value is always one of the fixed names.
func (k Kind) Table() string {
	return kinds[k].table
}

func (k Kind) PriceColumn() string {
	return kinds[k].priceCol
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Review is stored inline in the listing row's reviews array.
type Review struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ref is the subset of any listing needed to price and route a booking.
type Ref struct {
	Kind    Kind    `json:"listingType"`
	ID      string  `json:"listingId"`
	Name    string  `json:"name"`
	OwnerID string  `json:"ownerId"`
	Price   float64 `json:"price"`
}
