package booking

import (
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

type Booking struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	ListingType listing.Kind `json:"listingType"`
	ListingID   string       `json:"listingId"`
	ListingName string       `json:"listingName"`
	VendorID    string       `json:"vendorId"`
	CheckIn     time.Time    `json:"checkIn"`
	CheckOut    time.Time    `json:"checkOut"`
	PeopleCount int          `json:"peopleCount"`
	UnitPrice   float64      `json:"unitPrice"`
	TotalPrice  float64      `json:"totalPrice"`
	Status      Status       `json:"status"`
	Notes       string       `json:"notes"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Input carries dates as strings so both "2024-01-01" and RFC 3339 work.
type Input struct {
	ListingType string `json:"listingType"`
	ListingID   string `json:"listingId"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	PeopleCount int    `json:"peopleCount"`
	Notes       string `json:"notes"`
}

type StatusInput struct {
	Status Status `json:"status"`
}

// Event is what booking subscribers receive over the websocket.
type Event struct {
	Type    string  `json:"type"`
	Booking Booking `json:"booking"`
}
