package booking

import (
	"math"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
)

// Total computes the booking price once, at creation.
//
// Hotels charge per started night with a minimum of one. Tours charge per
// person. Vehicles charge a flat pricePerDay no matter how long the rental.
func Total(kind listing.Kind, unitPrice float64, checkIn, checkOut time.Time, people int) float64 {
	switch kind {
	case listing.KindHotel:
		return float64(Nights(checkIn, checkOut)) * unitPrice
	case listing.KindTour:
		if people < 1 {
			people = 1
		}
		return float64(people) * unitPrice
	default:
		return unitPrice
	}
}

// Nights rounds a stay up to whole days. Reversed or empty ranges count as one.
func Nights(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		return 1
	}
	return nights
}
