package booking

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrForbidden    = errors.New("not allowed to access this booking")
	ErrMissingField = errors.New("listingType, listingId and checkIn are required")
	ErrCheckOut     = errors.New("checkOut is required for hotel bookings")
	ErrBadDate      = errors.New("dates must be YYYY-MM-DD or RFC 3339")
	ErrPeople       = errors.New("peopleCount must not be negative")
)

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrCheckOut), errors.Is(err, ErrBadDate),
		errors.Is(err, ErrPeople), errors.Is(err, ErrUnknownStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return listing.HTTPError(err)
	}
}
