package listing

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrForbidden = errors.New("not allowed to modify this listing")
	ErrInvalid   = errors.New("invalid listing")
)

// HTTPError maps listing errors onto fiber errors for handlers of every kind.
// Anything else is returned unchanged for the server's error handler.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrUnknownKind):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNoDatabase):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}
