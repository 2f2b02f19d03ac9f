package booking

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
)

var (
	ErrInvalidTransition = errors.New("booking status change not allowed")
	ErrUnknownStatus     = errors.New("unknown booking status")
)

// CheckTransition decides whether actor may move b to next. Vendors (or an
// admin) answer pending bookings; the guest (or an admin) may cancel while the
// booking is pending or confirmed.
func CheckTransition(b Booking, next Status, actorID string, role auth.Role) error {
	admin := role == auth.RoleAdmin

	switch next {
	case StatusConfirmed, StatusRejected:
		if !admin && b.VendorID != actorID {
			return ErrForbidden
		}
		if b.Status != StatusPending {
			return ErrInvalidTransition
		}
	case StatusCancelled:
		if !admin && b.UserID != actorID {
			return ErrForbidden
		}
		if b.Status != StatusPending && b.Status != StatusConfirmed {
			return ErrInvalidTransition
		}
	case StatusPending:
		return ErrInvalidTransition
	default:
		return ErrUnknownStatus
	}
	return nil
}
