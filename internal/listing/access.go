package listing

import (
	"strconv"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// CanModify reports whether the caller may edit or delete a listing.
func CanModify(ownerID, userID string, role auth.Role) bool {
	return role == auth.RoleAdmin || (userID != "" && ownerID == userID)
}

type Page struct {
	Limit  int
	Offset int
}

// PageFrom reads limit and offset query params, clamping bad values.
func PageFrom(c *fiber.Ctx) Page {
	p := Page{Limit: defaultLimit}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}

// Filter is shared by the list endpoints of every kind.
type Filter struct {
	Search   string
	MinPrice float64
	MaxPrice float64
	Page     Page
}

// FilterFrom reads search, minPrice and maxPrice. A missing maxPrice is 0,
// which the queries treat as unbounded.
func FilterFrom(c *fiber.Ctx) Filter {
	f := Filter{Search: c.Query("search"), Page: PageFrom(c)}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil && v > 0 {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil && v > 0 {
		f.MaxPrice = v
	}
	return f
}
