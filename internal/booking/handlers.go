package booking

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/gofiber/fiber/v2"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterRoutes mounts the booking endpoints. Every route needs a token; the
// websocket stream is mounted separately on the same group before these.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		b, err := svc.Create(c.Context(), auth.UserID(c), in)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})

	r.Get("/mine", authMiddleware, func(c *fiber.Ctx) error {
		bookings, err := svc.ListByUser(c.Context(), auth.UserID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(bookings)
	})

	r.Get("/vendor", authMiddleware, auth.RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *fiber.Ctx) error {
		bookings, err := svc.ListByVendor(c.Context(), auth.UserID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(bookings)
	})

	r.Get("/export", authMiddleware, auth.RequireRole(auth.RoleAdmin), func(c *fiber.Ctx) error {
		from, to, err := exportRange(c.Query("from"), c.Query("to"))
		if err != nil {
			return httpError(err)
		}
		bookings, err := svc.ListCreatedBetween(c.Context(), from, to)
		if err != nil {
			return httpError(err)
		}
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, from, to, bookings); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, xlsxType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bookings-%s.xlsx"`, from.Format("20060102")))
		return c.Send(buf.Bytes())
	})

	r.Get("/", authMiddleware, auth.RequireRole(auth.RoleAdmin), func(c *fiber.Ctx) error {
		bookings, err := svc.ListAll(c.Context(), listing.PageFrom(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(bookings)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		b, err := svc.Get(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(b)
	})

	r.Put("/:id/status", authMiddleware, func(c *fiber.Ctx) error {
		var in StatusInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		b, err := svc.UpdateStatus(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c), in.Status)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(b)
	})
}

// exportRange defaults to the last 30 days. to is inclusive of its whole day.
func exportRange(fromQ, toQ string) (time.Time, time.Time, error) {
	to := nowFn().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	if toQ != "" {
		t, err := parseDate(toQ)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -30)
	if fromQ != "" {
		f, err := parseDate(fromQ)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = f
	}
	return from, to, nil
}
