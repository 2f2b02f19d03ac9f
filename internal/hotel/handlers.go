package hotel

import (
	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the hotel endpoints. vendorGate guards writes and is
// normally auth.RequireApprovedVendor.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, vendorGate fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		hotels, err := svc.List(c.Context(), listing.FilterFrom(c))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(hotels)
	})

	r.Get("/mine", authMiddleware, auth.RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *fiber.Ctx) error {
		hotels, err := svc.ListByOwner(c.Context(), auth.UserID(c))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(hotels)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		h, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(h)
	})

	r.Post("/", authMiddleware, vendorGate, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h, err := svc.Create(c.Context(), auth.UserID(c), in)
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	})

	r.Put("/:id", authMiddleware, vendorGate, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h, err := svc.Update(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c), in)
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(h)
	})

	r.Delete("/:id", authMiddleware, auth.RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c)); err != nil {
			return listing.HTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
