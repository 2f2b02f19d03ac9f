package tour

import (
	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, vendorGate fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		tours, err := svc.List(c.Context(), listing.FilterFrom(c))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(tours)
	})

	r.Get("/mine", authMiddleware, auth.RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *fiber.Ctx) error {
		tours, err := svc.ListByOwner(c.Context(), auth.UserID(c))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(tours)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		t, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(t)
	})

	r.Post("/", authMiddleware, vendorGate, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		t, err := svc.Create(c.Context(), auth.UserID(c), in)
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	r.Put("/:id", authMiddleware, vendorGate, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		t, err := svc.Update(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c), in)
		if err != nil {
			return listing.HTTPError(err)
		}
		return c.JSON(t)
	})

	r.Delete("/:id", authMiddleware, auth.RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c), auth.RoleOf(c)); err != nil {
			return listing.HTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
