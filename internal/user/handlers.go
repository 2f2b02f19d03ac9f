package user

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts profile and admin user management. It shares the
// /api/users group with the auth routes.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		u, err := svc.Get(c.Context(), auth.UserID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(u)
	})

	r.Put("/me", authMiddleware, func(c *fiber.Ctx) error {
		var patch ProfilePatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		u, err := svc.UpdateProfile(c.Context(), auth.UserID(c), patch)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(u)
	})

	admin := []fiber.Handler{authMiddleware, auth.RequireRole(auth.RoleAdmin)}

	r.Get("/", append(admin, func(c *fiber.Ctx) error {
		users, err := svc.List(c.Context(), auth.Role(c.Query("role")))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(users)
	})...)

	r.Get("/vendors/pending", append(admin, func(c *fiber.Ctx) error {
		users, err := svc.PendingVendors(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(users)
	})...)

	r.Get("/:id", append(admin, func(c *fiber.Ctx) error {
		u, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(u)
	})...)

	r.Put("/:id/approve", append(admin, func(c *fiber.Ctx) error {
		u, err := svc.Approve(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(u)
	})...)

	r.Delete("/:id", append(admin, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})...)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotVendor):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrPasswordLength):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
