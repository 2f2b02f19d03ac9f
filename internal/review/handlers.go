package review

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/:type/:id", func(c *fiber.Ctx) error {
		kind, err := listing.ParseKind(c.Params("type"))
		if err != nil {
			return httpError(err)
		}
		reviews, err := svc.List(c.Context(), kind, c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(reviews)
	})

	r.Post("/:type/:id", authMiddleware, func(c *fiber.Ctx) error {
		kind, err := listing.ParseKind(c.Params("type"))
		if err != nil {
			return httpError(err)
		}
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		summary, err := svc.Submit(c.Context(), kind, c.Params("id"), auth.UserID(c), in)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(summary)
	})

	// Admins may remove someone else's review with ?userId=.
	r.Delete("/:type/:id", authMiddleware, func(c *fiber.Ctx) error {
		kind, err := listing.ParseKind(c.Params("type"))
		if err != nil {
			return httpError(err)
		}
		target := auth.UserID(c)
		if other := c.Query("userId"); other != "" && auth.RoleOf(c) == auth.RoleAdmin {
			target = other
		}
		summary, err := svc.Remove(c.Context(), kind, c.Params("id"), target)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(summary)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrCommentRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrReviewNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return listing.HTTPError(err)
	}
}
