package planner

import (
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/distance", func(c *fiber.Ctx) error {
		from, to := c.Query("from"), c.Query("to")
		if from == "" || to == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from and to are required")
		}
		route, err := svc.Distance(from, to)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(route)
	})

	r.Post("/plan", authMiddleware, func(c *fiber.Ctx) error {
		var req PlanRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		plan, err := svc.Plan(c.Context(), auth.UserID(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(plan)
	})

	r.Post("/chat", authMiddleware, func(c *fiber.Ctx) error {
		var req ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		reply, err := svc.Chat(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"reply": reply})
	})

	r.Get("/plans", authMiddleware, func(c *fiber.Ctx) error {
		plans, err := svc.ListPlans(c.Context(), auth.UserID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(plans)
	})

	r.Get("/plans/:id", authMiddleware, func(c *fiber.Ctx) error {
		plan, err := svc.GetPlan(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(plan)
	})

	r.Delete("/plans/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeletePlan(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrEmptyChat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrEmptyResponse):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return err
	}
}
