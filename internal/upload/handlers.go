package upload

import (
	"errors"
	"io"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		if !svc.Enabled() {
			return httpError(ErrUnavailable)
		}
		fh, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart field \"image\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer f.Close()

		obj, err := svc.Save(c.Context(), auth.UserID(c), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rc, contentType, err := svc.Open(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		defer rc.Close()

		body, err := io.ReadAll(rc)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Send(body)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrNotImage), errors.Is(err, ErrTooLarge):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrObjectNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
