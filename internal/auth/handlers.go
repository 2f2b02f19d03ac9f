package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, tokens, err := svc.Register(c.Context(), req)
		switch {
		case errors.Is(err, ErrMissingFields):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRoleNotAllowed):
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrEmailTaken):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return err
		}
		svc.setAuthCookie(c, tokens.AccessToken)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": tokens})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		user, tokens, err := svc.Login(c.Context(), req)
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if err != nil {
			return err
		}
		svc.setAuthCookie(c, tokens.AccessToken)
		return c.JSON(fiber.Map{"user": user, "tokens": tokens})
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refreshToken required")
		}

		tokens, err := svc.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		svc.setAuthCookie(c, tokens.AccessToken)
		return c.JSON(tokens)
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		var req RefreshRequest
		_ = c.BodyParser(&req)
		if req.RefreshToken != "" {
			if err := svc.RevokeRefreshToken(c.Context(), req.RefreshToken); err != nil {
				return err
			}
		}
		svc.clearAuthCookie(c)
		return c.JSON(fiber.Map{"message": "logged out"})
	})

	r.Get("/jwt/verify", func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies(svc.cookieName)
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, no token")
		}

		claims, err := svc.ValidateAccessToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(fiber.Map{"userId": claims.UserID, "role": claims.Role})
	})

	r.Post("/forgot-password", func(c *fiber.Ctx) error {
		var req ForgotPasswordRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email required")
		}
		if err := svc.ForgotPassword(c.Context(), req.Email); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "if the account exists a reset code has been sent"})
	})

	r.Post("/reset-password", func(c *fiber.Ctx) error {
		var req ResetPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		err := svc.ResetPassword(c.Context(), req)
		if errors.Is(err, ErrInvalidOTP) || errors.Is(err, ErrResetFields) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "password updated"})
	})
}

func (s *Service) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Expires:  time.Now().Add(accessTokenTTL),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Service) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
