package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID = "user_id"
	localRole   = "role"
)

// JWTMiddleware accepts a bearer token or, failing that, the auth cookie, and
// stores user_id and role in locals.
func JWTMiddleware(secret, cookieName string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" && cookieName != "" {
			token = c.Cookies(cookieName)
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, no token")
		}

		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, token failed")
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid || claims.Type != tokenAccess {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		SetIdentity(c, claims.UserID, claims.Role)
		return c.Next()
	}
}

// SetIdentity stores the caller in locals the way JWTMiddleware does.
func SetIdentity(c *fiber.Ctx, userID string, role Role) {
	c.Locals(localUserID, userID)
	c.Locals(localRole, role)
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// UserID returns the authenticated user id, or "" outside JWTMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// RoleOf returns the authenticated role, or "" outside JWTMiddleware.
func RoleOf(c *fiber.Ctx) Role {
	role, _ := c.Locals(localRole).(Role)
	return role
}

func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := RoleOf(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not authorized for this action")
	}
}

type ApprovalChecker interface {
	IsApproved(ctx context.Context, userID string) (bool, error)
}

// RequireApprovedVendor lets admins through and checks vendors against the
// store on every request, so an approval takes effect without a new token.
func RequireApprovedVendor(checker ApprovalChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch RoleOf(c) {
		case RoleAdmin:
			return c.Next()
		case RoleVendor:
			approved, err := checker.IsApproved(c.Context(), UserID(c))
			if err != nil {
				return err
			}
			if !approved {
				return fiber.NewError(fiber.StatusForbidden, "vendor account is pending admin approval")
			}
			return c.Next()
		default:
			return fiber.NewError(fiber.StatusForbidden, "vendor account required")
		}
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
