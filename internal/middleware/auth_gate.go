package middleware

import (
	"errors"
	"strings"

	"loja/internal/apperr"
	"loja/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ClaimsKey is the fiber.Ctx locals key holding the *services.Claims of an
// authenticated request.
const ClaimsKey = "user"

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// PublicRoute is a method and path reachable without a token.
type PublicRoute struct {
	Method string
	Path   string
}

// DefaultPublicRoutes are login and account creation.
var DefaultPublicRoutes = []PublicRoute{
	{Method: fiber.MethodPost, Path: "/v1/user/token"},
	{Method: fiber.MethodPost, Path: "/v1/user"},
}

func protected(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

// AuthGate requires a bearer token on state-changing requests. Reads and the
// public routes pass through. Claims are stored under ClaimsKey.
func AuthGate(validator TokenValidator, public ...PublicRoute) fiber.Handler {
	if len(public) == 0 {
		public = DefaultPublicRoutes
	}
	return func(c *fiber.Ctx) error {
		if !protected(c.Method()) {
			return c.Next()
		}
		path := strings.TrimSuffix(c.Path(), "/")
		for _, r := range public {
			if r.Method == c.Method() && r.Path == path {
				return c.Next()
			}
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"erro": "Token de acesso requerido",
			})
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Info("Rejected token")
			msg := "Token inválido"
			if errors.Is(err, apperr.ErrTokenExpired) {
				msg = "Token expirado"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"erro": msg,
			})
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}
