package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"loja/internal/apperr"
	"loja/internal/middleware"
	"loja/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]error

func (s stubValidator) ValidateToken(token string) (*services.Claims, error) {
	if err, ok := s[token]; ok {
		return nil, err
	}
	return &services.Claims{ID: 1, Email: "ana@loja.com"}, nil
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.AuthGate(stubValidator{
		"expired": apperr.ErrTokenExpired,
		"forged":  apperr.ErrTokenInvalid,
	}))
	handler := func(c *fiber.Ctx) error {
		claims, _ := c.Locals(middleware.ClaimsKey).(*services.Claims)
		if claims != nil {
			return c.JSON(fiber.Map{"email": claims.Email})
		}
		return c.SendStatus(fiber.StatusOK)
	}
	app.Get("/v1/product/:id", handler)
	app.Post("/v1/product", handler)
	app.Delete("/v1/category/:id", handler)
	app.Post("/v1/user", handler)
	app.Post("/v1/user/token", handler)
	return app
}

func TestAuthGate(t *testing.T) {
	app := newApp()

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "reads are public", method: http.MethodGet, path: "/v1/product/1", wantCode: 200},
		{name: "signup is public", method: http.MethodPost, path: "/v1/user", wantCode: 200},
		{name: "login is public", method: http.MethodPost, path: "/v1/user/token", wantCode: 200},
		{name: "missing header", method: http.MethodPost, path: "/v1/product", wantCode: 400, wantErr: "Token de acesso requerido"},
		{name: "wrong scheme", method: http.MethodDelete, path: "/v1/category/1", header: "Basic abc", wantCode: 400, wantErr: "Token de acesso requerido"},
		{name: "empty bearer", method: http.MethodDelete, path: "/v1/category/1", header: "Bearer ", wantCode: 400, wantErr: "Token de acesso requerido"},
		{name: "expired", method: http.MethodPost, path: "/v1/product", header: "Bearer expired", wantCode: 401, wantErr: "Token expirado"},
		{name: "invalid", method: http.MethodPost, path: "/v1/product", header: "Bearer forged", wantCode: 401, wantErr: "Token inválido"},
		{name: "valid", method: http.MethodPost, path: "/v1/product", header: "Bearer good", wantCode: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantErr != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantErr, body["erro"])
			}
		})
	}
}

func TestAuthGateStoresClaims(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest(http.MethodPost, "/v1/product", nil)
	req.Header.Set("Authorization", "Bearer good")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ana@loja.com", body["email"])
}
