package handlers

import (
	"loja/internal/models"
	"loja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for account creation and login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/token", h.HandleLogin)
	userRoutes.Post("", h.HandleRegister)
}

// RegisterRequest represents the request body for account creation.
type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"required,max=45"`
	Surname   string `json:"surname" validate:"required,max=45"`
	Email     string `json:"email" validate:"required,email,max=45"`
	Password  string `json:"password" validate:"required"`
}

var registerMessages = messages{
	"firstname.required": "O primeiro nome é obrigatório",
	"surname.required":   "O sobrenome é obrigatório",
	"email.required":     "O email é obrigatório",
	"email.email":        "Email inválido",
	"password.required":  "A senha é obrigatória",
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := check(h.validate, req, registerMessages); err != nil {
		return fail(c, err, "Erro ao criar usuário")
	}

	user := models.User{
		Firstname: req.Firstname,
		Surname:   req.Surname,
		Email:     req.Email,
		Password:  req.Password,
	}
	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		return fail(c, err, "Erro ao criar usuário")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuário criado com sucesso",
		"id":      user.ID,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"erro": "Email e senha são obrigatórios",
		})
	}

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Erro interno do servidor")
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}
