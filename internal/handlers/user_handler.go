package handlers

import (
	"errors"

	"loja/internal/apperr"
	"loja/internal/models"
	"loja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Get("/:id", h.GetUser)
	userRoutes.Put("/:id", h.UpdateUser)
	userRoutes.Delete("/:id", h.DeleteUser)
}

// GetUser returns the public fields of a user.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	var user *models.User
	id, err := parseID(c)
	if err == nil {
		user, err = h.userService.GetUser(c.UserContext(), id)
	}
	if apperr.IsValidation(err) || errors.Is(err, apperr.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Usuário não encontrado"})
	}
	if err != nil {
		return fail(c, err, "Erro interno no servidor")
	}
	return c.JSON(user)
}

// UpdateUserRequest holds the fields a user update may change.
type UpdateUserRequest struct {
	Firstname *string `json:"firstname" validate:"omitnil,min=1,max=45"`
	Surname   *string `json:"surname" validate:"omitnil,min=1,max=45"`
	Email     *string `json:"email" validate:"omitnil,email,max=45"`
}

var updateUserMessages = messages{
	"firstname.min": "O primeiro nome é obrigatório",
	"surname.min":   "O sobrenome é obrigatório",
	"email.email":   "Email inválido",
}

// Fields returns the columns present in the request.
func (r UpdateUserRequest) Fields() map[string]any {
	fields := map[string]any{}
	if r.Firstname != nil {
		fields["firstname"] = *r.Firstname
	}
	if r.Surname != nil {
		fields["surname"] = *r.Surname
	}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	return fields
}

// UpdateUser partially updates a user. Unknown fields are ignored.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err, "Erro ao atualizar usuário")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := check(h.validate, req, updateUserMessages); err != nil {
		return fail(c, err, "Erro ao atualizar usuário")
	}

	if err := h.userService.UpdateUser(c.UserContext(), id, req.Fields()); err != nil {
		return fail(c, err, "Erro ao atualizar usuário")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUser deletes a user. A missing user is not an error.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err, "Erro ao remover usuário")
	}
	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return fail(c, err, "Erro ao remover usuário")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
