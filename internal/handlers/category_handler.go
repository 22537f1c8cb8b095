package handlers

import (
	"errors"

	"loja/internal/apperr"
	"loja/internal/assembler"
	"loja/internal/models"
	"loja/internal/query"
	"loja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	categoryService *services.CategoryService
	validate        *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validate:        newValidator(),
	}
}

// RegisterRoutes registers the category routes with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/category")
	categoryRoutes.Get("/search", h.SearchCategories)
	categoryRoutes.Get("/:id", h.GetCategory)
	categoryRoutes.Post("", h.CreateCategory)
	categoryRoutes.Put("/:id", h.UpdateCategory)
	categoryRoutes.Delete("/:id", h.DeleteCategory)
}

// SearchCategories lists categories with pagination, an optional
// use_in_menu filter and field projection.
func (h *CategoryHandler) SearchCategories(c *fiber.Ctx) error {
	page, err := query.ParsePagination(c.Query("limit"), c.Query("page"))
	if err != nil {
		return fail(c, err, "Erro ao buscar categorias")
	}
	filter := query.CategoryFilter{UseInMenu: query.ParseUseInMenu(c.Query("use_in_menu"))}
	fields := query.ParseFields(c.Query("fields"), query.CategoryFields)

	categories, total, err := h.categoryService.SearchCategories(c.UserContext(), filter, page)
	if err != nil {
		return fail(c, err, "Erro ao buscar categorias")
	}

	var data any = categories
	if fields != nil {
		projected := make([]map[string]any, 0, len(categories))
		for _, cat := range categories {
			projected = append(projected, assembler.SelectCategory(cat, fields))
		}
		data = projected
	}

	return c.JSON(fiber.Map{
		"data":  data,
		"total": total,
		"limit": page.Limit,
		"page":  page.Page,
	})
}

// GetCategory returns a category by id.
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	var category *models.Category
	id, err := parseID(c)
	if err == nil {
		category, err = h.categoryService.GetCategory(c.UserContext(), id)
	}
	if apperr.IsValidation(err) || errors.Is(err, apperr.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Categoria não encontrada"})
	}
	if err != nil {
		return fail(c, err, "Erro interno no servidor")
	}
	return c.JSON(category)
}

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,max=45"`
	Slug      string `json:"slug" validate:"required,max=45"`
	UseInMenu bool   `json:"use_in_menu"`
}

var categoryMessages = messages{
	"name.required": "O nome é obrigatório",
	"name.min":      "O nome é obrigatório",
	"slug.required": "O slug é obrigatório",
	"slug.min":      "O slug é obrigatório",
}

// CreateCategory creates a category.
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := check(h.validate, req, categoryMessages); err != nil {
		return fail(c, err, "Erro ao criar categoria")
	}

	category := models.Category{Name: req.Name, Slug: req.Slug, UseInMenu: req.UseInMenu}
	if err := h.categoryService.CreateCategory(c.UserContext(), &category); err != nil {
		return fail(c, err, "Erro ao criar categoria")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Categoria criada com sucesso",
		"id":      category.ID,
	})
}

// UpdateCategoryRequest holds the fields a category update may change.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitnil,min=1,max=45"`
	Slug      *string `json:"slug" validate:"omitnil,min=1,max=45"`
	UseInMenu *bool   `json:"use_in_menu"`
}

// Fields returns the columns present in the request.
func (r UpdateCategoryRequest) Fields() map[string]any {
	fields := map[string]any{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Slug != nil {
		fields["slug"] = *r.Slug
	}
	if r.UseInMenu != nil {
		fields["use_in_menu"] = *r.UseInMenu
	}
	return fields
}

// UpdateCategory partially updates a category. Unknown fields are ignored.
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err, "Erro ao atualizar categoria")
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := check(h.validate, req, categoryMessages); err != nil {
		return fail(c, err, "Erro ao atualizar categoria")
	}

	if err := h.categoryService.UpdateCategory(c.UserContext(), id, req.Fields()); err != nil {
		return fail(c, err, "Erro ao atualizar categoria")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteCategory deletes a category. A missing category is not an error.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err, "Erro ao remover categoria")
	}
	if err := h.categoryService.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, err, "Erro ao remover categoria")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
