package handlers

import (
	"errors"

	"loja/internal/apperr"
	"loja/internal/assembler"
	"loja/internal/query"
	"loja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const missingProductFields = "Campos obrigatórios faltando: name, slug ou price"

var productMessages = messages{
	"name.required":  missingProductFields,
	"slug.required":  missingProductFields,
	"price.required": missingProductFields,
	"shape.oneof":    `O campo "shape" deve ser "square" ou "circle"`,
	"type.oneof":     `O campo "type" deve ser "text" ou "color"`,
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       newValidator(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/search", h.SearchProducts)
	productRoutes.Get("/:id", h.GetProduct)
	productRoutes.Post("", h.CreateProduct)
	productRoutes.Put("/:id", h.UpdateProduct)
	productRoutes.Delete("/:id", h.DeleteProduct)
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"erro": "Produto não encontrado"})
}

// SearchProducts lists products matching match, price-range, category_ids
// and option[<id>] filters.
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	page, err := query.ParsePagination(c.Query("limit"), c.Query("page"))
	if err != nil {
		return fail(c, err, "Erro ao buscar produtos")
	}

	params := query.ProductParams{
		Match:       c.Query("match"),
		PriceRange:  c.Query("price-range"),
		CategoryIDs: c.Query("category_ids"),
	}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		params.Args = append(params.Args, [2]string{string(key), string(value)})
	})
	filter, err := query.ParseProductFilter(params)
	if err != nil {
		return fail(c, err, "Erro ao buscar produtos")
	}
	fields := query.ParseFields(c.Query("fields"), query.ProductFields)

	views, total, err := h.productService.SearchProducts(c.UserContext(), filter, page)
	if err != nil {
		return fail(c, err, "Erro ao buscar produtos")
	}

	var data any = views
	if fields != nil {
		projected := make([]map[string]any, 0, len(views))
		for _, v := range views {
			projected = append(projected, v.Select(fields))
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

// GetProduct returns the assembled product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}
	v, err := h.productService.GetProduct(c.UserContext(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return fail(c, err, "Erro ao buscar produto")
	}
	return c.JSON(v)
}

func (h *ProductHandler) parseInput(c *fiber.Ctx) (assembler.ProductInput, error) {
	var in assembler.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return in, apperr.Validation("", "Corpo da requisição inválido: "+err.Error())
	}
	if err := check(h.validate, in, productMessages); err != nil {
		return in, err
	}
	return in, nil
}

// CreateProduct creates a product with its images, options and category
// links and answers with the stored product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return fail(c, err, "Erro ao criar produto")
	}
	v, err := h.productService.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fail(c, err, "Erro ao criar produto")
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// UpdateProduct replaces a product. Images and options missing from the
// body are removed.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return fail(c, err, "Erro ao atualizar produto")
	}
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	v, err := h.productService.UpdateProduct(c.UserContext(), id, in)
	if errors.Is(err, apperr.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return fail(c, err, "Erro ao atualizar produto")
	}
	return c.JSON(v)
}

// DeleteProduct deletes a product and its children.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}
	err = h.productService.DeleteProduct(c.UserContext(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return fail(c, err, "Erro ao deletar produto")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
