package assembler

import (
	"fmt"

	"loja/internal/apperr"
	"loja/internal/models"
)

// ImageInput is an image entry of a product request body.
type ImageInput struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	Deleted bool   `json:"deleted"`
}

// OptionInput is an option entry of a product request body.
type OptionInput struct {
	ID      uint         `json:"id"`
	Title   string       `json:"title"`
	Shape   string       `json:"shape" validate:"omitempty,oneof=square circle"`
	Radius  *int         `json:"radius" validate:"omitempty,gte=0"`
	Type    string       `json:"type" validate:"omitempty,oneof=text color"`
	Values  OptionValues `json:"values"`
	Deleted bool         `json:"deleted"`
}

// ProductInput is the body of product create and update requests.
type ProductInput struct {
	Enabled           *bool         `json:"enabled"`
	Name              string        `json:"name" validate:"required,max=45"`
	Slug              string        `json:"slug" validate:"required,max=255"`
	Stock             *int          `json:"stock" validate:"omitempty,gte=0"`
	Description       *string       `json:"description" validate:"omitempty,max=255"`
	Price             *float64      `json:"price" validate:"required,gte=0"`
	PriceWithDiscount *float64      `json:"price_with_discount" validate:"omitempty,gte=0"`
	CategoryIDs       []uint        `json:"category_ids"`
	Images            []ImageInput  `json:"images"`
	Options           []OptionInput `json:"options" validate:"dive"`
}

// NewProduct builds the rows of a product creation. Category ids are
// returned separately since links are written after the product row.
func NewProduct(in ProductInput) (*models.Product, []uint, error) {
	p := &models.Product{
		Name: in.Name,
		Slug: in.Slug,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	p.PriceWithDiscount = p.Price
	if in.PriceWithDiscount != nil {
		p.PriceWithDiscount = *in.PriceWithDiscount
	}
	if in.Enabled != nil {
		p.Enabled = *in.Enabled
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Description != nil {
		p.Description = *in.Description
	}

	for i, img := range in.Images {
		if img.Content == "" {
			return nil, nil, required(fmt.Sprintf("images[%d].content", i))
		}
		p.Images = append(p.Images, models.ProductImage{Enabled: true, Path: img.Content})
	}
	for i, opt := range in.Options {
		row, err := newOption(i, opt)
		if err != nil {
			return nil, nil, err
		}
		p.Options = append(p.Options, row)
	}
	return p, dedupe(in.CategoryIDs), nil
}

// BuildUpdate builds the synchronization plan of a product update. The
// images and options of the request become the complete new set.
func BuildUpdate(in ProductInput) (models.ProductUpdate, error) {
	u := models.ProductUpdate{
		Fields: map[string]any{
			"name": in.Name,
			"slug": in.Slug,
		},
	}
	if in.Price != nil {
		u.Fields["price"] = *in.Price
	}
	if in.PriceWithDiscount != nil {
		u.Fields["price_with_discount"] = *in.PriceWithDiscount
	}
	if in.Enabled != nil {
		u.Fields["enabled"] = *in.Enabled
	}
	if in.Stock != nil {
		u.Fields["stock"] = *in.Stock
	}
	if in.Description != nil {
		u.Fields["description"] = *in.Description
	}
	if in.CategoryIDs != nil {
		u.ReplaceCategories = true
		u.CategoryIDs = dedupe(in.CategoryIDs)
	}

	for i, img := range in.Images {
		switch {
		case img.Deleted && img.ID == 0:
			continue
		case img.Deleted:
			u.Images = append(u.Images, models.ImageChange{ID: img.ID, Deleted: true})
		case img.Content == "":
			return models.ProductUpdate{}, required(fmt.Sprintf("images[%d].content", i))
		default:
			u.Images = append(u.Images, models.ImageChange{ID: img.ID, Path: img.Content})
		}
	}

	for i, opt := range in.Options {
		switch {
		case opt.Deleted && opt.ID == 0:
			continue
		case opt.Deleted:
			u.Options = append(u.Options, models.OptionChange{ID: opt.ID, Deleted: true})
		case opt.ID == 0:
			row, err := newOption(i, opt)
			if err != nil {
				return models.ProductUpdate{}, err
			}
			radius := row.Radius
			u.Options = append(u.Options, models.OptionChange{
				Title: row.Title, Shape: row.Shape, Radius: &radius, Type: row.Type, Values: row.Values,
			})
		default:
			values, err := optionValues(i, opt.Values)
			if err != nil {
				return models.ProductUpdate{}, err
			}
			u.Options = append(u.Options, models.OptionChange{
				ID: opt.ID, Title: opt.Title, Shape: opt.Shape, Radius: opt.Radius, Type: opt.Type, Values: values,
			})
		}
	}
	return u, nil
}

func newOption(i int, opt OptionInput) (models.ProductOption, error) {
	if opt.Title == "" {
		return models.ProductOption{}, required(fmt.Sprintf("options[%d].title", i))
	}
	values, err := optionValues(i, opt.Values)
	if err != nil {
		return models.ProductOption{}, err
	}
	row := models.ProductOption{
		Title:  opt.Title,
		Shape:  models.ShapeSquare,
		Type:   models.OptionTypeText,
		Values: values,
	}
	if opt.Shape != "" {
		row.Shape = opt.Shape
	}
	if opt.Type != "" {
		row.Type = opt.Type
	}
	if opt.Radius != nil {
		row.Radius = *opt.Radius
	}
	return row, nil
}

func optionValues(i int, values OptionValues) (string, error) {
	if len(values) == 0 {
		return "", required(fmt.Sprintf("options[%d].values", i))
	}
	return JoinValues(values)
}

func dedupe(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func required(field string) error {
	return apperr.Validation(field, "Campo obrigatório faltando: "+field)
}
