// Package assembler maps catalog rows to the public JSON shape and request
// bodies back to write plans for the catalog store.
package assembler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"loja/internal/apperr"
	"loja/internal/models"
)

// ValueDelimiter separates option values in storage.
const ValueDelimiter = ","

// ImageView is the public shape of a product image.
type ImageView struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

// OptionView is the public shape of a product option.
type OptionView struct {
	ID     uint     `json:"id"`
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// ProductView is the public shape of a product.
type ProductView struct {
	ID                uint         `json:"id"`
	Enabled           bool         `json:"enabled"`
	Name              string       `json:"name"`
	Slug              string       `json:"slug"`
	Stock             int          `json:"stock"`
	Description       string       `json:"description"`
	Price             float64      `json:"price"`
	PriceWithDiscount float64      `json:"price_with_discount"`
	CategoryIDs       []uint       `json:"category_ids"`
	Images            []ImageView  `json:"images"`
	Options           []OptionView `json:"options"`
}

// SplitValues turns a stored value list into trimmed values.
func SplitValues(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return []string{}
	}
	parts := strings.Split(stored, ValueDelimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// JoinValues stores values as a delimited list. Values containing the
// delimiter cannot be split back and are rejected.
func JoinValues(values []string) (string, error) {
	for _, v := range values {
		if strings.Contains(v, ValueDelimiter) {
			return "", apperr.Validation("options.values", fmt.Sprintf("o valor %q não pode conter %q", v, ValueDelimiter))
		}
	}
	return strings.Join(values, ValueDelimiter), nil
}

// ToView assembles the public shape of p. Slices are never nil.
func ToView(p models.Product) ProductView {
	v := ProductView{
		ID:                p.ID,
		Enabled:           p.Enabled,
		Name:              p.Name,
		Slug:              p.Slug,
		Stock:             p.Stock,
		Description:       p.Description,
		Price:             p.Price,
		PriceWithDiscount: p.PriceWithDiscount,
		CategoryIDs:       make([]uint, 0, len(p.CategoryLinks)),
		Images:            make([]ImageView, 0, len(p.Images)),
		Options:           make([]OptionView, 0, len(p.Options)),
	}
	for _, l := range p.CategoryLinks {
		v.CategoryIDs = append(v.CategoryIDs, l.CategoryID)
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, ImageView{ID: img.ID, Content: img.Path})
	}
	for _, o := range p.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Title: o.Title, Values: SplitValues(o.Values)})
	}
	return v
}

// ToViews assembles a list of products.
func ToViews(products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ToView(p))
	}
	return out
}

// Select projects the view onto fields. Unknown names are ignored.
func (v ProductView) Select(fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out[f] = v.ID
		case "enabled":
			out[f] = v.Enabled
		case "name":
			out[f] = v.Name
		case "slug":
			out[f] = v.Slug
		case "stock":
			out[f] = v.Stock
		case "description":
			out[f] = v.Description
		case "price":
			out[f] = v.Price
		case "price_with_discount":
			out[f] = v.PriceWithDiscount
		case "category_ids":
			out[f] = v.CategoryIDs
		case "images":
			out[f] = v.Images
		case "options":
			out[f] = v.Options
		}
	}
	return out
}

// SelectCategory projects a category onto fields.
func SelectCategory(c models.Category, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out[f] = c.ID
		case "name":
			out[f] = c.Name
		case "slug":
			out[f] = c.Slug
		case "use_in_menu":
			out[f] = c.UseInMenu
		}
	}
	return out
}

// OptionValues accepts either a single value or a list of values in JSON.
// Numbers and booleans are kept in their textual form.
type OptionValues []string

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionValues) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, r := range raw {
			s, err := scalarString(r)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*o = out
		return nil
	}
	if string(data) == "null" {
		*o = nil
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*o = OptionValues{s}
	return nil
}

func scalarString(data json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return "", fmt.Errorf("option value must be a string or number, got %s", string(data))
}
