// Package query turns raw HTTP query parameters into typed pagination,
// projection and filter values for the catalog store.
package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"loja/internal/apperr"
)

const (
	// DefaultLimit is the page size used when no limit is given.
	DefaultLimit = 12
	// NoLimit asks for every matching row.
	NoLimit = -1
)

// Field allow-lists for projections.
var (
	CategoryFields = []string{"id", "name", "slug", "use_in_menu"}
	ProductFields  = []string{
		"id", "enabled", "name", "slug", "stock", "description", "price",
		"price_with_discount", "category_ids", "images", "options",
	}
)

// Pagination is the window applied to a search.
type Pagination struct {
	Limit  int
	Page   int
	Offset int
}

// All reports whether pagination is disabled.
func (p Pagination) All() bool {
	return p.Limit == NoLimit
}

// ParsePagination reads limit and page. An absent or empty limit means
// DefaultLimit; -1 returns everything and forces page 1. An invalid page
// falls back to 1.
func ParsePagination(rawLimit, rawPage string) (Pagination, error) {
	limit := DefaultLimit
	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < NoLimit {
			return Pagination{}, apperr.Validation("limit", `O parâmetro "limit" deve ser um número inteiro maior ou igual a -1.`)
		}
		limit = n
	}
	if limit == NoLimit {
		return Pagination{Limit: NoLimit, Page: 1}, nil
	}

	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = 1
	}
	return Pagination{Limit: limit, Page: page, Offset: (page - 1) * limit}, nil
}

// ParseFields returns the requested fields that appear in allowed, in request
// order and without duplicates. Nil means "no projection".
func ParseFields(raw string, allowed []string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	ok := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		ok[f] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if ok[f] && !seen[f] {
			out = append(out, f)
			seen[f] = true
		}
	}
	return out
}

// CategoryFilter restricts a category search.
type CategoryFilter struct {
	UseInMenu *bool
}

// ParseUseInMenu accepts "true" or "false"; anything else disables the filter.
func ParseUseInMenu(raw string) *bool {
	switch raw {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// ParsePriceRange reads "min-max" where both bounds are non-negative numbers
// and min <= max. An empty string yields nil.
func ParsePriceRange(raw string) (*PriceRange, error) {
	if raw == "" {
		return nil, nil
	}
	invalid := apperr.Validation("price-range", `O parâmetro "price-range" deve ter o formato "min-max", onde ambos são números positivos e min <= max.`)

	minStr, maxStr, found := strings.Cut(raw, "-")
	if !found {
		return nil, invalid
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(minStr), 64)
	if err != nil {
		return nil, invalid
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(maxStr), 64)
	if err != nil {
		return nil, invalid
	}
	if !finite(lo) || !finite(hi) || lo < 0 || hi < 0 || lo > hi {
		return nil, invalid
	}
	return &PriceRange{Min: lo, Max: hi}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParseCategoryIDs reads a comma-separated list of category ids.
func ParseCategoryIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, apperr.Validation("category_ids", `Todos os valores em "category_ids" devem ser números inteiros válidos.`)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

// OptionFilter keeps products owning option ID whose value list contains
// any of Values (case-insensitive substring).
type OptionFilter struct {
	ID     uint
	Values []string
}

var optionKey = regexp.MustCompile(`^option\[([0-9]+)\]$`)

// ParseOptionFilter recognises an "option[<id>]" key. ok is false for any
// other key or when no usable value is given.
func ParseOptionFilter(key, value string) (OptionFilter, bool) {
	m := optionKey.FindStringSubmatch(key)
	if m == nil {
		return OptionFilter{}, false
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return OptionFilter{}, false
	}
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return OptionFilter{}, false
	}
	return OptionFilter{ID: uint(id), Values: values}, true
}

// ProductFilter restricts a product search. Every non-empty criterion must hold.
type ProductFilter struct {
	Match       string
	PriceRange  *PriceRange
	CategoryIDs []uint
	Options     []OptionFilter
}

// ProductParams is the raw product search input.
type ProductParams struct {
	Match       string
	PriceRange  string
	CategoryIDs string
	// Args holds every query argument in request order, used for option[<id>] keys.
	Args [][2]string
}

// ParseProductFilter builds a ProductFilter. Several option filters are all
// applied; a later filter on the same option id replaces the earlier one.
func ParseProductFilter(p ProductParams) (ProductFilter, error) {
	f := ProductFilter{Match: strings.TrimSpace(p.Match)}

	pr, err := ParsePriceRange(p.PriceRange)
	if err != nil {
		return ProductFilter{}, err
	}
	f.PriceRange = pr

	if f.CategoryIDs, err = ParseCategoryIDs(p.CategoryIDs); err != nil {
		return ProductFilter{}, err
	}

	index := map[uint]int{}
	for _, kv := range p.Args {
		of, ok := ParseOptionFilter(kv[0], kv[1])
		if !ok {
			continue
		}
		if i, dup := index[of.ID]; dup {
			f.Options[i] = of
			continue
		}
		index[of.ID] = len(f.Options)
		f.Options = append(f.Options, of)
	}
	return f, nil
}
