package models

// Entities returns every persisted entity in dependency order: owners before
// the rows that reference them.
//
// Relationships:
//
//	Product 1-n ProductImage     (product_id, cascade)
//	Product 1-n ProductOption    (product_id, cascade)
//	Product n-n Category         through ProductCategory (unique pair, cascade)
func Entities() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&ProductOption{},
		&ProductCategory{},
	}
}
