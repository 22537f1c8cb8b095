package models

import "time"

// Category groups products and can be flagged for display in the store menu.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(45);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(45);not null"`
	UseInMenu bool      `json:"use_in_menu" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CategoryUpdatableFields lists the columns a partial category update may write.
var CategoryUpdatableFields = []string{"name", "slug", "use_in_menu"}
