package models

import "time"

// Option shapes and types accepted by ProductOption.
const (
	ShapeSquare = "square"
	ShapeCircle = "circle"

	OptionTypeText  = "text"
	OptionTypeColor = "color"
)

// Product represents a product in the catalog.
type Product struct {
	ID                uint              `gorm:"primaryKey"`
	Enabled           bool              `gorm:"not null;default:false"`
	Name              string            `gorm:"type:varchar(45);not null"`
	Slug              string            `gorm:"type:varchar(255);not null"`
	Stock             int               `gorm:"not null;default:0"`
	Description       string            `gorm:"type:varchar(255)"`
	Price             float64           `gorm:"not null"`
	PriceWithDiscount float64           `gorm:"not null"`
	Images            []ProductImage    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Options           []ProductOption   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CategoryLinks     []ProductCategory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductImage stores a reference to an image of a product.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Enabled   bool   `gorm:"not null;default:false"`
	Path      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductOption is a selectable attribute of a product (size, color...).
// Values keeps the choices as a comma-delimited list.
type ProductOption struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Title     string `gorm:"type:varchar(255);not null"`
	Shape     string `gorm:"type:varchar(10);not null;default:square"`
	Radius    int    `gorm:"not null;default:0"`
	Type      string `gorm:"type:varchar(10);not null;default:text"`
	Values    string `gorm:"column:value_list;type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductCategory links a product to a category. The pair is the primary key.
type ProductCategory struct {
	ProductID  uint     `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint     `gorm:"primaryKey;autoIncrement:false;index"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// TableName pins the join table name.
func (ProductCategory) TableName() string {
	return "product_categories"
}

// ProductUpdatableFields lists the product columns an update may write.
var ProductUpdatableFields = []string{
	"enabled", "name", "slug", "stock", "description", "price", "price_with_discount",
}

// ImageChange is one entry of an image synchronization.
type ImageChange struct {
	ID      uint
	Deleted bool
	Path    string
}

// OptionChange is one entry of an option synchronization. Zero-valued
// Title, Shape and Type and a nil Radius leave the stored column untouched
// on updates.
type OptionChange struct {
	ID      uint
	Deleted bool
	Title   string
	Shape   string
	Radius  *int
	Type    string
	Values  string
}

// ProductUpdate describes a full product update applied in one transaction.
type ProductUpdate struct {
	Fields            map[string]any
	ReplaceCategories bool
	CategoryIDs       []uint
	Images            []ImageChange
	Options           []OptionChange
}
