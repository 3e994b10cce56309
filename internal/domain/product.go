package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title        string     `gorm:"size:180;not null"`
	Description  string     `gorm:"type:text"`
	Price        float64    `gorm:"type:decimal(12,2);not null"`
	Stock        int        `gorm:"type:int;default:0"`
	Views        int        `gorm:"type:int;default:0"`
	VariantGroup *uuid.UUID `gorm:"type:uuid;index"`
	Images       []ProductImage
	Attributes   []ProductAttribute
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	ImagePath string    `gorm:"size:255"`
	CreatedAt time.Time
}

type ProductAttribute struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Attribute string    `gorm:"size:120"`
	Value     string    `gorm:"type:text"`
}

// FeaturedProduct pins a product on the storefront landing page.
type FeaturedProduct struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	DisplayOrder int       `gorm:"type:int;default:0"`
	CreatedAt    time.Time
}

type ProductFilter struct {
	Query    string
	Sort     string
	Page     int
	PageSize int
}
