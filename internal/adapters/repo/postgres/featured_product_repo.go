package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velez/storefront/internal/domain"
)

type FeaturedProductRepo struct{ db *gorm.DB }

func NewFeaturedProductRepo(db *gorm.DB) *FeaturedProductRepo {
	return &FeaturedProductRepo{db: db}
}

// Save pins a product, updating the display order when it is already pinned.
func (r *FeaturedProductRepo) Save(ctx context.Context, productID uuid.UUID, order int) error {
	fp := domain.FeaturedProduct{
		ID:           uuid.New(),
		ProductID:    productID,
		DisplayOrder: order,
		CreatedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.FeaturedProduct
		err := tx.Where("product_id = ?", productID).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("display_order", order).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&fp).Error
		}
		return err
	})
}

func (r *FeaturedProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.FeaturedProduct{}, "id = ?", id).Error
}

// GetWithProducts returns the pinned products in display order.
func (r *FeaturedProductRepo) GetWithProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.*").
		Joins("INNER JOIN featured_products ON products.id = featured_products.product_id").
		Order("featured_products.display_order asc").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
