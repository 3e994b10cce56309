package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velez/storefront/internal/domain"
)

type BasketRepo struct{ db *gorm.DB }

func NewBasketRepo(db *gorm.DB) *BasketRepo { return &BasketRepo{db: db} }

// FindOrCreateByUser returns the user's live basket, creating an empty
// one on first access.
func (r *BasketRepo) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*domain.Basket, error) {
	var b domain.Basket
	err := r.db.WithContext(ctx).Preload("Items").First(&b, "user_id = ?", userID).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = domain.Basket{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BasketRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error) {
	var b domain.Basket
	if err := r.db.WithContext(ctx).Preload("Items").First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BasketRepo) Save(ctx context.Context, b *domain.Basket) error {
	return r.db.WithContext(ctx).Omit("Items").Save(b).Error
}

func (r *BasketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("basket_id = ?", id).Delete(&domain.BasketItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&domain.Basket{}, "id = ?", id).Error
}

func (r *BasketRepo) ItemFor(ctx context.Context, basketID, productID uuid.UUID) (*domain.BasketItem, error) {
	var it domain.BasketItem
	if err := r.db.WithContext(ctx).First(&it, "basket_id = ? AND product_id = ?", basketID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *BasketRepo) SaveItem(ctx context.Context, it *domain.BasketItem) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *BasketRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.BasketItem{}, "id = ?", id).Error
}

func (r *BasketRepo) ListItems(ctx context.Context, basketID uuid.UUID) ([]domain.BasketItem, error) {
	var list []domain.BasketItem
	if err := r.db.WithContext(ctx).Where("basket_id = ?", basketID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
