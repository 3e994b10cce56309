package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velez/storefront/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Attributes").
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	var list []domain.Product
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Query != "" {
		like := "%" + strings.TrimSpace(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	switch f.Sort {
	case "price_desc":
		q = q.Order("price desc")
	case "price_asc":
		q = q.Order("price asc")
	case "newest":
		q = q.Order("created_at desc")
	default:
		q = q.Order("title asc")
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	offset := (f.Page - 1) * f.PageSize
	if err := q.Offset(offset).Limit(f.PageSize).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete removes the product together with its images and attributes and
// returns the stored image paths so the caller can unlink the files.
// Order items keep their product_id reference on purpose.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Images").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	paths := make([]string, 0, len(p.Images))
	for _, im := range p.Images {
		paths = append(paths, im.ImagePath)
	}
	return paths, r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductAttribute{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", p.ID).Error
	})
}

func (r *ProductRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("COALESCE(views,0) + 1")).Error
}

func (r *ProductRepo) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.ProductImage) error {
	if len(imgs) == 0 {
		return nil
	}
	for i := range imgs {
		if imgs[i].ID == uuid.Nil {
			imgs[i].ID = uuid.New()
		}
		imgs[i].ProductID = productID
		if imgs[i].CreatedAt.IsZero() {
			imgs[i].CreatedAt = time.Now()
		}
	}
	return r.db.WithContext(ctx).Create(&imgs).Error
}

func (r *ProductRepo) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	var img domain.ProductImage
	if err := r.db.WithContext(ctx).First(&img, "id = ? AND product_id = ?", imageID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if err := r.db.WithContext(ctx).Delete(&domain.ProductImage{}, "id = ?", img.ID).Error; err != nil {
		return "", err
	}
	return img.ImagePath, nil
}

func (r *ProductRepo) AddAttribute(ctx context.Context, attr *domain.ProductAttribute) error {
	if attr.ID == uuid.Nil {
		attr.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(attr).Error
}

func (r *ProductRepo) DeleteAttribute(ctx context.Context, productID, attrID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", attrID, productID).Delete(&domain.ProductAttribute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Variant grouping ---

func (r *ProductRepo) SetVariantGroup(ctx context.Context, ids []uuid.UUID, group uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id IN ?", ids).
		Update("variant_group", group).Error
}

func (r *ProductRepo) ClearVariantGroup(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("variant_group", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) ListByVariantGroup(ctx context.Context, group uuid.UUID) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.db.WithContext(ctx).Where("variant_group = ?", group).Order("title asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
