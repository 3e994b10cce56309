package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/velez/storefront/internal/adapters/cache"
	"github.com/velez/storefront/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
	Featured domain.FeaturedProductRepo
	Search   *cache.SearchCache
}

// List serves catalog pages. Text searches go through the short-lived
// result cache; results inside the TTL window may be stale.
func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	if f.Query != "" && uc.Search != nil {
		key := cache.Key(f)
		if list, total, ok := uc.Search.Get(key); ok {
			return list, total, nil
		}
		list, total, err := uc.Products.List(ctx, f)
		if err != nil {
			return nil, 0, err
		}
		uc.Search.Put(key, list, total)
		return list, total, nil
	}
	return uc.Products.List(ctx, f)
}

// Get returns the product and bumps its view counter.
func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.Products.IncrementViews(ctx, id); err == nil {
		p.Views++
	}
	return p, nil
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("empty title")
	}
	if p.Price < 0 || p.Stock < 0 {
		return errors.New("negative price or stock")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		return errors.New("product id")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("empty title")
	}
	return uc.Products.Save(ctx, p)
}

// Delete removes the product and returns the image paths that should be
// unlinked from storage.
func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	if id == uuid.Nil {
		return nil, errors.New("product id")
	}
	return uc.Products.Delete(ctx, id)
}

func (uc *ProductUC) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.ProductImage) error {
	return uc.Products.AddImages(ctx, productID, imgs)
}

func (uc *ProductUC) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	return uc.Products.DeleteImage(ctx, productID, imageID)
}

func (uc *ProductUC) AddAttribute(ctx context.Context, productID uuid.UUID, attribute, value string) (*domain.ProductAttribute, error) {
	if strings.TrimSpace(attribute) == "" {
		return nil, errors.New("empty attribute")
	}
	attr := &domain.ProductAttribute{ID: uuid.New(), ProductID: productID, Attribute: attribute, Value: value}
	if err := uc.Products.AddAttribute(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (uc *ProductUC) DeleteAttribute(ctx context.Context, productID, attrID uuid.UUID) error {
	return uc.Products.DeleteAttribute(ctx, productID, attrID)
}

// --- Variant grouping ---

// GroupVariants tags two or more products as siblings. When one of them
// already belongs to a group that group is reused; otherwise a fresh
// identifier is minted.
func (uc *ProductUC) GroupVariants(ctx context.Context, ids []uuid.UUID) (uuid.UUID, error) {
	if len(ids) < 2 {
		return uuid.Nil, errors.New("need at least two products")
	}
	group := uuid.Nil
	for _, id := range ids {
		p, err := uc.Products.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if p.VariantGroup != nil && group == uuid.Nil {
			group = *p.VariantGroup
		}
	}
	if group == uuid.Nil {
		group = uuid.New()
	}
	if err := uc.Products.SetVariantGroup(ctx, ids, group); err != nil {
		return uuid.Nil, err
	}
	return group, nil
}

func (uc *ProductUC) UngroupVariant(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("product id")
	}
	return uc.Products.ClearVariantGroup(ctx, id)
}

// Siblings lists the other products sharing the product's variant group.
func (uc *ProductUC) Siblings(ctx context.Context, id uuid.UUID) ([]domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.VariantGroup == nil {
		return []domain.Product{}, nil
	}
	all, err := uc.Products.ListByVariantGroup(ctx, *p.VariantGroup)
	if err != nil {
		return nil, err
	}
	siblings := make([]domain.Product, 0, len(all))
	for _, s := range all {
		if s.ID != p.ID {
			siblings = append(siblings, s)
		}
	}
	return siblings, nil
}

// --- Featured products ---

func (uc *ProductUC) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	if uc.Featured == nil {
		return []domain.Product{}, nil
	}
	return uc.Featured.GetWithProducts(ctx)
}

func (uc *ProductUC) FeatureProduct(ctx context.Context, productID uuid.UUID, order int) error {
	if uc.Featured == nil {
		return errors.New("featured repo not configured")
	}
	if _, err := uc.Products.FindByID(ctx, productID); err != nil {
		return err
	}
	return uc.Featured.Save(ctx, productID, order)
}
