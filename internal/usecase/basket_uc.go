package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/velez/storefront/internal/domain"
)

type BasketUC struct {
	Baskets  domain.BasketRepo
	Products domain.ProductRepo
	Payments *PaymentUC
}

// BasketLine pairs a basket item with the live product it references.
// Product is nil when the product has been deleted since it was added.
type BasketLine struct {
	Item    domain.BasketItem
	Product *domain.Product
}

// Get returns the user's basket, creating it on first access.
func (uc *BasketUC) Get(ctx context.Context, userID uuid.UUID) (*domain.Basket, []BasketLine, error) {
	b, err := uc.Baskets.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := uc.enrich(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return b, lines, nil
}

// Apply adds or removes one unit of a product in the user's basket.
// Adding is rejected once the basket already holds the full stock of the
// product. Every mutation drops the cached checkout URL; while the basket
// stays non-empty a fresh session is created and cached right away.
func (uc *BasketUC) Apply(ctx context.Context, userID, productID uuid.UUID, action domain.BasketAction) (*domain.Basket, []BasketLine, error) {
	b, err := uc.Baskets.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	switch action {
	case domain.BasketActionAdd:
		p, err := uc.Products.FindByID(ctx, productID)
		if err != nil {
			return nil, nil, err
		}
		it, err := uc.Baskets.ItemFor(ctx, b.ID, productID)
		switch {
		case err == nil:
			if p.Stock <= it.Quantity {
				return nil, nil, domain.ErrOutOfStock
			}
			it.Quantity++
			if err := uc.Baskets.SaveItem(ctx, it); err != nil {
				return nil, nil, err
			}
		case errors.Is(err, domain.ErrNotFound):
			if p.Stock < 1 {
				return nil, nil, domain.ErrOutOfStock
			}
			it = &domain.BasketItem{ID: uuid.New(), BasketID: b.ID, ProductID: productID, Quantity: 1}
			if err := uc.Baskets.SaveItem(ctx, it); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, err
		}

	case domain.BasketActionRemove:
		it, err := uc.Baskets.ItemFor(ctx, b.ID, productID)
		if err != nil {
			return nil, nil, err
		}
		it.Quantity--
		if it.Quantity <= 0 {
			if err := uc.Baskets.DeleteItem(ctx, it.ID); err != nil {
				return nil, nil, err
			}
		} else {
			if err := uc.Baskets.SaveItem(ctx, it); err != nil {
				return nil, nil, err
			}
		}

	default:
		return nil, nil, errors.New("unknown basket action")
	}

	// The cached session no longer matches the basket contents.
	b.StripeCheckout = ""
	if err := uc.Baskets.Save(ctx, b); err != nil {
		return nil, nil, err
	}

	items, err := uc.Baskets.ListItems(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) > 0 && uc.Payments != nil {
		sess, err := uc.Payments.SessionForBasket(ctx, b, items)
		if err != nil {
			log.Warn().Err(err).Str("basket", b.ID.String()).Msg("checkout session refresh failed")
		} else {
			b.StripeCheckout = sess.URL
			if err := uc.Baskets.Save(ctx, b); err != nil {
				return nil, nil, err
			}
		}
	}

	lines, err := uc.enrich(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return b, lines, nil
}

func (uc *BasketUC) enrich(ctx context.Context, b *domain.Basket) ([]BasketLine, error) {
	items, err := uc.Baskets.ListItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]BasketLine, 0, len(items))
	for _, it := range items {
		p, err := uc.Products.FindByID(ctx, it.ProductID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		lines = append(lines, BasketLine{Item: it, Product: p})
	}
	return lines, nil
}
