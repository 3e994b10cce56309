package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/velez/storefront/internal/domain"
)

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Baskets  domain.BasketRepo
}

// CreateFromBasket materializes the basket into a pending order: one
// order item per basket item (product id and quantity only) and a stock
// decrement on each referenced product. No transaction spans the loop;
// a failure partway leaves the order partially materialized. The basket
// itself is left for the caller to delete.
func (uc *OrderUC) CreateFromBasket(ctx context.Context, b *domain.Basket) (*domain.Order, error) {
	items, err := uc.Baskets.ListItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyBasket
	}

	o := &domain.Order{ID: uuid.New(), UserID: b.UserID, Status: domain.OrderStatusPending}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	for _, it := range items {
		oi := domain.OrderItem{ID: uuid.New(), OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity}
		if err := uc.Orders.SaveItem(ctx, &oi); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, oi)

		p, err := uc.Products.FindByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted products keep their dangling reference on the item.
			continue
		}
		if err != nil {
			return nil, err
		}
		p.Stock -= it.Quantity
		if err := uc.Products.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Place materializes the caller's own basket without going through the
// payment provider, then destroys the basket. The order stays pending.
func (uc *OrderUC) Place(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	b, err := uc.Baskets.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	o, err := uc.CreateFromBasket(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := uc.Baskets.Delete(ctx, b.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return uc.Orders.ListByUser(ctx, userID)
}

func (uc *OrderUC) List(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	return uc.Orders.List(ctx, page, pageSize)
}

// SetStatus applies an admin transition. Only pending orders move.
func (uc *OrderUC) SetStatus(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTransition(o.Status, to) {
		return nil, domain.ErrBadTransition
	}
	if err := uc.Orders.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	o.Status = to
	return o, nil
}

// Complete marks a pending order paid. Used by the payment-success path
// only; admin transitions go through SetStatus.
func (uc *OrderUC) Complete(ctx context.Context, id uuid.UUID) error {
	return uc.Orders.UpdateStatus(ctx, id, domain.OrderStatusCompleted)
}
