package usecase

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/velez/storefront/internal/domain"
)

type PaymentUC struct {
	Baskets  domain.BasketRepo
	Products domain.ProductRepo
	Orders   *OrderUC
	Gateway  domain.CheckoutGateway

	// Notify, when set, runs after a confirmed payment.
	Notify func(o *domain.Order)
}

// SessionForBasket creates a hosted checkout session from the basket's
// current items. Line items carry the product's live title, description
// and price in minor units; items whose product no longer exists are
// skipped. The session metadata carries basket and user ids for the
// success-callback cross-check.
func (uc *PaymentUC) SessionForBasket(ctx context.Context, b *domain.Basket, items []domain.BasketItem) (*domain.CheckoutSession, error) {
	if uc.Gateway == nil {
		return nil, errors.New("payment gateway not configured")
	}
	lines := make([]domain.CheckoutLine, 0, len(items))
	for _, it := range items {
		p, err := uc.Products.FindByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CheckoutLine{
			Title:       p.Title,
			Description: p.Description,
			UnitAmount:  int64(math.Round(p.Price * 100)),
			Quantity:    it.Quantity,
		})
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyBasket
	}
	meta := map[string]string{
		"basket_id": b.ID.String(),
		"user_id":   b.UserID.String(),
	}
	return uc.Gateway.CreateSession(ctx, lines, meta)
}

// ConfirmSuccess verifies a completed payment session and materializes
// the order. The session must report payment_status "paid" and its
// basket_id metadata must match the basket id from the request; any
// mismatch is forbidden and leaves orders and stock untouched.
func (uc *PaymentUC) ConfirmSuccess(ctx context.Context, sessionID string, basketID uuid.UUID) (*domain.Order, error) {
	if sessionID == "" {
		return nil, errors.New("empty session id")
	}
	sess, err := uc.Gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != "paid" || sess.Metadata["basket_id"] != basketID.String() {
		return nil, domain.ErrForbidden
	}

	b, err := uc.Baskets.FindByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	o, err := uc.Orders.CreateFromBasket(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := uc.Orders.Complete(ctx, o.ID); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatusCompleted
	if err := uc.Baskets.Delete(ctx, b.ID); err != nil {
		return nil, err
	}
	if uc.Notify != nil {
		uc.Notify(o)
	}
	return o, nil
}

// Cancel acknowledges an abandoned payment. The basket stays as is.
func (uc *PaymentUC) Cancel(ctx context.Context, basketID uuid.UUID) error {
	_, err := uc.Baskets.FindByID(ctx, basketID)
	return err
}
